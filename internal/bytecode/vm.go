// Package bytecode is the VM engine: a single-pass Pratt compiler that
// emits directly into a Chunk, and a stack-based VM that executes it,
// with interned strings and an open-addressed globals table.
package bytecode

import (
	"fmt"
	"io"
	"os"

	"github.com/loxlang/golox/internal/loxerr"
)

const defaultStackSize = 256

// VM is the bytecode engine's runtime state: a fixed value stack, an
// instruction pointer into the chunk currently running, the globals
// table, the string intern set, and the intrusive allocation list every
// heap Obj is threaded onto.
type VM struct {
	stack []Value
	sp    int

	globals  *Table
	interner *InternSet
	objects  []*Obj

	stdout         io.Writer
	traceExecution bool
}

// Option configures a VM at construction.
type Option func(*VM)

func WithStdout(w io.Writer) Option {
	return func(vm *VM) { vm.stdout = w }
}

// WithStackSize overrides the default 256-slot value stack.
func WithStackSize(n int) Option {
	return func(vm *VM) { vm.stack = make([]Value, n) }
}

// WithTraceExecution enables a disassembled trace of every instruction
// as it executes, written to stdout ahead of its result - useful for
// debugging the compiler itself.
func WithTraceExecution(on bool) Option {
	return func(vm *VM) { vm.traceExecution = on }
}

func NewVM(opts ...Option) *VM {
	vm := &VM{
		stack:  make([]Value, defaultStackSize),
		stdout: os.Stdout,
	}
	vm.globals = NewTable()
	vm.interner = NewInternSet(&vm.objects)

	for _, opt := range opts {
		opt(vm)
	}
	return vm
}

// Interner exposes the VM's string intern set so a Compiler compiling
// for this VM shares its identity-comparable strings.
func (vm *VM) Interner() *InternSet { return vm.interner }

func (vm *VM) push(v Value) {
	vm.stack[vm.sp] = v
	vm.sp++
}

func (vm *VM) pop() Value {
	vm.sp--
	return vm.stack[vm.sp]
}

func (vm *VM) peek(distance int) Value {
	return vm.stack[vm.sp-1-distance]
}

// Run executes chunk from byte 0 until OP_RETURN or a runtime error.
// The value stack is reset at entry: this VM has no call frames, so
// each Run is one top-level script.
func (vm *VM) Run(chunk *Chunk) error {
	vm.sp = 0
	ip := 0

	readByte := func() byte {
		b := chunk.Code[ip]
		ip++
		return b
	}
	readShort := func() int {
		hi := chunk.Code[ip]
		lo := chunk.Code[ip+1]
		ip += 2
		return int(hi)<<8 | int(lo)
	}
	readConstant := func() Value {
		return chunk.Constants[readByte()]
	}
	line := func() int {
		if ip == 0 {
			return chunk.Lines[0]
		}
		return chunk.Lines[ip-1]
	}

	for {
		if vm.traceExecution {
			text, _ := disassembleInstruction(chunk, ip)
			fmt.Fprint(vm.stdout, text)
		}

		op := OpCode(readByte())
		switch op {
		case OpConstant:
			vm.push(readConstant())
		case OpNil:
			vm.push(Nil())
		case OpTrue:
			vm.push(Bool(true))
		case OpFalse:
			vm.push(Bool(false))
		case OpPop:
			vm.pop()
		case OpGetLocal:
			slot := readByte()
			vm.push(vm.stack[slot])
		case OpSetLocal:
			slot := readByte()
			vm.stack[slot] = vm.peek(0)
		case OpGetGlobal:
			name := readConstant().Obj
			v, ok := vm.globals.Get(name)
			if !ok {
				return loxerr.NewRuntimeError(line(), "Undefined variable '"+name.Str+"'.")
			}
			vm.push(v)
		case OpSetGlobal:
			name := readConstant().Obj
			if vm.globals.Set(name, vm.peek(0)) {
				vm.globals.Delete(name)
				return loxerr.NewRuntimeError(line(), "Undefined variable '"+name.Str+"'.")
			}
		case OpDefineGlobal:
			name := readConstant().Obj
			vm.globals.Set(name, vm.pop())
		case OpEqual:
			b := vm.pop()
			a := vm.pop()
			vm.push(Bool(Equal(a, b)))
		case OpGreater:
			b, a, err := vm.popNumbers(line())
			if err != nil {
				return err
			}
			vm.push(Bool(a > b))
		case OpLess:
			b, a, err := vm.popNumbers(line())
			if err != nil {
				return err
			}
			vm.push(Bool(a < b))
		case OpAdd:
			b, a := vm.peek(0), vm.peek(1)
			switch {
			case a.IsString() && b.IsString():
				vm.pop()
				vm.pop()
				vm.push(ObjVal(vm.interner.Intern(a.AsString() + b.AsString())))
			case a.Type == ValNumber && b.Type == ValNumber:
				vm.pop()
				vm.pop()
				vm.push(Number(a.Number + b.Number))
			default:
				return loxerr.NewRuntimeError(line(), "Operands must be two numbers or two strings.")
			}
		case OpSub:
			b, a, err := vm.popNumbers(line())
			if err != nil {
				return err
			}
			vm.push(Number(a - b))
		case OpMul:
			b, a, err := vm.popNumbers(line())
			if err != nil {
				return err
			}
			vm.push(Number(a * b))
		case OpDiv:
			b, a, err := vm.popNumbers(line())
			if err != nil {
				return err
			}
			vm.push(Number(a / b))
		case OpNot:
			vm.push(Bool(vm.pop().IsFalsey()))
		case OpNegate:
			v := vm.peek(0)
			if v.Type != ValNumber {
				return loxerr.NewRuntimeError(line(), "Operand must be a number.")
			}
			vm.pop()
			vm.push(Number(-v.Number))
		case OpPrint:
			fmt.Fprintln(vm.stdout, vm.pop().String())
		case OpJump:
			offset := readShort()
			ip += offset
		case OpJumpIfFalse:
			offset := readShort()
			if vm.peek(0).IsFalsey() {
				ip += offset
			}
		case OpLoop:
			offset := readShort()
			ip -= offset
		case OpReturn:
			return nil
		default:
			return loxerr.NewRuntimeError(line(), "Unknown opcode.")
		}
	}
}

// popNumbers pops b then a (in that push order) and requires both be
// numbers; returned in (b, a) order since that's how every binary
// numeric opcode wants them (`a OP b`).
func (vm *VM) popNumbers(line int) (b, a float64, err error) {
	bv := vm.peek(0)
	av := vm.peek(1)
	if bv.Type != ValNumber || av.Type != ValNumber {
		return 0, 0, loxerr.NewRuntimeError(line, "Operand(s) must be number(s).")
	}
	vm.pop()
	vm.pop()
	return bv.Number, av.Number, nil
}

package bytecode

// OpCode is a single bytecode instruction. Every opcode is one byte; some
// carry operand bytes immediately following in the Chunk's code stream.
type OpCode byte

const (
	OpConstant OpCode = iota // [1] constant index -> push value
	OpNil                    // -> push nil
	OpTrue                   // -> push true
	OpFalse                  // -> push false
	OpPop                    // pop ->
	OpGetLocal               // [1] slot -> push copy of stack[slot]
	OpSetLocal               // [1] slot; peek -> stack[slot] := peek, leaves stack
	OpGetGlobal              // [1] name-const-idx -> push global value
	OpSetGlobal              // [1] name-const-idx; must already exist
	OpDefineGlobal           // [1] name-const-idx; pop -> bind
	OpEqual                  // a b -> (a == b)
	OpGreater                // a b -> (a > b)
	OpLess                   // a b -> (a < b)
	OpAdd                    // a b -> (a + b)
	OpSub                    // a b -> (a - b)
	OpMul                    // a b -> (a * b)
	OpDiv                    // a b -> (a / b)
	OpNot                    // a -> !a
	OpNegate                 // a -> -a
	OpPrint                  // pop -> prints stringified value + newline
	OpJump                   // [2] offset BE; ip += offset
	OpJumpIfFalse            // [2] offset BE; peeks top, ip += offset if falsey
	OpLoop                   // [2] offset BE; ip -= offset
	OpReturn                 // halts the VM; no call frames in this engine
)

var opcodeNames = [...]string{
	OpConstant:     "OP_CONSTANT",
	OpNil:          "OP_NIL",
	OpTrue:         "OP_TRUE",
	OpFalse:        "OP_FALSE",
	OpPop:          "OP_POP",
	OpGetLocal:     "OP_GET_LOCAL",
	OpSetLocal:     "OP_SET_LOCAL",
	OpGetGlobal:    "OP_GET_GLOBAL",
	OpSetGlobal:    "OP_SET_GLOBAL",
	OpDefineGlobal: "OP_DEFINE_GLOBAL",
	OpEqual:        "OP_EQUAL",
	OpGreater:      "OP_GREATER",
	OpLess:         "OP_LESS",
	OpAdd:          "OP_ADD",
	OpSub:          "OP_SUB",
	OpMul:          "OP_MUL",
	OpDiv:          "OP_DIV",
	OpNot:          "OP_NOT",
	OpNegate:       "OP_NEGATE",
	OpPrint:        "OP_PRINT",
	OpJump:         "OP_JUMP",
	OpJumpIfFalse:  "OP_JUMP_IF_FALSE",
	OpLoop:         "OP_LOOP",
	OpReturn:       "OP_RETURN",
}

func (op OpCode) String() string {
	if int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return "OP_UNKNOWN"
}

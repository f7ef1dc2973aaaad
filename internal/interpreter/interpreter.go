// Package interpreter is the tree-walking evaluator: it executes an
// AST annotated by internal/resolver against a chain of
// internal/treeobj Environments.
package interpreter

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/loxlang/golox/internal/ast"
	"github.com/loxlang/golox/internal/treeobj"
)

// Interpreter holds everything needed to execute a resolved Program: the
// global frame, the current frame, the resolver's binding distances, and
// the I/O/clock hooks a test can override.
type Interpreter struct {
	Globals *treeobj.Environment
	env     *treeobj.Environment
	locals  map[ast.Expr]int

	stdout io.Writer
	clock  func() time.Time
}

// Option configures an Interpreter at construction.
type Option func(*Interpreter)

// WithStdout redirects `print` output (default os.Stdout).
func WithStdout(w io.Writer) Option {
	return func(i *Interpreter) { i.stdout = w }
}

// WithClock overrides the `clock()` builtin's time source, for
// deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(i *Interpreter) { i.clock = now }
}

// New creates an Interpreter with clock/type builtins installed in a
// fresh global frame. locals is the resolver's output map. A variable
// with no recorded distance is looked up in the global frame only, so
// with nil locals (and no later SetLocals) block and function locals
// are not found.
func New(locals map[ast.Expr]int, opts ...Option) *Interpreter {
	i := &Interpreter{
		locals: locals,
		stdout: os.Stdout,
		clock:  time.Now,
	}
	i.Globals = treeobj.NewEnvironment(nil)
	i.env = i.Globals

	for _, opt := range opts {
		opt(i)
	}

	i.installBuiltins()
	return i
}

func (i *Interpreter) installBuiltins() {
	i.Globals.Define("clock", &treeobj.NativeFn{
		Name: "clock",
		Ar:   0,
		Fn: func(args []treeobj.Object) (treeobj.Object, error) {
			return treeobj.Number{Value: float64(i.clock().Unix())}, nil
		},
	})
	i.Globals.Define("type", &treeobj.NativeFn{
		Name: "type",
		Ar:   1,
		Fn: func(args []treeobj.Object) (treeobj.Object, error) {
			return treeobj.String{Value: treeobj.TypeName(args[0])}, nil
		},
	})
}

// SetLocals replaces the resolver's binding-distance map. The REPL
// calls this once per line, since each line is resolved independently
// but all share one Interpreter so that global bindings persist across
// entries.
func (i *Interpreter) SetLocals(locals map[ast.Expr]int) {
	i.locals = locals
}

// Interpret runs every top-level declaration of program in order,
// stopping at the first runtime error.
func (i *Interpreter) Interpret(program *ast.Program) error {
	for _, decl := range program.Decls {
		if _, _, err := i.execStmt(decl); err != nil {
			return err
		}
	}
	return nil
}

// ExecuteBlock implements treeobj.CallContext: it runs stmts in env
// (typically a fresh frame for a function call) and restores the
// previous frame on every exit path, including an error or a return.
func (i *Interpreter) ExecuteBlock(stmts []ast.Stmt, env *treeobj.Environment) (treeobj.Object, bool, error) {
	previous := i.env
	i.env = env
	defer func() { i.env = previous }()

	for _, s := range stmts {
		retVal, didReturn, err := i.execStmt(s)
		if err != nil {
			return nil, false, err
		}
		if didReturn {
			return retVal, true, nil
		}
	}
	return nil, false, nil
}

func (i *Interpreter) print(v treeobj.Object) {
	fmt.Fprintln(i.stdout, v.String())
}

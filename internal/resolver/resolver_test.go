package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loxlang/golox/internal/ast"
	"github.com/loxlang/golox/internal/parser"
	"github.com/loxlang/golox/internal/scanner"
)

func resolve(t *testing.T, src string) (*ast.Program, map[ast.Expr]int, error) {
	t.Helper()
	toks, err := scanner.New([]byte(src)).Scan()
	require.NoError(t, err)
	prog, err := parser.Parse(toks)
	require.NoError(t, err)
	locals, err := Resolve(prog)
	return prog, locals, err
}

// TestClosureCapturesDeclarationTimeBinding checks the canonical showA
// example: a closure created before a later shadowing `var a` is
// redeclared must keep referring to the binding that existed when it
// was defined, not whatever is in scope when it runs. Since `a` inside
// showA is resolved once, statically, against the scope chain at the
// function's own definition site, the block's later `var a` can only
// ever shadow future lookups, never this one.
func TestClosureCapturesDeclarationTimeBinding(t *testing.T) {
	prog, locals, err := resolve(t, `
		var a = "global";
		{
			fun showA() {
				print a;
			}
			showA();
			var a = "block";
			showA();
		}
	`)
	require.NoError(t, err)

	block := prog.Decls[1].(*ast.Block)
	showA := block.Decls[0].(*ast.FunDecl)
	printStmt := showA.Body[0].(*ast.PrintStmt)

	_, isLocal := locals[printStmt.Expr]
	assert.False(t, isLocal, "`a` referenced inside showA must resolve to the global, not a block local")
}

func TestResolveLocalRecordsScopeDistance(t *testing.T) {
	_, locals, err := resolve(t, `
		{
			var a = 1;
			{
				print a;
			}
		}
	`)
	require.NoError(t, err)
	require.Len(t, locals, 1)
	for _, dist := range locals {
		assert.Equal(t, 1, dist)
	}
}

func TestSelfReferentialLocalInitializerIsError(t *testing.T) {
	_, _, err := resolve(t, `{ var a = a; }`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Can't read local variable in its own initializer.")
}

func TestReturnAtTopLevelIsError(t *testing.T) {
	_, _, err := resolve(t, `return 1;`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Can't return from top-level code.")
}

func TestReturnValueInsideInitializerIsError(t *testing.T) {
	_, _, err := resolve(t, `
		class Foo {
			init() {
				return 1;
			}
		}
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Can't return a value from an initializer.")
}

func TestBareReturnInsideInitializerIsAllowed(t *testing.T) {
	_, _, err := resolve(t, `
		class Foo {
			init() {
				return;
			}
		}
	`)
	assert.NoError(t, err)
}

func TestThisOutsideClassIsError(t *testing.T) {
	_, _, err := resolve(t, `print this;`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Can't use 'this' outside of a class.")
}

func TestSuperOutsideClassIsError(t *testing.T) {
	_, _, err := resolve(t, `print super.method();`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Can't use 'super' outside of a class.")
}

func TestSuperInClassWithNoSuperclassIsError(t *testing.T) {
	_, _, err := resolve(t, `
		class Foo {
			bar() { super.bar(); }
		}
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Can't use 'super' in a class with no superclass.")
}

func TestClassInheritingFromItselfIsError(t *testing.T) {
	_, _, err := resolve(t, `class Foo < Foo {}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "A class can't inherit from itself.")
}

func TestLocalRedeclarationInSameScopeIsError(t *testing.T) {
	_, _, err := resolve(t, `{ var a = 1; var a = 2; }`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Already a variable with this name in this scope.")
}

// TestGlobalRedeclarationIsAllowed checks the documented asymmetry: the
// same redeclaration that is an error inside a block is permitted at
// global scope.
func TestGlobalRedeclarationIsAllowed(t *testing.T) {
	_, _, err := resolve(t, `var a = 1; var a = 2;`)
	assert.NoError(t, err)
}

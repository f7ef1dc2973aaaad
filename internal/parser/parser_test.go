package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loxlang/golox/internal/ast"
	"github.com/loxlang/golox/internal/scanner"
)

func parse(t *testing.T, src string) (*ast.Program, error) {
	t.Helper()
	toks, err := scanner.New([]byte(src)).Scan()
	require.NoError(t, err)
	return Parse(toks)
}

func TestParseVarDecl(t *testing.T) {
	prog, err := parse(t, `var a = 1;`)
	require.NoError(t, err)
	require.Len(t, prog.Decls, 1)
	vd, ok := prog.Decls[0].(*ast.VarDecl)
	require.True(t, ok)
	assert.Equal(t, "a", vd.Name)
}

func TestParseArithmeticPrecedence(t *testing.T) {
	prog, err := parse(t, `1 + 2 * 3;`)
	require.NoError(t, err)
	require.Len(t, prog.Decls, 1)
	es := prog.Decls[0].(*ast.ExprStmt)
	bin := es.Expr.(*ast.BinaryExpr)
	// top-level operator must be '+', since '*' binds tighter
	assert.Equal(t, "+", bin.Op.Lexeme)
	_, rightIsMul := bin.Right.(*ast.BinaryExpr)
	assert.True(t, rightIsMul, "2 * 3 should bind tighter and nest under the '+'")
}

func TestParseClassWithSuperclassAndMethods(t *testing.T) {
	prog, err := parse(t, `
		class Animal {
			speak() { print "..."; }
		}
		class Dog < Animal {
			speak() { print "woof"; }
		}
	`)
	require.NoError(t, err)
	require.Len(t, prog.Decls, 2)

	dog := prog.Decls[1].(*ast.ClassDecl)
	assert.Equal(t, "Dog", dog.Name)
	require.NotNil(t, dog.Superclass)
	assert.Equal(t, "Animal", dog.Superclass.Name.Lexeme)
	require.Len(t, dog.Methods, 1)
	assert.Equal(t, "speak", dog.Methods[0].Name)
}

func TestParseForDesugarsToWhile(t *testing.T) {
	prog, err := parse(t, `for (var i = 0; i < 3; i = i + 1) print i;`)
	require.NoError(t, err)
	require.Len(t, prog.Decls, 1)

	outer := prog.Decls[0].(*ast.Block)
	require.Len(t, outer.Decls, 2)
	_, isVarDecl := outer.Decls[0].(*ast.VarDecl)
	assert.True(t, isVarDecl)
	_, isWhile := outer.Decls[1].(*ast.WhileStmt)
	assert.True(t, isWhile)
}

func TestParseInvalidAssignmentTargetIsError(t *testing.T) {
	_, err := parse(t, `1 + 2 = 3;`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid assignment target.")
}

func TestParseTooManyArgumentsIsError(t *testing.T) {
	src := "f("
	for i := 0; i < 256; i++ {
		if i > 0 {
			src += ", "
		}
		src += "1"
	}
	src += ");"

	_, err := parse(t, src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Can't have more than 255 arguments.")
}

func TestParseMissingSemicolonSynchronizes(t *testing.T) {
	_, err := parse(t, `
		var a = 1
		var b = 2;
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Expect ';' after variable declaration.")
}

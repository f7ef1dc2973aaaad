package bytecode

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loxlang/golox/internal/scanner"
)

func run(t *testing.T, src string) (string, error) {
	t.Helper()
	tokens, err := scanner.New([]byte(src)).Scan()
	require.NoError(t, err)

	var out bytes.Buffer
	vm := NewVM(WithStdout(&out))
	chunk, err := Compile(tokens, vm.Interner())
	if err != nil {
		return out.String(), err
	}
	runErr := vm.Run(chunk)
	return out.String(), runErr
}

func TestVMArithmeticPrecedence(t *testing.T) {
	out, err := run(t, `print 1 + 2 * 3 - 4 / 2;`)
	require.NoError(t, err)
	assert.Equal(t, "5\n", out)
}

func TestVMStringConcatenationInterns(t *testing.T) {
	out, err := run(t, `print "ab" + "c" == "a" + "bc";`)
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)
}

func TestVMGlobalsPersistAndReassign(t *testing.T) {
	out, err := run(t, `
		var a = 1;
		a = a + 1;
		print a;
	`)
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)
}

func TestVMUndefinedGlobalIsRuntimeError(t *testing.T) {
	_, err := run(t, `print nope;`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Undefined variable 'nope'.")
}

func TestVMSetGlobalRejectsUndeclared(t *testing.T) {
	_, err := run(t, `nope = 1;`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Undefined variable 'nope'.")
}

func TestVMLocalScopingAndShadowing(t *testing.T) {
	out, err := run(t, `
		var a = "outer";
		{
			var a = "inner";
			print a;
		}
		print a;
	`)
	require.NoError(t, err)
	assert.Equal(t, "inner\nouter\n", out)
}

func TestVMIfElse(t *testing.T) {
	out, err := run(t, `
		if (1 < 2) print "yes"; else print "no";
	`)
	require.NoError(t, err)
	assert.Equal(t, "yes\n", out)
}

func TestVMWhileLoop(t *testing.T) {
	out, err := run(t, `
		var i = 0;
		while (i < 3) {
			print i;
			i = i + 1;
		}
	`)
	require.NoError(t, err)
	assert.Equal(t, "0\n1\n2\n", out)
}

func TestVMForLoop(t *testing.T) {
	out, err := run(t, `
		for (var i = 0; i < 3; i = i + 1) print i;
	`)
	require.NoError(t, err)
	assert.Equal(t, "0\n1\n2\n", out)
}

func TestVMLogicalOperatorsShortCircuit(t *testing.T) {
	out, err := run(t, `
		print false and nope;
		print true or nope;
	`)
	require.NoError(t, err)
	assert.Equal(t, "false\ntrue\n", out)
}

func TestVMTypeErrorOnBadOperands(t *testing.T) {
	_, err := run(t, `print 1 + "a";`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Operands must be two numbers or two strings.")
}

func TestVMFunctionDeclarationIsCompileError(t *testing.T) {
	_, err := run(t, `fun f() { print 1; }`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Functions are not supported by the bytecode engine.")
}

func TestVMReturnOutsideFunctionIsCompileError(t *testing.T) {
	_, err := run(t, `return;`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Can't return from top-level code.")
}

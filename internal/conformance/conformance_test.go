package conformance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgreeOnArithmeticAndControlFlow(t *testing.T) {
	report := Agree(`
		var total = 0;
		for (var i = 0; i < 5; i = i + 1) {
			if (i == 2) {
				print "skip";
			} else {
				total = total + i;
			}
		}
		print total;
	`)
	require.NoError(t, report.TreeErr)
	require.NoError(t, report.VMErr)
	assert.True(t, report.StdoutMatches())
	assert.Equal(t, "skip\n8\n", report.TreeStdout)
}

func TestAgreeOnStringsAndLogicalShortCircuit(t *testing.T) {
	report := Agree(`
		print "a" + "b" == "ab";
		print false and (1/0 > 0);
	`)
	require.NoError(t, report.TreeErr)
	require.NoError(t, report.VMErr)
	assert.True(t, report.StdoutMatches())
}

func TestRunTreeSupportsClassesVMDoesNot(t *testing.T) {
	src := `
		class Greeter {
			greet() { print "hi"; }
		}
		Greeter().greet();
	`
	tree := RunTree(src)
	require.NoError(t, tree.Err)
	assert.Equal(t, "hi\n", tree.Stdout)

	vm := RunVM(src)
	require.Error(t, vm.Err)
	assert.Contains(t, vm.Err.Error(), "Classes are not supported by the bytecode engine.")
}

func TestDiffFormatsBothEnginesOutput(t *testing.T) {
	report := Agree(`print 1;`)
	out := Diff("literal one", report)
	assert.Contains(t, out, "literal one")
	assert.Contains(t, out, "tree:")
	assert.Contains(t, out, "vm:")
}

func TestSummaryTagsAgreementAndDisagreement(t *testing.T) {
	agree := Agree(`print 1;`)
	assert.Contains(t, agree.Summary("literal one"), "passed")

	disagree := Agree(`fun f() {} print 1;`)
	assert.Contains(t, disagree.Summary("functions"), "failed")
}

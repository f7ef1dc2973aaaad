// Package conformance runs one Lox source through both of this repo's
// engines and checks they agree, in-process (there is no reference
// binary to shell out to), and exposes RunTree/RunVM so a test can check
// one engine's stdout against a literal expected string.
package conformance

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/loxlang/golox/internal/bytecode"
	"github.com/loxlang/golox/internal/interpreter"
	"github.com/loxlang/golox/internal/parser"
	"github.com/loxlang/golox/internal/resolver"
	"github.com/loxlang/golox/internal/scanner"
)

// Result captures stdout plus whether execution succeeded, used to diff
// tree-engine output against the VM's and both against a fixture's
// expectation.
type Result struct {
	Stdout   string
	Err      error
	Duration time.Duration
}

// RunTree scans, parses, resolves and interprets src with the tree
// engine, capturing everything written to `print`.
func RunTree(src string) Result {
	start := time.Now()
	var out bytes.Buffer

	tokens, err := scanner.New([]byte(src)).Scan()
	if err != nil {
		return Result{Err: err, Duration: time.Since(start)}
	}
	program, err := parser.Parse(tokens)
	if err != nil {
		return Result{Err: err, Duration: time.Since(start)}
	}
	locals, err := resolver.Resolve(program)
	if err != nil {
		return Result{Err: err, Duration: time.Since(start)}
	}
	interp := interpreter.New(locals, interpreter.WithStdout(&out))
	err = interp.Interpret(program)
	return Result{Stdout: out.String(), Err: err, Duration: time.Since(start)}
}

// RunVM scans, compiles and executes src with the bytecode engine.
func RunVM(src string) Result {
	start := time.Now()
	var out bytes.Buffer

	tokens, err := scanner.New([]byte(src)).Scan()
	if err != nil {
		return Result{Err: err, Duration: time.Since(start)}
	}
	vm := bytecode.NewVM(bytecode.WithStdout(&out))
	chunk, err := bytecode.Compile(tokens, vm.Interner())
	if err != nil {
		return Result{Err: err, Duration: time.Since(start)}
	}
	err = vm.Run(chunk)
	return Result{Stdout: out.String(), Err: err, Duration: time.Since(start)}
}

// AgreementReport describes how the two engines' Results relate, for a
// test to assert on (or a human to read when one fails).
type AgreementReport struct {
	TreeStdout   string
	VMStdout     string
	TreeErr      error
	VMErr        error
	TreeDuration time.Duration
	VMDuration   time.Duration
}

// Agree runs src through both engines and reports whether their stdout
// agrees (VM-unsupported constructs - functions, classes - are expected
// to differ: the VM engine rejects them at compile time while the tree
// engine runs them, so callers restrict this to the VM-engine subset of
// Lox before asserting StdoutMatches).
func Agree(src string) AgreementReport {
	tree := RunTree(src)
	vm := RunVM(src)
	return AgreementReport{
		TreeStdout:   tree.Stdout,
		VMStdout:     vm.Stdout,
		TreeErr:      tree.Err,
		VMErr:        vm.Err,
		TreeDuration: tree.Duration,
		VMDuration:   vm.Duration,
	}
}

func (r AgreementReport) StdoutMatches() bool {
	return r.TreeStdout == r.VMStdout
}

const summaryWidth = 120

// Summary renders a one-line verdict for name: a colorized
// passed/failed tag, then the tree and VM durations right-aligned.
// Agreement means matching stdout and matching success/failure.
func (r AgreementReport) Summary(name string) string {
	agreed := r.StdoutMatches() && (r.TreeErr == nil) == (r.VMErr == nil)

	result := color.GreenString("passed")
	if !agreed {
		result = color.RedString("failed")
	}

	timing := fmt.Sprintf("%12s %12s", r.TreeDuration, r.VMDuration)
	// Spacing works because len("passed") == len("failed")
	pad := summaryWidth - len("  [passed] ") - len(name) - len(timing)
	if pad < 1 {
		pad = 1
	}
	return fmt.Sprintf("  [%s] %s%s%s", result, name, strings.Repeat(" ", pad), timing)
}

// Diff renders a human-readable side-by-side summary of one mismatch.
func Diff(name string, r AgreementReport) string {
	return fmt.Sprintf("%s\n  tree: %q err=%v\n  vm:   %q err=%v\n", name, r.TreeStdout, r.TreeErr, r.VMStdout, r.VMErr)
}

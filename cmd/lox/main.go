// Command lox runs Lox source, either interactively or from a script,
// through either of this repo's two engines.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/loxlang/golox/internal/bytecode"
	"github.com/loxlang/golox/internal/diag"
	"github.com/loxlang/golox/internal/interpreter"
	"github.com/loxlang/golox/internal/parser"
	"github.com/loxlang/golox/internal/resolver"
	"github.com/loxlang/golox/internal/scanner"
)

// Exit codes per sysexits.h. Compile/resolve errors (65) and runtime
// errors (70) are returned directly by diag.Printer.Report.
const (
	exitOK    = 0
	exitUsage = 64
	exitIOErr = 74
)

func main() {
	vmFlag := flag.Bool("vm", false, "run with the bytecode compiler/VM engine instead of the tree-walking one")
	flag.Parse()

	args := flag.Args()
	switch len(args) {
	case 0:
		os.Exit(runREPL(*vmFlag))
	case 1:
		os.Exit(runFile(args[0], *vmFlag))
	default:
		fmt.Fprintln(os.Stderr, "Usage: lox [script]")
		os.Exit(exitUsage)
	}
}

func runFile(path string, useVM bool) int {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitIOErr
	}
	printer := diag.New(os.Stderr)

	if useVM {
		vm := bytecode.NewVM()
		return runVMSource(vm, string(src), printer)
	}

	interp := interpreter.New(nil)
	return runTreeSource(interp, string(src), printer)
}

func runREPL(useVM bool) int {
	printer := diag.New(os.Stderr)
	reader := bufio.NewReader(os.Stdin)

	vm := bytecode.NewVM()
	interp := interpreter.New(nil)

	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err == io.EOF {
			return exitOK
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitIOErr
		}

		if useVM {
			runVMSource(vm, line, printer)
		} else {
			runTreeSource(interp, line, printer)
		}
	}
}

func runTreeSource(interp *interpreter.Interpreter, src string, printer *diag.Printer) int {
	tokens, err := scanner.New([]byte(src)).Scan()
	if err != nil {
		return printer.Report(err)
	}
	program, err := parser.Parse(tokens)
	if err != nil {
		return printer.Report(err)
	}
	locals, err := resolver.Resolve(program)
	if err != nil {
		return printer.Report(err)
	}
	interp.SetLocals(locals)
	if err := interp.Interpret(program); err != nil {
		return printer.Report(err)
	}
	return exitOK
}

func runVMSource(vm *bytecode.VM, src string, printer *diag.Printer) int {
	tokens, err := scanner.New([]byte(src)).Scan()
	if err != nil {
		return printer.Report(err)
	}
	chunk, err := bytecode.Compile(tokens, vm.Interner())
	if err != nil {
		return printer.Report(err)
	}
	if err := vm.Run(chunk); err != nil {
		return printer.Report(err)
	}
	return exitOK
}

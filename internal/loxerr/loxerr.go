// Package loxerr defines the error taxonomy shared by the scanner, parser,
// resolver and both interpreter engines.
package loxerr

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Position locates a diagnostic in the source.
type Position struct {
	Line int
}

// LexError is an error token's diagnostic, reported by the scanner.
type LexError struct {
	Pos Position
	Msg string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("[line %d] Error: %s", e.Pos.Line, e.Msg)
}

// NewLexError constructs a LexError with an attached stack trace.
func NewLexError(line int, msg string) error {
	return errors.WithStack(&LexError{Pos: Position{Line: line}, Msg: msg})
}

// ParseError is a static syntax error, reported at the offending token.
type ParseError struct {
	Pos    Position
	Lexeme string
	Msg    string
	AtEnd  bool
}

func (e *ParseError) Error() string {
	if e.AtEnd {
		return fmt.Sprintf("[line %d] Error at end: %s", e.Pos.Line, e.Msg)
	}
	return fmt.Sprintf("[line %d] Error at '%s': %s", e.Pos.Line, e.Lexeme, e.Msg)
}

// NewParseError constructs a ParseError with an attached stack trace.
func NewParseError(line int, lexeme string, atEnd bool, msg string) error {
	return errors.WithStack(&ParseError{
		Pos:    Position{Line: line},
		Lexeme: lexeme,
		Msg:    msg,
		AtEnd:  atEnd,
	})
}

// ResolveError is a static binding error found during resolution.
type ResolveError struct {
	Pos    Position
	Lexeme string
	Msg    string
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("[line %d] Error at '%s': %s", e.Pos.Line, e.Lexeme, e.Msg)
}

// NewResolveError constructs a ResolveError with an attached stack trace.
func NewResolveError(line int, lexeme string, msg string) error {
	return errors.WithStack(&ResolveError{
		Pos:    Position{Line: line},
		Lexeme: lexeme,
		Msg:    msg,
	})
}

// RuntimeError is raised while evaluating a program, either by the
// tree-walking evaluator or the bytecode VM.
type RuntimeError struct {
	Pos Position
	Msg string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s\n[line %d]", e.Msg, e.Pos.Line)
}

// NewRuntimeError constructs a RuntimeError with an attached stack trace.
func NewRuntimeError(line int, msg string) error {
	return errors.WithStack(&RuntimeError{Pos: Position{Line: line}, Msg: msg})
}

// MultiError joins the static errors collected across an entire parse or
// resolve pass. Execution never starts if a MultiError is non-empty.
type MultiError struct {
	Errs []error
}

func (m *MultiError) Error() string {
	lines := make([]string, len(m.Errs))
	for i, err := range m.Errs {
		lines[i] = err.Error()
	}
	return strings.Join(lines, "\n")
}

// Add appends an error to the collection.
func (m *MultiError) Add(err error) {
	m.Errs = append(m.Errs, err)
}

// HasErrors reports whether any error was collected.
func (m *MultiError) HasErrors() bool {
	return len(m.Errs) > 0
}

// AsError returns m as an error if it holds any errors, or nil otherwise -
// the idiomatic way to return a possibly-empty MultiError from a pass.
func (m *MultiError) AsError() error {
	if !m.HasErrors() {
		return nil
	}
	return m
}

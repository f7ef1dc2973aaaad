// Package diag formats the error taxonomy of internal/loxerr onto an
// io.Writer, colorizing the severity tag with github.com/fatih/color.
package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/pkg/errors"

	"github.com/loxlang/golox/internal/loxerr"
)

// Printer writes diagnostics to an underlying writer, with color
// enabled or disabled per stream (color disables itself automatically
// on a non-tty, matching fatih/color's default NoColor detection).
type Printer struct {
	w io.Writer
}

func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

var errTag = color.New(color.FgRed, color.Bold).SprintFunc()

// Report writes err (static errors: "[line N] Error...: msg"; runtime
// errors: "msg\n[line N]") and returns the process exit code sysexits.h
// assigns to its category.
func (p *Printer) Report(err error) int {
	if err == nil {
		return 0
	}
	if me, ok := err.(*loxerr.MultiError); ok {
		for _, e := range me.Errs {
			p.reportOne(e)
		}
		return 65
	}
	return p.reportOne(err)
}

func (p *Printer) reportOne(err error) int {
	switch errors.Cause(err).(type) {
	case *loxerr.LexError, *loxerr.ParseError:
		fmt.Fprintf(p.w, "%s %s\n", errTag("error:"), err.Error())
		return 65
	case *loxerr.ResolveError:
		fmt.Fprintf(p.w, "%s %s\n", errTag("error:"), err.Error())
		return 65
	case *loxerr.RuntimeError:
		fmt.Fprintf(p.w, "%s\n", err.Error())
		return 70
	default:
		fmt.Fprintf(p.w, "%s %s\n", errTag("error:"), err.Error())
		return 70
	}
}

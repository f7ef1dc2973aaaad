package diag

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/loxlang/golox/internal/loxerr"
)

func TestReportNilIsZeroExitNoOutput(t *testing.T) {
	var buf bytes.Buffer
	code := New(&buf).Report(nil)
	assert.Equal(t, 0, code)
	assert.Empty(t, buf.String())
}

func TestReportLexErrorExits65(t *testing.T) {
	var buf bytes.Buffer
	code := New(&buf).Report(loxerr.NewLexError(3, "Unexpected character '@'."))
	assert.Equal(t, 65, code)
	assert.Contains(t, buf.String(), "[line 3] Error: Unexpected character '@'.")
}

func TestReportRuntimeErrorExits70(t *testing.T) {
	var buf bytes.Buffer
	code := New(&buf).Report(loxerr.NewRuntimeError(7, "Undefined variable 'x'."))
	assert.Equal(t, 70, code)
	assert.Contains(t, buf.String(), "Undefined variable 'x'.")
	assert.Contains(t, buf.String(), "[line 7]")
}

func TestReportMultiErrorExits65AndPrintsEach(t *testing.T) {
	var me loxerr.MultiError
	me.Add(loxerr.NewParseError(1, "x", false, "Expect ';' after expression."))
	me.Add(loxerr.NewParseError(2, "y", false, "Expect ')' after arguments."))

	var buf bytes.Buffer
	code := New(&buf).Report(&me)
	assert.Equal(t, 65, code)
	assert.Contains(t, buf.String(), "Expect ';' after expression.")
	assert.Contains(t, buf.String(), "Expect ')' after arguments.")
}

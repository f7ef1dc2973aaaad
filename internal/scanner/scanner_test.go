package scanner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loxlang/golox/internal/token"
)

func scan(t *testing.T, src string) []token.Token {
	t.Helper()
	toks, err := New([]byte(src)).Scan()
	require.NoError(t, err)
	return toks
}

func types(toks []token.Token) []token.Type {
	out := make([]token.Type, len(toks))
	for i, tok := range toks {
		out[i] = tok.Type
	}
	return out
}

func TestScanPunctuationAndOperators(t *testing.T) {
	toks := scan(t, `(){},.-+;*/ == != <= >= < > = !`)
	assert.Equal(t, []token.Type{
		token.LEFT_PAREN, token.RIGHT_PAREN, token.LEFT_BRACE, token.RIGHT_BRACE,
		token.COMMA, token.DOT, token.MINUS, token.PLUS, token.SEMICOLON,
		token.STAR, token.SLASH,
		token.EQUAL_EQUAL, token.BANG_EQUAL, token.LESS_EQUAL, token.GREATER_EQUAL,
		token.LESS, token.GREATER, token.EQUAL, token.BANG,
		token.EOF,
	}, types(toks))
}

func TestScanSkipsLineComments(t *testing.T) {
	toks := scan(t, "1 // a comment\n2")
	assert.Equal(t, []token.Type{token.NUMBER, token.NUMBER, token.EOF}, types(toks))
}

func TestScanKeywordsVsIdentifiers(t *testing.T) {
	toks := scan(t, "class orchard")
	require.Len(t, toks, 3)
	assert.Equal(t, token.CLASS, toks[0].Type)
	assert.Equal(t, token.IDENTIFIER, toks[1].Type)
	assert.Equal(t, "orchard", toks[1].Lexeme)
}

func TestScanStringLiteral(t *testing.T) {
	toks := scan(t, `"hello world"`)
	require.Len(t, toks, 2)
	assert.Equal(t, token.STRING, toks[0].Type)
	assert.Equal(t, "hello world", toks[0].Literal)
}

func TestScanUnterminatedStringIsLexError(t *testing.T) {
	_, err := New([]byte(`"abc`)).Scan()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unterminated string.")
}

func TestScanUnexpectedCharacterIsLexError(t *testing.T) {
	_, err := New([]byte("@")).Scan()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unexpected character")
}

func TestScanNumberLiteral(t *testing.T) {
	toks := scan(t, "123.45")
	require.Len(t, toks, 2)
	assert.Equal(t, token.NUMBER, toks[0].Type)
	assert.Equal(t, "123.45", toks[0].Lexeme)
}

// TestScanLineCountRoundTrip checks that the highest line number seen
// across all tokens equals the number of LF characters plus 1.
func TestScanLineCountRoundTrip(t *testing.T) {
	src := "var a = 1;\nvar b = 2;\nprint a + b;\n"
	toks := scan(t, src)

	maxLine := 0
	for _, tok := range toks {
		if tok.Line > maxLine {
			maxLine = tok.Line
		}
	}
	assert.Equal(t, strings.Count(src, "\n")+1, maxLine)
}

func TestScanAlwaysTerminatesWithEOF(t *testing.T) {
	toks := scan(t, "")
	require.Len(t, toks, 1)
	assert.Equal(t, token.EOF, toks[0].Type)
}

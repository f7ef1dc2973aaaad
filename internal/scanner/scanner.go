// Package scanner turns Lox source text into a token stream. It is shared
// by both the tree-walking engine and the bytecode compiler.
package scanner

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/loxlang/golox/internal/loxerr"
	"github.com/loxlang/golox/internal/token"
)

// Scanner produces a token stream from a borrowed source buffer. It never
// aborts on a bad character or an unterminated string - it records an
// error and keeps scanning.
type Scanner struct {
	line int
	src  []byte
	idx  int
	ch   byte
	errs loxerr.MultiError
}

// New creates a Scanner over src. Line always starts at 1, so REPL
// callers never leak a "[line -1]" placeholder into diagnostics.
func New(src []byte) *Scanner {
	return &Scanner{
		line: 1,
		src:  src,
		idx:  -1,
	}
}

func (s *Scanner) next() bool {
	if s.idx == len(s.src)-1 {
		return false
	}
	s.idx++
	s.ch = s.src[s.idx]
	return true
}

func (s *Scanner) peek() byte {
	if s.idx == len(s.src)-1 {
		return 0
	}
	return s.src[s.idx+1]
}

func (s *Scanner) peekTwo() byte {
	if s.idx >= len(s.src)-2 {
		return 0
	}
	return s.src[s.idx+2]
}

func (s *Scanner) comment() {
	for s.peek() != '\n' && s.next() {
	}
}

func (s *Scanner) stringLiteral() (string, bool) {
	start := s.idx
	for {
		if !s.next() {
			s.errs.Add(loxerr.NewLexError(s.line, "Unterminated string."))
			return "", false
		}
		if s.ch == '\n' {
			s.line++
		}
		if s.ch == '"' {
			break
		}
	}
	return string(s.src[start : s.idx+1]), true
}

func (s *Scanner) numberLiteral() (lexeme, literal string) {
	start := s.idx
	for isDigit(s.peek()) {
		s.next()
	}
	if s.peek() == '.' && isDigit(s.peekTwo()) {
		s.next()
		for isDigit(s.peek()) {
			s.next()
		}
	}

	lexeme = string(s.src[start : s.idx+1])
	f, _ := strconv.ParseFloat(lexeme, 64)
	literal = strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.Contains(literal, ".") && !strings.ContainsAny(literal, "eE") {
		literal += ".0"
	}
	return lexeme, literal
}

func (s *Scanner) identifier() string {
	start := s.idx
	for isAlphaNumeric(s.peek()) {
		s.next()
	}
	return string(s.src[start : s.idx+1])
}

// Scan consumes the entire buffer and returns the token stream (always
// terminated by an EOF token) together with any lexical errors found.
func (s *Scanner) Scan() ([]token.Token, error) {
	toks := make([]token.Token, 0, len(s.src)+1)

	for s.next() {
		switch s.ch {
		case ' ', '\t', '\r':
		case '\n':
			s.line++
		case '(':
			toks = append(toks, s.tok(token.LEFT_PAREN, string(s.ch)))
		case ')':
			toks = append(toks, s.tok(token.RIGHT_PAREN, string(s.ch)))
		case '{':
			toks = append(toks, s.tok(token.LEFT_BRACE, string(s.ch)))
		case '}':
			toks = append(toks, s.tok(token.RIGHT_BRACE, string(s.ch)))
		case ',':
			toks = append(toks, s.tok(token.COMMA, string(s.ch)))
		case '.':
			toks = append(toks, s.tok(token.DOT, string(s.ch)))
		case '-':
			toks = append(toks, s.tok(token.MINUS, string(s.ch)))
		case '+':
			toks = append(toks, s.tok(token.PLUS, string(s.ch)))
		case ';':
			toks = append(toks, s.tok(token.SEMICOLON, string(s.ch)))
		case '*':
			toks = append(toks, s.tok(token.STAR, string(s.ch)))
		case '/':
			if s.peek() == '/' {
				s.comment()
			} else {
				toks = append(toks, s.tok(token.SLASH, string(s.ch)))
			}
		case '=':
			if s.peek() == '=' {
				s.next()
				toks = append(toks, s.tok(token.EQUAL_EQUAL, "=="))
			} else {
				toks = append(toks, s.tok(token.EQUAL, string(s.ch)))
			}
		case '!':
			if s.peek() == '=' {
				s.next()
				toks = append(toks, s.tok(token.BANG_EQUAL, "!="))
			} else {
				toks = append(toks, s.tok(token.BANG, string(s.ch)))
			}
		case '<':
			if s.peek() == '=' {
				s.next()
				toks = append(toks, s.tok(token.LESS_EQUAL, "<="))
			} else {
				toks = append(toks, s.tok(token.LESS, string(s.ch)))
			}
		case '>':
			if s.peek() == '=' {
				s.next()
				toks = append(toks, s.tok(token.GREATER_EQUAL, ">="))
			} else {
				toks = append(toks, s.tok(token.GREATER, string(s.ch)))
			}
		case '"':
			if str, ok := s.stringLiteral(); ok {
				t := s.tok(token.STRING, str)
				t.Literal = strings.Trim(str, "\"")
				toks = append(toks, t)
			}
		default:
			switch {
			case isDigit(s.ch):
				lexeme, literal := s.numberLiteral()
				t := s.tok(token.NUMBER, lexeme)
				t.Literal = literal
				toks = append(toks, t)
			case isAlpha(s.ch):
				ident := s.identifier()
				if kw, ok := token.Keywords[ident]; ok {
					toks = append(toks, s.tok(kw, ident))
				} else {
					toks = append(toks, s.tok(token.IDENTIFIER, ident))
				}
			default:
				s.errs.Add(loxerr.NewLexError(s.line, fmt.Sprintf("Unexpected character: %s", string(s.ch))))
			}
		}
	}

	toks = append(toks, token.Token{Type: token.EOF, Line: s.line})
	return toks, s.errs.AsError()
}

func (s *Scanner) tok(typ token.Type, lexeme string) token.Token {
	return token.Token{Type: typ, Lexeme: lexeme, Line: s.line}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isAlphaNumeric(c byte) bool { return isAlpha(c) || isDigit(c) }

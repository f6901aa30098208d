// Package lexer tokenizes the source subset consumed by the compiler
// front end. It is an external collaborator of the core pipeline: the
// normalizer and everything downstream only ever see the parsed tree.
package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Error reports a lexical error with its source position.
type Error struct {
	Message string
	Pos     Position
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Lexer scans source text into tokens.
type Lexer struct {
	input  string
	pos    int  // byte offset of the current rune
	ch     rune // current rune (0 = EOF)
	width  int  // byte width of the current rune
	line   int  // 1-based
	column int  // 1-based

	Errors []*Error
}

// New creates a lexer positioned at the first rune of input.
func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0, pos: -1}
	l.advance()
	return l
}

func (l *Lexer) advance() {
	if l.pos < 0 {
		l.pos = 0
	} else {
		if l.ch == '\n' {
			l.line++
			l.column = 0
		}
		l.pos += l.width
	}
	if l.pos >= len(l.input) {
		l.ch = 0
		l.width = 0
		l.column++
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.ch = r
	l.width = w
	l.column++
}

func (l *Lexer) peek() rune {
	if l.pos+l.width >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.pos+l.width:])
	return r
}

func (l *Lexer) position() Position {
	return Position{Line: l.line, Column: l.column, Offset: l.pos}
}

func (l *Lexer) addError(msg string, pos Position) {
	l.Errors = append(l.Errors, &Error{Message: msg, Pos: pos})
}

// Tokens scans the whole input. The final token is always EOF.
func (l *Lexer) Tokens() []Token {
	var toks []Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Type == EOF {
			return toks
		}
	}
}

// Next returns the next token.
func (l *Lexer) Next() Token {
	l.skipSpaceAndComments()

	start := l.position()

	switch {
	case l.ch == 0:
		return l.token(EOF, start, "")
	case isIdentStart(l.ch):
		return l.scanIdent(start)
	case unicode.IsDigit(l.ch):
		return l.scanNumber(start)
	case l.ch == '"' || l.ch == '\'':
		return l.scanString(start)
	}

	return l.scanOperator(start)
}

func (l *Lexer) skipSpaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
			l.advance()
		}
		if l.ch == '/' && l.peek() == '/' {
			for l.ch != '\n' && l.ch != 0 {
				l.advance()
			}
			continue
		}
		if l.ch == '/' && l.peek() == '*' {
			pos := l.position()
			l.advance()
			l.advance()
			closed := false
			for l.ch != 0 {
				if l.ch == '*' && l.peek() == '/' {
					l.advance()
					l.advance()
					closed = true
					break
				}
				l.advance()
			}
			if !closed {
				l.addError("unterminated block comment", pos)
			}
			continue
		}
		return
	}
}

func (l *Lexer) token(t TokenType, start Position, raw string) Token {
	return Token{
		Type:  t,
		Raw:   raw,
		Value: raw,
		Span:  Span{Start: start, End: l.position()},
	}
}

func (l *Lexer) scanIdent(start Position) Token {
	for isIdentStart(l.ch) || unicode.IsDigit(l.ch) {
		l.advance()
	}
	raw := l.input[start.Offset:l.pos]
	return l.token(LookupIdent(raw), start, raw)
}

func (l *Lexer) scanNumber(start Position) Token {
	for unicode.IsDigit(l.ch) {
		l.advance()
	}
	if l.ch == '.' && unicode.IsDigit(l.peek()) {
		l.advance()
		for unicode.IsDigit(l.ch) {
			l.advance()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		l.advance()
		if l.ch == '+' || l.ch == '-' {
			l.advance()
		}
		if !unicode.IsDigit(l.ch) {
			l.addError("malformed number exponent", start)
		}
		for unicode.IsDigit(l.ch) {
			l.advance()
		}
	}
	raw := l.input[start.Offset:l.pos]
	return l.token(NUMBER, start, raw)
}

func (l *Lexer) scanString(start Position) Token {
	quote := l.ch
	l.advance()
	var sb strings.Builder
	for l.ch != quote {
		if l.ch == 0 || l.ch == '\n' {
			l.addError("unterminated string literal", start)
			break
		}
		if l.ch == '\\' {
			l.advance()
			switch l.ch {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '\\', '\'', '"':
				sb.WriteRune(l.ch)
			case '0':
				sb.WriteByte(0)
			default:
				sb.WriteRune(l.ch)
			}
			l.advance()
			continue
		}
		sb.WriteRune(l.ch)
		l.advance()
	}
	if l.ch == quote {
		l.advance()
	}
	tok := l.token(STRING, start, l.input[start.Offset:l.pos])
	tok.Value = sb.String()
	return tok
}

func (l *Lexer) scanOperator(start Position) Token {
	ch := l.ch

	// Longest-match three-character operators first.
	three := l.slice(3)
	switch three {
	case "===", "!==", "...":
		l.advance()
		l.advance()
		l.advance()
		return l.token(TokenType(three), start, three)
	}

	two := l.slice(2)
	switch two {
	case "**", "+=", "-=", "*=", "/=", "%=", "++", "--", "==", "!=",
		"<=", ">=", "&&", "||", "=>":
		l.advance()
		l.advance()
		return l.token(TokenType(two), start, two)
	}

	switch ch {
	case '=', '+', '-', '*', '/', '%', '!', '<', '>', '?', ',', ';', ':',
		'.', '(', ')', '{', '}', '[', ']':
		l.advance()
		return l.token(TokenType(string(ch)), start, string(ch))
	}

	l.addError(fmt.Sprintf("illegal character %q", ch), start)
	l.advance()
	return l.token(ILLEGAL, start, string(ch))
}

func (l *Lexer) slice(n int) string {
	end := l.pos + n
	if end > len(l.input) {
		end = len(l.input)
	}
	return l.input[l.pos:end]
}

func isIdentStart(ch rune) bool {
	return ch == '_' || ch == '$' || unicode.IsLetter(ch)
}

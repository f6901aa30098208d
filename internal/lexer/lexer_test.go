package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenTypes(src string) []TokenType {
	toks := New(src).Tokens()
	types := make([]TokenType, 0, len(toks))
	for _, tok := range toks {
		types = append(types, tok.Type)
	}
	return types
}

func TestScanDeclaration(t *testing.T) {
	types := tokenTypes("const [a, , c] = arr;")
	assert.Equal(t, []TokenType{
		CONST, LBRACKET, IDENT, COMMA, COMMA, IDENT, RBRACKET,
		ASSIGN, IDENT, SEMICOLON, EOF,
	}, types)
}

func TestOperatorLongestMatch(t *testing.T) {
	cases := []struct {
		src  string
		want []TokenType
	}{
		{"a === b", []TokenType{IDENT, STRICT_EQ, IDENT, EOF}},
		{"a == b", []TokenType{IDENT, EQ, IDENT, EOF}},
		{"a !== b", []TokenType{IDENT, STRICT_NEQ, IDENT, EOF}},
		{"a ** b", []TokenType{IDENT, POW, IDENT, EOF}},
		{"a * b", []TokenType{IDENT, STAR, IDENT, EOF}},
		{"x++", []TokenType{IDENT, INC, EOF}},
		{"x += 1", []TokenType{IDENT, PLUS_ASSIGN, NUMBER, EOF}},
		{"...rest", []TokenType{ELLIPSIS, IDENT, EOF}},
		{"a <= b && c >= d", []TokenType{IDENT, LE, IDENT, AND, IDENT, GE, IDENT, EOF}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tokenTypes(tc.src), "source %q", tc.src)
	}
}

func TestKeywordsVersusIdentifiers(t *testing.T) {
	types := tokenTypes("async function awaiting(typeofx) {}")
	assert.Equal(t, []TokenType{
		ASYNC, FUNCTION, IDENT, LPAREN, IDENT, RPAREN, LBRACE, RBRACE, EOF,
	}, types)
}

func TestStringEscapes(t *testing.T) {
	toks := New(`"a\n\"b\\"`).Tokens()
	require.Equal(t, STRING, toks[0].Type)
	assert.Equal(t, "a\n\"b\\", toks[0].Value)
	assert.Equal(t, `"a\n\"b\\"`, toks[0].Raw)
}

func TestSingleQuotedString(t *testing.T) {
	toks := New(`'hi'`).Tokens()
	require.Equal(t, STRING, toks[0].Type)
	assert.Equal(t, "hi", toks[0].Value)
}

func TestCommentsAreSkipped(t *testing.T) {
	src := "a // line comment\n/* block\ncomment */ b"
	assert.Equal(t, []TokenType{IDENT, IDENT, EOF}, tokenTypes(src))
}

func TestNumbers(t *testing.T) {
	toks := New("1 2.5 0.125e2").Tokens()
	require.Len(t, toks, 4)
	assert.Equal(t, "1", toks[0].Raw)
	assert.Equal(t, "2.5", toks[1].Raw)
	assert.Equal(t, "0.125e2", toks[2].Raw)
}

func TestPositions(t *testing.T) {
	toks := New("a\n  b").Tokens()
	require.Len(t, toks, 3)
	assert.Equal(t, 1, toks[0].Span.Start.Line)
	assert.Equal(t, 1, toks[0].Span.Start.Column)
	assert.Equal(t, 2, toks[1].Span.Start.Line)
	assert.Equal(t, 3, toks[1].Span.Start.Column)
}

func TestUnterminatedStringReported(t *testing.T) {
	l := New(`"abc`)
	l.Tokens()
	assert.NotEmpty(t, l.Errors)
}

func TestIllegalRuneReported(t *testing.T) {
	l := New("a @ b")
	toks := l.Tokens()
	assert.NotEmpty(t, l.Errors)
	var illegal bool
	for _, tok := range toks {
		if tok.Type == ILLEGAL {
			illegal = true
		}
	}
	assert.True(t, illegal)
}

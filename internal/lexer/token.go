package lexer

// TokenType represents the type of a token.
type TokenType string

// Position is a single source location, 1-based line/column plus byte
// offset.
type Position struct {
	Line   int
	Column int
	Offset int
}

// Span is a half-open source range.
type Span struct {
	Start Position
	End   Position
}

// Token represents a lexical token.
type Token struct {
	Type  TokenType
	Raw   string // exact source text
	Value string // decoded value (for strings; same as Raw otherwise)
	Span  Span
}

// Token type constants.
const (
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	// Identifiers and literals
	IDENT  TokenType = "IDENT"
	NUMBER TokenType = "NUMBER"
	STRING TokenType = "STRING"

	// Operators
	ASSIGN         TokenType = "="
	PLUS           TokenType = "+"
	MINUS          TokenType = "-"
	STAR           TokenType = "*"
	SLASH          TokenType = "/"
	PERCENT        TokenType = "%"
	POW            TokenType = "**"
	PLUS_ASSIGN    TokenType = "+="
	MINUS_ASSIGN   TokenType = "-="
	STAR_ASSIGN    TokenType = "*="
	SLASH_ASSIGN   TokenType = "/="
	PERCENT_ASSIGN TokenType = "%="
	INC            TokenType = "++"
	DEC            TokenType = "--"
	BANG           TokenType = "!"
	EQ             TokenType = "=="
	NOT_EQ         TokenType = "!="
	STRICT_EQ      TokenType = "==="
	STRICT_NEQ     TokenType = "!=="
	LT             TokenType = "<"
	GT             TokenType = ">"
	LE             TokenType = "<="
	GE             TokenType = ">="
	AND            TokenType = "&&"
	OR             TokenType = "||"
	QUESTION       TokenType = "?"
	ELLIPSIS       TokenType = "..."
	ARROW          TokenType = "=>"

	// Delimiters
	COMMA     TokenType = ","
	SEMICOLON TokenType = ";"
	COLON     TokenType = ":"
	DOT       TokenType = "."
	LPAREN    TokenType = "("
	RPAREN    TokenType = ")"
	LBRACE    TokenType = "{"
	RBRACE    TokenType = "}"
	LBRACKET  TokenType = "["
	RBRACKET  TokenType = "]"

	// Keywords
	FUNCTION TokenType = "FUNCTION"
	VAR      TokenType = "VAR"
	LET      TokenType = "LET"
	CONST    TokenType = "CONST"
	IF       TokenType = "IF"
	ELSE     TokenType = "ELSE"
	WHILE    TokenType = "WHILE"
	DO       TokenType = "DO"
	FOR      TokenType = "FOR"
	IN       TokenType = "IN"
	OF       TokenType = "OF"
	SWITCH   TokenType = "SWITCH"
	CASE     TokenType = "CASE"
	DEFAULT  TokenType = "DEFAULT"
	RETURN   TokenType = "RETURN"
	BREAK    TokenType = "BREAK"
	CONTINUE TokenType = "CONTINUE"
	THROW    TokenType = "THROW"
	TRY      TokenType = "TRY"
	CATCH    TokenType = "CATCH"
	FINALLY  TokenType = "FINALLY"
	NEW      TokenType = "NEW"
	TYPEOF   TokenType = "TYPEOF"
	ASYNC    TokenType = "ASYNC"
	AWAIT    TokenType = "AWAIT"
	TRUE     TokenType = "TRUE"
	FALSE    TokenType = "FALSE"
	NULL     TokenType = "NULL"
)

var keywords = map[string]TokenType{
	"function": FUNCTION,
	"var":      VAR,
	"let":      LET,
	"const":    CONST,
	"if":       IF,
	"else":     ELSE,
	"while":    WHILE,
	"do":       DO,
	"for":      FOR,
	"in":       IN,
	"of":       OF,
	"switch":   SWITCH,
	"case":     CASE,
	"default":  DEFAULT,
	"return":   RETURN,
	"break":    BREAK,
	"continue": CONTINUE,
	"throw":    THROW,
	"try":      TRY,
	"catch":    CATCH,
	"finally":  FINALLY,
	"new":      NEW,
	"typeof":   TYPEOF,
	"async":    ASYNC,
	"await":    AWAIT,
	"true":     TRUE,
	"false":    FALSE,
	"null":     NULL,
}

// LookupIdent returns the keyword token type for an identifier spelling,
// or IDENT when it is not a keyword.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

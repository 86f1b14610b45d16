package lexer

import "fmt"

// TokenType represents the type of a token
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF
	NEWLINE // end of a logical line
	INDENT  // indentation increased
	DEDENT  // indentation decreased

	// Literals
	IDENT      // x, y, myVariable
	INT_LIT    // 123
	FLOAT_LIT  // 123.45
	STRING_LIT // "hello" or 'hello'

	// Keywords
	IF
	ELIF
	ELSE
	FOR
	IN
	WHILE
	BREAK
	CONTINUE
	PASS
	AND
	OR
	NOT
	TRUE
	FALSE
	NONE

	// Operators
	PLUS        // +
	MINUS       // -
	STAR        // *
	SLASH       // /
	DSLASH      // //
	PERCENT     // %
	EQ          // ==
	NEQ         // !=
	LT          // <
	GT          // >
	LEQ         // <=
	GEQ         // >=
	ASSIGN      // =
	PLUS_EQ     // +=
	MINUS_EQ    // -=
	STAR_EQ     // *=
	SLASH_EQ    // /=

	// Delimiters
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]
	COMMA    // ,
	COLON    // :
	DOT      // .
)

// Token represents a lexical token
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

var tokenNames = map[TokenType]string{
	ILLEGAL:    "ILLEGAL",
	EOF:        "EOF",
	NEWLINE:    "NEWLINE",
	INDENT:     "INDENT",
	DEDENT:     "DEDENT",
	IDENT:      "IDENT",
	INT_LIT:    "INT_LIT",
	FLOAT_LIT:  "FLOAT_LIT",
	STRING_LIT: "STRING_LIT",
	IF:         "if",
	ELIF:       "elif",
	ELSE:       "else",
	FOR:        "for",
	IN:         "in",
	WHILE:      "while",
	BREAK:      "break",
	CONTINUE:   "continue",
	PASS:       "pass",
	AND:        "and",
	OR:         "or",
	NOT:        "not",
	TRUE:       "True",
	FALSE:      "False",
	NONE:       "None",
	PLUS:       "+",
	MINUS:      "-",
	STAR:       "*",
	SLASH:      "/",
	DSLASH:     "//",
	PERCENT:    "%",
	EQ:         "==",
	NEQ:        "!=",
	LT:         "<",
	GT:         ">",
	LEQ:        "<=",
	GEQ:        ">=",
	ASSIGN:     "=",
	PLUS_EQ:    "+=",
	MINUS_EQ:   "-=",
	STAR_EQ:    "*=",
	SLASH_EQ:   "/=",
	LPAREN:     "(",
	RPAREN:     ")",
	LBRACKET:   "[",
	RBRACKET:   "]",
	COMMA:      ",",
	COLON:      ":",
	DOT:        ".",
}

// String returns a string representation of the token type
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", t)
}

// keywords maps keyword strings to their token types
var keywords = map[string]TokenType{
	"if":       IF,
	"elif":     ELIF,
	"else":     ELSE,
	"for":      FOR,
	"in":       IN,
	"while":    WHILE,
	"break":    BREAK,
	"continue": CONTINUE,
	"pass":     PASS,
	"and":      AND,
	"or":       OR,
	"not":      NOT,
	"True":     TRUE,
	"False":    FALSE,
	"None":     NONE,
}

// LookupIdent checks if an identifier is a keyword
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

package lexer

import "strings"

// tabWidth is the column a tab advances indentation to a multiple of.
const tabWidth = 8

// Lexer scans Python-subset source code and produces tokens, including the
// NEWLINE, INDENT and DEDENT tokens that carry the block structure.
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int  // current line number
	column       int  // current column number

	indents     []int   // indentation stack, always starts with 0
	parenDepth  int     // newlines inside brackets are ignored
	atLineStart bool    // next token starts a logical line
	pending     []Token // queued DEDENT tokens
	last        TokenType
}

// New creates a new Lexer instance
func New(input string) *Lexer {
	l := &Lexer{
		input:       input,
		line:        1,
		column:      0,
		indents:     []int{0},
		atLineStart: true,
		last:        NEWLINE,
	}
	l.readChar()
	return l
}

// readChar reads the next character and advances the position
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0 // ASCII code for NUL
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

// peekChar returns the next character without advancing the position
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// skipInlineWhitespace skips spaces, tabs, carriage returns and
// backslash line continuations, but not newlines.
func (l *Lexer) skipInlineWhitespace() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\f':
			l.readChar()
		case l.ch == '\\' && (l.peekChar() == '\n' || l.peekChar() == '\r'):
			l.readChar()
			for l.ch == '\r' {
				l.readChar()
			}
			l.readChar() // consume '\n'
		default:
			return
		}
	}
}

// skipComment skips a '#' comment up to (not including) the newline
func (l *Lexer) skipComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

// measureIndent consumes leading whitespace and returns its width
func (l *Lexer) measureIndent() int {
	width := 0
	for {
		switch l.ch {
		case ' ':
			width++
		case '\t':
			width = (width/tabWidth + 1) * tabWidth
		case '\r', '\f':
		default:
			return width
		}
		l.readChar()
	}
}

// readIdentifier reads an identifier or keyword
func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber reads a numeric literal (integer or float)
func (l *Lexer) readNumber() (string, TokenType) {
	position := l.position
	tokenType := INT_LIT

	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		tokenType = FLOAT_LIT
		l.readChar() // consume '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	return l.input[position:l.position], tokenType
}

// readString reads a quoted string literal and returns its decoded value.
// The current char is the opening quote.
func (l *Lexer) readString() (string, bool) {
	quote := l.ch
	var sb strings.Builder

	for {
		l.readChar()
		if l.ch == 0 || l.ch == '\n' {
			return "", false
		}
		if l.ch == quote {
			break
		}
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '\\', '\'', '"':
				sb.WriteByte(l.ch)
			case 0:
				return "", false
			default:
				// Unknown escapes keep their backslash, as Python does
				sb.WriteByte('\\')
				sb.WriteByte(l.ch)
			}
			continue
		}
		sb.WriteByte(l.ch)
	}

	return sb.String(), true
}

func (l *Lexer) emit(tok Token) Token {
	l.last = tok.Type
	return tok
}

// lineStart handles indentation at the start of a logical line. It returns
// an INDENT token, queues DEDENT tokens, or returns ok=false when the line
// carries no indentation change.
func (l *Lexer) lineStart() (Token, bool) {
	for {
		width := l.measureIndent()
		line, col := l.line, l.column

		if l.ch == '#' {
			l.skipComment()
		}
		if l.ch == '\n' {
			// Blank or comment-only line
			l.readChar()
			continue
		}
		if l.ch == 0 {
			return Token{}, false
		}

		l.atLineStart = false
		top := l.indents[len(l.indents)-1]
		if width > top {
			l.indents = append(l.indents, width)
			return Token{Type: INDENT, Line: line, Column: col}, true
		}
		for width < l.indents[len(l.indents)-1] {
			l.indents = l.indents[:len(l.indents)-1]
			l.pending = append(l.pending, Token{Type: DEDENT, Line: line, Column: col})
		}
		if width != l.indents[len(l.indents)-1] {
			l.pending = append(l.pending, Token{Type: ILLEGAL, Literal: "unindent does not match any outer indentation level", Line: line, Column: col})
		}
		return Token{}, false
	}
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() Token {
	if len(l.pending) > 0 {
		tok := l.pending[0]
		l.pending = l.pending[1:]
		return l.emit(tok)
	}

	if l.atLineStart && l.parenDepth == 0 {
		if tok, ok := l.lineStart(); ok {
			return l.emit(tok)
		}
		if len(l.pending) > 0 {
			return l.NextToken()
		}
	}

	l.skipInlineWhitespace()
	if l.ch == '#' {
		l.skipComment()
	}

	tok := Token{Line: l.line, Column: l.column}

	switch l.ch {
	case '\n':
		l.readChar()
		if l.parenDepth > 0 {
			return l.NextToken()
		}
		l.atLineStart = true
		if l.last == NEWLINE || l.last == INDENT || l.last == DEDENT {
			return l.NextToken()
		}
		tok.Type = NEWLINE
		return l.emit(tok)
	case 0:
		// Close the last logical line, then unwind indentation
		if l.last != NEWLINE && l.last != DEDENT && l.last != INDENT {
			tok.Type = NEWLINE
			return l.emit(tok)
		}
		if len(l.indents) > 1 {
			l.indents = l.indents[:len(l.indents)-1]
			tok.Type = DEDENT
			return l.emit(tok)
		}
		tok.Type = EOF
		return l.emit(tok)
	case '=':
		tok.Type, tok.Literal = l.twoChar('=', EQ, ASSIGN)
	case '!':
		tok.Type, tok.Literal = l.twoChar('=', NEQ, ILLEGAL)
	case '<':
		tok.Type, tok.Literal = l.twoChar('=', LEQ, LT)
	case '>':
		tok.Type, tok.Literal = l.twoChar('=', GEQ, GT)
	case '+':
		tok.Type, tok.Literal = l.twoChar('=', PLUS_EQ, PLUS)
	case '-':
		tok.Type, tok.Literal = l.twoChar('=', MINUS_EQ, MINUS)
	case '*':
		tok.Type, tok.Literal = l.twoChar('=', STAR_EQ, STAR)
	case '/':
		if l.peekChar() == '/' {
			l.readChar()
			tok.Type, tok.Literal = DSLASH, "//"
		} else {
			tok.Type, tok.Literal = l.twoChar('=', SLASH_EQ, SLASH)
		}
	case '%':
		tok.Type, tok.Literal = PERCENT, "%"
	case '(':
		l.parenDepth++
		tok.Type, tok.Literal = LPAREN, "("
	case ')':
		if l.parenDepth > 0 {
			l.parenDepth--
		}
		tok.Type, tok.Literal = RPAREN, ")"
	case '[':
		l.parenDepth++
		tok.Type, tok.Literal = LBRACKET, "["
	case ']':
		if l.parenDepth > 0 {
			l.parenDepth--
		}
		tok.Type, tok.Literal = RBRACKET, "]"
	case ',':
		tok.Type, tok.Literal = COMMA, ","
	case ':':
		tok.Type, tok.Literal = COLON, ":"
	case '.':
		tok.Type, tok.Literal = DOT, "."
	case '"', '\'':
		str, ok := l.readString()
		if !ok {
			tok.Type, tok.Literal = ILLEGAL, "unterminated string"
			return l.emit(tok)
		}
		tok.Type, tok.Literal = STRING_LIT, str
	default:
		if isLetter(l.ch) {
			ident := l.readIdentifier()
			tok.Type, tok.Literal = LookupIdent(ident), ident
			return l.emit(tok) // readIdentifier already advanced
		}
		if isDigit(l.ch) {
			tok.Literal, tok.Type = l.readNumber()
			return l.emit(tok) // readNumber already advanced
		}
		tok.Type, tok.Literal = ILLEGAL, string(l.ch)
	}

	l.readChar()
	return l.emit(tok)
}

// twoChar resolves a one- or two-character operator. The current char is
// the first character; if the next one is second it is consumed too.
func (l *Lexer) twoChar(second byte, long, short TokenType) (TokenType, string) {
	first := l.ch
	if l.peekChar() == second {
		l.readChar()
		return long, string([]byte{first, second})
	}
	return short, string(first)
}

// Tokenize returns all tokens from the input
func (l *Lexer) Tokenize() []Token {
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			break
		}
	}
	return tokens
}

// Helper functions

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

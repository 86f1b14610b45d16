package parser

import (
	"github.com/lhaig/pybat/internal/diagnostic"
	"github.com/lhaig/pybat/internal/lexer"
)

// Parser holds the parser state
type Parser struct {
	tokens []lexer.Token
	pos    int
	diags  *diagnostic.Diagnostics
}

// current returns the current token
func (p *Parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return lexer.Token{Type: lexer.EOF}
	}
	return p.tokens[p.pos]
}

// peek returns the next token without consuming
func (p *Parser) peek() lexer.Token {
	if p.pos+1 >= len(p.tokens) {
		return lexer.Token{Type: lexer.EOF}
	}
	return p.tokens[p.pos+1]
}

// advance moves to the next token and returns the consumed token
func (p *Parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// expect consumes the current token if it matches the expected type,
// otherwise reports an error
func (p *Parser) expect(tt lexer.TokenType) lexer.Token {
	tok := p.current()
	if tok.Type != tt {
		p.errorAt(tok, "expected %s, got %s", tt, describe(tok))
		return tok
	}
	return p.advance()
}

// check returns true if the current token is of the given type
func (p *Parser) check(tt lexer.TokenType) bool {
	return p.current().Type == tt
}

// match consumes the current token if it matches, returns true if consumed
func (p *Parser) match(tt lexer.TokenType) bool {
	if p.check(tt) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) errorAt(tok lexer.Token, format string, args ...interface{}) {
	p.diags.Errorf(tok.Line, tok.Column, format, args...)
}

// synchronize skips tokens until the end of the current logical line.
// A DEDENT or EOF is left in place for the enclosing suite.
func (p *Parser) synchronize() {
	for !p.check(lexer.EOF) {
		switch p.current().Type {
		case lexer.NEWLINE:
			p.advance()
			return
		case lexer.DEDENT:
			return
		}
		p.advance()
	}
}

// describe renders a token for error messages
func describe(tok lexer.Token) string {
	switch tok.Type {
	case lexer.IDENT:
		return "name '" + tok.Literal + "'"
	case lexer.ILLEGAL:
		return "illegal token '" + tok.Literal + "'"
	case lexer.INT_LIT, lexer.FLOAT_LIT:
		return "number " + tok.Literal
	case lexer.STRING_LIT:
		return "string literal"
	default:
		return "'" + tok.Type.String() + "'"
	}
}

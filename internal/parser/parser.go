package parser

import (
	"strings"

	"github.com/lhaig/pybat/internal/ast"
	"github.com/lhaig/pybat/internal/diagnostic"
	"github.com/lhaig/pybat/internal/lexer"
)

// New creates a new parser
func New(source string) *Parser {
	l := lexer.New(source)
	tokens := l.Tokenize()
	return &Parser{
		tokens: tokens,
		pos:    0,
		diags:  diagnostic.New(),
	}
}

// Diagnostics returns the parser's diagnostics
func (p *Parser) Diagnostics() *diagnostic.Diagnostics {
	return p.diags
}

// Parse parses the token stream into a Program AST
func (p *Parser) Parse() *ast.Program {
	prog := &ast.Program{}
	for !p.check(lexer.EOF) {
		if p.match(lexer.NEWLINE) {
			continue
		}
		if p.check(lexer.INDENT) || p.check(lexer.DEDENT) {
			p.errorAt(p.current(), "unexpected indentation")
			p.advance()
			continue
		}
		startPos := p.pos
		if stmt := p.parseStatement(); stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
		if p.pos == startPos {
			p.advance() // ensure forward progress to avoid infinite loop
		}
	}
	return prog
}

// parseStatement parses a compound statement or a simple statement line.
// It returns nil for `pass` and after errors.
func (p *Parser) parseStatement() ast.Statement {
	switch p.current().Type {
	case lexer.IF:
		return p.parseIfStmt()
	case lexer.WHILE:
		return p.parseWhileStmt()
	case lexer.FOR:
		return p.parseForStmt()
	default:
		stmt := p.parseSimpleStmt()
		if !p.check(lexer.EOF) && !p.check(lexer.DEDENT) {
			if !p.check(lexer.NEWLINE) {
				p.errorAt(p.current(), "expected end of line, got %s", describe(p.current()))
				p.synchronize()
				return nil
			}
			p.advance()
		}
		return stmt
	}
}

// parseSimpleStmt parses a one-line statement without its NEWLINE
func (p *Parser) parseSimpleStmt() ast.Statement {
	tok := p.current()
	switch tok.Type {
	case lexer.PASS:
		p.advance()
		return nil
	case lexer.BREAK:
		p.advance()
		return &ast.BreakStmt{Line: tok.Line, Column: tok.Column}
	case lexer.CONTINUE:
		p.advance()
		return &ast.ContinueStmt{Line: tok.Line, Column: tok.Column}
	default:
		return p.parseExprStmtOrAssign()
	}
}

// parseSuite parses `: NEWLINE INDENT stmts DEDENT` or `: simple_stmt`
func (p *Parser) parseSuite() *ast.Block {
	colon := p.expect(lexer.COLON)
	block := &ast.Block{Line: colon.Line, Column: colon.Column}

	if !p.check(lexer.NEWLINE) {
		// Single-line suite: if x: print(x)
		if stmt := p.parseSimpleStmt(); stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		if !p.check(lexer.EOF) && !p.check(lexer.DEDENT) {
			p.expect(lexer.NEWLINE)
		}
		return block
	}

	p.advance() // NEWLINE
	if !p.match(lexer.INDENT) {
		p.errorAt(p.current(), "expected an indented block")
		return block
	}
	for !p.check(lexer.DEDENT) && !p.check(lexer.EOF) {
		if p.match(lexer.NEWLINE) {
			continue
		}
		startPos := p.pos
		if stmt := p.parseStatement(); stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		if p.pos == startPos {
			p.advance()
		}
	}
	p.match(lexer.DEDENT)
	return block
}

// parseIfStmt parses: if <expr>: suite (elif <expr>: suite)* [else: suite]
func (p *Parser) parseIfStmt() *ast.IfStmt {
	tok := p.advance() // IF or ELIF
	condition := p.parseExpression()
	then := p.parseSuite()

	stmt := &ast.IfStmt{
		Condition: condition,
		Then:      then,
		Line:      tok.Line,
		Column:    tok.Column,
	}

	switch {
	case p.check(lexer.ELIF):
		elif := p.parseIfStmt()
		stmt.Else = &ast.Block{
			Statements: []ast.Statement{elif},
			Line:       elif.Line,
			Column:     elif.Column,
		}
	case p.match(lexer.ELSE):
		stmt.Else = p.parseSuite()
	}
	return stmt
}

// parseWhileStmt parses: while <expr>: suite
func (p *Parser) parseWhileStmt() *ast.WhileStmt {
	tok := p.expect(lexer.WHILE)
	condition := p.parseExpression()
	body := p.parseSuite()
	return &ast.WhileStmt{
		Condition: condition,
		Body:      body,
		Line:      tok.Line,
		Column:    tok.Column,
	}
}

// parseForStmt parses: for <targets> in <iterable>: suite
func (p *Parser) parseForStmt() *ast.ForStmt {
	tok := p.expect(lexer.FOR)
	target := p.parseTargetList()
	p.expect(lexer.IN)
	iterable := p.parseTestList()
	body := p.parseSuite()
	return &ast.ForStmt{
		Target:   target,
		Iterable: iterable,
		Body:     body,
		Line:     tok.Line,
		Column:   tok.Column,
	}
}

// parseTargetList parses the loop target(s) of a for statement. It stops
// at `in`, so comparisons are not consumed.
func (p *Parser) parseTargetList() ast.Expression {
	first := p.parsePostfix()
	if !p.check(lexer.COMMA) {
		return first
	}
	line, col := first.Pos()
	tuple := &ast.TupleExpr{Elements: []ast.Expression{first}, Line: line, Column: col}
	for p.match(lexer.COMMA) {
		if p.check(lexer.IN) {
			break
		}
		tuple.Elements = append(tuple.Elements, p.parsePostfix())
	}
	return tuple
}

var augOps = map[lexer.TokenType]lexer.TokenType{
	lexer.PLUS_EQ:  lexer.PLUS,
	lexer.MINUS_EQ: lexer.MINUS,
	lexer.STAR_EQ:  lexer.STAR,
	lexer.SLASH_EQ: lexer.SLASH,
}

// parseExprStmtOrAssign parses an expression statement, an assignment
// (possibly cascaded) or an augmented assignment
func (p *Parser) parseExprStmtOrAssign() ast.Statement {
	tok := p.current()
	expr := p.parseTestList()

	if op, ok := augOps[p.current().Type]; ok {
		p.advance()
		if !isAssignable(expr) {
			p.errorAt(tok, "cannot assign to %s", ast.Describe(expr))
		}
		value := p.parseTestList()
		return &ast.AugAssignStmt{
			Target: expr,
			Op:     op,
			Value:  value,
			Line:   tok.Line,
			Column: tok.Column,
		}
	}

	if p.check(lexer.ASSIGN) {
		exprs := []ast.Expression{expr}
		for p.match(lexer.ASSIGN) {
			exprs = append(exprs, p.parseTestList())
		}
		targets := exprs[:len(exprs)-1]
		for _, t := range targets {
			if !isAssignable(t) {
				line, col := t.Pos()
				p.diags.Errorf(line, col, "cannot assign to %s", ast.Describe(t))
			}
		}
		return &ast.AssignStmt{
			Targets: targets,
			Value:   exprs[len(exprs)-1],
			Line:    tok.Line,
			Column:  tok.Column,
		}
	}

	return &ast.ExprStmt{
		Expr:   expr,
		Line:   tok.Line,
		Column: tok.Column,
	}
}

func isAssignable(e ast.Expression) bool {
	switch t := e.(type) {
	case *ast.Identifier, *ast.SubscriptExpr:
		return true
	case *ast.TupleExpr:
		for _, el := range t.Elements {
			if !isAssignable(el) {
				return false
			}
		}
		return len(t.Elements) > 0
	default:
		return false
	}
}

// Expression parsing - recursive descent over Python's precedence levels
// (lowest to highest):
// 1. tuple display  a, b
// 2. or             (n-ary)
// 3. and            (n-ary)
// 4. not            (prefix)
// 5. comparisons    (chained)
// 6. + -            (left-associative)
// 7. * / // %       (left-associative)
// 8. unary -, +
// 9. postfix        call, subscript

// parseTestList parses `expr (, expr)* [,]`, producing a TupleExpr when a
// comma is present.
func (p *Parser) parseTestList() ast.Expression {
	first := p.parseExpression()
	if !p.check(lexer.COMMA) {
		return first
	}
	line, col := first.Pos()
	tuple := &ast.TupleExpr{Elements: []ast.Expression{first}, Line: line, Column: col}
	for p.match(lexer.COMMA) {
		if !startsExpression(p.current().Type) {
			break // trailing comma
		}
		tuple.Elements = append(tuple.Elements, p.parseExpression())
	}
	return tuple
}

func (p *Parser) parseExpression() ast.Expression {
	return p.parseBoolOp(lexer.OR)
}

// parseBoolOp parses an n-ary `or` (or `and`) chain into a single node
func (p *Parser) parseBoolOp(op lexer.TokenType) ast.Expression {
	operand := func() ast.Expression {
		if op == lexer.OR {
			return p.parseBoolOp(lexer.AND)
		}
		return p.parseNot()
	}

	first := operand()
	if !p.check(op) {
		return first
	}
	line, col := first.Pos()
	node := &ast.BoolOpExpr{Op: op, Values: []ast.Expression{first}, Line: line, Column: col}
	for p.match(op) {
		node.Values = append(node.Values, operand())
	}
	return node
}

func (p *Parser) parseNot() ast.Expression {
	if p.check(lexer.NOT) {
		op := p.advance()
		return &ast.UnaryExpr{
			Op:      op.Type,
			Operand: p.parseNot(),
			Line:    op.Line,
			Column:  op.Column,
		}
	}
	return p.parseComparison()
}

func isCompareOp(tt lexer.TokenType) bool {
	switch tt {
	case lexer.EQ, lexer.NEQ, lexer.LT, lexer.GT, lexer.LEQ, lexer.GEQ:
		return true
	}
	return false
}

func (p *Parser) parseComparison() ast.Expression {
	left := p.parseBinary(precAdditive)
	if !isCompareOp(p.current().Type) {
		return left
	}
	line, col := left.Pos()
	cmp := &ast.CompareExpr{Left: left, Line: line, Column: col}
	for isCompareOp(p.current().Type) {
		cmp.Ops = append(cmp.Ops, p.advance().Type)
		cmp.Comparators = append(cmp.Comparators, p.parseBinary(precAdditive))
	}
	return cmp
}

const (
	precNone     = 0
	precAdditive = 1
	precMulti    = 2
)

func tokenPrecedence(tt lexer.TokenType) int {
	switch tt {
	case lexer.PLUS, lexer.MINUS:
		return precAdditive
	case lexer.STAR, lexer.SLASH, lexer.DSLASH, lexer.PERCENT:
		return precMulti
	default:
		return precNone
	}
}

func (p *Parser) parseBinary(minPrec int) ast.Expression {
	left := p.parseUnary()

	for {
		prec := tokenPrecedence(p.current().Type)
		if prec == precNone || prec < minPrec {
			break
		}
		op := p.advance()
		right := p.parseBinary(prec + 1)
		left = &ast.BinaryExpr{
			Left:   left,
			Op:     op.Type,
			Right:  right,
			Line:   op.Line,
			Column: op.Column,
		}
	}

	return left
}

func (p *Parser) parseUnary() ast.Expression {
	if p.check(lexer.MINUS) || p.check(lexer.PLUS) {
		op := p.advance()
		operand := p.parseUnary()
		if op.Type == lexer.PLUS {
			return operand
		}
		// Fold negative numeric literals so -5 stays a literal
		switch lit := operand.(type) {
		case *ast.IntLit:
			return &ast.IntLit{Value: negate(lit.Value), Line: op.Line, Column: op.Column}
		case *ast.FloatLit:
			return &ast.FloatLit{Value: negate(lit.Value), Line: op.Line, Column: op.Column}
		}
		return &ast.UnaryExpr{
			Op:      op.Type,
			Operand: operand,
			Line:    op.Line,
			Column:  op.Column,
		}
	}
	return p.parsePostfix()
}

func negate(value string) string {
	if strings.HasPrefix(value, "-") {
		return value[1:]
	}
	return "-" + value
}

func (p *Parser) parsePostfix() ast.Expression {
	expr := p.parsePrimary()

	for {
		switch {
		case p.check(lexer.LPAREN):
			ident, ok := expr.(*ast.Identifier)
			if !ok {
				p.errorAt(p.current(), "only named functions can be called")
				return expr
			}
			p.advance()
			args := p.parseArgList()
			p.expect(lexer.RPAREN)
			expr = &ast.CallExpr{
				Function: ident.Name,
				Args:     args,
				Line:     ident.Line,
				Column:   ident.Column,
			}
		case p.check(lexer.LBRACKET):
			tok := p.advance()
			index := p.parseExpression()
			p.expect(lexer.RBRACKET)
			expr = &ast.SubscriptExpr{
				Object: expr,
				Index:  index,
				Line:   tok.Line,
				Column: tok.Column,
			}
		case p.check(lexer.DOT):
			p.errorAt(p.current(), "attribute access is not supported")
			p.advance()
			p.match(lexer.IDENT)
		default:
			return expr
		}
	}
}

func (p *Parser) parsePrimary() ast.Expression {
	tok := p.current()

	switch tok.Type {
	case lexer.INT_LIT:
		p.advance()
		return &ast.IntLit{Value: tok.Literal, Line: tok.Line, Column: tok.Column}
	case lexer.FLOAT_LIT:
		p.advance()
		return &ast.FloatLit{Value: tok.Literal, Line: tok.Line, Column: tok.Column}
	case lexer.STRING_LIT:
		p.advance()
		// Adjacent string literals concatenate, as in Python
		value := tok.Literal
		for p.check(lexer.STRING_LIT) {
			value += p.advance().Literal
		}
		return &ast.StringLit{Value: value, Line: tok.Line, Column: tok.Column}
	case lexer.TRUE:
		p.advance()
		return &ast.BoolLit{Value: true, Line: tok.Line, Column: tok.Column}
	case lexer.FALSE:
		p.advance()
		return &ast.BoolLit{Value: false, Line: tok.Line, Column: tok.Column}
	case lexer.NONE:
		p.advance()
		p.errorAt(tok, "None is not supported")
		return &ast.Identifier{Name: "<error>", Line: tok.Line, Column: tok.Column}
	case lexer.IDENT:
		p.advance()
		return &ast.Identifier{Name: tok.Literal, Line: tok.Line, Column: tok.Column}
	case lexer.LPAREN:
		p.advance()
		if p.match(lexer.RPAREN) {
			return &ast.TupleExpr{Line: tok.Line, Column: tok.Column}
		}
		first := p.parseExpression()
		if !p.check(lexer.COMMA) {
			p.expect(lexer.RPAREN)
			return first
		}
		tuple := &ast.TupleExpr{Elements: []ast.Expression{first}, Line: tok.Line, Column: tok.Column}
		for p.match(lexer.COMMA) {
			if p.check(lexer.RPAREN) {
				break
			}
			tuple.Elements = append(tuple.Elements, p.parseExpression())
		}
		p.expect(lexer.RPAREN)
		return tuple
	case lexer.LBRACKET:
		p.advance()
		list := &ast.ListExpr{Line: tok.Line, Column: tok.Column}
		for !p.check(lexer.RBRACKET) && !p.check(lexer.EOF) {
			list.Elements = append(list.Elements, p.parseExpression())
			if !p.match(lexer.COMMA) {
				break
			}
		}
		p.expect(lexer.RBRACKET)
		return list
	case lexer.ILLEGAL:
		p.advance()
		p.errorAt(tok, "%s", tok.Literal)
		return &ast.Identifier{Name: "<error>", Line: tok.Line, Column: tok.Column}
	default:
		p.errorAt(tok, "unexpected %s in expression", describe(tok))
		if tok.Type != lexer.NEWLINE && tok.Type != lexer.EOF && tok.Type != lexer.DEDENT {
			p.advance()
		}
		return &ast.Identifier{Name: "<error>", Line: tok.Line, Column: tok.Column}
	}
}

func (p *Parser) parseArgList() []ast.Expression {
	var args []ast.Expression
	for !p.check(lexer.RPAREN) && !p.check(lexer.EOF) {
		if p.check(lexer.IDENT) && p.peek().Type == lexer.ASSIGN {
			p.errorAt(p.current(), "keyword arguments are not supported")
			p.advance()
			p.advance()
		}
		args = append(args, p.parseExpression())
		if !p.match(lexer.COMMA) {
			break
		}
	}
	return args
}

func startsExpression(tt lexer.TokenType) bool {
	switch tt {
	case lexer.INT_LIT, lexer.FLOAT_LIT, lexer.STRING_LIT, lexer.IDENT,
		lexer.TRUE, lexer.FALSE, lexer.NONE, lexer.NOT, lexer.MINUS, lexer.PLUS,
		lexer.LPAREN, lexer.LBRACKET:
		return true
	}
	return false
}

package ast

import "github.com/lhaig/pybat/internal/lexer"

// Node is the base interface for all AST nodes
type Node interface {
	Pos() (line, col int)
}

// Statement nodes
type Statement interface {
	Node
	stmtNode()
}

// Expression nodes
type Expression interface {
	Node
	exprNode()
}

// Program represents a whole source file
type Program struct {
	Statements []Statement
}

func (p *Program) Pos() (int, int) {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return 0, 0
}

// --- Statements ---

// Block represents an indented statement suite. An empty block is what
// `pass` parses to.
type Block struct {
	Statements []Statement
	Line       int
	Column     int
}

func (b *Block) Pos() (int, int) { return b.Line, b.Column }
func (b *Block) stmtNode()        {}

// AssignStmt represents `t1 = t2 = ... = value`. Each target is an
// Identifier, a TupleExpr of Identifiers, or a SubscriptExpr. After
// normalization there is exactly one target.
type AssignStmt struct {
	Targets []Expression
	Value   Expression
	Line    int
	Column  int
}

func (a *AssignStmt) Pos() (int, int) { return a.Line, a.Column }
func (a *AssignStmt) stmtNode()        {}

// AugAssignStmt represents `target op= value`. Op is the binary operator
// (PLUS, MINUS, STAR, SLASH), not the compound token.
type AugAssignStmt struct {
	Target Expression
	Op     lexer.TokenType
	Value  Expression
	Line   int
	Column int
}

func (a *AugAssignStmt) Pos() (int, int) { return a.Line, a.Column }
func (a *AugAssignStmt) stmtNode()        {}

// IfStmt represents if/elif/else. An elif chain is an IfStmt nested as
// the only statement of Else.
type IfStmt struct {
	Condition Expression
	Then      *Block
	Else      *Block // nil when there is no else branch
	Line      int
	Column    int
}

func (i *IfStmt) Pos() (int, int) { return i.Line, i.Column }
func (i *IfStmt) stmtNode()        {}

// ForStmt represents `for target in iterable:`
type ForStmt struct {
	Target   Expression
	Iterable Expression
	Body     *Block
	Line     int
	Column   int
}

func (f *ForStmt) Pos() (int, int) { return f.Line, f.Column }
func (f *ForStmt) stmtNode()        {}

// WhileStmt represents a while loop
type WhileStmt struct {
	Condition Expression
	Body      *Block
	Line      int
	Column    int
}

func (w *WhileStmt) Pos() (int, int) { return w.Line, w.Column }
func (w *WhileStmt) stmtNode()        {}

// BreakStmt represents a break statement
type BreakStmt struct {
	Line   int
	Column int
}

func (b *BreakStmt) Pos() (int, int) { return b.Line, b.Column }
func (b *BreakStmt) stmtNode()        {}

// ContinueStmt represents a continue statement
type ContinueStmt struct {
	Line   int
	Column int
}

func (c *ContinueStmt) Pos() (int, int) { return c.Line, c.Column }
func (c *ContinueStmt) stmtNode()        {}

// ExprStmt represents an expression used as a statement
type ExprStmt struct {
	Expr   Expression
	Line   int
	Column int
}

func (e *ExprStmt) Pos() (int, int) { return e.Line, e.Column }
func (e *ExprStmt) stmtNode()        {}

// --- Expressions ---

// Identifier represents a variable name
type Identifier struct {
	Name   string
	Line   int
	Column int
}

func (i *Identifier) Pos() (int, int) { return i.Line, i.Column }
func (i *Identifier) exprNode()        {}

// IntLit represents an integer literal; Value keeps the source text
type IntLit struct {
	Value  string
	Line   int
	Column int
}

func (i *IntLit) Pos() (int, int) { return i.Line, i.Column }
func (i *IntLit) exprNode()        {}

// FloatLit represents a float literal
type FloatLit struct {
	Value  string
	Line   int
	Column int
}

func (f *FloatLit) Pos() (int, int) { return f.Line, f.Column }
func (f *FloatLit) exprNode()        {}

// StringLit represents a string literal; Value is the decoded text
type StringLit struct {
	Value  string
	Line   int
	Column int
}

func (s *StringLit) Pos() (int, int) { return s.Line, s.Column }
func (s *StringLit) exprNode()        {}

// BoolLit represents True or False
type BoolLit struct {
	Value  bool
	Line   int
	Column int
}

func (b *BoolLit) Pos() (int, int) { return b.Line, b.Column }
func (b *BoolLit) exprNode()        {}

// UnaryExpr represents a unary operation (not, -)
type UnaryExpr struct {
	Op      lexer.TokenType
	Operand Expression
	Line    int
	Column  int
}

func (u *UnaryExpr) Pos() (int, int) { return u.Line, u.Column }
func (u *UnaryExpr) exprNode()        {}

// BoolOpExpr represents `a and b and ...` or `a or b or ...`
type BoolOpExpr struct {
	Op     lexer.TokenType // AND or OR
	Values []Expression
	Line   int
	Column int
}

func (b *BoolOpExpr) Pos() (int, int) { return b.Line, b.Column }
func (b *BoolOpExpr) exprNode()        {}

// CompareExpr represents `left op1 c1 op2 c2 ...`. A plain comparison has
// exactly one operator.
type CompareExpr struct {
	Left        Expression
	Ops         []lexer.TokenType
	Comparators []Expression
	Line        int
	Column      int
}

func (c *CompareExpr) Pos() (int, int) { return c.Line, c.Column }
func (c *CompareExpr) exprNode()        {}

// BinaryExpr represents an arithmetic operation
type BinaryExpr struct {
	Left   Expression
	Op     lexer.TokenType
	Right  Expression
	Line   int
	Column int
}

func (b *BinaryExpr) Pos() (int, int) { return b.Line, b.Column }
func (b *BinaryExpr) exprNode()        {}

// CallExpr represents a call of a named function
type CallExpr struct {
	Function string
	Args     []Expression
	Line     int
	Column   int
}

func (c *CallExpr) Pos() (int, int) { return c.Line, c.Column }
func (c *CallExpr) exprNode()        {}

// TupleExpr represents `a, b` or `(a, b)`
type TupleExpr struct {
	Elements []Expression
	Line     int
	Column   int
}

func (t *TupleExpr) Pos() (int, int) { return t.Line, t.Column }
func (t *TupleExpr) exprNode()        {}

// ListExpr represents `[a, b]`
type ListExpr struct {
	Elements []Expression
	Line     int
	Column   int
}

func (l *ListExpr) Pos() (int, int) { return l.Line, l.Column }
func (l *ListExpr) exprNode()        {}

// SubscriptExpr represents `object[index]`
type SubscriptExpr struct {
	Object Expression
	Index  Expression
	Line   int
	Column int
}

func (s *SubscriptExpr) Pos() (int, int) { return s.Line, s.Column }
func (s *SubscriptExpr) exprNode()        {}

package formatter

import (
	"fmt"
	"strings"

	"github.com/lhaig/pybat/internal/ast"
	"github.com/lhaig/pybat/internal/lexer"
)

// Format takes an AST Program and returns canonical source: four-space
// indentation, single spaces around operators, parentheses only where
// precedence needs them, and at most one blank line where the input had
// one. Comments are not part of the AST and are not reproduced.
func Format(prog *ast.Program) string {
	f := &formatter{}
	f.formatStmts(prog.Statements)
	return f.sb.String()
}

type formatter struct {
	sb     strings.Builder
	indent int
}

// --- helpers (same pattern as the batch emitter) ---

func (f *formatter) emitLine(s string) {
	if s == "" {
		f.sb.WriteString("\n")
	} else {
		f.sb.WriteString(f.indentStr())
		f.sb.WriteString(s)
		f.sb.WriteString("\n")
	}
}

func (f *formatter) emitLinef(format string, args ...any) {
	f.sb.WriteString(f.indentStr())
	f.sb.WriteString(fmt.Sprintf(format, args...))
	f.sb.WriteString("\n")
}

func (f *formatter) incIndent() { f.indent++ }
func (f *formatter) decIndent() { f.indent-- }

func (f *formatter) indentStr() string {
	return strings.Repeat("    ", f.indent)
}

// --- statements ---

func (f *formatter) formatStmts(stmts []ast.Statement) {
	prevEnd := 0
	for i, s := range stmts {
		line, _ := s.Pos()
		if i > 0 && line > prevEnd+1 {
			f.emitLine("")
		}
		f.formatStmt(s)
		prevEnd = lastLine(s)
	}
}

func (f *formatter) formatBlock(b *ast.Block) {
	f.incIndent()
	if b == nil || len(b.Statements) == 0 {
		f.emitLine("pass")
	} else {
		f.formatStmts(b.Statements)
	}
	f.decIndent()
}

func (f *formatter) formatStmt(s ast.Statement) {
	switch s := s.(type) {
	case *ast.AssignStmt:
		parts := make([]string, 0, len(s.Targets)+1)
		for _, t := range s.Targets {
			parts = append(parts, formatExpr(t, precTuple))
		}
		parts = append(parts, formatExpr(s.Value, precTuple))
		f.emitLine(strings.Join(parts, " = "))
	case *ast.AugAssignStmt:
		f.emitLinef("%s %s= %s", formatExpr(s.Target, precTuple), s.Op, formatExpr(s.Value, precTuple))
	case *ast.IfStmt:
		f.formatIf(s, "if")
	case *ast.ForStmt:
		f.emitLinef("for %s in %s:", formatExpr(s.Target, precTuple), formatExpr(s.Iterable, precOr))
		f.formatBlock(s.Body)
	case *ast.WhileStmt:
		f.emitLinef("while %s:", formatExpr(s.Condition, precOr))
		f.formatBlock(s.Body)
	case *ast.BreakStmt:
		f.emitLine("break")
	case *ast.ContinueStmt:
		f.emitLine("continue")
	case *ast.ExprStmt:
		f.emitLine(formatExpr(s.Expr, precTuple))
	default:
		f.emitLinef("# unsupported statement %T", s)
	}
}

// formatIf prints an if statement; an else block holding only another if
// is printed as elif.
func (f *formatter) formatIf(s *ast.IfStmt, keyword string) {
	f.emitLinef("%s %s:", keyword, formatExpr(s.Condition, precOr))
	f.formatBlock(s.Then)
	if s.Else == nil {
		return
	}
	if len(s.Else.Statements) == 1 {
		if nested, ok := s.Else.Statements[0].(*ast.IfStmt); ok {
			f.formatIf(nested, "elif")
			return
		}
	}
	f.emitLine("else:")
	f.formatBlock(s.Else)
}

// --- expressions ---

// Precedence levels, lowest first.
const (
	precTuple = iota + 1
	precOr
	precAnd
	precNot
	precCompare
	precAdditive
	precMulti
	precUnary
	precPostfix
)

func exprPrec(e ast.Expression) int {
	switch e := e.(type) {
	case *ast.TupleExpr:
		return precTuple
	case *ast.BoolOpExpr:
		if e.Op == lexer.OR {
			return precOr
		}
		return precAnd
	case *ast.UnaryExpr:
		if e.Op == lexer.NOT {
			return precNot
		}
		return precUnary
	case *ast.CompareExpr:
		return precCompare
	case *ast.BinaryExpr:
		switch e.Op {
		case lexer.PLUS, lexer.MINUS:
			return precAdditive
		default:
			return precMulti
		}
	case *ast.IntLit:
		if strings.HasPrefix(e.Value, "-") {
			return precUnary
		}
	case *ast.FloatLit:
		if strings.HasPrefix(e.Value, "-") {
			return precUnary
		}
	}
	return precPostfix
}

// formatExpr renders e, parenthesized when it binds looser than minPrec.
func formatExpr(e ast.Expression, minPrec int) string {
	s := formatBare(e)
	if exprPrec(e) < minPrec {
		return "(" + s + ")"
	}
	return s
}

func formatBare(e ast.Expression) string {
	switch e := e.(type) {
	case *ast.Identifier:
		return e.Name
	case *ast.IntLit:
		return e.Value
	case *ast.FloatLit:
		return e.Value
	case *ast.StringLit:
		return quote(e.Value)
	case *ast.BoolLit:
		if e.Value {
			return "True"
		}
		return "False"
	case *ast.UnaryExpr:
		if e.Op == lexer.NOT {
			return "not " + formatExpr(e.Operand, precNot)
		}
		return e.Op.String() + formatExpr(e.Operand, precUnary)
	case *ast.BoolOpExpr:
		prec := exprPrec(e)
		parts := make([]string, len(e.Values))
		for i, v := range e.Values {
			parts[i] = formatExpr(v, prec+1)
		}
		return strings.Join(parts, " "+e.Op.String()+" ")
	case *ast.CompareExpr:
		var sb strings.Builder
		sb.WriteString(formatExpr(e.Left, precAdditive))
		for i, op := range e.Ops {
			sb.WriteString(" " + op.String() + " ")
			sb.WriteString(formatExpr(e.Comparators[i], precAdditive))
		}
		return sb.String()
	case *ast.BinaryExpr:
		prec := exprPrec(e)
		return formatExpr(e.Left, prec) + " " + e.Op.String() + " " + formatExpr(e.Right, prec+1)
	case *ast.CallExpr:
		return e.Function + "(" + formatList(e.Args) + ")"
	case *ast.SubscriptExpr:
		return formatExpr(e.Object, precPostfix) + "[" + formatExpr(e.Index, precTuple) + "]"
	case *ast.ListExpr:
		return "[" + formatList(e.Elements) + "]"
	case *ast.TupleExpr:
		switch len(e.Elements) {
		case 0:
			return "()"
		case 1:
			return "(" + formatExpr(e.Elements[0], precOr) + ",)"
		}
		return formatList(e.Elements)
	default:
		return fmt.Sprintf("<%T>", e)
	}
}

func formatList(elems []ast.Expression) string {
	parts := make([]string, len(elems))
	for i, el := range elems {
		parts[i] = formatExpr(el, precOr)
	}
	return strings.Join(parts, ", ")
}

// quote renders a string literal with double quotes, escaping what the
// lexer decodes.
func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// lastLine returns the highest source line any node inside s starts on.
func lastLine(s ast.Statement) int {
	line, _ := s.Pos()
	bump := func(n ast.Node) {
		if n == nil {
			return
		}
		if l := lastLineOfNode(n); l > line {
			line = l
		}
	}
	switch s := s.(type) {
	case *ast.AssignStmt:
		for _, t := range s.Targets {
			bump(t)
		}
		bump(s.Value)
	case *ast.AugAssignStmt:
		bump(s.Value)
	case *ast.IfStmt:
		bump(s.Condition)
		bumpBlock(&line, s.Then)
		bumpBlock(&line, s.Else)
	case *ast.ForStmt:
		bump(s.Iterable)
		bumpBlock(&line, s.Body)
	case *ast.WhileStmt:
		bump(s.Condition)
		bumpBlock(&line, s.Body)
	case *ast.ExprStmt:
		bump(s.Expr)
	}
	return line
}

func bumpBlock(line *int, b *ast.Block) {
	if b == nil {
		return
	}
	for _, s := range b.Statements {
		if l := lastLine(s); l > *line {
			*line = l
		}
	}
}

func lastLineOfNode(n ast.Node) int {
	line, _ := n.Pos()
	var children []ast.Expression
	switch e := n.(type) {
	case *ast.UnaryExpr:
		children = []ast.Expression{e.Operand}
	case *ast.BoolOpExpr:
		children = e.Values
	case *ast.CompareExpr:
		children = append([]ast.Expression{e.Left}, e.Comparators...)
	case *ast.BinaryExpr:
		children = []ast.Expression{e.Left, e.Right}
	case *ast.CallExpr:
		children = e.Args
	case *ast.SubscriptExpr:
		children = []ast.Expression{e.Object, e.Index}
	case *ast.ListExpr:
		children = e.Elements
	case *ast.TupleExpr:
		children = e.Elements
	}
	for _, c := range children {
		if l := lastLineOfNode(c); l > line {
			line = l
		}
	}
	return line
}

// Package normalize rewrites a parsed program into the shape the lowering
// engine accepts: cascaded assignments are split into single assignments
// and literal subscripts are folded to the selected element.
package normalize

import (
	"strconv"

	"github.com/lhaig/pybat/internal/ast"
	"github.com/lhaig/pybat/internal/diagnostic"
)

// normalizer carries the diagnostics for a single Program call.
type normalizer struct {
	diags *diagnostic.Diagnostics
}

// Program returns a normalized copy of prog. The input tree is not
// modified; nodes that need no rewrite are shared with the result.
func Program(prog *ast.Program) (*ast.Program, *diagnostic.Diagnostics) {
	n := &normalizer{diags: diagnostic.New()}
	out := &ast.Program{Statements: n.stmts(prog.Statements)}
	return out, n.diags
}

func (n *normalizer) stmts(in []ast.Statement) []ast.Statement {
	out := make([]ast.Statement, 0, len(in))
	for _, s := range in {
		out = append(out, n.stmt(s)...)
	}
	return out
}

func (n *normalizer) block(b *ast.Block) *ast.Block {
	if b == nil {
		return nil
	}
	return &ast.Block{Statements: n.stmts(b.Statements), Line: b.Line, Column: b.Column}
}

func (n *normalizer) stmt(s ast.Statement) []ast.Statement {
	switch s := s.(type) {
	case *ast.AssignStmt:
		value := n.expr(s.Value)
		if len(s.Targets) == 1 {
			return []ast.Statement{&ast.AssignStmt{
				Targets: []ast.Expression{n.expr(s.Targets[0])},
				Value:   value,
				Line:    s.Line,
				Column:  s.Column,
			}}
		}
		return n.splitCascade(s, value)

	case *ast.AugAssignStmt:
		return []ast.Statement{&ast.AugAssignStmt{
			Target: n.expr(s.Target),
			Op:     s.Op,
			Value:  n.expr(s.Value),
			Line:   s.Line,
			Column: s.Column,
		}}

	case *ast.IfStmt:
		return []ast.Statement{&ast.IfStmt{
			Condition: n.expr(s.Condition),
			Then:      n.block(s.Then),
			Else:      n.block(s.Else),
			Line:      s.Line,
			Column:    s.Column,
		}}

	case *ast.ForStmt:
		return []ast.Statement{&ast.ForStmt{
			Target:   s.Target,
			Iterable: n.expr(s.Iterable),
			Body:     n.block(s.Body),
			Line:     s.Line,
			Column:   s.Column,
		}}

	case *ast.WhileStmt:
		return []ast.Statement{&ast.WhileStmt{
			Condition: n.expr(s.Condition),
			Body:      n.block(s.Body),
			Line:      s.Line,
			Column:    s.Column,
		}}

	case *ast.ExprStmt:
		return []ast.Statement{&ast.ExprStmt{Expr: n.expr(s.Expr), Line: s.Line, Column: s.Column}}

	case *ast.Block:
		return []ast.Statement{n.block(s)}

	default:
		return []ast.Statement{s}
	}
}

// splitCascade turns `t1 = t2 = ... = value` into one assignment per
// target, in source order. A tuple target takes the matching element of
// the value through a subscript, which folds away when the value is a
// literal collection. When the value has side effects it is evaluated
// once into the first plain name and the remaining targets copy it.
func (n *normalizer) splitCascade(s *ast.AssignStmt, value ast.Expression) []ast.Statement {
	var out []ast.Statement
	source := value

	for i, target := range s.Targets {
		target = n.expr(target)
		line, col := target.Pos()

		if tuple, ok := target.(*ast.TupleExpr); ok {
			for j, el := range tuple.Elements {
				elLine, elCol := el.Pos()
				sub := &ast.SubscriptExpr{
					Object: source,
					Index:  &ast.IntLit{Value: strconv.Itoa(j), Line: elLine, Column: elCol},
					Line:   elLine,
					Column: elCol,
				}
				out = append(out, &ast.AssignStmt{
					Targets: []ast.Expression{el},
					Value:   n.expr(sub),
					Line:    elLine,
					Column:  elCol,
				})
			}
			continue
		}

		out = append(out, &ast.AssignStmt{
			Targets: []ast.Expression{target},
			Value:   source,
			Line:    line,
			Column:  col,
		})
		if id, ok := target.(*ast.Identifier); ok && i == 0 && hasCall(value) {
			source = &ast.Identifier{Name: id.Name, Line: id.Line, Column: id.Column}
		}
	}
	return out
}

func (n *normalizer) exprs(in []ast.Expression) []ast.Expression {
	if in == nil {
		return nil
	}
	out := make([]ast.Expression, len(in))
	for i, e := range in {
		out[i] = n.expr(e)
	}
	return out
}

func (n *normalizer) expr(e ast.Expression) ast.Expression {
	switch e := e.(type) {
	case *ast.SubscriptExpr:
		obj := n.expr(e.Object)
		idx := n.expr(e.Index)
		if folded, ok := n.foldSubscript(obj, idx, e); ok {
			return folded
		}
		return &ast.SubscriptExpr{Object: obj, Index: idx, Line: e.Line, Column: e.Column}

	case *ast.BinaryExpr:
		return &ast.BinaryExpr{Left: n.expr(e.Left), Op: e.Op, Right: n.expr(e.Right), Line: e.Line, Column: e.Column}

	case *ast.UnaryExpr:
		return &ast.UnaryExpr{Op: e.Op, Operand: n.expr(e.Operand), Line: e.Line, Column: e.Column}

	case *ast.BoolOpExpr:
		return &ast.BoolOpExpr{Op: e.Op, Values: n.exprs(e.Values), Line: e.Line, Column: e.Column}

	case *ast.CompareExpr:
		return &ast.CompareExpr{
			Left:        n.expr(e.Left),
			Ops:         e.Ops,
			Comparators: n.exprs(e.Comparators),
			Line:        e.Line,
			Column:      e.Column,
		}

	case *ast.CallExpr:
		return &ast.CallExpr{Function: e.Function, Args: n.exprs(e.Args), Line: e.Line, Column: e.Column}

	case *ast.TupleExpr:
		return &ast.TupleExpr{Elements: n.exprs(e.Elements), Line: e.Line, Column: e.Column}

	case *ast.ListExpr:
		return &ast.ListExpr{Elements: n.exprs(e.Elements), Line: e.Line, Column: e.Column}

	default:
		return e
	}
}

// foldSubscript resolves `collection[k]` when the collection is a tuple,
// list or string literal and k is an integer literal. Negative indexes
// count from the end.
func (n *normalizer) foldSubscript(obj, idx ast.Expression, at *ast.SubscriptExpr) (ast.Expression, bool) {
	lit, ok := idx.(*ast.IntLit)
	if !ok {
		return nil, false
	}
	k, err := strconv.Atoi(lit.Value)
	if err != nil {
		return nil, false
	}

	var length int
	switch o := obj.(type) {
	case *ast.TupleExpr:
		length = len(o.Elements)
	case *ast.ListExpr:
		length = len(o.Elements)
	case *ast.StringLit:
		length = len(o.Value)
	default:
		return nil, false
	}

	if k < 0 {
		k += length
	}
	if k < 0 || k >= length {
		n.diags.Add(diagnostic.Diagnostic{
			Severity: diagnostic.Error,
			Code:     "index",
			Message:  "index " + lit.Value + " out of range for literal of length " + strconv.Itoa(length),
			Line:     at.Line,
			Column:   at.Column,
		})
		return nil, false
	}

	switch o := obj.(type) {
	case *ast.TupleExpr:
		return o.Elements[k], true
	case *ast.ListExpr:
		return o.Elements[k], true
	default:
		s := obj.(*ast.StringLit)
		return &ast.StringLit{Value: s.Value[k : k+1], Line: at.Line, Column: at.Column}, true
	}
}

// hasCall reports whether evaluating e calls a function.
func hasCall(e ast.Expression) bool {
	switch e := e.(type) {
	case *ast.CallExpr:
		return true
	case *ast.BinaryExpr:
		return hasCall(e.Left) || hasCall(e.Right)
	case *ast.UnaryExpr:
		return hasCall(e.Operand)
	case *ast.BoolOpExpr:
		for _, v := range e.Values {
			if hasCall(v) {
				return true
			}
		}
	case *ast.CompareExpr:
		if hasCall(e.Left) {
			return true
		}
		for _, c := range e.Comparators {
			if hasCall(c) {
				return true
			}
		}
	case *ast.TupleExpr:
		for _, el := range e.Elements {
			if hasCall(el) {
				return true
			}
		}
	case *ast.ListExpr:
		for _, el := range e.Elements {
			if hasCall(el) {
				return true
			}
		}
	case *ast.SubscriptExpr:
		return hasCall(e.Object) || hasCall(e.Index)
	}
	return false
}

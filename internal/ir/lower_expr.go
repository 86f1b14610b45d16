package ir

import (
	"strings"

	"github.com/lhaig/pybat/internal/ast"
	"github.com/lhaig/pybat/internal/lexer"
)

// canonical boolean text
const (
	falseText = "0"
	trueText  = "1"
)

var compareOps = map[lexer.TokenType]CmpOp{
	lexer.GT:  CmpGTR,
	lexer.GEQ: CmpGEQ,
	lexer.EQ:  CmpEQU,
	lexer.NEQ: CmpEQU, // inverted: result starts at 1 and is cleared on equality
	lexer.LEQ: CmpLEQ,
	lexer.LT:  CmpLSS,
}

// lowerExpr lowers e to a value reference plus its prerequisite statements.
func (l *Lowerer) lowerExpr(e ast.Expression, ctx Context) (Lowered, error) {
	switch e := e.(type) {
	case *ast.IntLit:
		return Lowered{Value: e.Value}, nil
	case *ast.StringLit:
		return Lowered{Value: e.Value}, nil
	case *ast.BoolLit:
		if e.Value {
			return Lowered{Value: trueText}, nil
		}
		return Lowered{Value: falseText}, nil
	case *ast.FloatLit:
		return Lowered{}, errorAt(e, UnsupportedConstruct, "float literal %s: arithmetic is integer-only", e.Value)
	case *ast.Identifier:
		return Lowered{Value: ctx.Ref(e.Name)}, nil
	case *ast.UnaryExpr:
		return l.lowerUnary(e, ctx)
	case *ast.BoolOpExpr:
		return l.lowerBoolOp(e, ctx)
	case *ast.CompareExpr:
		return l.lowerCompare(e, ctx)
	case *ast.BinaryExpr:
		if e.Op == lexer.PLUS && (isStringOperand(e.Left) || isStringOperand(e.Right)) {
			return l.lowerConcat(e, ctx)
		}
		return l.lowerArith(e, ctx)
	case *ast.CallExpr:
		return l.lowerCall(e, ctx)
	default:
		return Lowered{}, errorAt(e, UnsupportedConstruct, "%s is not supported here", ast.Describe(e))
	}
}

func (l *Lowerer) lowerUnary(e *ast.UnaryExpr, ctx Context) (Lowered, error) {
	operand, err := l.lowerExpr(e.Operand, ctx.With())
	if err != nil {
		return Lowered{}, err
	}
	out := l.names.Next("out")

	switch e.Op {
	case lexer.NOT:
		return Lowered{
			Value: ctx.Ref(out),
			Prefix: append(operand.Prefix,
				&Guard{Cond: &IsTrue{Value: operand.Value}, Stmt: &Set{Name: out, Value: falseText}},
				&Guard{Cond: &IsFalse{Value: operand.Value}, Stmt: &Set{Name: out, Value: trueText}},
			),
		}, nil
	case lexer.MINUS:
		return Lowered{
			Value:  ctx.Ref(out),
			Prefix: append(operand.Prefix, &SetArith{Name: out, Expr: "-(" + operand.Value + ")"}),
		}, nil
	default:
		return Lowered{}, errorAt(e, UnsupportedConstruct, "unary operator '%s' is not supported", e.Op)
	}
}

// lowerBoolOp lowers an n-ary and/or with short-circuit evaluation: the
// prefix of operand k+1 only runs while the result is still undecided.
// Operands are read inside parenthesized blocks, so they always use
// Delayed references; only the returned value follows ctx's mode.
func (l *Lowerer) lowerBoolOp(e *ast.BoolOpExpr, ctx Context) (Lowered, error) {
	if e.Op != lexer.AND && e.Op != lexer.OR {
		return Lowered{}, errorAt(e, UnsupportedConstruct, "boolean operator '%s' is not supported", e.Op)
	}

	inner := ctx.With(WithMode(Delayed))
	operands := make([]Lowered, len(e.Values))
	for i, v := range e.Values {
		res, err := l.lowerExpr(v, inner.With())
		if err != nil {
			return Lowered{}, err
		}
		operands[i] = res
	}
	out := l.names.Next("out")
	setTrue := &Set{Name: out, Value: trueText}

	prefix := append([]Stmt{}, operands[0].Prefix...)
	prefix = append(prefix, &Set{Name: out, Value: falseText})

	if e.Op == lexer.AND {
		// Build from the last operand outwards:
		// IF a ( prefix(b); IF b ( prefix(c); IF c set out=1 ) )
		var nested Stmt = &Guard{Cond: &IsTrue{Value: operands[len(operands)-1].Value}, Stmt: setTrue}
		for k := len(operands) - 2; k >= 0; k-- {
			cond := &IsTrue{Value: operands[k].Value}
			next := operands[k+1].Prefix
			if len(next) == 0 {
				if _, block := nested.(*IfBlock); !block {
					nested = &Guard{Cond: cond, Stmt: nested}
					continue
				}
			}
			body := append(append([]Stmt{}, next...), nested)
			nested = &IfBlock{Cond: cond, Then: body}
		}
		return Lowered{Value: ctx.Ref(out), Prefix: append(prefix, nested)}, nil
	}

	prefix = append(prefix, &Guard{Cond: &IsTrue{Value: operands[0].Value}, Stmt: setTrue})
	for _, op := range operands[1:] {
		guard := &Guard{Cond: &IsTrue{Value: op.Value}, Stmt: setTrue}
		if len(op.Prefix) == 0 {
			prefix = append(prefix, guard)
			continue
		}
		body := append(append([]Stmt{}, op.Prefix...), guard)
		prefix = append(prefix, &IfBlock{Cond: &IsFalse{Value: inner.Ref(out)}, Then: body})
	}
	return Lowered{Value: ctx.Ref(out), Prefix: prefix}, nil
}

func (l *Lowerer) lowerCompare(e *ast.CompareExpr, ctx Context) (Lowered, error) {
	if len(e.Ops) != 1 || len(e.Comparators) != 1 {
		return Lowered{}, errorAt(e, ChainedComparisonUnsupported, "chained comparisons are not supported")
	}
	op, ok := compareOps[e.Ops[0]]
	if !ok {
		return Lowered{}, errorAt(e, UnsupportedConstruct, "comparison operator '%s' is not supported", e.Ops[0])
	}

	left, err := l.lowerExpr(e.Left, ctx.With())
	if err != nil {
		return Lowered{}, err
	}
	right, err := l.lowerExpr(e.Comparators[0], ctx.With())
	if err != nil {
		return Lowered{}, err
	}
	out := l.names.Next("out")

	initial, flipped := falseText, trueText
	if e.Ops[0] == lexer.NEQ {
		initial, flipped = trueText, falseText
	}

	prefix := append(left.Prefix, right.Prefix...)
	prefix = append(prefix,
		&Set{Name: out, Value: initial},
		&Guard{
			Cond: &Compare{
				Left:   left.Value,
				Op:     op,
				Right:  right.Value,
				Quoted: isStringOperand(e.Left) || isStringOperand(e.Comparators[0]),
			},
			Stmt: &Set{Name: out, Value: flipped},
		},
	)
	return Lowered{Value: ctx.Ref(out), Prefix: prefix}, nil
}

// lowerConcat joins two values as text without arithmetic evaluation.
func (l *Lowerer) lowerConcat(e *ast.BinaryExpr, ctx Context) (Lowered, error) {
	left, err := l.lowerExpr(e.Left, ctx.With())
	if err != nil {
		return Lowered{}, err
	}
	right, err := l.lowerExpr(e.Right, ctx.With())
	if err != nil {
		return Lowered{}, err
	}
	out := l.names.Next("out")
	prefix := append(left.Prefix, right.Prefix...)
	prefix = append(prefix, &Set{Name: out, Value: left.Value + right.Value})
	return Lowered{Value: ctx.Ref(out), Prefix: prefix}, nil
}

func (l *Lowerer) lowerArith(e *ast.BinaryExpr, ctx Context) (Lowered, error) {
	op, ok := arithOps[e.Op]
	if !ok {
		return Lowered{}, errorAt(e, UnsupportedConstruct, "operator '%s' is not supported", e.Op)
	}
	if _, ok := e.Left.(*ast.StringLit); ok {
		return Lowered{}, errorAt(e, UnsupportedConstruct, "string operand for arithmetic operator '%s'", e.Op)
	}
	if _, ok := e.Right.(*ast.StringLit); ok {
		return Lowered{}, errorAt(e, UnsupportedConstruct, "string operand for arithmetic operator '%s'", e.Op)
	}

	left, err := l.lowerExpr(e.Left, ctx.With())
	if err != nil {
		return Lowered{}, err
	}
	right, err := l.lowerExpr(e.Right, ctx.With())
	if err != nil {
		return Lowered{}, err
	}
	out := l.names.Next("out")
	prefix := append(left.Prefix, right.Prefix...)
	prefix = append(prefix, &SetArith{
		Name: out,
		Expr: arithOperand(left.Value) + op + arithOperand(right.Value),
	})
	return Lowered{Value: ctx.Ref(out), Prefix: prefix}, nil
}

// lowerCall lowers a call whose value is used.
func (l *Lowerer) lowerCall(call *ast.CallExpr, ctx Context) (Lowered, error) {
	switch call.Function {
	case "input":
		if len(call.Args) > 1 {
			return Lowered{}, errorAt(call, ArityMismatch, "input() takes at most 1 argument, got %d", len(call.Args))
		}
		args, err := l.lowerArgs(call.Args, ctx)
		if err != nil {
			return Lowered{}, err
		}
		out := l.names.Next("out")
		return Lowered{
			Value:  ctx.Ref(out),
			Prefix: append(args.Prefix, &SetPrompt{Name: out, Prompt: joinValues(args.Values)}),
		}, nil

	case "randint":
		if len(call.Args) > 2 {
			return Lowered{}, errorAt(call, ArityMismatch, "randint() takes at most 2 arguments, got %d", len(call.Args))
		}
		args, err := l.lowerArgs(call.Args, ctx)
		if err != nil {
			return Lowered{}, err
		}
		lo, hi := "0", "32768"
		switch len(args.Values) {
		case 1:
			hi = args.Values[0]
		case 2:
			lo, hi = args.Values[0], args.Values[1]
		}
		lo, hi = arithOperand(lo), arithOperand(hi)
		out := l.names.Next("out")
		return Lowered{
			Value: ctx.Ref(out),
			Prefix: append(args.Prefix, &SetArith{
				Name: out,
				Expr: lo + "+(" + hi + "-" + lo + "+1)*!RANDOM!/32768",
			}),
		}, nil

	case "str":
		if len(call.Args) != 1 {
			return Lowered{}, errorAt(call, ArityMismatch, "str() takes exactly 1 argument, got %d", len(call.Args))
		}
		return l.lowerExpr(call.Args[0], ctx.With())

	case "print", "batch":
		return Lowered{}, errorAt(call, UnsupportedConstruct, "%s() has no value", call.Function)

	case "range":
		return Lowered{}, errorAt(call, UnsupportedConstruct, "range() is only supported as a for loop iterable")

	default:
		args, err := l.lowerArgs(call.Args, ctx)
		if err != nil {
			return Lowered{}, err
		}
		out := l.names.Next("out")
		return Lowered{
			Value: ctx.Ref(out),
			Prefix: append(args.Prefix, &Call{
				Label: call.Function,
				Args:  append(args.Values, out),
			}),
		}, nil
	}
}

// loweredArgs holds lowered call arguments in order.
type loweredArgs struct {
	Values []string
	Prefix []Stmt
}

// lowerArgs lowers call arguments under the Immediate expansion mode.
func (l *Lowerer) lowerArgs(args []ast.Expression, ctx Context) (loweredArgs, error) {
	argCtx := ctx.With(WithMode(Immediate))
	var out loweredArgs
	for _, a := range args {
		res, err := l.lowerExpr(a, argCtx)
		if err != nil {
			return loweredArgs{}, err
		}
		out.Prefix = append(out.Prefix, res.Prefix...)
		out.Values = append(out.Values, res.Value)
	}
	return out, nil
}

// isStringOperand reports whether e is a string literal or an explicit
// str() conversion, which makes `+` a text concatenation.
func isStringOperand(e ast.Expression) bool {
	if _, ok := e.(*ast.StringLit); ok {
		return true
	}
	return ast.IsStrCall(e)
}

// arithOperand parenthesizes negative literals so `3 - -5` stays valid.
func arithOperand(v string) string {
	if strings.HasPrefix(v, "-") {
		return "(" + v + ")"
	}
	return v
}

func joinValues(values []string) string {
	return strings.Join(values, " ")
}

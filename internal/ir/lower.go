package ir

import (
	"strconv"

	"github.com/lhaig/pybat/internal/ast"
	"github.com/lhaig/pybat/internal/lexer"
)

// Lowerer transforms one normalized program into target statements. It
// owns the name allocator for that program; use a fresh Lowerer per
// compilation.
type Lowerer struct {
	names *Names
}

// NewLowerer creates a Lowerer with an empty name allocator.
func NewLowerer() *Lowerer {
	return &Lowerer{names: NewNames()}
}

// Names returns the allocator, for reporting how many temporaries and
// labels were generated.
func (l *Lowerer) Names() *Names {
	return l.names
}

// Lower transforms prog with a fresh Lowerer.
func Lower(prog *ast.Program) ([]Stmt, error) {
	return NewLowerer().Program(prog)
}

// Program lowers the top-level statements of prog.
func (l *Lowerer) Program(prog *ast.Program) ([]Stmt, error) {
	return l.lowerStmts(prog.Statements, NewContext())
}

func (l *Lowerer) lowerStmts(stmts []ast.Statement, ctx Context) ([]Stmt, error) {
	var out []Stmt
	for _, s := range stmts {
		lowered, err := l.lowerStmt(s, ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, lowered...)
	}
	return out, nil
}

func (l *Lowerer) lowerBlock(b *ast.Block, ctx Context) ([]Stmt, error) {
	if b == nil {
		return nil, nil
	}
	return l.lowerStmts(b.Statements, ctx)
}

// --- Statement lowering ---

func (l *Lowerer) lowerStmt(s ast.Statement, ctx Context) ([]Stmt, error) {
	switch s := s.(type) {
	case *ast.Block:
		return l.lowerBlock(s, ctx)
	case *ast.ExprStmt:
		call, ok := s.Expr.(*ast.CallExpr)
		if !ok {
			return nil, errorAt(s.Expr, UnsupportedConstruct, "%s used as a statement; only calls are allowed", ast.Describe(s.Expr))
		}
		return l.lowerCallStmt(call, ctx)
	case *ast.AssignStmt:
		return l.lowerAssign(s, ctx)
	case *ast.AugAssignStmt:
		return l.lowerAugAssign(s, ctx)
	case *ast.IfStmt:
		return l.lowerIf(s, ctx)
	case *ast.ForStmt:
		return l.lowerFor(s, ctx)
	case *ast.WhileStmt:
		return l.lowerWhile(s, ctx)
	case *ast.BreakStmt:
		if ctx.LoopLabel() == "" {
			return nil, errorAt(s, ScopeError, "break outside loop")
		}
		return []Stmt{&Goto{Label: ctx.LoopLabel() + "_end"}}, nil
	default:
		return nil, errorAt(s, UnsupportedConstruct, "%s is not supported", ast.Describe(s))
	}
}

// lowerCallStmt lowers a call whose value is discarded.
func (l *Lowerer) lowerCallStmt(call *ast.CallExpr, ctx Context) ([]Stmt, error) {
	switch call.Function {
	case "print":
		args, err := l.lowerArgs(call.Args, ctx)
		if err != nil {
			return nil, err
		}
		return append(args.Prefix, &Echo{Text: joinValues(args.Values)}), nil

	case "batch":
		args, err := l.lowerArgs(call.Args, ctx)
		if err != nil {
			return nil, err
		}
		out := args.Prefix
		for _, v := range args.Values {
			out = append(out, &Raw{Text: v})
		}
		return out, nil

	case "input", "randint", "str":
		lowered, err := l.lowerCall(call, ctx)
		if err != nil {
			return nil, err
		}
		return lowered.Prefix, nil

	case "range":
		return nil, errorAt(call, UnsupportedConstruct, "range() is only supported as a for loop iterable")

	default:
		args, err := l.lowerArgs(call.Args, ctx)
		if err != nil {
			return nil, err
		}
		return append(args.Prefix, &Call{Label: call.Function, Args: args.Values}), nil
	}
}

// assignTargets returns the variable names an assignment writes.
func assignTargets(target ast.Expression, ctx Context) ([]string, error) {
	var exprs []ast.Expression
	if tuple, ok := target.(*ast.TupleExpr); ok {
		exprs = tuple.Elements
	} else {
		exprs = []ast.Expression{target}
	}

	names := make([]string, 0, len(exprs))
	for _, e := range exprs {
		id, ok := e.(*ast.Identifier)
		if !ok {
			return nil, errorAt(e, UnsupportedConstruct, "cannot assign to %s", ast.Describe(e))
		}
		if ctx.IsLoopVar(id.Name) {
			return nil, errorAt(e, UnsupportedConstruct, "cannot assign to loop variable '%s'", id.Name)
		}
		names = append(names, id.Name)
	}
	return names, nil
}

func (l *Lowerer) lowerAssign(s *ast.AssignStmt, ctx Context) ([]Stmt, error) {
	if len(s.Targets) != 1 {
		return nil, errorAt(s, UnsupportedConstruct, "cascaded assignment must be normalized before lowering")
	}
	targets, err := assignTargets(s.Targets[0], ctx)
	if err != nil {
		return nil, err
	}

	var values []ast.Expression
	switch v := s.Value.(type) {
	case *ast.TupleExpr:
		values = v.Elements
	case *ast.ListExpr:
		values = v.Elements
	default:
		values = []ast.Expression{s.Value}
	}
	if len(targets) != len(values) {
		return nil, errorAt(s, ArityMismatch, "cannot assign %d value(s) to %d target(s)", len(values), len(targets))
	}

	var prefix []Stmt
	lowered := make([]string, len(values))
	for i, v := range values {
		res, err := l.lowerExpr(v, ctx.With())
		if err != nil {
			return nil, err
		}
		prefix = append(prefix, res.Prefix...)
		lowered[i] = res.Value
	}

	// a, b = b, a: a value that reads a target directly (a bare name or
	// str() of one) is copied before any target is written.
	if len(targets) > 1 {
		written := make(map[string]bool, len(targets))
		for _, t := range targets {
			written[ctx.Ref(t)] = true
		}
		for i := range values {
			if written[lowered[i]] {
				tmp := l.names.Next("out")
				prefix = append(prefix, &Set{Name: tmp, Value: lowered[i]})
				lowered[i] = ctx.Ref(tmp)
			}
		}
	}

	out := prefix
	for i, t := range targets {
		out = append(out, &Set{Name: t, Value: lowered[i]})
	}
	return out, nil
}

// lowerAugAssign rewrites `x op= y` to `x = x op y`.
func (l *Lowerer) lowerAugAssign(s *ast.AugAssignStmt, ctx Context) ([]Stmt, error) {
	id, ok := s.Target.(*ast.Identifier)
	if !ok {
		return nil, errorAt(s.Target, UnsupportedConstruct, "cannot assign to %s", ast.Describe(s.Target))
	}
	assign := &ast.AssignStmt{
		Targets: []ast.Expression{id},
		Value: &ast.BinaryExpr{
			Left:   id,
			Op:     s.Op,
			Right:  s.Value,
			Line:   s.Line,
			Column: s.Column,
		},
		Line:   s.Line,
		Column: s.Column,
	}
	return l.lowerStmt(assign, ctx)
}

func (l *Lowerer) lowerIf(s *ast.IfStmt, ctx Context) ([]Stmt, error) {
	test, err := l.lowerExpr(s.Condition, ctx.With())
	if err != nil {
		return nil, err
	}
	then, err := l.lowerBlock(s.Then, ctx.With())
	if err != nil {
		return nil, err
	}

	block := &IfBlock{Cond: &IsTrue{Value: test.Value}, Then: then}
	if s.Else != nil {
		els, err := l.lowerBlock(s.Else, ctx.With())
		if err != nil {
			return nil, err
		}
		block.ElseCond = &IsFalse{Value: test.Value}
		block.Else = els
	}
	return append(test.Prefix, block), nil
}

func (l *Lowerer) lowerFor(s *ast.ForStmt, ctx Context) ([]Stmt, error) {
	id, ok := s.Target.(*ast.Identifier)
	if !ok {
		return nil, errorAt(s.Target, UnsupportedConstruct, "for loop target must be a single name, got %s", ast.Describe(s.Target))
	}
	if len(id.Name) != 1 || !isASCIILetter(id.Name[0]) {
		return nil, errorAt(s.Target, UnsupportedConstruct, "for loop variable '%s' must be a single letter", id.Name)
	}

	call, ok := s.Iterable.(*ast.CallExpr)
	if !ok || call.Function != "range" {
		return nil, errorAt(s.Iterable, UnsupportedConstruct, "for loops only iterate over range(), got %s", ast.Describe(s.Iterable))
	}
	if len(call.Args) < 1 || len(call.Args) > 3 {
		return nil, errorAt(call, ArityMismatch, "range() takes 1 to 3 arguments, got %d", len(call.Args))
	}

	var prefix []Stmt
	args := make([]string, len(call.Args))
	for i, a := range call.Args {
		res, err := l.lowerExpr(a, ctx.With())
		if err != nil {
			return nil, err
		}
		prefix = append(prefix, res.Prefix...)
		args[i] = res.Value
	}

	start, stop, step := "0", args[0], "1"
	switch len(args) {
	case 2:
		start, stop = args[0], args[1]
	case 3:
		start, stop, step = args[0], args[1], args[2]
	}

	end, endPrefix, err := l.rangeEnd(stop, step, call, ctx)
	if err != nil {
		return nil, err
	}
	prefix = append(prefix, endPrefix...)

	label := l.names.Next("for")
	body, err := l.lowerBlock(s.Body, ctx.With(WithLoopVar(id.Name), WithLoopLabel(label)))
	if err != nil {
		return nil, err
	}

	return append(prefix,
		&ForLoop{Var: id.Name, Start: start, Step: step, End: end, Body: body},
		&Label{Name: label + "_end"},
	), nil
}

// rangeEnd computes the inclusive last value FOR /L needs from Python's
// exclusive stop: stop-1 for a positive step, stop+1 for a negative one.
func (l *Lowerer) rangeEnd(stop, step string, at ast.Node, ctx Context) (string, []Stmt, error) {
	stepN, stepConst := literalInt(step)
	if stepConst && stepN == 0 {
		return "", nil, errorAt(at, UnsupportedConstruct, "range() step must not be zero")
	}

	if stopN, ok := literalInt(stop); ok && stepConst {
		if stepN > 0 {
			return strconv.Itoa(stopN - 1), nil, nil
		}
		return strconv.Itoa(stopN + 1), nil, nil
	}

	out := l.names.Next("out")
	if stepConst {
		delta := "-1"
		if stepN < 0 {
			delta = "+1"
		}
		return ctx.Ref(out), []Stmt{&SetArith{Name: out, Expr: arithOperand(stop) + delta}}, nil
	}
	return ctx.Ref(out), []Stmt{
		&SetArith{Name: out, Expr: arithOperand(stop) + "-1"},
		&Guard{
			Cond: &Compare{Left: step, Op: CmpLSS, Right: "0"},
			Stmt: &SetArith{Name: out, Expr: arithOperand(stop) + "+1"},
		},
	}, nil
}

func (l *Lowerer) lowerWhile(s *ast.WhileStmt, ctx Context) ([]Stmt, error) {
	label := l.names.Next("while")
	inner := ctx.With(WithLoopLabel(label))

	test, err := l.lowerExpr(s.Condition, inner.With())
	if err != nil {
		return nil, err
	}
	body, err := l.lowerBlock(s.Body, inner.With())
	if err != nil {
		return nil, err
	}

	out := []Stmt{&Label{Name: label}}
	out = append(out, test.Prefix...)
	out = append(out,
		&IfBlock{
			Cond: &IsTrue{Value: test.Value},
			Then: append(body, &Goto{Label: label}),
		},
		&Label{Name: label + "_end"},
	)
	return out, nil
}

func isASCIILetter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

// literalInt parses a value that is an integer literal.
func literalInt(v string) (int, bool) {
	n, err := strconv.Atoi(v)
	return n, err == nil
}

// arithOps maps source operators to set /a operators. The modulo sign is
// doubled because a batch file treats a single % as a variable reference.
var arithOps = map[lexer.TokenType]string{
	lexer.PLUS:    "+",
	lexer.MINUS:   "-",
	lexer.STAR:    "*",
	lexer.SLASH:   "/",
	lexer.DSLASH:  "/",
	lexer.PERCENT: "%%",
}

package linter

import (
	"regexp"
	"strings"

	"github.com/lhaig/pybat/internal/ast"
	"github.com/lhaig/pybat/internal/diagnostic"
)

// Linter performs checks on a parsed program for constructs that compile
// but behave surprisingly once they run under cmd.exe. It reports warnings
// (never errors) using the diagnostic system.
type Linter struct {
	prog *ast.Program
	diag *diagnostic.Diagnostics
}

// generatedName matches identifiers the lowering allocates for itself.
var generatedName = regexp.MustCompile(`^(out|for|while)[0-9]+(_end)?$`)

// metacharacters that cmd.exe interprets inside echo and set lines
const metacharacters = "%!&|<>^"

// Lint runs all lint rules on the given program and returns diagnostics.
func Lint(prog *ast.Program) *diagnostic.Diagnostics {
	l := &Linter{
		prog: prog,
		diag: diagnostic.New(),
	}

	l.lintStatements(prog.Statements)
	l.checkUnusedVariables()

	l.diag.SortByPosition()
	return l.diag
}

func (l *Linter) lintStatements(stmts []ast.Statement) {
	for _, stmt := range stmts {
		l.lintStatement(stmt)
	}
}

func (l *Linter) lintStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.AssignStmt:
		for _, target := range s.Targets {
			l.checkTargetNames(target)
		}
		l.lintExpr(s.Value)
	case *ast.AugAssignStmt:
		l.checkTargetNames(s.Target)
		l.lintExpr(s.Value)
	case *ast.IfStmt:
		l.lintExpr(s.Condition)
		l.lintBlock(s.Then)
		l.lintBlock(s.Else)
	case *ast.ForStmt:
		l.checkTargetNames(s.Target)
		l.checkLoopVariable(s.Target)
		l.lintExpr(s.Iterable)
		l.lintBlock(s.Body)
	case *ast.WhileStmt:
		l.lintExpr(s.Condition)
		l.lintBlock(s.Body)
	case *ast.ExprStmt:
		l.checkDiscardedResult(s)
		l.lintExpr(s.Expr)
	}
}

func (l *Linter) lintBlock(b *ast.Block) {
	if b != nil {
		l.lintStatements(b.Statements)
	}
}

func (l *Linter) lintExpr(expr ast.Expression) {
	walkExpr(expr, func(e ast.Expression) {
		if s, ok := e.(*ast.StringLit); ok {
			l.checkMetacharacters(s)
		}
	})
}

// --- Lint rules ---

// checkTargetNames warns when an assigned name looks like one the lowering
// generates, since the two would share a batch variable.
func (l *Linter) checkTargetNames(target ast.Expression) {
	for _, id := range targetIdentifiers(target) {
		if generatedName.MatchString(id.Name) {
			l.diag.WarningWithHint(id.Line, id.Column,
				"variable '"+id.Name+"' may collide with a generated temporary or label",
				"rename it; out<N>, for<N> and while<N> are reserved by the compiler")
		}
	}
}

// checkLoopVariable warns when a for loop variable cannot be a FOR /L
// parameter.
func (l *Linter) checkLoopVariable(target ast.Expression) {
	id, ok := target.(*ast.Identifier)
	if !ok || len(id.Name) == 1 {
		return
	}
	l.diag.WarningWithHint(id.Line, id.Column,
		"loop variable '"+id.Name+"' is longer than one letter",
		"FOR /L parameters are a single letter; rename it, e.g. 'i'")
}

// checkMetacharacters warns about string literals cmd.exe would interpret.
func (l *Linter) checkMetacharacters(s *ast.StringLit) {
	idx := strings.IndexAny(s.Value, metacharacters)
	if idx < 0 {
		return
	}
	l.diag.Warningf(s.Line, s.Column,
		"string contains batch metacharacter '%c' which cmd.exe may interpret", s.Value[idx])
}

// checkDiscardedResult warns when input() or randint() is called only for
// a value that is then thrown away.
func (l *Linter) checkDiscardedResult(s *ast.ExprStmt) {
	call, ok := s.Expr.(*ast.CallExpr)
	if !ok {
		return
	}
	switch call.Function {
	case "input":
		if len(call.Args) == 0 {
			l.diag.Warningf(call.Line, call.Column, "result of input() is never used")
		}
	case "randint":
		l.diag.Warningf(call.Line, call.Column, "result of randint() is never used")
	}
}

// checkUnusedVariables warns about names that are assigned but never read.
func (l *Linter) checkUnusedVariables() {
	used := make(map[string]bool)
	var assigned []*ast.Identifier
	seen := make(map[string]bool)

	record := func(target ast.Expression) {
		for _, id := range targetIdentifiers(target) {
			if !seen[id.Name] {
				seen[id.Name] = true
				assigned = append(assigned, id)
			}
		}
		// a subscript target reads its object and index
		if sub, ok := target.(*ast.SubscriptExpr); ok {
			collectNames(sub.Object, used)
			collectNames(sub.Index, used)
		}
	}

	var visit func(stmts []ast.Statement)
	visitBlock := func(b *ast.Block) {
		if b != nil {
			visit(b.Statements)
		}
	}
	visit = func(stmts []ast.Statement) {
		for _, stmt := range stmts {
			switch s := stmt.(type) {
			case *ast.AssignStmt:
				for _, target := range s.Targets {
					record(target)
				}
				collectNames(s.Value, used)
			case *ast.AugAssignStmt:
				record(s.Target)
				collectNames(s.Value, used)
			case *ast.IfStmt:
				collectNames(s.Condition, used)
				visitBlock(s.Then)
				visitBlock(s.Else)
			case *ast.ForStmt:
				// the loop variable is bound by the loop, not assigned
				collectNames(s.Iterable, used)
				visitBlock(s.Body)
			case *ast.WhileStmt:
				collectNames(s.Condition, used)
				visitBlock(s.Body)
			case *ast.ExprStmt:
				collectNames(s.Expr, used)
			}
		}
	}
	visit(l.prog.Statements)

	for _, id := range assigned {
		if !used[id.Name] {
			l.diag.Warningf(id.Line, id.Column, "variable '%s' is assigned but never read", id.Name)
		}
	}
}

// --- Name collection helpers ---

// targetIdentifiers returns the names an assignment target writes.
func targetIdentifiers(target ast.Expression) []*ast.Identifier {
	switch t := target.(type) {
	case *ast.Identifier:
		return []*ast.Identifier{t}
	case *ast.TupleExpr:
		var ids []*ast.Identifier
		for _, e := range t.Elements {
			ids = append(ids, targetIdentifiers(e)...)
		}
		return ids
	case *ast.ListExpr:
		var ids []*ast.Identifier
		for _, e := range t.Elements {
			ids = append(ids, targetIdentifiers(e)...)
		}
		return ids
	}
	return nil
}

// collectNames records every identifier read by expr.
func collectNames(expr ast.Expression, used map[string]bool) {
	walkExpr(expr, func(e ast.Expression) {
		if id, ok := e.(*ast.Identifier); ok {
			used[id.Name] = true
		}
	})
}

// walkExpr calls fn for expr and every expression nested in it.
func walkExpr(expr ast.Expression, fn func(ast.Expression)) {
	if expr == nil {
		return
	}
	fn(expr)
	switch e := expr.(type) {
	case *ast.UnaryExpr:
		walkExpr(e.Operand, fn)
	case *ast.BoolOpExpr:
		for _, v := range e.Values {
			walkExpr(v, fn)
		}
	case *ast.CompareExpr:
		walkExpr(e.Left, fn)
		for _, c := range e.Comparators {
			walkExpr(c, fn)
		}
	case *ast.BinaryExpr:
		walkExpr(e.Left, fn)
		walkExpr(e.Right, fn)
	case *ast.CallExpr:
		for _, arg := range e.Args {
			walkExpr(arg, fn)
		}
	case *ast.TupleExpr:
		for _, elem := range e.Elements {
			walkExpr(elem, fn)
		}
	case *ast.ListExpr:
		for _, elem := range e.Elements {
			walkExpr(elem, fn)
		}
	case *ast.SubscriptExpr:
		walkExpr(e.Object, fn)
		walkExpr(e.Index, fn)
	}
}

package compiler

import (
	"errors"

	"github.com/lhaig/pybat/internal/ast"
	"github.com/lhaig/pybat/internal/batch"
	"github.com/lhaig/pybat/internal/diagnostic"
	"github.com/lhaig/pybat/internal/formatter"
	"github.com/lhaig/pybat/internal/ir"
	"github.com/lhaig/pybat/internal/linter"
	"github.com/lhaig/pybat/internal/normalize"
	"github.com/lhaig/pybat/internal/parser"
)

// Result holds the output of a compilation
type Result struct {
	Diagnostics *diagnostic.Diagnostics
	Script      string
	Stats       Stats
}

// Stats summarizes what lowering produced, for --verbose output.
type Stats struct {
	Statements  int // top-level lowered statements
	Temporaries int // outN variables allocated
	Labels      int // for/while labels allocated
}

// hints attached to lowering errors by kind
var errorHints = map[ir.ErrorKind]string{
	ir.ScopeError:                   "move the break inside a for or while body",
	ir.ChainedComparisonUnsupported: "split the chain with and, e.g. a < b and b < c",
}

// Compile runs the full pipeline: parse -> normalize -> lower -> validate -> emit.
// Returns the result without writing files.
func Compile(source string, opts batch.Options) *Result {
	res := &Result{}

	prog, diags := frontEnd(source)
	res.Diagnostics = diags
	if diags.HasErrors() {
		return res
	}

	l := ir.NewLowerer()
	stmts, err := l.Program(prog)
	if err != nil {
		addLowerError(res.Diagnostics, err)
		return res
	}

	for _, problem := range ir.Validate(stmts) {
		res.Diagnostics.Add(diagnostic.Diagnostic{
			Severity: diagnostic.Error,
			Code:     "internal",
			Message:  problem,
		})
	}
	if res.Diagnostics.HasErrors() {
		return res
	}

	res.Script = batch.Generate(stmts, opts)
	res.Stats = Stats{
		Statements:  len(stmts),
		Temporaries: l.Names().Count("out"),
		Labels:      l.Names().Count("for") + l.Names().Count("while"),
	}
	return res
}

// Check runs the pipeline up to lowering (no emission).
func Check(source string) *diagnostic.Diagnostics {
	prog, diags := frontEnd(source)
	if diags.HasErrors() {
		return diags
	}
	if _, err := ir.Lower(prog); err != nil {
		addLowerError(diags, err)
	}
	return diags
}

// Lint parses source and returns the linter's warnings. Parse errors are
// returned instead when the source does not parse.
func Lint(source string) *diagnostic.Diagnostics {
	p := parser.New(source)
	prog := p.Parse()
	if p.Diagnostics().HasErrors() {
		return p.Diagnostics()
	}
	return linter.Lint(prog)
}

// ParseAST parses and normalizes source, for dumping.
func ParseAST(source string) (*ast.Program, *diagnostic.Diagnostics) {
	return frontEnd(source)
}

// LowerIR runs the pipeline up to lowering and returns the statements.
func LowerIR(source string) ([]ir.Stmt, *diagnostic.Diagnostics) {
	prog, diags := frontEnd(source)
	if diags.HasErrors() {
		return nil, diags
	}
	stmts, err := ir.Lower(prog)
	if err != nil {
		addLowerError(diags, err)
		return nil, diags
	}
	return stmts, diags
}

// frontEnd parses and normalizes source. The returned diagnostics are
// never nil.
func frontEnd(source string) (*ast.Program, *diagnostic.Diagnostics) {
	p := parser.New(source)
	prog := p.Parse()

	diags := diagnostic.New()
	diags.Merge(p.Diagnostics())
	if diags.HasErrors() {
		return nil, diags
	}

	norm, normDiags := normalize.Program(prog)
	diags.Merge(normDiags)
	if diags.HasErrors() {
		return nil, diags
	}
	return norm, diags
}

// addLowerError converts a lowering failure into a diagnostic.
func addLowerError(diags *diagnostic.Diagnostics, err error) {
	var lerr *ir.Error
	if !errors.As(err, &lerr) {
		diags.Errorf(0, 0, "%s", err)
		return
	}
	diags.Add(diagnostic.Diagnostic{
		Severity: diagnostic.Error,
		Code:     lerr.Kind.String(),
		Message:  lerr.Message,
		Line:     lerr.Line,
		Column:   lerr.Column,
		Hint:     errorHints[lerr.Kind],
	})
}

// Format parses source and returns it in canonical layout.
func Format(source string) (string, *diagnostic.Diagnostics) {
	p := parser.New(source)
	prog := p.Parse()
	if p.Diagnostics().HasErrors() {
		return "", p.Diagnostics()
	}
	return formatter.Format(prog), p.Diagnostics()
}

// Package batch renders lowered statements as a Windows batch script.
package batch

import (
	"fmt"
	"strings"

	"github.com/lhaig/pybat/internal/ir"
)

// Header holds the two prologue lines every script starts with. Delayed
// expansion must be enabled for !name! references to resolve.
var Header = []string{
	"@echo off",
	"setlocal EnableDelayedExpansion",
}

// DefaultIndent is the number of spaces per block nesting level.
const DefaultIndent = 4

// Options controls rendering.
type Options struct {
	CRLF   bool // terminate lines with \r\n instead of \n
	Indent int  // spaces per nesting level; 0 uses DefaultIndent
}

// Generate renders stmts as a complete script: the header, the statements
// with nested blocks indented, and no runs of more than one blank line.
func Generate(stmts []ir.Stmt, opts Options) string {
	width := opts.Indent
	if width <= 0 {
		width = DefaultIndent
	}
	g := &generator{unit: strings.Repeat(" ", width)}

	for _, line := range Header {
		g.emitLine(line)
	}
	g.emitLine("")
	g.generateStmts(stmts)

	lines := CollapseBlankLines(g.lines)
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}

	eol := "\n"
	if opts.CRLF {
		eol = "\r\n"
	}
	return strings.Join(lines, eol) + eol
}

// CollapseBlankLines replaces every run of consecutive blank lines with a
// single empty line. Applying it twice gives the same result as once.
func CollapseBlankLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	prevBlank := false
	for _, line := range lines {
		blank := strings.TrimSpace(line) == ""
		if blank && prevBlank {
			continue
		}
		if blank {
			line = ""
		}
		out = append(out, line)
		prevBlank = blank
	}
	return out
}

type generator struct {
	lines  []string
	indent int
	unit   string
}

func (g *generator) emitLine(s string) {
	if s == "" {
		g.lines = append(g.lines, "")
		return
	}
	g.lines = append(g.lines, strings.Repeat(g.unit, g.indent)+s)
}

func (g *generator) emitLinef(format string, args ...any) {
	g.emitLine(fmt.Sprintf(format, args...))
}

func (g *generator) incIndent() { g.indent++ }
func (g *generator) decIndent() { g.indent-- }

func (g *generator) generateStmts(stmts []ir.Stmt) {
	for _, s := range stmts {
		g.generateStmt(s)
	}
}

// generateBlock renders a parenthesized body. cmd.exe rejects an empty
// pair of parentheses, so an empty body gets a rem line.
func (g *generator) generateBlock(stmts []ir.Stmt) {
	g.incIndent()
	if len(stmts) == 0 {
		g.emitLine("rem pass")
	}
	g.generateStmts(stmts)
	g.decIndent()
}

func (g *generator) generateStmt(s ir.Stmt) {
	switch s := s.(type) {
	case *ir.Raw:
		for _, line := range strings.Split(s.Text, "\n") {
			g.emitLine(strings.TrimRight(line, "\r"))
		}
	case *ir.IfBlock:
		g.emitLinef("IF %s (", condition(s.Cond))
		g.generateBlock(s.Then)
		if s.Else != nil {
			if s.ElseCond != nil {
				g.emitLinef(") ELSE IF %s (", condition(s.ElseCond))
			} else {
				g.emitLine(") ELSE (")
			}
			g.generateBlock(s.Else)
		}
		g.emitLine(")")
	case *ir.ForLoop:
		g.emitLinef("FOR /L %%%%%s IN (%s,%s,%s) DO (", s.Var, s.Start, s.Step, s.End)
		g.generateBlock(s.Body)
		g.emitLine(")")
	case *ir.Label:
		g.emitLine(":" + s.Name)
	default:
		g.emitLine(simple(s))
	}
}

// simple renders a statement that fits on one line.
func simple(s ir.Stmt) string {
	switch s := s.(type) {
	case *ir.Set:
		return fmt.Sprintf(`set "%s=%s"`, s.Name, s.Value)
	case *ir.SetArith:
		return fmt.Sprintf(`set /a "%s=%s"`, s.Name, s.Expr)
	case *ir.SetPrompt:
		return fmt.Sprintf("set /p %s=%s", s.Name, s.Prompt)
	case *ir.Echo:
		// echo( never treats its text as the on/off switch and prints an
		// empty value as an empty line.
		if s.Text == "" {
			return "echo."
		}
		return "echo(" + s.Text
	case *ir.Call:
		if len(s.Args) == 0 {
			return "call :" + s.Label
		}
		return "call :" + s.Label + " " + strings.Join(s.Args, " ")
	case *ir.Goto:
		return "goto :" + s.Label
	case *ir.Guard:
		return "IF " + condition(s.Cond) + " " + simple(s.Stmt)
	case *ir.Raw:
		return s.Text
	case *ir.Label:
		return ":" + s.Name
	default:
		// Blocks cannot be guarded inline; the lowering never produces this.
		return fmt.Sprintf("rem unsupported inline statement %T", s)
	}
}

func condition(c ir.Cond) string {
	switch c := c.(type) {
	case *ir.IsTrue:
		return fmt.Sprintf(`NOT "%s"=="0"`, c.Value)
	case *ir.IsFalse:
		return fmt.Sprintf(`"%s"=="0"`, c.Value)
	case *ir.Compare:
		if c.Quoted {
			return fmt.Sprintf(`"%s" %s "%s"`, c.Left, c.Op, c.Right)
		}
		return fmt.Sprintf("%s %s %s", c.Left, c.Op, c.Right)
	default:
		return fmt.Sprintf("rem unknown condition %T", c)
	}
}

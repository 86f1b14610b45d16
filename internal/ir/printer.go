package ir

import (
	"fmt"
	"strings"
)

// Dump returns an indented, one-statement-per-line listing of stmts for
// debugging and tests.
func Dump(stmts []Stmt) string {
	var sb strings.Builder
	dumpStmts(&sb, stmts, 0)
	return sb.String()
}

func dumpStmts(sb *strings.Builder, stmts []Stmt, indent int) {
	for _, s := range stmts {
		sb.WriteString(strings.Repeat("  ", indent))
		dumpStmt(sb, s, indent)
	}
}

func dumpStmt(sb *strings.Builder, s Stmt, indent int) {
	switch s := s.(type) {
	case *Set:
		sb.WriteString(fmt.Sprintf("Set %s = %s\n", s.Name, s.Value))
	case *SetArith:
		sb.WriteString(fmt.Sprintf("SetArith %s = %s\n", s.Name, s.Expr))
	case *SetPrompt:
		sb.WriteString(fmt.Sprintf("SetPrompt %s = %q\n", s.Name, s.Prompt))
	case *Echo:
		sb.WriteString(fmt.Sprintf("Echo %q\n", s.Text))
	case *Raw:
		sb.WriteString(fmt.Sprintf("Raw %q\n", s.Text))
	case *Call:
		sb.WriteString(fmt.Sprintf("Call %s(%s)\n", s.Label, strings.Join(s.Args, ", ")))
	case *Guard:
		sb.WriteString(fmt.Sprintf("Guard %s: ", DumpCond(s.Cond)))
		dumpStmt(sb, s.Stmt, indent)
	case *IfBlock:
		sb.WriteString(fmt.Sprintf("If %s\n", DumpCond(s.Cond)))
		dumpStmts(sb, s.Then, indent+1)
		if s.Else != nil {
			sb.WriteString(strings.Repeat("  ", indent))
			if s.ElseCond != nil {
				sb.WriteString(fmt.Sprintf("Else %s\n", DumpCond(s.ElseCond)))
			} else {
				sb.WriteString("Else\n")
			}
			dumpStmts(sb, s.Else, indent+1)
		}
	case *ForLoop:
		sb.WriteString(fmt.Sprintf("For %s in (%s,%s,%s)\n", s.Var, s.Start, s.Step, s.End))
		dumpStmts(sb, s.Body, indent+1)
	case *Label:
		sb.WriteString(fmt.Sprintf("Label %s\n", s.Name))
	case *Goto:
		sb.WriteString(fmt.Sprintf("Goto %s\n", s.Label))
	default:
		sb.WriteString(fmt.Sprintf("Unknown %T\n", s))
	}
}

// DumpCond renders a condition for Dump.
func DumpCond(c Cond) string {
	switch c := c.(type) {
	case *IsTrue:
		return fmt.Sprintf("true(%s)", c.Value)
	case *IsFalse:
		return fmt.Sprintf("false(%s)", c.Value)
	case *Compare:
		if c.Quoted {
			return fmt.Sprintf("%q %s %q", c.Left, c.Op, c.Right)
		}
		return fmt.Sprintf("%s %s %s", c.Left, c.Op, c.Right)
	default:
		return fmt.Sprintf("<%T>", c)
	}
}

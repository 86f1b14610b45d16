package ir

import (
	"fmt"
)

// Validate checks lowered statements for structural consistency and
// returns a list of error messages. An empty slice means the statements
// are valid: labels are unique, every goto has a target, every assigned
// variable has a name, and loop variables are single letters.
func Validate(stmts []Stmt) []string {
	v := &validator{labels: make(map[string]bool)}
	v.collectLabels(stmts)
	v.walk(stmts, "top level")
	return v.errors
}

type validator struct {
	labels map[string]bool
	errors []string
}

func (v *validator) errorf(format string, args ...interface{}) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (v *validator) collectLabels(stmts []Stmt) {
	for _, s := range stmts {
		switch s := s.(type) {
		case *Label:
			if s.Name == "" {
				v.errorf("label with empty name")
				continue
			}
			if v.labels[s.Name] {
				v.errorf("duplicate label :%s", s.Name)
			}
			v.labels[s.Name] = true
		case *IfBlock:
			v.collectLabels(s.Then)
			v.collectLabels(s.Else)
		case *ForLoop:
			v.collectLabels(s.Body)
		}
	}
}

func (v *validator) walk(stmts []Stmt, where string) {
	for _, s := range stmts {
		v.stmt(s, where)
	}
}

func (v *validator) stmt(s Stmt, where string) {
	switch s := s.(type) {
	case *Set:
		if s.Name == "" {
			v.errorf("%s: set with empty variable name", where)
		}
	case *SetArith:
		if s.Name == "" {
			v.errorf("%s: set /a with empty variable name", where)
		}
		if s.Expr == "" {
			v.errorf("%s: set /a %s has empty expression", where, s.Name)
		}
	case *SetPrompt:
		if s.Name == "" {
			v.errorf("%s: set /p with empty variable name", where)
		}
	case *Call:
		if s.Label == "" {
			v.errorf("%s: call with empty label", where)
		}
	case *Goto:
		if !v.labels[s.Label] {
			v.errorf("%s: goto :%s has no matching label", where, s.Label)
		}
	case *Guard:
		if s.Cond == nil {
			v.errorf("%s: guard with nil condition", where)
		}
		if s.Stmt == nil {
			v.errorf("%s: guard with nil statement", where)
			return
		}
		v.stmt(s.Stmt, where)
	case *IfBlock:
		if s.Cond == nil {
			v.errorf("%s: if block with nil condition", where)
		}
		v.walk(s.Then, where+" > if")
		v.walk(s.Else, where+" > else")
	case *ForLoop:
		if len(s.Var) != 1 {
			v.errorf("%s: for loop variable %q must be a single character", where, s.Var)
		}
		if s.Start == "" || s.Step == "" || s.End == "" {
			v.errorf("%s: for loop %%%%%s has an empty bound", where, s.Var)
		}
		v.walk(s.Body, where+" > for %%"+s.Var)
	case *Echo, *Raw, *Label:
	default:
		v.errorf("%s: unknown statement %T", where, s)
	}
}

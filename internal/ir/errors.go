package ir

import (
	"fmt"

	"github.com/lhaig/pybat/internal/ast"
)

// ErrorKind classifies lowering failures.
type ErrorKind int

const (
	// UnsupportedConstruct: a node kind, operator or form with no lowering rule.
	UnsupportedConstruct ErrorKind = iota
	// ArityMismatch: assignment target/value counts differ, or a builtin
	// received the wrong number of arguments.
	ArityMismatch
	// ScopeError: break outside any loop.
	ScopeError
	// ChainedComparisonUnsupported: more than one operator in one comparison.
	ChainedComparisonUnsupported
)

func (k ErrorKind) String() string {
	switch k {
	case UnsupportedConstruct:
		return "unsupported"
	case ArityMismatch:
		return "arity"
	case ScopeError:
		return "scope"
	case ChainedComparisonUnsupported:
		return "chained-comparison"
	default:
		return "unknown"
	}
}

// Error is returned by Lower. The first error aborts the whole unit.
type Error struct {
	Kind    ErrorKind
	Line    int
	Column  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s (%s)", e.Line, e.Column, e.Message, e.Kind)
}

func errorAt(node ast.Node, kind ErrorKind, format string, args ...interface{}) *Error {
	line, col := node.Pos()
	return &Error{
		Kind:    kind,
		Line:    line,
		Column:  col,
		Message: fmt.Sprintf(format, args...),
	}
}

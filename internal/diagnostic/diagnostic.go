package diagnostic

import (
	"fmt"
	"sort"
	"strings"
)

// Severity represents the severity level of a diagnostic message
type Severity int

const (
	Error Severity = iota
	Warning
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "unknown"
	}
}

// Diagnostic is a single error or warning tied to a source position
type Diagnostic struct {
	Severity Severity
	Code     string // optional short category, e.g. "scope" or "arity"
	Message  string
	Line     int
	Column   int
	Hint     string // optional suggestion
}

// Diagnostics manages a collection of diagnostic messages
type Diagnostics struct {
	items []Diagnostic
}

// New creates a new empty Diagnostics collection
func New() *Diagnostics {
	return &Diagnostics{
		items: make([]Diagnostic, 0),
	}
}

// Add appends a fully built diagnostic
func (d *Diagnostics) Add(item Diagnostic) {
	d.items = append(d.items, item)
}

// Errorf adds an error diagnostic with formatted message
func (d *Diagnostics) Errorf(line, col int, format string, args ...interface{}) {
	d.Add(Diagnostic{
		Severity: Error,
		Message:  fmt.Sprintf(format, args...),
		Line:     line,
		Column:   col,
	})
}

// Warningf adds a warning diagnostic with formatted message
func (d *Diagnostics) Warningf(line, col int, format string, args ...interface{}) {
	d.Add(Diagnostic{
		Severity: Warning,
		Message:  fmt.Sprintf(format, args...),
		Line:     line,
		Column:   col,
	})
}

// WarningWithHint adds a warning diagnostic with an optional hint
func (d *Diagnostics) WarningWithHint(line, col int, msg, hint string) {
	d.Add(Diagnostic{
		Severity: Warning,
		Message:  msg,
		Line:     line,
		Column:   col,
		Hint:     hint,
	})
}

// Merge appends all diagnostics from other
func (d *Diagnostics) Merge(other *Diagnostics) {
	if other == nil {
		return
	}
	d.items = append(d.items, other.items...)
}

// HasErrors returns true if there are any error-level diagnostics
func (d *Diagnostics) HasErrors() bool {
	for _, item := range d.items {
		if item.Severity == Error {
			return true
		}
	}
	return false
}

// Errors returns only the error-level diagnostics
func (d *Diagnostics) Errors() []Diagnostic {
	errors := make([]Diagnostic, 0)
	for _, item := range d.items {
		if item.Severity == Error {
			errors = append(errors, item)
		}
	}
	return errors
}

// All returns all diagnostics regardless of severity
func (d *Diagnostics) All() []Diagnostic {
	return d.items
}

// Count returns the total number of diagnostics
func (d *Diagnostics) Count() int {
	return len(d.items)
}

// WarningCount returns the number of warning-level diagnostics
func (d *Diagnostics) WarningCount() int {
	count := 0
	for _, item := range d.items {
		if item.Severity == Warning {
			count++
		}
	}
	return count
}

// SortByPosition orders diagnostics by line, then column. The sort is
// stable so diagnostics at the same position keep their insertion order.
func (d *Diagnostics) SortByPosition() {
	sort.SliceStable(d.items, func(i, j int) bool {
		if d.items[i].Line != d.items[j].Line {
			return d.items[i].Line < d.items[j].Line
		}
		return d.items[i].Column < d.items[j].Column
	})
}

// Format returns human-readable error messages
// Output format:
//
//	error[filename:3:10]: break outside loop (scope)
//	  hint: move the break inside a for or while body
//	warning[filename:5:1]: 'x' is assigned but never read
func (d *Diagnostics) Format(filename string) string {
	if len(d.items) == 0 {
		return ""
	}

	var builder strings.Builder
	for i, item := range d.items {
		builder.WriteString(fmt.Sprintf("%s[%s:%d:%d]: %s",
			item.Severity.String(),
			filename,
			item.Line,
			item.Column,
			item.Message,
		))
		if item.Code != "" {
			builder.WriteString(fmt.Sprintf(" (%s)", item.Code))
		}

		if item.Hint != "" {
			builder.WriteString(fmt.Sprintf("\n  hint: %s", item.Hint))
		}

		// Add newline unless it's the last item
		if i < len(d.items)-1 {
			builder.WriteString("\n")
		}
	}

	return builder.String()
}

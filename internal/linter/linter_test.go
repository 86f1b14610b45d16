package linter

import (
	"strings"
	"testing"

	"github.com/lhaig/pybat/internal/diagnostic"
	"github.com/lhaig/pybat/internal/parser"
)

func parseAndLint(t *testing.T, source string) []string {
	t.Helper()
	p := parser.New(source)
	prog := p.Parse()

	if p.Diagnostics().HasErrors() {
		t.Fatalf("Parser errors: %s", p.Diagnostics().Format("test"))
	}

	diag := Lint(prog)
	var warnings []string
	for _, d := range diag.All() {
		if d.Severity != diagnostic.Warning {
			t.Errorf("lint produced a non-warning: %s", d.Message)
		}
		warnings = append(warnings, d.Message)
	}
	return warnings
}

func containsWarning(warnings []string, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

// --- Generated name collisions ---

func TestGeneratedNameCollision(t *testing.T) {
	tests := []struct {
		source string
		name   string
	}{
		{"out0 = 1\nprint(out0)\n", "out0"},
		{"for3 = 1\nprint(for3)\n", "for3"},
		{"a, while12 = 1, 2\nprint(a, while12)\n", "while12"},
		{"for0_end = 1\nprint(for0_end)\n", "for0_end"},
		{"out1 += 1\n", "out1"},
	}
	for _, tt := range tests {
		warnings := parseAndLint(t, tt.source)
		if !containsWarning(warnings, "'"+tt.name+"' may collide") {
			t.Errorf("%q: expected collision warning, got: %v", tt.source, warnings)
		}
	}
}

func TestOrdinaryNamesNoCollision(t *testing.T) {
	warnings := parseAndLint(t, "output = 1\nout = 2\nforx = 3\nprint(output, out, forx)\n")
	if containsWarning(warnings, "may collide") {
		t.Errorf("Did not expect collision warning, got: %v", warnings)
	}
}

// --- Loop variables ---

func TestMultiLetterLoopVariable(t *testing.T) {
	warnings := parseAndLint(t, "for idx in range(3):\n    print(idx)\n")
	if !containsWarning(warnings, "loop variable 'idx'") {
		t.Errorf("Expected loop variable warning, got: %v", warnings)
	}
}

func TestSingleLetterLoopVariableNoWarning(t *testing.T) {
	warnings := parseAndLint(t, "for i in range(3):\n    print(i)\n")
	if len(warnings) != 0 {
		t.Errorf("Expected no warnings, got: %v", warnings)
	}
}

// --- Metacharacters ---

func TestStringMetacharacters(t *testing.T) {
	for _, s := range []string{"100%", "hi!", "a & b", "a | b", "<tag>", "x^2"} {
		warnings := parseAndLint(t, "print(\""+s+"\")\n")
		if !containsWarning(warnings, "metacharacter") {
			t.Errorf("%q: expected metacharacter warning, got: %v", s, warnings)
		}
	}
}

func TestNestedStringMetacharacters(t *testing.T) {
	source := `x = 1
while x > 0:
    if x == 1:
        print("done!")
    x -= 1
`
	warnings := parseAndLint(t, source)
	if !containsWarning(warnings, "metacharacter '!'") {
		t.Errorf("Expected metacharacter warning inside nested blocks, got: %v", warnings)
	}
}

func TestPlainStringNoWarning(t *testing.T) {
	warnings := parseAndLint(t, "print(\"hello, world.\")\n")
	if len(warnings) != 0 {
		t.Errorf("Expected no warnings, got: %v", warnings)
	}
}

// --- Discarded results ---

func TestDiscardedRandint(t *testing.T) {
	warnings := parseAndLint(t, "randint(1, 6)\n")
	if !containsWarning(warnings, "randint() is never used") {
		t.Errorf("Expected discarded randint warning, got: %v", warnings)
	}
}

func TestDiscardedInput(t *testing.T) {
	warnings := parseAndLint(t, "input()\n")
	if !containsWarning(warnings, "input() is never used") {
		t.Errorf("Expected discarded input warning, got: %v", warnings)
	}

	// a prompt-only input is the usual "press enter" pause
	warnings = parseAndLint(t, "input(\"Press enter\")\n")
	if containsWarning(warnings, "never used") {
		t.Errorf("Did not expect a warning for a prompt pause, got: %v", warnings)
	}
}

// --- Unused variables ---

func TestAssignedNeverRead(t *testing.T) {
	warnings := parseAndLint(t, "x = 1\ny = 2\nprint(y)\n")
	if !containsWarning(warnings, "variable 'x' is assigned but never read") {
		t.Errorf("Expected unused warning for x, got: %v", warnings)
	}
	if containsWarning(warnings, "variable 'y'") {
		t.Errorf("Did not expect warning for y, got: %v", warnings)
	}
}

func TestReadInNestedBlockCounts(t *testing.T) {
	source := `n = 3
total = 0
for i in range(n):
    if i > 0:
        total += i
print(total)
`
	warnings := parseAndLint(t, source)
	if len(warnings) != 0 {
		t.Errorf("Expected no warnings, got: %v", warnings)
	}
}

func TestReadBeforeLaterAssignCounts(t *testing.T) {
	warnings := parseAndLint(t, "x = 1\nwhile x < 5:\n    x = x + 1\n")
	if containsWarning(warnings, "never read") {
		t.Errorf("Did not expect unused warning, got: %v", warnings)
	}
}

func TestUnusedWarningReportedOnce(t *testing.T) {
	warnings := parseAndLint(t, "x = 1\nx = 2\n")
	count := 0
	for _, w := range warnings {
		if strings.Contains(w, "variable 'x'") {
			count++
		}
	}
	if count != 1 {
		t.Errorf("Expected a single warning for x, got: %v", warnings)
	}
}

func TestWarningsSortedByPosition(t *testing.T) {
	p := parser.New("unused = 1\nprint(\"a&b\")\nout0 = 2\nprint(out0)\n")
	prog := p.Parse()
	diags := Lint(prog)

	prevLine := 0
	for _, d := range diags.All() {
		if d.Line < prevLine {
			t.Fatalf("warnings not sorted: %s", diags.Format("test"))
		}
		prevLine = d.Line
	}
	if diags.WarningCount() != 3 {
		t.Errorf("expected 3 warnings, got:\n%s", diags.Format("test"))
	}
}

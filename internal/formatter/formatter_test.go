package formatter

import (
	"strings"
	"testing"

	"github.com/lhaig/pybat/internal/parser"
)

// helper: parse source, format, return formatted string
func formatSource(t *testing.T, source string) string {
	t.Helper()
	p := parser.New(source)
	prog := p.Parse()
	if p.Diagnostics().HasErrors() {
		t.Fatalf("parse error: %s", p.Diagnostics().Format("<test>"))
	}
	return Format(prog)
}

// --- Per-construct tests ---

func TestFormatSpacing(t *testing.T) {
	tests := []struct {
		src      string
		expected string
	}{
		{"x=1+2*3\n", "x = 1 + 2 * 3\n"},
		{"a,b=1,2\n", "a, b = 1, 2\n"},
		{"a=b=c\n", "a = b = c\n"},
		{"x+=1\n", "x += 1\n"},
		{"print( 'hi' ,x )\n", "print(\"hi\", x)\n"},
		{"y=[1,2][0]\n", "y = [1, 2][0]\n"},
		{"t=(1,)\n", "t = (1,)\n"},
		{"ok=not a==b\n", "ok = not a == b\n"},
		{"z=3- -5\n", "z = 3 - -5\n"},
		{"w=-x\n", "w = -x\n"},
	}
	for _, tt := range tests {
		if got := formatSource(t, tt.src); got != tt.expected {
			t.Errorf("Format(%q): expected %q, got %q", tt.src, tt.expected, got)
		}
	}
}

func TestFormatParentheses(t *testing.T) {
	tests := []struct {
		src      string
		expected string
	}{
		{"x = (1 + 2) * 3\n", "x = (1 + 2) * 3\n"},
		{"x = ((1 * 2)) + 3\n", "x = 1 * 2 + 3\n"},
		{"x = 1 - (2 - 3)\n", "x = 1 - (2 - 3)\n"},
		{"x = (1 - 2) - 3\n", "x = 1 - 2 - 3\n"},
		{"x = (a or b) and c\n", "x = (a or b) and c\n"},
		{"x = a or (b and c)\n", "x = a or b and c\n"},
		{"x = -(a + b)\n", "x = -(a + b)\n"},
		{"x = not (a and b)\n", "x = not (a and b)\n"},
		{"f((1, 2))\n", "f((1, 2))\n"},
	}
	for _, tt := range tests {
		if got := formatSource(t, tt.src); got != tt.expected {
			t.Errorf("Format(%q): expected %q, got %q", tt.src, tt.expected, got)
		}
	}
}

func TestFormatStringEscapes(t *testing.T) {
	got := formatSource(t, `s = 'say "hi"\n\tback\\slash'`+"\n")
	expected := `s = "say \"hi\"\n\tback\\slash"` + "\n"
	if got != expected {
		t.Errorf("expected %s, got %s", expected, got)
	}
}

func TestFormatBlocks(t *testing.T) {
	src := `for i in range(3):
  if i==0:
        pass
  elif i==1:
        print(i)
  else:
        break
while   x<3 :
 x+=1
`
	expected := `for i in range(3):
    if i == 0:
        pass
    elif i == 1:
        print(i)
    else:
        break
while x < 3:
    x += 1
`
	if got := formatSource(t, src); got != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, got)
	}
}

func TestFormatSingleLineSuite(t *testing.T) {
	got := formatSource(t, "if x: print(x)\n")
	if got != "if x:\n    print(x)\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestFormatBlankLines(t *testing.T) {
	src := "a = 1\n\n\n\nb = 2\nc = 3\n\nfor i in range(2):\n    x = i\n\n    y = i\nz = 1\n"
	expected := "a = 1\n\nb = 2\nc = 3\n\nfor i in range(2):\n    x = i\n\n    y = i\nz = 1\n"
	if got := formatSource(t, src); got != expected {
		t.Errorf("expected:\n%q\ngot:\n%q", expected, got)
	}
}

func TestFormatDropsComments(t *testing.T) {
	got := formatSource(t, "# header\nx = 1  # trailing\n")
	if strings.Contains(got, "#") {
		t.Errorf("expected comments to be dropped, got:\n%s", got)
	}
}

// --- Round-trip ---

func TestFormatIdempotent(t *testing.T) {
	sources := []string{
		"x=1\ny = x*(2+3)\n\n\nif x>1 and not y: print('a')\nelse:\n    pass\n",
		"for i in range(0,10,2):\n    n=randint(1,6)\n    print(str(n)+'!')\n",
		"a,b=b,a\nv=a,b=1,2\nwhile True:\n    break\n",
	}
	for _, src := range sources {
		once := formatSource(t, src)
		twice := formatSource(t, once)
		if once != twice {
			t.Errorf("format is not idempotent:\nfirst:\n%s\nsecond:\n%s", once, twice)
		}
	}
}

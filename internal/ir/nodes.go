package ir

// Stmt is a single target statement. Statements are plain records; all
// textual rendering happens once, in the batch emitter.
type Stmt interface {
	stmtNode()
}

// Cond is the condition of an IF guard or block.
type Cond interface {
	condNode()
}

// --- Conditions ---

// IsTrue holds when Value is not the canonical false text "0".
type IsTrue struct {
	Value string
}

// IsFalse holds when Value is the canonical false text "0".
type IsFalse struct {
	Value string
}

// CmpOp is a batch relational keyword.
type CmpOp string

const (
	CmpGTR CmpOp = "GTR"
	CmpGEQ CmpOp = "GEQ"
	CmpEQU CmpOp = "EQU"
	CmpLEQ CmpOp = "LEQ"
	CmpLSS CmpOp = "LSS"
)

// Compare holds when `Left Op Right`. Quoted operands compare as text,
// which keeps string values containing spaces intact.
type Compare struct {
	Left   string
	Op     CmpOp
	Right  string
	Quoted bool
}

func (*IsTrue) condNode()  {}
func (*IsFalse) condNode() {}
func (*Compare) condNode() {}

// --- Statements ---

// Set assigns literal text: set "Name=Value"
type Set struct {
	Name  string
	Value string
}

// SetArith evaluates an integer expression: set /a "Name=Expr"
type SetArith struct {
	Name string
	Expr string
}

// SetPrompt reads a line from the console: set /p Name=Prompt
type SetPrompt struct {
	Name   string
	Prompt string
}

// Echo writes Text followed by a newline. Empty text prints an empty line.
type Echo struct {
	Text string
}

// Raw is passed through verbatim.
type Raw struct {
	Text string
}

// Call invokes a subroutine label: call :Label Args...
type Call struct {
	Label string
	Args  []string
}

// Guard runs a single statement when Cond holds, on one line.
type Guard struct {
	Cond Cond
	Stmt Stmt
}

// IfBlock is a parenthesized conditional. When Else is non-nil it is
// emitted as `ELSE IF ElseCond ( ... )`, or a plain ELSE when ElseCond is
// nil.
type IfBlock struct {
	Cond     Cond
	Then     []Stmt
	ElseCond Cond
	Else     []Stmt
}

// ForLoop is a counted loop: FOR /L %%Var IN (Start,Step,End) DO ( Body ).
// End is inclusive.
type ForLoop struct {
	Var   string
	Start string
	Step  string
	End   string
	Body  []Stmt
}

// Label marks a jump target: :Name
type Label struct {
	Name string
}

// Goto jumps to a label: goto :Label
type Goto struct {
	Label string
}

func (*Set) stmtNode()       {}
func (*SetArith) stmtNode()  {}
func (*SetPrompt) stmtNode() {}
func (*Echo) stmtNode()      {}
func (*Raw) stmtNode()       {}
func (*Call) stmtNode()      {}
func (*Guard) stmtNode()     {}
func (*IfBlock) stmtNode()   {}
func (*ForLoop) stmtNode()   {}
func (*Label) stmtNode()     {}
func (*Goto) stmtNode()      {}

// Lowered is the result of lowering one expression: Prefix must run, in
// order, before Value is referenced.
type Lowered struct {
	Value  string
	Prefix []Stmt
}

package ir

// Mode selects how a stored variable is referenced.
type Mode int

const (
	// Delayed references (!x!) are expanded each time a line executes.
	Delayed Mode = iota
	// Immediate references (%x%) are expanded when a line or block is parsed.
	Immediate
)

func (m Mode) String() string {
	if m == Immediate {
		return "immediate"
	}
	return "delayed"
}

// Context is the lowering state visible at one point of the tree. It is a
// value: With returns a modified copy and never touches the receiver, so
// sibling subtrees cannot observe each other's changes.
type Context struct {
	loopVars  map[string]bool
	mode      Mode
	loopLabel string
}

// ContextOption overrides one field of a derived Context.
type ContextOption func(*Context)

// NewContext returns the top-level context: no loop variables, Delayed
// mode, no enclosing loop.
func NewContext() Context {
	return Context{mode: Delayed}
}

// With returns a copy of c with opts applied.
func (c Context) With(opts ...ContextOption) Context {
	derived := c
	for _, opt := range opts {
		opt(&derived)
	}
	return derived
}

// WithLoopVar adds name to the loop variables. The set is copied.
func WithLoopVar(name string) ContextOption {
	return func(c *Context) {
		vars := make(map[string]bool, len(c.loopVars)+1)
		for v := range c.loopVars {
			vars[v] = true
		}
		vars[name] = true
		c.loopVars = vars
	}
}

// WithMode sets the expansion mode.
func WithMode(m Mode) ContextOption {
	return func(c *Context) { c.mode = m }
}

// WithLoopLabel sets the innermost enclosing loop label.
func WithLoopLabel(label string) ContextOption {
	return func(c *Context) { c.loopLabel = label }
}

// IsLoopVar reports whether name is bound by an enclosing counted loop.
func (c Context) IsLoopVar(name string) bool {
	return c.loopVars[name]
}

// Mode returns the active expansion mode.
func (c Context) Mode() Mode {
	return c.mode
}

// LoopLabel returns the innermost loop label, or "" outside any loop.
func (c Context) LoopLabel() string {
	return c.loopLabel
}

// Ref renders a reference to the variable name under this context.
func (c Context) Ref(name string) string {
	switch {
	case c.IsLoopVar(name):
		return "%%" + name
	case c.mode == Immediate:
		return "%" + name + "%"
	default:
		return "!" + name + "!"
	}
}

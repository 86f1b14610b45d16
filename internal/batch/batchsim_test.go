package batch

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// simulator executes the subset of cmd.exe batch that Generate emits, so
// tests can assert on what a script prints rather than on its text. It
// models the two expansion phases: %name% when a top-level line or block
// is read, !name! when each command runs.
type simulator struct {
	vars   map[string]string
	input  []string
	random int
	calls  []string
	out    strings.Builder
	steps  int
}

const simMaxSteps = 100000

type simKind int

const (
	simCmd simKind = iota
	simIf
	simFor
	simLabel
)

type simNode struct {
	kind    simKind
	text    string // command, IF condition, FOR range "a,b,c" or label name
	forVar  string
	then    []*simNode
	els     []*simNode
	hasElse bool
}

func newSimulator(input ...string) *simulator {
	return &simulator{vars: make(map[string]string), input: input, random: 16384}
}

// runScript parses and executes script, returning everything echoed.
func (s *simulator) runScript(script string) (string, error) {
	lines := strings.Split(strings.ReplaceAll(script, "\r\n", "\n"), "\n")
	top, next, err := parseSimBlock(lines, 0, true)
	if err != nil {
		return "", err
	}
	if next != len(lines) {
		return "", fmt.Errorf("unexpected ')' at line %d", next+1)
	}

	labels := make(map[string]int)
	for i, n := range top {
		if n.kind == simLabel {
			labels[strings.ToLower(n.text)] = i
		}
	}

	pc := 0
	for pc < len(top) {
		node := mapSimText(top[pc], s.expandPercent)
		jump, err := s.exec(node)
		if err != nil {
			return s.out.String(), err
		}
		if jump != "" {
			target, ok := labels[strings.ToLower(jump)]
			if !ok {
				return s.out.String(), fmt.Errorf("goto: label %q not found at top level", jump)
			}
			pc = target
			continue
		}
		pc++
	}
	return s.out.String(), nil
}

// parseSimBlock reads nodes until a line starting with ')' (or EOF at top
// level) and returns the index of that closing line.
func parseSimBlock(lines []string, i int, top bool) ([]*simNode, int, error) {
	var nodes []*simNode
	for i < len(lines) {
		// trailing spaces are significant to set /p, so only the indent goes
		line := strings.TrimRight(strings.TrimLeft(lines[i], " \t"), "\r")
		upper := strings.ToUpper(line)
		switch {
		case strings.TrimSpace(line) == "":
			i++
		case strings.HasPrefix(line, ")"):
			return nodes, i, nil
		case strings.HasPrefix(line, ":"):
			nodes = append(nodes, &simNode{kind: simLabel, text: strings.TrimSpace(line[1:])})
			i++
		case strings.HasPrefix(upper, "IF ") && strings.HasSuffix(line, " ("):
			node, next, err := parseSimIf(lines, i+1, line[3:len(line)-2])
			if err != nil {
				return nil, 0, err
			}
			nodes = append(nodes, node)
			i = next
		case strings.HasPrefix(upper, "FOR /L "):
			node, next, err := parseSimFor(lines, i)
			if err != nil {
				return nil, 0, err
			}
			nodes = append(nodes, node)
			i = next
		default:
			nodes = append(nodes, &simNode{kind: simCmd, text: line})
			i++
		}
	}
	if !top {
		return nil, 0, fmt.Errorf("unterminated block")
	}
	return nodes, i, nil
}

// parseSimIf parses the body of `IF cond (` starting at line i and
// consumes its closing line, including any ELSE branches.
func parseSimIf(lines []string, i int, cond string) (*simNode, int, error) {
	node := &simNode{kind: simIf, text: cond}
	then, end, err := parseSimBlock(lines, i, false)
	if err != nil {
		return nil, 0, err
	}
	node.then = then

	closer := strings.TrimSpace(lines[end])
	upper := strings.ToUpper(closer)
	switch {
	case closer == ")":
		return node, end + 1, nil
	case strings.HasPrefix(upper, ") ELSE IF ") && strings.HasSuffix(closer, " ("):
		nested, next, err := parseSimIf(lines, end+1, closer[len(") ELSE IF "):len(closer)-2])
		if err != nil {
			return nil, 0, err
		}
		node.hasElse = true
		node.els = []*simNode{nested}
		return node, next, nil
	case upper == ") ELSE (":
		els, elseEnd, err := parseSimBlock(lines, end+1, false)
		if err != nil {
			return nil, 0, err
		}
		if strings.TrimSpace(lines[elseEnd]) != ")" {
			return nil, 0, fmt.Errorf("line %d: expected ')'", elseEnd+1)
		}
		node.hasElse = true
		node.els = els
		return node, elseEnd + 1, nil
	default:
		return nil, 0, fmt.Errorf("line %d: unexpected block closer %q", end+1, closer)
	}
}

func parseSimFor(lines []string, i int) (*simNode, int, error) {
	line := strings.TrimSpace(lines[i])
	// FOR /L %%i IN (a,b,c) DO (
	fields := strings.Fields(line)
	if len(fields) < 6 || !strings.HasPrefix(fields[2], "%%") || !strings.HasSuffix(line, " DO (") {
		return nil, 0, fmt.Errorf("line %d: malformed FOR /L: %q", i+1, line)
	}
	open := strings.Index(line, " IN (")
	closeIdx := strings.LastIndex(line, ") DO (")
	if open < 0 || closeIdx < open {
		return nil, 0, fmt.Errorf("line %d: malformed FOR /L range: %q", i+1, line)
	}
	node := &simNode{
		kind:   simFor,
		forVar: strings.TrimPrefix(fields[2], "%%"),
		text:   line[open+len(" IN (") : closeIdx],
	}
	body, end, err := parseSimBlock(lines, i+1, false)
	if err != nil {
		return nil, 0, err
	}
	if strings.TrimSpace(lines[end]) != ")" {
		return nil, 0, fmt.Errorf("line %d: expected ')' after FOR body", end+1)
	}
	node.then = body
	return node, end + 1, nil
}

// mapSimText returns a deep copy of n with f applied to every text field.
func mapSimText(n *simNode, f func(string) string) *simNode {
	c := *n
	c.text = f(n.text)
	c.then = mapSimList(n.then, f)
	c.els = mapSimList(n.els, f)
	return &c
}

func mapSimList(nodes []*simNode, f func(string) string) []*simNode {
	if nodes == nil {
		return nil
	}
	out := make([]*simNode, len(nodes))
	for i, n := range nodes {
		out[i] = mapSimText(n, f)
	}
	return out
}

// expandPercent performs read-time expansion: %% becomes %, %name% becomes
// the variable's value (empty when unset).
func (s *simulator) expandPercent(text string) string {
	var sb strings.Builder
	for i := 0; i < len(text); i++ {
		if text[i] != '%' {
			sb.WriteByte(text[i])
			continue
		}
		if i+1 < len(text) && text[i+1] == '%' {
			sb.WriteByte('%')
			i++
			continue
		}
		end := strings.IndexByte(text[i+1:], '%')
		if end < 0 {
			continue
		}
		sb.WriteString(s.vars[strings.ToLower(text[i+1:i+1+end])])
		i += end + 1
	}
	return sb.String()
}

// expandDelayed performs run-time expansion of !name!.
func (s *simulator) expandDelayed(text string) string {
	var sb strings.Builder
	for i := 0; i < len(text); i++ {
		if text[i] != '!' {
			sb.WriteByte(text[i])
			continue
		}
		end := strings.IndexByte(text[i+1:], '!')
		if end < 0 {
			continue
		}
		name := strings.ToLower(text[i+1 : i+1+end])
		if name == "random" {
			sb.WriteString(strconv.Itoa(s.random))
		} else {
			sb.WriteString(s.vars[name])
		}
		i += end + 1
	}
	return sb.String()
}

func (s *simulator) exec(n *simNode) (string, error) {
	s.steps++
	if s.steps > simMaxSteps {
		return "", fmt.Errorf("step limit exceeded")
	}
	switch n.kind {
	case simLabel:
		return "", nil
	case simCmd:
		return s.run(s.expandDelayed(n.text))
	case simIf:
		ok, rest, err := evalSimCond(s.expandDelayed(n.text))
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(rest) != "" {
			return "", fmt.Errorf("trailing text after IF condition: %q", rest)
		}
		if ok {
			return s.execList(n.then)
		}
		if n.hasElse {
			return s.execList(n.els)
		}
		return "", nil
	case simFor:
		parts := strings.Split(s.expandDelayed(n.text), ",")
		if len(parts) != 3 {
			return "", fmt.Errorf("FOR /L needs start,step,end: %q", n.text)
		}
		var bounds [3]int
		for i, p := range parts {
			v, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				return "", fmt.Errorf("FOR /L bound %q: %w", p, err)
			}
			bounds[i] = v
		}
		start, step, end := bounds[0], bounds[1], bounds[2]
		for v := start; (step > 0 && v <= end) || (step < 0 && v >= end); v += step {
			value := strconv.Itoa(v)
			body := mapSimList(n.then, func(t string) string {
				return strings.ReplaceAll(t, "%"+n.forVar, value)
			})
			if jump, err := s.execList(body); err != nil || jump != "" {
				return jump, err
			}
			if step == 0 {
				break
			}
		}
		return "", nil
	}
	return "", fmt.Errorf("unknown node kind %d", n.kind)
}

func (s *simulator) execList(nodes []*simNode) (string, error) {
	for _, n := range nodes {
		jump, err := s.exec(n)
		if err != nil || jump != "" {
			return jump, err
		}
	}
	return "", nil
}

// run executes one fully expanded command line.
func (s *simulator) run(line string) (string, error) {
	line = strings.TrimLeft(line, " ")
	lower := strings.ToLower(strings.TrimSpace(line))

	switch {
	case lower == "" || lower == "@echo off" || strings.HasPrefix(lower, "setlocal") || strings.HasPrefix(lower, "rem"):
		return "", nil
	case lower == "echo.":
		s.out.WriteString("\n")
	case strings.HasPrefix(lower, "echo("):
		s.out.WriteString(line[len("echo("):] + "\n")
	case lower == "echo off" || lower == "echo on":
		return "", nil
	case strings.HasPrefix(lower, "echo "):
		s.out.WriteString(line[len("echo "):] + "\n")
	case strings.HasPrefix(lower, "goto :"):
		return line[len("goto :"):], nil
	case strings.HasPrefix(lower, "call :"):
		s.calls = append(s.calls, line[len("call :"):])
	case strings.HasPrefix(lower, "set /a "):
		name, expr, ok := splitAssign(unquote(line[len("set /a "):]))
		if !ok {
			return "", fmt.Errorf("malformed set /a: %q", line)
		}
		v, err := s.arith(expr)
		if err != nil {
			return "", fmt.Errorf("set /a %q: %w", expr, err)
		}
		s.vars[strings.ToLower(name)] = strconv.Itoa(v)
	case strings.HasPrefix(lower, "set /p "):
		name, prompt, ok := splitAssign(line[len("set /p "):])
		if !ok {
			return "", fmt.Errorf("malformed set /p: %q", line)
		}
		s.out.WriteString(prompt)
		value := ""
		if len(s.input) > 0 {
			value, s.input = s.input[0], s.input[1:]
		}
		s.vars[strings.ToLower(name)] = value
	case strings.HasPrefix(lower, "set "):
		name, value, ok := splitAssign(unquote(line[len("set "):]))
		if !ok {
			return "", fmt.Errorf("malformed set: %q", line)
		}
		s.vars[strings.ToLower(name)] = value
	case strings.HasPrefix(lower, "if "):
		ok, rest, err := evalSimCond(line[len("if "):])
		if err != nil {
			return "", err
		}
		if ok {
			return s.run(rest)
		}
	default:
		return "", fmt.Errorf("unsupported command %q", line)
	}
	return "", nil
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

func splitAssign(s string) (string, string, bool) {
	idx := strings.IndexByte(s, '=')
	if idx <= 0 {
		return "", "", false
	}
	return s[:idx], s[idx+1:], true
}

// evalSimCond evaluates `[NOT] operand op operand` and returns the text
// that follows the condition.
func evalSimCond(text string) (bool, string, error) {
	text = strings.TrimLeft(text, " ")
	negate := false
	if strings.HasPrefix(strings.ToUpper(text), "NOT ") {
		negate = true
		text = strings.TrimLeft(text[4:], " ")
	}

	left, text, err := readSimOperand(text)
	if err != nil {
		return false, "", err
	}

	var op string
	text = strings.TrimLeft(text, " ")
	if strings.HasPrefix(text, "==") {
		op = "=="
		text = text[2:]
	} else {
		fields := strings.SplitN(text, " ", 2)
		if len(fields) != 2 {
			return false, "", fmt.Errorf("missing comparison operator in %q", text)
		}
		op = strings.ToUpper(fields[0])
		text = strings.TrimLeft(fields[1], " ")
	}

	right, rest, err := readSimOperand(text)
	if err != nil {
		return false, "", err
	}

	var result bool
	if op == "==" {
		result = left == right
	} else {
		l, lerr := strconv.Atoi(left)
		r, rerr := strconv.Atoi(right)
		numeric := lerr == nil && rerr == nil
		cmp := strings.Compare(left, right)
		if numeric {
			cmp = 0
			if l < r {
				cmp = -1
			} else if l > r {
				cmp = 1
			}
		}
		switch op {
		case "EQU":
			result = cmp == 0
		case "NEQ":
			result = cmp != 0
		case "LSS":
			result = cmp < 0
		case "LEQ":
			result = cmp <= 0
		case "GTR":
			result = cmp > 0
		case "GEQ":
			result = cmp >= 0
		default:
			return false, "", fmt.Errorf("unknown comparison %q", op)
		}
	}
	if negate {
		result = !result
	}
	return result, rest, nil
}

// readSimOperand reads a quoted or space-delimited operand. Quotes are
// kept out of the returned value; comparisons between two quoted values
// behave the same either way.
func readSimOperand(text string) (string, string, error) {
	if strings.HasPrefix(text, `"`) {
		end := strings.IndexByte(text[1:], '"')
		if end < 0 {
			return "", "", fmt.Errorf("unterminated quote in %q", text)
		}
		return text[1 : 1+end], text[end+2:], nil
	}
	end := strings.IndexAny(text, " =")
	if end < 0 {
		return text, "", nil
	}
	return text[:end], text[end:], nil
}

// arith evaluates a set /a expression with 32-bit integer semantics.
func (s *simulator) arith(expr string) (int, error) {
	p := &arithParser{src: expr, vars: s.vars}
	v, err := p.expr()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return 0, fmt.Errorf("unexpected %q", p.src[p.pos:])
	}
	return int(int32(v)), nil
}

type arithParser struct {
	src  string
	pos  int
	vars map[string]string
}

func (p *arithParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *arithParser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *arithParser) expr() (int, error) {
	left, err := p.term()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '+':
			p.pos++
			right, err := p.term()
			if err != nil {
				return 0, err
			}
			left += right
		case '-':
			p.pos++
			right, err := p.term()
			if err != nil {
				return 0, err
			}
			left -= right
		default:
			return left, nil
		}
	}
}

func (p *arithParser) term() (int, error) {
	left, err := p.unary()
	if err != nil {
		return 0, err
	}
	for {
		op := p.peek()
		if op != '*' && op != '/' && op != '%' {
			return left, nil
		}
		p.pos++
		right, err := p.unary()
		if err != nil {
			return 0, err
		}
		switch op {
		case '*':
			left *= right
		case '/', '%':
			if right == 0 {
				return 0, fmt.Errorf("divide by zero")
			}
			if op == '/' {
				left /= right
			} else {
				left %= right
			}
		}
	}
}

func (p *arithParser) unary() (int, error) {
	switch p.peek() {
	case '-':
		p.pos++
		v, err := p.unary()
		return -v, err
	case '+':
		p.pos++
		return p.unary()
	case '(':
		p.pos++
		v, err := p.expr()
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, fmt.Errorf("missing ')'")
		}
		p.pos++
		return v, nil
	}

	start := p.pos
	for p.pos < len(p.src) && (unicode.IsLetter(rune(p.src[p.pos])) || unicode.IsDigit(rune(p.src[p.pos])) || p.src[p.pos] == '_') {
		p.pos++
	}
	tok := p.src[start:p.pos]
	if tok == "" {
		return 0, fmt.Errorf("expected operand at %q", p.src[start:])
	}
	if v, err := strconv.Atoi(tok); err == nil {
		return v, nil
	}
	// set /a reads bare names as variables; unset or non-numeric is 0
	v, _ := strconv.Atoi(p.vars[strings.ToLower(tok)])
	return v, nil
}

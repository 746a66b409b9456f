package expr

import (
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/tabula-cli/internal/table"
)

const (
	maxSourceLen = 4096
	maxDepth     = 64
)

// Program is a compiled expression bound to a fixed set of column names.
// It is immutable and safe for concurrent evaluation.
type Program struct {
	src  string
	root node
	refs []string
}

// Compile parses src and resolves every identifier against columns.
// Identifiers that are not column names, keywords or whitelisted functions
// are rejected here, before any row is touched.
func Compile(src string, columns []string) (*Program, error) {
	if strings.TrimSpace(src) == "" {
		return nil, &Error{Expr: src, Pos: -1, Reason: "empty expression"}
	}
	if len(src) > maxSourceLen {
		return nil, &Error{Expr: src[:64] + "...", Pos: -1, Reason: "expression too long"}
	}
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(columns))
	for _, c := range columns {
		known[c] = true
	}
	ps := &parser{src: src, toks: toks, columns: known, refs: map[string]bool{}}
	prog := &Program{src: src}
	root, err := ps.parseExpr()
	if err != nil {
		return nil, err
	}
	if t := ps.peek(); t.kind != tokEOF {
		return nil, ps.errAt(t, "unexpected "+describe(t))
	}
	prog.root = root
	for r := range ps.refs {
		prog.refs = append(prog.refs, r)
	}
	sort.Strings(prog.refs)
	return prog, nil
}

// MustCompile is like Compile but panics on error. Intended for tests.
func MustCompile(src string, columns []string) *Program {
	p, err := Compile(src, columns)
	if err != nil {
		panic(err)
	}
	return p
}

// Source returns the expression text.
func (p *Program) Source() string { return p.src }

// Columns returns the column names the expression reads, sorted.
func (p *Program) Columns() []string { return append([]string(nil), p.refs...) }

// Eval evaluates the expression against a single row.
func (p *Program) Eval(row table.Row) (table.Value, error) {
	return p.root.eval(p, row)
}

// Match evaluates the expression as a predicate.
func (p *Program) Match(row table.Row) (bool, error) {
	v, err := p.Eval(row)
	if err != nil {
		return false, err
	}
	return Truthy(v), nil
}

func (p *Program) errorf(pos int, reason string) error {
	return &Error{Expr: p.src, Pos: pos, Reason: reason}
}

type parser struct {
	src     string
	toks    []token
	i       int
	depth   int
	columns map[string]bool
	refs    map[string]bool
}

func (ps *parser) peek() token { return ps.toks[ps.i] }

func (ps *parser) next() token {
	t := ps.toks[ps.i]
	if t.kind != tokEOF {
		ps.i++
	}
	return t
}

func (ps *parser) errAt(t token, reason string) error {
	return &Error{Expr: ps.src, Pos: t.pos, Reason: reason}
}

func (ps *parser) isOp(ops ...string) (token, bool) {
	t := ps.peek()
	if t.kind != tokOp && t.kind != tokIdent {
		return t, false
	}
	for _, o := range ops {
		if t.text == o {
			return t, true
		}
	}
	return t, false
}

func (ps *parser) enter() error {
	ps.depth++
	if ps.depth > maxDepth {
		return ps.errAt(ps.peek(), "expression nested too deeply")
	}
	return nil
}

func (ps *parser) leave() { ps.depth-- }

func (ps *parser) parseExpr() (node, error) {
	if err := ps.enter(); err != nil {
		return nil, err
	}
	defer ps.leave()
	return ps.parseOr()
}

func (ps *parser) parseOr() (node, error) {
	l, err := ps.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := ps.isOp("||", "or"); !ok {
			return l, nil
		}
		ps.next()
		r, err := ps.parseAnd()
		if err != nil {
			return nil, err
		}
		l = logical{op: "or", l: l, r: r}
	}
}

func (ps *parser) parseAnd() (node, error) {
	l, err := ps.parseNot()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := ps.isOp("&&", "and"); !ok {
			return l, nil
		}
		ps.next()
		r, err := ps.parseNot()
		if err != nil {
			return nil, err
		}
		l = logical{op: "and", l: l, r: r}
	}
}

func (ps *parser) parseNot() (node, error) {
	if t, ok := ps.isOp("!", "not"); ok {
		ps.next()
		if err := ps.enter(); err != nil {
			return nil, err
		}
		defer ps.leave()
		x, err := ps.parseNot()
		if err != nil {
			return nil, err
		}
		return unary{op: "!", pos: t.pos, x: x}, nil
	}
	return ps.parseCmp()
}

func (ps *parser) parseCmp() (node, error) {
	l, err := ps.parseAdd()
	if err != nil {
		return nil, err
	}
	t, ok := ps.isOp("==", "===", "!=", "!==", "<", "<=", ">", ">=")
	if !ok {
		return l, nil
	}
	ps.next()
	r, err := ps.parseAdd()
	if err != nil {
		return nil, err
	}
	op := t.text
	switch op {
	case "===":
		op = "=="
	case "!==":
		op = "!="
	}
	return binary{op: op, pos: t.pos, l: l, r: r}, nil
}

func (ps *parser) parseAdd() (node, error) {
	l, err := ps.parseMul()
	if err != nil {
		return nil, err
	}
	for {
		t, ok := ps.isOp("+", "-")
		if !ok {
			return l, nil
		}
		ps.next()
		r, err := ps.parseMul()
		if err != nil {
			return nil, err
		}
		l = binary{op: t.text, pos: t.pos, l: l, r: r}
	}
}

func (ps *parser) parseMul() (node, error) {
	l, err := ps.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t, ok := ps.isOp("*", "/", "%")
		if !ok {
			return l, nil
		}
		ps.next()
		r, err := ps.parseUnary()
		if err != nil {
			return nil, err
		}
		l = binary{op: t.text, pos: t.pos, l: l, r: r}
	}
}

func (ps *parser) parseUnary() (node, error) {
	if t, ok := ps.isOp("-", "+"); ok {
		ps.next()
		if err := ps.enter(); err != nil {
			return nil, err
		}
		defer ps.leave()
		x, err := ps.parseUnary()
		if err != nil {
			return nil, err
		}
		if t.text == "+" {
			return x, nil
		}
		return unary{op: "-", pos: t.pos, x: x}, nil
	}
	return ps.parsePow()
}

func (ps *parser) parsePow() (node, error) {
	base, err := ps.parsePrimary()
	if err != nil {
		return nil, err
	}
	t, ok := ps.isOp("**")
	if !ok {
		return base, nil
	}
	ps.next()
	// right associative: 2 ** 3 ** 2 == 2 ** 9
	exp, err := ps.parseUnary()
	if err != nil {
		return nil, err
	}
	return binary{op: "**", pos: t.pos, l: base, r: exp}, nil
}

func (ps *parser) parsePrimary() (node, error) {
	t := ps.next()
	switch t.kind {
	case tokNumber:
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, ps.errAt(t, "invalid number "+t.text)
		}
		return literal{v: table.Number(f)}, nil
	case tokString:
		return literal{v: table.Text(t.text)}, nil
	case tokLParen:
		x, err := ps.parseExpr()
		if err != nil {
			return nil, err
		}
		if c := ps.next(); c.kind != tokRParen {
			return nil, ps.errAt(c, "expected ) but found "+describe(c))
		}
		return x, nil
	case tokIdent:
		return ps.parseIdent(t)
	case tokEOF:
		return nil, ps.errAt(t, "unexpected end of expression")
	}
	return nil, ps.errAt(t, "unexpected "+describe(t))
}

func (ps *parser) parseIdent(t token) (node, error) {
	switch t.text {
	case "true":
		return literal{v: boolValue(true)}, nil
	case "false":
		return literal{v: boolValue(false)}, nil
	case "null", "undefined":
		return literal{v: table.Absent()}, nil
	}
	if nt := ps.peek(); nt.kind == tokLParen {
		return ps.parseCall(t)
	}
	if ps.columns[t.text] {
		ps.refs[t.text] = true
		return colRef{name: t.text}, nil
	}
	if t.text == "row" || t.text == "col" {
		return ps.parseRowAccess(t)
	}
	return nil, ps.errAt(t, "undefined identifier "+strconv.Quote(t.text))
}

// parseRowAccess handles row["name"], row.name and the col alias.
func (ps *parser) parseRowAccess(t token) (node, error) {
	var name string
	var at token
	switch nt := ps.next(); nt.kind {
	case tokLBracket:
		at = ps.next()
		if at.kind != tokString {
			return nil, ps.errAt(at, "expected quoted column name after "+t.text+"[")
		}
		if c := ps.next(); c.kind != tokRBracket {
			return nil, ps.errAt(c, "expected ] but found "+describe(c))
		}
		name = at.text
	case tokDot:
		at = ps.next()
		if at.kind != tokIdent {
			return nil, ps.errAt(at, "expected column name after "+t.text+".")
		}
		name = at.text
	default:
		return nil, ps.errAt(nt, "expected [ or . after "+t.text)
	}
	if !ps.columns[name] {
		return nil, ps.errAt(at, "undefined column "+strconv.Quote(name))
	}
	ps.refs[name] = true
	return colRef{name: name}, nil
}

func (ps *parser) parseCall(t token) (node, error) {
	fn, ok := builtins[strings.ToLower(t.text)]
	if !ok {
		return nil, ps.errAt(t, "unknown function "+strconv.Quote(t.text))
	}
	ps.next() // (
	var args []node
	if c := ps.peek(); c.kind == tokRParen {
		ps.next()
	} else {
		for {
			a, err := ps.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			c := ps.next()
			if c.kind == tokRParen {
				break
			}
			if c.kind != tokComma {
				return nil, ps.errAt(c, "expected , or ) in call to "+fn.name)
			}
		}
	}
	if len(args) < fn.minArgs || (fn.maxArgs >= 0 && len(args) > fn.maxArgs) {
		return nil, ps.errAt(t, fn.name+"() called with "+strconv.Itoa(len(args))+" arguments")
	}
	return call{fn: fn, pos: t.pos, args: args}, nil
}

func describe(t token) string {
	switch t.kind {
	case tokEOF:
		return "end of expression"
	case tokString:
		return "string " + strconv.Quote(t.text)
	default:
		return strconv.Quote(t.text)
	}
}

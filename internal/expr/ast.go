package expr

import (
	"math"
	"strings"

	"github.com/KaramelBytes/tabula-cli/internal/table"
)

// node is an evaluable piece of a parsed expression. Nodes only see the
// row they are evaluated against; there is no other environment.
type node interface {
	eval(p *Program, row table.Row) (table.Value, error)
}

type literal struct{ v table.Value }

func (n literal) eval(*Program, table.Row) (table.Value, error) { return n.v, nil }

type colRef struct{ name string }

func (n colRef) eval(_ *Program, row table.Row) (table.Value, error) { return row[n.name], nil }

type unary struct {
	op  string
	pos int
	x   node
}

func (n unary) eval(p *Program, row table.Row) (table.Value, error) {
	v, err := n.x.eval(p, row)
	if err != nil {
		return table.Value{}, err
	}
	switch n.op {
	case "!", "not":
		return boolValue(!Truthy(v)), nil
	default: // "-"
		switch {
		case v.IsAbsent():
			return v, nil
		case v.IsNumber():
			return table.Number(-v.Raw()), nil
		}
		return table.Value{}, p.errorf(n.pos, "cannot negate text")
	}
}

type logical struct {
	op   string
	l, r node
}

func (n logical) eval(p *Program, row table.Row) (table.Value, error) {
	l, err := n.l.eval(p, row)
	if err != nil {
		return table.Value{}, err
	}
	lt := Truthy(l)
	if n.op == "and" && !lt {
		return boolValue(false), nil
	}
	if n.op == "or" && lt {
		return boolValue(true), nil
	}
	r, err := n.r.eval(p, row)
	if err != nil {
		return table.Value{}, err
	}
	return boolValue(Truthy(r)), nil
}

type binary struct {
	op   string
	pos  int
	l, r node
}

func (n binary) eval(p *Program, row table.Row) (table.Value, error) {
	l, err := n.l.eval(p, row)
	if err != nil {
		return table.Value{}, err
	}
	r, err := n.r.eval(p, row)
	if err != nil {
		return table.Value{}, err
	}
	switch n.op {
	case "==":
		return boolValue(l.Equal(r)), nil
	case "!=":
		return boolValue(!l.Equal(r)), nil
	case "<", "<=", ">", ">=":
		return boolValue(ordered(n.op, l, r)), nil
	case "+":
		if l.IsText() || r.IsText() {
			return table.Text(l.Key() + r.Key()), nil
		}
	}
	if l.IsText() || r.IsText() {
		return table.Value{}, p.errorf(n.pos, "operator "+n.op+" requires numbers, got text")
	}
	if l.IsAbsent() || r.IsAbsent() {
		return table.Absent(), nil
	}
	a, b := l.Raw(), r.Raw()
	switch n.op {
	case "+":
		return table.Number(a + b), nil
	case "-":
		return table.Number(a - b), nil
	case "*":
		return table.Number(a * b), nil
	case "/":
		return table.Number(a / b), nil
	case "%":
		return table.Number(math.Mod(a, b)), nil
	case "**":
		return table.Number(math.Pow(a, b)), nil
	}
	return table.Value{}, p.errorf(n.pos, "unknown operator "+n.op)
}

// ordered compares two cells of the same variant. Mixed variants and
// absent cells never satisfy an ordering.
func ordered(op string, l, r table.Value) bool {
	var c int
	switch {
	case l.IsNumber() && r.IsNumber():
		a, b := l.Raw(), r.Raw()
		if math.IsNaN(a) || math.IsNaN(b) {
			return false
		}
		switch {
		case a < b:
			c = -1
		case a > b:
			c = 1
		}
	case l.IsText() && r.IsText():
		c = strings.Compare(l.TextRaw(), r.TextRaw())
	default:
		return false
	}
	switch op {
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	case ">":
		return c > 0
	default:
		return c >= 0
	}
}

type call struct {
	fn   *function
	pos  int
	args []node
}

func (n call) eval(p *Program, row table.Row) (table.Value, error) {
	if n.fn.lazy != nil {
		return n.fn.lazy(p, row, n.args)
	}
	vals := make([]table.Value, len(n.args))
	for i, a := range n.args {
		v, err := a.eval(p, row)
		if err != nil {
			return table.Value{}, err
		}
		vals[i] = v
	}
	v, err := n.fn.apply(vals)
	if err != nil {
		return table.Value{}, p.errorf(n.pos, err.Error())
	}
	return v, nil
}

// Truthy reports whether a value counts as true: non-zero numbers and
// non-empty text. Absent and NaN are false.
func Truthy(v table.Value) bool {
	switch {
	case v.IsNumber():
		f := v.Raw()
		return f != 0 && !math.IsNaN(f)
	case v.IsText():
		return true
	default:
		return false
	}
}

func boolValue(b bool) table.Value {
	if b {
		return table.Number(1)
	}
	return table.Number(0)
}

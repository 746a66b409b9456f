package expr

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/KaramelBytes/tabula-cli/internal/table"
)

// function is a whitelisted, side-effect free builtin. minArgs/maxArgs
// are checked at compile time; maxArgs < 0 means variadic.
type function struct {
	name    string
	minArgs int
	maxArgs int
	apply   func(args []table.Value) (table.Value, error)
	lazy    func(p *Program, row table.Row, args []node) (table.Value, error)
}

var builtins map[string]*function

func init() {
	builtins = map[string]*function{
		"abs":   numeric1("abs", math.Abs),
		"sqrt":  numeric1("sqrt", math.Sqrt),
		"floor": numeric1("floor", math.Floor),
		"ceil":  numeric1("ceil", math.Ceil),
		"log":   numeric1("log", math.Log),
		"exp":   numeric1("exp", math.Exp),
		"round": {name: "round", minArgs: 1, maxArgs: 2, apply: roundFn},
		"pow":   {name: "pow", minArgs: 2, maxArgs: 2, apply: powFn},
		"min":   {name: "min", minArgs: 1, maxArgs: -1, apply: extremum(func(a, b float64) bool { return a < b })},
		"max":   {name: "max", minArgs: 1, maxArgs: -1, apply: extremum(func(a, b float64) bool { return a > b })},
		"len":   {name: "len", minArgs: 1, maxArgs: 1, apply: lenFn},
		"upper": text1("upper", strings.ToUpper),
		"lower": text1("lower", strings.ToLower),
		"trim":  text1("trim", strings.TrimSpace),
		"concat": {name: "concat", minArgs: 1, maxArgs: -1, apply: func(args []table.Value) (table.Value, error) {
			var b strings.Builder
			for _, a := range args {
				b.WriteString(a.String())
			}
			return table.Text(b.String()), nil
		}},
		"if":       {name: "if", minArgs: 3, maxArgs: 3, lazy: ifFn},
		"isnull":   {name: "isnull", minArgs: 1, maxArgs: 1, apply: func(args []table.Value) (table.Value, error) { return boolValue(args[0].IsAbsent()), nil }},
		"coalesce": {name: "coalesce", minArgs: 1, maxArgs: -1, apply: coalesceFn},
	}
}

func numeric1(name string, f func(float64) float64) *function {
	return &function{name: name, minArgs: 1, maxArgs: 1, apply: func(args []table.Value) (table.Value, error) {
		v := args[0]
		switch {
		case v.IsAbsent():
			return v, nil
		case v.IsNumber():
			return table.Number(f(v.Raw())), nil
		}
		return table.Value{}, errArg(name, "a number")
	}}
}

func text1(name string, f func(string) string) *function {
	return &function{name: name, minArgs: 1, maxArgs: 1, apply: func(args []table.Value) (table.Value, error) {
		if args[0].IsAbsent() {
			return args[0], nil
		}
		return table.Text(f(args[0].String())), nil
	}}
}

func roundFn(args []table.Value) (table.Value, error) {
	v := args[0]
	if v.IsAbsent() {
		return v, nil
	}
	if !v.IsNumber() {
		return table.Value{}, errArg("round", "a number")
	}
	places := 0.0
	if len(args) == 2 {
		if !args[1].IsNumber() {
			return table.Value{}, errArg("round", "a number of decimal places")
		}
		places = math.Trunc(args[1].Raw())
	}
	scale := math.Pow(10, places)
	return table.Number(math.Round(v.Raw()*scale) / scale), nil
}

func powFn(args []table.Value) (table.Value, error) {
	if args[0].IsAbsent() || args[1].IsAbsent() {
		return table.Absent(), nil
	}
	if !args[0].IsNumber() || !args[1].IsNumber() {
		return table.Value{}, errArg("pow", "numbers")
	}
	return table.Number(math.Pow(args[0].Raw(), args[1].Raw())), nil
}

func extremum(better func(a, b float64) bool) func([]table.Value) (table.Value, error) {
	return func(args []table.Value) (table.Value, error) {
		var best table.Value
		for _, a := range args {
			f, ok := a.Float()
			if !ok {
				continue
			}
			if best.IsAbsent() || better(f, best.Raw()) {
				best = table.Number(f)
			}
		}
		return best, nil
	}
}

func lenFn(args []table.Value) (table.Value, error) {
	if args[0].IsAbsent() {
		return table.Number(0), nil
	}
	return table.Number(float64(utf8.RuneCountInString(args[0].String()))), nil
}

func coalesceFn(args []table.Value) (table.Value, error) {
	for _, a := range args {
		if !a.IsAbsent() {
			return a, nil
		}
	}
	return table.Absent(), nil
}

func ifFn(p *Program, row table.Row, args []node) (table.Value, error) {
	c, err := args[0].eval(p, row)
	if err != nil {
		return table.Value{}, err
	}
	if Truthy(c) {
		return args[1].eval(p, row)
	}
	return args[2].eval(p, row)
}

// argError is wrapped into a positioned *Error by the calling node.
type argError struct{ msg string }

func (e *argError) Error() string { return e.msg }

func errArg(fn, want string) error {
	return &argError{msg: fn + "() expects " + want}
}

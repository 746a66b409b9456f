package transform

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/tabula-cli/internal/expr"
	"github.com/KaramelBytes/tabula-cli/internal/table"
)

// Default names for derived columns when the caller gives none.
const (
	DefaultMergeName   = "MergedColumn"
	DefaultFormulaName = "FormulaColumn"
)

func checkNew(t *table.Table, name string) error {
	if strings.TrimSpace(name) == "" {
		return &table.ColumnError{Name: name, Reason: "empty column name"}
	}
	if t.HasColumn(name) {
		return &table.ColumnError{Name: name, Reason: "column already exists"}
	}
	return nil
}

// Merge appends a text column joining a and b with sep. Absent cells render
// as "null".
func Merge(t *table.Table, a, b, sep, name string) (string, error) {
	if name == "" {
		name = DefaultMergeName
	}
	if err := t.Require(a, b); err != nil {
		return "", err
	}
	if err := checkNew(t, name); err != nil {
		return "", err
	}
	vals := make([]table.Value, t.Len())
	for i, r := range t.Rows() {
		vals[i] = table.Text(r[a].Key() + sep + r[b].Key())
	}
	if err := t.AppendColumn(name, vals); err != nil {
		return "", err
	}
	t.Record("merge", fmt.Sprintf("%s = %s + %q + %s", name, a, sep, b))
	return name, nil
}

// Split breaks the text of col on delim into columns <col>_Part1..N where N
// is the largest part count over all rows. Rows with fewer parts, and rows
// where col is absent, get absent cells.
func Split(t *table.Table, col, delim string) ([]string, error) {
	if err := t.Require(col); err != nil {
		return nil, err
	}
	parts := make([][]string, t.Len())
	maxParts := 0
	for i, r := range t.Rows() {
		if v := r[col]; !v.IsAbsent() {
			parts[i] = strings.Split(v.String(), delim)
		}
		if len(parts[i]) > maxParts {
			maxParts = len(parts[i])
		}
	}
	names := make([]string, maxParts)
	for p := range names {
		names[p] = fmt.Sprintf("%s_Part%d", col, p+1)
		if err := checkNew(t, names[p]); err != nil {
			return nil, err
		}
	}
	for p, name := range names {
		vals := make([]table.Value, t.Len())
		for i := range vals {
			if p < len(parts[i]) {
				vals[i] = table.Text(parts[i][p])
			}
		}
		if err := t.AppendColumn(name, vals); err != nil {
			return nil, err
		}
	}
	t.Record("split", fmt.Sprintf("%s on %q into %d columns", col, delim, maxParts))
	return names, nil
}

// Method selects a Normalize rescaling.
type Method string

const (
	MinMax Method = "minmax"
	ZScore Method = "zscore"
)

// ParseMethod validates a normalization method name.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case MinMax, ZScore:
		return m, nil
	case "standardize", "standard":
		return ZScore, nil
	}
	return "", fmt.Errorf("unknown normalization method %q (want minmax or zscore)", s)
}

// Normalize appends <col>_<method> holding (v-min)/(max-min) or
// (v-mean)/stddev with the population stddev. Cells whose source is not a
// number stay absent; a constant column yields NaN.
func Normalize(t *table.Table, col string, method Method) (string, error) {
	method, err := ParseMethod(string(method))
	if err != nil {
		return "", err
	}
	vals, err := t.Numbers(col)
	if err != nil {
		return "", err
	}
	if len(vals) == 0 {
		return "", table.Insufficient("normalize "+col, 1, 0)
	}
	name := fmt.Sprintf("%s_%s", col, method)
	if err := checkNew(t, name); err != nil {
		return "", err
	}
	var scale func(float64) float64
	switch method {
	case MinMax:
		lo, hi := floats.Min(vals), floats.Max(vals)
		scale = func(v float64) float64 { return (v - lo) / (hi - lo) }
	case ZScore:
		mean, variance := stat.PopMeanVariance(vals, nil)
		sd := math.Sqrt(variance)
		scale = func(v float64) float64 { return (v - mean) / sd }
	}
	out := make([]table.Value, t.Len())
	for i, r := range t.Rows() {
		if v, ok := r[col].Float(); ok {
			out[i] = table.Number(scale(v))
		}
	}
	if err := t.AppendColumn(name, out); err != nil {
		return "", err
	}
	t.Record("normalize", fmt.Sprintf("%s = %s(%s)", name, method, col))
	return name, nil
}

// Formula appends a column computed by evaluating src against every row.
// Nothing is added if compilation or any row's evaluation fails.
func Formula(t *table.Table, name, src string) (string, error) {
	if name == "" {
		name = DefaultFormulaName
	}
	if err := checkNew(t, name); err != nil {
		return "", err
	}
	prog, err := expr.Compile(src, t.ColumnNames())
	if err != nil {
		return "", err
	}
	vals := make([]table.Value, t.Len())
	for i, r := range t.Rows() {
		v, err := prog.Eval(r)
		if err != nil {
			var ee *expr.Error
			if errors.As(err, &ee) {
				return "", fmt.Errorf("row %d: %w", i+1, err)
			}
			return "", err
		}
		vals[i] = v
	}
	if err := t.AppendColumn(name, vals); err != nil {
		return "", err
	}
	t.Record("formula", fmt.Sprintf("%s = %s", name, src))
	return name, nil
}

// Package transform holds the operations that mutate a table in place:
// imputation and derived columns. Every successful call records a journal
// entry on the table.
package transform

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/KaramelBytes/tabula-cli/internal/table"
)

// Strategy selects how Impute treats absent cells.
type Strategy string

const (
	StrategyMean   Strategy = "mean"
	StrategyMedian Strategy = "median"
	StrategyMode   Strategy = "mode"
	StrategyDrop   Strategy = "drop"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(strings.ToLower(strings.TrimSpace(s))); st {
	case StrategyMean, StrategyMedian, StrategyMode, StrategyDrop:
		return st, nil
	}
	return "", fmt.Errorf("unknown imputation strategy %q (want mean, median, mode or drop)", s)
}

// ImputeResult describes what Impute changed.
type ImputeResult struct {
	Column   string      `json:"column" yaml:"column"`
	Strategy Strategy    `json:"strategy" yaml:"strategy"`
	Fill     table.Value `json:"fill" yaml:"fill"`
	Filled   int         `json:"filled" yaml:"filled"`
	Dropped  int         `json:"dropped" yaml:"dropped"`
	Rows     int         `json:"rows" yaml:"rows"`
}

// Impute fills the absent cells of col with a value computed from its
// present cells, or with StrategyDrop removes the rows where col is absent.
// Mean and median use the column's numbers; mode counts every present value
// by its text and keeps the first value seen among equally frequent ones.
func Impute(t *table.Table, col string, strategy Strategy) (*ImputeResult, error) {
	if err := t.Require(col); err != nil {
		return nil, err
	}
	strategy, err := ParseStrategy(string(strategy))
	if err != nil {
		return nil, err
	}
	res := &ImputeResult{Column: col, Strategy: strategy}
	if strategy == StrategyDrop {
		res.Dropped = t.Retain(func(r table.Row) bool { return !r[col].IsAbsent() })
		res.Rows = t.Len()
		t.Record("impute", fmt.Sprintf("drop rows with absent %s (%d dropped)", col, res.Dropped))
		return res, nil
	}

	fill, err := fillValue(t, col, strategy)
	if err != nil {
		return nil, err
	}
	res.Fill = fill
	for i, r := range t.Rows() {
		if r[col].IsAbsent() {
			if err := t.SetValue(i, col, fill); err != nil {
				return nil, err
			}
			res.Filled++
		}
	}
	res.Rows = t.Len()
	t.Record("impute", fmt.Sprintf("%s fill of %s with %s (%d cells)", strategy, col, fill.Key(), res.Filled))
	return res, nil
}

func fillValue(t *table.Table, col string, strategy Strategy) (table.Value, error) {
	switch strategy {
	case StrategyMean, StrategyMedian:
		vals, err := t.Numbers(col)
		if err != nil {
			return table.Value{}, err
		}
		if len(vals) == 0 {
			return table.Value{}, table.Insufficient(fmt.Sprintf("impute %s %s", strategy, col), 1, 0)
		}
		if strategy == StrategyMean {
			return table.Number(floats.Sum(vals) / float64(len(vals))), nil
		}
		sorted := append([]float64(nil), vals...)
		sort.Float64s(sorted)
		return table.Number(sorted[len(sorted)/2]), nil
	default:
		counts := map[string]int{}
		var order []table.Value
		for _, r := range t.Rows() {
			v := r[col]
			if v.IsAbsent() {
				continue
			}
			k := v.Key()
			if counts[k] == 0 {
				order = append(order, v)
			}
			counts[k]++
		}
		if len(order) == 0 {
			return table.Value{}, table.Insufficient("impute mode "+col, 1, 0)
		}
		best := order[0]
		for _, v := range order[1:] {
			if counts[v.Key()] > counts[best.Key()] {
				best = v
			}
		}
		return best, nil
	}
}

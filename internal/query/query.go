// Package query filters, orders and truncates the rows of a table without
// modifying it.
package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/KaramelBytes/tabula-cli/internal/expr"
	"github.com/KaramelBytes/tabula-cli/internal/table"
)

// Spec describes a query. An empty Where matches every row, an empty
// OrderBy keeps row order and a Limit <= 0 returns every match.
type Spec struct {
	Where   string `json:"where,omitempty" yaml:"where,omitempty"`
	OrderBy string `json:"orderBy,omitempty" yaml:"order_by,omitempty"`
	Desc    bool   `json:"desc,omitempty" yaml:"desc,omitempty"`
	Limit   int    `json:"limit,omitempty" yaml:"limit,omitempty"`
}

// Result holds the matching rows in output order alongside their indices
// in the source table.
type Result struct {
	Columns []string    `json:"columns" yaml:"columns"`
	Indices []int       `json:"indices" yaml:"indices"`
	Rows    []table.Row `json:"rows" yaml:"rows"`
	Matched int         `json:"matched" yaml:"matched"`
}

// Run evaluates q against t. The filter is applied first, then the stable
// sort, then the limit.
func Run(t *table.Table, q Spec) (*Result, error) {
	var where *expr.Program
	if s := strings.TrimSpace(q.Where); s != "" {
		p, err := expr.Compile(s, t.ColumnNames())
		if err != nil {
			return nil, fmt.Errorf("where: %w", err)
		}
		where = p
	}
	if q.OrderBy != "" {
		if err := t.Require(q.OrderBy); err != nil {
			return nil, fmt.Errorf("order by: %w", err)
		}
	}

	idx := make([]int, 0, t.Len())
	for i, r := range t.Rows() {
		if where != nil {
			ok, err := where.Match(r)
			if err != nil {
				return nil, fmt.Errorf("where, row %d: %w", i+1, err)
			}
			if !ok {
				continue
			}
		}
		idx = append(idx, i)
	}
	matched := len(idx)

	if q.OrderBy != "" {
		col := q.OrderBy
		sort.SliceStable(idx, func(a, b int) bool {
			c := t.Value(idx[a], col).Compare(t.Value(idx[b], col))
			if q.Desc {
				return c > 0
			}
			return c < 0
		})
	}
	if q.Limit > 0 && len(idx) > q.Limit {
		idx = idx[:q.Limit]
	}

	res := &Result{Columns: t.ColumnNames(), Indices: idx, Rows: make([]table.Row, len(idx)), Matched: matched}
	for i, ri := range idx {
		res.Rows[i] = t.Row(ri).Clone()
	}
	return res, nil
}

// Table materializes the result as a new table with the source's columns.
func (r *Result) Table(name string) (*table.Table, error) {
	return table.New(name, r.Columns, r.Rows)
}

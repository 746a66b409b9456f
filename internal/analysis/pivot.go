package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/tabula-cli/internal/table"
)

// Aggregator reduces the numbers that fall into one pivot cell.
type Aggregator string

const (
	AggSum   Aggregator = "sum"
	AggAvg   Aggregator = "avg"
	AggCount Aggregator = "count"
	AggMin   Aggregator = "min"
	AggMax   Aggregator = "max"
)

// ParseAggregator accepts sum, avg (or mean), count, min and max.
func ParseAggregator(s string) (Aggregator, error) {
	switch a := Aggregator(strings.ToLower(strings.TrimSpace(s))); a {
	case AggSum, AggAvg, AggCount, AggMin, AggMax:
		return a, nil
	case "mean", "average":
		return AggAvg, nil
	}
	return "", fmt.Errorf("unknown aggregator %q (want sum, avg, count, min or max)", s)
}

func (a Aggregator) apply(vals []float64) float64 {
	switch a {
	case AggCount:
		return float64(len(vals))
	case AggSum, AggAvg:
		var s float64
		for _, v := range vals {
			s += v
		}
		if a == AggAvg {
			return s / float64(len(vals))
		}
		return s
	case AggMin:
		m := math.Inf(1)
		for _, v := range vals {
			m = math.Min(m, v)
		}
		return m
	case AggMax:
		m := math.Inf(-1)
		for _, v := range vals {
			m = math.Max(m, v)
		}
		return m
	}
	return math.NaN()
}

// Cell is one aggregated pivot value. Valid is false when no numeric value
// fell into the cell.
type Cell struct {
	Value float64
	Valid bool
}

// MarshalJSON renders an invalid cell as null.
func (c Cell) MarshalJSON() ([]byte, error) {
	if !c.Valid || math.IsNaN(c.Value) || math.IsInf(c.Value, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(c.Value)
}

// MarshalYAML renders an invalid cell as null.
func (c Cell) MarshalYAML() (interface{}, error) {
	if !c.Valid {
		return nil, nil
	}
	return c.Value, nil
}

// PivotTable is a grid of aggregated values indexed by sorted row and
// column keys.
type PivotTable struct {
	RowField   string     `json:"rowField" yaml:"rowField"`
	ColField   string     `json:"colField" yaml:"colField"`
	ValueField string     `json:"valueField" yaml:"valueField"`
	Aggregator Aggregator `json:"aggregator" yaml:"aggregator"`
	RowKeys    []string   `json:"rowKeys" yaml:"rowKeys"`
	ColKeys    []string   `json:"colKeys" yaml:"colKeys"`
	Cells      [][]Cell   `json:"cells" yaml:"cells"`
}

// Cell looks up a cell by its keys. The second result is false when either
// key was never observed.
func (p *PivotTable) Cell(rowKey, colKey string) (Cell, bool) {
	r := sort.SearchStrings(p.RowKeys, rowKey)
	c := sort.SearchStrings(p.ColKeys, colKey)
	if r >= len(p.RowKeys) || p.RowKeys[r] != rowKey || c >= len(p.ColKeys) || p.ColKeys[c] != colKey {
		return Cell{}, false
	}
	return p.Cells[r][c], true
}

// Pivot groups rows by the stringified values of rowKey and colKey and
// aggregates the numbers of value within each group. Absent keys group
// under "null".
func Pivot(t *table.Table, rowKey, colKey, value string, agg Aggregator) (*PivotTable, error) {
	if err := t.Require(rowKey, colKey, value); err != nil {
		return nil, err
	}
	agg, err := ParseAggregator(string(agg))
	if err != nil {
		return nil, err
	}
	groups := map[string]map[string][]float64{}
	colSeen := map[string]bool{}
	for _, row := range t.Rows() {
		rk, ck := row[rowKey].Key(), row[colKey].Key()
		g := groups[rk]
		if g == nil {
			g = map[string][]float64{}
			groups[rk] = g
		}
		if _, ok := g[ck]; !ok {
			g[ck] = nil
		}
		colSeen[ck] = true
		if v, ok := row[value].Float(); ok {
			g[ck] = append(g[ck], v)
		}
	}
	p := &PivotTable{RowField: rowKey, ColField: colKey, ValueField: value, Aggregator: agg}
	for k := range groups {
		p.RowKeys = append(p.RowKeys, k)
	}
	for k := range colSeen {
		p.ColKeys = append(p.ColKeys, k)
	}
	sort.Strings(p.RowKeys)
	sort.Strings(p.ColKeys)
	p.Cells = make([][]Cell, len(p.RowKeys))
	for i, rk := range p.RowKeys {
		p.Cells[i] = make([]Cell, len(p.ColKeys))
		for j, ck := range p.ColKeys {
			vals := groups[rk][ck]
			if len(vals) == 0 {
				continue
			}
			p.Cells[i][j] = Cell{Value: agg.apply(vals), Valid: true}
		}
	}
	return p, nil
}

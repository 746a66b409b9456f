package analysis

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/KaramelBytes/tabula-cli/internal/table"
)

func TestPivotSum(t *testing.T) {
	tb := newTable(t, []string{"r", "c", "v"},
		[]any{"A", "x", 1},
		[]any{"A", "x", 3},
		[]any{"A", "y", 2},
	)
	p, err := Pivot(tb, "r", "c", "v", AggSum)
	if err != nil {
		t.Fatalf("Pivot: %v", err)
	}
	if c, ok := p.Cell("A", "x"); !ok || !c.Valid || c.Value != 4 {
		t.Fatalf("(A,x) = %+v %v, want 4", c, ok)
	}
	if c, ok := p.Cell("A", "y"); !ok || !c.Valid || c.Value != 2 {
		t.Fatalf("(A,y) = %+v %v, want 2", c, ok)
	}
	if _, ok := p.Cell("B", "x"); ok {
		t.Fatal("unknown row key should not resolve")
	}
}

func TestPivotAggregatorsAndMissingCells(t *testing.T) {
	tb := newTable(t, []string{"region", "year", "sales"},
		[]any{"north", 2021, 10},
		[]any{"north", 2021, 30},
		[]any{"north", 2022, "n/a"},
		[]any{"south", 2021, 5},
		[]any{nil, 2022, 7},
	)
	tests := []struct {
		agg  Aggregator
		want float64
	}{
		{AggSum, 40},
		{AggAvg, 20},
		{AggCount, 2},
		{AggMin, 10},
		{AggMax, 30},
	}
	for _, tt := range tests {
		p, err := Pivot(tb, "region", "year", "sales", tt.agg)
		if err != nil {
			t.Fatalf("Pivot %s: %v", tt.agg, err)
		}
		if c, _ := p.Cell("north", "2021"); !c.Valid || c.Value != tt.want {
			t.Errorf("%s (north,2021) = %+v, want %v", tt.agg, c, tt.want)
		}
		if c, ok := p.Cell("north", "2022"); !ok || c.Valid {
			t.Errorf("%s (north,2022) = %+v, want not available", tt.agg, c)
		}
		if c, ok := p.Cell("south", "2022"); !ok || c.Valid {
			t.Errorf("%s (south,2022) = %+v, want not available", tt.agg, c)
		}
		if c, _ := p.Cell("null", "2022"); !c.Valid {
			t.Errorf("%s (null,2022) = %+v, want a value", tt.agg, c)
		}
	}
	p, _ := Pivot(tb, "region", "year", "sales", AggSum)
	if !equalStrings(p.RowKeys, []string{"north", "null", "south"}) || !equalStrings(p.ColKeys, []string{"2021", "2022"}) {
		t.Fatalf("keys = %v x %v", p.RowKeys, p.ColKeys)
	}
	raw, err := json.Marshal(p.Cells)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `[[40,null],[null,7],[5,null]]` {
		t.Fatalf("cells json = %s", raw)
	}
}

func TestPivotErrors(t *testing.T) {
	tb := newTable(t, []string{"r", "c", "v"}, []any{"A", "x", 1})
	if _, err := Pivot(tb, "r", "c", "v", Aggregator("median")); err == nil {
		t.Fatal("unknown aggregator should fail")
	}
	if _, err := Pivot(tb, "r", "nope", "v", AggSum); !errors.Is(err, table.ErrInvalidColumn) {
		t.Fatalf("unknown column err = %v", err)
	}
	if a, err := ParseAggregator(" Mean "); err != nil || a != AggAvg {
		t.Fatalf("ParseAggregator(mean) = %v, %v", a, err)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

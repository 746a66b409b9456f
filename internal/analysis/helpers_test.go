package analysis

import (
	"math"
	"testing"

	"github.com/KaramelBytes/tabula-cli/internal/table"
)

// newTable builds a table from literal rows: float64 and int become
// numbers, string becomes text and nil is absent.
func newTable(t *testing.T, cols []string, rows ...[]any) *table.Table {
	t.Helper()
	out := make([]table.Row, len(rows))
	for i, r := range rows {
		if len(r) != len(cols) {
			t.Fatalf("row %d has %d cells, want %d", i, len(r), len(cols))
		}
		row := table.Row{}
		for j, v := range r {
			switch x := v.(type) {
			case nil:
				row[cols[j]] = table.Absent()
			case int:
				row[cols[j]] = table.Number(float64(x))
			case float64:
				row[cols[j]] = table.Number(x)
			case string:
				row[cols[j]] = table.Text(x)
			default:
				t.Fatalf("unsupported cell %T", v)
			}
		}
		out[i] = row
	}
	tb, err := table.New("test", cols, out)
	if err != nil {
		t.Fatalf("table.New: %v", err)
	}
	return tb
}

// column builds a single-column table.
func column(t *testing.T, name string, vals ...any) *table.Table {
	t.Helper()
	rows := make([][]any, len(vals))
	for i, v := range vals {
		rows[i] = []any{v}
	}
	return newTable(t, []string{name}, rows...)
}

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func equalFloats(a, b []float64, eps float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !almostEqual(a[i], b[i], eps) {
			return false
		}
	}
	return true
}

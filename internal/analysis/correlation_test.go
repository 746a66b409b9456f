package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/KaramelBytes/tabula-cli/internal/table"
)

func corrTable(t *testing.T) *table.Table {
	return newTable(t, []string{"x", "double", "noise", "flat", "label"},
		[]any{1, 2, 5, 7, "a"},
		[]any{2, 4, 1, 7, "b"},
		[]any{3, 6, 4, 7, "c"},
		[]any{4, 8, 2, 7, "d"},
		[]any{5, 10, 3, 7, "e"},
	)
}

func TestCorrelationSymmetryAndSelf(t *testing.T) {
	tb := corrTable(t)
	cols := []string{"x", "double", "noise"}
	for _, a := range cols {
		self, err := Correlation(tb, a, a)
		if err != nil {
			t.Fatalf("Correlation(%s,%s): %v", a, a, err)
		}
		if !almostEqual(self.R, 1, 1e-12) {
			t.Errorf("r(%s,%s) = %v, want 1", a, a, self.R)
		}
		for _, b := range cols {
			ab, _ := Correlation(tb, a, b)
			ba, _ := Correlation(tb, b, a)
			if ab.R != ba.R {
				t.Errorf("r(%s,%s)=%v != r(%s,%s)=%v", a, b, ab.R, b, a, ba.R)
			}
		}
	}
	p, _ := Correlation(tb, "x", "double")
	if !almostEqual(p.R, 1, 1e-12) || p.N != 5 {
		t.Fatalf("r(x,double) = %+v", p)
	}
}

func TestCorrelationDegenerateIsNaN(t *testing.T) {
	tb := corrTable(t)
	p, err := Correlation(tb, "x", "flat")
	if err != nil {
		t.Fatalf("Correlation: %v", err)
	}
	if !math.IsNaN(p.R) {
		t.Fatalf("r with constant column = %v, want NaN", p.R)
	}
	if p, _ := Correlation(tb, "x", "label"); !math.IsNaN(p.R) || p.N != 0 {
		t.Fatalf("r with no numbers = %+v, want NaN over 0", p)
	}
	if _, err := Correlation(tb, "x", "nope"); !errors.Is(err, table.ErrInvalidColumn) {
		t.Fatalf("unknown column err = %v", err)
	}
}

func TestCorrelationTruncatesPositionally(t *testing.T) {
	// a's absent cell shifts its values against b; only the first three
	// present values of each side are paired.
	tb := newTable(t, []string{"a", "b"},
		[]any{1, 2},
		[]any{nil, 4},
		[]any{2, 6},
		[]any{3, 8},
	)
	p, err := Correlation(tb, "a", "b")
	if err != nil {
		t.Fatalf("Correlation: %v", err)
	}
	if p.N != 3 || !almostEqual(p.R, 1, 1e-12) {
		t.Fatalf("pair = %+v, want n=3 r=1", p)
	}
}

func TestCorrelationMatrixOrdering(t *testing.T) {
	pairs, err := CorrelationMatrix(corrTable(t))
	if err != nil {
		t.Fatalf("CorrelationMatrix: %v", err)
	}
	// x, double, noise, flat are numeric: 6 unordered pairs.
	if len(pairs) != 6 {
		t.Fatalf("pairs = %d, want 6", len(pairs))
	}
	if pairs[0].A != "x" || pairs[0].B != "double" {
		t.Fatalf("first pair = %+v, want x~double", pairs[0])
	}
	seenNaN := false
	for i, p := range pairs {
		if math.IsNaN(p.R) {
			seenNaN = true
			continue
		}
		if seenNaN {
			t.Fatalf("pair %d (%+v) follows a NaN pair", i, p)
		}
		if i > 0 && !math.IsNaN(pairs[i-1].R) && math.Abs(pairs[i-1].R) < math.Abs(p.R) {
			t.Fatalf("pairs not sorted by |r|: %+v", pairs)
		}
	}
	for _, p := range pairs[3:] {
		if !math.IsNaN(p.R) {
			t.Fatalf("pairs with flat should trail as NaN: %+v", pairs)
		}
	}

	again, _ := CorrelationMatrix(corrTable(t))
	for i := range pairs {
		if pairs[i].A != again[i].A || pairs[i].B != again[i].B {
			t.Fatalf("matrix order not deterministic: %+v vs %+v", pairs, again)
		}
	}
}

func TestCorrelationGrid(t *testing.T) {
	g, err := CorrelationGrid(corrTable(t))
	if err != nil {
		t.Fatalf("CorrelationGrid: %v", err)
	}
	if len(g.Columns) != 4 || len(g.Values) != 4 {
		t.Fatalf("grid = %+v", g)
	}
	for i := range g.Values {
		for j := range g.Values {
			a, b := g.Values[i][j], g.Values[j][i]
			if !(a == b || math.IsNaN(a) && math.IsNaN(b)) {
				t.Fatalf("grid not symmetric at %d,%d", i, j)
			}
		}
	}
	if !almostEqual(g.Values[0][1], 1, 1e-12) || !math.IsNaN(g.Values[3][3]) {
		t.Fatalf("grid values = %v", g.Values)
	}
}

func TestRankFeatures(t *testing.T) {
	tb := newTable(t, []string{"y", "strong", "weak", "gap"},
		[]any{1, 10, 3, 1},
		[]any{2, 20, 1, nil},
		[]any{3, 30, 4, 3},
		[]any{4, 40, 1, 4},
		[]any{5, 50, 5, 5},
		[]any{5, 50, 9, 5},
	)
	r, err := RankFeatures(tb, "y", []string{"weak", "strong", "gap"})
	if err != nil {
		t.Fatalf("RankFeatures: %v", err)
	}
	if r.Samples != 5 {
		t.Fatalf("samples = %d, want 5 (row with absent gap dropped)", r.Samples)
	}
	if len(r.TargetClasses) != 4 {
		t.Fatalf("target classes = %v", r.TargetClasses)
	}
	if r.Features[0].Name != "strong" && r.Features[0].Name != "gap" {
		t.Fatalf("top feature = %+v", r.Features)
	}
	if r.Features[2].Name != "weak" {
		t.Fatalf("weakest feature = %+v, want weak last", r.Features)
	}
	for i := 1; i < len(r.Features); i++ {
		if r.Features[i-1].Importance < r.Features[i].Importance {
			t.Fatalf("not sorted: %+v", r.Features)
		}
	}

	if _, err := RankFeatures(tb, "y", nil); !errors.Is(err, table.ErrInvalidColumn) {
		t.Fatalf("empty features err = %v", err)
	}
	if _, err := RankFeatures(tb, "y", []string{"nope"}); !errors.Is(err, table.ErrInvalidColumn) {
		t.Fatalf("unknown feature err = %v", err)
	}
}

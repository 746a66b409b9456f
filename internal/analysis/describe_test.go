package analysis

import (
	"errors"
	"testing"

	"github.com/KaramelBytes/tabula-cli/internal/table"
)

func TestDescribe(t *testing.T) {
	tb := column(t, "v", 1, 2, nil, 3, 4, "n/a", 100)
	s, err := Describe(tb, "v")
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if s.Count != 5 {
		t.Fatalf("count = %d, want 5", s.Count)
	}
	checks := []struct {
		name      string
		got, want float64
	}{
		{"mean", s.Mean, 22},
		{"variance", s.Variance, 1522},
		{"min", s.Min, 1},
		{"max", s.Max, 100},
		{"median", s.Median, 3},
		{"q1", s.Q1, 2},
		{"q3", s.Q3, 4},
		{"iqr", s.IQR, 2},
		{"lower", s.Lower, -1},
		{"upper", s.Upper, 7},
	}
	for _, c := range checks {
		if !almostEqual(c.got, c.want, 1e-9) {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if !equalFloats(s.Outliers, []float64{100}, 0) {
		t.Fatalf("outliers = %v, want [100]", s.Outliers)
	}
}

func TestDescribeMedianEvenCountTakesUpperMiddle(t *testing.T) {
	s, err := Describe(column(t, "v", 4, 1, 3, 2), "v")
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if s.Median != 3 || s.Q1 != 2 || s.Q3 != 4 {
		t.Fatalf("median/q1/q3 = %v/%v/%v, want 3/2/4", s.Median, s.Q1, s.Q3)
	}
}

func TestDescribeQuartileOrdering(t *testing.T) {
	series := [][]any{
		{5},
		{1, 1, 1, 1},
		{9, -3, 4.5, 0, 12, 7, 7, -8},
		{0.1, 0.2, 0.3, 1000, -1000, 42, 3.14},
	}
	for i, vals := range series {
		s, err := Describe(column(t, "v", vals...), "v")
		if err != nil {
			t.Fatalf("series %d: %v", i, err)
		}
		if !(s.Q1 <= s.Median && s.Median <= s.Q3) || s.IQR < 0 {
			t.Errorf("series %d: q1=%v median=%v q3=%v iqr=%v", i, s.Q1, s.Median, s.Q3, s.IQR)
		}
	}
}

func TestDescribeErrors(t *testing.T) {
	tb := newTable(t, []string{"v", "w"}, []any{nil, "x"}, []any{nil, "y"})
	if _, err := Describe(tb, "missing"); !errors.Is(err, table.ErrInvalidColumn) {
		t.Fatalf("unknown column err = %v", err)
	}
	if _, err := Describe(tb, "v"); !errors.Is(err, table.ErrInsufficientData) {
		t.Fatalf("absent column err = %v", err)
	}
	var ide *table.InsufficientDataError
	if _, err := Describe(tb, "w"); !errors.As(err, &ide) || ide.Have != 0 {
		t.Fatalf("text column err = %v", err)
	}
}

func TestDescribeAllSkipsEmptyNumericColumns(t *testing.T) {
	tb := newTable(t, []string{"a", "b", "c"},
		[]any{1, 2, "x"},
		[]any{3, nil, "y"},
	)
	got := DescribeAll(tb)
	if len(got) != 2 || got[0].Column != "a" || got[1].Column != "b" {
		t.Fatalf("DescribeAll = %+v", got)
	}
}

func TestHistogram(t *testing.T) {
	vals := []any{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 10}
	bins, err := Histogram(column(t, "v", vals...), "v", 0)
	if err != nil {
		t.Fatalf("Histogram: %v", err)
	}
	if len(bins) != DefaultBins {
		t.Fatalf("bins = %d, want %d", len(bins), DefaultBins)
	}
	total := 0
	for _, b := range bins {
		total += b.Count
	}
	if total != len(vals) {
		t.Fatalf("counts sum to %d, want %d", total, len(vals))
	}
	if bins[0].Lower != 0 || !almostEqual(bins[9].Upper, 10, 1e-9) {
		t.Fatalf("range = [%v, %v]", bins[0].Lower, bins[9].Upper)
	}
	if bins[9].Count != 3 {
		t.Fatalf("last bin = %d, want 3 (9 and both 10s)", bins[9].Count)
	}
}

func TestHistogramConstantColumn(t *testing.T) {
	bins, err := Histogram(column(t, "v", 4, 4, 4), "v", 5)
	if err != nil {
		t.Fatalf("Histogram: %v", err)
	}
	if len(bins) != 5 || bins[0].Count != 3 {
		t.Fatalf("bins = %+v", bins)
	}
}

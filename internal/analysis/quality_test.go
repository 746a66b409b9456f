package analysis

import (
	"testing"
)

func TestQuality(t *testing.T) {
	tb := newTable(t, []string{"id", "name", "score"},
		[]any{1, "ada", 10},
		[]any{2, nil, 12},
		[]any{1, "ada", 10},
		[]any{"1", "ada", 10},
		[]any{3, nil, nil},
	)
	q := Quality(tb)
	if q.Rows != 5 {
		t.Fatalf("rows = %d", q.Rows)
	}
	if len(q.Duplicates) != 1 || q.Duplicates[0] != 2 {
		t.Fatalf("duplicates = %v, want [2]", q.Duplicates)
	}
	want := map[string]Missing{
		"id":    {Column: "id", Count: 0, Percent: 0},
		"name":  {Column: "name", Count: 2, Percent: 40},
		"score": {Column: "score", Count: 1, Percent: 20},
	}
	for _, m := range q.Missing {
		if m != want[m.Column] {
			t.Errorf("missing %s = %+v, want %+v", m.Column, m, want[m.Column])
		}
	}
}

func TestOverview(t *testing.T) {
	tb := newTable(t, []string{"a", "b"}, []any{1, nil}, []any{nil, "x"}, []any{3, "y"})
	o := Overview(tb, 2)
	if o.Rows != 3 || len(o.Columns) != 2 || o.NumericColumns != 1 || o.MissingCells != 2 || len(o.Preview) != 2 {
		t.Fatalf("overview = %+v", o)
	}
	if len(Overview(tb, 10).Preview) != 3 {
		t.Fatal("preview should clip to row count")
	}
}

func TestInsights(t *testing.T) {
	tb := newTable(t, []string{"x", "y", "sparse"},
		[]any{1, 2, 1},
		[]any{2, 4, nil},
		[]any{3, 6, nil},
		[]any{4, 8, 4},
		[]any{100, 200, 5},
	)
	got, err := Insights(tb, DefaultInsightOptions())
	if err != nil {
		t.Fatalf("Insights: %v", err)
	}
	kinds := map[InsightKind]int{}
	for _, in := range got {
		kinds[in.Kind]++
	}
	if kinds[InsightAnomaly] != 2 {
		t.Errorf("anomalies = %d, want 2 (x and y)", kinds[InsightAnomaly])
	}
	if kinds[InsightCorrelation] < 1 {
		t.Errorf("expected x~y correlation insight: %+v", got)
	}
	if kinds[InsightQuality] != 1 {
		t.Errorf("quality insights = %d, want 1 (sparse)", kinds[InsightQuality])
	}
	if got[0].Kind != InsightAnomaly || got[0].Message != "x has 1 outliers (20.0%)" {
		t.Errorf("first insight = %+v", got[0])
	}

	quiet, err := Insights(tb, InsightOptions{CorrThreshold: 1.1, MissingRatio: 0.5})
	if err != nil {
		t.Fatalf("Insights: %v", err)
	}
	for _, in := range quiet {
		if in.Kind != InsightAnomaly {
			t.Errorf("unexpected insight with loose thresholds: %+v", in)
		}
	}
}

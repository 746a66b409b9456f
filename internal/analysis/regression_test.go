package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/KaramelBytes/tabula-cli/internal/table"
)

func TestFitLinearExactLine(t *testing.T) {
	tb := newTable(t, []string{"x", "y"},
		[]any{0, 3}, []any{1, 5}, []any{2, 7}, []any{3, 9}, []any{4, 11},
		[]any{nil, 100}, []any{5, "bad"},
	)
	f, err := FitLinear(tb, "x", "y")
	if err != nil {
		t.Fatalf("FitLinear: %v", err)
	}
	if f.N != 5 {
		t.Fatalf("n = %d, want 5", f.N)
	}
	if !almostEqual(f.Slope, 2, 1e-9) || !almostEqual(f.Intercept, 3, 1e-9) || !almostEqual(f.RSquared, 1, 1e-9) {
		t.Fatalf("fit = %+v, want slope 2 intercept 3 r2 1", f)
	}
	if got := f.Predict(10); !almostEqual(got, 23, 1e-9) {
		t.Fatalf("Predict(10) = %v, want 23", got)
	}
}

func TestFitSeriesDegenerate(t *testing.T) {
	flatY, err := FitSeries([]float64{1, 2, 3}, []float64{4, 4, 4})
	if err != nil {
		t.Fatalf("FitSeries: %v", err)
	}
	if flatY.Slope != 0 || !math.IsNaN(flatY.RSquared) {
		t.Fatalf("constant y fit = %+v, want slope 0 and NaN r2", flatY)
	}
	flatX, err := FitSeries([]float64{2, 2, 2}, []float64{1, 2, 3})
	if err != nil {
		t.Fatalf("FitSeries: %v", err)
	}
	if !math.IsNaN(flatX.Slope) || !math.IsNaN(flatX.Intercept) {
		t.Fatalf("constant x fit = %+v, want NaN coefficients", flatX)
	}
}

func TestFitLinearInsufficient(t *testing.T) {
	tb := newTable(t, []string{"x", "y"}, []any{1, 2}, []any{nil, 3})
	_, err := FitLinear(tb, "x", "y")
	var ide *table.InsufficientDataError
	if !errors.As(err, &ide) || ide.Need != 2 || ide.Have != 1 {
		t.Fatalf("err = %v, want insufficient 2/1", err)
	}
	if _, err := FitLinear(tb, "x", "z"); !errors.Is(err, table.ErrInvalidColumn) {
		t.Fatalf("unknown column err = %v", err)
	}
}

func TestForecast(t *testing.T) {
	p, err := Forecast(column(t, "sales", 10, nil, 12, 14, 16), "sales", 3)
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if !equalFloats(p.Values, []float64{18, 20, 22}, 1e-9) {
		t.Fatalf("values = %v, want [18 20 22]", p.Values)
	}
	if p.Direction != "increasing" || p.Fit.N != 4 {
		t.Fatalf("projection = %+v", p)
	}

	down, err := Forecast(column(t, "v", 5, 4, 3), "v", 1)
	if err != nil || down.Direction != "decreasing" || !almostEqual(down.Values[0], 2, 1e-9) {
		t.Fatalf("down = %+v, %v", down, err)
	}
	if _, err := Forecast(column(t, "v", 1), "v", 2); !errors.Is(err, table.ErrInsufficientData) {
		t.Fatalf("single point err = %v", err)
	}
	if _, err := Forecast(column(t, "v", 1, 2), "v", -1); err == nil {
		t.Fatal("negative periods should fail")
	}
}

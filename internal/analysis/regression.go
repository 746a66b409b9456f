package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/KaramelBytes/tabula-cli/internal/table"
)

// Fit is an ordinary least squares line y = Slope*x + Intercept.
type Fit struct {
	X         string  `json:"x,omitempty" yaml:"x,omitempty"`
	Y         string  `json:"y,omitempty" yaml:"y,omitempty"`
	Slope     float64 `json:"slope" yaml:"slope"`
	Intercept float64 `json:"intercept" yaml:"intercept"`
	RSquared  float64 `json:"rSquared" yaml:"rSquared"`
	N         int     `json:"n" yaml:"n"`
}

// Predict evaluates the fitted line at x.
func (f *Fit) Predict(x float64) float64 { return f.Slope*x + f.Intercept }

// FitSeries fits xs against ys from the closed-form normal equations.
// A constant x gives NaN coefficients; a constant y gives NaN R².
func FitSeries(xs, ys []float64) (*Fit, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("fit: %d x values for %d y values", len(xs), len(ys))
	}
	n := float64(len(xs))
	if len(xs) < 2 {
		return nil, table.Insufficient("regression", 2, len(xs))
	}
	sx := floats.Sum(xs)
	sy := floats.Sum(ys)
	sxy := floats.Dot(xs, ys)
	sx2 := floats.Dot(xs, xs)

	f := &Fit{N: len(xs)}
	den := n*sx2 - sx*sx
	if den == 0 {
		f.Slope, f.Intercept = math.NaN(), math.NaN()
	} else {
		f.Slope = (n*sxy - sx*sy) / den
		f.Intercept = (sy - f.Slope*sx) / n
	}

	my := sy / n
	var ssTot, ssRes float64
	for i, x := range xs {
		d := ys[i] - my
		ssTot += d * d
		e := ys[i] - f.Predict(x)
		ssRes += e * e
	}
	if ssTot == 0 {
		f.RSquared = math.NaN()
	} else {
		f.RSquared = 1 - ssRes/ssTot
	}
	return f, nil
}

// FitLinear regresses column y on column x over rows where both are numbers.
func FitLinear(t *table.Table, x, y string) (*Fit, error) {
	if err := t.Require(x, y); err != nil {
		return nil, err
	}
	var xs, ys []float64
	for _, row := range t.Rows() {
		xv, ok1 := row[x].Float()
		yv, ok2 := row[y].Float()
		if ok1 && ok2 {
			xs = append(xs, xv)
			ys = append(ys, yv)
		}
	}
	f, err := FitSeries(xs, ys)
	if err != nil {
		return nil, err
	}
	f.X, f.Y = x, y
	return f, nil
}

// Projection extends a column's linear trend past its last row.
type Projection struct {
	Column    string    `json:"column" yaml:"column"`
	Fit       *Fit      `json:"fit" yaml:"fit"`
	Values    []float64 `json:"values" yaml:"values"`
	Direction string    `json:"direction" yaml:"direction"`
}

// Forecast fits the present numbers of col against their position 0..n-1
// and predicts positions n..n+periods-1.
func Forecast(t *table.Table, col string, periods int) (*Projection, error) {
	if periods < 0 {
		return nil, fmt.Errorf("forecast %s: periods must be >= 0, got %d", col, periods)
	}
	ys, err := t.Numbers(col)
	if err != nil {
		return nil, err
	}
	xs := make([]float64, len(ys))
	for i := range xs {
		xs[i] = float64(i)
	}
	fit, err := FitSeries(xs, ys)
	if err != nil {
		return nil, fmt.Errorf("forecast %s: %w", col, err)
	}
	fit.X, fit.Y = "index", col
	p := &Projection{Column: col, Fit: fit, Values: make([]float64, periods), Direction: "decreasing"}
	for i := range p.Values {
		p.Values[i] = fit.Predict(float64(len(ys) + i))
	}
	if fit.Slope > 0 {
		p.Direction = "increasing"
	}
	return p, nil
}

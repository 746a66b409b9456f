package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/KaramelBytes/tabula-cli/internal/table"
)

// MinDecomposePoints is the shortest series Decompose accepts.
const MinDecomposePoints = 10

// Decomposition splits a series into a moving-average trend and residual.
type Decomposition struct {
	Column       string    `json:"column" yaml:"column"`
	Window       int       `json:"window" yaml:"window"`
	Values       []float64 `json:"values" yaml:"values"`
	Trend        []float64 `json:"trend" yaml:"trend"`
	Residual     []float64 `json:"residual" yaml:"residual"`
	TrendMean    float64   `json:"trendMean" yaml:"trendMean"`
	ResidualMean float64   `json:"residualMean" yaml:"residualMean"`
	Volatility   float64   `json:"volatility" yaml:"volatility"`
}

// Decompose treats the present numbers of col, in row order, as a time
// series. The trend is a centered moving average of width min(5, n/3)
// that shrinks at the edges; the residual is value minus trend and its
// root mean square is reported as volatility.
func Decompose(t *table.Table, col string) (*Decomposition, error) {
	vals, err := t.Numbers(col)
	if err != nil {
		return nil, err
	}
	n := len(vals)
	if n < MinDecomposePoints {
		return nil, table.Insufficient("decompose "+col, MinDecomposePoints, n)
	}
	w := n / 3
	if w > 5 {
		w = 5
	}
	half, rest := w/2, (w+1)/2
	d := &Decomposition{
		Column:   col,
		Window:   w,
		Values:   vals,
		Trend:    make([]float64, n),
		Residual: make([]float64, n),
	}
	for i := range vals {
		lo, hi := i-half, i+rest
		if lo < 0 {
			lo = 0
		}
		if hi > n {
			hi = n
		}
		d.Trend[i] = mean(vals[lo:hi])
		d.Residual[i] = vals[i] - d.Trend[i]
	}
	d.TrendMean = mean(d.Trend)
	d.ResidualMean = mean(d.Residual)
	d.Volatility = math.Sqrt(floats.Dot(d.Residual, d.Residual) / float64(n))
	return d, nil
}

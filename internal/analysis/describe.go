package analysis

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/tabula-cli/internal/table"
)

// Summary holds descriptive statistics for one numeric column.
// Variance and StdDev use the population formula (divide by n).
type Summary struct {
	Column   string    `json:"column" yaml:"column"`
	Count    int       `json:"count" yaml:"count"`
	Mean     float64   `json:"mean" yaml:"mean"`
	Variance float64   `json:"variance" yaml:"variance"`
	StdDev   float64   `json:"stdDev" yaml:"stdDev"`
	Min      float64   `json:"min" yaml:"min"`
	Max      float64   `json:"max" yaml:"max"`
	Median   float64   `json:"median" yaml:"median"`
	Q1       float64   `json:"q1" yaml:"q1"`
	Q3       float64   `json:"q3" yaml:"q3"`
	IQR      float64   `json:"iqr" yaml:"iqr"`
	Lower    float64   `json:"lowerFence" yaml:"lowerFence"`
	Upper    float64   `json:"upperFence" yaml:"upperFence"`
	Outliers []float64 `json:"outliers" yaml:"outliers"`
}

// Describe computes the Summary of col over its present numeric cells.
func Describe(t *table.Table, col string) (*Summary, error) {
	vals, err := t.Numbers(col)
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, table.Insufficient("describe "+col, 1, 0)
	}
	s := Summarize(vals)
	s.Column = col
	return s, nil
}

// Summarize computes descriptive statistics over vals, which must be non-empty.
// Outliers are the values outside [Q1-1.5*IQR, Q3+1.5*IQR], in input order.
func Summarize(vals []float64) *Summary {
	sorted := sortedCopy(vals)
	m, v := stat.PopMeanVariance(vals, nil)
	s := &Summary{
		Count:    len(vals),
		Mean:     m,
		Variance: v,
		StdDev:   math.Sqrt(v),
		Min:      floats.Min(vals),
		Max:      floats.Max(vals),
		Median:   rankAt(sorted, 0.5),
		Q1:       rankAt(sorted, 0.25),
		Q3:       rankAt(sorted, 0.75),
	}
	s.IQR = s.Q3 - s.Q1
	s.Lower = s.Q1 - 1.5*s.IQR
	s.Upper = s.Q3 + 1.5*s.IQR
	s.Outliers = []float64{}
	for _, x := range vals {
		if x < s.Lower || x > s.Upper {
			s.Outliers = append(s.Outliers, x)
		}
	}
	return s
}

// DescribeAll summarizes every numeric column that has at least one value.
func DescribeAll(t *table.Table) []Summary {
	var out []Summary
	for _, c := range t.NumericColumns() {
		s, err := Describe(t, c)
		if err != nil {
			continue
		}
		out = append(out, *s)
	}
	return out
}

// Bin is one equal-width histogram bucket covering [Lower, Upper).
// The last bucket also includes Upper.
type Bin struct {
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
	Count int     `json:"count" yaml:"count"`
}

// DefaultBins is the histogram bucket count used when none is given.
const DefaultBins = 10

// Histogram buckets the present numeric cells of col into equal-width bins
// spanning [min, max]. A constant column lands entirely in the first bin.
func Histogram(t *table.Table, col string, bins int) ([]Bin, error) {
	vals, err := t.Numbers(col)
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, table.Insufficient("histogram "+col, 1, 0)
	}
	if bins <= 0 {
		bins = DefaultBins
	}
	lo, err := stats.Min(vals)
	if err != nil {
		return nil, fmt.Errorf("histogram %s: %w", col, err)
	}
	hi, err := stats.Max(vals)
	if err != nil {
		return nil, fmt.Errorf("histogram %s: %w", col, err)
	}
	width := (hi - lo) / float64(bins)
	out := make([]Bin, bins)
	for i := range out {
		out[i] = Bin{Lower: lo + float64(i)*width, Upper: lo + float64(i+1)*width}
	}
	for _, v := range vals {
		idx := 0
		if width > 0 {
			idx = int(math.Floor((v - lo) / width))
		}
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Count++
	}
	return out, nil
}

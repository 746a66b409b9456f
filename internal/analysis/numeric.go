package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// sortedCopy returns an ascending copy of vals.
func sortedCopy(vals []float64) []float64 {
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	return cp
}

// rankAt picks sorted[floor(q*n)]. Quantiles are taken at truncated ranks
// with no interpolation between neighbours; the median is rankAt(0.5) even
// for even n.
func rankAt(sorted []float64, q float64) float64 {
	i := int(math.Floor(q * float64(len(sorted))))
	if i >= len(sorted) {
		i = len(sorted) - 1
	}
	return sorted[i]
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	return floats.Sum(vals) / float64(len(vals))
}

// absDesc orders by descending magnitude with NaN last.
func absDesc(a, b float64) bool {
	an, bn := math.IsNaN(a), math.IsNaN(b)
	if an || bn {
		return !an && bn
	}
	return math.Abs(a) > math.Abs(b)
}

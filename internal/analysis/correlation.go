package analysis

import (
	"fmt"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/KaramelBytes/tabula-cli/internal/table"
)

// Pair is the Pearson correlation between two columns.
type Pair struct {
	A string  `json:"a" yaml:"a"`
	B string  `json:"b" yaml:"b"`
	R float64 `json:"r" yaml:"r"`
	N int     `json:"n" yaml:"n"`
}

// Pearson computes r over the first min(len(xs), len(ys)) values of each
// slice. It returns NaN when there is no data or either side has zero spread.
func Pearson(xs, ys []float64) float64 {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	if n == 0 {
		return math.NaN()
	}
	xs, ys = xs[:n], ys[:n]
	mx := floats.Sum(xs) / float64(n)
	my := floats.Sum(ys) / float64(n)
	var num, dx2, dy2 float64
	for i := 0; i < n; i++ {
		dx := xs[i] - mx
		dy := ys[i] - my
		num += dx * dy
		dx2 += dx * dx
		dy2 += dy * dy
	}
	if dx2 == 0 || dy2 == 0 {
		return math.NaN()
	}
	return num / math.Sqrt(dx2*dy2)
}

// Correlation pairs the present numeric values of a and b positionally.
// Each column is filtered on its own, so rows are not aligned when the two
// columns have absent cells in different places.
func Correlation(t *table.Table, a, b string) (Pair, error) {
	xs, err := t.Numbers(a)
	if err != nil {
		return Pair{}, err
	}
	ys, err := t.Numbers(b)
	if err != nil {
		return Pair{}, err
	}
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	return Pair{A: a, B: b, R: Pearson(xs, ys), N: n}, nil
}

// CorrelationMatrix correlates every unordered pair of numeric columns and
// sorts the pairs by descending |r|. Pairs with an undefined r sort last;
// ties keep column order.
func CorrelationMatrix(t *table.Table) ([]Pair, error) {
	cols := t.NumericColumns()
	series, err := numericSeries(t, cols)
	if err != nil {
		return nil, err
	}
	type ij struct{ i, j int }
	var idx []ij
	for i := 0; i < len(cols); i++ {
		for j := i + 1; j < len(cols); j++ {
			idx = append(idx, ij{i, j})
		}
	}
	pairs := make([]Pair, len(idx))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for k, p := range idx {
		k, p := k, p
		g.Go(func() error {
			xs, ys := series[p.i], series[p.j]
			n := len(xs)
			if len(ys) < n {
				n = len(ys)
			}
			pairs[k] = Pair{A: cols[p.i], B: cols[p.j], R: Pearson(xs, ys), N: n}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("correlation matrix: %w", err)
	}
	sort.SliceStable(pairs, func(i, j int) bool { return absDesc(pairs[i].R, pairs[j].R) })
	return pairs, nil
}

// Grid is a square correlation matrix over the numeric columns.
type Grid struct {
	Columns []string    `json:"columns" yaml:"columns"`
	Values  [][]float64 `json:"values" yaml:"values"`
}

// CorrelationGrid builds the full symmetric matrix with the same per-pair
// semantics as Correlation. The diagonal is r of a column with itself, so a
// constant column has NaN there.
func CorrelationGrid(t *table.Table) (*Grid, error) {
	cols := t.NumericColumns()
	series, err := numericSeries(t, cols)
	if err != nil {
		return nil, err
	}
	n := len(cols)
	vals := make([][]float64, n)
	for i := range vals {
		vals[i] = make([]float64, n)
	}
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			for j := i; j < n; j++ {
				r := Pearson(series[i], series[j])
				vals[i][j] = r
				vals[j][i] = r
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("correlation grid: %w", err)
	}
	return &Grid{Columns: cols, Values: vals}, nil
}

func numericSeries(t *table.Table, cols []string) ([][]float64, error) {
	out := make([][]float64, len(cols))
	for i, c := range cols {
		v, err := t.Numbers(c)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Feature is the importance of one feature column for a target.
type Feature struct {
	Name       string  `json:"name" yaml:"name"`
	Importance float64 `json:"importance" yaml:"importance"`
}

// Ranking orders features by |r| against the target. It is a correlation
// proxy and involves no trained model.
type Ranking struct {
	Target        string    `json:"target" yaml:"target"`
	Features      []Feature `json:"features" yaml:"features"`
	Samples       int       `json:"samples" yaml:"samples"`
	TargetClasses []string  `json:"targetClasses" yaml:"targetClasses"`
}

// RankFeatures keeps rows where the target and every feature hold a number,
// then scores each feature by |pearson(feature, target)| over those rows.
func RankFeatures(t *table.Table, target string, features []string) (*Ranking, error) {
	if len(features) == 0 {
		return nil, &table.ColumnError{Name: target, Reason: "no feature columns given"}
	}
	if err := t.Require(append([]string{target}, features...)...); err != nil {
		return nil, err
	}
	ys := make([]float64, 0, t.Len())
	xs := make([][]float64, len(features))
	seen := map[string]bool{}
	var classes []string
	for _, row := range t.Rows() {
		y, ok := row[target].Float()
		if !ok {
			continue
		}
		rowX := make([]float64, len(features))
		complete := true
		for i, f := range features {
			x, ok := row[f].Float()
			if !ok {
				complete = false
				break
			}
			rowX[i] = x
		}
		if !complete {
			continue
		}
		ys = append(ys, y)
		for i := range features {
			xs[i] = append(xs[i], rowX[i])
		}
		if k := row[target].Key(); !seen[k] {
			seen[k] = true
			classes = append(classes, k)
		}
	}
	if len(ys) == 0 {
		return nil, table.Insufficient("rank features", 1, 0)
	}
	out := &Ranking{Target: target, Samples: len(ys), TargetClasses: classes}
	for i, f := range features {
		out.Features = append(out.Features, Feature{Name: f, Importance: math.Abs(Pearson(xs[i], ys))})
	}
	sort.SliceStable(out.Features, func(i, j int) bool {
		return absDesc(out.Features[i].Importance, out.Features[j].Importance)
	})
	return out, nil
}

package analysis

import (
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/tabula-cli/internal/table"
)

// MaxIterations caps the assign/update loop.
const MaxIterations = 100

// parallelThreshold is the point count above which assignment fans out.
const parallelThreshold = 4096

// Point is a position in the two clustering dimensions.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func (p Point) dist(q Point) float64 {
	dx, dy := p.X-q.X, p.Y-q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Clustering is the outcome of a k-means run.
type Clustering struct {
	X           string  `json:"x,omitempty" yaml:"x,omitempty"`
	Y           string  `json:"y,omitempty" yaml:"y,omitempty"`
	K           int     `json:"k" yaml:"k"`
	Points      []Point `json:"points" yaml:"points"`
	Assignments []int   `json:"assignments" yaml:"assignments"`
	Centroids   []Point `json:"centroids" yaml:"centroids"`
	Iterations  int     `json:"iterations" yaml:"iterations"`
	Converged   bool    `json:"converged" yaml:"converged"`
}

// Sizes returns the number of points assigned to each cluster.
func (c *Clustering) Sizes() []int {
	out := make([]int, len(c.Centroids))
	for _, a := range c.Assignments {
		out[a]++
	}
	return out
}

// KMeans clusters the rows where both x and y are numbers. The first k such
// rows seed the centroids, so results depend only on row order.
func KMeans(t *table.Table, x, y string, k int) (*Clustering, error) {
	if err := t.Require(x, y); err != nil {
		return nil, err
	}
	var pts []Point
	for _, row := range t.Rows() {
		xv, ok1 := row[x].Float()
		yv, ok2 := row[y].Float()
		if ok1 && ok2 {
			pts = append(pts, Point{X: xv, Y: yv})
		}
	}
	if k < 1 {
		return nil, fmt.Errorf("kmeans: k must be at least 1: %w", table.Insufficient("kmeans", 1, k))
	}
	if len(pts) < k {
		return nil, table.Insufficient(fmt.Sprintf("kmeans k=%d", k), k, len(pts))
	}
	seeds := make([]Point, k)
	copy(seeds, pts[:k])
	c := KMeansPoints(pts, seeds, MaxIterations)
	c.X, c.Y = x, y
	return c, nil
}

// KMeansPoints runs Lloyd's algorithm from the given seeds. Ties in distance
// go to the lowest centroid index and an empty cluster keeps its centroid.
// A non-positive maxIter means MaxIterations.
func KMeansPoints(pts []Point, seeds []Point, maxIter int) *Clustering {
	if maxIter <= 0 {
		maxIter = MaxIterations
	}
	k := len(seeds)
	cent := make([]Point, k)
	copy(cent, seeds)
	assign := make([]int, len(pts))
	for i := range assign {
		assign[i] = -1
	}
	c := &Clustering{K: k, Points: pts}
	changed := true
	for changed && c.Iterations < maxIter {
		c.Iterations++
		changed = assignPoints(pts, cent, assign)
		sum := make([]Point, k)
		cnt := make([]int, k)
		for i, p := range pts {
			a := assign[i]
			sum[a].X += p.X
			sum[a].Y += p.Y
			cnt[a]++
		}
		for j := range cent {
			if cnt[j] > 0 {
				cent[j] = Point{X: sum[j].X / float64(cnt[j]), Y: sum[j].Y / float64(cnt[j])}
			}
		}
	}
	c.Assignments = assign
	c.Centroids = cent
	c.Converged = !changed
	return c
}

// assignPoints moves every point to its nearest centroid and reports whether
// any assignment changed. Large inputs are split into chunks that write
// disjoint slots of assign.
func assignPoints(pts, cent []Point, assign []int) bool {
	nearest := func(p Point) int {
		best, bestD := 0, math.Inf(1)
		for j, q := range cent {
			if d := p.dist(q); d < bestD {
				best, bestD = j, d
			}
		}
		return best
	}
	run := func(lo, hi int) bool {
		moved := false
		for i := lo; i < hi; i++ {
			if a := nearest(pts[i]); a != assign[i] {
				assign[i] = a
				moved = true
			}
		}
		return moved
	}
	if len(pts) < parallelThreshold {
		return run(0, len(pts))
	}
	workers := runtime.GOMAXPROCS(0)
	chunk := (len(pts) + workers - 1) / workers
	moved := make([]bool, workers)
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		lo := w * chunk
		if lo >= len(pts) {
			break
		}
		hi := lo + chunk
		if hi > len(pts) {
			hi = len(pts)
		}
		w := w
		g.Go(func() error {
			moved[w] = run(lo, hi)
			return nil
		})
	}
	_ = g.Wait()
	for _, m := range moved {
		if m {
			return true
		}
	}
	return false
}

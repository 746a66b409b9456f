package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/tabula-cli/internal/table"
)

// ProfileOptions controls Profile.
type ProfileOptions struct {
	// SampleRows determines how many leading rows to include in the profile.
	SampleRows int
	// GroupBy computes per-group summaries for the given column names.
	GroupBy []string
	// Correlations computes Pearson correlations among numeric columns over
	// rows where both columns are present.
	Correlations bool
	// CorrPerGroup computes correlations per group key.
	CorrPerGroup bool
	// Outliers counts values with robust |z| (via MAD) above OutlierThreshold.
	Outliers         bool
	OutlierThreshold float64
	// Units maps column names to a unit label detected at ingestion.
	Units map[string]string
	// SourceRows is the row count before any ingestion cap; 0 means t.Len().
	SourceRows int
}

// DefaultProfileOptions returns reasonable defaults for profiling.
func DefaultProfileOptions() ProfileOptions {
	return ProfileOptions{SampleRows: 5, OutlierThreshold: 3.5}
}

// Profile is a per-column overview of a table, rendered by the report package.
type Profile struct {
	Name      string          `json:"name" yaml:"name"`
	Rows      int             `json:"rows" yaml:"rows"`
	Processed int             `json:"processed" yaml:"processed"`
	Cols      []ColumnProfile `json:"columns" yaml:"columns"`
	Samples   [][]string      `json:"samples,omitempty" yaml:"samples,omitempty"`
	Warnings  []string        `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Groups    []GroupResult   `json:"groups,omitempty" yaml:"groups,omitempty"`
	Corr      *Grid           `json:"correlations,omitempty" yaml:"correlations,omitempty"`
}

// ColumnProfile captures the observed kind and statistics of one column.
type ColumnProfile struct {
	Name    string `json:"name" yaml:"name"`
	Kind    string `json:"kind" yaml:"kind"` // numeric|datetime|categorical|text|unknown
	Unit    string `json:"unit,omitempty" yaml:"unit,omitempty"`
	NonNull int    `json:"nonNull" yaml:"nonNull"`
	Missing int    `json:"missing" yaml:"missing"`
	Unique  int    `json:"unique,omitempty" yaml:"unique,omitempty"`

	Min  float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max  float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Mean float64 `json:"mean,omitempty" yaml:"mean,omitempty"`
	Std  float64 `json:"std,omitempty" yaml:"std,omitempty"`

	OutliersCount    int     `json:"outliersCount,omitempty" yaml:"outliersCount,omitempty"`
	OutliersMaxAbsZ  float64 `json:"outliersMaxAbsZ,omitempty" yaml:"outliersMaxAbsZ,omitempty"`
	OutlierThreshold float64 `json:"outlierThreshold,omitempty" yaml:"outlierThreshold,omitempty"`

	TopValues    []CategoryCount `json:"topValues,omitempty" yaml:"topValues,omitempty"`
	ExampleTexts []string        `json:"exampleTexts,omitempty" yaml:"exampleTexts,omitempty"`
}

type CategoryCount struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

// GroupResult captures aggregated metrics per group key.
type GroupResult struct {
	Key       string                `json:"key" yaml:"key"`
	Size      int                   `json:"size" yaml:"size"`
	Metrics   map[string]NumSummary `json:"metrics" yaml:"metrics"`
	CorrPairs []Pair                `json:"corrPairs,omitempty" yaml:"corrPairs,omitempty"`
}

type NumSummary struct {
	Count int     `json:"count" yaml:"count"`
	Min   float64 `json:"min" yaml:"min"`
	Max   float64 `json:"max" yaml:"max"`
	Mean  float64 `json:"mean" yaml:"mean"`
}

const (
	maxCategories   = 10000
	maxCategoryLen  = 64
	maxTopValues    = 8
	maxGroups       = 20
	maxGroupPairs   = 10
	minOutlierCount = 8
)

// BuildProfile walks every column once and summarizes it by its
// predominant cell kind. Text cells that parse as dates count as datetime.
func BuildProfile(t *table.Table, opt ProfileOptions) (*Profile, error) {
	if err := t.Require(opt.GroupBy...); err != nil {
		return nil, fmt.Errorf("group by: %w", err)
	}
	p := &Profile{Name: t.Name, Rows: t.Len(), Processed: t.Len()}
	if opt.SourceRows > t.Len() {
		p.Rows = opt.SourceRows
		p.Warnings = append(p.Warnings, fmt.Sprintf("processed only %d/%d rows due to MaxRows", p.Processed, p.Rows))
	}
	sampleRows := opt.SampleRows
	if sampleRows <= 0 {
		sampleRows = 5
	}
	names := t.ColumnNames()
	for i := 0; i < sampleRows && i < t.Len(); i++ {
		row := make([]string, len(names))
		for j, c := range names {
			row[j] = t.Value(i, c).String()
		}
		p.Samples = append(p.Samples, row)
	}

	var numCols []string
	for _, c := range names {
		cp := profileColumn(t, c, opt)
		if cp.Kind == "numeric" {
			numCols = append(numCols, c)
		}
		p.Cols = append(p.Cols, cp)
	}

	if len(opt.GroupBy) > 0 {
		p.Groups = profileGroups(t, numCols, opt)
	}
	if opt.Correlations && len(numCols) >= 2 {
		p.Corr = completeGrid(t.Rows(), numCols)
	}
	return p, nil
}

func profileColumn(t *table.Table, name string, opt ProfileOptions) ColumnProfile {
	cp := ColumnProfile{Name: name, Unit: opt.Units[name]}
	var nums []float64
	var dtCnt, txtCnt int
	cats := map[string]int{}
	for _, row := range t.Rows() {
		v := row[name]
		if v.IsAbsent() {
			cp.Missing++
			continue
		}
		cp.NonNull++
		if f, ok := v.Float(); ok {
			nums = append(nums, f)
			continue
		}
		s := strings.TrimSpace(v.String())
		if _, ok := parseTimeMaybe(s); ok {
			dtCnt++
			continue
		}
		txtCnt++
		if len(cats) <= maxCategories && len(s) <= maxCategoryLen {
			cats[s]++
		}
		if len(cp.ExampleTexts) < 3 {
			cp.ExampleTexts = append(cp.ExampleTexts, s)
		}
	}

	cp.Kind = "unknown"
	switch {
	case len(nums) >= dtCnt && len(nums) >= txtCnt && len(nums) > 0:
		cp.Kind = "numeric"
		cp.ExampleTexts = nil
		cp.Min, cp.Max = floats.Min(nums), floats.Max(nums)
		cp.Mean = stat.Mean(nums, nil)
		if len(nums) > 1 {
			cp.Std = stat.StdDev(nums, nil)
		}
		if opt.Outliers && len(nums) >= minOutlierCount {
			thr := opt.OutlierThreshold
			if thr <= 0 {
				thr = 3.5
			}
			cp.OutliersCount, cp.OutliersMaxAbsZ = robustOutliers(nums, thr)
			cp.OutlierThreshold = thr
		}
	case dtCnt >= txtCnt && dtCnt > 0:
		cp.Kind = "datetime"
		cp.ExampleTexts = nil
	case len(cats) > 0:
		cp.Kind = "categorical"
		cp.ExampleTexts = nil
		tops := make([]CategoryCount, 0, len(cats))
		for k, v := range cats {
			tops = append(tops, CategoryCount{Value: k, Count: v})
		}
		sort.Slice(tops, func(i, j int) bool {
			if tops[i].Count == tops[j].Count {
				return tops[i].Value < tops[j].Value
			}
			return tops[i].Count > tops[j].Count
		})
		if len(tops) > maxTopValues {
			tops = tops[:maxTopValues]
		}
		cp.TopValues = tops
		cp.Unique = len(cats)
	case txtCnt > 0:
		cp.Kind = "text"
	}
	return cp
}

// robustOutliers counts values whose modified z-score 0.6745*(x-median)/MAD
// exceeds thr in magnitude. A zero MAD reports nothing.
func robustOutliers(vals []float64, thr float64) (count int, maxAbsZ float64) {
	median, err := stats.Median(vals)
	if err != nil {
		return 0, 0
	}
	mad, err := stats.MedianAbsoluteDeviation(vals)
	if err != nil || mad == 0 {
		return 0, 0
	}
	for _, v := range vals {
		az := math.Abs(0.6745 * (v - median) / mad)
		if az > thr {
			count++
		}
		if az > maxAbsZ {
			maxAbsZ = az
		}
	}
	return count, maxAbsZ
}

func profileGroups(t *table.Table, numCols []string, opt ProfileOptions) []GroupResult {
	type member struct {
		rows []table.Row
	}
	groups := map[string]*member{}
	var order []string
	for _, row := range t.Rows() {
		parts := make([]string, 0, len(opt.GroupBy))
		for _, g := range opt.GroupBy {
			parts = append(parts, fmt.Sprintf("%s=%s", g, safeVal(row[g].String())))
		}
		key := strings.Join(parts, " | ")
		m := groups[key]
		if m == nil {
			m = &member{}
			groups[key] = m
			order = append(order, key)
		}
		m.rows = append(m.rows, row)
	}

	out := make([]GroupResult, 0, len(groups))
	for _, key := range order {
		m := groups[key]
		gr := GroupResult{Key: key, Size: len(m.rows), Metrics: map[string]NumSummary{}}
		for _, c := range numCols {
			var vals []float64
			for _, row := range m.rows {
				if f, ok := row[c].Float(); ok {
					vals = append(vals, f)
				}
			}
			if len(vals) == 0 {
				continue
			}
			gr.Metrics[c] = NumSummary{Count: len(vals), Min: floats.Min(vals), Max: floats.Max(vals), Mean: mean(vals)}
		}
		if opt.CorrPerGroup && len(numCols) >= 2 {
			gr.CorrPairs = topPairs(m.rows, numCols, maxGroupPairs)
		}
		out = append(out, gr)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Size == out[j].Size {
			return out[i].Key < out[j].Key
		}
		return out[i].Size > out[j].Size
	})
	if len(out) > maxGroups {
		out = out[:maxGroups]
	}
	return out
}

// completeCorr correlates a and b over rows where both hold numbers.
// ok is false when fewer than two such rows exist or r is undefined.
func completeCorr(rows []table.Row, a, b string) (r float64, n int, ok bool) {
	var xs, ys []float64
	for _, row := range rows {
		x, ok1 := row[a].Float()
		y, ok2 := row[b].Float()
		if ok1 && ok2 {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	if len(xs) < 2 {
		return 0, len(xs), false
	}
	r = stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, len(xs), false
	}
	return math.Max(-1, math.Min(1, r)), len(xs), true
}

func completeGrid(rows []table.Row, cols []string) *Grid {
	n := len(cols)
	vals := make([][]float64, n)
	for i := range vals {
		vals[i] = make([]float64, n)
		vals[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r, _, _ := completeCorr(rows, cols[i], cols[j])
			vals[i][j], vals[j][i] = r, r
		}
	}
	return &Grid{Columns: cols, Values: vals}
}

func topPairs(rows []table.Row, cols []string, limit int) []Pair {
	var pairs []Pair
	for i := 0; i < len(cols); i++ {
		for j := i + 1; j < len(cols); j++ {
			if r, n, ok := completeCorr(rows, cols[i], cols[j]); ok {
				pairs = append(pairs, Pair{A: cols[i], B: cols[j], R: r, N: n})
			}
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		ai, aj := math.Abs(pairs[i].R), math.Abs(pairs[j].R)
		if ai == aj {
			return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
		}
		return ai > aj
	})
	if len(pairs) > limit {
		pairs = pairs[:limit]
	}
	return pairs
}

func parseTimeMaybe(s string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
		"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

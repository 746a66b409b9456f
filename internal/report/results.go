package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/KaramelBytes/tabula-cli/internal/analysis"
	"github.com/KaramelBytes/tabula-cli/internal/query"
	"github.com/KaramelBytes/tabula-cli/internal/table"
	"github.com/KaramelBytes/tabula-cli/internal/transform"
)

// Overview renders the dataset dashboard and its preview rows.
func (r *Renderer) Overview(o *analysis.DatasetOverview) string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if o.Name != "" {
		fmt.Fprintf(&b, "File: %s\n", o.Name)
	}
	fmt.Fprintf(&b, "Rows: %d\nColumns: %d (numeric %d)\nMissing cells: %d\n",
		o.Rows, len(o.Columns), o.NumericColumns, o.MissingCells)

	b.WriteString("\n[SCHEMA]\n")
	for _, c := range o.Columns {
		fmt.Fprintf(&b, "- %s: %s\n", safeName(c.Name), c.Kind)
	}
	if len(o.Preview) > 0 {
		names := make([]string, len(o.Columns))
		for i, c := range o.Columns {
			names[i] = c.Name
		}
		b.WriteString("\n[HEAD ROWS]\n")
		writeRows(&b, names, o.Preview)
	}
	return b.String()
}

// Summaries renders one block per column summary.
func (r *Renderer) Summaries(ss []analysis.Summary) string {
	var b strings.Builder
	b.WriteString("[DESCRIPTIVE STATISTICS]\n")
	if len(ss) == 0 {
		b.WriteString("- no numeric columns\n")
	}
	for i := range ss {
		r.writeSummary(&b, &ss[i])
	}
	return b.String()
}

// Summary renders a single column summary.
func (r *Renderer) Summary(s *analysis.Summary) string {
	var b strings.Builder
	b.WriteString("[DESCRIPTIVE STATISTICS]\n")
	r.writeSummary(&b, s)
	return b.String()
}

func (r *Renderer) writeSummary(b *strings.Builder, s *analysis.Summary) {
	fmt.Fprintf(b, "- %s (n=%d)\n", safeName(s.Column), s.Count)
	fmt.Fprintf(b, "  • mean %s, std %s, variance %s\n", r.Num(s.Mean), r.Num(s.StdDev), r.Num(s.Variance))
	fmt.Fprintf(b, "  • min %s, q1 %s, median %s, q3 %s, max %s\n",
		r.Num(s.Min), r.Num(s.Q1), r.Num(s.Median), r.Num(s.Q3), r.Num(s.Max))
	fmt.Fprintf(b, "  • iqr %s, fences [%s, %s]\n", r.Num(s.IQR), r.Num(s.Lower), r.Num(s.Upper))
	if len(s.Outliers) == 0 {
		b.WriteString("  • outliers: none\n")
		return
	}
	vals := make([]string, len(s.Outliers))
	for i, v := range s.Outliers {
		vals[i] = r.Num(v)
	}
	fmt.Fprintf(b, "  • outliers (%d): %s\n", len(s.Outliers), strings.Join(vals, ", "))
}

// Histogram renders bin ranges and counts with a proportional bar.
func (r *Renderer) Histogram(col string, bins []analysis.Bin) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[HISTOGRAM] %s\n", safeName(col))
	peak := 0
	for _, bin := range bins {
		peak = max(peak, bin.Count)
	}
	rows := make([][]string, len(bins))
	for i, bin := range bins {
		bar := ""
		if peak > 0 {
			bar = strings.Repeat("#", bin.Count*30/peak)
		}
		rows[i] = []string{r.Num(bin.Lower), r.Num(bin.Upper), strconv.Itoa(bin.Count), bar}
	}
	writeTable(&b, []string{"from", "to", "count", "bar"}, rows)
	return b.String()
}

// Correlations renders pairs in the given order, at most top of them when
// top > 0.
func (r *Renderer) Correlations(pairs []analysis.Pair, top int) string {
	var b strings.Builder
	b.WriteString("[CORRELATIONS]\n")
	if top > 0 && len(pairs) > top {
		pairs = pairs[:top]
	}
	if len(pairs) == 0 {
		b.WriteString("- fewer than two numeric columns\n")
	}
	for _, p := range pairs {
		fmt.Fprintf(&b, "- %s ~ %s: r=%s (n=%d)%s\n", p.A, p.B, Fixed(p.R, 3), p.N, strength(p.R))
	}
	return b.String()
}

func strength(r float64) string {
	switch a := math.Abs(r); {
	case math.IsNaN(a):
		return ""
	case a > 0.7:
		return ", strong"
	case a > 0.4:
		return ", moderate"
	default:
		return ", weak"
	}
}

// Grid renders the full correlation matrix.
func (r *Renderer) Grid(g *analysis.Grid) string {
	var b strings.Builder
	b.WriteString("[CORRELATION MATRIX]\n")
	header := append([]string{"column"}, g.Columns...)
	rows := make([][]string, len(g.Columns))
	for i, c := range g.Columns {
		rows[i] = append(rows[i], c)
		for _, v := range g.Values[i] {
			rows[i] = append(rows[i], Fixed(v, 3))
		}
	}
	writeTable(&b, header, rows)
	return b.String()
}

// Regression renders a least-squares fit.
func (r *Renderer) Regression(f *analysis.Fit) string {
	var b strings.Builder
	b.WriteString("[LINEAR REGRESSION]\n")
	if f.X != "" || f.Y != "" {
		fmt.Fprintf(&b, "Model: %s = slope * %s + intercept\n", f.Y, f.X)
	}
	fmt.Fprintf(&b, "- slope: %s\n- intercept: %s\n- r²: %s\n- n: %d\n",
		Fixed(f.Slope, r.CoefDecimals), Fixed(f.Intercept, r.CoefDecimals), Fixed(f.RSquared, r.CoefDecimals), f.N)
	return b.String()
}

// Forecast renders the fitted trend and the projected values.
func (r *Renderer) Forecast(p *analysis.Projection) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[FORECAST] %s\n", safeName(p.Column))
	fmt.Fprintf(&b, "- trend: %s (slope %s per step, r² %s, n=%d)\n",
		p.Direction, Fixed(p.Fit.Slope, r.CoefDecimals), Fixed(p.Fit.RSquared, r.CoefDecimals), p.Fit.N)
	rows := make([][]string, len(p.Values))
	for i, v := range p.Values {
		rows[i] = []string{strconv.Itoa(p.Fit.N + i), r.Num(v)}
	}
	if len(rows) > 0 {
		b.WriteString("\n")
		writeTable(&b, []string{"index", "value"}, rows)
	}
	return b.String()
}

// Clustering renders centroids, cluster sizes and convergence.
func (r *Renderer) Clustering(c *analysis.Clustering) string {
	var b strings.Builder
	b.WriteString("[K-MEANS CLUSTERING]\n")
	fmt.Fprintf(&b, "Columns: %s, %s\nk: %d\nPoints: %d\n", c.X, c.Y, c.K, len(c.Points))
	if c.Converged {
		fmt.Fprintf(&b, "Converged after %d iterations\n", c.Iterations)
	} else {
		fmt.Fprintf(&b, "Stopped after %d iterations without converging\n", c.Iterations)
	}
	b.WriteString("\n")
	sizes := c.Sizes()
	rows := make([][]string, len(c.Centroids))
	for i, p := range c.Centroids {
		rows[i] = []string{strconv.Itoa(i), r.Num(p.X), r.Num(p.Y), strconv.Itoa(sizes[i])}
	}
	writeTable(&b, []string{"cluster", c.X, c.Y, "size"}, rows)
	return b.String()
}

// Pivot renders the pivot grid. Cells without qualifying values print N/A.
func (r *Renderer) Pivot(p *analysis.PivotTable) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[PIVOT] %s of %s by %s x %s\n", p.Aggregator, p.ValueField, p.RowField, p.ColField)
	header := append([]string{p.RowField}, p.ColKeys...)
	rows := make([][]string, len(p.RowKeys))
	for i, rk := range p.RowKeys {
		rows[i] = append(rows[i], rk)
		for _, cell := range p.Cells[i] {
			if !cell.Valid {
				rows[i] = append(rows[i], "N/A")
				continue
			}
			rows[i] = append(rows[i], r.Num(cell.Value))
		}
	}
	writeTable(&b, header, rows)
	return b.String()
}

// Decomposition renders the trend and residual summary.
func (r *Renderer) Decomposition(d *analysis.Decomposition) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[TIME SERIES DECOMPOSITION] %s\n", safeName(d.Column))
	fmt.Fprintf(&b, "- points: %d\n- window: %d\n- trend mean: %s\n- residual mean: %s\n- volatility: %s\n",
		len(d.Values), d.Window, r.Num(d.TrendMean), r.Num(d.ResidualMean), r.Num(d.Volatility))
	return b.String()
}

// Ranking renders feature importances.
func (r *Renderer) Ranking(rk *analysis.Ranking) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[FEATURE RANKING] target %s\n", safeName(rk.Target))
	fmt.Fprintf(&b, "Samples: %d\nTarget classes: %d\n", rk.Samples, len(rk.TargetClasses))
	b.WriteString("Importance is |r| against the target, not a trained model.\n\n")
	rows := make([][]string, len(rk.Features))
	for i, f := range rk.Features {
		rows[i] = []string{strconv.Itoa(i + 1), f.Name, Fixed(f.Importance, 3)}
	}
	writeTable(&b, []string{"rank", "feature", "importance"}, rows)
	return b.String()
}

// Quality renders missing counts and duplicate rows.
func (r *Renderer) Quality(q *analysis.QualityReport) string {
	var b strings.Builder
	b.WriteString("[DATA QUALITY]\n")
	fmt.Fprintf(&b, "Rows: %d\n\n[MISSING VALUES]\n", q.Rows)
	listed := false
	for _, m := range q.Missing {
		if m.Count == 0 {
			continue
		}
		listed = true
		fmt.Fprintf(&b, "- %s: %d (%.1f%%)\n", safeName(m.Column), m.Count, m.Percent)
	}
	if !listed {
		b.WriteString("- none\n")
	}
	b.WriteString("\n[DUPLICATE ROWS]\n")
	if len(q.Duplicates) == 0 {
		b.WriteString("- none\n")
		return b.String()
	}
	idx := make([]string, len(q.Duplicates))
	for i, d := range q.Duplicates {
		idx[i] = strconv.Itoa(d + 1)
	}
	fmt.Fprintf(&b, "- %d duplicate rows: %s\n", len(q.Duplicates), strings.Join(idx, ", "))
	return b.String()
}

// Insights renders findings grouped by kind.
func (r *Renderer) Insights(ins []analysis.Insight) string {
	var b strings.Builder
	b.WriteString("[INSIGHTS]\n")
	if len(ins) == 0 {
		b.WriteString("- nothing notable\n")
	}
	for _, in := range ins {
		fmt.Fprintf(&b, "- %s: %s\n", in.Kind, in.Message)
	}
	return b.String()
}

// Impute renders what an imputation changed.
func (r *Renderer) Impute(res *transform.ImputeResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[IMPUTATION] %s (%s)\n", safeName(res.Column), res.Strategy)
	if res.Strategy == transform.StrategyDrop {
		fmt.Fprintf(&b, "- dropped rows: %d\n", res.Dropped)
	} else {
		fill := res.Fill.String()
		if f, ok := res.Fill.Float(); ok {
			fill = r.Num(f)
		}
		fmt.Fprintf(&b, "- fill value: %s\n- filled cells: %d\n", fill, res.Filled)
	}
	fmt.Fprintf(&b, "- rows: %d\n", res.Rows)
	return b.String()
}

// Query renders matching rows as a table.
func (r *Renderer) Query(res *query.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[QUERY RESULT] %d of %d matching rows\n", len(res.Rows), res.Matched)
	if len(res.Rows) > 0 {
		writeRows(&b, res.Columns, res.Rows)
	}
	return b.String()
}

// Journal renders the mutation history of a table.
func (r *Renderer) Journal(j []table.Mutation) string {
	var b strings.Builder
	b.WriteString("[CHANGES]\n")
	if len(j) == 0 {
		b.WriteString("- none\n")
	}
	for i, m := range j {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, m.Op, m.Detail)
	}
	return b.String()
}

func writeRows(b *strings.Builder, cols []string, rows []table.Row) {
	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = make([]string, len(cols))
		for j, c := range cols {
			cells[i][j] = row[c].String()
		}
	}
	writeTable(b, cols, cells)
}

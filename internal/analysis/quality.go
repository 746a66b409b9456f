package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/KaramelBytes/tabula-cli/internal/table"
)

// Missing counts the absent cells of one column.
type Missing struct {
	Column  string  `json:"column" yaml:"column"`
	Count   int     `json:"count" yaml:"count"`
	Percent float64 `json:"percent" yaml:"percent"`
}

// QualityReport lists missing cells per column and rows that repeat an
// earlier row exactly.
type QualityReport struct {
	Rows       int       `json:"rows" yaml:"rows"`
	Missing    []Missing `json:"missing" yaml:"missing"`
	Duplicates []int     `json:"duplicates" yaml:"duplicates"`
}

// Quality scans the table once for missing cells and duplicate rows.
func Quality(t *table.Table) *QualityReport {
	names := t.ColumnNames()
	q := &QualityReport{Rows: t.Len(), Missing: make([]Missing, len(names)), Duplicates: []int{}}
	for i, c := range names {
		q.Missing[i].Column = c
	}
	seen := make(map[string]bool, t.Len())
	for idx, row := range t.Rows() {
		k := rowKey(names, row)
		if seen[k] {
			q.Duplicates = append(q.Duplicates, idx)
		} else {
			seen[k] = true
		}
		for i, c := range names {
			if row[c].IsAbsent() {
				q.Missing[i].Count++
			}
		}
	}
	for i := range q.Missing {
		q.Missing[i].Percent = percent(q.Missing[i].Count, t.Len())
	}
	return q
}

// rowKey identifies a row by the kind and text of every cell, so Number(1)
// and Text("1") differ.
func rowKey(names []string, row table.Row) string {
	var b strings.Builder
	for _, c := range names {
		v := row[c]
		b.WriteByte(byte('0' + v.Kind()))
		b.WriteString(v.String())
		b.WriteByte(0x1f)
	}
	return b.String()
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	p, _ := stats.Round(float64(n)*100/float64(total), 1)
	return p
}

// DatasetOverview is the dashboard view of a table.
type DatasetOverview struct {
	Name           string         `json:"name" yaml:"name"`
	Rows           int            `json:"rows" yaml:"rows"`
	Columns        []table.Column `json:"columns" yaml:"columns"`
	NumericColumns int            `json:"numericColumns" yaml:"numericColumns"`
	MissingCells   int            `json:"missingCells" yaml:"missingCells"`
	Preview        []table.Row    `json:"preview" yaml:"-"`
}

// Overview reports row, column and missing cell counts plus the first
// preview rows.
func Overview(t *table.Table, preview int) *DatasetOverview {
	o := &DatasetOverview{
		Name:           t.Name,
		Rows:           t.Len(),
		Columns:        t.Columns(),
		NumericColumns: len(t.NumericColumns()),
	}
	names := t.ColumnNames()
	for _, row := range t.Rows() {
		for _, c := range names {
			if row[c].IsAbsent() {
				o.MissingCells++
			}
		}
	}
	if preview > t.Len() {
		preview = t.Len()
	}
	for i := 0; i < preview; i++ {
		o.Preview = append(o.Preview, t.Row(i))
	}
	return o
}

// InsightKind classifies an Insight.
type InsightKind string

const (
	InsightAnomaly     InsightKind = "anomaly"
	InsightCorrelation InsightKind = "correlation"
	InsightQuality     InsightKind = "quality"
)

// Insight is one notable finding about the table.
type Insight struct {
	Kind    InsightKind `json:"kind" yaml:"kind"`
	Columns []string    `json:"columns" yaml:"columns"`
	Value   float64     `json:"value" yaml:"value"`
	Message string      `json:"message" yaml:"message"`
}

// InsightOptions sets the thresholds Insights applies.
type InsightOptions struct {
	// CorrThreshold flags pairs with |r| strictly above it.
	CorrThreshold float64
	// MissingRatio flags columns whose absent share strictly exceeds it.
	MissingRatio float64
}

// DefaultInsightOptions returns the stock thresholds.
func DefaultInsightOptions() InsightOptions {
	return InsightOptions{CorrThreshold: 0.7, MissingRatio: 0.1}
}

// Insights reports IQR outliers per numeric column, strongly correlated
// column pairs and columns with many missing cells, in that order.
func Insights(t *table.Table, opt InsightOptions) ([]Insight, error) {
	var out []Insight
	numeric := t.NumericColumns()
	for _, c := range numeric {
		vals, err := t.Numbers(c)
		if err != nil {
			return nil, err
		}
		if len(vals) == 0 {
			continue
		}
		s := Summarize(vals)
		if n := len(s.Outliers); n > 0 {
			pct := percent(n, len(vals))
			out = append(out, Insight{
				Kind:    InsightAnomaly,
				Columns: []string{c},
				Value:   float64(n),
				Message: fmt.Sprintf("%s has %d outliers (%.1f%%)", c, n, pct),
			})
		}
	}
	for i := 0; i < len(numeric); i++ {
		for j := i + 1; j < len(numeric); j++ {
			p, err := Correlation(t, numeric[i], numeric[j])
			if err != nil {
				return nil, err
			}
			if math.Abs(p.R) > opt.CorrThreshold {
				out = append(out, Insight{
					Kind:    InsightCorrelation,
					Columns: []string{p.A, p.B},
					Value:   p.R,
					Message: fmt.Sprintf("%s and %s are strongly correlated (r=%.3f)", p.A, p.B, p.R),
				})
			}
		}
	}
	q := Quality(t)
	for _, m := range q.Missing {
		if float64(m.Count) > float64(t.Len())*opt.MissingRatio {
			out = append(out, Insight{
				Kind:    InsightQuality,
				Columns: []string{m.Column},
				Value:   float64(m.Count),
				Message: fmt.Sprintf("%s has %d missing values (%.1f%%)", m.Column, m.Count, m.Percent),
			})
		}
	}
	return out, nil
}

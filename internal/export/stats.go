package export

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/tabula-cli/internal/analysis"
	"github.com/KaramelBytes/tabula-cli/internal/table"
	"github.com/KaramelBytes/tabula-cli/internal/utils"
)

// ColumnStats is the per-column entry of a statistics export.
type ColumnStats struct {
	Column string  `json:"column" yaml:"column"`
	Count  int     `json:"count" yaml:"count"`
	Mean   float64 `json:"mean" yaml:"mean"`
	Median float64 `json:"median" yaml:"median"`
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
	StdDev float64 `json:"stdDev" yaml:"stdDev"`
}

// StatsDocument is the statistics export of a table.
type StatsDocument struct {
	Dataset   string        `json:"dataset" yaml:"dataset"`
	Timestamp string        `json:"timestamp" yaml:"timestamp"`
	Rows      int           `json:"rowCount" yaml:"rowCount"`
	Columns   []ColumnStats `json:"columns" yaml:"columns"`
}

// Stats summarizes every numeric column of t that holds at least one number.
func Stats(t *table.Table, now time.Time) *StatsDocument {
	doc := &StatsDocument{
		Dataset:   t.Name,
		Timestamp: now.UTC().Format(time.RFC3339Nano),
		Rows:      t.Len(),
		Columns:   []ColumnStats{},
	}
	for _, s := range analysis.DescribeAll(t) {
		doc.Columns = append(doc.Columns, ColumnStats{
			Column: s.Column,
			Count:  s.Count,
			Mean:   s.Mean,
			Median: s.Median,
			Min:    s.Min,
			Max:    s.Max,
			StdDev: s.StdDev,
		})
	}
	return doc
}

// WriteStats encodes Stats(t) as JSON or YAML.
func WriteStats(w io.Writer, t *table.Table, f Format, now time.Time) error {
	doc := Stats(t, now)
	switch f {
	case FormatJSON:
		b, err := utils.PrettyJSON(doc)
		if err != nil {
			return err
		}
		_, err = w.Write(append(b, '\n'))
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("statistics export to %s is not supported (want json or yaml)", f)
	}
}

package ingest

import "github.com/KaramelBytes/tabula-cli/internal/table"

// Options controls how raw files become a Table.
type Options struct {
	// MaxRows limits rows kept; 0 means unlimited. Rows past the cap are
	// still counted in Result.SourceRows.
	MaxRows int
	// Delimiter for CSV. If 0, '\t' for .tsv files, else sniffed from the
	// header among ',', ';', '\t'.
	Delimiter rune
	// Numeric parsing locale. With both separators 0 and LocaleNumbers
	// false, only plain decimal literals become numbers.
	DecimalSeparator   rune
	ThousandsSeparator rune // optional; if 0, strip common separators (',' '.' space)
	// LocaleNumbers enables per-value separator detection and '%' stripping
	// when no separator is configured.
	LocaleNumbers bool
	// NormalizeUnits strips a unit suffix such as "(g/L)" from headers and
	// converts values via UnitTargets.
	NormalizeUnits bool
	UnitTargets    map[string]string // map[fromUnit]toUnit, e.g., {"g/L":"mg/L", "°F":"°C"}
	// XLSX sheet selection. SheetIndex is 1-based; both empty means first sheet.
	SheetName  string
	SheetIndex int
}

// DefaultOptions returns reasonable defaults for ingestion.
func DefaultOptions() Options {
	return Options{
		MaxRows: 100000,
		UnitTargets: map[string]string{
			"g/L":  "mg/L",
			"ug/L": "mg/L",
			"°F":   "°C",
		},
	}
}

func (o Options) locale() bool {
	return o.LocaleNumbers || o.DecimalSeparator != 0 || o.ThousandsSeparator != 0
}

// Result is a loaded table plus what ingestion observed on the way.
type Result struct {
	Table *table.Table
	// SourceRows counts data rows in the source, including rows past MaxRows.
	SourceRows int
	// Units maps cleaned column names to the unit taken from their header.
	Units     map[string]string
	Delimiter rune
	Sheet     string
}

// Truncated reports whether MaxRows dropped rows.
func (r *Result) Truncated() bool { return r.SourceRows > r.Table.Len() }

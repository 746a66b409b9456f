// Package report renders analysis results as plain-text Markdown made of
// bracketed [SECTION] headings, bullet lists and pipe tables.
package report

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Renderer holds the number formatting used by every section.
type Renderer struct {
	// Decimals is the fixed precision for statistics.
	Decimals int32
	// CoefDecimals is the fixed precision for regression coefficients.
	CoefDecimals int32
}

// New returns a Renderer printing statistics with decimals places and
// regression coefficients with two more.
func New(decimals int) *Renderer {
	if decimals < 0 {
		decimals = 0
	}
	return &Renderer{Decimals: int32(decimals), CoefDecimals: int32(decimals) + 2}
}

// Num renders f with the statistics precision.
func (r *Renderer) Num(f float64) string { return Fixed(f, r.Decimals) }

// Fixed renders f rounded half away from zero to places decimals. NaN
// and infinities render as N/A.
func Fixed(f float64, places int32) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "N/A"
	}
	return decimal.NewFromFloat(f).StringFixed(places)
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

func clip(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}

// writeTable writes a pipe table. Cells are sanitized and clipped to 80 bytes.
func writeTable(b *strings.Builder, header []string, rows [][]string) {
	b.WriteString("| ")
	for i, h := range header {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(safeName(h))
	}
	b.WriteString(" |\n| ")
	for i := range header {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString("---")
	}
	b.WriteString(" |\n")
	for _, row := range rows {
		b.WriteString("| ")
		for i := range header {
			if i > 0 {
				b.WriteString(" | ")
			}
			val := ""
			if i < len(row) {
				val = row[i]
			}
			b.WriteString(safeVal(clip(val, 80)))
		}
		b.WriteString(" |\n")
	}
}

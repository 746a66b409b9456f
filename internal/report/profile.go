package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/tabula-cli/internal/analysis"
)

// Profile renders a column profile with schema, group, correlation and
// sample sections.
func (r *Renderer) Profile(p *analysis.Profile) string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if p.Name != "" {
		fmt.Fprintf(&b, "File: %s\n", p.Name)
	}
	if p.Rows > 0 {
		if p.Processed > 0 && p.Processed < p.Rows {
			fmt.Fprintf(&b, "Rows: ~%d (processed %d)\n", p.Rows, p.Processed)
		} else {
			fmt.Fprintf(&b, "Rows: %d\n", p.Rows)
		}
	}
	fmt.Fprintf(&b, "Columns: %d\n\n", len(p.Cols))

	b.WriteString("[SCHEMA]\n")
	for _, c := range p.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		name := safeName(c.Name)
		if c.Unit != "" {
			name = fmt.Sprintf("%s [%s]", name, c.Unit)
		}
		fmt.Fprintf(&b, "- %s: %s (non-null %d, missing %.1f%%)", name, c.Kind, c.NonNull, missPct)
		switch c.Kind {
		case "numeric":
			fmt.Fprintf(&b, "; min %s, max %s, mean %s, std %s", r.Num(c.Min), r.Num(c.Max), r.Num(c.Mean), r.Num(c.Std))
			if c.OutlierThreshold > 0 {
				fmt.Fprintf(&b, "; outliers: %d above |z|>%.1f", c.OutliersCount, c.OutlierThreshold)
				if c.OutliersMaxAbsZ > 0 {
					fmt.Fprintf(&b, " (max |z|≈%.2f)", c.OutliersMaxAbsZ)
				}
			}
		case "categorical":
			if len(c.TopValues) > 0 {
				b.WriteString("; top: ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					fmt.Fprintf(&b, "%s(%d)", safeVal(kv.Value), kv.Count)
				}
				if c.Unique > len(c.TopValues) {
					fmt.Fprintf(&b, "; unique=%d", c.Unique)
				}
			}
		case "text":
			if len(c.ExampleTexts) > 0 {
				b.WriteString("; e.g., ")
				for i, ex := range c.ExampleTexts {
					if i > 0 {
						b.WriteString(" | ")
					}
					b.WriteString(safeVal(ex))
				}
			}
		}
		b.WriteString("\n")
	}

	if len(p.Groups) > 0 {
		b.WriteString("\n[GROUP-BY SUMMARY]\n")
		for _, g := range p.Groups {
			fmt.Fprintf(&b, "- %s (n=%d)\n", g.Key, g.Size)
			keys := make([]string, 0, len(g.Metrics))
			for k := range g.Metrics {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			// at most 6 metrics per group
			for _, k := range keys[:min(6, len(keys))] {
				m := g.Metrics[k]
				fmt.Fprintf(&b, "  • %s: mean %s (min %s, max %s)\n", k, r.Num(m.Mean), r.Num(m.Min), r.Num(m.Max))
			}
		}
	}

	hasGroupCorr := false
	for _, g := range p.Groups {
		if len(g.CorrPairs) > 0 {
			hasGroupCorr = true
			break
		}
	}
	if hasGroupCorr {
		b.WriteString("\n[PER-GROUP CORRELATIONS]\n")
		for _, g := range p.Groups {
			if len(g.CorrPairs) == 0 {
				continue
			}
			fmt.Fprintf(&b, "- %s:\n", g.Key)
			for _, pr := range g.CorrPairs[:min(8, len(g.CorrPairs))] {
				fmt.Fprintf(&b, "  • %s ~ %s: r=%s\n", pr.A, pr.B, Fixed(pr.R, 3))
			}
		}
	}

	if p.Corr != nil && len(p.Corr.Columns) >= 2 {
		b.WriteString("\n[CORRELATIONS]\n")
		var pairs []analysis.Pair
		n := len(p.Corr.Columns)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				pairs = append(pairs, analysis.Pair{A: p.Corr.Columns[i], B: p.Corr.Columns[j], R: p.Corr.Values[i][j]})
			}
		}
		sort.SliceStable(pairs, func(i, j int) bool {
			ai, aj := math.Abs(pairs[i].R), math.Abs(pairs[j].R)
			switch {
			case math.IsNaN(ai):
				return false
			case math.IsNaN(aj):
				return true
			case ai == aj:
				return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
			}
			return ai > aj
		})
		for _, pr := range pairs[:min(10, len(pairs))] {
			fmt.Fprintf(&b, "- %s ~ %s: r=%s\n", pr.A, pr.B, Fixed(pr.R, 3))
		}
	}

	if len(p.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		header := make([]string, len(p.Cols))
		for i, c := range p.Cols {
			header[i] = c.Name
		}
		writeTable(&b, header, p.Samples)
	}
	writeNotes(&b, p.Warnings)
	return b.String()
}

func writeNotes(b *strings.Builder, notes []string) {
	if len(notes) == 0 {
		return
	}
	b.WriteString("\n[NOTES]\n")
	for _, n := range notes {
		b.WriteString("- ")
		b.WriteString(n)
		b.WriteString("\n")
	}
}

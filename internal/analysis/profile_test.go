package analysis

import (
	"math"
	"sort"
	"testing"

	"github.com/KaramelBytes/tabula-cli/internal/table"
)

var (
	groups = []string{"A", "A", "A", "B", "B", "B", "A", "B", "A"}
	cats   = []string{"alpha", "alpha", "beta", "alpha", "beta", "alpha", "gamma", "beta", "alpha"}

	processedConcentration = []float64{500, 600, 550, 700, 650, 680, 520, 750, 3000}
	processedScore         = []float64{10, 11, 9.5, 10.5, 9.8, 10.2, 8.8, 9.7, 50}
	processedLocale        = []float64{1000, 1100, 900, 1050, 980, 1020, 880, 970, 5000}
)

func profileTable(t *testing.T) *table.Table {
	t.Helper()
	cols := []string{"Group", "Concentration", "Score", "LocaleNumber", "Category", "When"}
	rows := make([][]any, len(groups))
	for i := range groups {
		rows[i] = []any{groups[i], processedConcentration[i], processedScore[i], processedLocale[i], cats[i], "2024-01-0" + string(rune('1'+i))}
	}
	tb := newTable(t, cols, rows...)
	tb.Name = "metrics.csv"
	return tb
}

func TestBuildProfile(t *testing.T) {
	opt := DefaultProfileOptions()
	opt.SampleRows = 3
	opt.GroupBy = []string{"Group"}
	opt.Correlations = true
	opt.CorrPerGroup = true
	opt.Outliers = true
	opt.Units = map[string]string{"Concentration": "mg/L"}
	opt.SourceRows = 10

	p, err := BuildProfile(profileTable(t), opt)
	if err != nil {
		t.Fatalf("BuildProfile: %v", err)
	}
	if p.Name != "metrics.csv" || p.Rows != 10 || p.Processed != 9 {
		t.Fatalf("profile header = %q %d/%d", p.Name, p.Processed, p.Rows)
	}
	if len(p.Warnings) != 1 || p.Warnings[0] != "processed only 9/10 rows due to MaxRows" {
		t.Fatalf("warnings = %#v", p.Warnings)
	}
	if len(p.Samples) != 3 || p.Samples[0][0] != "A" || p.Samples[0][2] != "10" {
		t.Fatalf("samples = %#v", p.Samples)
	}

	conc := profileColumnByName(t, p, "Concentration")
	if conc.Unit != "mg/L" || conc.Kind != "numeric" {
		t.Fatalf("concentration = %+v", conc)
	}
	checkProfileStats(t, conc, processedConcentration)

	count, maxZ := robustOutlierStats(processedScore, 3.5)
	score := profileColumnByName(t, p, "Score")
	checkProfileStats(t, score, processedScore)
	if score.OutliersCount != count || count != 1 {
		t.Fatalf("score outliers = %d, want %d", score.OutliersCount, count)
	}
	if !almostEqual(score.OutliersMaxAbsZ, maxZ, 1e-6) {
		t.Fatalf("score max |z| = %f, want %f", score.OutliersMaxAbsZ, maxZ)
	}

	cat := profileColumnByName(t, p, "Category")
	if cat.Kind != "categorical" || cat.Unique != 3 {
		t.Fatalf("category = %+v", cat)
	}
	if cat.TopValues[0].Value != "alpha" || cat.TopValues[0].Count != 5 {
		t.Fatalf("category top = %#v", cat.TopValues)
	}
	if when := profileColumnByName(t, p, "When"); when.Kind != "datetime" {
		t.Fatalf("when kind = %q", when.Kind)
	}

	if len(p.Groups) != 2 || p.Groups[0].Key != "Group=A" || p.Groups[0].Size != 5 || p.Groups[1].Key != "Group=B" || p.Groups[1].Size != 4 {
		t.Fatalf("groups = %+v", p.Groups)
	}
	idxA := []int{0, 1, 2, 6, 8}
	if m := p.Groups[0].Metrics["Score"]; m.Count != 5 || !almostEqual(m.Mean, meanOf(subset(processedScore, idxA)), 1e-9) {
		t.Fatalf("group A score = %+v", m)
	}
	top := p.Groups[0].CorrPairs[0]
	wantA := pearsonRef(subset(processedScore, idxA), subset(processedLocale, idxA))
	if top.A != "Score" || top.B != "LocaleNumber" || !almostEqual(top.R, wantA, 1e-6) {
		t.Fatalf("group A top pair = %+v, want r=%f", top, wantA)
	}

	if p.Corr == nil || !equalStrings(p.Corr.Columns, []string{"Concentration", "Score", "LocaleNumber"}) {
		t.Fatalf("corr = %+v", p.Corr)
	}
	if !almostEqual(p.Corr.Values[1][2], pearsonRef(processedScore, processedLocale), 1e-6) {
		t.Fatalf("corr score~locale = %f", p.Corr.Values[1][2])
	}
}

func TestBuildProfileRejectsUnknownGroup(t *testing.T) {
	opt := DefaultProfileOptions()
	opt.GroupBy = []string{"Nope"}
	if _, err := BuildProfile(profileTable(t), opt); err == nil {
		t.Fatal("expected error for unknown group column")
	}
}

func profileColumnByName(t *testing.T, p *Profile, name string) ColumnProfile {
	t.Helper()
	for _, c := range p.Cols {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("column %q not found", name)
	return ColumnProfile{}
}

func checkProfileStats(t *testing.T, col ColumnProfile, vals []float64) {
	t.Helper()
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	if col.NonNull != len(vals) {
		t.Fatalf("non-null = %d, want %d", col.NonNull, len(vals))
	}
	if !almostEqual(col.Min, sorted[0], 1e-6) || !almostEqual(col.Max, sorted[len(sorted)-1], 1e-6) {
		t.Fatalf("min/max = %f/%f", col.Min, col.Max)
	}
	if !almostEqual(col.Mean, meanOf(vals), 1e-6) {
		t.Fatalf("mean = %f, want %f", col.Mean, meanOf(vals))
	}
	if !almostEqual(col.Std, sampleStd(vals), 1e-6) {
		t.Fatalf("std = %f, want %f", col.Std, sampleStd(vals))
	}
}

func robustOutlierStats(vals []float64, threshold float64) (count int, maxAbs float64) {
	cp := append([]float64(nil), vals...)
	sort.Float64s(cp)
	med := quantileValue(cp, 0.5)
	devs := make([]float64, len(cp))
	for i, v := range cp {
		devs[i] = math.Abs(v - med)
	}
	sort.Float64s(devs)
	mad := quantileValue(devs, 0.5)
	if mad == 0 {
		return 0, 0
	}
	for _, v := range cp {
		az := math.Abs(0.6745 * (v - med) / mad)
		if az > threshold {
			count++
		}
		if az > maxAbs {
			maxAbs = az
		}
	}
	return
}

func quantileValue(sortedVals []float64, q float64) float64 {
	pos := q * float64(len(sortedVals)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sortedVals[lo]
	}
	w := pos - float64(lo)
	return sortedVals[lo]*(1-w) + sortedVals[hi]*w
}

func subset(vals []float64, idxs []int) []float64 {
	out := make([]float64, len(idxs))
	for i, idx := range idxs {
		out[i] = vals[idx]
	}
	return out
}

func meanOf(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func sampleStd(vals []float64) float64 {
	m := meanOf(vals)
	var sum float64
	for _, v := range vals {
		sum += (v - m) * (v - m)
	}
	return math.Sqrt(sum / float64(len(vals)-1))
}

func pearsonRef(a, b []float64) float64 {
	ma, mb := meanOf(a), meanOf(b)
	var num, da2, db2 float64
	for i := range a {
		num += (a[i] - ma) * (b[i] - mb)
		da2 += (a[i] - ma) * (a[i] - ma)
		db2 += (b[i] - mb) * (b[i] - mb)
	}
	return num / math.Sqrt(da2*db2)
}

package ingest

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/tabula-cli/internal/table"
)

// builder turns a header and string records into a Table. CSV and XLSX
// share it so both sources classify cells the same way.
type builder struct {
	opt   Options
	names []string
	orig  []string // unit parsed from the header
	units []string // unit after normalization
	rows  []table.Row
	seen  int
}

func newBuilder(header []string, opt Options) *builder {
	b := &builder{opt: opt}
	taken := map[string]bool{}
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
		unit := ""
		if opt.NormalizeUnits {
			name, unit = splitUnits(name)
		}
		if name == "" {
			name = fmt.Sprintf("Column%d", i+1)
		}
		base := name
		for k := 2; taken[name]; k++ {
			name = fmt.Sprintf("%s_%d", base, k)
		}
		taken[name] = true
		b.names = append(b.names, name)
		b.orig = append(b.orig, unit)
		b.units = append(b.units, unit)
	}
	return b
}

// add converts one record. Records shorter than the header are padded with
// absent cells and extra fields are ignored.
func (b *builder) add(rec []string) {
	b.seen++
	if b.opt.MaxRows > 0 && len(b.rows) >= b.opt.MaxRows {
		return
	}
	row := make(table.Row, len(b.names))
	for j, name := range b.names {
		v := ""
		if j < len(rec) {
			v = rec[j]
		}
		row[name] = b.cell(j, v)
	}
	b.rows = append(b.rows, row)
}

func (b *builder) cell(j int, raw string) table.Value {
	v := strings.TrimSpace(raw)
	if v == "" {
		return table.Absent()
	}
	var (
		x  float64
		ok bool
	)
	if b.opt.locale() {
		x, ok = parseNumeric(v, b.opt)
	} else {
		x, ok = parsePlain(v)
	}
	if !ok {
		return table.Text(v)
	}
	if b.opt.NormalizeUnits && b.orig[j] != "" {
		if nx, nu, okc := normalizeUnit(x, b.orig[j], b.opt.UnitTargets); okc {
			x = nx
			b.units[j] = nu
		}
	}
	return table.Number(x)
}

func (b *builder) result(name string) (*Result, error) {
	t, err := table.New(name, b.names, b.rows)
	if err != nil {
		return nil, err
	}
	res := &Result{Table: t, SourceRows: b.seen, Units: map[string]string{}}
	for i, u := range b.units {
		if u != "" {
			res.Units[b.names[i]] = u
		}
	}
	return res, nil
}

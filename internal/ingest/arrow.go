package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/KaramelBytes/tabula-cli/internal/table"
)

// ReadArrow loads an Arrow IPC file. Numeric columns become numbers,
// string and boolean columns become text and nulls become absent.
func ReadArrow(p string, opt Options) (*Result, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("open arrow: %w", err)
	}
	defer f.Close()

	mem := memory.NewGoAllocator()
	rdr, err := ipc.NewFileReader(f, ipc.WithAllocator(mem))
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}
	defer rdr.Close()

	c := newRecordCollector(rdr.Schema(), opt)
	for i := 0; i < rdr.NumRecords(); i++ {
		rec, err := rdr.Record(i)
		if err != nil {
			return nil, fmt.Errorf("read record batch %d: %w", i, err)
		}
		if err := c.add(rec); err != nil {
			return nil, err
		}
	}
	return c.result(filepath.Base(p))
}

// ReadParquet loads a Parquet file through its Arrow representation.
func ReadParquet(ctx context.Context, p string, opt Options) (*Result, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer f.Close()

	mem := memory.NewGoAllocator()
	tbl, err := pqarrow.ReadTable(ctx, f, parquet.NewReaderProperties(mem), pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet data: %w", err)
	}
	defer tbl.Release()

	tr := array.NewTableReader(tbl, 4096)
	defer tr.Release()
	c := newRecordCollector(tbl.Schema(), opt)
	for tr.Next() {
		if err := c.add(tr.Record()); err != nil {
			return nil, err
		}
	}
	if err := tr.Err(); err != nil {
		return nil, fmt.Errorf("error reading table: %w", err)
	}
	return c.result(filepath.Base(p))
}

// recordCollector turns Arrow record batches into table rows, honouring
// MaxRows while still counting every source row.
type recordCollector struct {
	names []string
	rows  []table.Row
	seen  int
	max   int
}

func newRecordCollector(schema *arrow.Schema, opt Options) *recordCollector {
	names := make([]string, schema.NumFields())
	for i, field := range schema.Fields() {
		names[i] = field.Name
	}
	return &recordCollector{names: names, max: opt.MaxRows}
}

func (c *recordCollector) add(rec arrow.Record) error {
	for r := 0; r < int(rec.NumRows()); r++ {
		c.seen++
		if c.max > 0 && len(c.rows) >= c.max {
			continue
		}
		row := make(table.Row, len(c.names))
		for i, col := range rec.Columns() {
			v, err := arrowValue(col, r)
			if err != nil {
				return fmt.Errorf("column %q: %w", c.names[i], err)
			}
			row[c.names[i]] = v
		}
		c.rows = append(c.rows, row)
	}
	return nil
}

func (c *recordCollector) result(name string) (*Result, error) {
	t, err := table.New(name, c.names, c.rows)
	if err != nil {
		return nil, err
	}
	return &Result{Table: t, SourceRows: c.seen, Units: map[string]string{}}, nil
}

// arrowValue converts the cell at pos of an Arrow array to a Value.
func arrowValue(col arrow.Array, pos int) (table.Value, error) {
	if col.IsNull(pos) {
		return table.Absent(), nil
	}
	switch a := col.(type) {
	case *array.Float64:
		return table.Number(a.Value(pos)), nil
	case *array.Float32:
		return table.Number(float64(a.Value(pos))), nil
	case *array.Int64:
		return table.Number(float64(a.Value(pos))), nil
	case *array.Int32:
		return table.Number(float64(a.Value(pos))), nil
	case *array.Int16:
		return table.Number(float64(a.Value(pos))), nil
	case *array.Int8:
		return table.Number(float64(a.Value(pos))), nil
	case *array.Uint64:
		return table.Number(float64(a.Value(pos))), nil
	case *array.Uint32:
		return table.Number(float64(a.Value(pos))), nil
	case *array.String:
		return table.Text(a.Value(pos)), nil
	case *array.LargeString:
		return table.Text(a.Value(pos)), nil
	case *array.Boolean:
		return table.Text(strconv.FormatBool(a.Value(pos))), nil
	}
	return table.Value{}, fmt.Errorf("unsupported arrow type %s", col.DataType())
}

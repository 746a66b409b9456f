package export

import (
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/KaramelBytes/tabula-cli/internal/table"
)

// Schema maps the table to an Arrow schema. A column whose present cells
// are all numbers becomes a nullable float64 field; every other column is
// utf8.
func Schema(t *table.Table) *arrow.Schema {
	cols := t.ColumnNames()
	fields := make([]arrow.Field, len(cols))
	for i, c := range cols {
		typ := arrow.DataType(arrow.BinaryTypes.String)
		if numericColumn(t, c) {
			typ = arrow.PrimitiveTypes.Float64
		}
		fields[i] = arrow.Field{Name: c, Type: typ, Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

func numericColumn(t *table.Table, col string) bool {
	seen := false
	for _, r := range t.Rows() {
		switch v := r[col]; {
		case v.IsText():
			return false
		case v.IsNumber():
			seen = true
		}
	}
	return seen
}

// Record builds a single Arrow record batch holding every row of t. The
// caller must Release it.
func Record(t *table.Table, mem memory.Allocator) arrow.Record {
	schema := Schema(t)
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	for i, f := range schema.Fields() {
		switch fb := b.Field(i).(type) {
		case *array.Float64Builder:
			fb.Reserve(t.Len())
			for _, r := range t.Rows() {
				if v := r[f.Name]; v.IsNumber() {
					fb.Append(v.Raw())
				} else {
					fb.AppendNull()
				}
			}
		case *array.StringBuilder:
			fb.Reserve(t.Len())
			for _, r := range t.Rows() {
				if v := r[f.Name]; v.IsAbsent() {
					fb.AppendNull()
				} else {
					fb.Append(v.String())
				}
			}
		}
	}
	return b.NewRecord()
}

// WriteArrow writes t as an Arrow IPC file with one record batch.
func WriteArrow(w io.Writer, t *table.Table) error {
	mem := memory.NewGoAllocator()
	rec := Record(t, mem)
	defer rec.Release()

	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(mem))
	if err != nil {
		return fmt.Errorf("failed to create arrow writer: %w", err)
	}
	if err := fw.Write(rec); err != nil {
		_ = fw.Close()
		return fmt.Errorf("failed to write arrow record: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("failed to close arrow writer: %w", err)
	}
	return nil
}

// WriteParquet writes t as a Snappy-compressed Parquet file.
func WriteParquet(w io.Writer, t *table.Table) error {
	mem := memory.NewGoAllocator()
	rec := Record(t, mem)
	defer rec.Release()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())
	pw, err := pqarrow.NewFileWriter(rec.Schema(), w, props, arrowProps)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	if err := pw.Write(rec); err != nil {
		_ = pw.Close()
		return fmt.Errorf("failed to write table to parquet: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

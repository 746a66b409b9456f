// Package export serializes a table, or statistics computed from it, to
// CSV, JSON, YAML, Arrow IPC and Parquet.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/tabula-cli/internal/table"
	"github.com/KaramelBytes/tabula-cli/internal/utils"
)

// Format is an output file format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatArrow   Format = "arrow"
	FormatParquet Format = "parquet"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".arrow", ".ipc", ".feather":
		return FormatArrow, nil
	case ".parquet":
		return FormatParquet, nil
	default:
		return "", fmt.Errorf("unsupported export type %q (want .csv, .json, .arrow or .parquet)", ext)
	}
}

// WriteTable encodes t in the given format.
func WriteTable(w io.Writer, t *table.Table, f Format) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, t)
	case FormatJSON:
		return WriteJSON(w, t, time.Now())
	case FormatArrow:
		return WriteArrow(w, t)
	case FormatParquet:
		return WriteParquet(w, t)
	default:
		return fmt.Errorf("table export to %s is not supported", f)
	}
}

// SaveTable writes t to path, choosing the format from the extension. The
// file is replaced atomically.
func SaveTable(path string, t *table.Table) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := WriteTable(&buf, t, f); err != nil {
		return err
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}

// WriteCSV writes a header row followed by one record per row. Absent
// cells are empty fields.
func WriteCSV(w io.Writer, t *table.Table) error {
	cw := csv.NewWriter(w)
	cols := t.ColumnNames()
	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	rec := make([]string, len(cols))
	for _, r := range t.Rows() {
		for i, c := range cols {
			rec[i] = r[c].String()
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Envelope is the JSON document written by WriteJSON.
type Envelope struct {
	Timestamp   string      `json:"timestamp"`
	RowCount    int         `json:"rowCount"`
	ColumnCount int         `json:"columnCount"`
	Data        []jsonRecord `json:"data"`
}

// jsonRecord keeps the table's column order in the encoded object.
type jsonRecord struct {
	cols []string
	row  table.Row
}

func (r jsonRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.cols {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.row[c])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// WriteJSON writes the table as an indented envelope stamped with now.
func WriteJSON(w io.Writer, t *table.Table, now time.Time) error {
	cols := t.ColumnNames()
	env := Envelope{
		Timestamp:   now.UTC().Format(time.RFC3339Nano),
		RowCount:    t.Len(),
		ColumnCount: len(cols),
		Data:        make([]jsonRecord, t.Len()),
	}
	for i, r := range t.Rows() {
		env.Data[i] = jsonRecord{cols: cols, row: r}
	}
	b, err := utils.PrettyJSON(env)
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// LoadFile dispatches on the file extension: .csv, .tsv and .txt are
// delimited text, .xlsx a workbook and .arrow, .ipc or .feather an Arrow
// IPC file and .parquet a Parquet file.
func LoadFile(path string, opt Options) (*Result, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".tsv", ".txt", "":
		return ReadCSVFile(path, opt)
	case ".xlsx":
		return ReadXLSX(path, opt)
	case ".arrow", ".ipc", ".feather":
		return ReadArrow(path, opt)
	case ".parquet":
		return ReadParquet(context.Background(), path, opt)
	default:
		return nil, fmt.Errorf("unsupported file type %q (want .csv, .tsv, .txt, .xlsx, .arrow or .parquet)", ext)
	}
}

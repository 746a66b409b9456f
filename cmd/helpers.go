package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/tabula-cli/internal/export"
	"github.com/KaramelBytes/tabula-cli/internal/ingest"
	"github.com/KaramelBytes/tabula-cli/internal/report"
	"github.com/KaramelBytes/tabula-cli/internal/table"
	"github.com/KaramelBytes/tabula-cli/internal/utils"
)

// ingestOptions translates the effective configuration into loader options.
func ingestOptions() (ingest.Options, error) {
	opt := ingest.DefaultOptions()
	opt.MaxRows = cfg.MaxRows
	opt.LocaleNumbers = cfg.LocaleNumbers
	opt.NormalizeUnits = cfg.NormalizeUnits
	opt.SheetName = flagSheetName
	opt.SheetIndex = flagSheetIndex

	switch cfg.Delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", cfg.Delimiter)
	}
	switch strings.ToLower(strings.TrimSpace(cfg.DecimalSeparator)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", cfg.DecimalSeparator)
	}
	// TrimSpace would turn "space" given as " " into "", so match it first
	switch th := cfg.ThousandsSeparator; {
	case th == " " || strings.EqualFold(th, "space"):
		opt.ThousandsSeparator = ' '
	case th == ",":
		opt.ThousandsSeparator = ','
	case th == ".":
		opt.ThousandsSeparator = '.'
	case th == "":
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", th)
	}
	return opt, nil
}

// loadTable reads path with the effective ingestion options and warns on
// stderr when the row cap truncated it.
func loadTable(cmd *cobra.Command, path string) (*ingest.Result, error) {
	opt, err := ingestOptions()
	if err != nil {
		return nil, err
	}
	res, err := ingest.LoadFile(path, opt)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded table", "file", path, "rows", res.Table.Len(), "columns", len(res.Table.ColumnNames()), "source_rows", res.SourceRows)
	if res.Truncated() {
		fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: loaded %d of %d rows (max-rows)\n", res.Table.Len(), res.SourceRows)
	}
	return res, nil
}

func renderer() *report.Renderer { return report.New(cfg.Decimals) }

// emit writes v as JSON or YAML, or the Markdown produced by md, depending
// on the output format.
func emit(cmd *cobra.Command, v any, md func(r *report.Renderer) string) error {
	w := cmd.OutOrStdout()
	switch strings.ToLower(cfg.OutputFormat) {
	case "json":
		b, err := utils.PrettyJSON(v)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case "yaml":
		return writeYAML(w, v)
	default:
		_, err := fmt.Fprint(w, md(renderer()))
		return err
	}
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	return enc.Close()
}

// saveOutput writes the mutated table when --out was given.
func saveOutput(cmd *cobra.Command, out string, t *table.Table) error {
	if out == "" {
		return nil
	}
	if err := export.SaveTable(out, t); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote %d rows to %s\n", t.Len(), out)
	return nil
}

// writeMarkdown writes rendered Markdown to path instead of stdout.
func writeMarkdown(cmd *cobra.Command, path, md string) error {
	if err := utils.SafeWriteFile(path, []byte(md)); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote report to %s\n", path)
	return nil
}

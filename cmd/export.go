package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabula-cli/internal/export"
	"github.com/KaramelBytes/tabula-cli/internal/utils"
)

var (
	exTo    string
	exStats string
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Convert a table to CSV, JSON, Arrow or Parquet, or export its statistics",
	Long: `Export writes the loaded table to --to, choosing the format from the
extension (.csv, .json, .arrow, .parquet). --stats writes per-column summary
statistics as .json or .yaml. Both may be given at once.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if exTo == "" && exStats == "" {
			return errors.New("nothing to export: pass --to and/or --stats")
		}
		res, err := loadTable(cmd, args[0])
		if err != nil {
			return err
		}
		if err := saveOutput(cmd, exTo, res.Table); err != nil {
			return err
		}
		if exStats == "" {
			return nil
		}
		f, err := export.FormatFromPath(exStats)
		if err != nil {
			return err
		}
		if f != export.FormatJSON && f != export.FormatYAML {
			return fmt.Errorf("statistics export supports .json and .yaml, got %s", f)
		}
		var buf bytes.Buffer
		if err := export.WriteStats(&buf, res.Table, f, time.Now()); err != nil {
			return err
		}
		if err := utils.SafeWriteFile(exStats, buf.Bytes()); err != nil {
			return fmt.Errorf("write stats: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote statistics to %s\n", exStats)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exTo, "to", "", "destination table file (.csv, .json, .arrow, .parquet)")
	exportCmd.Flags().StringVar(&exStats, "stats", "", "destination statistics file (.json, .yaml)")
}

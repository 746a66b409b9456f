package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/tabula-cli/internal/config"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Output and ingestion flags (override config if set)
	flagFormat         string
	flagDecimals       int
	flagDelimiter      string
	flagDecimal        string
	flagThousands      string
	flagLocaleNumbers  bool
	flagNormalizeUnits bool
	flagMaxRows        int
	flagSheetName      string
	flagSheetIndex     int

	// Loaded configuration
	cfg *cfgpkg.Global

	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
)

var rootCmd = &cobra.Command{
	Use:   "tabula",
	Short: "Tabula: statistics, modelling and cleanup for tabular data files",
	Long: `Tabula loads a CSV, TSV, XLSX, Arrow or Parquet file into memory and answers
descriptive statistics, correlation, regression, clustering, pivot, time-series
and data quality questions about it. Cleanup operations (imputation, derived
columns, filters) can be applied one at a time or replayed from a YAML recipe.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return applyOverrides(cmd)
	},
}

// Execute is the entry point called by main.main()
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ~/.tabula/config.yaml)")
	pf.BoolVar(&debug, "debug", false, "enable debug output")
	pf.StringVar(&flagFormat, "format", "", "output format: markdown|json|yaml (overrides config)")
	pf.IntVar(&flagDecimals, "decimals", 0, "decimal places in Markdown output (overrides config)")
	pf.StringVar(&flagDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (sniffed if omitted)")
	pf.StringVar(&flagDecimal, "decimal", "", "decimal separator for numbers: '.'|'comma'")
	pf.StringVar(&flagThousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space'")
	pf.BoolVar(&flagLocaleNumbers, "locale-numbers", false, "auto-detect locale number formats such as 1.234,5 and 12%")
	pf.BoolVar(&flagNormalizeUnits, "normalize-units", false, "strip units like (mg/L) from headers and convert values")
	pf.IntVar(&flagMaxRows, "max-rows", 0, "maximum rows to load (0 = config value)")
	pf.StringVar(&flagSheetName, "sheet-name", "", "XLSX: sheet name to load")
	pf.IntVar(&flagSheetIndex, "sheet-index", 0, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Default()
	}
	cfg = c
}

// applyOverrides folds explicitly set flags into cfg and configures the
// diagnostic logger.
func applyOverrides(cmd *cobra.Command) error {
	if cfg == nil {
		cfg = cfgpkg.Default()
	}
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	f := cmd.Flags()
	if f.Changed("format") {
		cfg.OutputFormat = strings.ToLower(flagFormat)
	}
	if f.Changed("decimals") {
		cfg.Decimals = flagDecimals
	}
	if f.Changed("delimiter") {
		cfg.Delimiter = flagDelimiter
	}
	if f.Changed("decimal") {
		cfg.DecimalSeparator = flagDecimal
	}
	if f.Changed("thousands") {
		cfg.ThousandsSeparator = flagThousands
	}
	if f.Changed("locale-numbers") {
		cfg.LocaleNumbers = flagLocaleNumbers
	}
	if f.Changed("normalize-units") {
		cfg.NormalizeUnits = flagNormalizeUnits
	}
	if f.Changed("max-rows") && flagMaxRows > 0 {
		cfg.MaxRows = flagMaxRows
	}
	logger.Debug("effective config", "format", cfg.OutputFormat, "max_rows", cfg.MaxRows, "decimals", cfg.Decimals)
	return cfg.Validate()
}

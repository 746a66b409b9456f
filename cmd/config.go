package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/tabula-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set Tabula configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		w := cmd.OutOrStdout()
		for _, k := range cfgpkg.Keys {
			v, _ := configValue(cfg, k)
			fmt.Fprintf(w, "%s: %s\n", k, v)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := strings.ToLower(args[0]), args[1]
		// Start from the file so command-line overrides are not persisted.
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			if cfgFile == "" || !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			c = cfgpkg.Default()
		}
		if err := setConfigValue(c, key, val); err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		cfg = c
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved %s\n", key)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func configValue(c *cfgpkg.Global, key string) (string, error) {
	switch key {
	case "delimiter":
		return strconv.Quote(c.Delimiter), nil
	case "decimal_separator":
		return strconv.Quote(c.DecimalSeparator), nil
	case "thousands_separator":
		return strconv.Quote(c.ThousandsSeparator), nil
	case "locale_numbers":
		return strconv.FormatBool(c.LocaleNumbers), nil
	case "normalize_units":
		return strconv.FormatBool(c.NormalizeUnits), nil
	case "max_rows":
		return strconv.Itoa(c.MaxRows), nil
	case "sample_rows":
		return strconv.Itoa(c.SampleRows), nil
	case "histogram_bins":
		return strconv.Itoa(c.HistogramBins), nil
	case "top_correlations":
		return strconv.Itoa(c.TopCorrelations), nil
	case "outlier_threshold":
		return strconv.FormatFloat(c.OutlierThreshold, 'g', -1, 64), nil
	case "insight_corr_threshold":
		return strconv.FormatFloat(c.InsightCorrThreshold, 'g', -1, 64), nil
	case "insight_missing_ratio":
		return strconv.FormatFloat(c.InsightMissingRatio, 'g', -1, 64), nil
	case "output_format":
		return c.OutputFormat, nil
	case "decimals":
		return strconv.Itoa(c.Decimals), nil
	}
	return "", fmt.Errorf("unknown key: %s", key)
}

func setConfigValue(c *cfgpkg.Global, key, val string) error {
	atoi := func() (int, error) {
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return 0, fmt.Errorf("invalid int for %s: %v", key, val)
		}
		return i, nil
	}
	parseFloat := func() (float64, error) {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f < 0 {
			return 0, fmt.Errorf("invalid float for %s: %v", key, val)
		}
		return f, nil
	}
	parseBool := func() (bool, error) {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return false, fmt.Errorf("invalid bool for %s: %v", key, val)
		}
		return b, nil
	}

	var err error
	switch key {
	case "delimiter":
		c.Delimiter = val
	case "decimal_separator":
		c.DecimalSeparator = val
	case "thousands_separator":
		c.ThousandsSeparator = val
	case "locale_numbers":
		c.LocaleNumbers, err = parseBool()
	case "normalize_units":
		c.NormalizeUnits, err = parseBool()
	case "max_rows":
		c.MaxRows, err = atoi()
	case "sample_rows":
		c.SampleRows, err = atoi()
	case "histogram_bins":
		c.HistogramBins, err = atoi()
	case "top_correlations":
		c.TopCorrelations, err = atoi()
	case "outlier_threshold":
		c.OutlierThreshold, err = parseFloat()
	case "insight_corr_threshold":
		c.InsightCorrThreshold, err = parseFloat()
	case "insight_missing_ratio":
		c.InsightMissingRatio, err = parseFloat()
	case "output_format":
		c.OutputFormat = strings.ToLower(val)
	case "decimals":
		c.Decimals, err = atoi()
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return err
}

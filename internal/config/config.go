package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Ingestion
	Delimiter          string `mapstructure:"delimiter" yaml:"delimiter"`
	DecimalSeparator   string `mapstructure:"decimal_separator" yaml:"decimal_separator"`
	ThousandsSeparator string `mapstructure:"thousands_separator" yaml:"thousands_separator"`
	LocaleNumbers      bool   `mapstructure:"locale_numbers" yaml:"locale_numbers"`
	NormalizeUnits     bool   `mapstructure:"normalize_units" yaml:"normalize_units"`
	MaxRows            int    `mapstructure:"max_rows" yaml:"max_rows"`

	// Analysis
	SampleRows           int     `mapstructure:"sample_rows" yaml:"sample_rows"`
	HistogramBins        int     `mapstructure:"histogram_bins" yaml:"histogram_bins"`
	TopCorrelations      int     `mapstructure:"top_correlations" yaml:"top_correlations"`
	OutlierThreshold     float64 `mapstructure:"outlier_threshold" yaml:"outlier_threshold"`
	InsightCorrThreshold float64 `mapstructure:"insight_corr_threshold" yaml:"insight_corr_threshold"`
	InsightMissingRatio  float64 `mapstructure:"insight_missing_ratio" yaml:"insight_missing_ratio"`

	// Output
	OutputFormat string `mapstructure:"output_format" yaml:"output_format"`
	Decimals     int    `mapstructure:"decimals" yaml:"decimals"`
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{
	"delimiter", "decimal_separator", "thousands_separator", "locale_numbers", "normalize_units", "max_rows",
	"sample_rows", "histogram_bins", "top_correlations", "outlier_threshold",
	"insight_corr_threshold", "insight_missing_ratio", "output_format", "decimals",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("delimiter", "")
	v.SetDefault("decimal_separator", "")
	v.SetDefault("thousands_separator", "")
	v.SetDefault("locale_numbers", false)
	v.SetDefault("normalize_units", false)
	v.SetDefault("max_rows", 100000)
	v.SetDefault("sample_rows", 5)
	v.SetDefault("histogram_bins", 10)
	v.SetDefault("top_correlations", 6)
	v.SetDefault("outlier_threshold", 3.5)
	v.SetDefault("insight_corr_threshold", 0.7)
	v.SetDefault("insight_missing_ratio", 0.1)
	v.SetDefault("output_format", "markdown")
	v.SetDefault("decimals", 2)
}

// Default returns the built-in configuration.
func Default() *Global {
	v := viper.New()
	setDefaults(v)
	var c Global
	_ = v.Unmarshal(&c)
	return &c
}

// Dir returns ~/.tabula.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".tabula"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.tabula/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("TABULA")
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects settings no command can use.
func (c *Global) Validate() error {
	switch strings.ToLower(c.OutputFormat) {
	case "markdown", "md", "json", "yaml":
	default:
		return fmt.Errorf("invalid output_format: %s (use markdown, json or yaml)", c.OutputFormat)
	}
	if c.MaxRows < 0 {
		return fmt.Errorf("invalid max_rows: %d", c.MaxRows)
	}
	if c.Decimals < 0 || c.Decimals > 12 {
		return fmt.Errorf("invalid decimals: %d (use 0-12)", c.Decimals)
	}
	if c.InsightMissingRatio < 0 || c.InsightMissingRatio > 1 {
		return fmt.Errorf("invalid insight_missing_ratio: %v (use 0-1)", c.InsightMissingRatio)
	}
	return nil
}

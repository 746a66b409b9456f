package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabula-cli/internal/analysis"
	"github.com/KaramelBytes/tabula-cli/internal/report"
)

var (
	ovPreview int

	prGroupBy    []string
	prCorr       bool
	prCorrGroups bool
	prOutliers   bool
	prOutlierThr float64
	prSampleRows int
	prOutputPath string

	stAll bool

	histBins int
)

var overviewCmd = &cobra.Command{
	Use:   "overview <file>",
	Short: "Show row, column and missing-cell counts with the first rows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := loadTable(cmd, args[0])
		if err != nil {
			return err
		}
		preview := ovPreview
		if !cmd.Flags().Changed("preview") {
			preview = cfg.SampleRows
		}
		o := analysis.Overview(res.Table, preview)
		return emit(cmd, o, func(r *report.Renderer) string { return r.Overview(o) })
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile <file>",
	Short: "Profile every column: kind, spread, top values, groups and correlations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := loadTable(cmd, args[0])
		if err != nil {
			return err
		}
		opt := analysis.DefaultProfileOptions()
		opt.SampleRows = cfg.SampleRows
		if cmd.Flags().Changed("sample-rows") {
			opt.SampleRows = prSampleRows
		}
		opt.GroupBy = prGroupBy
		opt.Correlations = prCorr
		opt.CorrPerGroup = prCorrGroups
		opt.Outliers = prOutliers
		opt.OutlierThreshold = cfg.OutlierThreshold
		if cmd.Flags().Changed("outlier-threshold") && prOutlierThr > 0 {
			opt.OutlierThreshold = prOutlierThr
		}
		opt.Units = res.Units
		opt.SourceRows = res.SourceRows
		p, err := analysis.BuildProfile(res.Table, opt)
		if err != nil {
			return err
		}
		if prOutputPath != "" {
			return writeMarkdown(cmd, prOutputPath, renderer().Profile(p))
		}
		return emit(cmd, p, func(r *report.Renderer) string { return r.Profile(p) })
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats <file> [column]",
	Short: "Descriptive statistics and IQR outliers for a numeric column",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := loadTable(cmd, args[0])
		if err != nil {
			return err
		}
		if stAll || len(args) == 1 {
			ss := analysis.DescribeAll(res.Table)
			return emit(cmd, ss, func(r *report.Renderer) string { return r.Summaries(ss) })
		}
		s, err := analysis.Describe(res.Table, args[1])
		if err != nil {
			return err
		}
		return emit(cmd, s, func(r *report.Renderer) string { return r.Summary(s) })
	},
}

var histogramCmd = &cobra.Command{
	Use:   "histogram <file> <column>",
	Short: "Equal-width histogram of a numeric column",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := loadTable(cmd, args[0])
		if err != nil {
			return err
		}
		bins := cfg.HistogramBins
		if cmd.Flags().Changed("bins") {
			bins = histBins
		}
		hs, err := analysis.Histogram(res.Table, args[1], bins)
		if err != nil {
			return err
		}
		return emit(cmd, hs, func(r *report.Renderer) string { return r.Histogram(args[1], hs) })
	},
}

func init() {
	rootCmd.AddCommand(overviewCmd, profileCmd, statsCmd, histogramCmd)

	overviewCmd.Flags().IntVar(&ovPreview, "preview", 5, "number of leading rows to show")

	profileCmd.Flags().StringVarP(&prOutputPath, "output", "o", "", "optional path to write the profile (Markdown)")
	profileCmd.Flags().IntVar(&prSampleRows, "sample-rows", 5, "number of sample rows to include")
	profileCmd.Flags().StringSliceVar(&prGroupBy, "group-by", nil, "comma-separated column names to group by (repeatable)")
	profileCmd.Flags().BoolVar(&prCorr, "correlations", false, "compute Pearson correlations among numeric columns")
	profileCmd.Flags().BoolVar(&prCorrGroups, "corr-per-group", false, "compute correlation pairs within each group (may be slower)")
	profileCmd.Flags().BoolVar(&prOutliers, "outliers", true, "compute robust outlier counts (MAD)")
	profileCmd.Flags().Float64Var(&prOutlierThr, "outlier-threshold", 3.5, "robust |z| threshold for outliers (MAD-based)")

	statsCmd.Flags().BoolVar(&stAll, "all", false, "summarize every numeric column")

	histogramCmd.Flags().IntVar(&histBins, "bins", analysis.DefaultBins, "number of equal-width bins")
}

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabula-cli/internal/analysis"
	"github.com/KaramelBytes/tabula-cli/internal/report"
)

var (
	inCorr    float64
	inMissing float64
)

var qualityCmd = &cobra.Command{
	Use:   "quality <file>",
	Short: "Report missing cells per column and duplicate rows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := loadTable(cmd, args[0])
		if err != nil {
			return err
		}
		q := analysis.Quality(res.Table)
		return emit(cmd, q, func(r *report.Renderer) string { return r.Quality(q) })
	},
}

var insightsCmd = &cobra.Command{
	Use:   "insights <file>",
	Short: "List outliers, strong correlations and sparse columns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := loadTable(cmd, args[0])
		if err != nil {
			return err
		}
		opt := analysis.InsightOptions{CorrThreshold: cfg.InsightCorrThreshold, MissingRatio: cfg.InsightMissingRatio}
		if cmd.Flags().Changed("corr-threshold") {
			opt.CorrThreshold = inCorr
		}
		if cmd.Flags().Changed("missing-ratio") {
			opt.MissingRatio = inMissing
		}
		ins, err := analysis.Insights(res.Table, opt)
		if err != nil {
			return err
		}
		if ins == nil {
			ins = []analysis.Insight{}
		}
		return emit(cmd, ins, func(r *report.Renderer) string { return r.Insights(ins) })
	},
}

func init() {
	rootCmd.AddCommand(qualityCmd, insightsCmd)
	def := analysis.DefaultInsightOptions()
	insightsCmd.Flags().Float64Var(&inCorr, "corr-threshold", def.CorrThreshold, "flag pairs with |r| above this")
	insightsCmd.Flags().Float64Var(&inMissing, "missing-ratio", def.MissingRatio, "flag columns whose missing share exceeds this")
}

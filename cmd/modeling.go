package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabula-cli/internal/analysis"
	"github.com/KaramelBytes/tabula-cli/internal/report"
)

var (
	corrTop    int
	corrMatrix bool

	rankTarget   string
	rankFeatures []string

	kmK int

	fcPeriods int

	pvRow   string
	pvCol   string
	pvValue string
	pvAgg   string
)

var corrCmd = &cobra.Command{
	Use:   "corr <file> [column-a column-b]",
	Short: "Pearson correlation of two columns, or all numeric pairs ranked by |r|",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 && len(args) != 3 {
			return fmt.Errorf("accepts <file> or <file> <column-a> <column-b>, received %d args", len(args))
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := loadTable(cmd, args[0])
		if err != nil {
			return err
		}
		t := res.Table
		if len(args) == 3 {
			p, err := analysis.Correlation(t, args[1], args[2])
			if err != nil {
				return err
			}
			pairs := []analysis.Pair{p}
			return emit(cmd, p, func(r *report.Renderer) string { return r.Correlations(pairs, 0) })
		}
		if corrMatrix {
			g, err := analysis.CorrelationGrid(t)
			if err != nil {
				return err
			}
			return emit(cmd, g, func(r *report.Renderer) string { return r.Grid(g) })
		}
		pairs, err := analysis.CorrelationMatrix(t)
		if err != nil {
			return err
		}
		top := cfg.TopCorrelations
		if cmd.Flags().Changed("top") {
			top = corrTop
		}
		if top > 0 && len(pairs) > top {
			pairs = pairs[:top]
		}
		return emit(cmd, pairs, func(r *report.Renderer) string { return r.Correlations(pairs, 0) })
	},
}

var rankCmd = &cobra.Command{
	Use:   "rank <file>",
	Short: "Rank feature columns by |r| against a target column",
	Long: `Rank scores each feature by the magnitude of its Pearson correlation with the
target over rows where every column is numeric. It is a quick proxy for
feature importance; no model is trained.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := loadTable(cmd, args[0])
		if err != nil {
			return err
		}
		features := rankFeatures
		if len(features) == 0 {
			for _, c := range res.Table.NumericColumns() {
				if c != rankTarget {
					features = append(features, c)
				}
			}
		}
		rk, err := analysis.RankFeatures(res.Table, rankTarget, features)
		if err != nil {
			return err
		}
		return emit(cmd, rk, func(r *report.Renderer) string { return r.Ranking(rk) })
	},
}

var regressCmd = &cobra.Command{
	Use:   "regress <file> <x> <y>",
	Short: "Ordinary least squares fit of y on x",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := loadTable(cmd, args[0])
		if err != nil {
			return err
		}
		fit, err := analysis.FitLinear(res.Table, args[1], args[2])
		if err != nil {
			return err
		}
		return emit(cmd, fit, func(r *report.Renderer) string { return r.Regression(fit) })
	},
}

var kmeansCmd = &cobra.Command{
	Use:   "kmeans <file> <x> <y>",
	Short: "Cluster rows on two numeric columns with deterministic k-means",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := loadTable(cmd, args[0])
		if err != nil {
			return err
		}
		c, err := analysis.KMeans(res.Table, args[1], args[2], kmK)
		if err != nil {
			return err
		}
		return emit(cmd, c, func(r *report.Renderer) string { return r.Clustering(c) })
	},
}

var forecastCmd = &cobra.Command{
	Use:   "forecast <file> <column>",
	Short: "Extend the linear trend of a column over row order",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := loadTable(cmd, args[0])
		if err != nil {
			return err
		}
		p, err := analysis.Forecast(res.Table, args[1], fcPeriods)
		if err != nil {
			return err
		}
		return emit(cmd, p, func(r *report.Renderer) string { return r.Forecast(p) })
	},
}

var decomposeCmd = &cobra.Command{
	Use:   "decompose <file> <column>",
	Short: "Split a column into moving-average trend and residual",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := loadTable(cmd, args[0])
		if err != nil {
			return err
		}
		d, err := analysis.Decompose(res.Table, args[1])
		if err != nil {
			return err
		}
		return emit(cmd, d, func(r *report.Renderer) string { return r.Decomposition(d) })
	},
}

var pivotCmd = &cobra.Command{
	Use:   "pivot <file>",
	Short: "Aggregate a value column by row and column keys",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		agg, err := analysis.ParseAggregator(pvAgg)
		if err != nil {
			return err
		}
		res, err := loadTable(cmd, args[0])
		if err != nil {
			return err
		}
		p, err := analysis.Pivot(res.Table, pvRow, pvCol, pvValue, agg)
		if err != nil {
			return err
		}
		return emit(cmd, p, func(r *report.Renderer) string { return r.Pivot(p) })
	},
}

func init() {
	rootCmd.AddCommand(corrCmd, rankCmd, regressCmd, kmeansCmd, forecastCmd, decomposeCmd, pivotCmd)

	corrCmd.Flags().IntVar(&corrTop, "top", 6, "number of pairs to show (0 = all)")
	corrCmd.Flags().BoolVar(&corrMatrix, "matrix", false, "print the full correlation matrix")

	rankCmd.Flags().StringVar(&rankTarget, "target", "", "target column")
	rankCmd.Flags().StringSliceVar(&rankFeatures, "features", nil, "feature columns (default: every other numeric column)")
	_ = rankCmd.MarkFlagRequired("target")

	kmeansCmd.Flags().IntVarP(&kmK, "clusters", "k", 3, "number of clusters")

	forecastCmd.Flags().IntVar(&fcPeriods, "periods", 5, "number of future points to project")

	pivotCmd.Flags().StringVar(&pvRow, "row", "", "row key column")
	pivotCmd.Flags().StringVar(&pvCol, "col", "", "column key column")
	pivotCmd.Flags().StringVar(&pvValue, "value", "", "value column")
	pivotCmd.Flags().StringVar(&pvAgg, "agg", "sum", "aggregator: sum|avg|count|min|max")
	_ = pivotCmd.MarkFlagRequired("row")
	_ = pivotCmd.MarkFlagRequired("col")
	_ = pivotCmd.MarkFlagRequired("value")
}

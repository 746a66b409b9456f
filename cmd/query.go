package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabula-cli/internal/query"
	"github.com/KaramelBytes/tabula-cli/internal/report"
)

var (
	qWhere   string
	qOrderBy string
	qDesc    bool
	qLimit   int
	qOut     string
)

var queryCmd = &cobra.Command{
	Use:   "query <file>",
	Short: "Filter, sort and limit rows without changing the source",
	Long: `Query selects rows matching a boolean expression, orders them by one column
and keeps the first --limit of them. The source file is never modified; use
--out to save the result as a new table.

  tabula query sales.csv --where "region == 'north' and qty > 10" --order-by qty --desc --limit 5`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := loadTable(cmd, args[0])
		if err != nil {
			return err
		}
		q, err := query.Run(res.Table, query.Spec{Where: qWhere, OrderBy: qOrderBy, Desc: qDesc, Limit: qLimit})
		if err != nil {
			return err
		}
		if qOut != "" {
			t, err := q.Table(res.Table.Name)
			if err != nil {
				return err
			}
			if err := saveOutput(cmd, qOut, t); err != nil {
				return err
			}
		}
		return emit(cmd, q, func(r *report.Renderer) string { return r.Query(q) })
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVar(&qWhere, "where", "", "boolean expression rows must satisfy")
	queryCmd.Flags().StringVar(&qOrderBy, "order-by", "", "column to sort by (numbers, then text, then missing)")
	queryCmd.Flags().BoolVar(&qDesc, "desc", false, "sort descending")
	queryCmd.Flags().IntVar(&qLimit, "limit", 0, "maximum rows to return (0 = all)")
	queryCmd.Flags().StringVar(&qOut, "out", "", "write the matching rows to this file")
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabula-cli/internal/report"
	"github.com/KaramelBytes/tabula-cli/internal/session"
	"github.com/KaramelBytes/tabula-cli/internal/table"
	"github.com/KaramelBytes/tabula-cli/internal/transform"
)

var (
	imStrategy string
	imOut      string

	dvOut       string
	dvSeparator string
	dvName      string
	dvMethod    string
)

// mutation is the machine-readable outcome of a cleanup command.
type mutation struct {
	Result  any              `json:"result" yaml:"result"`
	Rows    int              `json:"rows" yaml:"rows"`
	Columns []string         `json:"columns" yaml:"columns"`
	Journal []table.Mutation `json:"journal" yaml:"journal"`
}

// mutate loads path, applies fn as one session update, saves to out when
// set and reports the result followed by the change journal.
func mutate(cmd *cobra.Command, path, out string, fn func(t *table.Table) (any, error), md func(r *report.Renderer, result any) string) error {
	res, err := loadTable(cmd, path)
	if err != nil {
		return err
	}
	s := session.New(res.Table, logger)
	var result any
	if err := s.Update(func(t *table.Table) error {
		r, err := fn(t)
		result = r
		return err
	}); err != nil {
		return err
	}
	t := s.Snapshot()
	if err := saveOutput(cmd, out, t); err != nil {
		return err
	}
	m := mutation{Result: result, Rows: t.Len(), Columns: t.ColumnNames(), Journal: t.Journal()}
	return emit(cmd, m, func(r *report.Renderer) string { return md(r, result) + "\n" + r.Journal(m.Journal) })
}

// added renders the names of derived columns.
func added(_ *report.Renderer, result any) string {
	var names []string
	switch v := result.(type) {
	case string:
		names = []string{v}
	case []string:
		names = v
	}
	return fmt.Sprintf("[DERIVED COLUMNS]\n- %s\n", strings.Join(names, "\n- "))
}

var imputeCmd = &cobra.Command{
	Use:   "impute <file> <column>",
	Short: "Fill missing cells of a column, or drop the rows where it is missing",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := transform.ParseStrategy(imStrategy)
		if err != nil {
			return err
		}
		return mutate(cmd, args[0], imOut,
			func(t *table.Table) (any, error) { return transform.Impute(t, args[1], st) },
			func(r *report.Renderer, result any) string { return r.Impute(result.(*transform.ImputeResult)) })
	},
}

var deriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "Add derived columns: merge, split, normalize or formula",
}

var deriveMergeCmd = &cobra.Command{
	Use:   "merge <file> <column-a> <column-b>",
	Short: "Concatenate two columns into a new text column",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutate(cmd, args[0], dvOut,
			func(t *table.Table) (any, error) { return transform.Merge(t, args[1], args[2], dvSeparator, dvName) },
			added)
	},
}

var deriveSplitCmd = &cobra.Command{
	Use:   "split <file> <column> <delimiter>",
	Short: "Split a text column into <column>_Part1..N",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutate(cmd, args[0], dvOut,
			func(t *table.Table) (any, error) { return transform.Split(t, args[1], args[2]) },
			added)
	},
}

var deriveNormalizeCmd = &cobra.Command{
	Use:   "normalize <file> <column>",
	Short: "Add a min-max or z-score scaled copy of a numeric column",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := transform.ParseMethod(dvMethod)
		if err != nil {
			return err
		}
		return mutate(cmd, args[0], dvOut,
			func(t *table.Table) (any, error) { return transform.Normalize(t, args[1], m) },
			added)
	},
}

var deriveFormulaCmd = &cobra.Command{
	Use:   "formula <file> <expression>",
	Short: "Add a column computed from an expression over each row",
	Long: `Formula evaluates an arithmetic expression against every row and stores the
result in a new column. Columns are referenced by name, or in square brackets
when the name contains spaces or symbols:

  tabula derive formula sales.csv "[Unit Price] * qty" --name revenue`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutate(cmd, args[0], dvOut,
			func(t *table.Table) (any, error) { return transform.Formula(t, dvName, args[1]) },
			added)
	},
}

func init() {
	rootCmd.AddCommand(imputeCmd, deriveCmd)
	deriveCmd.AddCommand(deriveMergeCmd, deriveSplitCmd, deriveNormalizeCmd, deriveFormulaCmd)

	imputeCmd.Flags().StringVar(&imStrategy, "strategy", "mean", "mean|median|mode|drop")
	imputeCmd.Flags().StringVar(&imOut, "out", "", "write the cleaned table to this file (.csv, .json, .yaml, .arrow, .parquet)")

	deriveCmd.PersistentFlags().StringVar(&dvOut, "out", "", "write the extended table to this file")
	deriveMergeCmd.Flags().StringVar(&dvSeparator, "separator", " ", "text placed between the two values")
	deriveMergeCmd.Flags().StringVar(&dvName, "name", "", "name of the new column (default "+transform.DefaultMergeName+")")
	deriveNormalizeCmd.Flags().StringVar(&dvMethod, "method", string(transform.MinMax), "minmax|zscore")
	deriveFormulaCmd.Flags().StringVar(&dvName, "name", "", "name of the new column (default "+transform.DefaultFormulaName+")")
}

package cmd

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabula-cli/internal/recipe"
	"github.com/KaramelBytes/tabula-cli/internal/report"
	"github.com/KaramelBytes/tabula-cli/internal/session"
)

var (
	rcName        string
	rcDescription string
	rcNote        string
	runOut        string
)

var recipeCmd = &cobra.Command{
	Use:   "recipe",
	Short: "Create and inspect YAML recipes of cleanup steps",
}

var recipeInitCmd = &cobra.Command{
	Use:   "init <recipe.yaml>",
	Short: "Create an empty recipe file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := rcName
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		}
		r := recipe.New(name, rcDescription, args[0])
		if err := r.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Created recipe %s at %s\n", r.Name, r.Path())
		return nil
	},
}

var recipeAddCmd = &cobra.Command{
	Use:   "add <recipe.yaml> <op> [key=value...]",
	Short: "Append a step to a recipe",
	Long: fmt.Sprintf(`Add appends one step. Arguments are key=value pairs:

  tabula recipe add clean.yaml impute column=price strategy=median
  tabula recipe add clean.yaml filter "where=qty > 0"

Operations: %s`, strings.Join(recipe.Operations(), ", ")),
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := recipe.Load(args[0])
		if err != nil {
			return err
		}
		kv := make(map[string]string, len(args)-2)
		for _, a := range args[2:] {
			k, v, ok := strings.Cut(a, "=")
			if !ok || strings.TrimSpace(k) == "" {
				return fmt.Errorf("invalid argument %q (want key=value)", a)
			}
			kv[strings.TrimSpace(k)] = v
		}
		st, err := r.AddStep(args[1], kv)
		if err != nil {
			return err
		}
		st.Note = rcNote
		if err := r.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Added step %d (%s) to %s\n", len(r.Steps), st.Op, r.Path())
		return nil
	},
}

var recipeShowCmd = &cobra.Command{
	Use:   "show <recipe.yaml>",
	Short: "List the steps of a recipe",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := recipe.Load(args[0])
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Recipe: %s\n", r.Name)
		if r.Description != "" {
			fmt.Fprintf(w, "Description: %s\n", r.Description)
		}
		fmt.Fprintf(w, "Steps: %d\n", len(r.Steps))
		for i, s := range r.Steps {
			fmt.Fprintf(w, "%d. %s %s", i+1, s.Op, formatArgs(s.Args))
			if s.Note != "" {
				fmt.Fprintf(w, "  # %s", s.Note)
			}
			fmt.Fprintln(w)
		}
		return nil
	},
}

var runRecipeCmd = &cobra.Command{
	Use:   "run <file> <recipe.yaml>",
	Short: "Apply every step of a recipe to a table, in order",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := recipe.Load(args[1])
		if err != nil {
			return err
		}
		res, err := loadTable(cmd, args[0])
		if err != nil {
			return err
		}
		s := session.New(res.Table, logger)
		steps, err := r.Run(cmd.Context(), s)
		if err != nil {
			return err
		}
		t := s.Snapshot()
		if err := saveOutput(cmd, runOut, t); err != nil {
			return err
		}
		m := mutation{Result: steps, Rows: t.Len(), Columns: t.ColumnNames(), Journal: t.Journal()}
		return emit(cmd, m, func(rd *report.Renderer) string {
			var b strings.Builder
			fmt.Fprintf(&b, "[RECIPE] %s\n", r.Name)
			for i, st := range steps {
				fmt.Fprintf(&b, "%d. %s: %s (rows=%d)\n", i+1, st.Op, st.Outcome, st.Rows)
			}
			b.WriteString("\n")
			b.WriteString(rd.Journal(m.Journal))
			return b.String()
		})
	},
}

func init() {
	rootCmd.AddCommand(recipeCmd, runRecipeCmd)
	recipeCmd.AddCommand(recipeInitCmd, recipeAddCmd, recipeShowCmd)

	recipeInitCmd.Flags().StringVar(&rcName, "name", "", "recipe name (default: file name)")
	recipeInitCmd.Flags().StringVar(&rcDescription, "description", "", "optional description")
	recipeAddCmd.Flags().StringVar(&rcNote, "note", "", "optional note stored with the step")
	runRecipeCmd.Flags().StringVar(&runOut, "out", "", "write the resulting table to this file")
}

func formatArgs(args map[string]string) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%q", k, args[k])
	}
	return strings.Join(parts, " ")
}

package recipe

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/KaramelBytes/tabula-cli/internal/query"
	"github.com/KaramelBytes/tabula-cli/internal/session"
	"github.com/KaramelBytes/tabula-cli/internal/table"
	"github.com/KaramelBytes/tabula-cli/internal/transform"
)

type operation struct {
	required []string
	apply    func(t *table.Table, s *Step) (string, error)
}

var operations = map[string]operation{
	"impute": {
		required: []string{"column", "strategy"},
		apply: func(t *table.Table, s *Step) (string, error) {
			res, err := transform.Impute(t, s.Args["column"], transform.Strategy(s.Args["strategy"]))
			if err != nil {
				return "", err
			}
			if res.Strategy == transform.StrategyDrop {
				return fmt.Sprintf("dropped %d rows", res.Dropped), nil
			}
			return fmt.Sprintf("filled %d cells with %s", res.Filled, res.Fill.Key()), nil
		},
	},
	"merge": {
		required: []string{"a", "b"},
		apply: func(t *table.Table, s *Step) (string, error) {
			name, err := transform.Merge(t, s.Args["a"], s.Args["b"], s.arg("separator", " "), s.Args["name"])
			return "added " + name, err
		},
	},
	"split": {
		required: []string{"column", "delimiter"},
		apply: func(t *table.Table, s *Step) (string, error) {
			names, err := transform.Split(t, s.Args["column"], s.Args["delimiter"])
			return "added " + strings.Join(names, ", "), err
		},
	},
	"normalize": {
		required: []string{"column"},
		apply: func(t *table.Table, s *Step) (string, error) {
			name, err := transform.Normalize(t, s.Args["column"], transform.Method(s.arg("method", string(transform.MinMax))))
			return "added " + name, err
		},
	},
	"formula": {
		required: []string{"expression"},
		apply: func(t *table.Table, s *Step) (string, error) {
			name, err := transform.Formula(t, s.Args["name"], s.Args["expression"])
			return "added " + name, err
		},
	},
	"filter": {
		required: []string{"where"},
		apply: func(t *table.Table, s *Step) (string, error) {
			res, err := query.Run(t, query.Spec{Where: s.Args["where"]})
			if err != nil {
				return "", err
			}
			keep := make(map[int]bool, len(res.Indices))
			for _, i := range res.Indices {
				keep[i] = true
			}
			i := -1
			dropped := t.Retain(func(table.Row) bool {
				i++
				return keep[i]
			})
			t.Record("filter", fmt.Sprintf("keep rows where %s (%d dropped)", s.Args["where"], dropped))
			return fmt.Sprintf("dropped %d rows", dropped), nil
		},
	},
}

// Operations lists the step operations a recipe may use.
func Operations() []string {
	out := make([]string, 0, len(operations))
	for k := range operations {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// StepResult describes one applied step.
type StepResult struct {
	ID      string `json:"id" yaml:"id"`
	Op      string `json:"op" yaml:"op"`
	Outcome string `json:"outcome" yaml:"outcome"`
	Rows    int    `json:"rows" yaml:"rows"`
}

// Run applies the steps in order, each as one exclusive update of the
// session's table. It stops at the first failing step; steps already
// applied stay applied. Cancellation is checked between steps.
func (r *Recipe) Run(ctx context.Context, s *session.Session) ([]StepResult, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	log := s.Logger().With("recipe", r.Name)
	out := make([]StepResult, 0, len(r.Steps))
	for i, st := range r.Steps {
		if err := ctx.Err(); err != nil {
			return out, fmt.Errorf("recipe %s: %w", r.Name, err)
		}
		op := operations[st.Op]
		var res StepResult
		err := s.Update(func(t *table.Table) error {
			outcome, err := op.apply(t, st)
			if err != nil {
				return err
			}
			res = StepResult{ID: st.ID, Op: st.Op, Outcome: outcome, Rows: t.Len()}
			return nil
		})
		if err != nil {
			return out, fmt.Errorf("step %d (%s): %w", i+1, st.Op, err)
		}
		log.Debug("step applied", "step", i+1, "op", st.Op, "outcome", res.Outcome)
		out = append(out, res)
	}
	return out, nil
}

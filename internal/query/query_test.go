package query

import (
	"errors"
	"testing"

	"github.com/KaramelBytes/tabula-cli/internal/expr"
	"github.com/KaramelBytes/tabula-cli/internal/table"
)

func people(t *testing.T) *table.Table {
	t.Helper()
	rows := []table.Row{
		{"name": table.Text("ada"), "age": table.Number(36), "city": table.Text("london")},
		{"name": table.Text("alan"), "age": table.Number(41), "city": table.Text("london")},
		{"name": table.Text("grace"), "age": table.Number(85), "city": table.Text("new york")},
		{"name": table.Text("edsger"), "age": table.Absent(), "city": table.Text("austin")},
		{"name": table.Text("barbara"), "age": table.Number(41), "city": table.Text("boston")},
		{"name": table.Text("ken"), "age": table.Text("n/a"), "city": table.Text("berkeley")},
	}
	tb, err := table.New("people", []string{"name", "age", "city"}, rows)
	if err != nil {
		t.Fatal(err)
	}
	return tb
}

func names(r *Result) []string {
	out := make([]string, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row["name"].String()
	}
	return out
}

func TestRun(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		want []string
	}{
		{"all rows", Spec{}, []string{"ada", "alan", "grace", "edsger", "barbara", "ken"}},
		{"filter", Spec{Where: "age > 40"}, []string{"alan", "grace", "barbara"}},
		{"filter text", Spec{Where: "city == 'london' && age < 40"}, []string{"ada"}},
		{"sort asc is stable", Spec{Where: "age > 40", OrderBy: "age"}, []string{"alan", "barbara", "grace"}},
		{"sort desc", Spec{Where: "age > 40", OrderBy: "age", Desc: true}, []string{"grace", "alan", "barbara"}},
		{"limit after sort", Spec{OrderBy: "age", Desc: true, Limit: 2}, []string{"edsger", "ken"}},
		{"mixed kinds", Spec{OrderBy: "age"}, []string{"ada", "alan", "barbara", "grace", "ken", "edsger"}},
		{"zero limit", Spec{Where: "age >= 41", Limit: 0}, []string{"alan", "grace", "barbara"}},
		{"no match", Spec{Where: "age > 100"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Run(people(t), tt.spec)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			got := names(res)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestRunLeavesTableUntouched(t *testing.T) {
	tb := people(t)
	res, err := Run(tb, Spec{OrderBy: "name", Limit: 3})
	if err != nil {
		t.Fatal(err)
	}
	if res.Matched != 6 || len(res.Indices) != 3 {
		t.Fatalf("matched %d, indices %v", res.Matched, res.Indices)
	}
	res.Rows[0]["name"] = table.Text("changed")
	if tb.Value(0, "name").String() != "ada" || tb.Len() != 6 {
		t.Fatal("query mutated the source table")
	}
	out, err := res.Table("top")
	if err != nil {
		t.Fatal(err)
	}
	if out.Len() != 3 || len(out.ColumnNames()) != 3 {
		t.Fatalf("result table %d rows %v", out.Len(), out.ColumnNames())
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	tb := people(t)
	if _, err := Run(tb, Spec{Where: "salary > 3"}); !errors.Is(err, expr.ErrExpression) {
		t.Fatalf("unknown identifier: %v", err)
	}
	if _, err := Run(tb, Spec{Where: "system('ls')"}); !errors.Is(err, expr.ErrExpression) {
		t.Fatalf("unknown function: %v", err)
	}
	if _, err := Run(tb, Spec{OrderBy: "salary"}); !errors.Is(err, table.ErrInvalidColumn) {
		t.Fatalf("unknown order column: %v", err)
	}
}

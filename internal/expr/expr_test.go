package expr

import (
	"errors"
	"math"
	"testing"

	"github.com/KaramelBytes/tabula-cli/internal/table"
)

var testColumns = []string{"age", "name", "score", "city name"}

func testRow() table.Row {
	return table.Row{
		"age":       table.Number(42),
		"name":      table.Text("Ada"),
		"score":     table.Absent(),
		"city name": table.Text("Oslo"),
	}
}

func TestEvalArithmeticAndComparison(t *testing.T) {
	tests := []struct {
		src  string
		want table.Value
	}{
		{"age + 1", table.Number(43)},
		{"age * 2 - 4 / 2", table.Number(82)},
		{"(age - 2) % 5", table.Number(0)},
		{"2 ** 3 ** 2", table.Number(512)},
		{"-age", table.Number(-42)},
		{"age > 30", table.Number(1)},
		{"age <= 30", table.Number(0)},
		{"age == 42 && name == 'Ada'", table.Number(1)},
		{"age === 41 || name !== \"Ada\"", table.Number(0)},
		{"not (age > 50)", table.Number(1)},
		{"name + '!'", table.Text("Ada!")},
		{"name + score", table.Text("Adanull")},
		{"score + 1", table.Absent()},
		{"score > 1", table.Number(0)},
		{"score == null", table.Number(1)},
		{"row['city name']", table.Text("Oslo")},
		{"col.age / 2", table.Number(21)},
		{"if(age > 40, 'senior', 'junior')", table.Text("senior")},
		{"round(10 / 3, 2)", table.Number(3.33)},
		{"max(1, age, 7)", table.Number(42)},
		{"len(name)", table.Number(3)},
		{"upper(name)", table.Text("ADA")},
		{"coalesce(score, age)", table.Number(42)},
		{"1.5e1", table.Number(15)},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			p, err := Compile(tt.src, testColumns)
			if err != nil {
				t.Fatalf("compile: %v", err)
			}
			got, err := p.Eval(testRow())
			if err != nil {
				t.Fatalf("eval: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("got %v (%s), want %v (%s)", got, got.Kind(), tt.want, tt.want.Kind())
			}
		})
	}
}

func TestDivisionByZeroFollowsFloatSemantics(t *testing.T) {
	p := MustCompile("age / 0", testColumns)
	v, err := p.Eval(testRow())
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if !math.IsInf(v.Raw(), 1) {
		t.Fatalf("got %v, want +Inf", v)
	}
}

func TestCompileRejectsUnsafeInput(t *testing.T) {
	bad := []string{
		"",
		"unknownCol > 3",
		"constructor.constructor('x')()",
		"process.exit(1)",
		"age >",
		"(age",
		"row['missing']",
		"eval('1')",
		"age = 3",
		"'unterminated",
		"age ; name",
		"round()",
	}
	for _, src := range bad {
		_, err := Compile(src, testColumns)
		if err == nil {
			t.Fatalf("Compile(%q) succeeded, want error", src)
		}
		if !errors.Is(err, ErrExpression) {
			t.Fatalf("Compile(%q) error %v does not match ErrExpression", src, err)
		}
		var ee *Error
		if !errors.As(err, &ee) || ee.Expr == "" && src != "" {
			t.Fatalf("Compile(%q) error %#v lacks expression text", src, err)
		}
	}
}

func TestEvalTextArithmeticIsAnError(t *testing.T) {
	p := MustCompile("name * 2", testColumns)
	if _, err := p.Eval(testRow()); !errors.Is(err, ErrExpression) {
		t.Fatalf("err = %v, want ErrExpression", err)
	}
}

func TestNestingLimit(t *testing.T) {
	src := ""
	for i := 0; i < maxDepth+5; i++ {
		src += "("
	}
	src += "1"
	for i := 0; i < maxDepth+5; i++ {
		src += ")"
	}
	if _, err := Compile(src, nil); err == nil {
		t.Fatalf("deeply nested expression compiled")
	}
}

func TestProgramColumns(t *testing.T) {
	p := MustCompile("age > 3 and row['city name'] != name", testColumns)
	got := p.Columns()
	want := []string{"age", "city name", "name"}
	if len(got) != len(want) {
		t.Fatalf("columns = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("columns = %v, want %v", got, want)
		}
	}
}

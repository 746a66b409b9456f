package table

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func sample(t *testing.T) *Table {
	t.Helper()
	tb, err := New("sample", []string{"id", "name", "score"}, []Row{
		{"id": Number(1), "name": Text("a"), "score": Number(2.5)},
		{"id": Number(2), "name": Text("b")},
		{"id": Number(3), "name": Text(""), "score": Text("x")},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tb
}

func TestNewFillsAbsentAndInfersKinds(t *testing.T) {
	tb := sample(t)
	if tb.Len() != 3 {
		t.Fatalf("Len = %d", tb.Len())
	}
	if !tb.Value(1, "score").IsAbsent() || !tb.Value(2, "name").IsAbsent() {
		t.Fatal("missing and empty cells should be absent")
	}
	want := map[string]ColumnKind{"id": ColumnNumeric, "name": ColumnText, "score": ColumnNumeric}
	for _, c := range tb.Columns() {
		if c.Kind != want[c.Name] {
			t.Errorf("%s kind = %s, want %s", c.Name, c.Kind, want[c.Name])
		}
	}
	if got := tb.NumericColumns(); len(got) != 2 || got[0] != "id" || got[1] != "score" {
		t.Fatalf("NumericColumns = %v", got)
	}
}

func TestNewRejectsBadColumns(t *testing.T) {
	for _, cols := range [][]string{{"a", "a"}, {"a", " "}} {
		if _, err := New("x", cols, nil); !errors.Is(err, ErrInvalidColumn) {
			t.Errorf("New(%q) err = %v", cols, err)
		}
	}
}

func TestNumbersSkipsNonNumeric(t *testing.T) {
	tb := sample(t)
	got, err := tb.Numbers("score")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != 2.5 {
		t.Fatalf("Numbers = %v", got)
	}
	if _, err := tb.Numbers("nope"); !errors.Is(err, ErrInvalidColumn) {
		t.Fatalf("unknown column err = %v", err)
	}
}

func TestAppendColumnAndRetain(t *testing.T) {
	tb := sample(t)
	if err := tb.AppendColumn("flag", []Value{Text("y"), Absent(), Number(1)}); err != nil {
		t.Fatal(err)
	}
	if err := tb.AppendColumn("flag", make([]Value, 3)); !errors.Is(err, ErrInvalidColumn) {
		t.Fatalf("duplicate append err = %v", err)
	}
	if err := tb.AppendColumn("short", make([]Value, 2)); err == nil {
		t.Fatal("length mismatch accepted")
	}
	c, err := tb.Column("flag")
	if err != nil || c.Kind != ColumnText {
		t.Fatalf("Column(flag) = %+v, %v", c, err)
	}

	dropped := tb.Retain(func(r Row) bool { return !r["score"].IsAbsent() })
	if dropped != 1 || tb.Len() != 2 {
		t.Fatalf("dropped %d, len %d", dropped, tb.Len())
	}
	if len(tb.ColumnNames()) != 4 {
		t.Fatalf("columns = %v", tb.ColumnNames())
	}
}

func TestCloneIsDeep(t *testing.T) {
	tb := sample(t)
	tb.Record("test", "first")
	c := tb.Clone()
	if err := c.SetValue(0, "id", Number(99)); err != nil {
		t.Fatal(err)
	}
	c.Record("test", "second")
	if tb.Value(0, "id").Raw() != 1 {
		t.Fatal("clone shares rows with the original")
	}
	if len(tb.Journal()) != 1 || len(c.Journal()) != 2 {
		t.Fatalf("journals %d/%d", len(tb.Journal()), len(c.Journal()))
	}
	if err := c.SetValue(5, "id", Number(1)); err == nil {
		t.Fatal("out of range SetValue accepted")
	}
}

func TestRecordAssignsIDs(t *testing.T) {
	tb := sample(t)
	a := tb.Record("impute", "x")
	b := tb.Record("split", "y")
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("ids %q %q", a.ID, b.ID)
	}
	if j := tb.Journal(); j[0].Op != "impute" || j[1].Op != "split" {
		t.Fatalf("journal = %+v", j)
	}
}

func TestValueCompare(t *testing.T) {
	tests := []struct {
		a, b Value
		want int
	}{
		{Number(1), Number(2), -1},
		{Number(2), Number(2), 0},
		{Text("b"), Text("a"), 1},
		{Number(100), Text("1"), -1},
		{Text("z"), Absent(), -1},
		{Absent(), Number(0), 1},
		{Absent(), Absent(), 0},
	}
	for _, tt := range tests {
		if got := tt.a.Compare(tt.b); got != tt.want {
			t.Errorf("%v.Compare(%v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestValueRendering(t *testing.T) {
	tests := []struct {
		v         Value
		str, key  string
		jsonValue string
	}{
		{Number(3), "3", "3", "3"},
		{Number(0.1), "0.1", "0.1", "0.1"},
		{Number(math.NaN()), "NaN", "NaN", "null"},
		{Text("hi"), "hi", "hi", `"hi"`},
		{Absent(), "", "null", "null"},
	}
	for _, tt := range tests {
		if tt.v.String() != tt.str || tt.v.Key() != tt.key {
			t.Errorf("%#v: String %q Key %q", tt.v, tt.v.String(), tt.v.Key())
		}
		b, err := json.Marshal(tt.v)
		if err != nil || string(b) != tt.jsonValue {
			t.Errorf("%#v: json %s, %v", tt.v, b, err)
		}
	}
	if _, ok := Number(math.NaN()).Float(); ok {
		t.Error("NaN should not be usable as a number")
	}
}

func TestValueUnmarshalJSON(t *testing.T) {
	var row map[string]Value
	if err := json.Unmarshal([]byte(`{"a":1.5,"b":"x","c":null,"d":true,"e":""}`), &row); err != nil {
		t.Fatal(err)
	}
	if row["a"].Raw() != 1.5 || row["b"].String() != "x" || !row["c"].IsAbsent() ||
		row["d"].String() != "true" || !row["e"].IsAbsent() {
		t.Fatalf("decoded %+v", row)
	}
}

func TestErrorsMatchSentinels(t *testing.T) {
	err := Insufficient("kmeans", 3, 2)
	var ide *InsufficientDataError
	if !errors.Is(err, ErrInsufficientData) || !errors.As(err, &ide) || ide.Need != 3 {
		t.Fatalf("err = %v", err)
	}
	if got := err.Error(); got != "kmeans: insufficient data: need at least 3 values, have 2" {
		t.Fatalf("message %q", got)
	}
	if got := (&ColumnError{Name: "x"}).Error(); got != `column "x" not found` {
		t.Fatalf("message %q", got)
	}
}

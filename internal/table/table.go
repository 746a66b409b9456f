package table

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ColumnKind is the kind inferred for a column from its first row.
type ColumnKind string

const (
	ColumnNumeric ColumnKind = "numeric"
	ColumnText    ColumnKind = "text"
)

// Column is a named column with its load-time kind.
type Column struct {
	Name string     `json:"name" yaml:"name"`
	Kind ColumnKind `json:"kind" yaml:"kind"`
}

// Row maps every declared column name to its cell.
type Row map[string]Value

// Clone returns a shallow copy of the row (Values are immutable).
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Mutation is one entry of the table's change journal. Mutations are
// destructive; the journal only records what happened.
type Mutation struct {
	ID     string    `json:"id" yaml:"id"`
	Op     string    `json:"op" yaml:"op"`
	Detail string    `json:"detail" yaml:"detail"`
	At     time.Time `json:"at" yaml:"at"`
}

// Table is an ordered set of rows over an ordered, unique set of columns.
// Row order is significant: it is the implicit time axis for decomposition
// and forecasting.
//
// A Table is not safe for concurrent use; see the session package.
type Table struct {
	Name string

	cols    []Column
	index   map[string]int
	rows    []Row
	journal []Mutation
}

// New builds a table from column names and rows. Missing row entries are
// filled with Absent and column kinds are inferred from the first row.
func New(name string, columns []string, rows []Row) (*Table, error) {
	t := &Table{Name: name, index: make(map[string]int, len(columns))}
	for _, c := range columns {
		if strings.TrimSpace(c) == "" {
			return nil, &ColumnError{Name: c, Reason: "empty column name"}
		}
		if _, dup := t.index[c]; dup {
			return nil, &ColumnError{Name: c, Reason: "duplicate column name"}
		}
		t.index[c] = len(t.cols)
		t.cols = append(t.cols, Column{Name: c})
	}
	t.rows = make([]Row, len(rows))
	for i, r := range rows {
		row := make(Row, len(t.cols))
		for _, c := range t.cols {
			row[c.Name] = r[c.Name]
		}
		t.rows[i] = row
	}
	for i := range t.cols {
		t.cols[i].Kind = t.inferKind(t.cols[i].Name)
	}
	return t, nil
}

func (t *Table) inferKind(name string) ColumnKind {
	if len(t.rows) == 0 {
		return ColumnText
	}
	if _, ok := t.rows[0][name].Float(); ok {
		return ColumnNumeric
	}
	return ColumnText
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Columns returns a copy of the column list in declaration order.
func (t *Table) Columns() []Column {
	out := make([]Column, len(t.cols))
	copy(out, t.cols)
	return out
}

// ColumnNames returns the column names in declaration order.
func (t *Table) ColumnNames() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.Name
	}
	return out
}

// NumericColumns returns the names of columns whose inferred kind is numeric.
func (t *Table) NumericColumns() []string {
	var out []string
	for _, c := range t.cols {
		if c.Kind == ColumnNumeric {
			out = append(out, c.Name)
		}
	}
	return out
}

// HasColumn reports whether name is a declared column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column looks up a column by name.
func (t *Table) Column(name string) (Column, error) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, &ColumnError{Name: name}
	}
	return t.cols[i], nil
}

// Require returns an error for the first name that is not a declared column.
func (t *Table) Require(names ...string) error {
	for _, n := range names {
		if !t.HasColumn(n) {
			return &ColumnError{Name: n}
		}
	}
	return nil
}

// Row returns the i-th row. The returned map must not be modified.
func (t *Table) Row(i int) Row { return t.rows[i] }

// Rows returns the row sequence. Callers must treat it as read-only.
func (t *Table) Rows() []Row { return t.rows }

// Value returns the cell at row i, column col.
func (t *Table) Value(i int, col string) Value { return t.rows[i][col] }

// Numbers returns the present numeric cells of col in row order.
func (t *Table) Numbers(col string) ([]float64, error) {
	if !t.HasColumn(col) {
		return nil, &ColumnError{Name: col}
	}
	out := make([]float64, 0, len(t.rows))
	for _, r := range t.rows {
		if f, ok := r[col].Float(); ok {
			out = append(out, f)
		}
	}
	return out, nil
}

// SetValue overwrites a single cell.
func (t *Table) SetValue(i int, col string, v Value) error {
	if !t.HasColumn(col) {
		return &ColumnError{Name: col}
	}
	if i < 0 || i >= len(t.rows) {
		return fmt.Errorf("row %d out of range [0,%d)", i, len(t.rows))
	}
	t.rows[i][col] = v
	return nil
}

// AppendColumn adds a new column with one value per row. The column kind
// is inferred from the first value.
func (t *Table) AppendColumn(name string, values []Value) error {
	if strings.TrimSpace(name) == "" {
		return &ColumnError{Name: name, Reason: "empty column name"}
	}
	if t.HasColumn(name) {
		return &ColumnError{Name: name, Reason: "column already exists"}
	}
	if len(values) != len(t.rows) {
		return fmt.Errorf("append column %q: got %d values for %d rows", name, len(values), len(t.rows))
	}
	for i, r := range t.rows {
		r[name] = values[i]
	}
	t.index[name] = len(t.cols)
	t.cols = append(t.cols, Column{Name: name})
	t.cols[len(t.cols)-1].Kind = t.inferKind(name)
	return nil
}

// Retain keeps the rows for which keep returns true and reports how many
// rows were dropped. The column set is unchanged.
func (t *Table) Retain(keep func(Row) bool) int {
	kept := t.rows[:0]
	for _, r := range t.rows {
		if keep(r) {
			kept = append(kept, r)
		}
	}
	dropped := len(t.rows) - len(kept)
	for i := len(kept); i < len(t.rows); i++ {
		t.rows[i] = nil
	}
	t.rows = kept
	return dropped
}

// Record appends an entry to the mutation journal and returns it.
func (t *Table) Record(op, detail string) Mutation {
	m := Mutation{ID: uuid.NewString(), Op: op, Detail: detail, At: time.Now()}
	t.journal = append(t.journal, m)
	return m
}

// Journal returns the mutations applied so far, oldest first.
func (t *Table) Journal() []Mutation {
	out := make([]Mutation, len(t.journal))
	copy(out, t.journal)
	return out
}

// Clone returns a deep copy of the table, journal included.
func (t *Table) Clone() *Table {
	c := &Table{
		Name:    t.Name,
		cols:    make([]Column, len(t.cols)),
		index:   make(map[string]int, len(t.index)),
		rows:    make([]Row, len(t.rows)),
		journal: make([]Mutation, len(t.journal)),
	}
	copy(c.cols, t.cols)
	for k, v := range t.index {
		c.index[k] = v
	}
	for i, r := range t.rows {
		c.rows[i] = r.Clone()
	}
	copy(c.journal, t.journal)
	return c
}

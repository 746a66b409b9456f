package table

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindAbsent Kind = iota
	KindNumber
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return "absent"
	}
}

// Value is a single cell: a number, a piece of text, or nothing.
// The zero Value is Absent.
type Value struct {
	kind Kind
	num  float64
	str  string
}

// Number returns a numeric cell.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Text returns a textual cell. Empty text is folded into Absent so that
// null, undefined and "" all mean the same thing downstream.
func Text(s string) Value {
	if s == "" {
		return Value{}
	}
	return Value{kind: KindText, str: s}
}

// Absent returns the empty cell.
func Absent() Value { return Value{} }

func (v Value) Kind() Kind      { return v.kind }
func (v Value) IsAbsent() bool  { return v.kind == KindAbsent }
func (v Value) IsNumber() bool  { return v.kind == KindNumber }
func (v Value) IsText() bool    { return v.kind == KindText }
func (v Value) Raw() float64    { return v.num }
func (v Value) TextRaw() string { return v.str }

// Float reports the numeric payload. NaN numbers are treated as exclusions,
// the same as absent or text cells.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber || math.IsNaN(v.num) {
		return 0, false
	}
	return v.num, true
}

// String renders the cell for display and export. Absent renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return FormatNumber(v.num)
	case KindText:
		return v.str
	default:
		return ""
	}
}

// Key is the grouping key of the cell. Absent cells group under "null".
func (v Value) Key() string {
	if v.kind == KindAbsent {
		return "null"
	}
	return v.String()
}

// Equal reports whether both cells hold the same variant and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == o.num
	case KindText:
		return v.str == o.str
	default:
		return true
	}
}

// Compare orders two cells: numbers numerically, text lexically, and across
// variants number < text < absent. The result is -1, 0 or 1.
func (v Value) Compare(o Value) int {
	if v.kind != o.kind {
		if rank(v.kind) < rank(o.kind) {
			return -1
		}
		return 1
	}
	switch v.kind {
	case KindNumber:
		switch {
		case v.num < o.num:
			return -1
		case v.num > o.num:
			return 1
		}
	case KindText:
		return strings.Compare(v.str, o.str)
	}
	return 0
}

func rank(k Kind) int {
	switch k {
	case KindNumber:
		return 0
	case KindText:
		return 1
	default:
		return 2
	}
}

// FormatNumber renders a float with the shortest representation that round-trips.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// MarshalJSON encodes numbers as JSON numbers, text as strings and absent as null.
// Non-finite numbers have no JSON form and are encoded as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(v.num)
	case KindText:
		return json.Marshal(v.str)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts numbers, strings, booleans (kept as text) and null.
func (v *Value) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case nil:
		*v = Absent()
	case float64:
		*v = Number(x)
	case string:
		*v = Text(x)
	case bool:
		*v = Text(strconv.FormatBool(x))
	default:
		*v = Text(string(b))
	}
	return nil
}

// MarshalYAML mirrors MarshalJSON for gopkg.in/yaml.v3.
func (v Value) MarshalYAML() (any, error) {
	switch v.kind {
	case KindNumber:
		return v.num, nil
	case KindText:
		return v.str, nil
	default:
		return nil, nil
	}
}

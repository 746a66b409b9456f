package expr

import (
	"errors"
	"fmt"
)

// ErrExpression matches every *Error via errors.Is.
var ErrExpression = errors.New("expression error")

// Error describes a malformed expression, an undefined identifier or a
// disallowed operation. Pos is a byte offset into Expr, or -1 when the
// failure is not tied to a position.
type Error struct {
	Expr   string
	Pos    int
	Reason string
}

func (e *Error) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("expression %q: %s at offset %d", e.Expr, e.Reason, e.Pos)
	}
	return fmt.Sprintf("expression %q: %s", e.Expr, e.Reason)
}

func (e *Error) Is(target error) bool { return target == ErrExpression }

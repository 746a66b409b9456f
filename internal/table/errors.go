package table

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is matching across packages.
var (
	// ErrInsufficientData indicates fewer rows or points than an operation needs.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrInvalidColumn indicates a referenced column does not exist or cannot be created.
	ErrInvalidColumn = errors.New("invalid column")
)

// InsufficientDataError reports how many points an operation needed and how many it got.
type InsufficientDataError struct {
	Op   string
	Need int
	Have int
}

func (e *InsufficientDataError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("insufficient data: need at least %d values, have %d", e.Need, e.Have)
	}
	return fmt.Sprintf("%s: insufficient data: need at least %d values, have %d", e.Op, e.Need, e.Have)
}

func (e *InsufficientDataError) Is(target error) bool { return target == ErrInsufficientData }

// ColumnError indicates a bad column reference.
type ColumnError struct {
	Name   string
	Reason string
}

func (e *ColumnError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("column %q not found", e.Name)
	}
	return fmt.Sprintf("column %q: %s", e.Name, e.Reason)
}

func (e *ColumnError) Is(target error) bool { return target == ErrInvalidColumn }

// Insufficient builds an InsufficientDataError.
func Insufficient(op string, need, have int) error {
	return &InsufficientDataError{Op: op, Need: need, Have: have}
}

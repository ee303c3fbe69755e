package analysis

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingColumn marks a required column absent from the header.
	ErrMissingColumn = errors.New("missing required column")
	// ErrBadDate marks a date cell that no known layout accepts.
	ErrBadDate = errors.New("invalid date")
	// ErrNotInteger marks a rank or week cell that is not an integer.
	ErrNotInteger = errors.New("not an integer")
	// ErrEmptySelection is matched by every EmptySelectionError.
	ErrEmptySelection = errors.New("empty selection")
)

// DataFormatError reports malformed input. Line is 1-based and counts the
// header; it is 0 for header-level problems. Syntax errors found before any
// column is known carry Position (1-based character offset) instead of Column.
type DataFormatError struct {
	Line     int
	Column   string
	Value    string
	Position int
	Err      error
}

func (e *DataFormatError) Error() string {
	switch {
	case e.Column == "":
		return fmt.Sprintf("data format: line %d position %d: %v", e.Line, e.Position, e.Err)
	case e.Line == 0:
		return fmt.Sprintf("data format: column %q: %v", e.Column, e.Err)
	}
	return fmt.Sprintf("data format: line %d column %q value %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *DataFormatError) Unwrap() error { return e.Err }

// EmptySelectionError is returned alongside an empty result when a filter or
// selection matches nothing. It is not fatal.
type EmptySelectionError struct {
	What string
}

func (e *EmptySelectionError) Error() string {
	if e.What == "" {
		return ErrEmptySelection.Error()
	}
	return fmt.Sprintf("%s: %s", ErrEmptySelection.Error(), e.What)
}

func (e *EmptySelectionError) Is(target error) bool { return target == ErrEmptySelection }

// IsEmptySelection reports whether err is (or wraps) an empty selection.
func IsEmptySelection(err error) bool { return errors.Is(err, ErrEmptySelection) }

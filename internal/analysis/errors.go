package analysis

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput indicates an upload with no bytes or no header row.
	ErrEmptyInput = errors.New("empty input")
	// ErrInvalidEncoding indicates bytes that are not valid UTF-8 text.
	ErrInvalidEncoding = errors.New("input is not valid UTF-8")
	// ErrTooManyRows indicates a table longer than the configured row limit.
	ErrTooManyRows = errors.New("too many rows")
	// ErrNoValueColumn indicates a table with no column besides Time.
	ErrNoValueColumn = errors.New("no column to use as the value series")
	// ErrValueColumnNotFound indicates an explicitly requested value column that does not exist.
	ErrValueColumnNotFound = errors.New("value column not found")
	// ErrDuplicateValueColumn indicates that a column other than the requested one is already named "variable".
	ErrDuplicateValueColumn = errors.New("another column is already named " + ValueColumn)
	// ErrTimeParse indicates a Time cell that is not a recognizable date/time.
	ErrTimeParse = errors.New("unrecognized date/time")
	// ErrNotNumeric indicates a value cell that cannot be read as a number.
	ErrNotNumeric = errors.New("value is not numeric")
	// ErrNoValues indicates a value column without any numeric entry.
	ErrNoValues = errors.New("value column has no numeric entries")
)

// IngestionError reports bytes that could not be read as a delimited table.
type IngestionError struct {
	Source string
	Line   int
	Err    error
}

func (e *IngestionError) Error() string {
	name := e.Source
	if name == "" {
		name = "upload"
	}
	if e.Line > 0 {
		return fmt.Sprintf("read %s: line %d: %v", name, e.Line, e.Err)
	}
	return fmt.Sprintf("read %s: %v", name, e.Err)
}

func (e *IngestionError) Unwrap() error { return e.Err }

// NormalizationError reports a table that cannot be brought into the time + value shape.
type NormalizationError struct {
	Column string
	Row    int // 1-based data row, 0 when not row specific
	Value  string
	Err    error
}

func (e *NormalizationError) Error() string {
	switch {
	case e.Row > 0:
		return fmt.Sprintf("normalize column %q: row %d: %q: %v", e.Column, e.Row, e.Value, e.Err)
	case e.Column != "":
		return fmt.Sprintf("normalize column %q: %v", e.Column, e.Err)
	default:
		return fmt.Sprintf("normalize: %v", e.Err)
	}
}

func (e *NormalizationError) Unwrap() error { return e.Err }

// TypeError reports a value column that cannot take part in statistics or filtering.
type TypeError struct {
	Column string
	Row    int
	Value  string
	Err    error
}

func (e *TypeError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("column %q: row %d: %q: %v", e.Column, e.Row, e.Value, e.Err)
	}
	return fmt.Sprintf("column %q: %v", e.Column, e.Err)
}

func (e *TypeError) Unwrap() error { return e.Err }

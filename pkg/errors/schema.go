package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ColumnNotFoundError is returned when a step needs a column that the
// record table does not carry.
type ColumnNotFoundError struct {
	Step   string
	Column string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("creditdefault: %s: required column %q not found", e.Step, e.Column)
}

// MarshalZerologObject adds the structured fields to a zerolog event.
func (e *ColumnNotFoundError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("step", e.Step).
		Str("column", e.Column).
		Str("type", "ColumnNotFoundError")
}

// NewColumnNotFoundError creates a ColumnNotFoundError with a stack trace.
func NewColumnNotFoundError(step, column string) error {
	return errors.WithStack(&ColumnNotFoundError{Step: step, Column: column})
}

// TargetValueError is returned when a target cell is outside the
// recognised SIM/NAO vocabulary after normalisation.
type TargetValueError struct {
	Column  string
	Row     int
	Value   string
	Missing bool
}

func (e *TargetValueError) Error() string {
	if e.Missing {
		return fmt.Sprintf("creditdefault: target column %q: missing value at row %d", e.Column, e.Row)
	}
	return fmt.Sprintf("creditdefault: target column %q: unrecognised value %q at row %d (expected SIM or NAO)", e.Column, e.Value, e.Row)
}

// MarshalZerologObject adds the structured fields to a zerolog event.
func (e *TargetValueError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("column", e.Column).
		Int("row", e.Row).
		Str("value", e.Value).
		Bool("missing", e.Missing).
		Str("type", "TargetValueError")
}

// NewTargetValueError creates a TargetValueError with a stack trace.
func NewTargetValueError(column string, row int, value string, missing bool) error {
	return errors.WithStack(&TargetValueError{Column: column, Row: row, Value: value, Missing: missing})
}

// SourceError wraps connectivity and query failures at the database boundary.
type SourceError struct {
	Op     string
	Driver string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("creditdefault: source %s (%s): %v", e.Op, e.Driver, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// NewSourceError creates a SourceError with a stack trace.
func NewSourceError(op, driver string, err error) error {
	return errors.WithStack(&SourceError{Op: op, Driver: driver, Err: err})
}

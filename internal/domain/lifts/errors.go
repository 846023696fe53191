package lifts

import (
	"errors"
	"fmt"
)

// Sentinel kinds for transform errors. These allow errors.Is from callers.
var (
	ErrMissingColumn = errors.New("missing column")
	ErrNotNumeric    = errors.New("not a number")
	ErrUnknownStage  = errors.New("unknown stage")
)

// MissingColumnError reports a column a transform requires but the table lacks.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing column '%s'", e.Column)
}

func (e *MissingColumnError) Unwrap() error { return ErrMissingColumn }

// CellError reports a cell that should hold a weight but does not.
// Row is 1-indexed and excludes the header.
type CellError struct {
	Column string
	Row    int
	Value  string
}

func (e *CellError) Error() string {
	return fmt.Sprintf("error in '%s' row %d: '%s' not a number", e.Column, e.Row, e.Value)
}

func (e *CellError) Unwrap() error { return ErrNotNumeric }

// Error kind labels, used for metrics and API error codes.
const (
	KindMissingColumn = "missing_column"
	KindNotNumeric    = "not_numeric"
	KindUnknownStage  = "unknown_stage"
	KindOther         = "other"
)

// ErrorKind classifies err. When joined errors disagree, a missing column wins.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingColumn):
		return KindMissingColumn
	case errors.Is(err, ErrNotNumeric):
		return KindNotNumeric
	case errors.Is(err, ErrUnknownStage):
		return KindUnknownStage
	default:
		return KindOther
	}
}

package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest       = errors.New("bad request")
	ErrTooLarge         = errors.New("request body too large")
	ErrTransform        = errors.New("transform failed")
	ErrMethodNotAllowed = errors.New("method not allowed")
)

// KindError ties an error to the handler operation that saw it and the
// sentinel kind used to pick the response status.
type KindError struct {
	Op   string
	Kind error
	Err  error
}

func (e *KindError) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *KindError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// WrapKind attaches op and kind to err.
func WrapKind(op string, kind, err error) error {
	return &KindError{Op: op, Kind: kind, Err: err}
}

// NewKind builds an error that only carries a kind.
func NewKind(op string, kind error) error {
	return &KindError{Op: op, Kind: kind}
}

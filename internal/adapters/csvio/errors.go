package csvio

import "errors"

// Sentinel kinds for sheet IO errors.
var (
	ErrEmptyInput = errors.New("input has no header row")
	ErrNoSheet    = errors.New("workbook has no matching sheet")
)

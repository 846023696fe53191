package table

import "errors"

// Sentinel kinds for table construction errors.
var (
	ErrRaggedRow       = errors.New("row length does not match column count")
	ErrDuplicateColumn = errors.New("duplicate column name")
)

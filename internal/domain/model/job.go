// Package model contains domain models passed between layers.
package model

import "time"

// Job asks the batch pool to transform one sheet.
type Job struct {
	ID     string // unique per submission
	Path   string // sheet to read (.csv or .xlsx)
	Output string // where to write the result; equal to Path for in-place runs
}

// Outcome labels for finished jobs.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Result reports how a job ended.
type Result struct {
	JobID    string
	Path     string
	Output   string
	Rows     int
	Err      error
	Duration time.Duration
}

// Outcome returns OutcomeOK or OutcomeFailed.
func (r Result) Outcome() string {
	if r.Err != nil {
		return OutcomeFailed
	}
	return OutcomeOK
}

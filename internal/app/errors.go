package service

import "errors"

var (
	// ErrNotStarted is returned when jobs are submitted before Start or after Wait.
	ErrNotStarted = errors.New("service not started")
	// ErrDuplicateJob is returned when the same file is submitted twice.
	ErrDuplicateJob = errors.New("file already submitted")
	// ErrOutputCollision is returned when two submitted files would write the same output.
	ErrOutputCollision = errors.New("output already claimed by another file")
	// ErrQueueFull is returned when the batch queue rejects a job.
	ErrQueueFull = errors.New("batch queue full")
)

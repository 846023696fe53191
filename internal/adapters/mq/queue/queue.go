// Package queue holds batch jobs until a worker picks them up.
package queue

import (
	"context"
	"sync"

	"github.com/okian/liftsheet/internal/domain/model"
	"github.com/okian/liftsheet/pkg/metrics"
)

const defaultQueueCapacity = 1024

// Job is the payload flowing through the queue.
type Job = model.Job

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a job. Returns false if the queue is full or closed.
	Enqueue(ctx context.Context, j Job) bool

	// Dequeue returns a channel of jobs. It is closed once the queue is
	// closed and drained.
	Dequeue(ctx context.Context) <-chan Job

	// Len returns the number of pending jobs.
	Len(ctx context.Context) int

	// Close stops accepting jobs. Pending jobs are still delivered.
	Close() error

	IsClosed() bool
}

// InMemoryQueue implements Queue with a buffered channel.
type InMemoryQueue struct {
	jobs     chan Job
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.jobs = make(chan Job, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds a job to the queue without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, j Job) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordEnqueueError(reasonClosed)
		return false
	}
	if ctx.Err() != nil {
		metrics.RecordEnqueueError(reasonCancelled)
		return false
	}

	select {
	case q.jobs <- j:
		metrics.UpdateQueueSize(len(q.jobs))
		return true
	default:
		metrics.RecordEnqueueError(reasonFull)
		return false
	}
}

// Dequeue returns a channel that receives jobs as they become available.
// Each caller gets its own channel; jobs are shared among callers.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Job {
	out := make(chan Job)
	go func() {
		defer close(out)
		for {
			var j Job
			select {
			case <-ctx.Done():
				return
			case next, ok := <-q.jobs:
				if !ok {
					return
				}
				j = next
			}
			metrics.UpdateQueueSize(len(q.jobs))
			select {
			case out <- j:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued jobs.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.jobs)
	metrics.UpdateQueueSize(size)
	return size
}

// Close stops the queue accepting jobs. It is safe to call more than once.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.jobs)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

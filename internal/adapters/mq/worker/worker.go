// Package worker runs batch jobs concurrently. Each job owns its table, so
// workers share nothing but the queue.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"

	"github.com/okian/liftsheet/internal/domain/model"
	"github.com/okian/liftsheet/pkg/logger"
	"github.com/okian/liftsheet/pkg/metrics"
)

// Job is what workers read off the queue.
type Job = model.Job

// Processor transforms the sheet named by a job.
type Processor interface {
	Process(ctx context.Context, j Job) model.Result
}

// Reporter receives every finished job.
type Reporter interface {
	Report(ctx context.Context, r model.Result)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// InMemoryWorker processes jobs from a channel.
type InMemoryWorker struct {
	jobs     <-chan Job
	proc     Processor
	reporter Reporter
	name     string
	logger   logger.Logger
	done     chan struct{}
}

// NewInMemoryWorker creates a worker reading from jobs.
func NewInMemoryWorker(jobs <-chan Job, proc Processor, reporter Reporter, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		jobs:     jobs,
		proc:     proc,
		reporter: reporter,
		name:     "worker",
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run processes jobs until the channel closes or ctx is cancelled.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-w.jobs:
			if !ok {
				return
			}
			w.handle(ctx, j)
		}
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

func (w *InMemoryWorker) handle(ctx context.Context, j Job) {
	metrics.WorkerBusy(1)
	defer metrics.WorkerBusy(-1)

	res := w.proc.Process(ctx, j)
	metrics.RecordJob(res.Outcome())

	if res.Err != nil {
		w.logger.Warn(ctx, "job failed",
			logger.String("job", j.ID),
			logger.String("path", j.Path),
			logger.Error(res.Err),
		)
	} else {
		w.logger.Debug(ctx, "job done",
			logger.String("job", j.ID),
			logger.String("output", res.Output),
			logger.Int("rows", res.Rows),
			logger.Duration("took", res.Duration),
		)
	}
	if w.reporter != nil {
		w.reporter.Report(ctx, res)
	}
}

// Pool manages multiple workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	feed    chan Job
	logger  logger.Logger
	started sync.Once
}

// NewPool creates a pool. A workerCount below one uses one worker per CPU.
func NewPool(workerCount int, q Queue, proc Processor, reporter Reporter) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	p.buildWorkers(proc, reporter)
	metrics.UpdateWorkerCount(workerCount)
	return p
}

func (p *Pool) buildWorkers(proc Processor, reporter Reporter) {
	// Workers share one dequeue channel; the queue hands each job to exactly one of them.
	jobs := make(chan Job)
	p.feed = jobs
	for i := range p.workers {
		p.workers[i] = NewInMemoryWorker(jobs, proc, reporter, WithName("worker-"+strconv.Itoa(i)))
	}
}

// Start launches the workers. Calling it again has no effect.
func (p *Pool) Start(ctx context.Context) {
	p.started.Do(func() {
		go p.pump(ctx)
		for _, w := range p.workers {
			go w.Run(ctx)
		}
		p.logger.Debug(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
	})
}

// pump forwards queued jobs to the shared worker channel.
func (p *Pool) pump(ctx context.Context) {
	defer close(p.feed)
	for j := range p.queue.Dequeue(ctx) {
		select {
		case p.feed <- j:
		case <-ctx.Done():
			return
		}
	}
}

// Wait blocks until every worker has returned, which happens once the queue
// is closed and drained or the context passed to Start is cancelled.
func (p *Pool) Wait(ctx context.Context) error {
	for i, w := range p.workers {
		select {
		case <-w.Done():
		case <-ctx.Done():
			p.logger.Warn(ctx, "worker wait timed out", logger.Int("worker_id", i))
			return fmt.Errorf("wait for workers: %w", ctx.Err())
		}
	}
	return nil
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

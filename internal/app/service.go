// Package service wires the table transforms to the batch pool and exposes
// the operations used by the HTTP API and the command line.
package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/liftsheet/internal/adapters/csvio"
	jobqueue "github.com/okian/liftsheet/internal/adapters/mq/queue"
	workerpool "github.com/okian/liftsheet/internal/adapters/mq/worker"
	"github.com/okian/liftsheet/internal/domain/dedupe"
	"github.com/okian/liftsheet/internal/domain/lifts"
	"github.com/okian/liftsheet/internal/domain/model"
	"github.com/okian/liftsheet/internal/domain/table"
	"github.com/okian/liftsheet/pkg/logger"
	"github.com/okian/liftsheet/pkg/metrics"
)

const (
	defaultQueueSize    = 1024
	defaultOutputSuffix = ".out"
	outputExt           = ".csv"
)

// Service runs transforms synchronously and in batches.
type Service struct {
	mu sync.RWMutex

	// Core components
	deduper dedupe.Deduper
	queue   jobqueue.Queue
	pool    *workerpool.Pool

	// Configuration
	workerCount  int
	queueSize    int
	dedupeSize   int
	stages       []lifts.Stage
	inPlace      bool
	outputSuffix string

	// State
	started   bool
	submitted int
	results   []model.Result

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of batch workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending batch jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize bounds the set of remembered files. Zero keeps every file.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size >= 0 {
			s.dedupeSize = size
		}
	}
}

// WithStages sets the stages used when a caller does not name any.
func WithStages(stages []lifts.Stage) Option {
	return func(s *Service) {
		if len(stages) > 0 {
			s.stages = stages
		}
	}
}

// WithInPlace makes batch jobs overwrite their input.
func WithInPlace(inPlace bool) Option {
	return func(s *Service) {
		s.inPlace = inPlace
	}
}

// WithOutputSuffix sets the suffix added to batch output names, as in
// "entries.csv" -> "entries.out.csv".
func WithOutputSuffix(suffix string) Option {
	return func(s *Service) {
		if suffix != "" {
			s.outputSuffix = suffix
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:  runtime.NumCPU(),
		queueSize:    defaultQueueSize,
		stages:       lifts.DefaultStages(),
		outputSuffix: defaultOutputSuffix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the batch components and launches the workers. The workers
// stop when ctx is cancelled or when Wait has drained the queue.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	q := jobqueue.NewInMemoryQueue(jobqueue.WithCapacity(s.queueSize))
	s.queue = q
	s.pool = workerpool.NewPool(s.workerCount, q, s, s)
	s.pool.Start(ctx)
	s.submitted = 0
	s.results = nil

	s.started = true
	s.logger.Info(ctx, "liftsheet service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.String("stages", stageList(s.stages)),
	)
	return nil
}

// Stop closes the queue. Jobs already queued still run unless the context
// given to Start is cancelled.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	_ = s.queue.Close()
	s.started = false
	s.logger.Info(context.Background(), "liftsheet service stopped")
}

// Stages returns the configured default stages.
func (s *Service) Stages() []lifts.Stage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stages
}

// Transform runs stages over t and returns the new table. A nil stage list
// uses the configured stages. t is never modified.
func (s *Service) Transform(ctx context.Context, t *table.Table, stages []lifts.Stage) (*table.Table, error) {
	if stages == nil {
		stages = s.Stages()
	}
	observed := make([]lifts.Stage, len(stages))
	for i, st := range stages {
		observed[i] = lifts.Stage{Name: st.Name, Apply: observeStage(ctx, st)}
	}
	out, err := lifts.Run(t, observed...)
	if err != nil {
		return nil, err
	}
	metrics.AddRowsProcessed(out.Len())
	return out, nil
}

// observeStage wraps st so each run is timed and counted. A cancelled ctx
// stops the pipeline before the next stage starts.
func observeStage(ctx context.Context, st lifts.Stage) func(*table.Table) (*table.Table, error) {
	return func(t *table.Table) (*table.Table, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		next, err := st.Apply(t)
		metrics.RecordStage(st.Name, lifts.ErrorKind(err), float64(time.Since(start).Microseconds())/1000)
		return next, err
	}
}

// Submit queues path for a batch transform.
func (s *Service) Submit(ctx context.Context, path string) (model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return model.Job{}, ErrNotStarted
	}

	inKey, err := dedupeKey("in:", path)
	if err != nil {
		return model.Job{}, err
	}
	if s.deduper.SeenAndRecord(ctx, inKey) {
		metrics.RecordJob("duplicate")
		return model.Job{}, fmt.Errorf("%w: %s", ErrDuplicateJob, path)
	}

	job := model.Job{
		ID:     uuid.NewString(),
		Path:   path,
		Output: s.outputPath(path),
	}
	// Distinct inputs such as meet.csv and meet.xlsx share an output name.
	outKey, err := dedupeKey("out:", job.Output)
	if err != nil {
		s.deduper.Unrecord(ctx, inKey)
		return model.Job{}, err
	}
	if s.deduper.SeenAndRecord(ctx, outKey) {
		s.deduper.Unrecord(ctx, inKey)
		metrics.RecordJob("duplicate")
		return model.Job{}, fmt.Errorf("%w: %s writes %s", ErrOutputCollision, path, job.Output)
	}

	if !s.queue.Enqueue(ctx, job) {
		s.deduper.Unrecord(ctx, inKey)
		s.deduper.Unrecord(ctx, outKey)
		return model.Job{}, fmt.Errorf("%w: %s", ErrQueueFull, path)
	}
	s.submitted++
	s.logger.Debug(ctx, "job submitted",
		logger.String("job", job.ID),
		logger.String("path", job.Path),
		logger.String("output", job.Output),
	)
	return job, nil
}

// Wait closes the queue, waits for every submitted job and returns their
// results in completion order. The service must be started again before
// the next batch.
func (s *Service) Wait(ctx context.Context) ([]model.Result, error) {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil, ErrNotStarted
	}
	_ = s.queue.Close()
	s.started = false
	pool := s.pool
	s.mu.Unlock()

	if err := pool.Wait(ctx); err != nil {
		return s.Results(), err
	}
	return s.Results(), nil
}

// Results returns a copy of the results reported so far.
func (s *Service) Results() []model.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Result, len(s.results))
	copy(out, s.results)
	return out
}

// Process implements workerpool.Processor: read the sheet, transform it and
// write the output.
func (s *Service) Process(ctx context.Context, j model.Job) model.Result {
	start := time.Now()
	res := model.Result{JobID: j.ID, Path: j.Path, Output: j.Output}

	t, err := csvio.ReadFile(j.Path)
	if err == nil {
		t, err = s.Transform(ctx, t, nil)
	}
	if err == nil {
		err = csvio.WriteFile(j.Output, t)
	}
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", j.Path, err)
	} else {
		res.Rows = t.Len()
	}
	res.Duration = time.Since(start)
	return res
}

// Report implements workerpool.Reporter.
func (s *Service) Report(_ context.Context, r model.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"stages":      stageList(s.stages),
		"inPlace":     s.inPlace,
		"submitted":   s.submitted,
	}

	failed := 0
	for _, r := range s.results {
		if r.Err != nil {
			failed++
		}
	}
	stats["completed"] = len(s.results)
	stats["failed"] = failed

	if s.started {
		stats["queueLength"] = s.queue.Len(context.Background())
		stats["remembered"] = s.deduper.Size()
	}
	return stats
}

// outputPath names the file a job writes. Output is always CSV, so an
// in-place run over a workbook writes a sibling .csv file.
func (s *Service) outputPath(path string) string {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	if s.inPlace {
		return base + outputExt
	}
	return base + s.outputSuffix + outputExt
}

// dedupeKey is the cleaned absolute path behind prefix, which keeps input
// and output keys apart.
func dedupeKey(prefix, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return prefix + filepath.Clean(abs), nil
}

// Failed returns the error of every failed result joined together.
func Failed(results []model.Result) error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errors.Join(errs...)
}

func stageList(stages []lifts.Stage) string {
	names := make([]string, len(stages))
	for i, st := range stages {
		names[i] = st.Name
	}
	return strings.Join(names, ",")
}

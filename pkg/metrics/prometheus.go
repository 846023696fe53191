// Package metrics provides Prometheus metrics for liftsheet.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Transform metrics
	stageRuns     *prometheus.CounterVec
	stageErrors   *prometheus.CounterVec
	stageLatency  *prometheus.HistogramVec
	rowsProcessed prometheus.Counter

	// Batch metrics
	jobs          *prometheus.CounterVec
	queueSize     prometheus.Gauge
	queueCapacity prometheus.Gauge
	enqueueErrors *prometheus.CounterVec
	workerCount   prometheus.Gauge
	workerBusy    prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "liftsheet",
		subsystem:        "transform",
		histogramBuckets: []float64{0.1, 0.5, 1, 5, 10, 50, 100, 500, 1000},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one block per collector
	auto := promauto.With(m.registry)

	m.stageRuns = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "stage_runs_total",
		Help:        "Transform stage runs by stage and outcome",
		ConstLabels: m.constLabels,
	}, []string{"stage", "outcome"})

	m.stageErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "stage_errors_total",
		Help:        "Transform stage failures by stage and error kind",
		ConstLabels: m.constLabels,
	}, []string{"stage", "kind"})

	m.stageLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "stage_latency_milliseconds",
		Help:        "Transform stage latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"stage"})

	m.rowsProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "rows_processed_total",
		Help:        "Rows of successfully transformed tables",
		ConstLabels: m.constLabels,
	})

	m.jobs = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "jobs_total",
		Help:        "Batch jobs by outcome (ok, failed, duplicate)",
		ConstLabels: m.constLabels,
	}, []string{"outcome"})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "queue_size",
		Help:        "Jobs waiting in the batch queue",
		ConstLabels: m.constLabels,
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "queue_capacity",
		Help:        "Maximum batch queue capacity",
		ConstLabels: m.constLabels,
	})

	m.enqueueErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "queue_enqueue_errors_total",
		Help:        "Rejected enqueues by reason",
		ConstLabels: m.constLabels,
	}, []string{"reason"})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "worker_count",
		Help:        "Workers in the batch pool",
		ConstLabels: m.constLabels,
	})

	m.workerBusy = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "worker_busy",
		Help:        "Workers currently processing a job",
		ConstLabels: m.constLabels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "HTTP requests by endpoint, method and status code",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})
}

// RecordStage records one stage run. kind is empty on success.
func (m *Manager) RecordStage(stage, kind string, latencyMs float64) {
	m.stageLatency.WithLabelValues(stage).Observe(latencyMs)
	if kind == "" {
		m.stageRuns.WithLabelValues(stage, "ok").Inc()
		return
	}
	m.stageRuns.WithLabelValues(stage, "error").Inc()
	m.stageErrors.WithLabelValues(stage, kind).Inc()
}

// RecordStage records a stage run on the global manager.
func RecordStage(stage, kind string, latencyMs float64) {
	globalManager.RecordStage(stage, kind, latencyMs)
}

// AddRowsProcessed adds to the processed row counter.
func AddRowsProcessed(n int) {
	globalManager.rowsProcessed.Add(float64(n))
}

// RecordJob counts a finished batch job.
func RecordJob(outcome string) {
	globalManager.jobs.WithLabelValues(outcome).Inc()
}

// UpdateQueueSize sets the current queue backlog.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordEnqueueError counts a rejected enqueue.
func RecordEnqueueError(reason string) {
	globalManager.enqueueErrors.WithLabelValues(reason).Inc()
}

// UpdateWorkerCount sets the number of pool workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// WorkerBusy marks a worker as busy (+1) or idle (-1).
func WorkerBusy(delta int) {
	globalManager.workerBusy.Add(float64(delta))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package metrics provides Prometheus metrics for the fantaleague service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Progression pipeline
	progressionJobs    *prometheus.CounterVec
	progressionDelta   prometheus.Histogram
	progressionLatency prometheus.Histogram
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter
	workerCount        prometheus.Gauge

	// Data access
	cacheRequests    *prometheus.CounterVec
	storeLatency     *prometheus.HistogramVec
	storeErrors      *prometheus.CounterVec
	schedulerRuns    *prometheus.CounterVec
	bidsRanked       prometheus.Counter
	leaguesRefreshed prometheus.Gauge

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByType      *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "fantaleague",
		subsystem:        "api",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: buckets}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric
	auto := promauto.With(m.registry)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.progressionJobs = auto.NewCounterVec(
		m.counterOpts("progression_jobs_total", "Youngster progression jobs by outcome"),
		[]string{"outcome"},
	)
	m.progressionDelta = auto.NewHistogram(
		m.histogramOpts("progression_delta", "Distribution of applied youngster rating deltas", []float64{-3, -2, -1, 0, 1, 2, 3, 4, 5, 6}),
	)
	m.progressionLatency = auto.NewHistogram(
		m.histogramOpts("progression_latency_milliseconds", "Time to evaluate and persist one progression job", m.histogramBuckets),
	)
	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Current number of queued progression jobs"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Maximum number of queued progression jobs"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("queue_utilization_ratio", "Queue size divided by capacity"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("queue_enqueued_total", "Jobs accepted by the queue"))
	m.queueDequeued = auto.NewCounter(m.counterOpts("queue_dequeued_total", "Jobs handed to workers"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total", "Jobs rejected by the queue"))
	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Number of progression workers"))

	m.cacheRequests = auto.NewCounterVec(
		m.counterOpts("cache_requests_total", "Report cache lookups by report and result"),
		[]string{"report", "result"},
	)
	m.storeLatency = auto.NewHistogramVec(
		m.histogramOpts("store_query_latency_milliseconds", "Database query latency by operation", m.histogramBuckets),
		[]string{"operation"},
	)
	m.storeErrors = auto.NewCounterVec(
		m.counterOpts("store_errors_total", "Database errors by operation"),
		[]string{"operation"},
	)
	m.schedulerRuns = auto.NewCounterVec(
		m.counterOpts("scheduler_runs_total", "Scheduled job runs by job and outcome"),
		[]string{"job", "outcome"},
	)
	m.bidsRanked = auto.NewCounter(m.counterOpts("bids_ranked_total", "Free-agent bids valued and ranked"))
	m.leaguesRefreshed = auto.NewGauge(m.gaugeOpts("leagues_refreshed", "Leagues refreshed by the last cache refresh"))

	m.errorsByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Errors by component and type"),
		[]string{"component", "error_type"},
	)
	m.errorsByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Errors by type and severity"),
		[]string{"error_type", "severity"},
	)
	m.errorsByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "HTTP errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_bytes", "Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutines", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_milliseconds", "Average GC pause in milliseconds", []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100}),
	)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordProgressionJob counts a progression job outcome: applied, failed or duplicate.
func RecordProgressionJob(outcome string) {
	globalManager.progressionJobs.WithLabelValues(outcome).Inc()
}

// RecordProgressionDelta observes an applied rating delta.
func RecordProgressionDelta(delta int) {
	globalManager.progressionDelta.Observe(float64(delta))
}

// RecordProgressionLatency observes the time spent on one job.
func RecordProgressionLatency(latencyMs float64) {
	globalManager.progressionLatency.Observe(latencyMs)
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilisation ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue counts an accepted job.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue counts a job handed to a worker.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError counts a rejected job.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordCacheHit counts a cache hit for a report.
func RecordCacheHit(report string) {
	globalManager.cacheRequests.WithLabelValues(report, "hit").Inc()
}

// RecordCacheMiss counts a cache miss for a report.
func RecordCacheMiss(report string) {
	globalManager.cacheRequests.WithLabelValues(report, "miss").Inc()
}

// RecordStoreQueryLatency observes a database call.
func RecordStoreQueryLatency(operation string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordStoreError counts a failed database call.
func RecordStoreError(operation string) {
	globalManager.storeErrors.WithLabelValues(operation).Inc()
}

// RecordSchedulerRun counts a scheduled job run.
func RecordSchedulerRun(job, outcome string) {
	globalManager.schedulerRuns.WithLabelValues(job, outcome).Inc()
}

// RecordBidsRanked adds n to the ranked bids counter.
func RecordBidsRanked(n int) {
	globalManager.bidsRanked.Add(float64(n))
}

// UpdateLeaguesRefreshed sets how many leagues the last refresh covered.
func UpdateLeaguesRefreshed(n int) {
	globalManager.leaguesRefreshed.Set(float64(n))
}

// RecordErrorByComponent records an error by component and type.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorsByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an HTTP error by endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the allocated heap bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime observes the average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the registry the global manager publishes to.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

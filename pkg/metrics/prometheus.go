// Package metrics provides Prometheus metrics for the survey targeting service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Query outcome label values.
const (
	OutcomeMatched      = "matched"
	OutcomeEmpty        = "empty"
	OutcomeInvalid      = "invalid_input"
	OutcomeScoringError = "scoring_error"
	OutcomeFailed       = "failed"
)

// Manager owns every Prometheus collector exposed by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Pipeline
	queries          *prometheus.CounterVec
	pipelineLatency  prometheus.Histogram
	scoringLatency   prometheus.Histogram
	scoringErrors    prometheus.Counter
	lastResultSize   prometheus.Gauge
	rosterRecords    prometheus.Gauge
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	exportBytes      *prometheus.CounterVec
	rateLimitRejects prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
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
		namespace:        "surveytarget",
		subsystem:        "pipeline",
		histogramBuckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for all collectors
	auto := promauto.With(m.registry)

	m.queries = auto.NewCounterVec(
		m.counterOpts("queries_total", "Targeting queries by outcome"),
		[]string{"outcome"},
	)
	m.pipelineLatency = auto.NewHistogram(m.histogramOpts(
		"latency_milliseconds", "End-to-end pipeline latency in milliseconds", m.histogramBuckets))
	m.scoringLatency = auto.NewHistogram(m.histogramOpts(
		"scoring_latency_milliseconds", "Classifier inference latency in milliseconds", m.histogramBuckets))
	m.scoringErrors = auto.NewCounter(m.counterOpts(
		"scoring_errors_total", "Scoring failures, e.g. categories unknown to the model"))
	m.lastResultSize = auto.NewGauge(m.gaugeOpts(
		"last_result_size", "Number of records in the most recent result set"))
	m.rosterRecords = auto.NewGauge(m.gaugeOpts(
		"roster_records", "Number of records in the loaded roster"))
	m.cacheHits = auto.NewCounter(m.counterOpts(
		"cache_hits_total", "Queries answered from the result cache"))
	m.cacheMisses = auto.NewCounter(m.counterOpts(
		"cache_misses_total", "Queries that ran the full pipeline"))
	m.exportBytes = auto.NewCounterVec(
		m.counterOpts("export_bytes_total", "Bytes written by result exports"),
		[]string{"format"},
	)
	m.rateLimitRejects = auto.NewCounter(m.counterOpts(
		"rate_limit_rejects_total", "Requests rejected by the rate limiter"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("http_errors_total", "HTTP errors by endpoint, method and error type"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts(
		"system_memory_usage_bytes", "Heap memory in use in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts(
		"system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts(
		"system_gc_pause_time_milliseconds", "Average GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100}))
}

// RecordQuery counts a finished query with its outcome label.
func RecordQuery(outcome string) {
	globalManager.queries.WithLabelValues(outcome).Inc()
}

// RecordPipelineLatency records end-to-end pipeline latency in milliseconds.
func RecordPipelineLatency(latencyMs float64) {
	globalManager.pipelineLatency.Observe(latencyMs)
}

// RecordScoringLatency records classifier latency in milliseconds.
func RecordScoringLatency(latencyMs float64) {
	globalManager.scoringLatency.Observe(latencyMs)
}

// RecordScoringError increments the scoring errors counter.
func RecordScoringError() {
	globalManager.scoringErrors.Inc()
}

// UpdateLastResultSize sets the size of the most recent result set.
func UpdateLastResultSize(n int) {
	globalManager.lastResultSize.Set(float64(n))
}

// UpdateRosterRecords sets the number of loaded roster records.
func UpdateRosterRecords(n int) {
	globalManager.rosterRecords.Set(float64(n))
}

// RecordCacheHit increments the result cache hit counter.
func RecordCacheHit() {
	globalManager.cacheHits.Inc()
}

// RecordCacheMiss increments the result cache miss counter.
func RecordCacheMiss() {
	globalManager.cacheMisses.Inc()
}

// RecordExportBytes adds n bytes to the export counter for format.
func RecordExportBytes(format string, n int) {
	globalManager.exportBytes.WithLabelValues(format).Add(float64(n))
}

// RecordRateLimitReject increments the rate limiter rejection counter.
func RecordRateLimitReject() {
	globalManager.rateLimitRejects.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package metrics provides Prometheus metrics for the lifelines timeline service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the lifelines service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Layout engine
	layoutComputations  prometheus.Counter
	layoutDuration      prometheus.Histogram
	layoutVisible       prometheus.Gauge
	layoutLanes         prometheus.Gauge
	layoutThreshold     prometheus.Gauge
	layoutCandidates    prometheus.Gauge
	degenerateViewports prometheus.Counter
	emptyLayouts        prometheus.Counter

	// Frame loop
	transformsSubmitted  prometheus.Counter
	transformsSuperseded prometheus.Counter
	framesRendered       prometheus.Counter
	frameSequence        prometheus.Gauge

	// Dataset ingestion
	datasetRecords      prometheus.Gauge
	datasetRejected     *prometheus.CounterVec
	datasetReloads      *prometheus.CounterVec
	datasetLoadDuration prometheus.Histogram

	// Record store
	repositoryRecordsTotal  prometheus.Gauge
	repositoryUpdateLatency prometheus.Histogram
	repositoryQueryLatency  prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "lifelines",
		subsystem:        "timeline",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	m.layoutComputations = m.counter("layout_computations_total", "Total number of layout computations")
	m.layoutDuration = m.histogram("layout_duration_milliseconds", "Layout computation duration in milliseconds",
		[]float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 16, 33, 66})
	m.layoutVisible = m.gauge("layout_visible_records", "Records in the most recent drawing plan")
	m.layoutLanes = m.gauge("layout_lanes", "Lanes used by the most recent drawing plan")
	m.layoutThreshold = m.gauge("layout_threshold", "Prominence threshold applied by the most recent layout")
	m.layoutCandidates = m.gauge("layout_candidates", "Records intersecting the buffered year range in the most recent layout")
	m.degenerateViewports = m.counter("layout_degenerate_viewports_total", "Layouts requested for a viewport without drawable area")
	m.emptyLayouts = m.counter("layout_empty_total", "Layouts that produced no entries")

	m.transformsSubmitted = m.counter("frames_transforms_submitted_total", "Transforms submitted to the frame loop")
	m.transformsSuperseded = m.counter("frames_transforms_superseded_total", "Transforms overwritten before a frame consumed them")
	m.framesRendered = m.counter("frames_rendered_total", "Frames computed by the frame loop")
	m.frameSequence = m.gauge("frames_sequence", "Sequence number of the latest published frame")

	m.datasetRecords = m.gauge("dataset_records", "Records accepted by the most recent dataset load")
	m.datasetRejected = m.counterVec("dataset_rejected_total", "Dataset rows rejected at ingestion", "reason")
	m.datasetReloads = m.counterVec("dataset_reloads_total", "Dataset reloads by result", "result")
	m.datasetLoadDuration = m.histogram("dataset_load_duration_milliseconds", "Dataset load duration in milliseconds", m.histogramBuckets)

	m.repositoryRecordsTotal = m.gauge("repository_records_total", "Total number of records in the store")
	m.repositoryUpdateLatency = m.histogram("repository_update_latency_milliseconds", "Repository update operation latency in milliseconds", m.histogramBuckets)
	m.repositoryQueryLatency = m.histogram("repository_query_latency_milliseconds", "Repository query operation latency in milliseconds", m.histogramBuckets)

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_request_duration_milliseconds",
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: m.constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Total number of errors by component",
		"component", "error_type")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Total number of errors by endpoint",
		"endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// Layout engine.

// RecordLayout records one layout computation and the shape of its plan.
func RecordLayout(durationMs float64, visible, lanes, threshold, candidates int) {
	globalManager.layoutComputations.Inc()
	globalManager.layoutDuration.Observe(durationMs)
	globalManager.layoutVisible.Set(float64(visible))
	globalManager.layoutLanes.Set(float64(lanes))
	globalManager.layoutThreshold.Set(float64(threshold))
	globalManager.layoutCandidates.Set(float64(candidates))
	if visible == 0 {
		globalManager.emptyLayouts.Inc()
	}
}

// RecordDegenerateViewport increments the degenerate viewport counter.
func RecordDegenerateViewport() {
	globalManager.degenerateViewports.Inc()
}

// Frame loop.

// RecordTransformSubmitted increments the submitted transforms counter.
func RecordTransformSubmitted() {
	globalManager.transformsSubmitted.Inc()
}

// RecordTransformSuperseded increments the superseded transforms counter.
func RecordTransformSuperseded() {
	globalManager.transformsSuperseded.Inc()
}

// RecordFrameRendered counts a frame and publishes its sequence number.
func RecordFrameRendered(seq uint64) {
	globalManager.framesRendered.Inc()
	globalManager.frameSequence.Set(float64(seq))
}

// Dataset.

// UpdateDatasetRecords sets the accepted record count of the latest load.
func UpdateDatasetRecords(count int) {
	globalManager.datasetRecords.Set(float64(count))
}

// RecordDatasetRejected adds n rejected rows for a reason.
func RecordDatasetRejected(reason string, n int) {
	globalManager.datasetRejected.WithLabelValues(reason).Add(float64(n))
}

// RecordDatasetReload counts a reload attempt by result ("ok" or "error").
func RecordDatasetReload(result string) {
	globalManager.datasetReloads.WithLabelValues(result).Inc()
}

// RecordDatasetLoadDuration records dataset load duration.
func RecordDatasetLoadDuration(durationMs float64) {
	globalManager.datasetLoadDuration.Observe(durationMs)
}

// Repository.

// UpdateRepositoryRecordsTotal sets the total number of records in the store.
func UpdateRepositoryRecordsTotal(count int) {
	globalManager.repositoryRecordsTotal.Set(float64(count))
}

// RecordRepositoryUpdateLatency records repository update operation latency.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	globalManager.repositoryUpdateLatency.Observe(latencyMs)
}

// RecordRepositoryQueryLatency records repository query operation latency.
func RecordRepositoryQueryLatency(latencyMs float64) {
	globalManager.repositoryQueryLatency.Observe(latencyMs)
}

// HTTP.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Errors.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
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

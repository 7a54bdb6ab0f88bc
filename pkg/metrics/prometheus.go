// Package metrics provides Prometheus metrics for the rd2weekly service.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const defaultSampleInterval = 10 * time.Second

// Latency histograms are in milliseconds; a lineup search or summary build
// runs from well under a millisecond to seconds.
var defaultLatencyBuckets = []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000} //nolint:gochecknoglobals // bucket layout

// Offer outcomes used as the "outcome" label of ranking_offers_total.
const (
	OfferPlaced    = "placed"
	OfferTied      = "tied"
	OfferRejected  = "rejected"
	OfferDuplicate = "duplicate"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	enabled        atomic.Bool
	sampleInterval time.Duration
	constLabels    map[string]string
	metricPrefix   string
	registry       prometheus.Registerer

	// Period pipeline
	periodsSubmitted   prometheus.Counter
	periodsDuplicate   prometheus.Counter
	summariesBuilt     prometheus.Counter
	summaryErrors      *prometheus.CounterVec
	summaryLatency     prometheus.Histogram
	summariesStored    prometheus.Gauge
	categoriesComputed *prometheus.CounterVec

	// Ranking and lineup search
	rankingOffers        *prometheus.CounterVec
	rankingEvictions     prometheus.Counter
	lineupPruned         prometheus.Counter
	lineupEvaluated      prometheus.Counter
	lineupSearchLatency  prometheus.Histogram
	lineupCoOptimalCount prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Queue
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueEnqueued    prometheus.Counter
	queueDequeued    prometheus.Counter
	queueEnqueueErrs prometheus.Counter

	// Worker
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // private registry keeps default Go collectors out

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
	customRegistry.MustRegister(collectors.NewBuildInfoCollector())
}

// NewManager creates a new metrics manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "rd2",
		subsystem:      "weekly",
		latencyBuckets: defaultLatencyBuckets,
		sampleInterval: defaultSampleInterval,
		constLabels:    make(map[string]string),
		registry:       prometheus.DefaultRegisterer,
	}
	m.enabled.Store(true)
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// Enabled reports whether recording is active.
func (m *Manager) Enabled() bool { return m.enabled.Load() }

// SetEnabled turns the package recorders on or off. Collectors stay
// registered; a disabled recorder leaves its series untouched.
func SetEnabled(enabled bool) { globalManager.enabled.Store(enabled) }

func off() bool { return !globalManager.enabled.Load() }

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.constLabels,
		Buckets: buckets,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric
	m.periodsSubmitted = m.counter("periods_submitted_total", "Total number of scoring periods accepted for processing")
	m.periodsDuplicate = m.counter("periods_duplicate_total", "Total number of period submissions rejected as duplicates")
	m.summariesBuilt = m.counter("summaries_built_total", "Total number of weekly summaries built")
	m.summaryErrors = m.counterVec("summary_errors_total", "Summary build errors by stage", "stage")
	m.summaryLatency = m.histogram("summary_build_latency_milliseconds", "Weekly summary build latency in milliseconds", m.latencyBuckets)
	m.summariesStored = m.gauge("summaries_stored", "Number of summaries currently held by the store")
	m.categoriesComputed = m.counterVec("categories_computed_total", "Superlative categories computed by kind", "kind")

	m.rankingOffers = m.counterVec("ranking_offers_total", "Rank tracker offers by outcome", "outcome")
	m.rankingEvictions = m.counter("ranking_evictions_total", "Entities displaced from rank trackers")
	m.lineupPruned = m.counter("lineup_reduction_pruned_total", "Candidates removed from position pools by the reduction pass")
	m.lineupEvaluated = m.counter("lineup_evaluated_total", "Complete lineups evaluated by the optimizer")
	m.lineupSearchLatency = m.histogram("lineup_search_latency_milliseconds", "All-star lineup search latency in milliseconds", m.latencyBuckets)
	m.lineupCoOptimalCount = m.gauge("lineup_co_optimal", "Number of co-optimal lineups found by the last search")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name("http_request_duration_milliseconds"),
		Help: "HTTP request duration in milliseconds", ConstLabels: m.constLabels, Buckets: m.latencyBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.queueSize = m.gauge("queue_size", "Current number of period jobs waiting")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue utilization ratio (current size / capacity)")
	m.queueEnqueued = m.counter("queue_enqueue_total", "Total number of jobs enqueued")
	m.queueDequeued = m.counter("queue_dequeue_total", "Total number of jobs dequeued")
	m.queueEnqueueErrs = m.counter("queue_enqueue_errors_total", "Total number of enqueue errors")

	m.workerCount = m.gauge("worker_count", "Configured number of workers")
	m.workerActiveCount = m.gauge("worker_active_count", "Number of workers currently building a summary")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Worker job latency in milliseconds", m.latencyBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Total number of failed worker jobs")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Total number of errors by component", "component", "error_type")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Total number of errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap memory in use in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordPeriodSubmitted increments the accepted submissions counter.
func RecordPeriodSubmitted() {
	if off() {
		return
	}
	globalManager.periodsSubmitted.Inc()
}

// RecordPeriodDuplicate increments the duplicate submissions counter.
func RecordPeriodDuplicate() {
	if off() {
		return
	}
	globalManager.periodsDuplicate.Inc()
}

// RecordSummaryBuilt increments the built summaries counter.
func RecordSummaryBuilt() {
	if off() {
		return
	}
	globalManager.summariesBuilt.Inc()
}

// RecordSummaryError increments the summary error counter for a stage (ingest, build, store).
func RecordSummaryError(stage string) {
	if off() {
		return
	}
	globalManager.summaryErrors.WithLabelValues(stage).Inc()
}

// RecordSummaryLatency records summary build latency in milliseconds.
func RecordSummaryLatency(latencyMs float64) {
	if off() {
		return
	}
	globalManager.summaryLatency.Observe(latencyMs)
}

// UpdateSummariesStored sets the number of stored summaries.
func UpdateSummariesStored(count int) {
	if off() {
		return
	}
	globalManager.summariesStored.Set(float64(count))
}

// RecordCategoryComputed increments the per-kind category counter.
func RecordCategoryComputed(kind string) {
	if off() {
		return
	}
	globalManager.categoriesComputed.WithLabelValues(kind).Inc()
}

// RecordRankingOffers adds n offers with the given outcome.
func RecordRankingOffers(outcome string, n int) {
	if n <= 0 || off() {
		return
	}
	globalManager.rankingOffers.WithLabelValues(outcome).Add(float64(n))
}

// RecordRankingEvictions adds n displaced entities.
func RecordRankingEvictions(n int) {
	if n <= 0 || off() {
		return
	}
	globalManager.rankingEvictions.Add(float64(n))
}

// RecordLineupPruned adds n candidates removed by pool reduction.
func RecordLineupPruned(n int) {
	if n <= 0 || off() {
		return
	}
	globalManager.lineupPruned.Add(float64(n))
}

// RecordLineupEvaluated adds n evaluated lineups.
func RecordLineupEvaluated(n int) {
	if n <= 0 || off() {
		return
	}
	globalManager.lineupEvaluated.Add(float64(n))
}

// RecordLineupSearchLatency records lineup search latency in milliseconds.
func RecordLineupSearchLatency(latencyMs float64) {
	if off() {
		return
	}
	globalManager.lineupSearchLatency.Observe(latencyMs)
}

// UpdateLineupCoOptimal sets the number of co-optimal lineups of the last search.
func UpdateLineupCoOptimal(count int) {
	if off() {
		return
	}
	globalManager.lineupCoOptimalCount.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if off() {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if off() {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	if off() {
		return
	}
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	if off() {
		return
	}
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	if off() {
		return
	}
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	if off() {
		return
	}
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	if off() {
		return
	}
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	if off() {
		return
	}
	globalManager.queueEnqueueErrs.Inc()
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	if off() {
		return
	}
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) {
	if off() {
		return
	}
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	if off() {
		return
	}
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	if off() {
		return
	}
	globalManager.workerErrors.Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	if off() {
		return
	}
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if off() {
		return
	}
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap memory in use.
func UpdateSystemMemoryUsage(bytes uint64) {
	if off() {
		return
	}
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	if off() {
		return
	}
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	if off() {
		return
	}
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the private Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

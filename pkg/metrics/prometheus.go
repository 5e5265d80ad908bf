// Package metrics provides Prometheus metrics for the GoChamp client and web frontend.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values for remote calls and logins.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Manager owns every collector exported by the client process.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Remote boundary metrics
	remoteRequests *prometheus.CounterVec
	remoteLatency  *prometheus.HistogramVec
	uploadBytes    prometheus.Counter

	// UI flow metrics
	loginAttempts *prometheus.CounterVec

	// Web frontend metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton used by package-level helpers

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // registry served at /healthz

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// DefaultLatencyBuckets are millisecond buckets sized for remote calls that
// range from quick listings to multi-second video uploads.
var DefaultLatencyBuckets = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "gochamp",
		subsystem:        "client",
		histogramBuckets: DefaultLatencyBuckets,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.remoteRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "remote_requests_total",
		Help:        "Remote service calls by operation and outcome",
		ConstLabels: m.constLabels,
	}, []string{"operation", "outcome"})

	m.remoteLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "remote_request_duration_milliseconds",
		Help:        "Round-trip time of remote service calls in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"operation"})

	m.uploadBytes = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "upload_bytes_total",
		Help:        "Bytes of video content streamed to the remote service",
		ConstLabels: m.constLabels,
	})

	m.loginAttempts = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "login_attempts_total",
		Help:        "Login attempts by outcome",
		ConstLabels: m.constLabels,
	}, []string{"outcome"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Web frontend requests by route, method and status code",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "Web frontend request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "memory_usage_bytes",
		Help:        "Heap bytes allocated by the process",
		ConstLabels: m.constLabels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "goroutines",
		Help:        "Number of live goroutines",
		ConstLabels: m.constLabels,
	})
}

// ObserveRemoteCall records one remote round trip.
func (m *Manager) ObserveRemoteCall(operation string, failed bool, latencyMs float64) {
	outcome := OutcomeSuccess
	if failed {
		outcome = OutcomeFailure
	}
	m.remoteRequests.WithLabelValues(operation, outcome).Inc()
	m.remoteLatency.WithLabelValues(operation).Observe(latencyMs)
}

// AddUploadBytes counts streamed upload content.
func (m *Manager) AddUploadBytes(n int64) {
	if n > 0 {
		m.uploadBytes.Add(float64(n))
	}
}

// RecordLogin counts a login attempt.
func (m *Manager) RecordLogin(success bool) {
	outcome := OutcomeSuccess
	if !success {
		outcome = OutcomeFailure
	}
	m.loginAttempts.WithLabelValues(outcome).Inc()
}

// RecordHTTPRequest records a served web request and its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// UpdateSystem sets process-level gauges.
func (m *Manager) UpdateSystem(memoryBytes uint64, goroutines int) {
	m.systemMemoryUsage.Set(float64(memoryBytes))
	m.systemGoroutineCount.Set(float64(goroutines))
}

// Default returns the process-wide manager bound to the custom registry.
func Default() *Manager { return globalManager }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// RecordHTTPRequest records a web request on the global manager.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// UpdateSystemMetrics sets process gauges on the global manager.
func UpdateSystemMetrics(memoryBytes uint64, goroutines int) {
	globalManager.UpdateSystem(memoryBytes, goroutines)
}

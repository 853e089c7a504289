package telemetry

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vango-dev/lattice/pkg/dom"
	"github.com/vango-dev/lattice/pkg/update"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "lattice").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for flush duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures Metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "lattice",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics records tree and queue activity as Prometheus metrics.
type Metrics struct {
	materialized    *prometheus.CounterVec
	hydrated        *prometheus.CounterVec
	hydrationFailed *prometheus.CounterVec
	surfaceErrors   *prometheus.CounterVec
	updatesApplied  prometheus.Counter
	updatesFailed   prometheus.Counter
	flushDuration   prometheus.Histogram
	httpRequests    *prometheus.CounterVec
}

var (
	_ dom.Observer    = (*Metrics)(nil)
	_ update.Observer = (*Metrics)(nil)
)

// NewMetrics creates and registers the collectors. Registering twice with
// the same registry panics, as with promauto.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		}, labels)
	}

	return &Metrics{
		materialized:    counter("nodes_materialized_total", "Nodes promoted by creating surface objects", "kind"),
		hydrated:        counter("nodes_hydrated_total", "Nodes promoted by taking over existing surface objects", "kind"),
		hydrationFailed: counter("hydration_failures_total", "Failed hydrations by error code", "code"),
		surfaceErrors:   counter("surface_errors_total", "Surface calls that returned an error", "op"),

		updatesApplied: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "updates_applied_total",
			Help:        "Deferred updates applied by queue flushes",
			ConstLabels: config.ConstLabels,
		}),

		updatesFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "updates_failed_total",
			Help:        "Deferred updates that returned an error",
			ConstLabels: config.ConstLabels,
		}),

		flushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_duration_seconds",
			Help:        "Time spent applying a batch of deferred updates",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		httpRequests: counter("http_requests_total", "HTTP requests served", "route", "status"),
	}
}

// NodeMaterialized implements dom.Observer.
func (m *Metrics) NodeMaterialized(kind dom.NodeKind) {
	m.materialized.WithLabelValues(strings.ToLower(kind.String())).Inc()
}

// NodeHydrated implements dom.Observer.
func (m *Metrics) NodeHydrated(kind dom.NodeKind) {
	m.hydrated.WithLabelValues(strings.ToLower(kind.String())).Inc()
}

// HydrationFailed implements dom.Observer.
func (m *Metrics) HydrationFailed(code string) {
	m.hydrationFailed.WithLabelValues(code).Inc()
}

// SurfaceFailed implements dom.Observer.
func (m *Metrics) SurfaceFailed(op string) {
	m.surfaceErrors.WithLabelValues(op).Inc()
}

// Flushed implements update.Observer.
func (m *Metrics) Flushed(applied, failed int, elapsed time.Duration) {
	m.updatesApplied.Add(float64(applied))
	m.updatesFailed.Add(float64(failed))
	m.flushDuration.Observe(elapsed.Seconds())
}

// RecordRequest counts one served HTTP request.
func (m *Metrics) RecordRequest(route string, status int) {
	m.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// Package prom provides a Prometheus observer for closer scopes.
package prom

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/NetPo4ki/go-closeall/closer"
)

const (
	resultOK    = "ok"
	resultError = "error"
)

// Metrics implements closer.Observer and prometheus.Collector.
type Metrics struct {
	// resources
	openResources prometheus.Gauge
	acquired      *prometheus.CounterVec
	closed        *prometheus.CounterVec
	closeDuration prometheus.Histogram

	// scopes
	scopesOpened prometheus.Counter
	scopesClosed *prometheus.CounterVec
	suppressed   prometheus.Counter
	scopeLife    prometheus.Histogram
}

// New returns Metrics whose series are prefixed with namespace.
func New(namespace string) *Metrics {
	return &Metrics{
		openResources: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "closer", Name: "open_resources",
			Help: "Resources acquired and not yet closed.",
		}),
		acquired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "closer", Name: "acquisitions_total",
			Help: "Acquisition attempts by result.",
		}, []string{"result"}),
		closed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "closer", Name: "closes_total",
			Help: "Resource closes by result.",
		}, []string{"result"}),
		closeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "closer", Name: "close_duration_seconds",
			Help:    "Time spent closing a single resource.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		scopesOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "closer", Name: "scopes_opened_total",
			Help: "Scopes opened.",
		}),
		scopesClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "closer", Name: "scopes_closed_total",
			Help: "Scopes closed by outcome.",
		}, []string{"result"}),
		suppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "closer", Name: "suppressed_errors_total",
			Help: "Close errors attached to another error as suppressed.",
		}),
		scopeLife: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "closer", Name: "scope_duration_seconds",
			Help:    "Time from scope opening to the end of cleanup.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.openResources, m.acquired, m.closed, m.closeDuration,
		m.scopesOpened, m.scopesClosed, m.suppressed, m.scopeLife,
	}
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range m.collectors() {
		c.Describe(ch)
	}
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	for _, c := range m.collectors() {
		c.Collect(ch)
	}
}

// ScopeOpened records scope creation.
func (m *Metrics) ScopeOpened(_ context.Context) {
	m.scopesOpened.Inc()
}

// ResourceAcquired counts the attempt and tracks the resource as open.
func (m *Metrics) ResourceAcquired(_ context.Context, _ string, _ time.Duration, err error) {
	if err != nil {
		m.acquired.WithLabelValues(resultError).Inc()
		return
	}
	m.acquired.WithLabelValues(resultOK).Inc()
	m.openResources.Inc()
}

// ResourceClosed counts the close and observes its duration.
func (m *Metrics) ResourceClosed(_ context.Context, _ string, dur time.Duration, err error) {
	m.openResources.Dec()
	m.closed.WithLabelValues(result(err)).Inc()
	m.closeDuration.Observe(dur.Seconds())
}

// ScopeClosed records the scope outcome and its suppressed errors.
func (m *Metrics) ScopeClosed(_ context.Context, dur time.Duration, err error) {
	m.scopesClosed.WithLabelValues(result(err)).Inc()
	m.suppressed.Add(float64(len(closer.SuppressedOf(err))))
	m.scopeLife.Observe(dur.Seconds())
}

func result(err error) string {
	if err != nil {
		return resultError
	}
	return resultOK
}

// Package observability holds the Prometheus metrics for the HTTP surface and
// the rating aggregation pipeline.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "credibly"

// Recompute results.
const (
	ResultSuccess  = "success"
	ResultConflict = "conflict"
	ResultError    = "error"
)

// Metrics is safe for concurrent use. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	// HTTPRequestsTotal counts requests by method, route and status.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration measures handler latency by method and route.
	HTTPRequestDuration *prometheus.HistogramVec

	// AggregateRecomputeTotal counts recompute attempts by trigger and result.
	AggregateRecomputeTotal *prometheus.CounterVec

	// StaleQueueEnqueuedTotal counts ratees queued after a failed recompute.
	StaleQueueEnqueuedTotal prometheus.Counter

	// StaleQueueDepth is the queue size observed by the last worker pass.
	StaleQueueDepth prometheus.Gauge
}

// NewMetrics registers the metrics with reg. Pass prometheus.NewRegistry()
// in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),

		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		AggregateRecomputeTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "ratings",
			Name:      "aggregate_recompute_total",
			Help:      "Rating aggregate recomputations by trigger and result.",
		}, []string{"trigger", "result"}),

		StaleQueueEnqueuedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "ratings",
			Name:      "stale_queue_enqueued_total",
			Help:      "Ratees queued for asynchronous aggregate recompute.",
		}),

		StaleQueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "ratings",
			Name:      "stale_queue_depth",
			Help:      "Ratees waiting for aggregate recompute.",
		}),
	}
}

func (m *Metrics) ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) RecordRecompute(trigger, result string) {
	if m == nil {
		return
	}
	m.AggregateRecomputeTotal.WithLabelValues(trigger, result).Inc()
}

func (m *Metrics) RecordStaleEnqueued() {
	if m == nil {
		return
	}
	m.StaleQueueEnqueuedTotal.Inc()
}

func (m *Metrics) SetStaleQueueDepth(depth int64) {
	if m == nil {
		return
	}
	m.StaleQueueDepth.Set(float64(depth))
}

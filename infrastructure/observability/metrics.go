package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"flowengine/application/queries/bus"
)

// Collector holds all Prometheus metrics for the engine. Each collector owns
// its registry so tests can build as many as they like.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Query metrics
	Queries       *prometheus.CounterVec
	QueryDuration *prometheus.HistogramVec

	// Transport metrics
	WebSocketConnections prometheus.Gauge
	BreakerState         *prometheus.GaugeVec
}

// NewCollector creates a new metrics collector with the given namespace
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		Queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_total",
				Help:      "Analysis queries by type and outcome",
			},
			[]string{"query", "outcome"},
		),
		QueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_duration_seconds",
				Help:      "Analysis query duration in seconds",
				Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
			},
			[]string{"query"},
		),
		WebSocketConnections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "websocket_connections",
				Help:      "Currently open WebSocket connections",
			},
		),
		BreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_state",
				Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
			[]string{"name"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.Queries,
		c.QueryDuration,
		c.WebSocketConnections,
		c.BreakerState,
		collectors.NewGoCollector(),
	)

	return c
}

// GetRegistry returns the Prometheus registry for this collector
func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}

// Increment implements bus.Metrics. Metric names follow the query bus:
// query_count, query_success and query_errors.
func (c *Collector) Increment(metric, label string) {
	switch metric {
	case "query_count":
		c.Queries.WithLabelValues(label, "started").Inc()
	case "query_success":
		c.Queries.WithLabelValues(label, "success").Inc()
	case "query_errors":
		c.Queries.WithLabelValues(label, "error").Inc()
	}
}

// StartTimer implements bus.Metrics
func (c *Collector) StartTimer(metric, label string) bus.Timer {
	return &queryTimer{
		start:    time.Now(),
		observer: c.QueryDuration.WithLabelValues(label),
	}
}

// RecordHTTPRequest records one served HTTP request
func (c *Collector) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, status).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

type queryTimer struct {
	start    time.Time
	observer prometheus.Observer
}

func (t *queryTimer) Stop() {
	t.observer.Observe(time.Since(t.start).Seconds())
}

// Package metrics holds the Prometheus collectors of the pricing service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the service
type Metrics struct {
	latticeBuild *prometheus.HistogramVec
	evaluations  *prometheus.CounterVec
	periods      prometheus.Histogram

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		latticeBuild: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "binotree_lattice_build_seconds",
				Help:    "Time to build a lattice and its envelope by model",
				Buckets: prometheus.ExponentialBuckets(1e-4, 4, 8),
			},
			[]string{"model"},
		),
		evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "binotree_evaluations_total",
				Help: "Total number of scenario evaluations by style and status",
			},
			[]string{"style", "status"},
		),
		periods: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "binotree_lattice_periods",
				Help:    "Number of periods of evaluated lattices",
				Buckets: []float64{10, 50, 100, 252, 504, 1000},
			},
		),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "binotree_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "binotree_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.latticeBuild,
		m.evaluations,
		m.periods,
		m.httpRequestsTotal,
		m.httpRequestDuration,
	)
	return m
}

// RecordBuild records the time spent building a lattice of the given
// model ("plain" or "barrier").
func (m *Metrics) RecordBuild(model string, periods int, d time.Duration) {
	m.latticeBuild.WithLabelValues(model).Observe(d.Seconds())
	m.periods.Observe(float64(periods))
}

func (m *Metrics) RecordEvaluation(style string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.evaluations.WithLabelValues(style, status).Inc()
}

func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, d time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(d.Seconds())
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

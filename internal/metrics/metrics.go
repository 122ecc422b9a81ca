package metrics

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const divisor = 100

// Metrics defines all Prometheus metrics for the weather export service.
type Metrics struct {
	registry *prometheus.Registry

	// RED (Rate, Errors, Duration) for HTTP
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestsInFlight prometheus.Gauge
	HTTPRequestDuration  *prometheus.HistogramVec

	// Business metrics
	IngestedRecords prometheus.Counter
	IngestRuns      *prometheus.CounterVec // by result
	ExportsTotal    *prometheus.CounterVec // by kind, result
	UpstreamFetches *prometheus.CounterVec // by result

	// System metrics
	ServiceStartTime prometheus.Gauge
}

// NewMetrics creates and registers all metrics under the given namespace.
func NewMetrics(namespace string, db *sql.DB, dbName string) *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests total",
			},
			[]string{"method", "endpoint", "status_class"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "In-flight HTTP requests",
			},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		IngestedRecords: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingested_records_total",
				Help:      "Weather observations stored",
			},
		),
		IngestRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingest_runs_total",
				Help:      "Ingestion pipeline runs",
			},
			[]string{"result"},
		),
		ExportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "exports_total",
				Help:      "Export artifacts generated",
			},
			[]string{"kind", "result"},
		),
		UpstreamFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_fetches_total",
				Help:      "Upstream forecast API calls",
			},
			[]string{"result"},
		),

		ServiceStartTime: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "service_start_time_seconds",
				Help:      "Unix time the service started",
			},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestsInFlight,
		m.HTTPRequestDuration,
		m.IngestedRecords,
		m.IngestRuns,
		m.ExportsTotal,
		m.UpstreamFetches,
		m.ServiceStartTime,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db, dbName),
	)

	m.ServiceStartTime.SetToCurrentTime()

	return m
}

// HTTPMiddleware instruments Gin HTTP handlers for RED metrics.
func (m *Metrics) HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.HTTPRequestsInFlight.Inc()
		c.Next()
		m.HTTPRequestsInFlight.Dec()

		dur := time.Since(start).Seconds()
		status := c.Writer.Status()
		statusClass := fmt.Sprintf("%dxx", status/divisor)

		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, c.FullPath(), statusClass).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, c.FullPath()).Observe(dur)
	}
}

// Handler exposes the registry for the /metrics route.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}

// RecordIngest logs one pipeline run and the number of records it stored.
func (m *Metrics) RecordIngest(records int, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.IngestRuns.WithLabelValues(result).Inc()
	m.IngestedRecords.Add(float64(records))
}

// RecordExport logs one export attempt ("excel" or "pdf").
func (m *Metrics) RecordExport(kind string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ExportsTotal.WithLabelValues(kind, result).Inc()
}

// RecordUpstreamFetch logs one forecast API call.
func (m *Metrics) RecordUpstreamFetch(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.UpstreamFetches.WithLabelValues(result).Inc()
}

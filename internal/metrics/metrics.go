package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Schema check outcomes.
const (
	OutcomeValid      = "valid"
	OutcomeStructural = "structural"
	OutcomeCycle      = "cycle"
)

// Metrics holds the collectors exported on /metrics. Each instance owns its
// registry so tests can build as many as they need.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	SchemaChecksTotal *prometheus.CounterVec

	InferenceRequestsTotal   *prometheus.CounterVec
	InferenceRequestDuration prometheus.Histogram
	GeneratedRowsTotal       prometheus.Counter

	BlobUploadsTotal *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "datagen_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "datagen_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		SchemaChecksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "datagen_schema_checks_total",
				Help: "Schema checks by outcome",
			},
			[]string{"outcome"},
		),
		InferenceRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "datagen_inference_requests_total",
				Help: "Calls to the inference endpoint by status",
			},
			[]string{"status"},
		),
		InferenceRequestDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "datagen_inference_request_duration_seconds",
				Help:    "Inference endpoint latency in seconds",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
			},
		),
		GeneratedRowsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "datagen_generated_rows_total",
				Help: "Rows returned by the inference endpoint",
			},
		),
		BlobUploadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "datagen_blob_uploads_total",
				Help: "CSV uploads to blob storage by status",
			},
			[]string{"status"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.SchemaChecksTotal,
		m.InferenceRequestsTotal,
		m.InferenceRequestDuration,
		m.GeneratedRowsTotal,
		m.BlobUploadsTotal,
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// All recorders below are no-ops on a nil receiver.

func (m *Metrics) ObserveHTTP(method, endpoint, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(d.Seconds())
}

func (m *Metrics) RecordSchemaCheck(outcome string) {
	if m == nil {
		return
	}
	m.SchemaChecksTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveInference(status string, d time.Duration, rows int) {
	if m == nil {
		return
	}
	m.InferenceRequestsTotal.WithLabelValues(status).Inc()
	m.InferenceRequestDuration.Observe(d.Seconds())
	if rows > 0 {
		m.GeneratedRowsTotal.Add(float64(rows))
	}
}

func (m *Metrics) RecordBlobUpload(status string) {
	if m == nil {
		return
	}
	m.BlobUploadsTotal.WithLabelValues(status).Inc()
}

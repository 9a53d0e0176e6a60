package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder exports operation latency and outcome counts.
type PrometheusRecorder struct {
	registry *prometheus.Registry
	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
}

// NewPrometheusRecorder registers the labcert collectors on a private registry.
func NewPrometheusRecorder() *PrometheusRecorder {
	r := &PrometheusRecorder{
		registry: prometheus.NewRegistry(),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "labcert_operation_duration_seconds",
			Help:    "Latency of certificate pipeline operations.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation", "outcome"}),
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "labcert_operations_total",
			Help: "Certificate pipeline operations by outcome.",
		}, []string{"operation", "outcome"}),
	}
	r.registry.MustRegister(r.duration, r.total)
	return r
}

// Registry exposes the gatherer for exposition.
func (r *PrometheusRecorder) Registry() *prometheus.Registry { return r.registry }

// Observe records one operation.
func (r *PrometheusRecorder) Observe(_ context.Context, operation, outcome string, duration time.Duration) {
	if operation == "" {
		return
	}
	if outcome == "" {
		outcome = OutcomeOK
	}
	r.duration.WithLabelValues(operation, outcome).Observe(duration.Seconds())
	r.total.WithLabelValues(operation, outcome).Inc()
}

// WriteTextfile writes the current metrics in text exposition format, for
// node_exporter's textfile collector.
func (r *PrometheusRecorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

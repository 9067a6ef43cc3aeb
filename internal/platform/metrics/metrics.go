package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the ledger interface. A nil
// *Metrics is a valid no-op receiver so tests can skip registration.
type Metrics struct {
	Submissions          *prometheus.CounterVec
	SubmissionDuration   *prometheus.HistogramVec
	Reads                *prometheus.CounterVec
	ValidationRejections *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		Submissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lifeledger_submissions_total",
			Help: "Ledger submissions by operation and outcome",
		}, []string{"operation", "outcome"}),
		SubmissionDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lifeledger_submission_duration_seconds",
			Help:    "Time from submission to confirmation or failure",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"operation"}),
		Reads: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lifeledger_reads_total",
			Help: "Ledger reads by query and outcome",
		}, []string{"query", "outcome"}),
		ValidationRejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lifeledger_validation_rejections_total",
			Help: "Inputs rejected before any ledger call, by field",
		}, []string{"field"}),
	}
}

// ObserveSubmission records one submission attempt.
func (m *Metrics) ObserveSubmission(operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(operation, outcome).Inc()
	m.SubmissionDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveRead records one read attempt.
func (m *Metrics) ObserveRead(query, outcome string) {
	if m == nil {
		return
	}
	m.Reads.WithLabelValues(query, outcome).Inc()
}

// ObserveValidationRejection records an input rejected by the validation layer.
func (m *Metrics) ObserveValidationRejection(field string) {
	if m == nil {
		return
	}
	m.ValidationRejections.WithLabelValues(field).Inc()
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "receiver_submissions_total",
			Help: "Total number of submissions processed by the receiver (count)",
		},
		[]string{"status"},
	)

	SubmissionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "receiver_submission_duration_ms",
			Help:    "End-to-end submission pipeline duration in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"status"},
	)

	SubmissionBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "receiver_submission_bytes",
			Help:    "Size of submitted payloads in bytes",
			Buckets: prometheus.ExponentialBuckets(64, 4, 8),
		},
	)

	DedupStoreSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "receiver_dedup_store_size",
			Help: "Number of identifiers currently held by the dedup store (count)",
		},
	)

	ArtifactWriteFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "receiver_artifact_write_failures_total",
			Help: "Total number of failed artifact or metadata writes (count)",
		},
	)

	ForwardPublishTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "receiver_forward_publish_total",
			Help: "Total number of downstream forward attempts (count)",
		},
		[]string{"result"},
	)

	ArchiveInsertTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "receiver_archive_insert_total",
			Help: "Total number of archive index inserts (count)",
		},
		[]string{"result"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker (count)",
		},
		[]string{"name", "state"},
	)
)

func RegisterReceiverMetrics() {
	prometheus.MustRegister(
		SubmissionsTotal,
		SubmissionDuration,
		SubmissionBytes,
		DedupStoreSize,
		ArtifactWriteFailures,
	)
}

func RegisterForwardMetrics() {
	prometheus.MustRegister(ForwardPublishTotal)
}

func RegisterArchiveMetrics() {
	prometheus.MustRegister(ArchiveInsertTotal)
}

func RegisterCircuitBreakerMetrics() {
	prometheus.MustRegister(CircuitBreakerState, CircuitBreakerRequests)
}

func ObserveSubmission(duration time.Duration, status string) {
	SubmissionsTotal.WithLabelValues(status).Inc()
	SubmissionDuration.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}

func SetDedupStoreSize(size int) {
	DedupStoreSize.Set(float64(size))
}

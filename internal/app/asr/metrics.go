package asr

import "github.com/prometheus/client_golang/prometheus"

// Request outcomes recorded in RequestsTotal.
const (
	OutcomeSuccess  = "success"
	OutcomeCacheHit = "cache_hit"
	OutcomeError    = "error"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asr_requests_total",
			Help: "Total number of transcription requests by outcome",
		},
		[]string{"outcome"},
	)

	InferenceDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "asr_inference_duration_seconds",
			Help:    "Time spent inside the recognition backend",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"backend"},
	)

	UploadBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "asr_upload_bytes",
			Help:    "Size of staged audio uploads",
			Buckets: prometheus.ExponentialBuckets(16*1024, 4, 8),
		},
	)

	TempCleanupFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "asr_temp_cleanup_failures_total",
			Help: "Staged files that could not be removed",
		},
	)

	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asr_cache_lookups_total",
			Help: "Transcript cache lookups by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(RequestsTotal, InferenceDuration, UploadBytes, TempCleanupFailures, CacheLookups)
}

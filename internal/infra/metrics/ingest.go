package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(ingestLinesTotal, ingestJobsTotal, ingestQueueDepth, ingestFileDuration, ingestDuplicatesTotal, ingestStaleJobs)
}

var (
	ingestLinesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_lines_total",
			Help: "Upload lines processed, labeled by outcome.",
		},
		[]string{"outcome"}, // 'completed', 'failed'
	)

	ingestJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_jobs_total",
			Help: "Ingestion jobs that reached a terminal status.",
		},
		[]string{"status"},
	)

	ingestQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ingest_queue_depth",
			Help: "Files waiting in the in-memory ingestion queue.",
		},
	)

	ingestFileDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingest_file_duration_seconds",
			Help:    "Time spent processing one uploaded file.",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
		},
	)

	ingestStaleJobs = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ingest_stale_jobs",
			Help: "Jobs still Processing past the stale threshold at the last check.",
		},
	)

	ingestDuplicatesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ingest_events_duplicate_total",
			Help: "Valid lines skipped because the event id was already stored.",
		},
	)
)

func IncIngestLine(outcome string) {
	ingestLinesTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncIngestJob(status string) {
	ingestJobsTotal.WithLabelValues(norm(status)).Inc()
}

func SetQueueDepth(n int) {
	ingestQueueDepth.Set(float64(n))
}

func ObserveFileDuration(d time.Duration) {
	ingestFileDuration.Observe(d.Seconds())
}

func IncDuplicateEvent() {
	ingestDuplicatesTotal.Inc()
}

func SetStaleJobs(n int) {
	ingestStaleJobs.Set(float64(n))
}

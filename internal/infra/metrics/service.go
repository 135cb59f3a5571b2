package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(buildInfo, reportCacheTotal) }

var (
	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ingest_build_info",
			Help: "Always 1; labels carry the running version.",
		},
		[]string{"version", "commit", "go_version"},
	)

	reportCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_report_cache_requests_total",
			Help: "Ingestion report cache lookups by result.",
		},
		[]string{"result"}, // 'hit', 'miss', 'error'
	)
)

func SetBuildInfo(version, commit string) {
	buildInfo.WithLabelValues(version, commit, runtime.Version()).Set(1)
}

func IncReportCache(result string) {
	reportCacheTotal.WithLabelValues(norm(result)).Inc()
}

// Package metrics provides Prometheus metrics for the export service.
package metrics

import (
	"net/http"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "docexport"
)

// Export results used as the "result" label.
const (
	ResultSuccess           = "success"
	ResultMissingCredential = "missing_credential"
	ResultExportError       = "export_error"
	ResultProviderError     = "provider_error"
	ResultInvalidResponse   = "invalid_response"
)

// Export metrics track send-to-drive requests.
var (
	// ExportsTotal is the total number of export requests by result.
	ExportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "exports_total",
		Help:      "Total number of send-to-drive export requests",
	}, []string{"result"})

	// ExportDuration is a histogram of end-to-end export duration in seconds.
	ExportDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "export_duration_seconds",
		Help:      "Duration of send-to-drive exports in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
	})

	// UploadBytes is a histogram of spreadsheet payload sizes sent to the provider.
	UploadBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upload_bytes",
		Help:      "Size of spreadsheet payloads uploaded to the provider",
		Buckets:   prometheus.ExponentialBuckets(1024, 4, 8), // 1KiB to 16MiB
	})
)

// Server metrics track process information.
var (
	// BuildInfo provides version and build information.
	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "build_info",
		Help:      "Version and build information",
	}, []string{"version", "go_version"})

	// StartTime is the unix timestamp when the server started.
	StartTime = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "start_time_seconds",
		Help:      "Unix timestamp when the server started",
	})
)

// RecordBuildInfo publishes the build_info gauge for the given version.
func RecordBuildInfo(version string) {
	BuildInfo.WithLabelValues(version, runtime.Version()).Set(1)
}

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Package metrics provides Prometheus metrics for ReadLater.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ImportsTotal counts finished single-item imports by mode and final status.
	ImportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "readlater",
			Name:      "imports_total",
			Help:      "Total number of item imports by final status",
		},
		[]string{"mode", "status"},
	)

	// ExtractionDuration measures calls to the extraction service.
	ExtractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "readlater",
			Name:      "extraction_duration_seconds",
			Help:      "Duration of extraction calls in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		},
		[]string{"outcome"},
	)

	// BulkImportSize observes the number of URLs per bulk import.
	BulkImportSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "readlater",
			Name:      "bulk_import_size",
			Help:      "Distribution of bulk import sizes",
			Buckets:   []float64{1, 5, 10, 25, 50, 100},
		},
	)

	// DiscoveryRequests counts discovery calls by mode and result.
	DiscoveryRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "readlater",
			Name:      "discovery_requests_total",
			Help:      "Total number of discovery requests",
		},
		[]string{"mode", "result"},
	)

	// StaleItemsFailed counts items failed by the reconciler.
	StaleItemsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "readlater",
			Name:      "stale_items_failed_total",
			Help:      "Total number of stale pre-terminal items marked FAILED",
		},
	)
)

// RecordImport records a finished import.
func RecordImport(mode, status string) {
	ImportsTotal.WithLabelValues(mode, status).Inc()
}

// RecordExtraction records one extraction call.
func RecordExtraction(outcome string, seconds float64) {
	ExtractionDuration.WithLabelValues(outcome).Observe(seconds)
}

// RecordDiscovery records a discovery call; result is "ok", "cached" or "error".
func RecordDiscovery(mode, result string) {
	DiscoveryRequests.WithLabelValues(mode, result).Inc()
}

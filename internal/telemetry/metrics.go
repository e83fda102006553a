// Package telemetry holds the self metrics of the report builder.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchLatencySeconds is the histogram of metric fetch latency
	FetchLatencySeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "repo_health_fetch_latency_seconds",
		Help:    "Histogram of metric fetch latency in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"metric"})

	// ChartsTotal counts chart outcomes per metric and status
	ChartsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "repo_health_charts_total",
		Help: "Total number of charts built, by metric and status",
	}, []string{"metric", "status"})

	// ReportsTotal counts report builds by status
	ReportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "repo_health_reports_total",
		Help: "Total number of report builds, by status",
	}, []string{"status"})
)

// Outcome statuses.
const (
	StatusRendered = "rendered"
	StatusFailed   = "failed"
	StatusSkipped  = "skipped"
	StatusBuilt    = "built"
)

// RecordFetch records one metric fetch.
func RecordFetch(metric string, seconds float64) {
	FetchLatencySeconds.WithLabelValues(metric).Observe(seconds)
}

// RecordChart records the outcome of one chart.
func RecordChart(metric string, err error) {
	status := StatusRendered
	if err != nil {
		status = StatusFailed
	}
	ChartsTotal.WithLabelValues(metric, status).Inc()
}

// RecordReport records one report build.
func RecordReport(status string) {
	ReportsTotal.WithLabelValues(status).Inc()
}

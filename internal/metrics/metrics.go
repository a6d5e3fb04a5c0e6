// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registration_transitions_total",
			Help: "Total number of registrations moved into a status",
		},
		[]string{"operation", "to_status"},
	)

	BusinessErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "business_errors_total",
			Help: "Total number of rejected lifecycle operations by kind",
		},
		[]string{"operation", "kind"},
	)

	ReportsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reports_created_total",
			Help: "Total number of exam reports created",
		},
	)

	ResultGradeHistogram = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "result_grade",
			Help:    "Distribution of passing grades entered",
			Buckets: prometheus.LinearBuckets(18, 1, 14),
		},
	)

	ReportCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_cache_requests_total",
			Help: "Report snapshot cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)

// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BudgetChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "budget_checks_total",
			Help: "Total number of budget checks answered, by transport and result",
		},
		[]string{"transport", "result"},
	)

	BudgetCheckErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "budget_check_errors_total",
			Help: "Total number of budget checks answered with an error result",
		},
		[]string{"transport", "error_code"},
	)

	BudgetCheckDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "budget_check_duration_seconds",
			Help:    "Duration of budget check handling in seconds",
			Buckets: []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1},
		},
		[]string{"transport"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by route pattern and status",
		},
		[]string{"method", "path", "status"},
	)

	JobsCompletionFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completion_failed_total",
			Help: "Total number of Zeebe jobs whose completion command failed",
		},
		[]string{"task_type"},
	)
)

// RecordCheck counts one answered check. errorCode is empty for non-error results.
func RecordCheck(transport, result, errorCode string, seconds float64) {
	BudgetChecksTotal.WithLabelValues(transport, result).Inc()
	if errorCode != "" {
		BudgetCheckErrors.WithLabelValues(transport, errorCode).Inc()
	}
	BudgetCheckDuration.WithLabelValues(transport).Observe(seconds)
}

package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	evaluationsTotal    *prometheus.CounterVec
	notificationsTotal  *prometheus.CounterVec
	emailAttemptsTotal  *prometheus.CounterVec
	reportRunsTotal     *prometheus.CounterVec
	adminRequestsTotal  *prometheus.CounterVec
	adminLatencySeconds *prometheus.HistogramVec
	adminErrorsTotal    *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors for the evaluation
// pipeline and the admin API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		evaluationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evaluations_processed_total",
			Help: "Total number of evaluations accepted, labelled by urgency.",
		}, []string{"urgency"})

		notificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_enqueued_total",
			Help: "Total number of notification enqueue attempts by outcome.",
		}, []string{"outcome"})

		emailAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "email_send_attempts_total",
			Help: "Total number of alert email delivery attempts by outcome.",
		}, []string{"outcome"})

		reportRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "report_runs_total",
			Help: "Total number of scheduled report runs by outcome.",
		}, []string{"outcome"})

		adminRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_requests_total",
			Help: "Total number of admin API requests served.",
		}, []string{"method", "route", "status"})

		adminLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "admin_latency_seconds",
			Help:    "Latency distribution for admin API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		adminErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_errors_total",
			Help: "Total number of error responses returned by admin endpoints.",
		}, []string{"method", "route", "status"})

		prometheus.MustRegister(
			evaluationsTotal,
			notificationsTotal,
			emailAttemptsTotal,
			reportRunsTotal,
			adminRequestsTotal,
			adminLatencySeconds,
			adminErrorsTotal,
		)
	})
}

// EvaluationsProcessed exposes the counter for accepted evaluations.
func EvaluationsProcessed() *prometheus.CounterVec {
	RegisterMetrics()
	return evaluationsTotal
}

// NotificationsEnqueued exposes the counter for queue publish outcomes.
func NotificationsEnqueued() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsTotal
}

// EmailSendAttempts exposes the counter for alert email attempts.
func EmailSendAttempts() *prometheus.CounterVec {
	RegisterMetrics()
	return emailAttemptsTotal
}

// ReportRuns exposes the counter for scheduled report runs.
func ReportRuns() *prometheus.CounterVec {
	RegisterMetrics()
	return reportRunsTotal
}

// AdminRequests exposes the counter for admin requests.
func AdminRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return adminRequestsTotal
}

// AdminLatency exposes the latency histogram for admin requests.
func AdminLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return adminLatencySeconds
}

// AdminErrors exposes the counter for admin error responses.
func AdminErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return adminErrorsTotal
}

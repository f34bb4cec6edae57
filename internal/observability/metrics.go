package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	httpRequestsTotal     *prometheus.CounterVec
	httpLatencySeconds    *prometheus.HistogramVec
	httpErrorsTotal       *prometheus.CounterVec
	submissionsTotal      *prometheus.CounterVec
	quizAttemptsTotal     *prometheus.CounterVec
	quizPercentage        prometheus.Histogram
	attemptEventsTotal    *prometheus.CounterVec
	dashboardCacheResults *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "formkit_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "formkit_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "formkit_http_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		submissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "formkit_submissions_total",
			Help: "Form submissions by outcome.",
		}, []string{"outcome"})

		quizAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "formkit_quiz_attempts_total",
			Help: "Graded quiz attempts by result and passing mode.",
		}, []string{"result", "mode"})

		quizPercentage = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "formkit_quiz_percentage",
			Help:    "Distribution of quiz attempt percentages.",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		})

		attemptEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "formkit_attempt_events_total",
			Help: "Attempt events handed to the message broker by status.",
		}, []string{"status"})

		dashboardCacheResults = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "formkit_dashboard_cache_total",
			Help: "Dashboard cache lookups by result.",
		}, []string{"result"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			submissionsTotal,
			quizAttemptsTotal,
			quizPercentage,
			attemptEventsTotal,
			dashboardCacheResults,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// Submissions counts submissions by outcome (accepted, rejected, error).
func Submissions() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsTotal
}

// QuizAttempts counts graded attempts.
func QuizAttempts() *prometheus.CounterVec {
	RegisterMetrics()
	return quizAttemptsTotal
}

// QuizPercentage observes attempt percentages.
func QuizPercentage() prometheus.Histogram {
	RegisterMetrics()
	return quizPercentage
}

// AttemptEvents counts broker publishes.
func AttemptEvents() *prometheus.CounterVec {
	RegisterMetrics()
	return attemptEventsTotal
}

// DashboardCache counts cache hits and misses.
func DashboardCache() *prometheus.CounterVec {
	RegisterMetrics()
	return dashboardCacheResults
}

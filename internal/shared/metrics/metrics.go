package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Completion outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "resume_portal_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
	completionRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_portal_completion_requests_total",
			Help: "Completion gateway calls by outcome",
		},
		[]string{"outcome"},
	)
	completionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "resume_portal_completion_duration_seconds",
			Help:    "Completion gateway call duration in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
	)
	resumesCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "resume_portal_resumes_created_total",
			Help: "Resumes created",
		},
	)
)

// ObserveRequest records an HTTP request duration.
func ObserveRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// ObserveCompletion records a completion gateway call.
func ObserveCompletion(outcome string, d time.Duration) {
	completionRequestsTotal.WithLabelValues(outcome).Inc()
	if d < 0 {
		d = 0
	}
	completionDuration.Observe(d.Seconds())
}

// IncResumeCreated increments the created resumes counter.
func IncResumeCreated() {
	resumesCreatedTotal.Inc()
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

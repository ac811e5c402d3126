package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	ApprovalRequestsCreated prometheus.Counter
	ApprovalReviews         *prometheus.CounterVec
	InventoryWrites         prometheus.Counter
	PartialFailures         prometheus.Counter
	UsersCreated            prometheus.Counter
	AlertsBroadcast         prometheus.Counter
	RequestDuration         *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		ApprovalRequestsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lifeline_approval_requests_created_total",
			Help: "Total number of approval requests raised",
		}),
		ApprovalReviews: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lifeline_approval_reviews_total",
			Help: "Total number of reviewed approval requests by decision",
		}, []string{"decision"}),
		InventoryWrites: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lifeline_inventory_writes_total",
			Help: "Total number of blood sample unit writes",
		}),
		PartialFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lifeline_review_partial_failures_total",
			Help: "Reviews left in a partially applied state needing manual reconciliation",
		}),
		UsersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lifeline_users_created_total",
			Help: "Total number of users registered",
		}),
		AlertsBroadcast: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lifeline_alerts_broadcast_total",
			Help: "Total number of disaster alerts broadcast",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lifeline_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

// ObserveRequestDuration records one request's latency.
func (m *Metrics) ObserveRequestDuration(method, path string, status int, d time.Duration) {
	m.RequestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(d.Seconds())
}

// ReviewRecorded increments the review counter for a decision outcome.
func (m *Metrics) ReviewRecorded(decision string) {
	m.ApprovalReviews.WithLabelValues(decision).Inc()
}

package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	portalRequestsTotal  *prometheus.CounterVec
	portalLatencySeconds *prometheus.HistogramVec
	portalErrorsTotal    *prometheus.CounterVec
	assignmentTransition *prometheus.CounterVec
	uploadBytes          *prometheus.HistogramVec
	uploadRejected       *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors shared by both portals.
func RegisterMetrics() {
	registerOnce.Do(func() {
		portalRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_requests_total",
			Help: "Total number of portal API requests served.",
		}, []string{"portal", "method", "route", "status"})

		portalLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portal_latency_seconds",
			Help:    "Latency distribution for portal API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"portal", "method", "route"})

		portalErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_errors_total",
			Help: "Total number of error responses returned by portal endpoints.",
		}, []string{"portal", "method", "route", "status"})

		assignmentTransition = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assignment_transitions_total",
			Help: "Assignment lifecycle transitions by resulting status.",
		}, []string{"status"})

		uploadBytes = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "upload_bytes",
			Help:    "Size of accepted uploads in bytes.",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 9),
		}, []string{"kind"})

		uploadRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "upload_rejected_total",
			Help: "Uploads rejected before reaching the store.",
		}, []string{"reason"})

		prometheus.MustRegister(
			portalRequestsTotal,
			portalLatencySeconds,
			portalErrorsTotal,
			assignmentTransition,
			uploadBytes,
			uploadRejected,
		)
	})
}

// PortalRequests exposes the counter for portal requests.
func PortalRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return portalRequestsTotal
}

// PortalLatency exposes the latency histogram for portal requests.
func PortalLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return portalLatencySeconds
}

// PortalErrors exposes the counter for portal error responses.
func PortalErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return portalErrorsTotal
}

// AssignmentTransitions counts assignment status changes.
func AssignmentTransitions() *prometheus.CounterVec {
	RegisterMetrics()
	return assignmentTransition
}

// UploadBytes records accepted upload sizes by kind (task, answer, bzb, material).
func UploadBytes() *prometheus.HistogramVec {
	RegisterMetrics()
	return uploadBytes
}

// UploadRejected counts refused uploads by reason.
func UploadRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRejected
}

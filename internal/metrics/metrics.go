package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, route, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// RequestTotal counts HTTP requests by method, route, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// PolicyWritesTotal counts create-or-update writes by result (created, updated).
	PolicyWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schedule_policy_writes_total",
			Help: "Total number of schedule policy writes by result",
		},
		[]string{"result"},
	)
)

var initOnce sync.Once

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, PolicyWritesTotal)
	})
}

// RecordRequest records duration and count for an HTTP request. route should be the
// router pattern (e.g. /resourceGroups/{group}/labs/{lab}/schedules/{name}) to keep cardinality low.
func RecordRequest(method, route string, statusCode int, durationSeconds float64) {
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, route, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, route, status).Inc()
}

// IncPolicyWrites increments the policy write counter for result (created, updated).
func IncPolicyWrites(result string) {
	PolicyWritesTotal.WithLabelValues(result).Inc()
}

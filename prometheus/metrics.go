package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Signup and login counters
	RegisterCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "volve_register_total",
			Help: "Total number of user registrations",
		},
	)

	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "volve_login_total",
			Help: "Total number of login attempts",
		},
	)

	// Activity operation counter
	ActivityOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "volve_activity_operations_total",
			Help: "Total number of activity operations",
		},
		[]string{"operation"}, // "create", "update", "delete", "list", "get"
	)

	// Enrollment operation counter
	EnrollmentOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "volve_enrollment_operations_total",
			Help: "Total number of enrollment operations",
		},
		[]string{"operation"}, // "attend", "unattend", "admin_enroll", "record_hours", "admin_remove"
	)

	// Error counter by taxonomy kind
	ErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "volve_errors_total",
			Help: "Total number of request errors by kind",
		},
		[]string{"kind"}, // "validation", "not_found", "authorization", "conflict", "infrastructure"
	)
)

// Histogram metrics
var (
	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "volve_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "query", "insert", "update", "delete"
	)
)

func init() {
	prometheus.MustRegister(
		RegisterCounter,
		LoginCounter,
		ActivityOperationCounter,
		EnrollmentOperationCounter,
		ErrorCounter,
		DBOperationDuration,
	)
}

// RecordError increments the error counter for the given taxonomy kind
func RecordError(kind string) {
	ErrorCounter.WithLabelValues(kind).Inc()
}

// TrackDBOperation returns a function that observes the elapsed time of a
// database operation. Use with defer:
//
//	defer prometheus.TrackDBOperation("query")(time.Now())
func TrackDBOperation(operation string) func(start time.Time) {
	return func(start time.Time) {
		DBOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

// GetPrometheusHandler returns the handler for the /metrics endpoint
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

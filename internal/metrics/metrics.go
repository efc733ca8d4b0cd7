package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// namespace prefixes every collector of the service
const namespace = "leadforms"

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status_code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	httpRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_size_bytes",
			Help:      "Size of form submission bodies",
			Buckets:   prometheus.ExponentialBuckets(128, 2, 10), // 128B .. 64KiB
		},
		[]string{"route"},
	)

	httpResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_response_size_bytes",
			Help:      "HTTP response size by route",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
		},
		[]string{"route"},
	)

	// Store metrics
	dbQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Total number of lead store operations",
		},
		[]string{"operation", "status"},
	)

	dbQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Lead store operation duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	// Business metrics
	leadSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lead_submissions_total",
			Help:      "Total number of lead form submissions",
		},
		[]string{"status"}, // success, invalid, store_error
	)

	leadEmailsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lead_emails_total",
			Help:      "Total number of lead notification emails attempted",
		},
		[]string{"kind", "status"}, // kind: admin, confirmation; status: sent, failed
	)
)

// Submission outcomes
const (
	SubmissionSuccess    = "success"
	SubmissionInvalid    = "invalid"
	SubmissionStoreError = "store_error"
)

// knownRoutes bounds the route label; anything else is counted as "other"
var knownRoutes = map[string]bool{
	"/health":          true,
	"/api/form/submit": true,
	"/api/leads":       true,
}

func routeLabel(path string) string {
	if knownRoutes[path] {
		return path
	}
	return "other"
}

// PrometheusMiddleware records request count, latency and sizes per route.
// Scrapes of /metrics are not recorded.
func PrometheusMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		route := routeLabel(r.URL.Path)
		rec := &sizeRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		if r.ContentLength > 0 {
			httpRequestSize.WithLabelValues(route).Observe(float64(r.ContentLength))
		}

		next.ServeHTTP(rec, r)

		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		httpResponseSize.WithLabelValues(route).Observe(float64(rec.size))
	})
}

// sizeRecorder captures the status code and body size of a response
type sizeRecorder struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func (rw *sizeRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *sizeRecorder) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

// RecordLeadSubmission records the outcome of a form submission
func RecordLeadSubmission(status string) {
	leadSubmissionsTotal.WithLabelValues(status).Inc()
}

// RecordLeadEmail records a notification email attempt
func RecordLeadEmail(kind string, err error) {
	status := "sent"
	if err != nil {
		status = "failed"
	}
	leadEmailsTotal.WithLabelValues(kind, status).Inc()
}

// RecordDBQuery records a store operation (insert, find_recent) and its latency
func RecordDBQuery(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	dbQueriesTotal.WithLabelValues(operation, status).Inc()
	dbQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

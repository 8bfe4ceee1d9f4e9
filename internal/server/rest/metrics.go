package rest

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clouddrop_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clouddrop_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	uploadsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clouddrop_uploads_total",
			Help: "Total number of accepted file uploads",
		},
	)

	sharesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clouddrop_shares_total",
			Help: "Total number of share attempts by result",
		},
		[]string{"result"},
	)
)

// metricsMiddleware records a counter and a duration sample per request.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)

		wrapped := newStatusRecorder(w)
		next.ServeHTTP(wrapped, r)

		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath collapses record ids into a {id} placeholder so the path
// label stays low-cardinality.
func normalizePath(path string) string {
	switch path {
	case "/api/files", "/api/files/send", "/ping", "/metrics":
		return path
	}
	if rest, ok := strings.CutPrefix(path, "/files/download/"); ok && uuid.Validate(rest) == nil {
		return "/files/download/{id}"
	}
	if rest, ok := strings.CutPrefix(path, "/files/"); ok && uuid.Validate(rest) == nil {
		return "/files/{id}"
	}
	return path
}

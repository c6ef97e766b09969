// Package metrics provides Prometheus instrumentation for the Streamo
// server. Mount Handler() at GET /metrics and wrap the router with
// Middleware to record request counts and latency.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPRequests counts HTTP requests by method, path, and status code.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "streamo_http_requests_total",
	Help: "Total HTTP requests handled.",
}, []string{"method", "path", "status"})

// HTTPDuration tracks HTTP request latency.
var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "streamo_http_request_duration_seconds",
	Help:    "HTTP request latency in seconds.",
	Buckets: prometheus.DefBuckets,
}, []string{"method", "path"})

// CatalogRequests counts outbound catalog API calls by result.
var CatalogRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "streamo_catalog_requests_total",
	Help: "Catalog API calls by result.",
}, []string{"result"})

// AuthEvents counts auth events (register, login) by result.
var AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "streamo_auth_events_total",
	Help: "Auth events by type and result.",
}, []string{"event", "result"})

// Handler returns the Prometheus scrape handler for GET /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware wraps an HTTP handler to record request counts and latency.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		path := routeLabel(r)
		status := strconv.Itoa(rw.status)
		HTTPRequests.WithLabelValues(r.Method, path, status).Inc()
		HTTPDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// routeLabel returns the matched chi route pattern (for example
// /api/v1/catalog/{type}/{id}) so that path label cardinality stays bounded.
// Unmatched requests fall back to the raw path, truncated.
func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return sanitizePath(r.URL.Path)
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// sanitizePath keeps label cardinality bounded.
func sanitizePath(path string) string {
	if len(path) > 64 {
		return path[:64] + "..."
	}
	return path
}

package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lenster_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lenster_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	upstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lenster_upstream_requests_total",
			Help: "Lens API attempts by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	ogFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lenster_og_fallbacks_total",
			Help: "Meta image requests answered with the HTML fallback",
		},
	)
)

// UpstreamHook records Lens API attempts. It fits lens.ClientConfig.MetricsHook.
func UpstreamHook(operation string, success, rateLimited bool) {
	outcome := "error"
	switch {
	case success:
		outcome = "success"
	case rateLimited:
		outcome = "rate_limited"
	}
	upstreamRequestsTotal.WithLabelValues(operation, outcome).Inc()
}

// ABOUTME: Prometheus metrics for backend API calls and schema cache lookups.
// ABOUTME: Requests are counted by method and status, latency is observed per method.

package backend

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	backendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_backend_requests_total",
			Help: "Total number of backend API requests by method and status (-1 when no response arrived).",
		},
		[]string{"method", "status"},
	)

	backendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "console_backend_request_duration_seconds",
			Help:    "Backend API request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	schemaCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_schema_cache_lookups_total",
			Help: "Schema cache lookups by result (hit, miss, error).",
		},
		[]string{"result"},
	)
)

package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "postboard_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// StoreErrors counts translated store errors by operation and error code.
	StoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_store_errors_total",
		Help: "Total number of store errors by operation and error code",
	}, []string{"operation", "code"})

	// MigrationsApplied counts schema migrations applied or reverted by this process.
	MigrationsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_migrations_total",
		Help: "Total number of schema migrations run by direction",
	}, []string{"direction"})

	// RateLimitRejections counts requests rejected by the rate limiter.
	RateLimitRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_rate_limit_rejections_total",
		Help: "Total number of requests rejected by the rate limiter",
	}, []string{"resource"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tidepool_redis_error_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tidepool_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// CounterAdjustments counts denormalized counter updates by entity and direction.
	CounterAdjustments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tidepool_counter_adjustments_total",
		Help: "Total denormalized counter adjustments by entity and direction",
	}, []string{"entity", "direction"})

	// SubtreeDeleteSize observes how many comments each cascading delete removed.
	SubtreeDeleteSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tidepool_comment_subtree_delete_size",
		Help:    "Number of comments removed per cascading delete",
		Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250},
	})

	// FeedComposeLatency records feed composition latency by feed kind.
	FeedComposeLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tidepool_feed_compose_latency_seconds",
		Help:    "Feed composition latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"feed"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// TrackFeed returns a function that records feed composition latency when called.
func TrackFeed(feed string) func() {
	start := time.Now()
	return func() {
		FeedComposeLatency.WithLabelValues(feed).Observe(time.Since(start).Seconds())
	}
}

// Package metrics holds the Prometheus instruments exported on /metrics.
package metrics

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestCounter counts HTTP requests by status code, method and route pattern.
	RequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_ratings_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"status", "method", "route"},
	)

	// RequestDuration measures HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "content_ratings_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// RequestsInProgress counts HTTP requests currently being served.
	RequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "content_ratings_http_requests_in_progress",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// StoreOperationDuration measures repository calls against the database.
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "content_ratings_store_operation_duration_seconds",
			Help:    "Store operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	// RatingsSubmitted counts successful rate calls by disposition (created/updated).
	RatingsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_ratings_ratings_submitted_total",
			Help: "Ratings written, by disposition",
		},
		[]string{"disposition"},
	)

	// RatingConflicts counts inserts that lost a race on the (user, content) constraint.
	RatingConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "content_ratings_rating_conflicts_total",
			Help: "Rating inserts that hit the (user, content) uniqueness constraint",
		},
	)

	// AuthFailures counts rejected credentials on protected routes.
	AuthFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "content_ratings_auth_failures_total",
			Help: "Requests rejected for missing or invalid credentials",
		},
	)

	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "content_ratings_cache_hits_total",
			Help: "Content cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "content_ratings_cache_misses_total",
			Help: "Content cache misses",
		},
	)
)

// ObserveStore records the elapsed time since start for a store operation.
//
//	defer metrics.ObserveStore("insert", "ratings", time.Now())
func ObserveStore(operation, table string, start time.Time) {
	StoreOperationDuration.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// RegisterPoolStats exports connection-pool gauges read at scrape time.
func RegisterPoolStats(reg prometheus.Registerer, stats func() *pgxpool.Stat) error {
	gauge := func(name, help string, read func(*pgxpool.Stat) float64) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: name, Help: help}, func() float64 {
			st := stats()
			if st == nil {
				return 0
			}
			return read(st)
		})
	}
	collectors := []prometheus.Collector{
		gauge("content_ratings_db_pool_total_conns", "Total connections in the pool",
			func(s *pgxpool.Stat) float64 { return float64(s.TotalConns()) }),
		gauge("content_ratings_db_pool_idle_conns", "Idle connections in the pool",
			func(s *pgxpool.Stat) float64 { return float64(s.IdleConns()) }),
		gauge("content_ratings_db_pool_acquired_conns", "Connections currently acquired",
			func(s *pgxpool.Stat) float64 { return float64(s.AcquiredConns()) }),
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

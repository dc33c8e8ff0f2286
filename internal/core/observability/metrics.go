// Package observability holds the Prometheus instruments shared across the
// service.
package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~20s
		},
		[]string{"method", "route", "status"},
	)

	cacheOpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cache_op_duration_seconds",
			Help:    "Duration of cache backend operations in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"op", "outcome"},
	)

	cacheResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_results_total",
			Help: "Cache results by outcome.",
		},
		[]string{"outcome"},
	)

	cellsPerQuery = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mesh_cells_per_query",
			Help:    "Number of mesh cells covering a query footprint.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	invalidationEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invalidation_events_total",
			Help: "Invalidation events by op and outcome.",
		},
		[]string{"op", "outcome"},
	)

	invalidationKeysDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "invalidation_keys_deleted_total",
			Help: "Cache keys deleted by invalidation events.",
		},
	)

	invalidationDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "invalidation_duration_seconds",
			Help:    "Time to process an invalidation event.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)

	kafkaConsumerErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_consumer_errors_total",
			Help: "Kafka consumer errors by kind.",
		},
		[]string{"kind"},
	)

	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_build_info",
			Help: "Build information for the binary.",
		},
		[]string{"version"},
	)
)

var initOnce sync.Once

// Init registers the instruments. A nil registerer falls back to the default
// registry. Safe to call more than once; only the first call registers.
func Init(reg prometheus.Registerer) {
	initOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		reg.MustRegister(
			httpRequestsTotal,
			httpRequestDurationSeconds,
			cacheOpDurationSeconds,
			cacheResults,
			cellsPerQuery,
			invalidationEventsTotal,
			invalidationKeysDeleted,
			invalidationDurationSeconds,
			kafkaConsumerErrorsTotal,
			buildInfo,
		)
	})
}

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	st := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, st).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st).Observe(durationSeconds)
}

func ObserveCacheOp(op string, err error, durationSeconds float64) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	cacheOpDurationSeconds.WithLabelValues(op, outcome).Observe(durationSeconds)
}

func AddCacheHits(n int) {
	if n > 0 {
		cacheResults.WithLabelValues("hit").Add(float64(n))
	}
}

func AddCacheMisses(n int) {
	if n > 0 {
		cacheResults.WithLabelValues("miss").Add(float64(n))
	}
}

func ObserveCellsPerQuery(n int) {
	cellsPerQuery.Observe(float64(n))
}

func ObserveInvalidation(op string, keysDeleted int, dur time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	invalidationEventsTotal.WithLabelValues(op, outcome).Inc()
	invalidationDurationSeconds.Observe(dur.Seconds())
	if keysDeleted > 0 {
		invalidationKeysDeleted.Add(float64(keysDeleted))
	}
}

func IncKafkaConsumerError(kind string) {
	kafkaConsumerErrorsTotal.WithLabelValues(kind).Inc()
}

func ExposeBuildInfo(version string) {
	if version == "" {
		version = "dev"
	}
	buildInfo.WithLabelValues(version).Set(1)
}

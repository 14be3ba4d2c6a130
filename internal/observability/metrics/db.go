package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DBPoolAcquiredConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_pool_acquired_connections",
			Help: "Number of acquired database connections",
		},
	)

	DBPoolIdleConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_pool_idle_connections",
			Help: "Number of idle database connections",
		},
	)

	DBPoolMaxConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_pool_max_connections",
			Help: "Maximum number of database connections",
		},
	)

	DBPoolTotalConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_pool_total_connections",
			Help: "Total number of database connections",
		},
	)

	DBQueryDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Duration of store queries in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"store", "operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_query_errors_total",
			Help: "Total number of store query errors",
		},
		[]string{"store", "operation", "error_type"},
	)

	PoolAcquireDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pool_acquire_duration_seconds",
			Help:    "Time spent waiting for a pooled connection",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 3},
		},
		[]string{"pool"},
	)

	PoolAcquireFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pool_acquire_failures_total",
			Help: "Total number of failed pool acquisitions by reason",
		},
		[]string{"pool", "reason"},
	)

	PoolLeasesInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pool_leases_in_flight",
			Help: "Number of pooled connections currently leased",
		},
		[]string{"pool"},
	)
)

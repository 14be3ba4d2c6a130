package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RegistrationOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registration_outcomes_total",
			Help: "Registration saga terminal states",
		},
		[]string{"outcome"},
	)

	RegistrationStepDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "registration_step_duration_seconds",
			Help:    "Duration of individual registration saga steps",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"step"},
	)

	ProfileLookupFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_lookup_failures_total",
			Help: "Profile fan-out lookups that failed at the transport level",
		},
		[]string{"lookup"},
	)

	ProfileCountersDefaulted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_counters_defaulted_total",
			Help: "Profile counters that returned no row and were defaulted to zero",
		},
		[]string{"lookup"},
	)

	AuthGateOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_gate_outcomes_total",
			Help: "Authentication gate results by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	RPCDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "downstream_rpc_duration_seconds",
			Help:    "Duration of downstream RPC calls",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "code"},
	)
)

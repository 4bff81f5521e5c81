package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BackingsCreated counts backings created by origin
	BackingsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "funding_backings_created_total",
			Help: "Total number of backings created",
		},
		[]string{"origin"},
	)

	// BackingTransitions counts backing status transitions
	BackingTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "funding_backing_transitions_total",
			Help: "Total number of backing status transitions",
		},
		[]string{"to"},
	)

	// BackingAmount tracks the size of created backings
	BackingAmount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "funding_backing_amount",
			Help:    "Amount of created backings",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
		},
	)

	// RecomputeRuns counts aggregate recomputations by scope and outcome
	RecomputeRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "funding_recompute_runs_total",
			Help: "Total number of aggregate recomputations",
		},
		[]string{"scope", "outcome"},
	)

	// RecomputeRetries counts recomputations retried after lock races
	RecomputeRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "funding_recompute_retries_total",
			Help: "Total number of aggregate recomputation retries",
		},
	)

	// SweepsCompleted counts withdrawals finalized by the unlock sweeper
	SweepsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "funding_sweeps_completed_total",
			Help: "Total number of withdrawals finalized by the sweeper",
		},
	)

	// SweepErrors counts sweeper passes that hit an error
	SweepErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "funding_sweep_errors_total",
			Help: "Total number of sweeper errors",
		},
	)

	// CampaignsAutoClosed counts campaigns closed by the deadline sweep
	CampaignsAutoClosed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "funding_campaigns_auto_closed_total",
			Help: "Total number of campaigns closed after their deadline",
		},
	)
)

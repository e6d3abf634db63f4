package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IntentionDecisions counts administrative decisions on intentions by outcome (approved|rejected).
	IntentionDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conexa_intention_decisions_total",
			Help: "Total number of intention approval decisions",
		},
		[]string{"outcome"},
	)

	// RegistrationsCompleted counts successful one-time token redemptions.
	RegistrationsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "conexa_registrations_completed_total",
			Help: "Total number of completed member registrations",
		},
	)

	// ActiveMembers tracks the current number of active members.
	ActiveMembers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "conexa_active_members",
			Help: "Number of active members",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "conexa_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

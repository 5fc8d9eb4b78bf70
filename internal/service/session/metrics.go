package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	actionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "accta",
			Name:      "actions_total",
			Help:      "Actions appended to session ledgers, by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
	replaysTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "accta",
			Name:      "replays_total",
			Help:      "Full replays triggered by action removal",
		},
		[]string{"outcome"},
	)
	replayDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "accta",
			Name:      "replay_duration_seconds",
			Help:      "Duration of action replays in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
	)
	sessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "accta",
			Name:      "sessions_active",
			Help:      "Open sessions",
		},
	)
)

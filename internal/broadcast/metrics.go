package broadcast

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	batchesStartedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcast_batches_started_total",
			Help: "Total number of fan-out batches started",
		},
	)

	recipientsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcast_recipients_total",
			Help: "Total recipients processed by fan-out batches",
		},
		[]string{"status"}, // sent, failed
	)

	deletionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcast_deletions_total",
			Help: "Total delivered messages processed by undo",
		},
		[]string{"status"}, // deleted, error
	)

	batchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "broadcast_batch_duration_seconds",
			Help:    "Wall-clock duration of fan-out batches",
			Buckets: prometheus.ExponentialBuckets(0.1, 4, 8),
		},
	)
)

package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsConsumedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sms_store",
			Name:      "events_consumed_total",
			Help:      "Consumed delivery events by result.",
		},
		[]string{"result"}, // persisted, duplicate, malformed
	)

	persistRetriesCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sms_store",
			Name:      "persist_retries_total",
			Help:      "Upsert attempts retried because the record store was unavailable.",
		},
	)

	offsetCommitErrorsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sms_store",
			Name:      "offset_commit_errors_total",
			Help:      "Offset commits that failed after successful persistence.",
		},
	)

	persistDurationHist = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "sms_store",
			Name:      "persist_duration_seconds",
			Help:      "Duration of record upserts, retries included.",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

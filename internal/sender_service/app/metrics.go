package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sendAttemptsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sms_sender",
			Name:      "attempts_total",
			Help:      "Total send attempts by terminal status.",
		},
		[]string{"status"}, // SUCCESS, FAILED, BLOCKED
	)

	sendErrorsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sms_sender",
			Name:      "errors_total",
			Help:      "Requests that failed without a terminal status.",
		},
		[]string{"stage"}, // gate, vendor, publish
	)

	vendorCallDurationHist = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "sms_sender",
			Name:      "vendor_call_duration_seconds",
			Help:      "Duration of simulated vendor calls.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	eventPublishDurationHist = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "sms_sender",
			Name:      "event_publish_duration_seconds",
			Help:      "Duration of delivery event publication, retries included.",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "photostream",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Backend calls by operation and outcome kind.",
		},
		[]string{"op", "outcome"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "photostream",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Wall time of backend calls.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op"},
	)
)

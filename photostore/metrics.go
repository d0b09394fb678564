package photostore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "photostream",
		Subsystem: "store",
		Name:      "fetches_total",
		Help:      "Collection fetches issued by Load.",
	})

	loadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "photostream",
		Subsystem: "store",
		Name:      "loads_total",
		Help:      "Completed loads that were not stale, by outcome.",
	}, []string{"outcome"})

	staleLoadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "photostream",
		Subsystem: "store",
		Name:      "stale_loads_total",
		Help:      "Fetch responses discarded because a newer load superseded them.",
	})

	patchesDiscarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "photostream",
		Subsystem: "store",
		Name:      "patches_discarded_total",
		Help:      "Confirmed patches dropped because their photo left the snapshot.",
	}, []string{"kind"})

	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "photostream",
		Subsystem: "store",
		Name:      "mutations_total",
		Help:      "Mutation intents by operation and outcome.",
	}, []string{"op", "outcome"})
)

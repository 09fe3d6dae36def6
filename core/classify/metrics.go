package classify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tasksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "post_sieve_classify_tasks_total",
		Help: "Classification tasks by terminal outcome (matched, unmatched, failed)",
	}, []string{"outcome"})

	oracleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "post_sieve_oracle_duration_seconds",
		Help:    "Latency of oracle calls including cache lookups",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	})

	tasksInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "post_sieve_classify_in_flight",
		Help: "Classification tasks currently waiting on the oracle",
	})

	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "post_sieve_oracle_cache_hits_total",
		Help: "Oracle calls answered from the per-run response cache",
	})
)

package evolve

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// trialsTotal counts trials by phase (bootstrap, main) and result
	trialsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "netevo_evolve_trials_total",
		Help: "Total annealing trials by phase and result",
	}, []string{"phase", "result"})

	temperatureGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "netevo_evolve_temperature",
		Help: "Current annealing temperature",
	})

	incumbentScore = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "netevo_evolve_incumbent_score",
		Help: "Score of the current incumbent graph",
	})

	trialDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "netevo_evolve_trial_duration_seconds",
		Help:    "Time to clone, mutate and score one trial",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10), // 10us to ~2.6s
	})
)

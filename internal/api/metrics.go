package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsScored = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rqc_runs_scored_total",
		Help: "Scoring runs completed, by submission source.",
	}, []string{"source"})

	invalidSubmissions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rqc_invalid_submissions_total",
		Help: "Run submissions rejected during validation.",
	})

	finalScores = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rqc_final_score",
		Help:    "Distribution of computed restraint scores.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})
)

package tutor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	questionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ritai",
		Name:      "questions_total",
		Help:      "Questions answered, by outcome.",
	}, []string{"outcome"}) // answered, no_content, error

	revisionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ritai",
		Name:      "revisions_total",
		Help:      "Revise requests processed.",
	})

	retrievalEmpty = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ritai",
		Name:      "retrieval_empty_total",
		Help:      "Retrieval calls that yielded no passages.",
	})

	genRateLimits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ritai",
		Name:      "generation_rate_limits_total",
		Help:      "Rate-limit responses seen from the generation backend.",
	})

	answerDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "ritai",
		Name:      "answer_duration_seconds",
		Help:      "Wall time of full answer pipeline runs.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	})
)

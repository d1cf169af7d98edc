// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Classifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storevoice",
			Name:      "classifications_total",
			Help:      "Utterances classified, by classifier backend and intent.",
		},
		[]string{"backend", "intent"},
	)

	ClassifierFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storevoice",
			Name:      "classifier_fallbacks_total",
			Help:      "Times the primary classifier failed and the fallback was used.",
		},
		[]string{"primary"},
	)

	Syntheses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storevoice",
			Name:      "syntheses_total",
			Help:      "Speech synthesis attempts, by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)

	Dispatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storevoice",
			Name:      "dispatches_total",
			Help:      "Capability invocations, by capability and outcome.",
		},
		[]string{"capability", "outcome"},
	)

	CycleDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storevoice",
			Name:      "command_cycle_seconds",
			Help:      "Time from utterance to logged response.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"intent"},
	)
)

// Outcome label values.
const (
	OK          = "ok"
	Failed      = "error"
	Missing     = "missing"
	Unavailable = "unavailable"
)

func init() {
	prometheus.MustRegister(Classifications, ClassifierFallbacks, Syntheses, Dispatches, CycleDuration)
}

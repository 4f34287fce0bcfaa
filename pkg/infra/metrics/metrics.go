// Package metrics exposes the engine's Prometheus instrumentation on a
// private registry. The host decides whether and where to serve it.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	AttacksTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "adversary_attacks_total",
			Help: "Total attack executions by vector",
		},
		[]string{"attack_type"},
	)

	EvasionsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "adversary_evasions_total",
			Help: "Successful evasions observed during robustness testing and chains",
		},
		[]string{"attack_type"},
	)

	ClassifierFailuresTotal = promauto.With(registerer).NewCounter(
		prometheus.CounterOpts{
			Name: "adversary_classifier_failures_total",
			Help: "Classifier calls that failed or timed out",
		},
	)

	DetectionsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "adversary_detections_total",
			Help: "Triggered detections by detector and severity",
		},
		[]string{"detector", "severity"},
	)

	RemediationsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "adversary_remediations_total",
			Help: "Remediation records by threat level and status",
		},
		[]string{"threat_level", "status"},
	)

	ChainTurns = promauto.With(registerer).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "adversary_chain_turns",
			Help:    "Turns needed per adaptive attack chain",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
		},
	)
)

// Registry returns the private registry so the host can mount it on its own
// metrics endpoint.
func Registry() *prometheus.Registry {
	return registry
}

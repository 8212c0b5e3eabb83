// ABOUTME: Prometheus counters for editor loads and mutations.
// ABOUTME: Labelled by mutation kind and outcome.

package editor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_editor_mutations_total",
			Help: "Total number of editor mutations by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	loadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_editor_loads_total",
			Help: "Total number of editor loads by outcome.",
		},
		[]string{"outcome"},
	)
)

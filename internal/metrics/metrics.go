// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CollapsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cfr_collapses_total",
		Help: "Node collapses that changed state, by node",
	}, []string{"node"})

	ParameterUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cfr_parameter_updates_total",
		Help: "Parameter writes from slider input, by parameter",
	}, []string{"parameter"})

	DiagramResetsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cfr_diagram_resets_total",
		Help: "Diagram resets",
	})

	Coherence = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cfr_coherence",
		Help: "Coherence of the current parameters",
	})

	PersistWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cfr_persist_writes_total",
		Help: "Persisted state writes, by result",
	}, []string{"result"})

	PersistLoadFallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cfr_persist_load_fallbacks_total",
		Help: "Loads that fell back to defaults, by reason",
	}, []string{"reason"})

	ClockTicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cfr_clock_ticks_total",
		Help: "Animation clock ticks",
	})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

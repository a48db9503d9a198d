// Package metrics exposes prometheus instrumentation for the engine.
package metrics

import (
	"net/http"

	"github.com/finplan/credit-engine/pkg/schedule"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the engine's prometheus metrics behind its own registry.
type Collector struct {
	registry            *prometheus.Registry
	schedulesGenerated  prometheus.Counter
	periodsGenerated    prometheus.Counter
	periodsRecalculated prometheus.Counter
	periodsSkipped      *prometheus.CounterVec
	ratePointsIngested  prometheus.Counter
}

// NewCollector creates a collector with all engine metrics registered.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	return &Collector{
		registry: registry,
		schedulesGenerated: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "schedules_generated_total",
			Help: "Total number of generated payment schedules",
		}),
		periodsGenerated: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "payment_periods_generated_total",
			Help: "Total number of generated payment periods",
		}),
		periodsRecalculated: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "payment_periods_recalculated_total",
			Help: "Total number of periods rewritten against historical rates",
		}),
		periodsSkipped: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "payment_periods_skipped_total",
			Help: "Total number of periods skipped during recalculation",
		}, []string{"reason"}),
		ratePointsIngested: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "rate_points_ingested_total",
			Help: "Total number of rate points upserted from the central bank",
		}),
	}
}

// ObserveGeneration records one generated schedule.
func (c *Collector) ObserveGeneration(periods int) {
	c.schedulesGenerated.Inc()
	c.periodsGenerated.Add(float64(periods))
}

// ObserveRecalculation records the period outcomes of one recalculation run.
func (c *Collector) ObserveRecalculation(entries []schedule.RecalcEntry) {
	for _, e := range entries {
		if e.Status == schedule.StatusUpdated {
			c.periodsRecalculated.Inc()
		} else {
			c.periodsSkipped.WithLabelValues(string(e.Status)).Inc()
		}
	}
}

// ObserveIngest records upserted rate points.
func (c *Collector) ObserveIngest(points int) {
	c.ratePointsIngested.Add(float64(points))
}

// Handler serves the collector's registry in the prometheus text format.
// The CLIs are one-shot and expose no listener; a host embedding the engine
// in a long-lived process mounts this on its own mux.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Package service wires the schedule engine to its rate series and exposes
// the operations consumed by the surrounding API layer.
package service

import (
	"cloud.google.com/go/civil"
	"github.com/finplan/credit-engine/pkg/constants"
	"github.com/finplan/credit-engine/pkg/metrics"
	"github.com/finplan/credit-engine/pkg/rateseries"
	"github.com/finplan/credit-engine/pkg/schedule"
	"go.uber.org/zap"
)

// defaultBaseRates are the documented fallbacks used only when composing
// new credit terms with an empty rate store. Recalculation never touches
// them: with no official data a period keeps its original values.
var defaultBaseRates = map[string]float64{
	"KEY_RATE": 16.0,
	"LIBOR":    5.0,
	"SOFR":     4.5,
}

// Engine binds rate stores to indicators and exposes schedule generation,
// recalculation, and average-rate queries.
type Engine struct {
	queries      map[string]*rateseries.QueryEngine
	generator    *schedule.Generator
	recalculator *schedule.Recalculator
	collector    *metrics.Collector
	logger       *zap.Logger
}

// NewEngine creates an engine over the given indicator-to-store bindings.
// Indicators without a binding validate and generate but cannot be
// recalculated.
func NewEngine(stores map[string]rateseries.Store, collector *metrics.Collector, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if collector == nil {
		collector = metrics.NewCollector()
	}

	queries := make(map[string]*rateseries.QueryEngine, len(stores))
	sources := make(map[string]schedule.RateSource, len(stores))
	for indicator, store := range stores {
		q := rateseries.NewQueryEngine(store, logger)
		queries[indicator] = q
		sources[indicator] = q
	}

	return &Engine{
		queries:      queries,
		generator:    schedule.NewGenerator(logger),
		recalculator: schedule.NewRecalculator(sources, logger),
		collector:    collector,
		logger:       logger,
	}
}

// GenerateSchedule builds the payment periods for the given terms. Invalid
// terms are rejected before any period is produced.
func (e *Engine) GenerateSchedule(terms schedule.CreditTerms, paymentDay int) ([]schedule.PaymentPeriod, error) {
	periods, err := e.generator.Generate(terms, paymentDay)
	if err != nil {
		return nil, err
	}
	e.collector.ObserveGeneration(len(periods))
	return periods, nil
}

// RecalculateSchedule rewrites the periods' rate and interest fields
// against the indicator's rate history, returning the updated periods, the
// per-period report, and the aggregate summary. now determines the
// past/future regime split and is explicit so callers and tests control it.
func (e *Engine) RecalculateSchedule(periods []schedule.PaymentPeriod, indicator string, spread float64, now civil.Date) ([]schedule.PaymentPeriod, []schedule.RecalcEntry, schedule.RecalcSummary) {
	entries, summary := e.recalculator.Recalculate(periods, indicator, spread, now)
	e.collector.ObserveRecalculation(entries)

	e.logger.Info("recalculated schedule",
		zap.String("op", "service.RecalculateSchedule"),
		zap.String("indicator", indicator),
		zap.String("outcome", string(summary.Outcome())),
		zap.Int("updated", summary.UpdatedPeriods),
		zap.Int("skipped", summary.SkippedPeriods),
		zap.Float64("difference", summary.TotalDifference),
	)
	return periods, entries, summary
}

// QueryAverageRate returns the time-weighted average rate for an indicator
// over [from, to]. ok is false when the indicator has no bound series or no
// data covers the range.
func (e *Engine) QueryAverageRate(indicator string, from, to civil.Date) (float64, bool) {
	q, ok := e.queries[indicator]
	if !ok {
		e.logger.Warn("average rate requested for unbound indicator",
			zap.String("op", "service.QueryAverageRate"),
			zap.String("indicator", indicator),
		)
		return 0, false
	}
	return q.AverageOver(from, to)
}

// ResolveBaseRate returns the current rate for an indicator for use as a
// generation snapshot, falling back to a documented default when no data
// is available.
func (e *Engine) ResolveBaseRate(indicator string) float64 {
	if q, ok := e.queries[indicator]; ok {
		if rate, found := q.CurrentRate(); found {
			return rate
		}
	}

	def, ok := defaultBaseRates[indicator]
	if !ok {
		def = defaultBaseRates[constants.KeyRateIndicator]
	}
	e.logger.Warn("no rate data for indicator, using default snapshot",
		zap.String("op", "service.ResolveBaseRate"),
		zap.String("indicator", indicator),
		zap.Float64("default", def),
	)
	return def
}

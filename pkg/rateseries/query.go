package rateseries

import (
	"cloud.google.com/go/civil"
	"github.com/finplan/credit-engine/pkg/datetime"
	"go.uber.org/zap"
)

// QueryEngine answers rate lookups over a Store. All lookups fail soft: the
// ok result is false when the store has no data for the request, and no
// default rate is ever fabricated.
type QueryEngine struct {
	store  Store
	logger *zap.Logger
}

// NewQueryEngine creates a query engine over the given store.
func NewQueryEngine(store Store, logger *zap.Logger) *QueryEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryEngine{store: store, logger: logger}
}

// CurrentRate returns the most recently effective rate.
func (q *QueryEngine) CurrentRate() (float64, bool) {
	p, ok := q.store.Latest()
	if !ok {
		return 0, false
	}
	return p.Rate, true
}

// RateOn returns the rate in effect on the given date, i.e. the rate of the
// point with the greatest effective date not after it.
func (q *QueryEngine) RateOn(date civil.Date) (float64, bool) {
	p, ok := q.store.AtOrBefore(date)
	if !ok {
		return 0, false
	}
	return p.Rate, true
}

// AverageOver returns the time-weighted average of the rate in effect
// across [from, to]. Each rate contributes in proportion to the number of
// days it was in force inside the window; a rate that took effect before
// the window covers the days up to the first in-window change. Rate changes
// do not align with billing-period boundaries, so a plain "most recent
// rate" would misstate interest for periods spanning a change.
func (q *QueryEngine) AverageOver(from, to civil.Date) (float64, bool) {
	if to.Before(from) {
		q.logger.Warn("average requested over inverted range",
			zap.String("op", "rateseries.AverageOver"),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
		return 0, false
	}
	if from == to {
		return q.RateOn(from)
	}

	points := q.store.Range(from, to)
	if len(points) == 0 {
		// No changes inside the window; the rate already in effect at the
		// window open covers it entirely.
		return q.RateOn(from)
	}

	weightedSum := 0.0
	totalDays := 0
	for i, p := range points {
		segStart := datetime.MaxDate(p.EffectiveDate, from)
		segEnd := to
		if i+1 < len(points) {
			segEnd = datetime.MinDate(points[i+1].EffectiveDate, to)
		}
		days := segEnd.DaysSince(segStart)
		if days > 0 {
			weightedSum += p.Rate * float64(days)
			totalDays += days
		}
	}

	// The first in-window point may take effect after the window opens; the
	// gap before it was governed by the pre-window rate.
	if first := points[0]; from.Before(first.EffectiveDate) {
		if rate, ok := q.RateOn(from); ok {
			days := first.EffectiveDate.DaysSince(from)
			weightedSum += rate * float64(days)
			totalDays += days
		}
	}

	if totalDays == 0 {
		q.logger.Warn("no weighted days in range, cannot average",
			zap.String("op", "rateseries.AverageOver"),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
		return 0, false
	}

	avg := weightedSum / float64(totalDays)
	q.logger.Debug("computed time-weighted average rate",
		zap.String("op", "rateseries.AverageOver"),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
		zap.Float64("average", avg),
	)
	return avg, true
}

package schedule

import (
	"cloud.google.com/go/civil"
	"github.com/finplan/credit-engine/pkg/interest"
	"github.com/finplan/credit-engine/pkg/mathutil"
	"go.uber.org/zap"
)

// RateSource resolves reference rates during recalculation. Lookups fail
// soft: ok is false when no data is available, and the period keeps its
// original fields.
type RateSource interface {
	CurrentRate() (float64, bool)
	AverageOver(from, to civil.Date) (float64, bool)
}

// RecalcStatus reports the outcome of recalculating one period.
type RecalcStatus string

const (
	// StatusUpdated means the period's rate and interest were rewritten.
	StatusUpdated RecalcStatus = "updated"
	// StatusUnsupportedIndicator means the credit's indicator has no bound
	// rate series; the period was left unchanged.
	StatusUnsupportedIndicator RecalcStatus = "unsupported_indicator"
	// StatusNoData means no official rate data covers the period; the
	// period was left unchanged rather than priced off a fabricated rate.
	StatusNoData RecalcStatus = "no_rate_data"
)

// RecalcEntry records the before and after values for one period.
type RecalcEntry struct {
	PeriodNumber      int
	PeriodStart       civil.Date
	PeriodEnd         civil.Date
	Status            RecalcStatus
	OldBaseRate       float64
	NewBaseRate       float64
	OldInterestRate   float64
	NewInterestRate   float64
	OldInterestAmount float64
	NewInterestAmount float64
	Difference        float64
}

// RecalcOutcome classifies a whole recalculation run for the caller.
type RecalcOutcome string

const (
	OutcomeFull    RecalcOutcome = "fully_recalculated"
	OutcomePartial RecalcOutcome = "partially_recalculated"
	OutcomeNone    RecalcOutcome = "no_periods_recalculated"
)

// RecalcSummary aggregates a recalculation run. Interest totals are rounded
// to currency precision.
type RecalcSummary struct {
	TotalPeriods      int
	UpdatedPeriods    int
	SkippedPeriods    int
	TotalOldInterest  float64
	TotalNewInterest  float64
	TotalDifference   float64
	BaseRateIndicator string
	CreditSpread      float64
}

// Outcome distinguishes fully recalculated, partially recalculated, and
// untouched runs.
func (s RecalcSummary) Outcome() RecalcOutcome {
	switch {
	case s.TotalPeriods > 0 && s.UpdatedPeriods == s.TotalPeriods:
		return OutcomeFull
	case s.UpdatedPeriods > 0:
		return OutcomePartial
	}
	return OutcomeNone
}

// Recalculator rewrites a schedule's rate and interest fields against the
// authoritative rate history, leaving period identity (numbers and dates)
// untouched. Reference-rate history is revised and backfilled by the
// authority on its own cadence, so schedules are refreshed on demand
// instead of trusting the snapshot rate guessed at generation time.
type Recalculator struct {
	sources map[string]RateSource // indicator -> bound rate history
	logger  *zap.Logger
}

// NewRecalculator creates a recalculator over the given indicator bindings.
func NewRecalculator(sources map[string]RateSource, logger *zap.Logger) *Recalculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sources == nil {
		sources = map[string]RateSource{}
	}
	return &Recalculator{sources: sources, logger: logger}
}

// Recalculate re-derives each period's base rate from the indicator's rate
// history: periods starting after now take the current rate, past and
// current periods take the time-weighted average over the period. The
// operation is per-period best-effort; a period that cannot be resolved is
// reported and left unchanged while the rest proceed. now is explicit so
// the past/future split is deterministic under test.
func (r *Recalculator) Recalculate(periods []PaymentPeriod, indicator string, spread float64, now civil.Date) ([]RecalcEntry, RecalcSummary) {
	entries := make([]RecalcEntry, 0, len(periods))
	for i := range periods {
		entries = append(entries, r.recalcPeriod(&periods[i], indicator, spread, now))
	}
	return entries, summarize(entries, indicator, spread)
}

func (r *Recalculator) recalcPeriod(p *PaymentPeriod, indicator string, spread float64, now civil.Date) RecalcEntry {
	entry := RecalcEntry{
		PeriodNumber:      p.PeriodNumber,
		PeriodStart:       p.PeriodStartDate,
		PeriodEnd:         p.PeriodEndDate,
		OldBaseRate:       p.BaseRate,
		NewBaseRate:       p.BaseRate,
		OldInterestRate:   p.InterestRate,
		NewInterestRate:   p.InterestRate,
		OldInterestAmount: p.InterestAmount,
		NewInterestAmount: p.InterestAmount,
	}

	source, ok := r.sources[indicator]
	if !ok {
		r.logger.Warn("indicator has no bound rate series, skipping period",
			zap.String("op", "schedule.Recalculate"),
			zap.String("indicator", indicator),
			zap.Int("period", p.PeriodNumber),
		)
		entry.Status = StatusUnsupportedIndicator
		return entry
	}

	var baseRate float64
	var found bool
	if p.PeriodStartDate.After(now) {
		// Future period: the best available estimate is the rate in effect
		// right now.
		baseRate, found = source.CurrentRate()
	} else {
		baseRate, found = source.AverageOver(p.PeriodStartDate, p.PeriodEndDate)
	}
	if !found {
		r.logger.Warn("no official rate data for period, keeping original values",
			zap.String("op", "schedule.Recalculate"),
			zap.String("indicator", indicator),
			zap.Int("period", p.PeriodNumber),
			zap.String("start", p.PeriodStartDate.String()),
			zap.String("end", p.PeriodEndDate.String()),
		)
		entry.Status = StatusNoData
		return entry
	}

	p.BaseRate = baseRate
	p.InterestRate = baseRate + spread
	p.InterestAmount = interest.Amount(p.PrincipalAmount, p.InterestRate, p.PeriodDays)
	p.TotalPayment = p.InterestAmount

	entry.Status = StatusUpdated
	entry.NewBaseRate = p.BaseRate
	entry.NewInterestRate = p.InterestRate
	entry.NewInterestAmount = p.InterestAmount
	entry.Difference = p.InterestAmount - entry.OldInterestAmount

	r.logger.Debug("recalculated period",
		zap.String("op", "schedule.Recalculate"),
		zap.Int("period", p.PeriodNumber),
		zap.Float64("baseRate", baseRate),
		zap.Float64("interestAmount", p.InterestAmount),
	)
	return entry
}

func summarize(entries []RecalcEntry, indicator string, spread float64) RecalcSummary {
	summary := RecalcSummary{
		TotalPeriods:      len(entries),
		BaseRateIndicator: indicator,
		CreditSpread:      spread,
	}
	for _, e := range entries {
		if e.Status == StatusUpdated {
			summary.UpdatedPeriods++
		} else {
			summary.SkippedPeriods++
		}
		summary.TotalOldInterest += e.OldInterestAmount
		summary.TotalNewInterest += e.NewInterestAmount
	}
	summary.TotalDifference = mathutil.Round(summary.TotalNewInterest - summary.TotalOldInterest)
	summary.TotalOldInterest = mathutil.Round(summary.TotalOldInterest)
	summary.TotalNewInterest = mathutil.Round(summary.TotalNewInterest)
	return summary
}

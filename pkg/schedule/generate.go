package schedule

import (
	"github.com/finplan/credit-engine/pkg/constants"
	"github.com/finplan/credit-engine/pkg/datetime"
	"github.com/finplan/credit-engine/pkg/interest"
	"go.uber.org/zap"
)

// Generator produces payment schedules from credit terms.
type Generator struct {
	logger *zap.Logger
}

// NewGenerator creates a new generator instance.
func NewGenerator(logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{logger: logger}
}

// Generate builds the ordered payment periods for the given terms. A
// paymentDay in [1, 31] pins every payment to that day of month, clamped to
// the length of the target month; zero selects end-of-month billing. The
// snapshot base rate from the terms prices every period; historical
// correction happens only through recalculation.
//
// Generation stops at the period cap and returns the partial schedule with
// a warning rather than looping indefinitely on malformed input.
func (g *Generator) Generate(terms CreditTerms, paymentDay int) ([]PaymentPeriod, error) {
	if err := terms.Validate(); err != nil {
		return nil, err
	}
	if paymentDay < 0 || paymentDay > 31 {
		return nil, &ValidationError{Field: "paymentDay", Reason: "must be between 1 and 31"}
	}

	increment, _ := terms.PaymentFrequency.MonthIncrement()
	totalRate := terms.TotalRate()

	var periods []PaymentPeriod
	currentStart := terms.StartDate
	for periodNum := 1; currentStart.Before(terms.EndDate); periodNum++ {
		if periodNum > constants.MaxPeriods {
			g.logger.Warn("period cap reached, returning partial schedule",
				zap.String("op", "schedule.Generate"),
				zap.String("credit", terms.CreditName),
				zap.Int("maxPeriods", constants.MaxPeriods),
			)
			break
		}

		periodEnd := datetime.RollMonths(currentStart, increment, paymentDay)
		periodEnd = datetime.MinDate(periodEnd, terms.EndDate)

		days := interest.PeriodDays(currentStart, periodEnd)
		amount := interest.Amount(terms.PrincipalAmount, totalRate, days)

		periods = append(periods, PaymentPeriod{
			PeriodNumber:    periodNum,
			PeriodStartDate: currentStart,
			PeriodEndDate:   periodEnd,
			PaymentDate:     periodEnd,
			PrincipalAmount: terms.PrincipalAmount,
			BaseRate:        terms.BaseRateValue,
			Spread:          terms.CreditSpread,
			InterestRate:    totalRate,
			PeriodDays:      days,
			InterestAmount:  amount,
			TotalPayment:    amount,
		})

		g.logger.Debug("generated payment period",
			zap.String("op", "schedule.Generate"),
			zap.String("credit", terms.CreditName),
			zap.Int("period", periodNum),
			zap.String("start", currentStart.String()),
			zap.String("end", periodEnd.String()),
		)

		currentStart = periodEnd
	}

	g.logger.Info("generated payment schedule",
		zap.String("op", "schedule.Generate"),
		zap.String("credit", terms.CreditName),
		zap.Int("periods", len(periods)),
	)
	return periods, nil
}

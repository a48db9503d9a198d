// Package schedule generates payment schedules for credit obligations and
// recalculates their interest against historical reference rates.
package schedule

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/finplan/credit-engine/pkg/mathutil"
)

// PaymentFrequency determines the spacing of payment periods.
type PaymentFrequency string

const (
	Monthly    PaymentFrequency = "MONTHLY"
	Quarterly  PaymentFrequency = "QUARTERLY"
	SemiAnnual PaymentFrequency = "SEMI_ANNUAL"
	Annual     PaymentFrequency = "ANNUAL"
)

// monthIncrements maps each payment frequency to the number of months
// between consecutive payments.
var monthIncrements = map[PaymentFrequency]int{
	Monthly:    1,
	Quarterly:  3,
	SemiAnnual: 6,
	Annual:     12,
}

// MonthIncrement returns the number of months between consecutive payments,
// or false for an unknown frequency.
func (f PaymentFrequency) MonthIncrement() (int, bool) {
	inc, ok := monthIncrements[f]
	return inc, ok
}

// PaymentType declares the amortization style of a credit.
//
// The declared type is validated and recorded, but principal paydown for
// ANNUITY and DIFFERENTIATED credits is not implemented: every supported
// type carries the full principal through all periods and pays interest
// only. Amortization must not be added without product confirmation.
type PaymentType string

const (
	Annuity        PaymentType = "ANNUITY"
	Differentiated PaymentType = "DIFFERENTIATED"
	Bullet         PaymentType = "BULLET"
	InterestOnly   PaymentType = "INTEREST_ONLY"
)

func (t PaymentType) valid() bool {
	switch t {
	case Annuity, Differentiated, Bullet, InterestOnly:
		return true
	}
	return false
}

// CreditTerms is the input aggregate for schedule generation.
type CreditTerms struct {
	CreditName        string
	PrincipalAmount   float64
	StartDate         civil.Date
	EndDate           civil.Date
	PaymentFrequency  PaymentFrequency
	PaymentType       PaymentType
	BaseRateIndicator string
	BaseRateValue     float64 // snapshot at creation time
	CreditSpread      float64
}

// TotalRate returns the snapshot base rate plus the credit spread.
func (c CreditTerms) TotalRate() float64 {
	return c.BaseRateValue + c.CreditSpread
}

// Validate rejects malformed terms before any schedule is generated.
func (c CreditTerms) Validate() error {
	if c.PrincipalAmount <= 0 {
		return &ValidationError{Field: "principalAmount", Reason: "must be positive"}
	}
	if !c.EndDate.After(c.StartDate) {
		return &ValidationError{Field: "endDate", Reason: "must be after start date"}
	}
	if _, ok := c.PaymentFrequency.MonthIncrement(); !ok {
		return &ValidationError{Field: "paymentFrequency", Reason: fmt.Sprintf("unsupported frequency %q", string(c.PaymentFrequency))}
	}
	if !c.PaymentType.valid() {
		return &ValidationError{Field: "paymentType", Reason: fmt.Sprintf("unsupported type %q", string(c.PaymentType))}
	}
	if c.CreditSpread < 0 {
		return &ValidationError{Field: "creditSpread", Reason: "must not be negative"}
	}
	return nil
}

// ValidationError rejects a whole operation before any mutation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid credit terms: %s %s", e.Field, e.Reason)
}

// PaymentPeriod is one billing interval of a credit obligation. Generation
// creates periods in bulk; recalculation rewrites only the rate and
// interest fields, never the period identity.
type PaymentPeriod struct {
	PeriodNumber    int
	PeriodStartDate civil.Date
	PeriodEndDate   civil.Date
	PaymentDate     civil.Date
	PrincipalAmount float64
	BaseRate        float64
	Spread          float64
	InterestRate    float64 // base rate plus spread
	PeriodDays      int
	InterestAmount  float64
	TotalPayment    float64
}

// ScheduleTotals aggregates a schedule for presentation, rounded to
// currency precision.
type ScheduleTotals struct {
	Periods       int
	TotalInterest float64
	TotalPayment  float64
}

// Totals sums interest and payment amounts across a schedule.
func Totals(periods []PaymentPeriod) ScheduleTotals {
	t := ScheduleTotals{Periods: len(periods)}
	for _, p := range periods {
		t.TotalInterest += p.InterestAmount
		t.TotalPayment += p.TotalPayment
	}
	t.TotalInterest = mathutil.Round(t.TotalInterest)
	t.TotalPayment = mathutil.Round(t.TotalPayment)
	return t
}

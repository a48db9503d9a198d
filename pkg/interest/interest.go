// Package interest provides the simple-interest day-count math shared by
// schedule generation and recalculation.
package interest

import (
	"cloud.google.com/go/civil"
	"github.com/finplan/credit-engine/pkg/constants"
)

// PeriodDays returns the number of whole days between start and end. The
// caller guarantees end is not before start.
func PeriodDays(start, end civil.Date) int {
	return end.DaysSince(start)
}

// Amount computes simple interest on a principal at an annual percentage
// rate over the given number of days, on the fixed 365-day basis.
func Amount(principal, annualRatePercent float64, days int) float64 {
	return principal * (annualRatePercent / constants.PercentageMultiplier) * (float64(days) / constants.DaysPerYear)
}

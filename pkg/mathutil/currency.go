// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/finplan/credit-engine/pkg/constants"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Amounts are rounded only at presentation and summary boundaries; weighted
// averages and per-period interest are accumulated at full precision.
func Round(val float64) float64 {
	return math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
}

// IsZero checks if a value is effectively zero (within tolerance)
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.CurrencyTolerance
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

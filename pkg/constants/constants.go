// Package constants provides shared constants for the credit engine.
package constants

// DateLayout is the day-precision date format expected in config files and
// is also the output date format.
const DateLayout = "2006-01-02"

// Financial constants
const (
	// DaysPerYear is the interest day-count basis. The engine uses a fixed
	// 365-day convention with no leap-year adjustment.
	DaysPerYear = 365

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01
)

// Rate series constants
const (
	// EffectiveLagDays is the number of days between a key-rate announcement
	// and the date the new rate legally takes effect.
	EffectiveLagDays = 2

	// KeyRateIndicator is the reference-rate indicator backed by the central
	// bank key-rate series.
	KeyRateIndicator = "KEY_RATE"
)

// Schedule constants
const (
	// MaxPeriods caps the number of periods a single schedule may contain.
	// Generation stops at the cap to guard against runaway loops from
	// malformed inputs.
	MaxPeriods = 100
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"
)

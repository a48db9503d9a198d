// Package datetime provides day-precision calendar helpers built on
// civil.Date.
package datetime

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/finplan/credit-engine/pkg/constants"
)

// DateLayout is the format expected in config files and is also the output
// date format.
const DateLayout = constants.DateLayout

// ParseDate parses a date in YYYY-MM-DD format.
func ParseDate(s string) (civil.Date, error) {
	return civil.ParseDate(s)
}

// MustDate parses a date in YYYY-MM-DD format and panics on error. This is
// intended for use in tests where the date string is known to be valid.
func MustDate(s string) civil.Date {
	d, err := civil.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// LastDay returns the number of the last day of the given month.
func LastDay(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// RollMonths advances a date by the given number of months and pins the
// result to the given day of month, clamped to the length of the target
// month. A day outside [1, 31] pins to the last day of the target month.
func RollMonths(d civil.Date, months, day int) civil.Date {
	year := d.Year
	month := int(d.Month) + months
	for month > 12 {
		month -= 12
		year++
	}

	last := LastDay(year, time.Month(month))
	if day < 1 || day > last {
		day = last
	}
	return civil.Date{Year: year, Month: time.Month(month), Day: day}
}

// MinDate returns the earlier of two dates.
func MinDate(a, b civil.Date) civil.Date {
	if b.Before(a) {
		return b
	}
	return a
}

// MaxDate returns the later of two dates.
func MaxDate(a, b civil.Date) civil.Date {
	if b.After(a) {
		return b
	}
	return a
}

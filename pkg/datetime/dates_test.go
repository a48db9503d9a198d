package datetime

import (
	"testing"
	"time"
)

func TestLastDay(t *testing.T) {
	tests := []struct {
		name     string
		year     int
		month    time.Month
		expected int
	}{
		{"January", 2024, time.January, 31},
		{"February leap year", 2024, time.February, 29},
		{"February non-leap year", 2023, time.February, 28},
		{"April", 2024, time.April, 30},
		{"December", 2024, time.December, 31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LastDay(tt.year, tt.month); got != tt.expected {
				t.Errorf("LastDay(%d, %v) = %d, expected %d", tt.year, tt.month, got, tt.expected)
			}
		})
	}
}

func TestRollMonths(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		months   int
		day      int
		expected string
	}{
		{"one month end-of-month", "2024-01-01", 1, 0, "2024-02-29"},
		{"one month pinned day", "2024-01-15", 1, 15, "2024-02-15"},
		{"pinned day clamped to short month", "2024-01-31", 1, 31, "2024-02-29"},
		{"quarterly increment", "2024-01-01", 3, 0, "2024-04-30"},
		{"year rollover", "2024-11-15", 3, 10, "2025-02-10"},
		{"annual increment", "2024-06-30", 12, 30, "2025-06-30"},
		{"multiple year rollover", "2024-12-01", 13, 1, "2026-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RollMonths(MustDate(tt.start), tt.months, tt.day)
			if got != MustDate(tt.expected) {
				t.Errorf("RollMonths(%s, %d, %d) = %v, expected %s", tt.start, tt.months, tt.day, got, tt.expected)
			}
		})
	}
}

func TestMinMaxDate(t *testing.T) {
	a := MustDate("2024-01-01")
	b := MustDate("2024-06-01")
	if MinDate(a, b) != a {
		t.Errorf("MinDate(%v, %v) = %v, expected %v", a, b, MinDate(a, b), a)
	}
	if MaxDate(a, b) != b {
		t.Errorf("MaxDate(%v, %v) = %v, expected %v", a, b, MaxDate(a, b), b)
	}
	if MinDate(a, a) != a {
		t.Errorf("MinDate of equal dates should return the date itself")
	}
}

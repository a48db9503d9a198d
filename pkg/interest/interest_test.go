package interest

import (
	"math"
	"testing"

	"github.com/finplan/credit-engine/pkg/datetime"
)

func TestPeriodDays(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		end      string
		expected int
	}{
		{"full january", "2024-01-01", "2024-01-31", 30},
		{"month boundary", "2024-01-31", "2024-02-29", 29},
		{"same day", "2024-05-10", "2024-05-10", 0},
		{"full year", "2024-01-01", "2025-01-01", 366},
		{"across year end", "2024-12-15", "2025-01-15", 31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PeriodDays(datetime.MustDate(tt.start), datetime.MustDate(tt.end))
			if got != tt.expected {
				t.Errorf("PeriodDays(%s, %s) = %d, expected %d", tt.start, tt.end, got, tt.expected)
			}
		})
	}
}

func TestAmount(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		days      int
		expected  float64
	}{
		{"one million at 18.5 for 30 days", 1000000, 18.5, 30, 15205.479452},
		{"one year at 10 percent", 100000, 10.0, 365, 10000.0},
		{"zero days", 500000, 16.0, 0, 0.0},
		{"zero rate", 500000, 0.0, 90, 0.0},
		{"quarterly period", 2500000, 21.0, 91, 130890.410959},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Amount(tt.principal, tt.rate, tt.days)
			if math.Abs(got-tt.expected) > 0.01 {
				t.Errorf("Amount(%v, %v, %d) = %v, expected %v", tt.principal, tt.rate, tt.days, got, tt.expected)
			}
		})
	}
}

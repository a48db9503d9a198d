package mathutil

import "testing"

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"round down", 10.124, 10.12},
		{"round up", 10.125, 10.13},
		{"already two decimals", 99.99, 99.99},
		{"negative value", -10.126, -10.13},
		{"zero", 0, 0},
		{"large interest amount", 157191.780821917, 157191.78},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Round(tt.input); got != tt.expected {
				t.Errorf("Round(%v) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIsZero(t *testing.T) {
	if !IsZero(0.005) {
		t.Errorf("IsZero(0.005) = false, expected true (within one cent)")
	}
	if IsZero(0.02) {
		t.Errorf("IsZero(0.02) = true, expected false")
	}
}

func TestWithinTolerance(t *testing.T) {
	if !WithinTolerance(100.00, 100.009, 0.01) {
		t.Errorf("WithinTolerance(100.00, 100.009, 0.01) = false, expected true")
	}
	if WithinTolerance(100.00, 100.05, 0.01) {
		t.Errorf("WithinTolerance(100.00, 100.05, 0.01) = true, expected false")
	}
}

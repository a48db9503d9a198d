package schedule

import (
	"errors"
	"testing"

	"github.com/finplan/credit-engine/pkg/constants"
	"github.com/finplan/credit-engine/pkg/datetime"
	"github.com/finplan/credit-engine/pkg/mathutil"
)

func monthlyTerms() CreditTerms {
	return CreditTerms{
		CreditName:        "working capital line",
		PrincipalAmount:   1000000,
		StartDate:         datetime.MustDate("2024-01-01"),
		EndDate:           datetime.MustDate("2025-01-01"),
		PaymentFrequency:  Monthly,
		PaymentType:       InterestOnly,
		BaseRateIndicator: "KEY_RATE",
		BaseRateValue:     16.0,
		CreditSpread:      2.5,
	}
}

func TestGenerateMonthlyFullYear(t *testing.T) {
	g := NewGenerator(nil)

	periods, err := g.Generate(monthlyTerms(), 0)
	if err != nil {
		t.Fatalf("Generate() returned error: %v", err)
	}

	if len(periods) != 12 {
		t.Fatalf("Generate() produced %d periods, expected 12", len(periods))
	}

	for i, p := range periods {
		if p.PeriodNumber != i+1 {
			t.Errorf("period %d has number %d", i, p.PeriodNumber)
		}
		if p.InterestRate != 18.5 {
			t.Errorf("period %d interest rate = %v, expected 18.5", p.PeriodNumber, p.InterestRate)
		}
		if p.PrincipalAmount != 1000000 {
			t.Errorf("period %d principal = %v, expected full principal", p.PeriodNumber, p.PrincipalAmount)
		}
		if p.PaymentDate != p.PeriodEndDate {
			t.Errorf("period %d payment date %v differs from period end %v", p.PeriodNumber, p.PaymentDate, p.PeriodEndDate)
		}
		if p.TotalPayment != p.InterestAmount {
			t.Errorf("period %d total payment %v differs from interest %v", p.PeriodNumber, p.TotalPayment, p.InterestAmount)
		}

		// Every period but the last ends on the last day of its month.
		if i < len(periods)-1 {
			end := p.PeriodEndDate
			if end.Day != datetime.LastDay(end.Year, end.Month) {
				t.Errorf("period %d ends on %v, expected last day of month", p.PeriodNumber, end)
			}
		}
	}

	last := periods[len(periods)-1]
	if last.PeriodEndDate != datetime.MustDate("2025-01-01") {
		t.Errorf("final period ends %v, expected exactly 2025-01-01", last.PeriodEndDate)
	}
}

func TestGenerateContiguity(t *testing.T) {
	tests := []struct {
		name      string
		frequency PaymentFrequency
		start     string
		end       string
	}{
		{"monthly", Monthly, "2024-01-01", "2025-01-01"},
		{"quarterly", Quarterly, "2024-03-15", "2026-03-15"},
		{"semi-annual", SemiAnnual, "2023-06-30", "2026-06-30"},
		{"annual", Annual, "2022-02-28", "2027-11-30"},
		{"mid-month start", Monthly, "2024-01-17", "2024-08-09"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terms := monthlyTerms()
			terms.PaymentFrequency = tt.frequency
			terms.StartDate = datetime.MustDate(tt.start)
			terms.EndDate = datetime.MustDate(tt.end)

			periods, err := NewGenerator(nil).Generate(terms, 0)
			if err != nil {
				t.Fatalf("Generate() returned error: %v", err)
			}
			if len(periods) == 0 {
				t.Fatal("Generate() produced no periods")
			}

			if periods[0].PeriodStartDate != terms.StartDate {
				t.Errorf("first period starts %v, expected %v", periods[0].PeriodStartDate, terms.StartDate)
			}
			for i := 1; i < len(periods); i++ {
				if periods[i].PeriodStartDate != periods[i-1].PeriodEndDate {
					t.Errorf("period %d starts %v but period %d ends %v",
						periods[i].PeriodNumber, periods[i].PeriodStartDate,
						periods[i-1].PeriodNumber, periods[i-1].PeriodEndDate)
				}
				if periods[i].PeriodDays < 0 {
					t.Errorf("period %d has negative day count", periods[i].PeriodNumber)
				}
			}
			if last := periods[len(periods)-1]; last.PeriodEndDate != terms.EndDate {
				t.Errorf("last period ends %v, expected credit end %v", last.PeriodEndDate, terms.EndDate)
			}
		})
	}
}

func TestGeneratePaymentDayOverride(t *testing.T) {
	terms := monthlyTerms()
	terms.StartDate = datetime.MustDate("2024-01-10")
	terms.EndDate = datetime.MustDate("2024-07-10")

	periods, err := NewGenerator(nil).Generate(terms, 15)
	if err != nil {
		t.Fatalf("Generate() returned error: %v", err)
	}

	for _, p := range periods[:len(periods)-1] {
		if p.PaymentDate.Day != 15 {
			t.Errorf("period %d pays on day %d, expected 15", p.PeriodNumber, p.PaymentDate.Day)
		}
	}
}

func TestGeneratePaymentDayClampedToShortMonth(t *testing.T) {
	terms := monthlyTerms()
	terms.StartDate = datetime.MustDate("2024-01-05")
	terms.EndDate = datetime.MustDate("2024-06-05")

	periods, err := NewGenerator(nil).Generate(terms, 31)
	if err != nil {
		t.Fatalf("Generate() returned error: %v", err)
	}

	// The first period rolls into February; day 31 must clamp to the 29th.
	if periods[0].PeriodEndDate != datetime.MustDate("2024-02-29") {
		t.Errorf("first period ends %v, expected 2024-02-29", periods[0].PeriodEndDate)
	}
}

func TestGenerateInterestAmounts(t *testing.T) {
	periods, err := NewGenerator(nil).Generate(monthlyTerms(), 0)
	if err != nil {
		t.Fatalf("Generate() returned error: %v", err)
	}

	// First period: 2024-01-01 to 2024-02-29, 59 days at 18.5%.
	expected := 1000000 * 0.185 * 59.0 / 365.0
	if !mathutil.WithinTolerance(periods[0].InterestAmount, expected, constants.CurrencyTolerance) {
		t.Errorf("first period interest = %v, expected %v", periods[0].InterestAmount, expected)
	}
}

func TestGeneratePeriodCap(t *testing.T) {
	terms := monthlyTerms()
	terms.EndDate = datetime.MustDate("2060-01-01")

	periods, err := NewGenerator(nil).Generate(terms, 0)
	if err != nil {
		t.Fatalf("Generate() returned error: %v", err)
	}
	if len(periods) != 100 {
		t.Errorf("Generate() produced %d periods, expected cap at 100", len(periods))
	}
}

func TestGenerateRejectsInvalidTerms(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreditTerms)
	}{
		{"zero principal", func(c *CreditTerms) { c.PrincipalAmount = 0 }},
		{"negative principal", func(c *CreditTerms) { c.PrincipalAmount = -500 }},
		{"end equals start", func(c *CreditTerms) { c.EndDate = c.StartDate }},
		{"end before start", func(c *CreditTerms) { c.EndDate = c.StartDate.AddDays(-1) }},
		{"unsupported frequency", func(c *CreditTerms) { c.PaymentFrequency = "WEEKLY" }},
		{"unsupported payment type", func(c *CreditTerms) { c.PaymentType = "BALLOON" }},
		{"negative spread", func(c *CreditTerms) { c.CreditSpread = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terms := monthlyTerms()
			tt.mutate(&terms)

			_, err := NewGenerator(nil).Generate(terms, 0)
			if err == nil {
				t.Fatal("Generate() accepted invalid terms")
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Errorf("Generate() returned %T, expected *ValidationError", err)
			}
		})
	}
}

func TestGenerateRejectsBadPaymentDay(t *testing.T) {
	if _, err := NewGenerator(nil).Generate(monthlyTerms(), 32); err == nil {
		t.Fatal("Generate() accepted payment day 32")
	}
}

func TestTotals(t *testing.T) {
	periods, err := NewGenerator(nil).Generate(monthlyTerms(), 0)
	if err != nil {
		t.Fatalf("Generate() returned error: %v", err)
	}

	totals := Totals(periods)
	if totals.Periods != 12 {
		t.Errorf("Totals().Periods = %d, expected 12", totals.Periods)
	}

	// 366 days at 18.5% on one million, rounded at the boundary.
	expected := 1000000 * 0.185 * 366.0 / 365.0
	if !mathutil.WithinTolerance(totals.TotalInterest, expected, constants.CurrencyTolerance) {
		t.Errorf("TotalInterest = %v, expected about %v", totals.TotalInterest, expected)
	}
	if totals.TotalInterest != totals.TotalPayment {
		t.Errorf("TotalPayment %v differs from TotalInterest %v", totals.TotalPayment, totals.TotalInterest)
	}
}

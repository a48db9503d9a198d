// Package output provides utilities for formatting and displaying payment
// schedules and recalculation reports.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/finplan/credit-engine/pkg/constants"
	"github.com/finplan/credit-engine/pkg/schedule"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettySchedule writes a human-readable rather than machine-readable table
// of the credit's payment periods.
func PrettySchedule(w io.Writer, creditName string, periods []schedule.PaymentPeriod) {
	p := message.NewPrinter(language.English)
	fmt.Fprintf(w, "--- Payment schedule for %s ---\n", creditName)
	fmt.Fprintf(w, "# | Start      | End        | Days | Rate   | Interest\n")
	fmt.Fprintf(w, "_ | _____      | ___        | ____ | ____   | ________\n")
	for _, period := range periods {
		_, _ = p.Fprintf(w, "%d | %s | %s | %d | %.2f%% | %.2f\n",
			period.PeriodNumber, period.PeriodStartDate, period.PeriodEndDate,
			period.PeriodDays, period.InterestRate, period.InterestAmount)
	}
	totals := schedule.Totals(periods)
	_, _ = p.Fprintf(w, "Total interest over %d periods: %.2f\n", totals.Periods, totals.TotalInterest)
}

// CsvSchedule writes the payment periods in comma-separated value format.
func CsvSchedule(w io.Writer, periods []schedule.PaymentPeriod) {
	fmt.Fprintf(w, `"period","start","end","payment_date","days","base_rate","spread","interest_rate","interest_amount","total_payment"`)
	fmt.Fprintf(w, "\n")
	for _, period := range periods {
		fmt.Fprintf(w, `"%d","%s","%s","%s","%d","%.2f","%.2f","%.2f","%.2f","%.2f"`,
			period.PeriodNumber, period.PeriodStartDate, period.PeriodEndDate,
			period.PaymentDate, period.PeriodDays, period.BaseRate, period.Spread,
			period.InterestRate, period.InterestAmount, period.TotalPayment)
		fmt.Fprintf(w, "\n")
	}
}

// PrettyRecalculation writes a human-readable report of a recalculation run.
func PrettyRecalculation(w io.Writer, creditName string, entries []schedule.RecalcEntry, summary schedule.RecalcSummary) {
	p := message.NewPrinter(language.English)
	fmt.Fprintf(w, "--- Recalculation report for %s ---\n", creditName)
	fmt.Fprintf(w, "# | Status     | Old Rate | New Rate | Old Interest | New Interest | Difference\n")
	fmt.Fprintf(w, "_ | ______     | ________ | ________ | ____________ | ____________ | __________\n")
	for _, entry := range entries {
		if entry.Status == schedule.StatusUpdated {
			_, _ = p.Fprintf(w, "%d | %s | %.2f%% | %.2f%% | %.2f | %.2f | %.2f\n",
				entry.PeriodNumber, entry.Status, entry.OldInterestRate, entry.NewInterestRate,
				entry.OldInterestAmount, entry.NewInterestAmount, entry.Difference)
			continue
		}
		fmt.Fprintf(w, "%d | %s | skipped, original values kept\n", entry.PeriodNumber, entry.Status)
	}
	_, _ = p.Fprintf(w, "Outcome: %s (%d updated, %d skipped), interest difference %.2f\n",
		summary.Outcome(), summary.UpdatedPeriods, summary.SkippedPeriods, summary.TotalDifference)
}

// CsvRecalculation writes the per-period recalculation entries in
// comma-separated value format.
func CsvRecalculation(w io.Writer, entries []schedule.RecalcEntry) {
	fmt.Fprintf(w, `"period","status","old_rate","new_rate","old_interest","new_interest","difference"`)
	fmt.Fprintf(w, "\n")
	for _, entry := range entries {
		fmt.Fprintf(w, `"%d","%s","%.2f","%.2f","%.2f","%.2f","%.2f"`,
			entry.PeriodNumber, entry.Status, entry.OldInterestRate, entry.NewInterestRate,
			entry.OldInterestAmount, entry.NewInterestAmount, entry.Difference)
		fmt.Fprintf(w, "\n")
	}
}

// Formatter dispatches on the configured output format name.
func Formatter(format string) (func(io.Writer, string, []schedule.PaymentPeriod), error) {
	switch strings.ToLower(format) {
	case "", constants.OutputFormatPretty:
		return func(w io.Writer, name string, periods []schedule.PaymentPeriod) {
			PrettySchedule(w, name, periods)
		}, nil
	case constants.OutputFormatCSV:
		return func(w io.Writer, _ string, periods []schedule.PaymentPeriod) {
			CsvSchedule(w, periods)
		}, nil
	}
	return nil, fmt.Errorf("unsupported output format %q", format)
}

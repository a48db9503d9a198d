package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/finplan/credit-engine/pkg/schedule"
)

func TestCollectorObservations(t *testing.T) {
	c := NewCollector()

	c.ObserveGeneration(12)
	c.ObserveRecalculation([]schedule.RecalcEntry{
		{PeriodNumber: 1, Status: schedule.StatusUpdated},
		{PeriodNumber: 2, Status: schedule.StatusUpdated},
		{PeriodNumber: 3, Status: schedule.StatusNoData},
	})
	c.ObserveIngest(40)

	recorder := httptest.NewRecorder()
	c.Handler().ServeHTTP(recorder, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(recorder.Result().Body)
	if err != nil {
		t.Fatalf("failed to read metrics response: %v", err)
	}
	exposition := string(body)

	for _, want := range []string{
		"schedules_generated_total 1",
		"payment_periods_generated_total 12",
		"payment_periods_recalculated_total 2",
		`payment_periods_skipped_total{reason="no_rate_data"} 1`,
		"rate_points_ingested_total 40",
	} {
		if !strings.Contains(exposition, want) {
			t.Errorf("metrics exposition missing %q, got:\n%s", want, exposition)
		}
	}
}

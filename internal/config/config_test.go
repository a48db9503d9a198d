package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoadConfiguration(t *testing.T) {
	path := writeConfig(t, `
credits:
  - name: revolver
    principalAmount: 1000000
    startDate: 2024-01-01
    endDate: 2025-01-01
    paymentFrequency: MONTHLY
    paymentType: INTEREST_ONLY
    baseRateIndicator: KEY_RATE
    baseRateValue: 16.0
    creditSpread: 2.5
    paymentDay: 15
logging:
  level: debug
  format: console
output:
  format: csv
ingest:
  daysBack: 180
`)

	conf, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() returned error: %v", err)
	}

	if len(conf.Credits) != 1 {
		t.Fatalf("loaded %d credits, expected 1", len(conf.Credits))
	}
	c := conf.Credits[0]
	if c.Name != "revolver" || c.PrincipalAmount != 1000000 || c.PaymentDay != 15 {
		t.Errorf("credit loaded incorrectly: %+v", c)
	}
	if conf.Logging.Level != "debug" || conf.Output.Format != "csv" {
		t.Errorf("logging/output sections loaded incorrectly: %+v %+v", conf.Logging, conf.Output)
	}
	if conf.Ingest.DaysBack != 180 {
		t.Errorf("ingest daysBack = %d, expected 180", conf.Ingest.DaysBack)
	}
}

func TestLoadConfigurationMissingFile(t *testing.T) {
	if _, err := LoadConfiguration(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("LoadConfiguration() succeeded on a missing file")
	}
}

func TestValidateConfigurationWarnings(t *testing.T) {
	conf := &Configuration{}
	warnings := conf.ValidateConfiguration()
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings for empty config, expected 1", len(warnings))
	}

	conf.Credits = []CreditConfig{{Name: "bad-day", PaymentDay: 45, BaseRateValue: 16.0}}
	warnings = conf.ValidateConfiguration()
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, expected 1 for out-of-range payment day", len(warnings))
	}
}

func TestCreditConfigTerms(t *testing.T) {
	c := CreditConfig{
		Name:             "term loan",
		PrincipalAmount:  500000,
		StartDate:        "2024-03-01",
		EndDate:          "2026-03-01",
		PaymentFrequency: "QUARTERLY",
		PaymentType:      "BULLET",
		BaseRateValue:    16.0,
		CreditSpread:     3.0,
	}

	terms, err := c.Terms()
	if err != nil {
		t.Fatalf("Terms() returned error: %v", err)
	}
	if terms.BaseRateIndicator != "KEY_RATE" {
		t.Errorf("indicator defaulted to %q, expected KEY_RATE", terms.BaseRateIndicator)
	}
	if terms.TotalRate() != 19.0 {
		t.Errorf("TotalRate() = %v, expected 19.0", terms.TotalRate())
	}
	if err := terms.Validate(); err != nil {
		t.Errorf("converted terms failed validation: %v", err)
	}

	c.StartDate = "01.03.2024"
	if _, err := c.Terms(); err == nil {
		t.Error("Terms() accepted a malformed start date")
	}
}

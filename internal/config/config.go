// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"

	"github.com/finplan/credit-engine/pkg/constants"
	"github.com/finplan/credit-engine/pkg/datetime"
	"github.com/finplan/credit-engine/pkg/schedule"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for the credit engine CLIs.
type Configuration struct {
	Credits  []CreditConfig
	Database DatabaseConfig `yaml:"database,omitempty"`
	Ingest   IngestConfig   `yaml:"ingest,omitempty"`
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
	Output   OutputConfig   `yaml:"output,omitempty"`
}

// CreditConfig describes one credit obligation to schedule.
type CreditConfig struct {
	Name              string
	PrincipalAmount   float64
	StartDate         string
	EndDate           string
	PaymentFrequency  string
	PaymentType       string
	BaseRateIndicator string
	BaseRateValue     float64 // snapshot; zero means resolve from the rate store
	CreditSpread      float64
	PaymentDay        int // 1-31 pins the payment day; zero means end of month
}

// DatabaseConfig holds the rate store connection settings. An empty URL
// selects the in-memory store.
type DatabaseConfig struct {
	URL string `yaml:"url,omitempty"`
}

// IngestConfig holds rate-ingestion settings.
type IngestConfig struct {
	DaysBack       int `yaml:"daysBack,omitempty"`
	TimeoutSeconds int `yaml:"timeoutSeconds,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := viper.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// ValidateConfiguration checks the loaded config for problems that do not
// prevent startup and returns them as warnings.
func (conf *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if len(conf.Credits) == 0 {
		warnings = append(warnings, "no credits configured; nothing to schedule")
	}
	for _, c := range conf.Credits {
		if c.PaymentDay < 0 || c.PaymentDay > 31 {
			warnings = append(warnings, fmt.Sprintf("credit %q has payment day %d outside 1-31; end-of-month billing will apply", c.Name, c.PaymentDay))
		}
		if c.BaseRateValue == 0 && c.BaseRateIndicator == "" {
			warnings = append(warnings, fmt.Sprintf("credit %q has neither a snapshot rate nor an indicator", c.Name))
		}
	}
	if conf.Ingest.DaysBack < 0 {
		warnings = append(warnings, "ingest daysBack is negative; the default lookback will apply")
	}

	return warnings
}

// Terms converts a credit config entry into engine credit terms. Schedule
// generation revalidates the result; this only parses.
func (c CreditConfig) Terms() (schedule.CreditTerms, error) {
	start, err := datetime.ParseDate(c.StartDate)
	if err != nil {
		return schedule.CreditTerms{}, fmt.Errorf("credit %q: invalid start date %q: %w", c.Name, c.StartDate, err)
	}
	end, err := datetime.ParseDate(c.EndDate)
	if err != nil {
		return schedule.CreditTerms{}, fmt.Errorf("credit %q: invalid end date %q: %w", c.Name, c.EndDate, err)
	}

	indicator := c.BaseRateIndicator
	if indicator == "" {
		indicator = constants.KeyRateIndicator
	}

	return schedule.CreditTerms{
		CreditName:        c.Name,
		PrincipalAmount:   c.PrincipalAmount,
		StartDate:         start,
		EndDate:           end,
		PaymentFrequency:  schedule.PaymentFrequency(c.PaymentFrequency),
		PaymentType:       schedule.PaymentType(c.PaymentType),
		BaseRateIndicator: indicator,
		BaseRateValue:     c.BaseRateValue,
		CreditSpread:      c.CreditSpread,
	}, nil
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"cloud.google.com/go/civil"
	"github.com/finplan/credit-engine/internal/config"
	"github.com/finplan/credit-engine/internal/service"
	"github.com/finplan/credit-engine/internal/store/postgres"
	"github.com/finplan/credit-engine/pkg/constants"
	"github.com/finplan/credit-engine/pkg/output"
	"github.com/finplan/credit-engine/pkg/rateseries"
	"github.com/finplan/credit-engine/pkg/schedule"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info" // Default to info level
	}

	// Parse log level
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	// Determine output format
	format := loggingConfig.Format
	if format == "" {
		format = "json" // Default to JSON for production
	}

	// Configure encoder
	var config zap.Config
	switch format {
	case "console":
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	// Configure output file if specified
	if loggingConfig.OutputFile != "" {
		// Ensure the directory exists
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		// Test if we can create/write to the file
		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		config.OutputPaths = []string{loggingConfig.OutputFile}
		config.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return config.Build()
}

// buildStores binds each indicator used by the configured credits to a rate
// store. With a database URL the stores read the shared rate series tables;
// otherwise each indicator gets an empty in-memory store and credits fall
// back to their snapshot rates.
func buildStores(ctx context.Context, conf *config.Configuration, logger *zap.Logger) (map[string]rateseries.Store, *pgxpool.Pool, error) {
	indicators := make(map[string]struct{})
	for _, c := range conf.Credits {
		indicator := c.BaseRateIndicator
		if indicator == "" {
			indicator = constants.KeyRateIndicator
		}
		indicators[indicator] = struct{}{}
	}

	stores := make(map[string]rateseries.Store, len(indicators))
	if conf.Database.URL == "" {
		for indicator := range indicators {
			stores[indicator] = rateseries.NewMemoryStore()
		}
		return stores, nil, nil
	}

	pool, err := pgxpool.Connect(ctx, conf.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}
	for indicator := range indicators {
		stores[indicator] = postgres.NewRateStore(pool, indicator, logger)
	}
	return stores, pool, nil
}

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	recalcDate := flag.String("recalculate", "", "recalculate schedules against rate history as of this date (YYYY-MM-DD)")
	flag.Parse()

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		return
	}

	// Initialize logging based on config and CLI override
	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	formatSchedule, err := output.Formatter(outputFormat)
	if err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	// Validate configuration and display any warnings
	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	var asOf civil.Date
	if *recalcDate != "" {
		asOf, err = civil.ParseDate(*recalcDate)
		if err != nil {
			logger.Fatal("invalid recalculation date",
				zap.String("op", "main"),
				zap.String("date", *recalcDate),
				zap.Error(err),
			)
		}
	}

	ctx := context.Background()
	stores, pool, err := buildStores(ctx, conf, logger)
	if err != nil {
		logger.Fatal("failed to build rate stores",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	if pool != nil {
		defer pool.Close()
	}

	engine := service.NewEngine(stores, nil, logger)

	var periodStore *postgres.PeriodStore
	if pool != nil {
		periodStore = postgres.NewPeriodStore(pool, logger)
	}

	for _, creditConf := range conf.Credits {
		terms, err := creditConf.Terms()
		if err != nil {
			logger.Fatal("failed to parse credit terms",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		if terms.BaseRateValue == 0 {
			terms.BaseRateValue = engine.ResolveBaseRate(terms.BaseRateIndicator)
		}

		// Recalculation operates on the persisted schedule when one
		// exists; only a missing schedule is generated fresh.
		var periods []schedule.PaymentPeriod
		if *recalcDate != "" && periodStore != nil {
			periods, err = periodStore.Load(ctx, terms.CreditName)
			if err != nil {
				logger.Fatal("failed to load persisted schedule",
					zap.String("op", "main"),
					zap.String("credit", terms.CreditName),
					zap.Error(err),
				)
			}
		}

		if len(periods) == 0 {
			periods, err = engine.GenerateSchedule(terms, creditConf.PaymentDay)
			if err != nil {
				logger.Fatal("failed to generate schedule",
					zap.String("op", "main"),
					zap.String("credit", terms.CreditName),
					zap.Error(err),
				)
			}
			if periodStore != nil {
				if err := periodStore.Replace(ctx, terms.CreditName, periods); err != nil {
					logger.Fatal("failed to persist schedule",
						zap.String("op", "main"),
						zap.String("credit", terms.CreditName),
						zap.Error(err),
					)
				}
			}
		}

		if *recalcDate != "" {
			updated, report, summary := engine.RecalculateSchedule(periods, terms.BaseRateIndicator, terms.CreditSpread, asOf)
			periods = updated
			output.PrettyRecalculation(os.Stdout, terms.CreditName, report, summary)
			if periodStore != nil {
				if err := periodStore.UpdateRates(ctx, terms.CreditName, periods); err != nil {
					logger.Fatal("failed to persist recalculated rates",
						zap.String("op", "main"),
						zap.String("credit", terms.CreditName),
						zap.Error(err),
					)
				}
			}
		}

		formatSchedule(os.Stdout, terms.CreditName, periods)
		if len(conf.Credits) > 1 {
			fmt.Printf("\n")
		}
	}
}

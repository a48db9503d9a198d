// Command rate-ingest pulls the official key rate history from the central
// bank and upserts it into the shared rate store.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/finplan/credit-engine/internal/config"
	"github.com/finplan/credit-engine/internal/ingest"
	"github.com/finplan/credit-engine/internal/store/postgres"
	"github.com/finplan/credit-engine/pkg/constants"
	"github.com/finplan/credit-engine/pkg/metrics"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"
)

const defaultTimeout = 60 * time.Second

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	daysBack := flag.Int("days-back", 0, "lookback window override in days")
	flag.Parse()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		return
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	if conf.Database.URL == "" {
		logger.Fatal("ingestion requires a database URL; an in-memory store would be lost on exit",
			zap.String("op", "main"),
		)
	}

	timeout := defaultTimeout
	if conf.Ingest.TimeoutSeconds > 0 {
		timeout = time.Duration(conf.Ingest.TimeoutSeconds) * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	pool, err := pgxpool.Connect(ctx, conf.Database.URL)
	if err != nil {
		logger.Fatal("failed to connect to database",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	defer pool.Close()

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal("failed to ensure schema",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	lookback := conf.Ingest.DaysBack
	if *daysBack > 0 {
		lookback = *daysBack
	}

	store := postgres.NewRateStore(pool, constants.KeyRateIndicator, logger)
	ingestor := ingest.NewIngestor(ingest.NewClient(logger), store, logger)
	collector := metrics.NewCollector()

	count, err := ingestor.Refresh(ctx, lookback)
	if err != nil {
		logger.Fatal("rate ingestion failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	collector.ObserveIngest(count)

	logger.Info("rate ingestion complete",
		zap.String("op", "main"),
		zap.Int("pointsUpserted", count),
	)
}

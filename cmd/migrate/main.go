package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"kgv/internal/migration"
	"kgv/internal/platform/config"
	"kgv/internal/platform/httpserver"
	"kgv/internal/platform/logger"
	"kgv/internal/platform/metrics"
	"kgv/internal/platform/postgres"
	"kgv/internal/platform/redis"
	"kgv/internal/records/store"
	"kgv/migrations"
)

// main runs the one-shot legacy data migration: schema migrations first, then
// the staged legacy rows into the target schema inside one transaction.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("target database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db, migrations.FS); err != nil {
		log.Error("schema migration failed", "error", err)
		os.Exit(1)
	}

	srcDB, err := migration.OpenSource(ctx, cfg.LegacyDatabaseURL)
	if err != nil {
		log.Error("legacy staging database unavailable", "error", err)
		os.Exit(1)
	}
	defer srcDB.Close()

	rdb, err := redis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	m := metrics.New()
	// Scrapeable while the run is in flight; best effort, the summary log is
	// the authoritative record.
	metricsSrv := httpserver.New(cfg.MetricsAddr, m.Handler())
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("metrics listener stopped", "error", err)
		}
	}()
	defer metricsSrv.Close()

	runner := migration.NewRunner(
		store.NewUnitOfWork(db, log, "migration"),
		migration.NewSource(srcDB),
		log,
		migration.NewMetrics(m.Registry()),
		migration.NewCheckpoint(rdb),
		cfg.MigrationBatchSize,
	)

	summary, err := runner.Run(ctx)
	if err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migration complete",
		"started", summary.StartedAt,
		"finished", summary.FinishedAt,
		"counts", summary.Counts)
}

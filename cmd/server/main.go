package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"kgv/internal/platform/config"
	"kgv/internal/platform/httpserver"
	"kgv/internal/platform/logger"
	"kgv/internal/platform/metrics"
	"kgv/internal/platform/postgres"
	"kgv/internal/records/handler"
	"kgv/internal/records/store"
	"kgv/migrations"
)

// main wires the records read API: config, database, schema migrations,
// router, and the metrics listener. Business behavior lives in internal
// packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db, migrations.FS); err != nil {
		log.Error("schema migration failed", "error", err)
		os.Exit(1)
	}

	m := metrics.New()
	h := handler.New(func() handler.Session {
		return session{uow: store.NewUnitOfWork(db, log, "api")}
	}, log)

	srv := httpserver.New(cfg.Addr, m.Middleware(h.Router()))
	metricsSrv := httpserver.New(cfg.MetricsAddr, m.Handler())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("records api listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("metrics listening", "addr", cfg.MetricsAddr)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

// session adapts a unit of work to the handler's request-scoped view.
type session struct {
	uow *store.UnitOfWork
}

func (s session) Applications() handler.ApplicationReader { return s.uow.Applications() }
func (s session) Districts() handler.DistrictReader       { return s.uow.Districts() }
func (s session) Close() error                            { return s.uow.Close() }

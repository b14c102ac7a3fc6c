// Command server wires high-level dependencies and runs the HTTP API and
// the expiration scanner side by side. Business logic lives in the internal
// services packages.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"motorcover/internal/expiration"
	expirationmetrics "motorcover/internal/expiration/metrics"
	"motorcover/internal/fleet/store"
	memorystore "motorcover/internal/fleet/store/memory"
	postgresstore "motorcover/internal/fleet/store/postgres"
	"motorcover/internal/insurance"
	"motorcover/internal/insurance/handler"
	insurancemetrics "motorcover/internal/insurance/metrics"
	"motorcover/internal/platform/config"
	"motorcover/internal/platform/httpserver"
	"motorcover/internal/platform/logger"
	"motorcover/internal/platform/middleware"
	"motorcover/internal/platform/postgres"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogFormat)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cars, policies, claims, err := buildStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	if cfg.SeedDemoData {
		if err := store.SeedDemoFleet(ctx, cars, policies); err != nil {
			return err
		}
	}

	service, err := insurance.New(cars, policies, claims, log, insurancemetrics.New())
	if err != nil {
		return err
	}
	scanner, err := expiration.New(policies, log, expirationmetrics.New(), cfg.ScanInterval)
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Timeout(30 * time.Second))
	handler.New(service, log).Register(r)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Addr, r)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := scanner.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// buildStores selects the Postgres store when a database URL is configured
// and falls back to the in-memory store otherwise.
func buildStores(ctx context.Context, cfg config.Server, log *slog.Logger) (store.CarStore, store.PolicyStore, store.ClaimStore, error) {
	if cfg.DatabaseURL == "" {
		log.Info("using in-memory store")
		var opts []memorystore.Option
		if cfg.StrictValidation {
			opts = append(opts, memorystore.WithStrictValidation())
		}
		mem := memorystore.New(opts...)
		return mem, mem, mem, nil
	}

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, nil, nil, err
	}
	log.Info("using postgres store")
	var opts []postgresstore.Option
	if cfg.StrictValidation {
		opts = append(opts, postgresstore.WithStrictValidation())
	}
	pg := postgresstore.New(db, opts...)
	return pg, pg, pg, nil
}

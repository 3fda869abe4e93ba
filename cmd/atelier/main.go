package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atelierhq/atelier/internal/api"
	"github.com/atelierhq/atelier/internal/api/admin"
	"github.com/atelierhq/atelier/internal/api/analyze"
	"github.com/atelierhq/atelier/internal/api/design"
	"github.com/atelierhq/atelier/internal/api/enrichment"
	"github.com/atelierhq/atelier/internal/api/export"
	"github.com/atelierhq/atelier/internal/api/jobs"
	"github.com/atelierhq/atelier/internal/api/knowledge"
	"github.com/atelierhq/atelier/internal/api/templates"
	"github.com/atelierhq/atelier/internal/api/ui"
	"github.com/atelierhq/atelier/internal/api/users"
	"github.com/atelierhq/atelier/internal/api/workflows"
	"github.com/atelierhq/atelier/internal/auth"
	"github.com/atelierhq/atelier/internal/config"
	"github.com/atelierhq/atelier/internal/database"
	"github.com/atelierhq/atelier/internal/enrich"
	"github.com/atelierhq/atelier/internal/exporter"
	"github.com/atelierhq/atelier/internal/metrics"
	"github.com/atelierhq/atelier/internal/scheduler"
	"github.com/atelierhq/atelier/internal/seed"
	"github.com/atelierhq/atelier/internal/store"
	"github.com/atelierhq/atelier/internal/worker"
	"github.com/atelierhq/atelier/internal/workflow"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	if err := seed.Seed(ctx, db); err != nil {
		return fmt.Errorf("seed data: %w", err)
	}

	s := store.New(db)

	mgr := auth.New(cfg.AuthSecret, time.Duration(cfg.TokenTTLMinutes)*time.Minute)
	enricher := enrich.NewService(cfg.CacheEntries, time.Duration(cfg.CacheTTLSeconds)*time.Second)
	exportSvc := exporter.NewService(s)

	pool := worker.NewPool(s.Jobs, cfg.Workers)
	pool.Start(ctx)

	engine := workflow.NewEngine(s, enricher, exportSvc)

	sched := scheduler.New(s, engine)
	sched.Start()
	if err := sched.Refresh(ctx); err != nil {
		return fmt.Errorf("load schedules: %w", err)
	}

	mux := http.NewServeMux()

	// Platform API routes
	users.RegisterRoutes(mux, s, mgr)
	templates.RegisterRoutes(mux, s)
	design.RegisterRoutes(mux, s)
	knowledge.RegisterRoutes(mux, s, pool)
	analyze.RegisterRoutes(mux, s, pool)
	enrichment.RegisterRoutes(mux, enricher)
	export.RegisterRoutes(mux, s, exportSvc, pool)
	workflows.RegisterRoutes(mux, s, engine, sched, pool)
	jobs.RegisterRoutes(mux, s)

	// Admin API
	admin.RegisterRoutes(mux, db)

	// Web UI and metrics
	ui.RegisterRoutes(mux)
	mux.Handle("GET /metrics", metrics.Handler())

	// Catch-all: return 404 in the platform error format.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		api.WriteDetail(w, http.StatusNotFound,
			fmt.Sprintf("No route found for %s %s", r.Method, r.URL.Path))
	})

	handler := api.Chain(mux,
		api.Recovery(),
		api.RequestID(),
		api.Auth(mgr, s.Users, cfg.AuthDisabled),
		api.Logging(),
	)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		slog.Info("shutting down server")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("starting atelier server", "addr", cfg.Addr, "auth_disabled", cfg.AuthDisabled)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}

	sched.Stop()
	pool.Stop()

	return nil
}

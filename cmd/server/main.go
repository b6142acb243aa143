package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prepdeck/prepdeck/internal/corpus"
	"github.com/prepdeck/prepdeck/internal/platform/cache"
	"github.com/prepdeck/prepdeck/internal/platform/config"
	"github.com/prepdeck/prepdeck/internal/platform/database"
	"github.com/prepdeck/prepdeck/internal/server"
	"github.com/prepdeck/prepdeck/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	c, err := corpus.Load(cfg.CorpusPath)
	if err != nil {
		slog.Error("failed to load corpus", "path", cfg.CorpusPath, "error", err)
		os.Exit(1)
	}
	source := store.NewMemoryStore(c)

	srvCfg := server.Config{
		Store:           source,
		Source:          source,
		CorpusPath:      cfg.CorpusPath,
		ReloadTokenHash: cfg.Admin.ReloadTokenHash,
	}
	var healthChecks []namedCheck

	if cfg.Store.Backend == "postgres" {
		db, err := database.New(ctx, database.Options{
			URL:      cfg.Database.URL,
			MaxConns: cfg.Database.MaxConns,
			MinConns: cfg.Database.MinConns,
		})
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		pg, err := store.NewPostgresStore(ctx, db.Pool)
		if err != nil {
			slog.Error("failed to init postgres store", "error", err)
			os.Exit(1)
		}
		if err := pg.Sync(ctx, c); err != nil {
			slog.Error("failed to sync corpus to postgres", "error", err)
			os.Exit(1)
		}

		events, err := store.NewPostgresEventLogger(ctx, db.Pool)
		if err != nil {
			slog.Error("failed to init event logger", "error", err)
			os.Exit(1)
		}

		srvCfg.Store = pg
		srvCfg.Events = events
		srvCfg.Sync = pg.Sync
		healthChecks = append(healthChecks, namedCheck{"database", db.HealthCheck})
	}

	if cfg.Cache.Enabled {
		rc, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			slog.Error("failed to connect to cache", "error", err)
			os.Exit(1)
		}
		defer rc.Close()

		cached := store.NewCachedStore(srvCfg.Store, rc.Client, time.Duration(cfg.Cache.TTLSeconds)*time.Second)
		srvCfg.Store = cached
		srvCfg.Invalidate = cached.Invalidate
		healthChecks = append(healthChecks, namedCheck{"cache", rc.HealthCheck})
	}

	srv := server.New(srvCfg)
	for _, hc := range healthChecks {
		srv.AddHealthCheck(hc.name, hc.check)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      srv.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr, "backend", cfg.Store.Backend)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

type namedCheck struct {
	name  string
	check func(ctx context.Context) error
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

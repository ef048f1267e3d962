package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ayonpaul8906/skillbite-engine/internal/platform/cache"
	"github.com/ayonpaul8906/skillbite-engine/internal/platform/config"
	"github.com/ayonpaul8906/skillbite-engine/internal/platform/database"
	"github.com/ayonpaul8906/skillbite-engine/internal/recommend"
	"github.com/ayonpaul8906/skillbite-engine/internal/syncstore"
	"github.com/ayonpaul8906/skillbite-engine/internal/tracker"
	"github.com/ayonpaul8906/skillbite-engine/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogging(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Store: postgres when configured, in-memory otherwise.
	var (
		store    syncstore.CourseStore
		importer syncstore.CourseImporter
		ready    func(context.Context) error
	)
	if cfg.Database.URL != "" {
		db, err := database.New(ctx, cfg.Database)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		pg, err := syncstore.NewPostgresStore(ctx, db.Pool)
		if err != nil {
			slog.Error("failed to init learning-path store", "error", err)
			os.Exit(1)
		}
		store, importer, ready = pg, pg, db.HealthCheck
		slog.Info("using postgres store")
	} else {
		mem := syncstore.NewMemoryStore()
		store, importer = mem, mem
		slog.Info("using in-memory store")
	}

	// Progress hints are optional.
	var hints syncstore.ProgressHints = syncstore.NopHints{}
	if cfg.Cache.URL != "" {
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			slog.Warn("cache unavailable, progress hints disabled", "error", err)
		} else {
			defer c.Close()
			hints = syncstore.NewRedisHints(c.Client, 0)
			slog.Info("progress hints enabled")
		}
	}

	engine, err := tracker.NewEngine(tracker.Config{
		Store:          store,
		Hints:          hints,
		SampleInterval: time.Duration(cfg.Player.SampleIntervalMS) * time.Millisecond,
		Threshold:      cfg.Player.Threshold,
	})
	if err != nil {
		slog.Error("failed to create engine", "error", err)
		os.Exit(1)
	}
	defer engine.Close()

	var catalog *recommend.Catalog
	if cfg.CatalogPath != "" {
		catalog, err = recommend.NewCatalog(cfg.CatalogPath)
		if err != nil {
			slog.Error("failed to load seed catalog", "error", err)
			os.Exit(1)
		}
	}

	srv, err := web.NewServer(web.Config{
		Engine:        engine,
		Importer:      importer,
		Catalog:       catalog,
		AuthTokenHash: cfg.Auth.TokenHash,
		Ready:         ready,
	})
	if err != nil {
		slog.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	httpSrv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      srv.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
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

func setupLogging(lc config.LogConfig) {
	level := slog.LevelInfo
	switch strings.ToLower(lc.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if lc.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

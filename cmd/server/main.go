package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dev-zuma/places-sub000/internal/config"
	"github.com/dev-zuma/places-sub000/internal/content"
	"github.com/dev-zuma/places-sub000/internal/database"
	"github.com/dev-zuma/places-sub000/internal/genai"
	"github.com/dev-zuma/places-sub000/internal/generator"
	"github.com/dev-zuma/places-sub000/internal/images"
	"github.com/dev-zuma/places-sub000/internal/migrations"
	"github.com/dev-zuma/places-sub000/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	sqlStore := server.NewSQLiteStore(db)

	if err := server.SeedAdmin(ctx, logger, sqlStore, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return fmt.Errorf("seeding admin account: %w", err)
	}

	// --- Generation pipeline ---
	textClient := genai.NewClient(cfg.GenAIBaseURL, cfg.GenAIAPIKey, cfg.GenAITextModel)
	imageClient := genai.NewImageClient(cfg.GenAIBaseURL, cfg.GenAIAPIKey, cfg.GenAIImageModel)
	adapter := content.NewAdapter(textClient)

	if err := os.MkdirAll(cfg.ImageDir, 0o755); err != nil {
		return fmt.Errorf("creating image dir: %w", err)
	}
	storage := images.NewFSStorage(cfg.ImageDir, "/images")
	pipeline := images.NewPipeline(imageClient, storage)

	broker := server.NewBroker()
	store := server.NewProgressStore(sqlStore, broker)
	orch := generator.New(store, adapter, pipeline, logger)

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, server.Deps{
		Logger:     logger,
		Store:      store,
		Admin:      sqlStore,
		Orch:       orch,
		Themes:     adapter,
		Broker:     broker,
		DB:         db,
		SPADir:     cfg.SPADir,
		ImageDir:   cfg.ImageDir,
		BatchDelay: cfg.BatchDelay,
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

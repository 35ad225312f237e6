package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/market-news-desk/internal/app"
	"github.com/samvad-hq/market-news-desk/internal/config"
	"github.com/samvad-hq/market-news-desk/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server start failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("server starting", "config", map[string]any{
		"env":            cfg.Env,
		"http_addr":      cfg.HTTPAddr,
		"providers_file": cfg.ProvidersFile,
		"sort_mode":      cfg.SortMode,
		"enrich_images":  cfg.EnrichImages,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := app.NewServer(cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize server", "error", err.Error())
		return err
	}

	return srv.Run(ctx)
}

// Command seed loads a catalog JSON file into the configured store and exits.
//
// Run: go run ./cmd/seed -file catalog.json
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/utafrali/storefront/internal/app"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/seed"
	"github.com/utafrali/storefront/pkg/logger"
)

func main() {
	file := flag.String("file", "catalog.json", "catalog JSON file")
	flag.Parse()

	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logger.New(cfg.ServiceName+"-seed", cfg.LogLevel)

	if cfg.StoreDriver == config.StoreMemory {
		log.Error("seeding the in-memory store has no effect; use the server -seed flag instead")
		os.Exit(1)
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Error("failed to open seed file", slog.String("file", *file), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer f.Close()

	catalog, err := seed.Decode(f)
	if err != nil {
		log.Error("invalid seed file", slog.String("error", err.Error()))
		os.Exit(1)
	}

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	_, seedErr := seed.Apply(ctx, application.Catalog(), catalog, log)
	if err := application.Shutdown(); err != nil {
		log.Warn("shutdown error", slog.String("error", err.Error()))
	}
	if seedErr != nil {
		log.Error("failed to seed catalog", slog.String("error", seedErr.Error()))
		os.Exit(1)
	}
}

// Command seed loads interviews from a YAML file into the configured storage.
//
//	go run ./cmd/seed -file seed/interviews.yaml
//
// It reads the same configuration as the server (CONFIG_FILE, .env,
// environment).
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/sakif/interview-coach/internal/config"
	"github.com/sakif/interview-coach/internal/repository/store"
	"github.com/sakif/interview-coach/internal/seed"
)

func main() {
	path := flag.String("file", "seed/interviews.yaml", "YAML file with interviews to load")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	if err := run(cfg, *path, logger); err != nil {
		logger.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg config.Config, path string, logger *slog.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	interviews, err := seed.Load(f)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	st, err := store.Open(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := seed.Apply(ctx, st.Interviews, interviews)
	if err != nil {
		return err
	}
	logger.Info("seed complete",
		slog.String("file", path),
		slog.String("storage", cfg.Storage.Driver),
		slog.Int("created", stats.Created),
		slog.Int("skipped", stats.Skipped),
	)
	return nil
}

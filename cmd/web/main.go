// Command web serves the troop logistics dashboard API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"trooplogistics/internal/app"
	"trooplogistics/internal/config"
	"trooplogistics/internal/infrastructure"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "web: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a YAML config file (defaults to $TROOP_CONFIG or config.yaml)")
	flag.Parse()

	// A missing .env file is normal outside development.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	paths, err := config.GetPaths()
	if err != nil {
		return err
	}
	if cfg.Vocabulary.File == "" && config.FileExists(paths.VocabularyFile) {
		cfg.Vocabulary.File = paths.VocabularyFile
	}
	if cfg.Logging.Output != "stdout" {
		if err := paths.EnsureDirectories(); err != nil {
			return err
		}
		cfg.Logging.FilePath = paths.Resolve(cfg.Logging.FilePath)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer infrastructure.CloseLogFile()
	paths.LogPathResolution(logger)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("Application initialization failed", slog.String("error", err.Error()))
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return application.Run(ctx)
}

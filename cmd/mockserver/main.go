package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/foodctl/foodctl/internal/logger"
	"github.com/foodctl/foodctl/internal/mockapi"
)

var version = "dev" // Will be set during build with -ldflags

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := mockapi.LoadConfig(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.GetLogger()

	db, err := mockapi.OpenDatabase(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}

	// Create server
	srv, err := mockapi.New(cfg, db, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create server")
	}
	defer func() {
		if err := srv.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database")
		}
	}()

	log.Info().Str("version", version).Msg("Starting food delivery mock server...")

	// Start HTTP server (this blocks until interrupted)
	if err := srv.Start(ctx); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
		stop()
		os.Exit(1)
	}
}

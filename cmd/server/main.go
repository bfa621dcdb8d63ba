// Package main runs the WealthWatch HTTP API and the dashboard refresher.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"wealthwatch/pkg/app"
	"wealthwatch/pkg/config"
	"wealthwatch/pkg/logger"
	"wealthwatch/services/api"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Config{Pretty: true}).Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting WealthWatch")

	ctx := context.Background()
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize")
	}
	defer a.Close()

	if err := a.Dashboard.Start(cfg.RefreshSchedule); err != nil {
		log.Fatal().Err(err).Msg("Failed to start dashboard refresher")
	}

	apiCfg := api.Config{
		Port:      cfg.Port,
		Log:       log,
		Quotes:    a.Quotes,
		Ledger:    a.Ledger,
		Dashboard: a.Dashboard,
		DevMode:   cfg.LogPretty,
	}
	if a.Sync != nil {
		apiCfg.Sync = a.Sync
	}
	if a.Recorder != nil {
		apiCfg.Recorded = a.Recorder
	}
	srv := api.New(apiCfg)

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

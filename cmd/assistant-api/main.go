// Package main provides the assistant API server entrypoint.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dropedev/MeuAssistente/internal/app"
	"github.com/dropedev/MeuAssistente/internal/config"
	"github.com/dropedev/MeuAssistente/internal/observability"
)

func main() {
	// Load configuration
	cfgPath := os.Getenv("CONFIG_PATH")
	if len(os.Args) > 2 && os.Args[1] == "--config" {
		cfgPath = os.Args[2]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
	})

	logger.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("catalog", cfg.Catalog.Driver).
		Str("cache", cfg.Cache.Driver).
		Str("model", cfg.LLM.Model).
		Msg("Starting assistant API")

	ctx := context.Background()
	application, err := app.Build(ctx, cfg, logger, nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize assistant")
	}
	defer application.Close()

	logger.Info().
		Int("products", application.Stats.Products).
		Int("policy_chunks", application.Stats.PolicyChunks).
		Int("orders", len(application.Data.Orders)).
		Dur("index_duration", application.Stats.Duration).
		Msg("Catalog indexed")

	router := NewRouter(logger, DefaultAppConfig(), application.Assistant, application.Store)

	addr := cfg.Addr()
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("HTTP server listening")
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt or error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	sig, err := awaitStop(serverErrors, shutdown)
	if err != nil {
		application.Close()
		logger.Fatal().Err(err).Str("addr", addr).Msg("Server error")
	}
	if sig != nil {
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
		if err := srv.Close(); err != nil {
			logger.Error().Err(err).Msg("Forced shutdown failed")
		}
	}

	logger.Info().Msg("Server stopped")
}

// awaitStop blocks until the listener exits or a signal arrives. A listener
// failure other than http.ErrServerClosed is returned as an error.
func awaitStop(serverErrors <-chan error, signals <-chan os.Signal) (os.Signal, error) {
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return nil, err
		}
		return nil, nil
	case sig := <-signals:
		return sig, nil
	}
}

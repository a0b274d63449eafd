// PlaqueMS - Carotid Plaque Proteomics Analytics and Prediction
// Copyright 2026 Nikolaos Samperis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NikolaosSamperis/plaquems

// Package main is the entry point for the PlaqueMS prediction server.
//
// PlaqueMS serves calcification classification and syntax score regression
// for carotid plaque proteomics. Clinicians upload abundance tables
// (CSV, TSV or XLSX) or select a stored cohort by clinical filters; the
// server reconciles the measured proteins against each model's panel and
// runs the fitted scikit-learn artifacts exported as JSON.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: environment variables and optional config.yaml (Koanf v2)
//  2. Model artifacts: fitted estimator store rooted at MODELS_DIR
//  3. Cohort source: embedded DuckDB or a remote cypher endpoint (GRAPH_MODE)
//  4. HTTP API: chi router with rate limiting, CORS and Prometheus metrics
//  5. Supervisor tree: suture-managed HTTP server and cache refresh service
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (SERVER_PORT, MODELS_DIR, GRAPH_MODE, ...)
//   - Config file (config.yaml)
//   - Built-in defaults
//
// # Cohort Source Modes
//
// Batch predictions need a cohort store. Two modes are supported:
//
//   - GRAPH_MODE=embedded (default): local DuckDB file at DATABASE_PATH.
//     SEED_MOCK_DATA=true populates it with a synthetic 40-subject cohort
//     for demos and CI.
//   - GRAPH_MODE=http: a remote Neo4j transactional cypher endpoint at
//     GRAPH_URL, guarded by a circuit breaker and a client-side rate limit.
//
// Upload predictions work in either mode and never touch the cohort store.
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (10s timeout)
//   - Closes the cohort source
//
// # Example Usage
//
// Embedded mode with the bundled demo cohort:
//
//	export MODELS_DIR=./artifacts
//	export SEED_MOCK_DATA=true
//	./plaquems
//
// Against a remote graph:
//
//	export MODELS_DIR=/data/artifacts
//	export GRAPH_MODE=http
//	export GRAPH_URL=http://neo4j:7474
//	export GRAPH_USERNAME=neo4j
//	export GRAPH_PASSWORD=secret
//	./plaquems
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/NikolaosSamperis/plaquems/internal/api"
	"github.com/NikolaosSamperis/plaquems/internal/artifact"
	"github.com/NikolaosSamperis/plaquems/internal/config"
	"github.com/NikolaosSamperis/plaquems/internal/database"
	"github.com/NikolaosSamperis/plaquems/internal/graph"
	"github.com/NikolaosSamperis/plaquems/internal/logging"
	"github.com/NikolaosSamperis/plaquems/internal/metrics"
	"github.com/NikolaosSamperis/plaquems/internal/supervisor"
	"github.com/NikolaosSamperis/plaquems/internal/supervisor/services"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Str("version", version).Msg("Starting PlaqueMS")
	logging.Info().
		Str("models_dir", cfg.Models.Dir).
		Str("graph_mode", cfg.Graph.Mode).
		Str("environment", cfg.Server.Environment).
		Msg("Configuration loaded")

	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
	startTime := time.Now()

	// Model artifact store. Artifacts load lazily per model key, so a
	// missing directory only surfaces on the first prediction request.
	store := artifact.NewStore(cfg.Models.Dir)

	// Select the cohort source for batch predictions
	source, err := newGraphSource(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize cohort source")
	}
	defer func() {
		if err := source.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing cohort source")
		}
	}()

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog compatibility
	slogLogger := logging.NewSlogLogger()

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	handler := api.NewHandler(store, source, cfg, version)
	router := api.NewRouter(handler, api.NewChiMiddleware(&api.ChiMiddlewareConfig{
		CORSAllowedOrigins: cfg.Security.CORSOrigins,
		RateLimitRequests:  cfg.Security.RateLimitReqs,
		RateLimitWindow:    cfg.Security.RateLimitWindow,
		RateLimitDisabled:  cfg.Security.RateLimitDisabled,
	}))

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (RATE_LIMIT_DISABLED=true)")
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Warm the filter-values cache on the cache TTL so batch clients
	// rarely pay the cohort round trip
	tree.AddDataService(services.NewRefreshService("filters", warmFunc(handler.WarmFilters), cfg.Cache.FiltersTTL))

	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Track uptime for the /metrics endpoint
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.AppUptime.Set(time.Since(startTime).Seconds())
			case <-ctx.Done():
				return
			}
		}
	}()

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}

// newGraphSource builds the cohort source selected by graph.mode.
func newGraphSource(cfg *config.Config) (graph.Source, error) {
	switch cfg.Graph.Mode {
	case "embedded":
		db, err := database.New(&cfg.Database)
		if err != nil {
			return nil, err
		}
		if cfg.Database.SeedMockData {
			logging.Info().Msg("Mock cohort seeding enabled (SEED_MOCK_DATA=true)")
			if err := db.SeedMockData(context.Background()); err != nil {
				if closeErr := db.Close(); closeErr != nil {
					logging.Error().Err(closeErr).Msg("Error closing database")
				}
				return nil, fmt.Errorf("seed mock cohort: %w", err)
			}
		}
		logging.Info().Str("path", cfg.Database.Path).Msg("Embedded cohort store initialized")
		return db, nil

	case "http":
		src := graph.NewHTTPSource(&cfg.Graph)
		// A failing ping is not fatal; the circuit breaker retries
		if err := src.Ping(context.Background()); err != nil {
			logging.Warn().Err(err).Str("url", cfg.Graph.URL).Msg("Cohort graph unreachable (will retry)")
		} else {
			logging.Info().Str("url", cfg.Graph.URL).Msg("Connected to cohort graph")
		}
		return src, nil

	default:
		return nil, fmt.Errorf("unknown graph mode %q", cfg.Graph.Mode)
	}
}

// warmFunc adapts a function to the services.Refresher interface.
type warmFunc func(ctx context.Context) error

func (f warmFunc) Refresh(ctx context.Context) error { return f(ctx) }

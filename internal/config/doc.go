// PlaqueMS - Carotid Plaque Proteomics Analytics and Prediction
// Copyright 2026 Nikolaos Samperis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NikolaosSamperis/plaquems

/*
Package config provides centralized configuration management for PlaqueMS.

This package handles loading, validation, and parsing of configuration for
all application components. It ensures consistent configuration across the
backend services and provides sensible defaults for optional settings.

# Configuration Sources

Configuration is loaded in three layers via Koanf v2, later layers winning:

 1. Built-in struct defaults
 2. Optional YAML config file (config.yaml, or CONFIG_PATH)
 3. Environment variables

# Environment Variables

HTTP Server:
  - HTTP_HOST: Bind address (default: 0.0.0.0)
  - HTTP_PORT: Listen port (default: 3857)
  - HTTP_TIMEOUT: Request timeout (default: 30s)
  - ENVIRONMENT: development or production

Model Artifacts:
  - MODELS_DIR: Artifact root, one subdirectory per model key (default: /data/models)
  - MAX_UPLOAD_BYTES: Multipart upload cap (default: 32MB)

Graph Source:
  - GRAPH_MODE: embedded or http (default: embedded)
  - GRAPH_URL: Remote cypher endpoint base URL (http mode)
  - GRAPH_DATABASE: Remote database name (default: neo4j)
  - GRAPH_USERNAME / GRAPH_PASSWORD: Basic auth credentials
  - GRAPH_TIMEOUT: Per-request timeout (default: 15s)
  - GRAPH_RATE_LIMIT_RPS / GRAPH_RATE_LIMIT_BURST: Outbound rate limit

Database (embedded mode):
  - DUCKDB_PATH: Database file path (default: /data/plaquems.duckdb)
  - DUCKDB_MAX_MEMORY: Memory limit (default: 2GB)
  - DUCKDB_THREADS: Thread count (default: CPU count)
  - SEED_MOCK_DATA: Seed a small demo cohort on startup (default: false)

Security:
  - RATE_LIMIT_REQUESTS / RATE_LIMIT_WINDOW / DISABLE_RATE_LIMIT
  - CORS_ORIGINS: Comma-separated allowed origins (default: *)
  - TRUSTED_PROXIES: Comma-separated trusted proxy IPs

Caching:
  - FILTERS_CACHE_TTL: TTL for the cohort filter-values cache (default: 5m)

Logging:
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json or console (default: json)
  - LOG_CALLER: Include caller file:line (default: false)

# Usage Example

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    log.Fatalf("Failed to load config: %v", err)
	}
	fmt.Printf("Starting server on %s:%d\n", cfg.Server.Host, cfg.Server.Port)

# Thread Safety

The Config struct is immutable after LoadWithKoanf() returns, making it safe
for concurrent access from multiple goroutines without synchronization.
*/
package config

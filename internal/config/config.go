// PlaqueMS - Carotid Plaque Proteomics Analytics and Prediction
// Copyright 2026 Nikolaos Samperis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NikolaosSamperis/plaquems

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration loaded from environment
// variables and config files.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting via environment variables
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Models   ModelsConfig   `koanf:"models"`
	Graph    GraphConfig    `koanf:"graph"`
	Database DatabaseConfig `koanf:"database"`
	Security SecurityConfig `koanf:"security"`
	Cache    CacheConfig    `koanf:"cache"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// ModelsConfig locates the fitted model artifacts.
type ModelsConfig struct {
	// Dir is the artifact root, one subdirectory per model key.
	Dir string `koanf:"dir"`
	// MaxUploadBytes caps multipart sample uploads.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`
}

// GraphConfig selects and configures the cohort data source for batch
// predictions.
type GraphConfig struct {
	// Mode is "embedded" (local DuckDB) or "http" (remote cypher endpoint).
	Mode string `koanf:"mode"`

	// Remote cypher endpoint settings, used when Mode is "http".
	URL            string        `koanf:"url"`
	Database       string        `koanf:"database"`
	Username       string        `koanf:"username"`
	Password       string        `koanf:"password"`
	Timeout        time.Duration `koanf:"timeout"`
	RateLimitRPS   float64       `koanf:"rate_limit_rps"`
	RateLimitBurst int           `koanf:"rate_limit_burst"`
}

// DatabaseConfig holds DuckDB settings for the embedded graph source.
type DatabaseConfig struct {
	Path                   string `koanf:"path"`
	MaxMemory              string `koanf:"max_memory"`
	Threads                int    `koanf:"threads"`
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"`
	SeedMockData           bool   `koanf:"seed_mock_data"`
}

// SecurityConfig holds rate limiting and CORS settings.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	TrustedProxies    []string      `koanf:"trusted_proxies"`
}

// CacheConfig holds TTLs for derived-data caches.
type CacheConfig struct {
	FiltersTTL time.Duration `koanf:"filters_ttl"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks configuration consistency after all layers are applied.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range 1-65535", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	if c.Models.Dir == "" {
		return fmt.Errorf("models.dir must be set")
	}
	if c.Models.MaxUploadBytes <= 0 {
		return fmt.Errorf("models.max_upload_bytes must be positive, got %d", c.Models.MaxUploadBytes)
	}

	switch c.Graph.Mode {
	case "embedded":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path must be set in embedded graph mode")
		}
	case "http":
		if c.Graph.URL == "" {
			return fmt.Errorf("graph.url must be set in http graph mode")
		}
		if c.Graph.Timeout <= 0 {
			return fmt.Errorf("graph.timeout must be positive, got %s", c.Graph.Timeout)
		}
		if c.Graph.RateLimitRPS <= 0 {
			return fmt.Errorf("graph.rate_limit_rps must be positive, got %v", c.Graph.RateLimitRPS)
		}
	default:
		return fmt.Errorf("graph.mode must be %q or %q, got %q", "embedded", "http", c.Graph.Mode)
	}

	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs <= 0 {
			return fmt.Errorf("security.rate_limit_reqs must be positive, got %d", c.Security.RateLimitReqs)
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("security.rate_limit_window must be positive, got %s", c.Security.RateLimitWindow)
		}
	}
	if c.Cache.FiltersTTL < 0 {
		return fmt.Errorf("cache.filters_ttl must not be negative, got %s", c.Cache.FiltersTTL)
	}

	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not a known level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be %q or %q, got %q", "json", "console", c.Logging.Format)
	}
	return nil
}

// PlaqueMS - Carotid Plaque Proteomics Analytics and Prediction
// Copyright 2026 Nikolaos Samperis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NikolaosSamperis/plaquems

package api

import (
	"time"

	"github.com/NikolaosSamperis/plaquems/internal/artifact"
	"github.com/NikolaosSamperis/plaquems/internal/cache"
	"github.com/NikolaosSamperis/plaquems/internal/config"
	"github.com/NikolaosSamperis/plaquems/internal/graph"
)

// Handler contains dependencies for API handlers
//
// Handler methods are split across multiple files:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_predict.go: Upload and batch prediction endpoints
//   - handlers_meta.go: Model catalog, filter values and health endpoints
type Handler struct {
	store     *artifact.Store
	source    graph.Source
	config    *config.Config
	cache     *cache.Cache
	version   string
	startTime time.Time
}

// NewHandler creates a new API handler with all required dependencies.
//
// Dependencies:
//   - store: Lazy-loading model artifact store
//   - source: Cohort data source (remote cypher endpoint or embedded DuckDB)
//   - cfg: Application configuration
//
// The filter-values cache TTL comes from cfg.Cache.FiltersTTL.
func NewHandler(store *artifact.Store, source graph.Source, cfg *config.Config, version string) *Handler {
	return &Handler{
		store:     store,
		source:    source,
		config:    cfg,
		cache:     cache.New(cfg.Cache.FiltersTTL),
		version:   version,
		startTime: time.Now(),
	}
}

// ClearCache invalidates all cached filter values. Called after cohort data
// changes; the next request repopulates from the source.
func (h *Handler) ClearCache() {
	if h.cache != nil {
		h.cache.Clear()
	}
}

// PlaqueMS - Carotid Plaque Proteomics Analytics and Prediction
// Copyright 2026 Nikolaos Samperis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NikolaosSamperis/plaquems

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/NikolaosSamperis/plaquems/internal/artifact"
	"github.com/NikolaosSamperis/plaquems/internal/metrics"
	"github.com/NikolaosSamperis/plaquems/internal/models"
)

const filtersCacheKey = "api:filters:v1"

// Models handles GET /api/v1/models: the classifier catalog including the
// panel each model requires.
func (h *Handler) Models(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, artifact.Models())
}

// Filters handles GET /api/v1/filters: the distinct clinical values
// available for cohort filtering, cached with a configurable TTL.
func (h *Handler) Filters(w http.ResponseWriter, r *http.Request) {
	if cached, ok := h.cache.Get(filtersCacheKey); ok {
		metrics.CacheHits.WithLabelValues("filters").Inc()
		writeJSON(w, http.StatusOK, cached)
		return
	}
	metrics.CacheMisses.WithLabelValues("filters").Inc()

	values, err := h.source.FilterValues(r.Context())
	if err != nil {
		h.respondSourceError(w, err)
		return
	}

	h.cache.Set(filtersCacheKey, values)
	writeJSON(w, http.StatusOK, values)
}

// Health handles GET /api/v1/health. The cohort source is probed with a
// short timeout; a failing probe degrades the status but still returns 200
// so load balancers keep the instance for upload-only traffic.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{"graph_source": "ok"}
	status := "ok"
	if err := h.source.Ping(ctx); err != nil {
		checks["graph_source"] = "unavailable"
		status = "degraded"
	}

	writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:    status,
		Version:   h.version,
		Timestamp: time.Now().UTC(),
		Checks:    checks,
	})
}

// HealthLive handles GET /api/v1/health/live: process liveness only.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
	})
}

// HealthReady handles GET /api/v1/health/ready: readiness requires the
// cohort source to answer.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.source.Ping(ctx); err != nil {
		respondError(w, http.StatusServiceUnavailable, "cohort data source unavailable")
		return
	}
	writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
	})
}

// WarmFilters rebuilds the filter-values cache entry from the cohort
// source. The supervisor's refresh service calls this on a schedule so the
// entry is replaced before its TTL expires.
func (h *Handler) WarmFilters(ctx context.Context) error {
	values, err := h.source.FilterValues(ctx)
	if err != nil {
		return err
	}
	h.cache.Set(filtersCacheKey, values)
	return nil
}

// PlaqueMS - Carotid Plaque Proteomics Analytics and Prediction
// Copyright 2026 Nikolaos Samperis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NikolaosSamperis/plaquems

// Package api provides HTTP routing using Chi router.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/NikolaosSamperis/plaquems/internal/middleware"
)

// Router wires handlers and middleware into the chi route tree.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router from a handler and its middleware set.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: mw}
}

// SetupChi configures all HTTP routes using Chi router.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	// Applied to ALL routes in order
	r.Use(RequestIDWithLogging())      // Add X-Request-ID header with logging context
	r.Use(chimiddleware.RealIP)        // Extract real IP from X-Forwarded-For
	r.Use(chimiddleware.Recoverer)     // Recover from panics
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight

	// ========================
	// Health Endpoints
	// ========================
	// Permissive rate limiting (1000/min) so monitoring can poll frequently
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
		r.Get("/", router.handler.Health)
	})

	// ========================
	// Prediction Endpoints
	// ========================
	r.Route("/api/v1/predict", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		r.Post("/calcification/upload", router.handler.PredictCalcificationUpload)
		r.Post("/calcification/batch", router.handler.PredictCalcificationBatch)
		r.Post("/syntax/upload", router.handler.PredictSyntaxUpload)
		r.Post("/syntax/batch", router.handler.PredictSyntaxBatch)
	})

	// ========================
	// Catalog and Cohort Metadata
	// ========================
	// Read-only cached endpoints, compressed for dashboard use
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(chiMiddleware(middleware.Compression))

		r.Get("/models", router.handler.Models)
		r.Get("/filters", router.handler.Filters)
	})

	// ========================
	// Prometheus Metrics
	// ========================
	r.With(router.chiMiddleware.RateLimitHealth()).
		Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}

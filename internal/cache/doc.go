// PlaqueMS - Carotid Plaque Proteomics Analytics and Prediction
// Copyright 2026 Nikolaos Samperis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NikolaosSamperis/plaquems

/*
Package cache provides thread-safe in-memory caching with TTL support.

This package implements a simple but effective caching layer for API responses,
reducing graph-store load and improving response times for frequently accessed
data such as cohort filter values.

# Overview

The cache provides:
  - Thread-safe concurrent access (sync.RWMutex)
  - Time-to-live (TTL) expiration for automatic cleanup
  - Simple key-value storage with any value type (interface{})
  - Lazy expiration checking (on Get operations)
  - Zero external dependencies (stdlib only)

# Use Cases

Primary use cases:
  - Cohort filter values (configurable TTL, default 5 minutes)
  - Model catalog responses (stable between deployments)
  - Subject metadata for repeated batch requests

# Cache Structure

The cache stores items with metadata:

	type Item struct {
	    Value      interface{}  // Cached value (any type)
	    Expiration int64        // Unix timestamp for expiration
	}

# Usage Example

Basic caching:

	import "github.com/NikolaosSamperis/plaquems/internal/cache"

	// Create cache with 5-minute default TTL
	c := cache.New(5 * time.Minute)

	// Store value
	c.Set("filters:all", values)

	// Retrieve value
	if value, ok := c.Get("filters:all"); ok {
	    values := value.(graph.FilterValues)
	    // Use cached values
	}

	// Delete specific key
	c.Delete("filters:all")

	// Clear entire cache
	c.Clear()

API handler caching pattern:

	func (h *Handler) GetFilters(w http.ResponseWriter, r *http.Request) {
	    cacheKey := "api:filters:v1"

	    // Check cache
	    if cached, ok := h.cache.Get(cacheKey); ok {
	        h.writeJSON(w, http.StatusOK, cached)
	        return
	    }

	    // Cache miss - fetch from the graph store
	    values, err := h.source.FilterValues(r.Context())
	    if err != nil {
	        h.writeError(w, http.StatusBadGateway, "GRAPH_ERROR", err.Error())
	        return
	    }

	    // Store in cache
	    h.cache.Set(cacheKey, values)

	    // Return response
	    h.writeJSON(w, http.StatusOK, values)
	}

# Cache Invalidation

The cache supports two invalidation strategies:

1. TTL-based expiration (automatic):
  - Items expire after the configured TTL
  - Checked lazily during Get operations
  - No background cleanup goroutine needed

2. Manual invalidation (on data changes):
  - Clear() removes all cache entries
  - Delete(key) removes specific entry

Example: Invalidate all cached filter values after a data refresh

	func (s *Service) onRefreshCompleted() {
	    s.cache.Clear()
	}

# Cache Key Conventions

Use consistent key prefixes for organization:

	api:filters:v1                       // Cohort filter values
	api:models:v1                        // Model catalog
	meta:subjects=...                    // Subject metadata by cohort

# Thread Safety

All cache methods are thread-safe using sync.RWMutex:

  - Get: Acquires read lock (concurrent reads allowed)
  - Set: Acquires write lock (exclusive access)
  - Delete: Acquires write lock (exclusive access)
  - Clear: Acquires write lock (exclusive access)

Multiple goroutines can safely access the cache concurrently.

# Limitations

The current implementation has intentional limitations for simplicity:

  - No maximum cache size limit (grows unbounded)
  - No LRU eviction policy (only TTL-based)
  - No background cleanup (lazy expiration)
  - No cache persistence (in-memory only)
  - No distributed caching (single instance)

These limitations are acceptable for the application's scale: cohorts are
small, responses are a few kilobytes, and deployments run a single instance.

# Testing

Run tests with race detector:

	go test -race ./internal/cache

# See Also

  - internal/api: API handlers that use caching
  - internal/graph: Data source cached by this package
*/
package cache

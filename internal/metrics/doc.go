// PlaqueMS - Carotid Plaque Proteomics Analytics and Prediction
// Copyright 2026 Nikolaos Samperis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NikolaosSamperis/plaquems

/*
Package metrics provides Prometheus metrics collection and export for observability.

This package instruments the prediction service using the Prometheus client
library, exposing metrics for monitoring performance, errors, and system health.

# Overview

The package provides metrics for:
  - HTTP request latency and throughput
  - Table upload outcomes and subject counts
  - Per-subject prediction pipeline outcomes and missingness
  - Model artifact loading
  - Graph source and DuckDB query performance
  - Cache hit/miss rates
  - Circuit breaker state transitions

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:3857/metrics

# Naming

All collectors are registered with promauto at package init, so importing the
package is enough to make them visible to the default registry. Label
cardinality is deliberately small: model keys, outcome tiers, and endpoint
patterns, never subject identifiers or file names.
*/
package metrics

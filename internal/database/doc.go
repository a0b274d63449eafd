// PlaqueMS - Carotid Plaque Proteomics Analytics and Prediction
// Copyright 2026 Nikolaos Samperis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NikolaosSamperis/plaquems

/*
Package database provides the embedded DuckDB cohort store.

It is the "embedded" graph mode counterpart to the remote cypher endpoint in
internal/graph: both implement graph.Source, and batch prediction handlers
are wired to whichever the configuration selects.

# Overview

The store holds the clinical cohort and its proteomics measurements:

  - subjects and their clinical annotations (conditions, outcomes,
    medications)
  - protein abundances per subject, plaque compartment and protein symbol

Cohort selection translates a graph.Filter into a parameterized WHERE
clause; named age, BMI and pack-year groups expand to half-open interval
conditions. Abundance batches are panel-restricted so a request only moves
the proteins its model needs.

# Connection Management

DuckDB runs in-process against a single database file. The connection
string carries thread count, memory cap and insertion-order tuning from
DatabaseConfig, and the pool is sized to the CPU count.

# Mock Data

SeedMockData populates an empty store with a deterministic synthetic cohort
covering every catalog model panel. It is gated behind the
database.seed_mock_data configuration flag and intended for demos and
screenshots only.
*/
package database

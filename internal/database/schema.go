// PlaqueMS - Carotid Plaque Proteomics Analytics and Prediction
// Copyright 2026 Nikolaos Samperis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NikolaosSamperis/plaquems

/*
schema.go - Database Schema Management

Tables:
  - subjects: Clinical metadata per cohort subject (sex, age, BMI, smoking,
    symptoms, histology, ultrasound, calcification)
  - subject_conditions / subject_outcomes / subject_medications: Multi-valued
    clinical annotations, one row per subject and value
  - abundances: Protein abundance measurements keyed by subject, plaque
    compartment and protein symbol

Schema Strategy:
All columns are defined in the initial CREATE TABLE statements. The store is
rebuilt from the source proteomics export on deployment, so there is no
migration machinery.

Index Strategy:
Indexes cover the filter columns used by cohort selection and the
(compartment, protein) access path used by abundance batches.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	queries := getTableCreationQueries()
	queries = append(queries, getIndexCreationQueries()...)

	for _, query := range queries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

// getTableCreationQueries returns the table creation SQL statements
func getTableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS subjects (
			id TEXT PRIMARY KEY,
			sex TEXT,
			age DOUBLE,
			bmi DOUBLE,
			smoker_status TEXT,
			pack_years DOUBLE,
			symptoms TEXT,
			histology TEXT,
			ultrasound TEXT,
			calcification TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS subject_conditions (
			subject_id TEXT NOT NULL,
			condition TEXT NOT NULL,
			PRIMARY KEY (subject_id, condition)
		)`,
		`CREATE TABLE IF NOT EXISTS subject_outcomes (
			subject_id TEXT NOT NULL,
			outcome TEXT NOT NULL,
			PRIMARY KEY (subject_id, outcome)
		)`,
		`CREATE TABLE IF NOT EXISTS subject_medications (
			subject_id TEXT NOT NULL,
			medication TEXT NOT NULL,
			PRIMARY KEY (subject_id, medication)
		)`,
		`CREATE TABLE IF NOT EXISTS abundances (
			subject_id TEXT NOT NULL,
			compartment TEXT NOT NULL,
			protein TEXT NOT NULL,
			abundance DOUBLE NOT NULL,
			PRIMARY KEY (subject_id, compartment, protein)
		)`,
	}
}

// getIndexCreationQueries returns the index creation SQL statements
func getIndexCreationQueries() []string {
	return []string{
		`CREATE INDEX IF NOT EXISTS idx_subjects_sex ON subjects(sex)`,
		`CREATE INDEX IF NOT EXISTS idx_subjects_age ON subjects(age)`,
		`CREATE INDEX IF NOT EXISTS idx_subjects_histology ON subjects(histology)`,
		`CREATE INDEX IF NOT EXISTS idx_abundances_lookup ON abundances(compartment, protein)`,
	}
}

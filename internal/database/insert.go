// PlaqueMS - Carotid Plaque Proteomics Analytics and Prediction
// Copyright 2026 Nikolaos Samperis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NikolaosSamperis/plaquems

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/NikolaosSamperis/plaquems/internal/graph"
	"github.com/NikolaosSamperis/plaquems/internal/metrics"
)

// InsertSubject stores a subject and its multi-valued clinical annotations.
// Re-inserting an existing id replaces the metadata row and appends any new
// annotations.
func (db *DB) InsertSubject(ctx context.Context, s graph.Subject, conditions, outcomes, medications []string) error {
	start := time.Now()
	err := db.insertSubject(ctx, s, conditions, outcomes, medications)
	metrics.RecordDBQuery("insert_subject", "subjects", time.Since(start), err)
	return err
}

func (db *DB) insertSubject(ctx context.Context, s graph.Subject, conditions, outcomes, medications []string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const upsert = `INSERT OR REPLACE INTO subjects
		(id, sex, age, bmi, smoker_status, pack_years, symptoms, histology, ultrasound, calcification)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, upsert,
		s.ID, s.Sex, s.Age, s.BMI, s.SmokerStatus, s.PackYears,
		s.Symptoms, s.Histology, s.Ultrasound, s.Calcification); err != nil {
		return fmt.Errorf("failed to insert subject %s: %w", s.ID, err)
	}

	annotations := []struct {
		query  string
		values []string
	}{
		{`INSERT OR IGNORE INTO subject_conditions (subject_id, condition) VALUES (?, ?)`, conditions},
		{`INSERT OR IGNORE INTO subject_outcomes (subject_id, outcome) VALUES (?, ?)`, outcomes},
		{`INSERT OR IGNORE INTO subject_medications (subject_id, medication) VALUES (?, ?)`, medications},
	}
	for _, a := range annotations {
		for _, v := range a.values {
			if _, err := tx.ExecContext(ctx, a.query, s.ID, v); err != nil {
				return fmt.Errorf("failed to annotate subject %s: %w", s.ID, err)
			}
		}
	}

	return tx.Commit()
}

// InsertAbundances stores one compartment's measurements for a subject.
// Zero means not measured by convention, so zero values are skipped rather
// than stored.
func (db *DB) InsertAbundances(ctx context.Context, subjectID, compartment string, byProtein map[string]float64) error {
	start := time.Now()
	err := db.insertAbundances(ctx, subjectID, compartment, byProtein)
	metrics.RecordDBQuery("insert_abundances", "abundances", time.Since(start), err)
	return err
}

func (db *DB) insertAbundances(ctx context.Context, subjectID, compartment string, byProtein map[string]float64) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const upsert = `INSERT OR REPLACE INTO abundances (subject_id, compartment, protein, abundance) VALUES (?, ?, ?, ?)`
	for protein, abundance := range byProtein {
		if abundance == 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx, upsert, subjectID, compartment, protein, abundance); err != nil {
			return fmt.Errorf("failed to insert abundance %s/%s: %w", subjectID, protein, err)
		}
	}

	return tx.Commit()
}

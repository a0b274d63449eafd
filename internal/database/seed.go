// PlaqueMS - Carotid Plaque Proteomics Analytics and Prediction
// Copyright 2026 Nikolaos Samperis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NikolaosSamperis/plaquems

package database

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"github.com/NikolaosSamperis/plaquems/internal/artifact"
	"github.com/NikolaosSamperis/plaquems/internal/graph"
	"github.com/NikolaosSamperis/plaquems/internal/logging"
)

// SeedMockData populates the store with a synthetic cohort for demo and
// screenshot purposes. Seeding is deterministic so repeated runs produce the
// same cohort, and it is skipped when subjects already exist.
func (db *DB) SeedMockData(ctx context.Context) error {
	var count int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM subjects`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count subjects: %w", err)
	}
	if count > 0 {
		logging.Debug().Int("subjects", count).Msg("Cohort store already populated, skipping mock seed")
		return nil
	}

	logging.Info().Msg("Seeding cohort store with mock data...")

	const numSubjects = 40
	rng := rand.New(rand.NewSource(42))

	sexes := []string{"male", "female"}
	smokers := []string{"never", "former", "current"}
	symptoms := []string{"asymptomatic", "symptomatic"}
	histologies := []string{"fibrous", "calcified", "atheromatous", "hemorrhagic"}
	ultrasounds := []string{"echolucent", "echogenic", "mixed"}
	calcifications := []string{"calcified", "non-calcified"}
	conditions := []string{"diabetes", "hypertension", "hyperlipidemia", "coronary artery disease"}
	outcomes := []string{"stroke", "TIA", "none"}
	medications := []string{"statin", "aspirin", "clopidogrel", "ACE inhibitor"}

	panel := seedPanel()

	for i := 0; i < numSubjects; i++ {
		subject := graph.Subject{
			ID:            fmt.Sprintf("PL-%03d", i+1),
			Sex:           sexes[rng.Intn(len(sexes))],
			Age:           40 + rng.Float64()*45,
			BMI:           18 + rng.Float64()*17,
			SmokerStatus:  smokers[rng.Intn(len(smokers))],
			PackYears:     rng.Float64() * 45,
			Symptoms:      symptoms[rng.Intn(len(symptoms))],
			Histology:     histologies[rng.Intn(len(histologies))],
			Ultrasound:    ultrasounds[rng.Intn(len(ultrasounds))],
			Calcification: calcifications[rng.Intn(len(calcifications))],
		}
		if subject.SmokerStatus == "never" {
			subject.PackYears = 0
		}

		if err := db.InsertSubject(ctx, subject,
			pick(rng, conditions, rng.Intn(3)),
			pick(rng, outcomes, 1),
			pick(rng, medications, rng.Intn(3)),
		); err != nil {
			return err
		}

		// Core detects most of the panel, periphery a sparser subset.
		core := mockAbundances(rng, panel, 0.9)
		periphery := mockAbundances(rng, panel, 0.5)
		if err := db.InsertAbundances(ctx, subject.ID, graph.CompartmentCore, core); err != nil {
			return err
		}
		if err := db.InsertAbundances(ctx, subject.ID, graph.CompartmentPeriphery, periphery); err != nil {
			return err
		}
	}

	logging.Info().Int("subjects", numSubjects).Int("proteins", len(panel)).Msg("Mock cohort seeded")
	return nil
}

// seedPanel is the union of all catalog model panels plus the syntax panel.
func seedPanel() []string {
	seen := make(map[string]struct{})
	for _, m := range artifact.Models() {
		for _, p := range m.Panel {
			seen[p] = struct{}{}
		}
	}
	for _, p := range artifact.SyntaxPanel {
		seen[p] = struct{}{}
	}
	panel := make([]string, 0, len(seen))
	for p := range seen {
		panel = append(panel, p)
	}
	sort.Strings(panel)
	return panel
}

// mockAbundances draws log2-scale abundances for a fraction of the panel.
func mockAbundances(rng *rand.Rand, panel []string, detectRate float64) map[string]float64 {
	out := make(map[string]float64, len(panel))
	for _, p := range panel {
		if rng.Float64() > detectRate {
			continue
		}
		out[p] = 22 + rng.NormFloat64()*3
	}
	return out
}

// pick samples n distinct values from pool.
func pick(rng *rand.Rand, pool []string, n int) []string {
	if n >= len(pool) {
		n = len(pool)
	}
	idx := rng.Perm(len(pool))[:n]
	out := make([]string, 0, n)
	for _, i := range idx {
		out = append(out, pool[i])
	}
	return out
}

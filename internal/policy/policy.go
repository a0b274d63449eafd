// PlaqueMS - Carotid Plaque Proteomics Analytics and Prediction
// Copyright 2026 Nikolaos Samperis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NikolaosSamperis/plaquems

// Package policy applies the missing-data decision tiers to feature
// vectors. The thresholds are fixed by the trained models' validation and
// must not drift: identical (vector, panel) input always produces the
// identical decision.
package policy

import "math"

// Decision is the per-subject outcome of the missing-data check.
type Decision string

const (
	// Pass: at most 25% of the panel is missing; the subject proceeds
	// silently.
	Pass Decision = "pass"

	// Warn: more than 25% and up to 50% missing; the subject proceeds but
	// is flagged for the caller.
	Warn Decision = "warn"

	// Skip: more than 50% missing; the subject is excluded from
	// prediction.
	Skip Decision = "skip"
)

const (
	warnThreshold = 0.25
	skipThreshold = 0.50
)

// Evaluate computes the fraction of missing panel entries in a feature
// vector and the resulting decision. NaN and exact zero both count as
// missing (zero abundance is a non-detection).
func Evaluate(vec []float64) (float64, Decision) {
	if len(vec) == 0 {
		return 0, Pass
	}
	missing := 0
	for _, v := range vec {
		if math.IsNaN(v) || v == 0 {
			missing++
		}
	}
	frac := float64(missing) / float64(len(vec))
	switch {
	case frac > skipThreshold:
		return frac, Skip
	case frac > warnThreshold:
		return frac, Warn
	default:
		return frac, Pass
	}
}

// PlaqueMS - Carotid Plaque Proteomics Analytics and Prediction
// Copyright 2026 Nikolaos Samperis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NikolaosSamperis/plaquems

package policy

import (
	"math"
	"testing"
)

var nan = math.NaN()

func TestEvaluate_Tiers(t *testing.T) {
	// An 8-protein panel puts the tier boundaries on exact fractions:
	// 2/8 = 25% pass, 3/8 warn, 4/8 = 50% warn, 5/8 skip.
	tests := []struct {
		name     string
		vec      []float64
		wantFrac float64
		want     Decision
	}{
		{
			name:     "complete vector passes",
			vec:      []float64{1, 2, 3, 4, 5, 6, 7, 8},
			wantFrac: 0.0,
			want:     Pass,
		},
		{
			name:     "exactly 25 percent passes",
			vec:      []float64{nan, nan, 3, 4, 5, 6, 7, 8},
			wantFrac: 0.25,
			want:     Pass,
		},
		{
			name:     "just over 25 percent warns",
			vec:      []float64{nan, nan, nan, 4, 5, 6, 7, 8},
			wantFrac: 0.375,
			want:     Warn,
		},
		{
			name:     "exactly 50 percent warns",
			vec:      []float64{nan, nan, nan, nan, 5, 6, 7, 8},
			wantFrac: 0.5,
			want:     Warn,
		},
		{
			name:     "over 50 percent skips",
			vec:      []float64{nan, nan, nan, nan, nan, 6, 7, 8},
			wantFrac: 0.625,
			want:     Skip,
		},
		{
			name:     "all missing skips",
			vec:      []float64{nan, nan, nan, nan, nan, nan, nan, nan},
			wantFrac: 1.0,
			want:     Skip,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frac, dec := Evaluate(tt.vec)
			if frac != tt.wantFrac {
				t.Errorf("missing fraction = %v, want %v", frac, tt.wantFrac)
			}
			if dec != tt.want {
				t.Errorf("decision = %q, want %q", dec, tt.want)
			}
		})
	}
}

func TestEvaluate_ZeroEqualsMissing(t *testing.T) {
	// A zero abundance and a NaN must be indistinguishable to the policy.
	withNaN := []float64{nan, nan, nan, 4, 5, 6, 7, 8}
	withZero := []float64{0, 0, 0, 4, 5, 6, 7, 8}

	fracN, decN := Evaluate(withNaN)
	fracZ, decZ := Evaluate(withZero)

	if fracN != fracZ {
		t.Errorf("fractions differ: NaN=%v zero=%v", fracN, fracZ)
	}
	if decN != decZ {
		t.Errorf("decisions differ: NaN=%q zero=%q", decN, decZ)
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	vec := []float64{nan, 0, 3, 4, 5}
	f1, d1 := Evaluate(vec)
	f2, d2 := Evaluate(vec)
	if f1 != f2 || d1 != d2 {
		t.Errorf("repeated evaluation diverged: (%v,%q) vs (%v,%q)", f1, d1, f2, d2)
	}
}

func TestEvaluate_Empty(t *testing.T) {
	frac, dec := Evaluate(nil)
	if frac != 0 || dec != Pass {
		t.Errorf("empty vector = (%v,%q), want (0,pass)", frac, dec)
	}
}

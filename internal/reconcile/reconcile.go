// PlaqueMS - Carotid Plaque Proteomics Analytics and Prediction
// Copyright 2026 Nikolaos Samperis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NikolaosSamperis/plaquems

// Package reconcile builds fixed-order feature matrices from normalized
// tables or graph-source abundance maps.
//
// A protein abundance of exactly zero is a non-detection, not a
// measurement; it is treated as missing everywhere in this package. This
// domain convention deliberately widens "missing" beyond a NaN-only check.
package reconcile

import (
	"errors"
	"math"

	"github.com/NikolaosSamperis/plaquems/internal/ingest"
)

// ErrNonPositiveLog2 rejects a log2 request over data containing
// non-positive abundances. The transform is all-or-nothing for the whole
// request, never per subject.
var ErrNonPositiveLog2 = errors.New("log2 transform needs all abundances > 0")

// Matrix holds one feature vector per subject, columns aligned 1:1 with the
// panel order the target model expects.
type Matrix struct {
	Subjects []string
	Panel    []string

	// X is subject-major: X[i][j] is Subjects[i]'s value for Panel[j].
	// NaN marks a missing or zero (non-detected) abundance.
	X [][]float64
}

// FromTable reindexes a normalized table to the panel. Long tables yield a
// single subject; Wide tables yield one vector per column. Panel proteins
// absent from the table are NaN.
func FromTable(t *ingest.Table, panel []string) *Matrix {
	m := &Matrix{
		Subjects: append([]string(nil), t.Subjects...),
		Panel:    append([]string(nil), panel...),
		X:        make([][]float64, len(t.Subjects)),
	}
	for i := range m.X {
		m.X[i] = make([]float64, len(panel))
	}
	for j, p := range panel {
		row, ok := t.Row(p)
		for i := range m.Subjects {
			v := math.NaN()
			if ok {
				v = missingToNaN(row[i])
			}
			m.X[i][j] = v
		}
	}
	return m
}

// FromCompartments builds one subject's vector from the two tissue draws.
// The core compartment is authoritative; a panel protein that is absent or
// non-detected in core falls back to the periphery value when that value is
// itself present and non-zero. Calcification markers are frequently
// detectable in only one compartment.
func FromCompartments(core, periphery map[string]float64, panel []string) []float64 {
	vec := make([]float64, len(panel))
	for j, p := range panel {
		if v, ok := core[p]; ok && detected(v) {
			vec[j] = v
			continue
		}
		if v, ok := periphery[p]; ok && detected(v) {
			vec[j] = v
			continue
		}
		vec[j] = math.NaN()
	}
	return vec
}

// ApplyLog2 transforms every observed value in place. Any non-positive
// observed value anywhere in the matrix fails the whole request.
func (m *Matrix) ApplyLog2() error {
	for _, row := range m.X {
		for _, v := range row {
			if !math.IsNaN(v) && v <= 0 {
				return ErrNonPositiveLog2
			}
		}
	}
	for _, row := range m.X {
		for j, v := range row {
			if !math.IsNaN(v) {
				row[j] = math.Log2(v)
			}
		}
	}
	return nil
}

// Rows returns the surviving subset of the matrix, preserving order.
func (m *Matrix) Rows(keep []int) *Matrix {
	out := &Matrix{Panel: m.Panel}
	for _, i := range keep {
		out.Subjects = append(out.Subjects, m.Subjects[i])
		out.X = append(out.X, m.X[i])
	}
	return out
}

func detected(v float64) bool { return !math.IsNaN(v) && v != 0 }

func missingToNaN(v float64) float64 {
	if v == 0 {
		return math.NaN()
	}
	return v
}

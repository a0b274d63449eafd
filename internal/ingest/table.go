// PlaqueMS - Carotid Plaque Proteomics Analytics and Prediction
// Copyright 2026 Nikolaos Samperis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NikolaosSamperis/plaquems

package ingest

// Layout identifies the detected table orientation.
type Layout string

const (
	// Long is a two-column (Protein, Abundance) table for a single subject.
	Long Layout = "long"

	// Wide is a proteins-by-subjects matrix.
	Wide Layout = "wide"
)

// Table is the normalized result of ingestion. Protein identifiers are
// canonical (see Canonicalize); every cell is a finite float or NaN.
//
// For Long tables Subjects holds the single synthetic subject identifier.
// Proteins preserves input row order and may contain duplicates; lookups
// resolve to the first occurrence, matching the upload's visual order.
type Table struct {
	Layout   Layout
	Proteins []string
	Subjects []string

	// Values is row-major: Values[i][j] is the abundance of Proteins[i]
	// for Subjects[j].
	Values [][]float64
}

// Row returns the abundance row for the first occurrence of the canonical
// protein id, or false if the protein is not present.
func (t *Table) Row(protein string) ([]float64, bool) {
	for i, p := range t.Proteins {
		if p == protein {
			return t.Values[i], true
		}
	}
	return nil, false
}

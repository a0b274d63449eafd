// PlaqueMS - Carotid Plaque Proteomics Analytics and Prediction
// Copyright 2026 Nikolaos Samperis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NikolaosSamperis/plaquems

// Package ingest parses uploaded protein-abundance tables of unknown layout
// and numeric locale into a normalized form.
//
// Uploads arrive as CSV, TSV or XLSX in one of two shapes: a two-column
// (Protein, Abundance) table for a single subject, or a proteins-by-subjects
// matrix with protein identifiers in the first column. Neither orientation
// nor header presence is trusted; a detection cascade decides the layout.
package ingest

import "strings"

// Canonicalize converts a protein identifier to its canonical form: UTF-8
// BOM removed, surrounding whitespace and quotes stripped, uppercase.
// All protein lookups across the pipeline use this form. The function is
// idempotent.
func Canonicalize(s string) string {
	s = strings.ReplaceAll(s, "\uFEFF", "")
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	return strings.ToUpper(s)
}

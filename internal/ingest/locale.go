// PlaqueMS - Carotid Plaque Proteomics Analytics and Prediction
// Copyright 2026 Nikolaos Samperis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NikolaosSamperis/plaquems

package ingest

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Spreadsheet exports carry no dtype information, so numeric formatting has
// to be sniffed from the text itself. Two conventions are recognized:
//
//	American: comma-grouped thousands, dot decimal  -> 1,234.56
//	European: dot-grouped thousands, comma decimal  -> 1.234,56
//
// A column is classified by sampling its first localeSampleSize non-blank
// values; only a unanimous match triggers a rewrite. Anything else is left
// for best-effort float parsing.
var (
	reAmerican = regexp.MustCompile(`^\d{1,3}(?:,\d{3})*(?:\.\d+)?$`)
	reEuropean = regexp.MustCompile(`^\d+(?:\.\d{3})*(?:,\d+)?$`)
)

const localeSampleSize = 50

// cleanNumericColumn rewrites locale-formatted numbers in a column to plain
// decimal notation. Blank cells are preserved untouched.
func cleanNumericColumn(values []string) []string {
	sampled := 0
	allAmerican, allEuropean := true, true
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if !reAmerican.MatchString(v) {
			allAmerican = false
		}
		if !reEuropean.MatchString(v) {
			allEuropean = false
		}
		sampled++
		if sampled == localeSampleSize || (!allAmerican && !allEuropean) {
			break
		}
	}
	if sampled == 0 || (!allAmerican && !allEuropean) {
		return values
	}

	out := make([]string, len(values))
	for i, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			out[i] = v
			continue
		}
		if allAmerican {
			out[i] = strings.ReplaceAll(v, ",", "")
			continue
		}
		// European: drop grouping dots and spaces, comma becomes decimal dot.
		v = strings.ReplaceAll(v, ".", "")
		v = strings.ReplaceAll(v, " ", "")
		out[i] = strings.ReplaceAll(v, ",", ".")
	}
	return out
}

// parseCell converts one cell to a float. Blank and whitespace-only cells
// are explicit missing values, never zero.
func parseCell(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

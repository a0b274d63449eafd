// PlaqueMS - Carotid Plaque Proteomics Analytics and Prediction
// Copyright 2026 Nikolaos Samperis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NikolaosSamperis/plaquems

package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupported is returned when the upload cannot be interpreted as either
// a two-column (Protein, Abundance) table or a proteins-by-subjects matrix.
var ErrUnsupported = errors.New(
	"unsupported file format or structure: expected a two-column (Protein, Abundance) table " +
		"or a proteins-by-subjects matrix with protein names in the first column")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Read parses an uploaded file into a normalized Table. The filename is used
// only as a format hint: .xlsx/.xls select the spreadsheet reader, .csv and
// .tsv/.txt fix the separator, anything else infers the separator from the
// first non-blank line.
func Read(data []byte, filename string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xls":
		rows, err := readSpreadsheet(data)
		if err != nil {
			return nil, err
		}
		return normalize(rows, true)
	case ".csv":
		return readDelimited(data, ',')
	case ".tsv", ".txt":
		return readDelimited(data, '\t')
	default:
		return readDelimited(data, inferSeparator(data))
	}
}

// inferSeparator counts tabs against commas in the first non-blank line.
func inferSeparator(data []byte) rune {
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.Count(line, "\t") > strings.Count(line, ",") {
			return '\t'
		}
		return ','
	}
	return ','
}

func readSpreadsheet(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unreadable spreadsheet: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("unreadable spreadsheet: %w", err)
	}
	return rows, nil
}

// readDelimited parses CSV/TSV text. Every line first loses stray leading
// and trailing delimiter characters (a common artifact of spreadsheet
// exports); a line still containing two consecutive separators indicates
// unescaped separators in the source and is fatal.
func readDelimited(data []byte, sep rune) (*Table, error) {
	text := string(bytes.TrimPrefix(data, utf8BOM))
	double := string([]rune{sep, sep})

	var cleaned []string
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		line = strings.Trim(line, "\t,")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.Contains(line, double) {
			return nil, fmt.Errorf("invalid input at line %d: found two consecutive separators %q%q", i+1, sep, sep)
		}
		cleaned = append(cleaned, line)
	}

	r := csv.NewReader(strings.NewReader(strings.Join(cleaned, "\n")))
	r.Comma = sep
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("unreadable file: %w", err)
	}
	return normalize(rows, false)
}

// normalize runs the layout-detection cascade over a raw grid of cells and
// produces the final Table. The cascade is structural: each step either
// recognizes the grid's shape and returns, or passes an adjusted view of the
// grid to the next step. Nothing about orientation is trusted from the input.
func normalize(rows [][]string, spreadsheet bool) (*Table, error) {
	if len(rows) == 0 {
		return nil, ErrUnsupported
	}
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	if width < 2 {
		return nil, ErrUnsupported
	}
	for i, r := range rows {
		for len(r) < width {
			r = append(r, "")
		}
		rows[i] = r
	}

	// The first row stays in place even when blank so that the
	// placeholder-header step below can see it; blank body rows carry no
	// information and are discarded.
	header := rows[0]
	body := dropBlankRows(rows[1:])
	labels := header[1:]

	// Step 1: two-column table. A placeholder or numeric-looking header on
	// the sole data column means the file had no header at all; re-read
	// every row as data. A literal (Protein, Abundance) header is the same
	// shape with the header kept out of the data.
	if width == 2 {
		if anonymousLabel(labels[0]) || numericLabel(labels[0]) {
			return buildLong(append([][]string{header}, body...))
		}
		if Canonicalize(header[0]) == "PROTEIN" && Canonicalize(labels[0]) == "ABUNDANCE" {
			return buildLong(body)
		}
	}

	// Step 2: every column label is an integer. Spreadsheets with no header
	// row surface their first data row as numeric labels; re-read headerless
	// and assign synthetic subject identifiers.
	if integerLabels(labels) {
		body = append([][]string{header}, body...)
		labels = syntheticLabels(width - 1)
	} else if allAnonymous(labels) {
		// Step 3: the header row exists but is entirely blank/placeholder.
		labels = syntheticLabels(width - 1)
	}

	if len(body) == 0 {
		return nil, ErrUnsupported
	}

	// Step 4: canonicalize the protein index, drop columns with no data at
	// all, and name any remaining anonymous columns by position.
	proteins := make([]string, len(body))
	for i, r := range body {
		proteins[i] = Canonicalize(r[0])
	}

	var kept []int
	for j := 1; j < width; j++ {
		empty := true
		for _, r := range body {
			if strings.TrimSpace(r[j]) != "" {
				empty = false
				break
			}
		}
		if !empty {
			kept = append(kept, j)
		}
	}
	if len(kept) == 0 {
		return nil, ErrUnsupported
	}

	subjects := make([]string, len(kept))
	for n, j := range kept {
		label := strings.TrimSpace(labels[j-1])
		if anonymousLabel(label) {
			label = fmt.Sprintf("Subject_%d", n+1)
		}
		subjects[n] = label
	}

	values, err := convertColumns(body, kept, subjects, spreadsheet)
	if err != nil {
		return nil, err
	}

	// Step 5: more than one distinct protein means a matrix; otherwise the
	// table is a single-subject listing and only the first data column is
	// meaningful.
	distinct := make(map[string]struct{}, len(proteins))
	for _, p := range proteins {
		distinct[p] = struct{}{}
	}
	if len(distinct) > 1 {
		return &Table{Layout: Wide, Proteins: proteins, Subjects: subjects, Values: values}, nil
	}

	single := make([][]float64, len(proteins))
	for i := range values {
		single[i] = values[i][:1]
	}
	return &Table{Layout: Long, Proteins: proteins, Subjects: []string{"Subject_1"}, Values: single}, nil
}

// buildLong interprets dataRows as (Protein, Abundance) pairs for a single
// subject.
func buildLong(dataRows [][]string) (*Table, error) {
	proteins := make([]string, 0, len(dataRows))
	values := make([][]float64, 0, len(dataRows))
	for _, r := range dataRows {
		v, ok := parseCell(r[1])
		if !ok {
			return nil, fmt.Errorf("columns [Abundance] could not be converted to numbers")
		}
		proteins = append(proteins, Canonicalize(r[0]))
		values = append(values, []float64{v})
	}
	if len(proteins) == 0 {
		return nil, ErrUnsupported
	}
	return &Table{Layout: Long, Proteins: proteins, Subjects: []string{"Subject_1"}, Values: values}, nil
}

// convertColumns coerces the kept data columns to floats, with locale-aware
// cleaning for spreadsheet input. Failure is fatal and names every offending
// column.
func convertColumns(body [][]string, kept []int, subjects []string, spreadsheet bool) ([][]float64, error) {
	values := make([][]float64, len(body))
	for i := range values {
		values[i] = make([]float64, len(kept))
	}

	var bad []string
	for n, j := range kept {
		col := make([]string, len(body))
		for i, r := range body {
			col[i] = r[j]
		}
		if spreadsheet {
			col = cleanNumericColumn(col)
		}
		ok := true
		for i, cell := range col {
			v, parsed := parseCell(cell)
			if !parsed {
				ok = false
				break
			}
			values[i][n] = v
		}
		if !ok {
			bad = append(bad, subjects[n])
		}
	}
	if len(bad) > 0 {
		return nil, fmt.Errorf("columns %v could not be converted to numbers", bad)
	}
	return values, nil
}

func dropBlankRows(rows [][]string) [][]string {
	out := rows[:0]
	for _, r := range rows {
		blank := true
		for _, c := range r {
			if strings.TrimSpace(c) != "" {
				blank = false
				break
			}
		}
		if !blank {
			out = append(out, r)
		}
	}
	return out
}

func anonymousLabel(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.HasPrefix(s, "Unnamed")
}

func numericLabel(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}

func integerLabels(labels []string) bool {
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			return false
		}
		if _, err := strconv.Atoi(l); err != nil {
			return false
		}
	}
	return len(labels) > 0
}

func syntheticLabels(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = strconv.Itoa(i + 1)
	}
	return out
}

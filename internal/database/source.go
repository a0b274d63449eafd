// PlaqueMS - Carotid Plaque Proteomics Analytics and Prediction
// Copyright 2026 Nikolaos Samperis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NikolaosSamperis/plaquems

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/NikolaosSamperis/plaquems/internal/graph"
	"github.com/NikolaosSamperis/plaquems/internal/metrics"
)

var _ graph.Source = (*DB)(nil)

// SubjectIDs selects the cohort matching the filter, ordered by subject id.
func (db *DB) SubjectIDs(ctx context.Context, f graph.Filter) ([]string, error) {
	query, args := buildSubjectQuery(f)

	rows, err := db.queryRows(ctx, "subject_ids", "subjects", query, args...)
	if err != nil {
		return nil, err
	}
	defer closeQuietly(rows)

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: subject_ids: %v", graph.ErrUnavailable, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: subject_ids: %v", graph.ErrUnavailable, err)
	}
	return ids, nil
}

// AbundanceBatch fetches one compartment's measurements for the given
// subjects, restricted to the panel proteins. Subjects and proteins with no
// measurement are absent from the result.
func (db *DB) AbundanceBatch(ctx context.Context, compartment string, subjectIDs, panel []string) (map[string]map[string]float64, error) {
	out := make(map[string]map[string]float64, len(subjectIDs))
	if len(subjectIDs) == 0 || len(panel) == 0 {
		return out, nil
	}

	args := []interface{}{compartment}
	query := `SELECT subject_id, protein, abundance FROM abundances WHERE compartment = ?` +
		` AND subject_id IN (` + placeholders(len(subjectIDs)) + `)` +
		` AND protein IN (` + placeholders(len(panel)) + `)`
	for _, id := range subjectIDs {
		args = append(args, id)
	}
	for _, p := range panel {
		args = append(args, p)
	}

	rows, err := db.queryRows(ctx, "abundance_batch", "abundances", query, args...)
	if err != nil {
		return nil, err
	}
	defer closeQuietly(rows)

	for rows.Next() {
		var (
			id, protein string
			abundance   float64
		)
		if err := rows.Scan(&id, &protein, &abundance); err != nil {
			return nil, fmt.Errorf("%w: abundance_batch: %v", graph.ErrUnavailable, err)
		}
		m, ok := out[id]
		if !ok {
			m = make(map[string]float64, len(panel))
			out[id] = m
		}
		m[protein] = abundance
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: abundance_batch: %v", graph.ErrUnavailable, err)
	}
	return out, nil
}

// Metadata returns the clinical metadata for the given subjects.
func (db *DB) Metadata(ctx context.Context, subjectIDs []string) (map[string]graph.Subject, error) {
	out := make(map[string]graph.Subject, len(subjectIDs))
	if len(subjectIDs) == 0 {
		return out, nil
	}

	query := `SELECT id, sex, age, bmi, smoker_status, pack_years, symptoms, histology, ultrasound, calcification` +
		` FROM subjects WHERE id IN (` + placeholders(len(subjectIDs)) + `)`
	args := make([]interface{}, 0, len(subjectIDs))
	for _, id := range subjectIDs {
		args = append(args, id)
	}

	rows, err := db.queryRows(ctx, "metadata", "subjects", query, args...)
	if err != nil {
		return nil, err
	}
	defer closeQuietly(rows)

	for rows.Next() {
		var (
			s              graph.Subject
			sex, smoker    sql.NullString
			symptoms       sql.NullString
			histology      sql.NullString
			ultrasound     sql.NullString
			calcification  sql.NullString
			age, bmi, pack sql.NullFloat64
		)
		if err := rows.Scan(&s.ID, &sex, &age, &bmi, &smoker, &pack, &symptoms, &histology, &ultrasound, &calcification); err != nil {
			return nil, fmt.Errorf("%w: metadata: %v", graph.ErrUnavailable, err)
		}
		s.Sex = sex.String
		s.Age = age.Float64
		s.BMI = bmi.Float64
		s.SmokerStatus = smoker.String
		s.PackYears = pack.Float64
		s.Symptoms = symptoms.String
		s.Histology = histology.String
		s.Ultrasound = ultrasound.String
		s.Calcification = calcification.String
		out[s.ID] = s
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: metadata: %v", graph.ErrUnavailable, err)
	}
	return out, nil
}

// FilterValues lists the distinct clinical values present in the store plus
// the derived group names for age, BMI and pack-years.
func (db *DB) FilterValues(ctx context.Context) (*graph.FilterValues, error) {
	values := &graph.FilterValues{
		AgeGroups: graph.AgeGroupNames,
		BMIRanges: graph.BMIRangeNames,
		PackYears: graph.PackYearNames,
	}

	columns := []struct {
		column string
		dest   *[]string
	}{
		{"sex", &values.Sex},
		{"symptoms", &values.Symptoms},
		{"histology", &values.Histology},
		{"ultrasound", &values.Ultrasound},
		{"calcification", &values.Calcification},
		{"smoker_status", &values.SmokerStatus},
	}

	for _, c := range columns {
		query := fmt.Sprintf(`SELECT DISTINCT %s FROM subjects WHERE %s IS NOT NULL AND %s != '' ORDER BY %s`,
			c.column, c.column, c.column, c.column)
		rows, err := db.queryRows(ctx, "filter_values", "subjects", query)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var v string
			if err := rows.Scan(&v); err != nil {
				closeQuietly(rows)
				return nil, fmt.Errorf("%w: filter_values: %v", graph.ErrUnavailable, err)
			}
			*c.dest = append(*c.dest, v)
		}
		if err := rows.Err(); err != nil {
			closeQuietly(rows)
			return nil, fmt.Errorf("%w: filter_values: %v", graph.ErrUnavailable, err)
		}
		closeQuietly(rows)
	}

	return values, nil
}

// queryRows runs a read query with metrics instrumentation. Failures are
// wrapped in graph.ErrUnavailable so callers surface them as a data source
// outage.
func (db *DB) queryRows(ctx context.Context, operation, table, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.RecordDBQuery(operation, table, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", graph.ErrUnavailable, operation, err)
	}
	return rows, nil
}

// buildSubjectQuery assembles the cohort selection SQL. Values within one
// filter field are OR-ed via IN clauses, fields are AND-ed together. Named
// range groups expand to half-open interval conditions; unknown group names
// are skipped.
func buildSubjectQuery(f graph.Filter) (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)

	addIn := func(column string, values []string) {
		if len(values) == 0 {
			return
		}
		clauses = append(clauses, fmt.Sprintf("s.%s IN (%s)", column, placeholders(len(values))))
		for _, v := range values {
			args = append(args, v)
		}
	}

	addExists := func(table, column string, values []string) {
		if len(values) == 0 {
			return
		}
		clauses = append(clauses, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM %s t WHERE t.subject_id = s.id AND t.%s IN (%s))",
			table, column, placeholders(len(values))))
		for _, v := range values {
			args = append(args, v)
		}
	}

	addRanges := func(column string, names []string, bounds func(string) (graph.Range, bool)) {
		var parts []string
		for _, name := range names {
			r, ok := bounds(name)
			if !ok {
				continue
			}
			if r.Hi < 0 {
				parts = append(parts, fmt.Sprintf("s.%s >= ?", column))
				args = append(args, r.Lo)
			} else {
				parts = append(parts, fmt.Sprintf("(s.%s >= ? AND s.%s < ?)", column, column))
				args = append(args, r.Lo, r.Hi)
			}
		}
		if len(parts) > 0 {
			clauses = append(clauses, "("+strings.Join(parts, " OR ")+")")
		}
	}

	addIn("sex", f.Sex)
	addIn("symptoms", f.Symptoms)
	addIn("histology", f.Histology)
	addIn("ultrasound", f.Ultrasound)
	addIn("calcification", f.Calcification)
	addIn("smoker_status", f.SmokerStatus)
	addExists("subject_conditions", "condition", f.Conditions)
	addExists("subject_outcomes", "outcome", f.Outcomes)
	addExists("subject_medications", "medication", f.Medications)
	addRanges("age", f.AgeGroups, graph.AgeGroupBounds)
	addRanges("bmi", f.BMIRanges, graph.BMIRangeBounds)
	addRanges("pack_years", f.PackYears, graph.PackYearBounds)

	query := "SELECT s.id FROM subjects s"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY s.id"
	return query, args
}

// placeholders returns n comma-separated ? markers.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

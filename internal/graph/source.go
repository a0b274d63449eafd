// PlaqueMS - Carotid Plaque Proteomics Analytics and Prediction
// Copyright 2026 Nikolaos Samperis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NikolaosSamperis/plaquems

// Package graph defines the cohort data source used by batch predictions:
// subject selection by clinical filters, panel-restricted abundance batches,
// and per-subject metadata. Two implementations exist, a remote cypher
// endpoint (this package) and an embedded DuckDB store (internal/database).
package graph

import (
	"context"
	"errors"
)

// Plaque compartments an abundance measurement can come from. Core is
// authoritative; periphery fills in where core did not detect a protein.
const (
	CompartmentCore      = "core"
	CompartmentPeriphery = "periphery"
)

// ErrUnavailable wraps source failures that should surface as a collaborator
// outage rather than a caller mistake.
var ErrUnavailable = errors.New("graph source unavailable")

// Subject is the clinical metadata merged into batch prediction results.
type Subject struct {
	ID            string  `json:"subject_id"`
	Sex           string  `json:"sex,omitempty"`
	Age           float64 `json:"age,omitempty"`
	BMI           float64 `json:"bmi,omitempty"`
	SmokerStatus  string  `json:"smoker_status,omitempty"`
	PackYears     float64 `json:"pack_years,omitempty"`
	Symptoms      string  `json:"symptoms,omitempty"`
	Histology     string  `json:"histology,omitempty"`
	Ultrasound    string  `json:"ultrasound,omitempty"`
	Calcification string  `json:"calcification,omitempty"`
}

// FilterValues lists the distinct values available for cohort filtering.
type FilterValues struct {
	Sex           []string `json:"sex"`
	AgeGroups     []string `json:"age_groups"`
	Symptoms      []string `json:"symptoms"`
	Histology     []string `json:"histology"`
	Ultrasound    []string `json:"ultrasound"`
	Calcification []string `json:"calcification"`
	SmokerStatus  []string `json:"smoker_status"`
	BMIRanges     []string `json:"bmi_ranges"`
	PackYears     []string `json:"pack_years"`
}

// Source resolves cohort filters against the clinical graph.
//
// AbundanceBatch returns subject -> protein -> abundance for one compartment;
// absent measurements are simply absent from the inner map.
type Source interface {
	SubjectIDs(ctx context.Context, f Filter) ([]string, error)
	AbundanceBatch(ctx context.Context, compartment string, subjectIDs, panel []string) (map[string]map[string]float64, error)
	Metadata(ctx context.Context, subjectIDs []string) (map[string]Subject, error)
	FilterValues(ctx context.Context) (*FilterValues, error)
	Ping(ctx context.Context) error
	Close() error
}

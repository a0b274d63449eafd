// PlaqueMS - Carotid Plaque Proteomics Analytics and Prediction
// Copyright 2026 Nikolaos Samperis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NikolaosSamperis/plaquems

// Package models defines the JSON wire types shared by the HTTP handlers.
package models

import (
	"time"

	"github.com/NikolaosSamperis/plaquems/internal/graph"
	"github.com/NikolaosSamperis/plaquems/internal/policy"
)

// PredictionResult is one subject's inference outcome. Classification
// results carry a class name and both class probabilities; regression
// results carry a single continuous score. The two shapes never mix.
//
// Example classification result:
//
//	{
//	  "subject_id": "PL-012",
//	  "class_name": "calcified",
//	  "probability_calcified": 0.87,
//	  "probability_noncalc": 0.13,
//	  "missing_fraction": 0.125
//	}
//
// Example regression (syntax score) result:
//
//	{
//	  "subject_id": "PL-012",
//	  "score": 14.2,
//	  "missing_fraction": 0.0
//	}
type PredictionResult struct {
	SubjectID               string         `json:"subject_id"`
	ClassName               string         `json:"class_name,omitempty"`
	ProbabilityCalcified    *float64       `json:"probability_calcified,omitempty"`
	ProbabilityNonCalcified *float64       `json:"probability_noncalc,omitempty"`
	Score                   *float64       `json:"score,omitempty"`
	MissingFraction         float64        `json:"missing_fraction"`
	Subject                 *graph.Subject `json:"subject,omitempty"`
}

// MissingnessReport flags a subject whose panel coverage crossed a
// diagnostic tier. Fully-covered subjects emit no report at all; presence
// in the warnings list is itself the warn/skip signal.
type MissingnessReport struct {
	SubjectID       string          `json:"subject_id"`
	MissingFraction float64         `json:"missing_fraction"`
	Decision        policy.Decision `json:"decision"`
}

// PredictionResponse is the 200 body for all prediction endpoints.
// Results and Warnings serialize as arrays, never null.
type PredictionResponse struct {
	Results     []PredictionResult  `json:"results"`
	Warnings    []MissingnessReport `json:"warnings"`
	Log2Applied bool                `json:"log2_applied"`
}

// ErrorResponse is the body for every non-200 outcome.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse reports service liveness and collaborator status.
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// BatchRequest is the JSON body for batch prediction endpoints: a cohort
// filter plus the model selection. Log2 mirrors the upload form flag and
// applies to the whole batch or not at all.
type BatchRequest struct {
	ModelKey string       `json:"model_key" validate:"omitempty,model_key"`
	Log2     bool         `json:"log2"`
	Filter   graph.Filter `json:"filter"`
}

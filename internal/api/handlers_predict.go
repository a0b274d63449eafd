// PlaqueMS - Carotid Plaque Proteomics Analytics and Prediction
// Copyright 2026 Nikolaos Samperis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NikolaosSamperis/plaquems

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/NikolaosSamperis/plaquems/internal/artifact"
	"github.com/NikolaosSamperis/plaquems/internal/graph"
	"github.com/NikolaosSamperis/plaquems/internal/ingest"
	"github.com/NikolaosSamperis/plaquems/internal/logging"
	"github.com/NikolaosSamperis/plaquems/internal/metrics"
	"github.com/NikolaosSamperis/plaquems/internal/models"
	"github.com/NikolaosSamperis/plaquems/internal/policy"
	"github.com/NikolaosSamperis/plaquems/internal/predict"
	"github.com/NikolaosSamperis/plaquems/internal/reconcile"
	"github.com/NikolaosSamperis/plaquems/internal/validation"
)

// upload carries the parsed multipart form of a prediction upload.
type upload struct {
	data     []byte
	filename string
	log2     bool
	modelKey string
}

// parseUpload reads the multipart form: the sample_file part, the log2
// checkbox and the model_key selector. Returns false after writing the 400
// response itself.
func (h *Handler) parseUpload(w http.ResponseWriter, r *http.Request) (*upload, bool) {
	maxBytes := h.config.Models.MaxUploadBytes
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		respondError(w, http.StatusBadRequest, "could not parse multipart form: "+err.Error())
		return nil, false
	}

	file, header, err := r.FormFile("sample_file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "sample_file is required")
		return nil, false
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "could not read sample_file: "+err.Error())
		return nil, false
	}

	return &upload{
		data:     data,
		filename: header.Filename,
		log2:     parseCheckbox(r.FormValue("log2")),
		modelKey: r.FormValue("model_key"),
	}, true
}

// parseCheckbox interprets the log2 form value. HTML checkboxes submit "on";
// API clients send "true"/"false"/"1"/"0". Absent means false.
func parseCheckbox(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "on", "yes":
		return true
	default:
		return false
	}
}

// PredictCalcificationUpload handles POST /api/v1/predict/calcification/upload.
// It ingests the uploaded abundance table, reconciles it to the selected
// model's panel, applies the missing-data policy per subject and classifies
// the survivors.
func (h *Handler) PredictCalcificationUpload(w http.ResponseWriter, r *http.Request) {
	up, ok := h.parseUpload(w, r)
	if !ok {
		return
	}
	if up.modelKey == "" {
		respondError(w, http.StatusBadRequest, "model_key is required")
		return
	}

	model, err := artifact.Lookup(up.modelKey)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	m, ok := h.ingestUpload(w, up, model.Panel)
	if !ok {
		return
	}

	start := time.Now()
	resp, ok := h.classifyMatrix(w, m, up.modelKey, up.log2, nil)
	if !ok {
		return
	}
	metrics.PredictionDuration.WithLabelValues(up.modelKey).Observe(time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, resp)
}

// PredictSyntaxUpload handles POST /api/v1/predict/syntax/upload. The SYNTAX
// severity regressor ships frozen in the binary; no model_key is needed.
func (h *Handler) PredictSyntaxUpload(w http.ResponseWriter, r *http.Request) {
	up, ok := h.parseUpload(w, r)
	if !ok {
		return
	}

	m, ok := h.ingestUpload(w, up, artifact.SyntaxPanel)
	if !ok {
		return
	}

	start := time.Now()
	resp, ok := h.scoreMatrix(w, m, up.log2, nil)
	if !ok {
		return
	}
	metrics.PredictionDuration.WithLabelValues("syntax").Observe(time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, resp)
}

// PredictCalcificationBatch handles POST /api/v1/predict/calcification/batch.
// The cohort comes from the graph source: subjects matching the filter, with
// core abundances falling back to periphery per protein.
func (h *Handler) PredictCalcificationBatch(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseBatchRequest(w, r)
	if !ok {
		return
	}
	if req.ModelKey == "" {
		respondError(w, http.StatusBadRequest, "model_key is required")
		return
	}

	model, err := artifact.Lookup(req.ModelKey)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	m, meta, ok := h.fetchCohort(w, r, req.Filter, model.Panel)
	if !ok {
		return
	}

	start := time.Now()
	resp, ok := h.classifyMatrix(w, m, req.ModelKey, req.Log2, meta)
	if !ok {
		return
	}
	metrics.PredictionDuration.WithLabelValues(req.ModelKey).Observe(time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, resp)
}

// PredictSyntaxBatch handles POST /api/v1/predict/syntax/batch.
func (h *Handler) PredictSyntaxBatch(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseBatchRequest(w, r)
	if !ok {
		return
	}

	m, meta, ok := h.fetchCohort(w, r, req.Filter, artifact.SyntaxPanel)
	if !ok {
		return
	}

	start := time.Now()
	resp, ok := h.scoreMatrix(w, m, req.Log2, meta)
	if !ok {
		return
	}
	metrics.PredictionDuration.WithLabelValues("syntax").Observe(time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, resp)
}

// ingestUpload parses the uploaded table and reindexes it to the panel.
// Ingestion failures are fatal to the whole upload.
func (h *Handler) ingestUpload(w http.ResponseWriter, up *upload, panel []string) (*reconcile.Matrix, bool) {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(up.filename)), ".")
	if format == "" {
		format = "unknown"
	}

	table, err := ingest.Read(up.data, up.filename)
	if err != nil {
		metrics.RecordUpload(format, "unknown", 0, true)
		respondError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	metrics.RecordUpload(format, string(table.Layout), len(table.Subjects), false)

	return reconcile.FromTable(table, panel), true
}

// parseBatchRequest decodes and validates the JSON body of a batch endpoint.
func (h *Handler) parseBatchRequest(w http.ResponseWriter, r *http.Request) (*models.BatchRequest, bool) {
	var req models.BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return nil, false
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondError(w, http.StatusBadRequest, verr.Error())
		return nil, false
	}
	return &req, true
}

// fetchCohort resolves the filter to subjects and assembles the per-subject
// feature matrix from the two tissue compartments.
func (h *Handler) fetchCohort(w http.ResponseWriter, r *http.Request, f graph.Filter, panel []string) (*reconcile.Matrix, map[string]graph.Subject, bool) {
	ctx := r.Context()

	ids, err := h.source.SubjectIDs(ctx, f)
	if err != nil {
		h.respondSourceError(w, err)
		return nil, nil, false
	}

	core, err := h.source.AbundanceBatch(ctx, graph.CompartmentCore, ids, panel)
	if err != nil {
		h.respondSourceError(w, err)
		return nil, nil, false
	}
	periphery, err := h.source.AbundanceBatch(ctx, graph.CompartmentPeriphery, ids, panel)
	if err != nil {
		h.respondSourceError(w, err)
		return nil, nil, false
	}

	meta, err := h.source.Metadata(ctx, ids)
	if err != nil {
		h.respondSourceError(w, err)
		return nil, nil, false
	}

	m := &reconcile.Matrix{
		Subjects: ids,
		Panel:    panel,
		X:        make([][]float64, len(ids)),
	}
	for i, id := range ids {
		m.X[i] = reconcile.FromCompartments(core[id], periphery[id], panel)
	}
	return m, meta, true
}

// applyPolicy runs the missing-data decision per subject. It returns the
// indices of surviving subjects, their missing fractions, and the warnings
// collection (warn and skip tiers only; fully-covered subjects stay silent).
//
// In single-subject mode a skip fails the whole request with a 400, since
// there is nothing left to predict.
func (h *Handler) applyPolicy(w http.ResponseWriter, m *reconcile.Matrix, modelKey string) (keep []int, fracs []float64, warnings []models.MissingnessReport, ok bool) {
	warnings = []models.MissingnessReport{}
	single := len(m.Subjects) == 1

	for i, vec := range m.X {
		frac, decision := policy.Evaluate(vec)
		metrics.RecordPrediction(modelKey, string(decision), frac)

		switch decision {
		case policy.Skip:
			if single {
				respondError(w, http.StatusBadRequest, fmt.Sprintf(
					"more than 50%% of the required protein panel is missing (%.0f%%)", frac*100))
				return nil, nil, nil, false
			}
			warnings = append(warnings, models.MissingnessReport{
				SubjectID:       m.Subjects[i],
				MissingFraction: frac,
				Decision:        decision,
			})
		case policy.Warn:
			warnings = append(warnings, models.MissingnessReport{
				SubjectID:       m.Subjects[i],
				MissingFraction: frac,
				Decision:        decision,
			})
			keep = append(keep, i)
			fracs = append(fracs, frac)
		default:
			keep = append(keep, i)
			fracs = append(fracs, frac)
		}
	}
	return keep, fracs, warnings, true
}

// classifyMatrix runs log2, policy and classification over the matrix and
// builds the response. meta is nil for upload mode.
func (h *Handler) classifyMatrix(w http.ResponseWriter, m *reconcile.Matrix, modelKey string, log2 bool, meta map[string]graph.Subject) (*models.PredictionResponse, bool) {
	if log2 {
		if err := m.ApplyLog2(); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return nil, false
		}
	}

	keep, fracs, warnings, ok := h.applyPolicy(w, m, modelKey)
	if !ok {
		return nil, false
	}

	resp := &models.PredictionResponse{
		Results:     []models.PredictionResult{},
		Warnings:    warnings,
		Log2Applied: log2,
	}
	if len(keep) == 0 {
		return resp, true
	}

	bundle, err := h.store.Load(modelKey)
	if err != nil {
		h.respondArtifactError(w, err)
		return nil, false
	}

	surviving := m.Rows(keep)
	outcomes, err := predict.Classify(bundle.Estimator, bundle.Steps(), predict.NewMatrix(surviving.X))
	if err != nil {
		logging.Error().Err(err).Str("model", modelKey).Msg("Classification failed")
		respondError(w, http.StatusInternalServerError, "prediction failed")
		return nil, false
	}

	for i, o := range outcomes {
		pc, pn := o.ProbCalcified, o.ProbNonCalc
		result := models.PredictionResult{
			SubjectID:               surviving.Subjects[i],
			ClassName:               o.ClassName,
			ProbabilityCalcified:    &pc,
			ProbabilityNonCalcified: &pn,
			MissingFraction:         fracs[i],
		}
		if meta != nil {
			if s, found := meta[result.SubjectID]; found {
				subject := s
				result.Subject = &subject
			}
		}
		resp.Results = append(resp.Results, result)
	}
	return resp, true
}

// scoreMatrix is classifyMatrix's regression counterpart for the SYNTAX
// severity pipeline.
func (h *Handler) scoreMatrix(w http.ResponseWriter, m *reconcile.Matrix, log2 bool, meta map[string]graph.Subject) (*models.PredictionResponse, bool) {
	if log2 {
		if err := m.ApplyLog2(); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return nil, false
		}
	}

	keep, fracs, warnings, ok := h.applyPolicy(w, m, "syntax")
	if !ok {
		return nil, false
	}

	resp := &models.PredictionResponse{
		Results:     []models.PredictionResult{},
		Warnings:    warnings,
		Log2Applied: log2,
	}
	if len(keep) == 0 {
		return resp, true
	}

	estimator, steps := predict.NewSyntaxPipeline()
	surviving := m.Rows(keep)
	scores := predict.Scores(estimator, steps, predict.NewMatrix(surviving.X))

	for i, score := range scores {
		s := score
		result := models.PredictionResult{
			SubjectID:       surviving.Subjects[i],
			Score:           &s,
			MissingFraction: fracs[i],
		}
		if meta != nil {
			if sub, found := meta[result.SubjectID]; found {
				subject := sub
				result.Subject = &subject
			}
		}
		resp.Results = append(resp.Results, result)
	}
	return resp, true
}

// respondSourceError maps graph source failures: an unavailable collaborator
// is a 502, anything else a 500.
func (h *Handler) respondSourceError(w http.ResponseWriter, err error) {
	if errors.Is(err, graph.ErrUnavailable) {
		logging.Warn().Err(err).Msg("Graph source unavailable")
		respondError(w, http.StatusBadGateway, "cohort data source unavailable")
		return
	}
	logging.Error().Err(err).Msg("Graph source query failed")
	respondError(w, http.StatusInternalServerError, "cohort query failed")
}

// respondArtifactError maps artifact store failures: unknown keys are the
// caller's mistake, unreadable artifacts are ours.
func (h *Handler) respondArtifactError(w http.ResponseWriter, err error) {
	if errors.Is(err, artifact.ErrUnknownModel) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	logging.Error().Err(err).Msg("Model artifact load failed")
	respondError(w, http.StatusInternalServerError, "model artifacts unavailable")
}

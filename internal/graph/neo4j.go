// PlaqueMS - Carotid Plaque Proteomics Analytics and Prediction
// Copyright 2026 Nikolaos Samperis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NikolaosSamperis/plaquems

package graph

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/NikolaosSamperis/plaquems/internal/config"
	"github.com/NikolaosSamperis/plaquems/internal/logging"
	"github.com/NikolaosSamperis/plaquems/internal/metrics"
)

// HTTPSource talks to a Neo4j-compatible transactional cypher endpoint.
// Every query goes through an outbound rate limiter and a circuit breaker;
// failures propagate to the caller, there are no retries.
//
// DETERMINISM NOTE: The circuit breaker uses real time (via sony/gobreaker)
// for its interval and timeout calculations. The timing determines when to
// recover from failures, not data integrity. For unit tests, exercise the
// query path directly against an httptest server.
type HTTPSource struct {
	cfg     *config.GraphConfig
	client  *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[*cypherResult]
	name    string
}

var _ Source = (*HTTPSource)(nil)

// NewHTTPSource creates a cypher-over-HTTP source.
// Circuit breaker configuration:
// - Max 3 concurrent requests in half-open state
// - 1 minute measurement window
// - 2 minute timeout before attempting recovery
// - Opens after 60% failure rate with minimum 10 requests
func NewHTTPSource(cfg *config.GraphConfig) *HTTPSource {
	cbName := "graph-cypher"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[*cypherResult](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)
			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &HTTPSource{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
		cb:      cb,
		name:    cbName,
	}
}

// cypherStatement is one statement in a transactional commit request.
type cypherStatement struct {
	Statement  string         `json:"statement"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

type cypherRequest struct {
	Statements []cypherStatement `json:"statements"`
}

type cypherResult struct {
	Results []struct {
		Columns []string `json:"columns"`
		Data    []struct {
			Row []any `json:"row"`
		} `json:"data"`
	} `json:"results"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// rows flattens the first result's data rows.
func (r *cypherResult) rows() [][]any {
	if len(r.Results) == 0 {
		return nil
	}
	out := make([][]any, 0, len(r.Results[0].Data))
	for _, d := range r.Results[0].Data {
		out = append(out, d.Row)
	}
	return out
}

// query runs one cypher statement through the rate limiter and breaker.
func (s *HTTPSource) query(ctx context.Context, operation, statement string, params map[string]any) (*cypherResult, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("graph rate limiter: %w", err)
	}

	start := time.Now()
	result, err := s.cb.Execute(func() (*cypherResult, error) {
		return s.commit(ctx, statement, params)
	})
	metrics.RecordGraphQuery("http", operation, time.Since(start), err)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(s.name, "rejected").Inc()
			logging.Warn().Err(err).Str("operation", operation).Msg("[CIRCUIT BREAKER] Request rejected")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(s.name, "failure").Inc()
			counts := s.cb.Counts()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(s.name).Set(float64(counts.ConsecutiveFailures))
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, operation, err)
	}

	metrics.CircuitBreakerRequests.WithLabelValues(s.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(s.name).Set(0)
	return result, nil
}

func (s *HTTPSource) commit(ctx context.Context, statement string, params map[string]any) (*cypherResult, error) {
	body, err := json.Marshal(cypherRequest{Statements: []cypherStatement{{Statement: statement, Parameters: params}}})
	if err != nil {
		return nil, fmt.Errorf("encode cypher request: %w", err)
	}

	url := fmt.Sprintf("%s/db/%s/tx/commit", strings.TrimRight(s.cfg.URL, "/"), s.cfg.Database)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if s.cfg.Username != "" {
		req.SetBasicAuth(s.cfg.Username, s.cfg.Password)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("cypher endpoint returned status %d", resp.StatusCode)
	}

	var result cypherResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode cypher response: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("cypher error %s: %s", result.Errors[0].Code, result.Errors[0].Message)
	}
	return &result, nil
}

// SubjectIDs resolves a cohort filter to the matching patient identifiers.
func (s *HTTPSource) SubjectIDs(ctx context.Context, f Filter) ([]string, error) {
	statement, params := buildSubjectQuery(f)
	result, err := s.query(ctx, "subject_ids", statement, params)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(result.rows()))
	for _, row := range result.rows() {
		if id, ok := row[0].(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// AbundanceBatch fetches one compartment's panel measurements for a set of
// subjects in a single round trip.
func (s *HTTPSource) AbundanceBatch(ctx context.Context, compartment string, subjectIDs, panel []string) (map[string]map[string]float64, error) {
	statement := `MATCH (p:Patient)-[m:MEASURED {compartment: $compartment}]->(pr:Protein)
WHERE p.id IN $ids AND pr.symbol IN $panel
RETURN p.id, pr.symbol, m.abundance`
	params := map[string]any{"compartment": compartment, "ids": subjectIDs, "panel": panel}

	result, err := s.query(ctx, "abundance_batch", statement, params)
	if err != nil {
		return nil, err
	}

	out := make(map[string]map[string]float64, len(subjectIDs))
	for _, row := range result.rows() {
		if len(row) != 3 {
			continue
		}
		id, _ := row[0].(string)
		symbol, _ := row[1].(string)
		abundance, ok := row[2].(float64)
		if id == "" || symbol == "" || !ok {
			continue
		}
		if out[id] == nil {
			out[id] = make(map[string]float64)
		}
		out[id][symbol] = abundance
	}
	return out, nil
}

// Metadata fetches one clinical record per subject.
func (s *HTTPSource) Metadata(ctx context.Context, subjectIDs []string) (map[string]Subject, error) {
	statement := `MATCH (p:Patient)
WHERE p.id IN $ids
RETURN p.id, p.sex, p.age, p.bmi, p.smoker_status, p.pack_years, p.symptoms, p.histology, p.ultrasound, p.calcification`
	result, err := s.query(ctx, "metadata", statement, map[string]any{"ids": subjectIDs})
	if err != nil {
		return nil, err
	}

	out := make(map[string]Subject, len(subjectIDs))
	for _, row := range result.rows() {
		if len(row) != 10 {
			continue
		}
		id, _ := row[0].(string)
		if id == "" {
			continue
		}
		sub := Subject{ID: id}
		sub.Sex, _ = row[1].(string)
		sub.Age, _ = row[2].(float64)
		sub.BMI, _ = row[3].(float64)
		sub.SmokerStatus, _ = row[4].(string)
		sub.PackYears, _ = row[5].(float64)
		sub.Symptoms, _ = row[6].(string)
		sub.Histology, _ = row[7].(string)
		sub.Ultrasound, _ = row[8].(string)
		sub.Calcification, _ = row[9].(string)
		out[id] = sub
	}
	return out, nil
}

// FilterValues fetches the distinct categorical values present in the graph.
// Age groups, BMI ranges and pack-year tiers are derived names, not stored
// properties, so they come from the static tables.
func (s *HTTPSource) FilterValues(ctx context.Context) (*FilterValues, error) {
	statement := `MATCH (p:Patient)
RETURN collect(DISTINCT p.sex), collect(DISTINCT p.symptoms), collect(DISTINCT p.histology),
collect(DISTINCT p.ultrasound), collect(DISTINCT p.calcification), collect(DISTINCT p.smoker_status)`
	result, err := s.query(ctx, "filter_values", statement, nil)
	if err != nil {
		return nil, err
	}

	rows := result.rows()
	fv := &FilterValues{
		AgeGroups: AgeGroupNames,
		BMIRanges: BMIRangeNames,
		PackYears: PackYearNames,
	}
	if len(rows) == 1 && len(rows[0]) == 6 {
		fv.Sex = toStrings(rows[0][0])
		fv.Symptoms = toStrings(rows[0][1])
		fv.Histology = toStrings(rows[0][2])
		fv.Ultrasound = toStrings(rows[0][3])
		fv.Calcification = toStrings(rows[0][4])
		fv.SmokerStatus = toStrings(rows[0][5])
	}
	return fv, nil
}

// Ping verifies connectivity to the cypher endpoint.
func (s *HTTPSource) Ping(ctx context.Context) error {
	_, err := s.query(ctx, "ping", "RETURN 1", nil)
	return err
}

// Close releases client resources.
func (s *HTTPSource) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// buildSubjectQuery assembles the id-selection statement from a filter.
// Every user value travels as a cypher parameter, never inline.
func buildSubjectQuery(f Filter) (string, map[string]any) {
	conds := make([]string, 0, 8)
	params := make(map[string]any)

	addIn := func(prop, key string, values []string) {
		if len(values) == 0 {
			return
		}
		conds = append(conds, fmt.Sprintf("p.%s IN $%s", prop, key))
		params[key] = values
	}
	addAny := func(prop, key string, values []string) {
		if len(values) == 0 {
			return
		}
		conds = append(conds, fmt.Sprintf("ANY(v IN p.%s WHERE v IN $%s)", prop, key))
		params[key] = values
	}
	addRanges := func(prop, key string, names []string, lookup func(string) (Range, bool)) {
		if len(names) == 0 {
			return
		}
		parts := make([]string, 0, len(names))
		for i, name := range names {
			r, ok := lookup(name)
			if !ok {
				continue
			}
			lo := fmt.Sprintf("%s_lo_%d", key, i)
			params[lo] = r.Lo
			if r.Hi < 0 {
				parts = append(parts, fmt.Sprintf("p.%s >= $%s", prop, lo))
				continue
			}
			hi := fmt.Sprintf("%s_hi_%d", key, i)
			params[hi] = r.Hi
			parts = append(parts, fmt.Sprintf("(p.%s >= $%s AND p.%s < $%s)", prop, lo, prop, hi))
		}
		if len(parts) > 0 {
			conds = append(conds, "("+strings.Join(parts, " OR ")+")")
		}
	}

	addIn("sex", "sex", f.Sex)
	addIn("symptoms", "symptoms", f.Symptoms)
	addIn("histology", "histology", f.Histology)
	addIn("ultrasound", "ultrasound", f.Ultrasound)
	addIn("calcification", "calcification", f.Calcification)
	addIn("smoker_status", "smoker_status", f.SmokerStatus)
	addAny("conditions", "conditions", f.Conditions)
	addAny("outcomes", "outcomes", f.Outcomes)
	addAny("medications", "medications", f.Medications)
	addRanges("age", "age", f.AgeGroups, AgeGroupBounds)
	addRanges("bmi", "bmi", f.BMIRanges, BMIRangeBounds)
	addRanges("pack_years", "pack_years", f.PackYears, PackYearBounds)

	statement := "MATCH (p:Patient)"
	if len(conds) > 0 {
		statement += "\nWHERE " + strings.Join(conds, " AND ")
	}
	statement += "\nRETURN p.id ORDER BY p.id"
	return statement, params
}

func toStrings(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

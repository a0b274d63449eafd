// PlaqueMS - Carotid Plaque Proteomics Analytics and Prediction
// Copyright 2026 Nikolaos Samperis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NikolaosSamperis/plaquems

package metrics

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordPrediction(t *testing.T) {
	tests := []struct {
		name            string
		model           string
		outcome         string
		missingFraction float64
	}{
		{name: "clean pass", model: "cellular", outcome: "pass", missingFraction: 0},
		{name: "warn tier", model: "core", outcome: "warn", missingFraction: 0.3},
		{name: "skip tier", model: "soluble", outcome: "skip", missingFraction: 0.8},
		{name: "syntax regression", model: "syntax", outcome: "pass", missingFraction: 0.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(PredictionsTotal.WithLabelValues(tt.model, tt.outcome))
			RecordPrediction(tt.model, tt.outcome, tt.missingFraction)
			after := testutil.ToFloat64(PredictionsTotal.WithLabelValues(tt.model, tt.outcome))
			if after != before+1 {
				t.Errorf("PredictionsTotal[%s,%s] = %v, want %v", tt.model, tt.outcome, after, before+1)
			}
		})
	}
}

func TestRecordUpload(t *testing.T) {
	before := testutil.ToFloat64(UploadsTotal.WithLabelValues("csv", "wide", "ok"))
	RecordUpload("csv", "wide", 12, false)
	if got := testutil.ToFloat64(UploadsTotal.WithLabelValues("csv", "wide", "ok")); got != before+1 {
		t.Errorf("UploadsTotal ok = %v, want %v", got, before+1)
	}

	before = testutil.ToFloat64(UploadsTotal.WithLabelValues("xlsx", "long", "rejected"))
	RecordUpload("xlsx", "long", 0, true)
	if got := testutil.ToFloat64(UploadsTotal.WithLabelValues("xlsx", "long", "rejected")); got != before+1 {
		t.Errorf("UploadsTotal rejected = %v, want %v", got, before+1)
	}
}

func TestRecordDBQuery_ErrorTruncation(t *testing.T) {
	// Long error labels are truncated to keep cardinality bounded; none of
	// these may panic.
	RecordDBQuery("SELECT", "patients", time.Millisecond, errors.New(strings.Repeat("x", 120)))
	RecordDBQuery("SELECT", "patients", time.Millisecond, errors.New("short"))
	RecordDBQuery("INSERT", "abundances", 5*time.Millisecond, nil)
}

func TestRecordGraphQuery(t *testing.T) {
	beforeErr := testutil.ToFloat64(GraphQueryErrors.WithLabelValues("http", "subject_ids"))
	RecordGraphQuery("http", "subject_ids", 20*time.Millisecond, nil)
	RecordGraphQuery("http", "subject_ids", 20*time.Millisecond, errors.New("boom"))
	afterErr := testutil.ToFloat64(GraphQueryErrors.WithLabelValues("http", "subject_ids"))
	if afterErr != beforeErr+1 {
		t.Errorf("GraphQueryErrors = %v, want %v", afterErr, beforeErr+1)
	}
}

func TestRecordArtifactLoad(t *testing.T) {
	before := testutil.ToFloat64(ArtifactLoads.WithLabelValues("cellular", "error"))
	RecordArtifactLoad("cellular", errors.New("missing file"))
	if got := testutil.ToFloat64(ArtifactLoads.WithLabelValues("cellular", "error")); got != before+1 {
		t.Errorf("ArtifactLoads error = %v, want %v", got, before+1)
	}
}

// TestTrackActiveRequest_Concurrent verifies the gauge balances under
// concurrent increments and decrements.
func TestTrackActiveRequest_Concurrent(t *testing.T) {
	start := testutil.ToFloat64(APIActiveRequests)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			TrackActiveRequest(true)
			TrackActiveRequest(false)
		}()
	}
	wg.Wait()
	if got := testutil.ToFloat64(APIActiveRequests); got != start {
		t.Errorf("APIActiveRequests = %v, want %v after balanced ops", got, start)
	}
}

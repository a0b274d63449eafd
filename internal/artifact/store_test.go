// PlaqueMS - Carotid Plaque Proteomics Analytics and Prediction
// Copyright 2026 Nikolaos Samperis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NikolaosSamperis/plaquems

package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/NikolaosSamperis/plaquems/internal/predict"
)

// writeArtifacts lays out a minimal cellular bundle under root.
func writeArtifacts(t *testing.T, root, dir, estimator string) {
	t.Helper()
	d := filepath.Join(root, dir)
	if err := os.MkdirAll(d, 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"estimator.json": estimator,
		"scaler.json":    `{"kind":"minmax","scale":[0.5,0.5],"min":[0,0]}`,
		"imputer.json":   `{"kind":"knn","k":1,"fit":[[1,2],[3,4]]}`,
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(d, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestStore_LoadLogistic(t *testing.T) {
	root := t.TempDir()
	writeArtifacts(t, root, "cellular", `{"kind":"logistic","coef":[1,1,1,1,1,1,1,1],"intercept":0.5}`)

	s := NewStore(root)
	b, err := s.Load("cellular")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, ok := b.Estimator.(*predict.Logistic); !ok {
		t.Fatalf("Estimator = %T, want *predict.Logistic", b.Estimator)
	}
	if _, ok := b.Estimator.(predict.ProbabilityEstimator); !ok {
		t.Error("logistic estimator should expose native probabilities")
	}
	if got := len(b.Model.Panel); got != 8 {
		t.Errorf("panel size = %d, want 8", got)
	}
	if steps := b.Steps(); len(steps) != 2 {
		t.Errorf("Steps() = %d transformers, want imputer then scaler", len(steps))
	}
}

func TestStore_LoadLinearSVCHasNoProbabilities(t *testing.T) {
	root := t.TempDir()
	writeArtifacts(t, root, "soluble", `{"kind":"linear_svc","coef":[1,1,1,1,1,1,1],"intercept":-0.2}`)

	b, err := NewStore(root).Load("soluble")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, ok := b.Estimator.(predict.ProbabilityEstimator); ok {
		t.Error("linear SVC should not expose native probabilities")
	}
	if _, ok := b.Estimator.(predict.DecisionEstimator); !ok {
		t.Error("linear SVC should expose a decision function")
	}
}

func TestStore_LoadIsCached(t *testing.T) {
	root := t.TempDir()
	writeArtifacts(t, root, "cellular", `{"kind":"logistic","coef":[1,1,1,1,1,1,1,1],"intercept":0}`)

	s := NewStore(root)
	first, err := s.Load("cellular")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	// Artifacts on disk are gone; the cached bundle must still serve.
	if err := os.RemoveAll(filepath.Join(root, "cellular")); err != nil {
		t.Fatal(err)
	}
	second, err := s.Load("cellular")
	if err != nil {
		t.Fatalf("second Load() error = %v", err)
	}
	if first != second {
		t.Error("Load() returned a new bundle instead of the cached one")
	}
}

func TestStore_Errors(t *testing.T) {
	root := t.TempDir()
	writeArtifacts(t, root, "core", `{"kind":"random_forest","coef":[1],"intercept":0}`)
	s := NewStore(root)

	if _, err := s.Load("plasma"); !errors.Is(err, ErrUnknownModel) {
		t.Errorf("unknown key: error = %v, want ErrUnknownModel", err)
	}
	if _, err := s.Load("core"); !errors.Is(err, ErrBadArtifact) {
		t.Errorf("unsupported estimator kind: error = %v, want ErrBadArtifact", err)
	}
	if _, err := s.Load("cellular"); err == nil {
		t.Error("missing artifact directory: want error")
	}
}

func TestLookup(t *testing.T) {
	m, err := Lookup("soluble")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if m.Label != "Soluble Matrisome" {
		t.Errorf("Label = %q", m.Label)
	}
	if len(Models()) != 3 {
		t.Errorf("Models() = %d entries, want 3", len(Models()))
	}
}

// PlaqueMS - Carotid Plaque Proteomics Analytics and Prediction
// Copyright 2026 Nikolaos Samperis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NikolaosSamperis/plaquems

package artifact

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/NikolaosSamperis/plaquems/internal/predict"
)

var (
	// ErrUnknownModel is returned for a model key absent from the catalog.
	ErrUnknownModel = errors.New("unknown model key")
	// ErrBadArtifact wraps artifact files that do not decode to a known kind.
	ErrBadArtifact = errors.New("malformed model artifact")
)

// Bundle is one fully loaded model: the estimator and its preprocessing
// steps in application order (impute, then scale).
type Bundle struct {
	Model     Model
	Estimator predict.Estimator
	Imputer   predict.Transformer
	Scaler    predict.Transformer
}

// Steps returns the preprocessing chain in application order.
func (b *Bundle) Steps() []predict.Transformer {
	return []predict.Transformer{b.Imputer, b.Scaler}
}

// Store loads bundles from a root directory holding one subdirectory per
// model key. Each bundle is decoded at most once per process; concurrent
// loads of the same key block on the first loader.
type Store struct {
	root string

	mu     sync.Mutex
	loaded map[string]*Bundle
}

func NewStore(root string) *Store {
	return &Store{root: root, loaded: make(map[string]*Bundle)}
}

// Load returns the bundle for key, reading and decoding its artifact
// files on first use.
func (s *Store) Load(key string) (*Bundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.loaded[key]; ok {
		return b, nil
	}

	model, err := Lookup(key)
	if err != nil {
		return nil, err
	}
	b, err := s.read(model)
	if err != nil {
		return nil, err
	}
	s.loaded[key] = b
	return b, nil
}

func (s *Store) read(model Model) (*Bundle, error) {
	dir := filepath.Join(s.root, model.dir)

	est, err := readEstimator(filepath.Join(dir, "estimator.json"))
	if err != nil {
		return nil, fmt.Errorf("model %q: %w", model.Key, err)
	}
	scaler, err := readScaler(filepath.Join(dir, "scaler.json"))
	if err != nil {
		return nil, fmt.Errorf("model %q: %w", model.Key, err)
	}
	imputer, err := readImputer(filepath.Join(dir, "imputer.json"))
	if err != nil {
		return nil, fmt.Errorf("model %q: %w", model.Key, err)
	}

	return &Bundle{Model: model, Estimator: est, Imputer: imputer, Scaler: scaler}, nil
}

type estimatorFile struct {
	Kind      string    `json:"kind"`
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

func readEstimator(path string) (predict.Estimator, error) {
	var f estimatorFile
	if err := decode(path, &f); err != nil {
		return nil, err
	}
	if len(f.Coef) == 0 {
		return nil, fmt.Errorf("%w: %s: empty coefficient vector", ErrBadArtifact, path)
	}
	switch f.Kind {
	case "logistic":
		return &predict.Logistic{Coef: f.Coef, Intercept: f.Intercept}, nil
	case "linear_svc":
		return &predict.LinearSVC{Coef: f.Coef, Intercept: f.Intercept}, nil
	default:
		return nil, fmt.Errorf("%w: %s: estimator kind %q", ErrBadArtifact, path, f.Kind)
	}
}

type scalerFile struct {
	Kind  string    `json:"kind"`
	Scale []float64 `json:"scale"`
	Min   []float64 `json:"min"`
}

func readScaler(path string) (predict.Transformer, error) {
	var f scalerFile
	if err := decode(path, &f); err != nil {
		return nil, err
	}
	if f.Kind != "minmax" {
		return nil, fmt.Errorf("%w: %s: scaler kind %q", ErrBadArtifact, path, f.Kind)
	}
	if len(f.Scale) == 0 || len(f.Scale) != len(f.Min) {
		return nil, fmt.Errorf("%w: %s: scale/min length mismatch", ErrBadArtifact, path)
	}
	return &predict.MinMaxScaler{Scale: f.Scale, Min: f.Min}, nil
}

type imputerFile struct {
	Kind string      `json:"kind"`
	K    int         `json:"k"`
	Fit  [][]float64 `json:"fit"`
}

func readImputer(path string) (predict.Transformer, error) {
	var f imputerFile
	if err := decode(path, &f); err != nil {
		return nil, err
	}
	if f.Kind != "knn" {
		return nil, fmt.Errorf("%w: %s: imputer kind %q", ErrBadArtifact, path, f.Kind)
	}
	if f.K <= 0 || len(f.Fit) == 0 {
		return nil, fmt.Errorf("%w: %s: k and fitted samples are required", ErrBadArtifact, path)
	}
	// JSON cannot carry NaN, so serialized training matrices mark missing
	// abundances with zero, the same convention the ingest layer uses.
	for _, row := range f.Fit {
		for j, v := range row {
			if v == 0 {
				row[j] = math.NaN()
			}
		}
	}
	return &predict.KNNImputer{K: f.K, Fit: f.Fit}, nil
}

func decode(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read artifact: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrBadArtifact, path, err)
	}
	return nil
}

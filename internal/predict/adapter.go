// PlaqueMS - Carotid Plaque Proteomics Analytics and Prediction
// Copyright 2026 Nikolaos Samperis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NikolaosSamperis/plaquems

// Package predict runs pre-fitted statistical models over feature matrices.
//
// Estimators, scalers and imputers are opaque fitted artifacts: this package
// only sequences transform and predict calls, it never refits anything. The
// estimator is modeled as a capability set, not a concrete type: probability
// support and decision-function support are discovered by interface
// assertion.
package predict

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Estimator is the minimal contract of a fitted model: one prediction per
// matrix row. Classifiers return 0/1 labels, regressors continuous scores.
type Estimator interface {
	Predict(x *mat.Dense) []float64
}

// ProbabilityEstimator is implemented by classifiers with native class
// probabilities.
type ProbabilityEstimator interface {
	// PredictProba returns an n-by-2 matrix of class probabilities,
	// column 0 the negative class, column 1 the positive class.
	PredictProba(x *mat.Dense) *mat.Dense
}

// DecisionEstimator is implemented by classifiers that expose only a signed
// distance to the decision boundary (for example a linear SVM).
type DecisionEstimator interface {
	DecisionFunction(x *mat.Dense) []float64
}

// Transformer is a fitted preprocessing step (scaler or imputer).
type Transformer interface {
	Transform(x *mat.Dense) *mat.Dense
}

// ErrNoProbability is returned when an estimator exposes neither native
// probabilities nor a decision function.
var ErrNoProbability = errors.New("estimator exposes neither class probabilities nor a decision function")

// Outcome is one subject's classification.
type Outcome struct {
	ClassName     string
	ProbCalcified float64
	ProbNonCalc   float64
}

const (
	ClassCalcified    = "calcified"
	ClassNonCalcified = "non-calcified"
)

// Classify applies the preprocessing steps in order, then predicts labels
// and class probabilities for every row. When the estimator has no native
// probability support the signed decision value is squashed through the
// logistic function; this is an exact sigmoid, not an approximation.
func Classify(est Estimator, pre []Transformer, x *mat.Dense) ([]Outcome, error) {
	x = applySteps(pre, x)

	labels := est.Predict(x)
	probs, err := probabilities(est, x)
	if err != nil {
		return nil, err
	}

	out := make([]Outcome, len(labels))
	for i, label := range labels {
		name := ClassNonCalcified
		if label != 0 {
			name = ClassCalcified
		}
		out[i] = Outcome{
			ClassName:     name,
			ProbCalcified: probs.At(i, 1),
			ProbNonCalc:   probs.At(i, 0),
		}
	}
	return out, nil
}

// Scores applies the preprocessing steps in order and returns the
// estimator's continuous predictions.
func Scores(est Estimator, pre []Transformer, x *mat.Dense) []float64 {
	return est.Predict(applySteps(pre, x))
}

func applySteps(pre []Transformer, x *mat.Dense) *mat.Dense {
	for _, step := range pre {
		x = step.Transform(x)
	}
	return x
}

func probabilities(est Estimator, x *mat.Dense) (*mat.Dense, error) {
	if p, ok := est.(ProbabilityEstimator); ok {
		return p.PredictProba(x), nil
	}
	d, ok := est.(DecisionEstimator)
	if !ok {
		return nil, ErrNoProbability
	}
	dec := d.DecisionFunction(x)
	probs := mat.NewDense(len(dec), 2, nil)
	for i, v := range dec {
		p := Sigmoid(v)
		probs.Set(i, 0, 1-p)
		probs.Set(i, 1, p)
	}
	return probs, nil
}

// Sigmoid is the standard logistic function 1/(1+e^-d).
func Sigmoid(d float64) float64 {
	return 1 / (1 + math.Exp(-d))
}

// NewMatrix packs subject-major feature rows into a dense matrix. Rows must
// be of equal length.
func NewMatrix(rows [][]float64) *mat.Dense {
	if len(rows) == 0 {
		return &mat.Dense{}
	}
	n, p := len(rows), len(rows[0])
	x := mat.NewDense(n, p, nil)
	for i, row := range rows {
		x.SetRow(i, row)
	}
	return x
}

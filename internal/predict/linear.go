// PlaqueMS - Carotid Plaque Proteomics Analytics and Prediction
// Copyright 2026 Nikolaos Samperis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NikolaosSamperis/plaquems

package predict

import "gonum.org/v1/gonum/mat"

// Logistic is a fitted binary logistic-regression classifier. It supports
// native class probabilities.
type Logistic struct {
	Coef      []float64
	Intercept float64
}

var (
	_ Estimator            = (*Logistic)(nil)
	_ ProbabilityEstimator = (*Logistic)(nil)
	_ DecisionEstimator    = (*Logistic)(nil)
)

func (l *Logistic) DecisionFunction(x *mat.Dense) []float64 {
	return decision(x, l.Coef, l.Intercept)
}

func (l *Logistic) Predict(x *mat.Dense) []float64 {
	dec := l.DecisionFunction(x)
	labels := make([]float64, len(dec))
	for i, d := range dec {
		if d > 0 {
			labels[i] = 1
		}
	}
	return labels
}

func (l *Logistic) PredictProba(x *mat.Dense) *mat.Dense {
	dec := l.DecisionFunction(x)
	probs := mat.NewDense(len(dec), 2, nil)
	for i, d := range dec {
		p := Sigmoid(d)
		probs.Set(i, 0, 1-p)
		probs.Set(i, 1, p)
	}
	return probs
}

// LinearSVC is a fitted linear support-vector classifier. It exposes a
// decision function but no native probabilities.
type LinearSVC struct {
	Coef      []float64
	Intercept float64
}

var (
	_ Estimator         = (*LinearSVC)(nil)
	_ DecisionEstimator = (*LinearSVC)(nil)
)

func (s *LinearSVC) DecisionFunction(x *mat.Dense) []float64 {
	return decision(x, s.Coef, s.Intercept)
}

func (s *LinearSVC) Predict(x *mat.Dense) []float64 {
	dec := s.DecisionFunction(x)
	labels := make([]float64, len(dec))
	for i, d := range dec {
		if d > 0 {
			labels[i] = 1
		}
	}
	return labels
}

// LinearRegressor is a fitted linear model producing continuous scores.
type LinearRegressor struct {
	Coef      []float64
	Intercept float64
}

var _ Estimator = (*LinearRegressor)(nil)

func (r *LinearRegressor) Predict(x *mat.Dense) []float64 {
	return decision(x, r.Coef, r.Intercept)
}

// decision computes x·coef + intercept per row.
func decision(x *mat.Dense, coef []float64, intercept float64) []float64 {
	n, _ := x.Dims()
	w := mat.NewVecDense(len(coef), coef)
	out := make([]float64, n)
	for i := range out {
		out[i] = mat.Dot(x.RowView(i), w) + intercept
	}
	return out
}

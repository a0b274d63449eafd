// PlaqueMS - Carotid Plaque Proteomics Analytics and Prediction
// Copyright 2026 Nikolaos Samperis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NikolaosSamperis/plaquems

package predict

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// The SYNTAX regressor is frozen: a five-protein elastic-net fit whose
// coefficients ship with the binary rather than as a loadable artifact.
// Panel order is HRG, CP, C4B, F13A1, VCAN.

var (
	syntaxCoef      = []float64{0.8375609, 0.5080263, 9.0445166, 2.1418158, -2.7828411}
	syntaxIntercept = 11.9375

	// Per-cohort standardization statistics, panel order.
	syntaxLabelFreeMean = []float64{28.3118, 29.2769, 25.5675, 26.5596, 33.9064}
	syntaxLabelFreeStd  = []float64{1.1941, 1.2242, 1.2779, 1.1350, 1.7157}
	syntaxLabelledMean  = []float64{6.5236, 6.2841, 6.4017, 6.4461, 6.2414}
	syntaxLabelledStd   = []float64{0.7906, 0.9989, 0.9969, 0.8775, 1.0896}
)

// syntaxAnchorThreshold splits the label-free and labelled acquisition
// regimes on the observed HRG median.
const syntaxAnchorThreshold = 17.35

// ConstantImputer replaces NaN in column j with Values[j]. A nil Values
// fills with zero, the training mean of standardized data.
type ConstantImputer struct {
	Values []float64
}

var _ Transformer = (*ConstantImputer)(nil)

func (im *ConstantImputer) Transform(x *mat.Dense) *mat.Dense {
	n, p := x.Dims()
	out := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			v := x.At(i, j)
			if math.IsNaN(v) {
				if im.Values != nil {
					v = im.Values[j]
				} else {
					v = 0
				}
			}
			out.Set(i, j, v)
		}
	}
	return out
}

// NewSyntaxPipeline returns the frozen SYNTAX regressor and its
// preprocessing chain: cohort-aware standardization first, then mean
// imputation in standardized space.
func NewSyntaxPipeline() (Estimator, []Transformer) {
	scaler := &AutoScaler{
		AnchorCol: 0,
		Threshold: syntaxAnchorThreshold,
		LabelFree: ZScaler{Mean: syntaxLabelFreeMean, Std: syntaxLabelFreeStd},
		Labelled:  ZScaler{Mean: syntaxLabelledMean, Std: syntaxLabelledStd},
	}
	reg := &LinearRegressor{Coef: syntaxCoef, Intercept: syntaxIntercept}
	return reg, []Transformer{scaler, &ConstantImputer{}}
}

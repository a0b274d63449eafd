// PlaqueMS - Carotid Plaque Proteomics Analytics and Prediction
// Copyright 2026 Nikolaos Samperis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NikolaosSamperis/plaquems

package predict

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// MinMaxScaler rescales each feature with the affine map fitted at training
// time: x*scale + min. NaN entries pass through untouched.
type MinMaxScaler struct {
	Scale []float64
	Min   []float64
}

var _ Transformer = (*MinMaxScaler)(nil)

func (s *MinMaxScaler) Transform(x *mat.Dense) *mat.Dense {
	n, p := x.Dims()
	out := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			v := x.At(i, j)
			if math.IsNaN(v) {
				out.Set(i, j, v)
				continue
			}
			out.Set(i, j, v*s.Scale[j]+s.Min[j])
		}
	}
	return out
}

// ZScaler standardizes each feature with fixed per-feature means and
// standard deviations. NaN entries pass through untouched.
type ZScaler struct {
	Mean []float64
	Std  []float64
}

var _ Transformer = (*ZScaler)(nil)

func (s *ZScaler) Transform(x *mat.Dense) *mat.Dense {
	n, p := x.Dims()
	out := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			v := x.At(i, j)
			if math.IsNaN(v) {
				out.Set(i, j, v)
				continue
			}
			out.Set(i, j, (v-s.Mean[j])/s.Std[j])
		}
	}
	return out
}

// AutoScaler standardizes against one of two frozen training cohorts,
// chosen per request from the magnitude of the anchor feature: raw
// label-free abundances live around 2^25 and report medians near 28, while
// labelled ratio data sits an order of magnitude lower. The split point is
// the anchor median observed between the two training cohorts.
type AutoScaler struct {
	// AnchorCol is the column index of the anchor feature in the panel.
	AnchorCol int
	// Threshold separates the two acquisition regimes on the anchor median.
	Threshold float64
	LabelFree ZScaler
	Labelled  ZScaler
}

var _ Transformer = (*AutoScaler)(nil)

func (s *AutoScaler) Transform(x *mat.Dense) *mat.Dense {
	if s.labelFree(x) {
		return s.LabelFree.Transform(x)
	}
	return s.Labelled.Transform(x)
}

// labelFree reports whether the anchor column's observed median exceeds the
// regime threshold. An all-missing anchor defaults to the labelled cohort.
func (s *AutoScaler) labelFree(x *mat.Dense) bool {
	n, _ := x.Dims()
	obs := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if v := x.At(i, s.AnchorCol); !math.IsNaN(v) {
			obs = append(obs, v)
		}
	}
	if len(obs) == 0 {
		return false
	}
	sort.Float64s(obs)
	return stat.Quantile(0.5, stat.Empirical, obs, nil) > s.Threshold
}

// PlaqueMS - Carotid Plaque Proteomics Analytics and Prediction
// Copyright 2026 Nikolaos Samperis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NikolaosSamperis/plaquems

package predict

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// KNNImputer fills missing feature values from the K nearest training
// samples under the NaN-aware euclidean distance. The fitted training
// matrix travels with the artifact; transform never modifies it.
type KNNImputer struct {
	K   int
	Fit [][]float64
}

var _ Transformer = (*KNNImputer)(nil)

func (im *KNNImputer) Transform(x *mat.Dense) *mat.Dense {
	n, p := x.Dims()
	out := mat.NewDense(n, p, nil)
	out.Copy(x)

	means := im.columnMeans(p)
	for i := 0; i < n; i++ {
		row := out.RawRowView(i)
		if !hasNaN(row) {
			continue
		}
		neighbors := im.nearest(row)
		for j, v := range row {
			if !math.IsNaN(v) {
				continue
			}
			out.Set(i, j, im.neighborMean(neighbors, j, means[j]))
		}
	}
	return out
}

type neighbor struct {
	idx  int
	dist float64
}

// nearest ranks training samples by NaN-aware euclidean distance and keeps
// the K closest with a finite distance.
func (im *KNNImputer) nearest(row []float64) []neighbor {
	ranked := make([]neighbor, 0, len(im.Fit))
	for idx, sample := range im.Fit {
		d := nanEuclidean(row, sample)
		if math.IsNaN(d) {
			continue
		}
		ranked = append(ranked, neighbor{idx: idx, dist: d})
	}
	sort.Slice(ranked, func(a, b int) bool { return ranked[a].dist < ranked[b].dist })
	if len(ranked) > im.K {
		ranked = ranked[:im.K]
	}
	return ranked
}

// neighborMean averages column j over the neighbors that observed it,
// falling back to the fitted column mean when none did.
func (im *KNNImputer) neighborMean(neighbors []neighbor, j int, fallback float64) float64 {
	var sum float64
	var count int
	for _, nb := range neighbors {
		if v := im.Fit[nb.idx][j]; !math.IsNaN(v) {
			sum += v
			count++
		}
	}
	if count == 0 {
		return fallback
	}
	return sum / float64(count)
}

func (im *KNNImputer) columnMeans(p int) []float64 {
	means := make([]float64, p)
	for j := 0; j < p; j++ {
		var sum float64
		var count int
		for _, sample := range im.Fit {
			if v := sample[j]; !math.IsNaN(v) {
				sum += v
				count++
			}
		}
		if count > 0 {
			means[j] = sum / float64(count)
		}
	}
	return means
}

// nanEuclidean is the euclidean distance over coordinates observed in both
// vectors, scaled up by p/observed to stay comparable across missingness
// patterns. NaN when the vectors share no observed coordinate.
func nanEuclidean(a, b []float64) float64 {
	var sum float64
	var present int
	for j := range a {
		if math.IsNaN(a[j]) || math.IsNaN(b[j]) {
			continue
		}
		d := a[j] - b[j]
		sum += d * d
		present++
	}
	if present == 0 {
		return math.NaN()
	}
	return math.Sqrt(sum * float64(len(a)) / float64(present))
}

func hasNaN(row []float64) bool {
	for _, v := range row {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

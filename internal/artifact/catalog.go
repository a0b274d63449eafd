// PlaqueMS - Carotid Plaque Proteomics Analytics and Prediction
// Copyright 2026 Nikolaos Samperis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NikolaosSamperis/plaquems

// Package artifact loads fitted model bundles from disk and serves the
// model catalog. A bundle is an estimator plus its preprocessing chain,
// decoded once per process and cached; panels are ordered and the order is
// binding for every downstream matrix.
package artifact

import "fmt"

// Model describes one catalog entry. Panel order is the feature order the
// fitted artifacts were trained with.
type Model struct {
	Key        string   `json:"key"`
	Label      string   `json:"label"`
	Experiment string   `json:"experiment"`
	Panel      []string `json:"panel"`

	// dir is the artifact directory name under the store root. Empty for
	// pipelines that ship frozen in the binary.
	dir string
}

// SyntaxPanel is the ordered feature panel of the built-in SYNTAX score
// regressor.
var SyntaxPanel = []string{"HRG", "CP", "C4B", "F13A1", "VCAN"}

var catalog = []Model{
	{
		Key:        "cellular",
		Label:      "Cellular Proteome",
		Experiment: "Cellular Proteome Carotid Plaques (Vienna)",
		Panel:      []string{"OSTP", "FHL2", "CFAD", "PCBP2", "SPRL1", "PROZ", "VAPB", "AN32B"},
		dir:        "cellular",
	},
	{
		Key:        "core",
		Label:      "Core Matrisome",
		Experiment: "Core Matrisome Carotid Plaques (Vienna)",
		Panel: []string{
			"AHSG", "APOC1", "APOC2", "CD109", "COL2A1", "COL18A1", "CFHR1",
			"FTL", "SERPINE2", "IGHG1", "IGFBP3", "TIMP3", "PRDX2", "SERPINF1",
		},
		dir: "core",
	},
	{
		Key:        "soluble",
		Label:      "Soluble Matrisome",
		Experiment: "Soluble Matrisome Carotid Plaques (Vienna)",
		Panel:      []string{"APOC2", "BCAM", "SULF1", "KNG1", "LTBP2", "SERPINA5", "NOV"},
		dir:        "soluble",
	},
}

// Models returns the classifier catalog in stable order.
func Models() []Model {
	out := make([]Model, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup resolves a model key against the catalog.
func Lookup(key string) (Model, error) {
	for _, m := range catalog {
		if m.Key == key {
			return m, nil
		}
	}
	return Model{}, fmt.Errorf("%w: %q", ErrUnknownModel, key)
}

// PlaqueMS - Carotid Plaque Proteomics Analytics and Prediction
// Copyright 2026 Nikolaos Samperis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NikolaosSamperis/plaquems

/*
Package api implements the HTTP surface of the prediction service.

# Endpoints

Prediction:

	POST /api/v1/predict/calcification/upload   multipart: sample_file, log2, model_key
	POST /api/v1/predict/calcification/batch    JSON: model_key, log2, filter
	POST /api/v1/predict/syntax/upload          multipart: sample_file, log2
	POST /api/v1/predict/syntax/batch           JSON: log2, filter

Metadata:

	GET /api/v1/models                          classifier catalog with panels
	GET /api/v1/filters                         cohort filter values (cached)

Operations:

	GET /api/v1/health                          health with collaborator checks
	GET /api/v1/health/live                     process liveness
	GET /api/v1/health/ready                    readiness (cohort source must answer)
	GET /metrics                                Prometheus metrics

# Response Contract

Successful predictions return 200 with:

	{
	  "results":      [ ...one record per surviving subject... ],
	  "warnings":     [ ...one record per warn/skip subject... ],
	  "log2_applied": bool
	}

Both arrays are always present, possibly empty. Every error outcome uses a
flat body:

	{"error": "<message>"}

with 400 for caller mistakes (unreadable table, unknown model key,
non-positive abundances under log2, single subject above the skip
threshold), 502 for an unavailable cohort source and 500 for internal
failures.

# Pipeline

Upload mode: ingest the table (CSV, TSV or XLSX), reindex to the selected
model's panel, optionally log2-transform (all-or-nothing for the request),
apply the missing-data policy per subject, classify or score the survivors.
Batch mode replaces ingestion with a graph-source fetch: subject selection
by clinical filter, then core abundances with periphery fallback, and merges
each subject's clinical metadata into its result.
*/
package api

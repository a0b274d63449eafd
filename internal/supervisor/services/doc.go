// PlaqueMS - Carotid Plaque Proteomics Analytics and Prediction
// Copyright 2026 Nikolaos Samperis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NikolaosSamperis/plaquems

// Package services provides suture.Service wrappers for the long-running
// components supervised by the PlaqueMS tree.
//
//   - HTTPServerService adapts *http.Server's blocking ListenAndServe to
//     suture's context-aware lifecycle with graceful shutdown.
//   - RefreshService periodically rebuilds cached cohort views so the
//     filter-values cache stays warm across its TTL.
//
// Both services implement fmt.Stringer so supervisor events name them.
package services

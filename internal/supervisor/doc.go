// PlaqueMS - Carotid Plaque Proteomics Analytics and Prediction
// Copyright 2026 Nikolaos Samperis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NikolaosSamperis/plaquems

// Package supervisor provides the suture-based supervision tree that keeps
// the long-running parts of PlaqueMS alive.
//
// # Tree Structure
//
//	plaquems (root)
//	├── data-layer
//	│   └── filter cache warmer
//	└── api-layer
//	    └── HTTP server
//
// The two child supervisors isolate failures: a panicking cache warmer is
// restarted without disturbing the HTTP server, and vice versa. Restart
// policy follows suture's defaults (threshold 5, decay 30s, backoff 15s)
// unless overridden through TreeConfig.
//
// Supervisor events are logged through sutureslog, which bridges suture's
// event stream onto a standard slog.Logger.
//
// # Usage
//
//	tree, err := supervisor.NewSupervisorTree(logger, supervisor.DefaultTreeConfig())
//	if err != nil {
//	    return err
//	}
//	tree.AddAPIService(services.NewHTTPServerService(srv, cfg.Server.ShutdownTimeout))
//	tree.AddDataService(services.NewRefreshService("filters", handler, cfg.Cache.FiltersTTL))
//	return tree.Serve(ctx)
//
// Serve blocks until the context is canceled, at which point every service
// is asked to stop and given TreeConfig.ShutdownTimeout to comply.
package supervisor

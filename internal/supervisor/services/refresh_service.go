// PlaqueMS - Carotid Plaque Proteomics Analytics and Prediction
// Copyright 2026 Nikolaos Samperis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NikolaosSamperis/plaquems

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/NikolaosSamperis/plaquems/internal/logging"
)

// Refresher is anything that can rebuild a cached view of cohort data.
// The API handler's filter-values warmer satisfies this.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefreshService periodically invokes a Refresher so that cached cohort
// views (filter values, model catalogs) stay warm instead of expiring and
// forcing the next request to pay the graph round trip.
//
// The service refreshes once immediately on start, then on every tick.
// Refresh errors are logged and counted but do not stop the service; the
// next tick retries. The interval should match the cache TTL so entries
// are rebuilt just before they would expire.
type RefreshService struct {
	name      string
	refresher Refresher
	interval  time.Duration
}

// NewRefreshService creates a periodic refresh service.
// An interval of zero or less falls back to five minutes.
func NewRefreshService(name string, refresher Refresher, interval time.Duration) *RefreshService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &RefreshService{
		name:      fmt.Sprintf("refresh-%s", name),
		refresher: refresher,
		interval:  interval,
	}
}

// Serve implements suture.Service.
func (s *RefreshService) Serve(ctx context.Context) error {
	logging.Info().
		Str("service", s.name).
		Dur("interval", s.interval).
		Msg("Refresh service started")

	s.refresh(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.refresh(ctx)
		case <-ctx.Done():
			logging.Info().
				Str("service", s.name).
				Msg("Refresh service stopping")
			return ctx.Err()
		}
	}
}

func (s *RefreshService) refresh(ctx context.Context) {
	refreshCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	start := time.Now()
	if err := s.refresher.Refresh(refreshCtx); err != nil {
		// Transient source outages are expected; the next tick retries.
		logging.Warn().
			Err(err).
			Str("service", s.name).
			Msg("Refresh failed")
		return
	}

	logging.Debug().
		Str("service", s.name).
		Dur("duration", time.Since(start)).
		Msg("Refresh completed")
}

// String implements fmt.Stringer for logging.
func (s *RefreshService) String() string {
	return s.name
}

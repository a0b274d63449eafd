// PlaqueMS - Carotid Plaque Proteomics Analytics and Prediction
// Copyright 2026 Nikolaos Samperis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NikolaosSamperis/plaquems

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countingRefresher struct {
	calls atomic.Int64
	err   error
}

func (c *countingRefresher) Refresh(_ context.Context) error {
	c.calls.Add(1)
	return c.err
}

func TestRefreshService_RefreshesImmediatelyAndOnTick(t *testing.T) {
	refresher := &countingRefresher{}
	svc := NewRefreshService("filters", refresher, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	deadline := time.After(5 * time.Second)
	for refresher.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("refresher called %d times, want at least 3", refresher.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestRefreshService_SurvivesRefreshErrors(t *testing.T) {
	refresher := &countingRefresher{err: errors.New("source unavailable")}
	svc := NewRefreshService("filters", refresher, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	// Errors must not stop the loop; later ticks keep retrying.
	deadline := time.After(5 * time.Second)
	for refresher.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("refresher called %d times, want at least 2", refresher.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done
}

func TestNewRefreshService_Defaults(t *testing.T) {
	svc := NewRefreshService("filters", &countingRefresher{}, 0)
	if svc.interval != 5*time.Minute {
		t.Errorf("interval = %v, want 5m default", svc.interval)
	}
	if svc.String() != "refresh-filters" {
		t.Errorf("String() = %q, want %q", svc.String(), "refresh-filters")
	}
}

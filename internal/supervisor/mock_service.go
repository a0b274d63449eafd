// PlaqueMS - Carotid Plaque Proteomics Analytics and Prediction
// Copyright 2026 Nikolaos Samperis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NikolaosSamperis/plaquems

package supervisor

import (
	"context"
	"sync/atomic"
)

// MockService is a configurable test service for exercising supervisor
// behavior. It counts invocations and can be told to fail a fixed number
// of times before running cleanly.
type MockService struct {
	name       string
	startCount atomic.Int64
	stopCount  atomic.Int64
	failUntil  int64
	failErr    error
	started    chan struct{}
}

// NewMockService creates a mock service with the given name.
func NewMockService(name string) *MockService {
	return &MockService{
		name:    name,
		started: make(chan struct{}, 16),
	}
}

// FailTimes configures the service to return err for the first n invocations.
func (m *MockService) FailTimes(n int64, err error) *MockService {
	m.failUntil = n
	m.failErr = err
	return m
}

// Serve implements suture.Service.
func (m *MockService) Serve(ctx context.Context) error {
	count := m.startCount.Add(1)
	select {
	case m.started <- struct{}{}:
	default:
	}

	if count <= m.failUntil {
		return m.failErr
	}

	<-ctx.Done()
	m.stopCount.Add(1)
	return ctx.Err()
}

// StartCount returns the number of times Serve has been invoked.
func (m *MockService) StartCount() int64 {
	return m.startCount.Load()
}

// StopCount returns the number of clean shutdowns.
func (m *MockService) StopCount() int64 {
	return m.stopCount.Load()
}

// Started returns a channel that receives on each Serve invocation.
func (m *MockService) Started() <-chan struct{} {
	return m.started
}

func (m *MockService) String() string {
	return m.name
}

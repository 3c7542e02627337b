// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

package sync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/attendsync/internal/cache"
	"github.com/tomtom215/attendsync/internal/config"
	"github.com/tomtom215/attendsync/internal/device"
	"github.com/tomtom215/attendsync/internal/models"
)

// testNow is the fixed "now" used by manager tests: 2026-03-10 12:00 UTC.
var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func at(day, clock string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04:05", day+" "+clock, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func punch(userID, day, clock string) models.PunchEvent {
	return models.PunchEvent{UserID: userID, RecordTime: at(day, clock)}
}

// step is one scripted answer of the fake terminal.
type step struct {
	openErr error
	readErr error
	events  []models.PunchEvent
}

// fakeSource replays steps in order and repeats the last one when exhausted.
type fakeSource struct {
	mu     sync.Mutex
	steps  []step
	opens  int
	closes int
	// gate, when set, blocks Open until it is closed.
	gate    chan struct{}
	entered chan struct{}
}

func (f *fakeSource) Open(ctx context.Context) (device.Session, error) {
	if f.entered != nil {
		select {
		case f.entered <- struct{}{}:
		default:
		}
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	idx := f.opens
	if idx >= len(f.steps) {
		idx = len(f.steps) - 1
	}
	f.opens++
	s := f.steps[idx]
	if s.openErr != nil {
		return nil, s.openErr
	}
	return &fakeSession{source: f, step: s}, nil
}

func (f *fakeSource) counts() (opens, closes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opens, f.closes
}

type fakeSession struct {
	source *fakeSource
	step   step
}

func (s *fakeSession) ReadEvents(_ context.Context) (*device.Batch, error) {
	if s.step.readErr != nil {
		return nil, s.step.readErr
	}
	return &device.Batch{Events: s.step.events}, nil
}

func (s *fakeSession) Info(_ context.Context) (*models.DeviceInfo, error) {
	return &models.DeviceInfo{}, nil
}

func (s *fakeSession) Users(_ context.Context) ([]models.DeviceUser, error) {
	return []models.DeviceUser{}, nil
}

func (s *fakeSession) Close() error {
	s.source.mu.Lock()
	defer s.source.mu.Unlock()
	s.source.closes++
	return nil
}

// fakeStore records ReconcileDay calls.
type fakeStore struct {
	mu    sync.Mutex
	calls []models.AttendanceSnapshot
	err   error
	// block, when set, holds ReconcileDay until it is closed.
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeStore) ReconcileDay(_ context.Context, day string, summaries []models.AttendanceSummary) (models.ReconcileResult, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, models.AttendanceSnapshot{Date: day, Summaries: summaries})
	if f.err != nil {
		return models.ReconcileResult{Date: day}, f.err
	}
	return models.ReconcileResult{Date: day, Inserted: len(summaries)}, nil
}

func (f *fakeStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testSyncConfig() config.SyncConfig {
	return config.SyncConfig{
		RetryAttempts:   3,
		RetryDelay:      time.Millisecond,
		RetryMaxElapsed: 5 * time.Second,
	}
}

func newTestCache() *cache.AttendanceCache {
	return cache.NewAttendanceCache(time.Hour, cache.WithClock(func() time.Time { return testNow }))
}

// newTestManager returns a manager whose clock and cache clock are both
// pinned to testNow.
func newTestManager(t *testing.T, source device.Source, store Store, opts ...Option) (*Manager, *cache.AttendanceCache) {
	t.Helper()
	attendance := newTestCache()
	opts = append([]Option{
		WithClock(func() time.Time { return testNow }),
		WithLocation(time.UTC),
	}, opts...)
	m := NewManager(testSyncConfig(), source, attendance, store, opts...)
	t.Cleanup(m.Close)
	return m, attendance
}

var errBoom = errors.New("boom")

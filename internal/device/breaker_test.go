// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

package device

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/attendsync/internal/config"
	"github.com/tomtom215/attendsync/internal/metrics"
	"github.com/tomtom215/attendsync/internal/models"
)

// fakeSource is a scripted Source for breaker tests.
type fakeSource struct {
	openErr error
	readErr error
	opens   atomic.Int32
	closes  atomic.Int32
}

func (f *fakeSource) Open(context.Context) (Session, error) {
	f.opens.Add(1)
	if f.openErr != nil {
		return nil, f.openErr
	}
	return &fakeSession{src: f}, nil
}

type fakeSession struct{ src *fakeSource }

func (s *fakeSession) ReadEvents(context.Context) (*Batch, error) {
	if s.src.readErr != nil {
		return nil, s.src.readErr
	}
	return &Batch{Events: []models.PunchEvent{{UserID: "1", RecordTime: time.Now()}}}, nil
}

func (s *fakeSession) Info(context.Context) (*models.DeviceInfo, error) {
	return &models.DeviceInfo{UserCounts: 1}, nil
}

func (s *fakeSession) Users(context.Context) ([]models.DeviceUser, error) {
	return []models.DeviceUser{{UID: 1, UserID: "1"}}, nil
}

func (s *fakeSession) Close() error {
	s.src.closes.Add(1)
	return nil
}

func testBreakerConfig() config.BreakerConfig {
	return config.BreakerConfig{
		Enabled:      true,
		MinRequests:  2,
		FailureRatio: 0.5,
		Interval:     time.Minute,
		Timeout:      time.Minute,
	}
}

func TestCircuitBreakerSource_OpensAfterFailures(t *testing.T) {
	src := &fakeSource{openErr: fmt.Errorf("%w: connection refused", ErrSessionOpen)}
	cbs := NewCircuitBreakerSource(src, testBreakerConfig())

	if cbs.State() != "closed" {
		t.Fatalf("initial state = %s, want closed", cbs.State())
	}

	for i := 0; i < 2; i++ {
		if _, err := cbs.Open(context.Background()); !errors.Is(err, ErrSessionOpen) {
			t.Fatalf("attempt %d error = %v, want ErrSessionOpen", i, err)
		}
	}

	if cbs.State() != "open" {
		t.Fatalf("state = %s, want open", cbs.State())
	}

	rejectedBefore := testutil.ToFloat64(metrics.CircuitBreakerRequests.WithLabelValues(BreakerName, "rejected"))
	_, err := cbs.Open(context.Background())
	if !IsRejected(err) {
		t.Fatalf("Open() on open breaker = %v, want rejection", err)
	}
	if Retryable(err) {
		t.Error("breaker rejection must not be retryable")
	}
	if src.opens.Load() != 2 {
		t.Errorf("source opened %d times, want 2", src.opens.Load())
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerRequests.WithLabelValues(BreakerName, "rejected")) - rejectedBefore; got != 1 {
		t.Errorf("rejected delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues(BreakerName)); got != 2 {
		t.Errorf("state gauge = %v, want 2", got)
	}
}

func TestCircuitBreakerSource_MalformedDoesNotTrip(t *testing.T) {
	src := &fakeSource{readErr: fmt.Errorf("%w: data is not an array", ErrMalformedPayload)}
	cbs := NewCircuitBreakerSource(src, testBreakerConfig())

	for i := 0; i < 5; i++ {
		sess, err := cbs.Open(context.Background())
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if _, err := sess.ReadEvents(context.Background()); !errors.Is(err, ErrMalformedPayload) {
			t.Fatalf("ReadEvents() error = %v", err)
		}
		if err := sess.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
	}

	if cbs.State() != "closed" {
		t.Errorf("state = %s, want closed", cbs.State())
	}
	if src.closes.Load() != 5 {
		t.Errorf("closes = %d, want 5", src.closes.Load())
	}
}

func TestCircuitBreakerSource_PassesThroughResults(t *testing.T) {
	cbs := NewCircuitBreakerSource(&fakeSource{}, testBreakerConfig())

	sess, err := cbs.Open(context.Background())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer func() { _ = sess.Close() }()

	batch, err := sess.ReadEvents(context.Background())
	if err != nil || len(batch.Events) != 1 {
		t.Fatalf("ReadEvents() = %v, %v", batch, err)
	}
	info, err := sess.Info(context.Background())
	if err != nil || info.UserCounts != 1 {
		t.Fatalf("Info() = %v, %v", info, err)
	}
	users, err := sess.Users(context.Background())
	if err != nil || len(users) != 1 {
		t.Fatalf("Users() = %v, %v", users, err)
	}
}

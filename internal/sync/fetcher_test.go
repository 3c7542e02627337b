// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

package sync

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/attendsync/internal/device"
	"github.com/tomtom215/attendsync/internal/models"
)

func TestFetcher_TwoFailuresThenSuccess(t *testing.T) {
	t.Parallel()

	events := []models.PunchEvent{punch("u1", "2026-03-10", "08:00:00")}
	source := &fakeSource{steps: []step{
		{readErr: device.ErrNoData},
		{readErr: fmt.Errorf("%w: timeout", device.ErrRead)},
		{events: events},
	}}

	got, err := NewFetcher(source, testSyncConfig()).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(got) != 1 || got[0].UserID != "u1" {
		t.Errorf("Fetch() = %+v, want the third attempt's events", got)
	}

	opens, closes := source.counts()
	if opens != 3 {
		t.Errorf("opens = %d, want 3", opens)
	}
	if closes != opens {
		t.Errorf("closes = %d, want %d (every session closed)", closes, opens)
	}
}

func TestFetcher_Exhausted(t *testing.T) {
	t.Parallel()

	source := &fakeSource{steps: []step{{readErr: device.ErrNoData}}}

	_, err := NewFetcher(source, testSyncConfig()).Fetch(context.Background())
	if !errors.Is(err, device.ErrNoData) {
		t.Fatalf("Fetch() error = %v, want ErrNoData", err)
	}

	opens, closes := source.counts()
	if opens != 3 {
		t.Errorf("opens = %d, want 3", opens)
	}
	if closes != 3 {
		t.Errorf("closes = %d, want 3", closes)
	}
}

func TestFetcher_PermanentErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		step       step
		wantErr    error
		wantCloses int
	}{
		{
			name:       "malformed payload",
			step:       step{readErr: fmt.Errorf("%w: got object", device.ErrMalformedPayload)},
			wantErr:    device.ErrMalformedPayload,
			wantCloses: 1,
		},
		{
			name:       "breaker open",
			step:       step{openErr: gobreaker.ErrOpenState},
			wantErr:    gobreaker.ErrOpenState,
			wantCloses: 0,
		},
		{
			name:       "canceled",
			step:       step{readErr: context.Canceled},
			wantErr:    context.Canceled,
			wantCloses: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			source := &fakeSource{steps: []step{tt.step}}
			_, err := NewFetcher(source, testSyncConfig()).Fetch(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Fetch() error = %v, want %v", err, tt.wantErr)
			}
			opens, closes := source.counts()
			if opens != 1 {
				t.Errorf("opens = %d, want 1 (no retry)", opens)
			}
			if closes != tt.wantCloses {
				t.Errorf("closes = %d, want %d", closes, tt.wantCloses)
			}
		})
	}
}

func TestFetcher_OpenFailureRetried(t *testing.T) {
	t.Parallel()

	source := &fakeSource{steps: []step{
		{openErr: fmt.Errorf("%w: connection refused", device.ErrSessionOpen)},
		{events: []models.PunchEvent{}},
	}}

	got, err := NewFetcher(source, testSyncConfig()).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Fetch() = %#v, want empty non-nil slice", got)
	}

	opens, closes := source.counts()
	if opens != 2 || closes != 1 {
		t.Errorf("opens/closes = %d/%d, want 2/1", opens, closes)
	}
}

func TestNewFetcher_AttemptFloor(t *testing.T) {
	t.Parallel()

	cfg := testSyncConfig()
	cfg.RetryAttempts = 0
	source := &fakeSource{steps: []step{{readErr: device.ErrNoData}}}

	if _, err := NewFetcher(source, cfg).Fetch(context.Background()); err == nil {
		t.Fatal("Fetch() error = nil, want failure")
	}
	if opens, _ := source.counts(); opens != 1 {
		t.Errorf("opens = %d, want 1", opens)
	}
}

func TestAttemptResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{device.ErrNoData, "no_data"},
		{fmt.Errorf("%w: x", device.ErrSessionOpen), "open_failed"},
		{device.ErrMalformedPayload, "malformed"},
		{gobreaker.ErrTooManyRequests, "rejected"},
		{fmt.Errorf("%w: 502", device.ErrRead), "read_failed"},
	}
	for _, tt := range tests {
		if got := attemptResult(tt.err); got != tt.want {
			t.Errorf("attemptResult(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/tomtom215/attendsync/internal/config"
	"github.com/tomtom215/attendsync/internal/device"
	"github.com/tomtom215/attendsync/internal/logging"
	"github.com/tomtom215/attendsync/internal/metrics"
	"github.com/tomtom215/attendsync/internal/models"
)

// Fetcher reads the complete event list from the terminal with a bounded
// number of attempts.
type Fetcher struct {
	source     device.Source
	attempts   uint
	delay      time.Duration
	maxElapsed time.Duration
}

// NewFetcher builds a fetcher from the retry settings in cfg.
// A non-positive attempt count is treated as a single attempt.
func NewFetcher(source device.Source, cfg config.SyncConfig) *Fetcher {
	attempts := uint(1)
	if cfg.RetryAttempts > 1 {
		attempts = uint(cfg.RetryAttempts)
	}
	return &Fetcher{
		source:     source,
		attempts:   attempts,
		delay:      cfg.RetryDelay,
		maxElapsed: cfg.RetryMaxElapsed,
	}
}

// Fetch returns every event the terminal holds.
//
// Open, read and no-data failures are retried with a fixed delay until the
// attempt or elapsed-time cap is reached. A malformed payload, an open
// circuit breaker or a canceled context ends the cycle immediately.
// The session opened by each attempt is closed before the next one starts.
func (f *Fetcher) Fetch(ctx context.Context) ([]models.PunchEvent, error) {
	start := time.Now()
	attempt := 0

	operation := func() ([]models.PunchEvent, error) {
		attempt++
		batch, err := f.readOnce(ctx)
		if err != nil {
			metrics.RecordDeviceAttempt(attemptResult(err), 0)
			if !device.Retryable(err) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		metrics.RecordDeviceAttempt("success", len(batch.Events))
		return batch.Events, nil
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(backoff.NewConstantBackOff(f.delay)),
		backoff.WithMaxTries(f.attempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			logging.Ctx(ctx).Warn().
				Err(err).
				Int("attempt", attempt).
				Uint("max_attempts", f.attempts).
				Dur("delay", next).
				Msg("Device read failed, retrying")
		}),
	}
	if f.maxElapsed > 0 {
		opts = append(opts, backoff.WithMaxElapsedTime(f.maxElapsed))
	}

	events, err := backoff.Retry(ctx, operation, opts...)
	duration := time.Since(start)
	if err != nil {
		outcome := "exhausted"
		if !device.Retryable(err) {
			outcome = "permanent"
		}
		metrics.RecordFetchCycle(outcome, duration)
		return nil, fmt.Errorf("fetch attendance after %d attempt(s): %w", attempt, err)
	}

	metrics.RecordFetchCycle("success", duration)
	if events == nil {
		events = []models.PunchEvent{}
	}
	return events, nil
}

// readOnce runs one open/read/close cycle.
func (f *Fetcher) readOnce(ctx context.Context) (*device.Batch, error) {
	session, err := f.source.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			logging.Ctx(ctx).Warn().Err(cerr).Msg("Failed to close device session")
		}
	}()

	batch, err := session.ReadEvents(ctx)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, device.ErrNoData
	}
	if batch.Skipped > 0 {
		metrics.DeviceEventsSkipped.Add(float64(batch.Skipped))
		logging.Ctx(ctx).Warn().Int("skipped", batch.Skipped).Msg("Dropped invalid punch records")
	}
	return batch, nil
}

func attemptResult(err error) string {
	switch {
	case errors.Is(err, device.ErrNoData):
		return "no_data"
	case errors.Is(err, device.ErrSessionOpen):
		return "open_failed"
	case errors.Is(err, device.ErrMalformedPayload):
		return "malformed"
	case device.IsRejected(err):
		return "rejected"
	default:
		return "read_failed"
	}
}

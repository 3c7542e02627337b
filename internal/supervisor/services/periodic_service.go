// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/attendsync/internal/logging"
)

// DefaultInterval is used when a PeriodicService is built with a
// non-positive interval.
const DefaultInterval = time.Minute

// Task is one scheduled unit of work.
type Task func(ctx context.Context) error

// PeriodicService runs a Task on a fixed interval.
//
// Runs never overlap: each run executes in its own goroutine and a tick that
// fires while it is still going is dropped with a log line. A failing task
// is logged and retried on the next tick; it never stops the service.
//
// Example usage:
//
//	refresh := services.NewPeriodicService("attendance-refresh", time.Minute, true,
//	    func(ctx context.Context) error { _, err := manager.Refresh(ctx); return err })
//	tree.AddPipelineService(refresh)
type PeriodicService struct {
	name       string
	interval   time.Duration
	runOnStart bool
	task       Task
	logger     zerolog.Logger

	running  atomic.Bool
	runs     atomic.Int64
	skipped  atomic.Int64
	failures atomic.Int64
}

// NewPeriodicService creates a periodic service. When runOnStart is set the
// first run starts as soon as Serve is called.
func NewPeriodicService(name string, interval time.Duration, runOnStart bool, task Task) *PeriodicService {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &PeriodicService{
		name:       name,
		interval:   interval,
		runOnStart: runOnStart,
		task:       task,
		logger:     logging.WithComponent(name),
	}
}

// Serve implements suture.Service. It returns once ctx is canceled and any
// in-flight run has finished.
func (s *PeriodicService) Serve(ctx context.Context) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	s.logger.Info().
		Dur("interval", s.interval).
		Bool("run_on_start", s.runOnStart).
		Msg("Periodic service starting")

	if s.runOnStart {
		s.trigger(ctx, &wg)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Periodic service shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.trigger(ctx, &wg)
		}
	}
}

// trigger starts a run unless one is already in progress.
func (s *PeriodicService) trigger(ctx context.Context, wg *sync.WaitGroup) bool {
	if !s.running.CompareAndSwap(false, true) {
		s.skipped.Add(1)
		s.logger.Warn().Msg("Previous run still in progress, skipping this tick")
		return false
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer s.running.Store(false)
		s.run(ctx)
	}()
	return true
}

func (s *PeriodicService) run(ctx context.Context) {
	runCtx := logging.ContextWithNewCorrelationID(ctx)
	start := time.Now()
	s.runs.Add(1)

	err := s.safeTask(runCtx)
	if err != nil {
		s.failures.Add(1)
		logging.Ctx(runCtx).Warn().
			Err(err).
			Str("service", s.name).
			Dur("duration", time.Since(start)).
			Msg("Scheduled run failed")
		return
	}
	logging.Ctx(runCtx).Debug().
		Str("service", s.name).
		Dur("duration", time.Since(start)).
		Msg("Scheduled run complete")
}

// safeTask converts a panic in the task into an error so one bad run cannot
// kill the process from a goroutine suture does not supervise.
func (s *PeriodicService) safeTask(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return s.task(ctx)
}

// Running reports whether a run is in progress.
func (s *PeriodicService) Running() bool {
	return s.running.Load()
}

// Runs returns the number of runs started.
func (s *PeriodicService) Runs() int64 {
	return s.runs.Load()
}

// Skipped returns the number of ticks dropped because a run was in progress.
func (s *PeriodicService) Skipped() int64 {
	return s.skipped.Load()
}

// Failures returns the number of runs that returned an error.
func (s *PeriodicService) Failures() int64 {
	return s.failures.Load()
}

// String implements fmt.Stringer for suture logs.
func (s *PeriodicService) String() string {
	return s.name
}

// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/attendsync/internal/cache"
	"github.com/tomtom215/attendsync/internal/config"
	"github.com/tomtom215/attendsync/internal/device"
	"github.com/tomtom215/attendsync/internal/logging"
	"github.com/tomtom215/attendsync/internal/metrics"
	"github.com/tomtom215/attendsync/internal/models"
)

var (
	// ErrRefreshFailed wraps the device error of a refresh that wrote nothing.
	ErrRefreshFailed = errors.New("attendance refresh failed")

	// ErrReconcileBusy is returned when a reconciliation is already running.
	ErrReconcileBusy = errors.New("reconciliation already running")

	// ErrNothingToReconcile is returned when the cache is absent or empty.
	ErrNothingToReconcile = errors.New("no cached attendance to reconcile")

	// ErrStaleSnapshot is returned when the snapshot belongs to another date.
	ErrStaleSnapshot = errors.New("cached attendance is for a different date")
)

// Skipped reports whether err means a reconciliation was skipped rather
// than failed.
func Skipped(err error) bool {
	return errors.Is(err, ErrReconcileBusy) ||
		errors.Is(err, ErrNothingToReconcile) ||
		errors.Is(err, ErrStaleSnapshot)
}

// Store persists daily summaries.
type Store interface {
	ReconcileDay(ctx context.Context, day string, summaries []models.AttendanceSummary) (models.ReconcileResult, error)
}

// Status is a point-in-time view of the pipeline for health checks.
type Status struct {
	LastRefresh        time.Time              `json:"lastRefresh,omitempty"`
	LastRefreshError   string                 `json:"lastRefreshError,omitempty"`
	LastReconcile      time.Time              `json:"lastReconcile,omitempty"`
	LastReconcileError string                 `json:"lastReconcileError,omitempty"`
	LastResult         models.ReconcileResult `json:"lastResult"`
	CachedDate         string                 `json:"cachedDate,omitempty"`
	CachedUsers        int                    `json:"cachedUsers"`
	CacheExpiresAt     time.Time              `json:"cacheExpiresAt,omitempty"`
	CacheHits          int64                  `json:"cacheHits"`
	CacheMisses        int64                  `json:"cacheMisses"`
	CacheEvictions     int64                  `json:"cacheEvictions"`
}

// Option configures a Manager.
type Option func(*Manager)

// WithNotifier publishes every successful refresh on n.
func WithNotifier(n *Notifier) Option {
	return func(m *Manager) {
		m.notifier = n
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithLocation sets the zone that decides what "today" is.
func WithLocation(loc *time.Location) Option {
	return func(m *Manager) {
		m.loc = loc
	}
}

// Manager owns the refresh and reconcile tasks and the fallback read used by
// the HTTP layer.
type Manager struct {
	fetcher  *Fetcher
	cache    *cache.AttendanceCache
	store    Store
	notifier *Notifier
	loc      *time.Location
	now      func() time.Time

	refreshGroup singleflight.Group
	reconcileMu  sync.Mutex

	// life bounds shared refreshes; it is canceled only by Close.
	life   context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	status Status
}

// NewManager wires the pipeline. The cache and the store are owned by the
// caller and may be shared with the HTTP layer.
func NewManager(cfg config.SyncConfig, source device.Source, attendance *cache.AttendanceCache, store Store, opts ...Option) *Manager {
	life, cancel := context.WithCancel(context.Background())
	m := &Manager{
		fetcher: NewFetcher(source, cfg),
		cache:   attendance,
		store:   store,
		loc:     time.Local,
		now:     time.Now,
		life:    life,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(m)
	}
	if !cfg.ReconcileOnRefresh {
		m.notifier = nil
	}

	logging.Info().
		Int("retry_attempts", cfg.RetryAttempts).
		Dur("retry_delay", cfg.RetryDelay).
		Dur("retry_max_elapsed", cfg.RetryMaxElapsed).
		Bool("reconcile_on_refresh", m.notifier != nil).
		Str("timezone", m.loc.String()).
		Msg("Sync manager config loaded")

	return m
}

// Close aborts in-flight refreshes.
func (m *Manager) Close() {
	m.cancel()
}

// Today returns the calendar date the pipeline currently targets.
func (m *Manager) Today() string {
	return dayOf(m.now(), m.loc)
}

// Refresh fetches the terminal's events, aggregates today's summaries and
// replaces the cache entry. Concurrent calls share a single device session.
// On failure the cache is left untouched.
func (m *Manager) Refresh(ctx context.Context) (models.AttendanceSnapshot, error) {
	if logging.CorrelationIDFromContext(ctx) == "" {
		ctx = logging.ContextWithNewCorrelationID(ctx)
	}

	ch := m.refreshGroup.DoChan("refresh", func() (interface{}, error) {
		// Detached from the caller so one disconnecting HTTP client cannot
		// abort a refresh other callers are waiting on.
		work, cancel := context.WithCancel(context.WithoutCancel(ctx))
		stop := context.AfterFunc(m.life, cancel)
		defer stop()
		defer cancel()
		return m.refresh(work)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return models.AttendanceSnapshot{}, res.Err
		}
		snap, _ := res.Val.(models.AttendanceSnapshot)
		return snap.Clone(), nil
	case <-ctx.Done():
		return models.AttendanceSnapshot{}, ctx.Err()
	}
}

func (m *Manager) refresh(ctx context.Context) (models.AttendanceSnapshot, error) {
	log := logging.Ctx(ctx)
	log.Debug().Msg("Attendance refresh started")

	events, err := m.fetcher.Fetch(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Attendance refresh failed, cache left unchanged")
		m.mu.Lock()
		m.status.LastRefreshError = err.Error()
		m.mu.Unlock()
		return models.AttendanceSnapshot{}, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}

	now := m.now()
	snap := models.AttendanceSnapshot{
		Date:        dayOf(now, m.loc),
		Summaries:   Aggregate(events, now, m.loc),
		GeneratedAt: now,
	}
	m.cache.Set(snap)

	m.mu.Lock()
	m.status.LastRefresh = now
	m.status.LastRefreshError = ""
	m.status.CachedDate = snap.Date
	m.status.CachedUsers = len(snap.Summaries)
	m.mu.Unlock()

	log.Info().
		Int("events", len(events)).
		Int("users", len(snap.Summaries)).
		Str("date", snap.Date).
		Msg("Attendance cache refreshed")

	if m.notifier != nil {
		if err := m.notifier.PublishRefreshed(ctx, snap); err != nil {
			log.Warn().Err(err).Msg("Failed to publish refresh notification")
		}
	}
	return snap, nil
}

// TodayAttendance returns today's summaries for the serving boundary.
//
// A live cache entry for today is returned as is. When the entry has
// expired or belongs to another date, one synchronous refresh runs first.
// The result is never nil; a refresh that finds nobody yields an empty list.
func (m *Manager) TodayAttendance(ctx context.Context) ([]models.AttendanceSummary, error) {
	if snap, ok := m.cache.Get(); ok && snap.Date == m.Today() {
		return nonNil(snap.Summaries), nil
	}

	logging.Ctx(ctx).Info().Msg("Attendance cache miss, refreshing from device")
	snap, err := m.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	return nonNil(snap.Summaries), nil
}

// Reconcile writes the cached summaries for today to the store. It skips
// without touching the store when the cache is absent, empty or for another
// date, and when another reconciliation is still running.
func (m *Manager) Reconcile(ctx context.Context) (models.ReconcileResult, error) {
	if !m.reconcileMu.TryLock() {
		return m.skip(ctx, "skipped_overlap", ErrReconcileBusy)
	}
	defer m.reconcileMu.Unlock()

	snap, ok := m.cache.Get()
	if !ok {
		return m.skip(ctx, "skipped_empty", ErrNothingToReconcile)
	}
	return m.reconcile(ctx, snap)
}

// ReconcileSnapshot writes a specific snapshot, typically the one announced
// by a refresh notification. It follows the same skip rules as Reconcile.
func (m *Manager) ReconcileSnapshot(ctx context.Context, snap models.AttendanceSnapshot) (models.ReconcileResult, error) {
	if !m.reconcileMu.TryLock() {
		return m.skip(ctx, "skipped_overlap", ErrReconcileBusy)
	}
	defer m.reconcileMu.Unlock()
	return m.reconcile(ctx, snap)
}

// HandleRefreshed reconciles the snapshot carried by a refresh notification.
func (m *Manager) HandleRefreshed(ctx context.Context, msg *message.Message) error {
	ctx, snap, err := DecodeSnapshot(ctx, msg)
	if err != nil {
		return err
	}
	_, err = m.ReconcileSnapshot(ctx, snap)
	if Skipped(err) {
		return nil
	}
	return err
}

// SyncNow refreshes and then reconciles the resulting snapshot, waiting for
// any reconciliation already in progress instead of skipping.
func (m *Manager) SyncNow(ctx context.Context) (models.ReconcileResult, error) {
	if logging.CorrelationIDFromContext(ctx) == "" {
		ctx = logging.ContextWithNewCorrelationID(ctx)
	}
	snap, err := m.Refresh(ctx)
	if err != nil {
		return models.ReconcileResult{Date: m.Today()}, err
	}

	m.reconcileMu.Lock()
	defer m.reconcileMu.Unlock()
	return m.reconcile(ctx, snap)
}

// reconcile must be called with reconcileMu held.
func (m *Manager) reconcile(ctx context.Context, snap models.AttendanceSnapshot) (models.ReconcileResult, error) {
	if logging.CorrelationIDFromContext(ctx) == "" {
		ctx = logging.ContextWithNewCorrelationID(ctx)
	}
	log := logging.Ctx(ctx)

	today := m.Today()
	if snap.Empty() {
		return m.skip(ctx, "skipped_empty", ErrNothingToReconcile)
	}
	if snap.Date != today {
		return m.skip(ctx, "skipped_stale", fmt.Errorf("%w: cached %s, today %s", ErrStaleSnapshot, snap.Date, today))
	}

	start := time.Now()
	result, err := m.store.ReconcileDay(ctx, snap.Date, snap.Summaries)
	duration := time.Since(start)
	if err != nil {
		metrics.RecordReconcile("failure", duration, 0, 0)
		log.Error().Err(err).Str("date", snap.Date).Int("users", len(snap.Summaries)).Msg("Attendance reconciliation failed, transaction rolled back")
		m.mu.Lock()
		m.status.LastReconcileError = err.Error()
		m.mu.Unlock()
		return result, fmt.Errorf("reconcile %s: %w", snap.Date, err)
	}

	metrics.RecordReconcile("success", duration, result.Inserted, result.Updated)
	m.mu.Lock()
	m.status.LastReconcile = m.now()
	m.status.LastReconcileError = ""
	m.status.LastResult = result
	m.mu.Unlock()

	log.Info().
		Str("date", result.Date).
		Int("inserted", result.Inserted).
		Int("updated", result.Updated).
		Dur("duration", duration).
		Msg("Attendance reconciled")
	return result, nil
}

func (m *Manager) skip(ctx context.Context, outcome string, reason error) (models.ReconcileResult, error) {
	metrics.RecordReconcile(outcome, 0, 0, 0)
	logging.Ctx(ctx).Info().Str("reason", reason.Error()).Msg("Attendance reconciliation skipped")
	return models.ReconcileResult{Date: m.Today()}, reason
}

// Status returns a copy of the pipeline status, including when the cached
// snapshot lapses and the cache's lookup counters.
func (m *Manager) Status() Status {
	m.mu.RLock()
	status := m.status
	m.mu.RUnlock()

	if exp, ok := m.cache.ExpiresAt(); ok {
		status.CacheExpiresAt = exp
	}
	stats := m.cache.Stats()
	status.CacheHits = stats.Hits
	status.CacheMisses = stats.Misses
	status.CacheEvictions = stats.Evictions
	return status
}

func nonNil(s []models.AttendanceSummary) []models.AttendanceSummary {
	if s == nil {
		return []models.AttendanceSummary{}
	}
	return s
}

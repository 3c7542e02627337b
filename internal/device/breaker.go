// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

package device

import (
	"context"
	"errors"
	"fmt"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/attendsync/internal/config"
	"github.com/tomtom215/attendsync/internal/logging"
	"github.com/tomtom215/attendsync/internal/metrics"
	"github.com/tomtom215/attendsync/internal/models"
)

// BreakerName labels the device breaker in logs and metrics.
const BreakerName = "device-gateway"

// CircuitBreakerSource wraps a Source so opens and reads share one breaker.
// A malformed payload proves the gateway is reachable and does not count as
// a failure; neither does caller cancellation.
type CircuitBreakerSource struct {
	source Source
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string
}

// NewCircuitBreakerSource wraps source with a breaker tuned by cfg.
func NewCircuitBreakerSource(source Source, cfg config.BreakerConfig) *CircuitBreakerSource {
	name := BreakerName

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0) // 0 = closed
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1, // one trial session in half-open state
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= cfg.FailureRatio
			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening device circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},

		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrMalformedPayload) ||
				errors.Is(err, context.Canceled)
		},
	})

	return &CircuitBreakerSource{source: source, cb: cb, name: name}
}

// IsRejected reports whether err came from an open (or saturated half-open) breaker.
func IsRejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// State returns the breaker state as "closed", "half-open" or "open".
func (s *CircuitBreakerSource) State() string {
	return stateToString(s.cb.State())
}

// Open opens a session on the wrapped source through the breaker.
func (s *CircuitBreakerSource) Open(ctx context.Context) (Session, error) {
	sess, err := castResult[Session](s.execute(func() (interface{}, error) {
		return s.source.Open(ctx)
	}))
	if err != nil {
		return nil, err
	}
	return &breakerSession{inner: sess, parent: s}, nil
}

func (s *CircuitBreakerSource) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := s.cb.Execute(fn)

	if err != nil {
		if IsRejected(err) {
			metrics.CircuitBreakerRequests.WithLabelValues(s.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Device request rejected")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(s.name, "failure").Inc()
			counts := s.cb.Counts()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(s.name).Set(float64(counts.ConsecutiveFailures))
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(s.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(s.name).Set(0)
	return result, nil
}

// castResult type-asserts a breaker result, propagating err first.
func castResult[T any](result interface{}, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

type breakerSession struct {
	inner  Session
	parent *CircuitBreakerSource
}

func (b *breakerSession) ReadEvents(ctx context.Context) (*Batch, error) {
	return castResult[*Batch](b.parent.execute(func() (interface{}, error) {
		return b.inner.ReadEvents(ctx)
	}))
}

func (b *breakerSession) Info(ctx context.Context) (*models.DeviceInfo, error) {
	return castResult[*models.DeviceInfo](b.parent.execute(func() (interface{}, error) {
		return b.inner.Info(ctx)
	}))
}

func (b *breakerSession) Users(ctx context.Context) ([]models.DeviceUser, error) {
	return castResult[[]models.DeviceUser](b.parent.execute(func() (interface{}, error) {
		return b.inner.Users(ctx)
	}))
}

func (b *breakerSession) Close() error {
	return b.inner.Close()
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/attendsync/internal/logging"
)

// ErrSubscriptionClosed is returned when the message channel closes while
// the service is still supposed to run. Suture restarts the service.
var ErrSubscriptionClosed = errors.New("subscription closed")

// Subscriber is satisfied by sync.Notifier.
type Subscriber interface {
	Subscribe(ctx context.Context) (<-chan *message.Message, error)
}

// MessageHandler processes one message.
type MessageHandler func(ctx context.Context, msg *message.Message) error

// TriggeredService feeds subscribed messages to a handler one at a time.
// Messages are always acked: handler failures are logged, not redelivered.
type TriggeredService struct {
	name       string
	subscriber Subscriber
	handler    MessageHandler
	logger     zerolog.Logger

	handled atomic.Int64
	failed  atomic.Int64
}

// NewTriggeredService creates a triggered service.
func NewTriggeredService(name string, subscriber Subscriber, handler MessageHandler) *TriggeredService {
	return &TriggeredService{
		name:       name,
		subscriber: subscriber,
		handler:    handler,
		logger:     logging.WithComponent(name),
	}
}

// Serve implements suture.Service.
func (s *TriggeredService) Serve(ctx context.Context) error {
	messages, err := s.subscriber.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("%s subscribe: %w", s.name, err)
	}
	s.logger.Info().Msg("Subscriber started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return ErrSubscriptionClosed
			}
			s.handle(ctx, msg)
		}
	}
}

func (s *TriggeredService) handle(ctx context.Context, msg *message.Message) {
	defer msg.Ack()
	s.handled.Add(1)
	if err := s.handler(ctx, msg); err != nil {
		s.failed.Add(1)
		s.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Message handler failed")
	}
}

// Handled returns the number of messages processed.
func (s *TriggeredService) Handled() int64 {
	return s.handled.Load()
}

// Failed returns the number of messages whose handler returned an error.
func (s *TriggeredService) Failed() int64 {
	return s.failed.Load()
}

// String implements fmt.Stringer for suture logs.
func (s *TriggeredService) String() string {
	return s.name
}

// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

package sync

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/tomtom215/attendsync/internal/logging"
	"github.com/tomtom215/attendsync/internal/models"
)

// TopicRefreshed carries the snapshot written by each successful refresh.
const TopicRefreshed = "attendance.refreshed"

// correlationIDKey is the message metadata key holding the refresh's correlation ID.
const correlationIDKey = "correlation_id"

// Notifier is an in-process pub/sub for refresh notifications.
type Notifier struct {
	pubsub *gochannel.GoChannel
}

// NewNotifier creates a notifier. A nil logger routes watermill logs through
// the application logger.
func NewNotifier(logger watermill.LoggerAdapter) *Notifier {
	if logger == nil {
		logger = watermill.NewSlogLogger(logging.NewSlogLogger())
	}
	return &Notifier{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 16,
		}, logger),
	}
}

// PublishRefreshed announces a freshly cached snapshot.
func (n *Notifier) PublishRefreshed(ctx context.Context, snap models.AttendanceSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		msg.Metadata.Set(correlationIDKey, id)
	}
	if err := n.pubsub.Publish(TopicRefreshed, msg); err != nil {
		return fmt.Errorf("publish %s: %w", TopicRefreshed, err)
	}
	return nil
}

// Subscribe returns the refresh notifications. Every message must be acked.
func (n *Notifier) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return n.pubsub.Subscribe(ctx, TopicRefreshed)
}

// Close stops delivery and closes all subscriptions.
func (n *Notifier) Close() error {
	return n.pubsub.Close()
}

// DecodeSnapshot extracts the snapshot from a refresh notification and
// returns a context carrying the publisher's correlation ID.
func DecodeSnapshot(ctx context.Context, msg *message.Message) (context.Context, models.AttendanceSnapshot, error) {
	var snap models.AttendanceSnapshot
	if err := json.Unmarshal(msg.Payload, &snap); err != nil {
		return ctx, snap, fmt.Errorf("decode snapshot %s: %w", msg.UUID, err)
	}
	if id := msg.Metadata.Get(correlationIDKey); id != "" {
		ctx = logging.ContextWithCorrelationID(ctx, id)
	}
	return ctx, snap, nil
}

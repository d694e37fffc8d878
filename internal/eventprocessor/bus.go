// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/vesseltrack/internal/logging"
)

// ErrBusClosed is returned when publishing or subscribing after Close.
var ErrBusClosed = errors.New("event bus closed")

// BusConfig configures the in-process bus.
type BusConfig struct {
	// OutputBuffer is the per-subscriber channel buffer.
	OutputBuffer int64
}

// DefaultBusConfig returns production defaults.
func DefaultBusConfig() BusConfig {
	return BusConfig{OutputBuffer: 64}
}

// Bus is the in-process pub/sub connecting ingestion to the cache
// refresher. Messages published while nobody is subscribed are dropped,
// which is acceptable because the refresher also refreshes on a timer.
type Bus struct {
	pubsub *gochannel.GoChannel
	closed atomic.Bool
}

// NewBus creates a bus backed by a watermill GoChannel.
func NewBus(cfg BusConfig) *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer:            cfg.OutputBuffer,
			BlockPublishUntilSubscriberAck: false,
		}, NewZerologAdapter()),
	}
}

// Publish sends an event on TopicPositionsStored.
func (b *Bus) Publish(ctx context.Context, event *PositionsStoredEvent) error {
	if b.closed.Load() {
		return ErrBusClosed
	}

	payload, err := MarshalEvent(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage(event.EventID, payload)
	msg.Metadata.Set("vessel_id", event.VesselID)
	msg.Metadata.Set("source", event.Source)
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		middleware.SetCorrelationID(id, msg)
	}

	if err := b.pubsub.Publish(TopicPositionsStored, msg); err != nil {
		return fmt.Errorf("publish %s: %w", TopicPositionsStored, err)
	}
	return nil
}

// RequestRefresh publishes a PositionsStoredEvent. Publish failures are
// logged, never returned, so ingestion is not affected by the bus.
func (b *Bus) RequestRefresh(ctx context.Context, vesselID, source string, stored int) {
	event := NewPositionsStoredEvent(vesselID, source, stored)
	if err := b.Publish(ctx, event); err != nil {
		logging.Ctx(ctx).Warn().Err(err).
			Str("vessel_id", vesselID).
			Str("source", source).
			Msg("Failed to publish cache refresh request")
	}
}

// Subscribe returns raw messages on TopicPositionsStored. Callers must Ack
// every message. The channel closes when ctx is done or the bus is closed.
func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	if b.closed.Load() {
		return nil, ErrBusClosed
	}
	msgs, err := b.pubsub.Subscribe(ctx, TopicPositionsStored)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", TopicPositionsStored, err)
	}
	return msgs, nil
}

// SubscribeEvents returns decoded events. Messages that fail to decode are
// logged and acknowledged. The channel closes when ctx is done or the bus
// is closed.
func (b *Bus) SubscribeEvents(ctx context.Context) (<-chan PositionsStoredEvent, error) {
	msgs, err := b.Subscribe(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan PositionsStoredEvent)
	go func() {
		defer close(out)
		for msg := range msgs {
			event, err := UnmarshalEvent(msg.Payload)
			msg.Ack()
			if err != nil {
				logging.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping undecodable bus message")
				continue
			}
			select {
			case out <- *event:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Close shuts the bus down and closes all subscriber channels.
func (b *Bus) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}
	return b.pubsub.Close()
}

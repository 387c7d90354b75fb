// Scrollforge - Engagement Engine for Infinite-Scroll Content Feeds
// Copyright 2026 M. Vail (mvail)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvail/scrollforge

package events

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"

	"github.com/mvail/scrollforge/internal/engine"
	"github.com/mvail/scrollforge/internal/metrics"
)

// queueSize bounds the outbound event queue between the sink methods and
// the dispatcher.
const queueSize = 1024

// Bus is the process-local event bus. It satisfies engine.EventSink, so
// sessions publish through it directly, and the websocket hub subscribes
// to fan events out to connected clients.
//
// Sink calls run inside the session lock, so they must never block: events
// are enqueued onto a bounded queue and a dispatcher goroutine performs
// the actual publication. A stalled subscriber can stall the dispatcher,
// at which point further events are dropped and counted, never the
// visibility hot path.
//
// An external publisher (NATS, when compiled in) can be attached; external
// publish failures are logged and counted but never fail the in-process
// delivery.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger zerolog.Logger

	queue    chan outbound
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu       sync.RWMutex
	external message.Publisher
}

type outbound struct {
	topic string
	msg   *message.Message
}

// NewBus creates the in-process bus and starts its dispatcher.
func NewBus(logger zerolog.Logger) *Bus {
	b := &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 64,
		}, newWatermillAdapter(logger)),
		logger: logger.With().Str("component", "events").Logger(),
		queue:  make(chan outbound, queueSize),
		done:   make(chan struct{}),
	}
	b.wg.Add(1)
	go b.dispatch()
	return b
}

// AttachExternal adds a secondary publisher mirroring every event.
func (b *Bus) AttachExternal(pub message.Publisher) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.external = pub
}

// Subscribe returns a channel of messages for a topic. The subscription
// ends when ctx is canceled or the bus closes.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, topic)
}

// Close stops the dispatcher and shuts down the bus and the attached
// external publisher. Events still queued are dropped.
func (b *Bus) Close() error {
	b.stopOnce.Do(func() { close(b.done) })

	// Closing the pubsub first unblocks a dispatcher stuck on a stalled
	// subscriber.
	err := b.pubsub.Close()
	b.wg.Wait()

	b.mu.RLock()
	external := b.external
	b.mu.RUnlock()
	if external != nil {
		if cerr := external.Close(); cerr != nil {
			b.logger.Warn().Err(cerr).Msg("external publisher close failed")
		}
	}
	return err
}

// BatchInjected implements engine.EventSink.
func (b *Bus) BatchInjected(sessionID string, rec engine.BatchRecord) {
	event := NewBatchGeneratedEvent(sessionID, rec)
	b.publish(TopicBatches, event.EventID, event)
}

// InterventionFired implements engine.EventSink.
func (b *Bus) InterventionFired(sessionID string, decision engine.InterventionDecision) {
	event := NewInterventionEvent(sessionID, decision)
	b.publish(TopicInterventions, event.EventID, event)
}

// publish marshals and enqueues one event. Never blocks: a full queue or
// a closed bus drops the event.
func (b *Bus) publish(topic, eventID string, payload interface{}) {
	data, err := Marshal(payload)
	if err != nil {
		metrics.EventPublishErrors.WithLabelValues(topic).Inc()
		b.logger.Error().Err(err).Str("topic", topic).Msg("event marshal failed")
		return
	}

	select {
	case <-b.done:
	case b.queue <- outbound{topic: topic, msg: message.NewMessage(eventID, data)}:
	default:
		metrics.EventPublishErrors.WithLabelValues(topic).Inc()
		b.logger.Warn().Str("topic", topic).Msg("event queue full, event dropped")
	}
}

func (b *Bus) dispatch() {
	defer b.wg.Done()
	for {
		select {
		case <-b.done:
			return
		case ob := <-b.queue:
			b.deliver(ob.topic, ob.msg)
		}
	}
}

func (b *Bus) deliver(topic string, msg *message.Message) {
	if err := b.pubsub.Publish(topic, msg); err != nil {
		metrics.EventPublishErrors.WithLabelValues(topic).Inc()
		b.logger.Error().Err(err).Str("topic", topic).Msg("event publish failed")
		return
	}
	metrics.EventsPublished.WithLabelValues(topic).Inc()

	b.mu.RLock()
	external := b.external
	b.mu.RUnlock()
	if external != nil {
		// Watermill messages are consumed on publish; the mirror needs
		// its own copy.
		if err := external.Publish(topic, message.NewMessage(msg.UUID, msg.Payload)); err != nil {
			metrics.EventPublishErrors.WithLabelValues(topic).Inc()
			b.logger.Warn().Err(err).Str("topic", topic).Msg("external publish failed")
		}
	}
}

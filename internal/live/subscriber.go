package live

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// subscriberBuffer is the per-client event buffer. A client that falls this
// far behind is treated as dead on the next delivery attempt.
const subscriberBuffer = 16

// ErrSubscriberClosed is returned by Deliver after Close.
var ErrSubscriberClosed = errors.New("subscriber closed")

// ChannelSubscriber adapts the hub to a transport that consumes events from a
// channel (the SSE handler, or any websocket-style forwarder).
type ChannelSubscriber struct {
	id     string
	events chan Event

	closeOnce sync.Once
	closed    chan struct{}
}

// NewChannelSubscriber creates a subscriber with a fresh opaque id.
func NewChannelSubscriber() *ChannelSubscriber {
	return &ChannelSubscriber{
		id:     uuid.NewString(),
		events: make(chan Event, subscriberBuffer),
		closed: make(chan struct{}),
	}
}

// ID returns the subscriber's opaque connection id.
func (s *ChannelSubscriber) ID() string {
	return s.id
}

// Events is the channel the transport drains.
func (s *ChannelSubscriber) Events() <-chan Event {
	return s.events
}

// Deliver enqueues the event, failing when the subscriber is closed, its
// buffer stays full until ctx expires, or ctx is already done.
func (s *ChannelSubscriber) Deliver(ctx context.Context, event Event) error {
	// Checked first on its own: in the combined select below a ready buffer
	// send would race the closed signal and win about half the time.
	select {
	case <-s.closed:
		return ErrSubscriberClosed
	default:
	}
	select {
	case <-s.closed:
		return ErrSubscriberClosed
	case s.events <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close marks the subscriber dead. Safe to call multiple times.
func (s *ChannelSubscriber) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
	})
}

// Package live fans out reading events to connected dashboard clients.
package live

import (
	"context"
	"sync"
	"time"

	"github.com/agrisense/agrisense-go/internal/logger"
	"github.com/agrisense/agrisense-go/internal/observability"
)

// EventTypeSensorUpdate identifies the envelope emitted for every accepted
// reading.
const EventTypeSensorUpdate = "sensor_update"

// defaultDeliveryTimeout bounds a single subscriber delivery so one slow or
// dead client cannot stall the fan-out for everyone else.
const defaultDeliveryTimeout = 2 * time.Second

// SensorUpdate carries the metric values of the triggering reading. Field
// names match the firmware wire format consumed by the dashboard.
type SensorUpdate struct {
	Temperature    *float64  `json:"temperatura"`
	AirHumidity    *float64  `json:"humedad_aire"`
	SoilHumidity   *float64  `json:"humedad_suelo"`
	SoilPH         *float64  `json:"ph_suelo"`
	SolarRadiation *float64  `json:"radiacion_solar"`
	Timestamp      time.Time `json:"timestamp"`
}

// Event is the typed envelope pushed to every subscriber.
type Event struct {
	Type     string       `json:"type"`
	DeviceID string       `json:"device_id"`
	Data     SensorUpdate `json:"data"`
}

// Subscriber is an open channel to one dashboard client. Deliver must return
// promptly once ctx is done.
type Subscriber interface {
	ID() string
	Deliver(ctx context.Context, event Event) error
}

// Hub tracks the dynamic set of live subscribers and broadcasts events to all
// of them. Delivery is best-effort and synchronous: a failed delivery drops
// that subscriber and never propagates to the ingestion path that triggered
// the broadcast.
type Hub struct {
	deliveryTimeout time.Duration
	metrics         *observability.Metrics
	log             logger.Logger

	mu          sync.RWMutex
	subscribers map[string]Subscriber
}

// NewHub creates a Hub. A non-positive deliveryTimeout falls back to the
// default.
func NewHub(deliveryTimeout time.Duration, metrics *observability.Metrics, log logger.Logger) *Hub {
	if deliveryTimeout <= 0 {
		deliveryTimeout = defaultDeliveryTimeout
	}
	return &Hub{
		deliveryTimeout: deliveryTimeout,
		metrics:         metrics,
		log:             log,
		subscribers:     make(map[string]Subscriber),
	}
}

// Subscribe registers a subscriber. Safe for concurrent use.
func (h *Hub) Subscribe(s Subscriber) {
	h.mu.Lock()
	h.subscribers[s.ID()] = s
	total := len(h.subscribers)
	h.mu.Unlock()
	h.log.Info("live subscriber connected",
		logger.String("subscriber_id", s.ID()),
		logger.Int("total", total))
}

// Unsubscribe removes a subscriber. Removing an unknown id is a no-op.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	_, ok := h.subscribers[id]
	delete(h.subscribers, id)
	total := len(h.subscribers)
	h.mu.Unlock()
	if ok {
		h.log.Info("live subscriber disconnected",
			logger.String("subscriber_id", id),
			logger.Int("total", total))
	}
}

// Count returns the number of active subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Broadcast delivers the event to every subscriber registered at the time of
// the call. A delivery failure removes that subscriber and does not abort
// delivery to the rest. Safe to call concurrently with Subscribe/Unsubscribe.
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	snapshot := make([]Subscriber, 0, len(h.subscribers))
	for _, s := range h.subscribers {
		snapshot = append(snapshot, s)
	}
	h.mu.RUnlock()

	for _, s := range snapshot {
		ctx, cancel := context.WithTimeout(context.Background(), h.deliveryTimeout)
		err := s.Deliver(ctx, event)
		cancel()
		if err != nil {
			h.metrics.BroadcastFailures.Inc()
			h.log.Warn("live delivery failed, dropping subscriber",
				logger.String("subscriber_id", s.ID()),
				logger.Error(err))
			h.Unsubscribe(s.ID())
			continue
		}
		h.metrics.BroadcastsSent.Inc()
	}
}

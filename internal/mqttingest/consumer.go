package mqttingest

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/agrisense/agrisense-go/internal/ingest"
	"github.com/agrisense/agrisense-go/internal/logger"
	"github.com/agrisense/agrisense-go/internal/observability"
)

const subscribeQoS = 1

// Consumer subscribes to the sensor data topic and hands each message to the
// ingestion gateway.
type Consumer struct {
	client      mqtt.Client
	gateway     *ingest.Gateway
	topic       string
	stepTimeout time.Duration
	metrics     *observability.Metrics
	log         logger.Logger
}

func NewConsumer(client mqtt.Client, gateway *ingest.Gateway, topic string, stepTimeout time.Duration, metrics *observability.Metrics, log logger.Logger) *Consumer {
	return &Consumer{
		client:      client,
		gateway:     gateway,
		topic:       topic,
		stepTimeout: stepTimeout,
		metrics:     metrics,
		log:         log,
	}
}

// Start subscribes to the configured topic. Message handling happens on paho's
// router goroutines; Start returns once the subscription is acknowledged.
func (c *Consumer) Start(ctx context.Context) error {
	token := c.client.Subscribe(c.topic, subscribeQoS, func(_ mqtt.Client, msg mqtt.Message) {
		c.handle(ctx, msg.Topic(), msg.Payload())
	})
	if err := waitWithTimeout(token, c.stepTimeout); err != nil {
		return err
	}
	c.log.Info("subscribed to sensor data topic", logger.String("topic", c.topic))
	return nil
}

// Stop unsubscribes. Safe to call after the connection is already down.
func (c *Consumer) Stop() {
	if token := c.client.Unsubscribe(c.topic); token.WaitTimeout(c.stepTimeout) && token.Error() != nil {
		c.log.Warn("mqtt unsubscribe failed", logger.Error(token.Error()))
	}
}

func (c *Consumer) handle(ctx context.Context, topic string, raw []byte) {
	c.metrics.MQTTMessages.Inc()

	var payload ingest.Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.metrics.MQTTMessagesFailed.Inc()
		c.log.Warn("discarding malformed sensor message",
			logger.String("topic", topic),
			logger.Error(err))
		return
	}

	// The topic segment is authoritative for the device identity; the
	// payload field is only a fallback for brokers that flatten topics.
	if id := deviceIDFromTopic(topic); id != "" {
		payload.DeviceID = id
	}

	stepCtx, cancel := context.WithTimeout(ctx, c.stepTimeout)
	defer cancel()

	result, err := c.gateway.Ingest(stepCtx, payload)
	if err != nil {
		c.metrics.MQTTMessagesFailed.Inc()
		c.log.Warn("failed to ingest sensor message",
			logger.String("topic", topic),
			logger.String("device_id", payload.DeviceID),
			logger.Error(err))
		// The message is dropped here, so the error surfaces nowhere else.
		observability.CaptureError(err, map[string]string{
			"topic":     topic,
			"device_id": payload.DeviceID,
		})
		return
	}

	c.log.Debug("ingested sensor message",
		logger.String("device_id", result.DeviceID),
		logger.Uint64("reading_id", uint64(result.ReadingID)),
		logger.Int("alerts_generated", result.AlertsGenerated))
}

// deviceIDFromTopic extracts the device id from a "sensores/<id>/data" topic.
// Returns "" when the topic does not follow that shape.
func deviceIDFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) == 3 && parts[0] == "sensores" && parts[2] == "data" {
		return parts[1]
	}
	return ""
}

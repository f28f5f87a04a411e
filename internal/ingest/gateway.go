// Package ingest normalizes incoming sensor payloads into readings and
// drives the persistence, alerting, and broadcast pipeline. Both transports
// (HTTP and MQTT) feed the same Ingest operation.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agrisense/agrisense-go/internal/alerting"
	"github.com/agrisense/agrisense-go/internal/datastore/entities"
	"github.com/agrisense/agrisense-go/internal/datastore/repository"
	"github.com/agrisense/agrisense-go/internal/live"
	"github.com/agrisense/agrisense-go/internal/logger"
	"github.com/agrisense/agrisense-go/internal/observability"
)

// Ingestion failure categories. Transport layers map these to their own
// error surface; anything else is a persistence failure.
var (
	ErrUnknownDevice  = errors.New("unknown device id")
	ErrInvalidPayload = errors.New("invalid payload")
)

// Payload is the wire shape both transports accept. Metric fields are
// optional; the field names are what the firmware sends.
type Payload struct {
	DeviceID       string   `json:"device_id"`
	Temperature    *float64 `json:"temperatura"`
	AirHumidity    *float64 `json:"humedad_aire"`
	SoilHumidity   *float64 `json:"humedad_suelo"`
	SoilPH         *float64 `json:"ph_suelo"`
	SolarRadiation *float64 `json:"radiacion_solar"`
	Timestamp      string   `json:"timestamp,omitempty"`
}

// Result reports a successful ingestion.
type Result struct {
	ReadingID       uint      `json:"reading_id"`
	SensorID        uint      `json:"sensor_id"`
	DeviceID        string    `json:"device_id"`
	Timestamp       time.Time `json:"timestamp"`
	AlertsGenerated int       `json:"alerts_generated"`
}

// Gateway is the single ingestion entry point.
type Gateway struct {
	sensors    repository.SensorRepository
	readings   repository.ReadingRepository
	thresholds *alerting.ThresholdStore
	dedup      *alerting.Deduplicator
	hub        *live.Hub
	metrics    *observability.Metrics
	log        logger.Logger

	now func() time.Time
}

// NewGateway creates a Gateway.
func NewGateway(
	sensors repository.SensorRepository,
	readings repository.ReadingRepository,
	thresholds *alerting.ThresholdStore,
	dedup *alerting.Deduplicator,
	hub *live.Hub,
	metrics *observability.Metrics,
	log logger.Logger,
) *Gateway {
	return &Gateway{
		sensors:    sensors,
		readings:   readings,
		thresholds: thresholds,
		dedup:      dedup,
		hub:        hub,
		metrics:    metrics,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Ingest validates the payload, persists one reading, updates the sensor's
// last-seen marker, evaluates thresholds through the deduplicator, and
// broadcasts a sensor_update event. An unknown device id is a hard failure
// with no side effects. Re-delivery of the same payload is NOT deduplicated:
// the broker may redeliver after a reconnect and each delivery stores its own
// reading.
func (g *Gateway) Ingest(ctx context.Context, payload Payload) (*Result, error) {
	if payload.DeviceID == "" {
		g.metrics.IngestFailures.Inc()
		return nil, fmt.Errorf("%w: missing device_id", ErrInvalidPayload)
	}

	sensor, err := g.sensors.GetByDeviceID(ctx, payload.DeviceID)
	if err != nil {
		g.metrics.IngestFailures.Inc()
		if errors.Is(err, repository.ErrSensorNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownDevice, payload.DeviceID)
		}
		return nil, err
	}

	reading := &entities.Reading{
		SensorID:       sensor.ID,
		TenantID:       sensor.TenantID,
		Temperature:    payload.Temperature,
		AirHumidity:    payload.AirHumidity,
		SoilHumidity:   payload.SoilHumidity,
		SoilPH:         payload.SoilPH,
		SolarRadiation: payload.SolarRadiation,
		Timestamp:      g.parseTimestamp(payload.Timestamp),
	}
	if err := g.readings.Create(ctx, reading); err != nil {
		g.metrics.IngestFailures.Inc()
		return nil, err
	}
	g.metrics.ReadingsIngested.Inc()

	if err := g.sensors.MarkReadingReceived(ctx, sensor.ID, reading.Timestamp); err != nil {
		// The reading is already stored; losing the last-seen update is not
		// worth failing the ingestion over.
		g.log.Warn("failed to update sensor last-reading marker",
			logger.Uint64("sensor_id", uint64(sensor.ID)),
			logger.Error(err))
	}

	thresholds, err := g.thresholds.GetOrCreateDefault(ctx, sensor.TenantID)
	if err != nil {
		g.metrics.IngestFailures.Inc()
		return nil, err
	}

	var generated int
	for _, cand := range alerting.Evaluate(sensor, reading, thresholds) {
		alert, err := g.dedup.Admit(ctx, sensor, cand)
		if err != nil {
			g.log.Error("failed to persist alert",
				logger.Uint64("sensor_id", uint64(sensor.ID)),
				logger.String("type", cand.Type),
				logger.Error(err))
			continue
		}
		if alert == nil {
			g.metrics.AlertsSuppressed.Inc()
			continue
		}
		generated++
		g.metrics.AlertsGenerated.Inc()
		g.log.Info("alert generated",
			logger.Uint64("alert_id", uint64(alert.ID)),
			logger.String("device_id", sensor.DeviceID),
			logger.String("type", alert.Type),
			logger.String("severity", alert.Severity))
	}

	// Broadcast failures degrade to dropped subscribers inside the hub and
	// never reach the ingestion caller.
	g.hub.Broadcast(live.Event{
		Type:     live.EventTypeSensorUpdate,
		DeviceID: sensor.DeviceID,
		Data: live.SensorUpdate{
			Temperature:    reading.Temperature,
			AirHumidity:    reading.AirHumidity,
			SoilHumidity:   reading.SoilHumidity,
			SoilPH:         reading.SoilPH,
			SolarRadiation: reading.SolarRadiation,
			Timestamp:      reading.Timestamp,
		},
	})

	return &Result{
		ReadingID:       reading.ID,
		SensorID:        sensor.ID,
		DeviceID:        sensor.DeviceID,
		Timestamp:       reading.Timestamp,
		AlertsGenerated: generated,
	}, nil
}

// timestampLayouts are the formats firmware is known to send, beyond RFC 3339.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseTimestamp parses the payload timestamp, stamping current UTC time when
// it is absent or unparsable.
func (g *Gateway) parseTimestamp(s string) time.Time {
	if s == "" {
		return g.now()
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC()
		}
	}
	g.log.Debug("unparsable payload timestamp, using current time",
		logger.String("timestamp", s))
	return g.now()
}

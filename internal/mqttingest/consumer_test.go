package mqttingest

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrisense/agrisense-go/internal/alerting"
	"github.com/agrisense/agrisense-go/internal/datastore/entities"
	"github.com/agrisense/agrisense-go/internal/datastore/repository"
	"github.com/agrisense/agrisense-go/internal/ingest"
	"github.com/agrisense/agrisense-go/internal/live"
	"github.com/agrisense/agrisense-go/internal/logger"
	"github.com/agrisense/agrisense-go/internal/observability"
)

func TestDeviceIDFromTopic(t *testing.T) {
	tests := []struct {
		topic string
		want  string
	}{
		{"sensores/esp32-001/data", "esp32-001"},
		{"sensores/esp32_field_3/data", "esp32_field_3"},
		{"sensores/esp32-001/status", ""},
		{"sensores/data", ""},
		{"other/esp32-001/data", ""},
		{"sensores/a/b/data", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, deviceIDFromTopic(tt.topic), "topic %q", tt.topic)
	}
}

type memSensorRepo struct {
	sensor *entities.Sensor
}

func (m *memSensorRepo) GetByID(context.Context, uint) (*entities.Sensor, error) {
	return m.sensor, nil
}

func (m *memSensorRepo) GetByDeviceID(_ context.Context, deviceID string) (*entities.Sensor, error) {
	if m.sensor.DeviceID != deviceID {
		return nil, repository.ErrSensorNotFound
	}
	return m.sensor, nil
}

func (m *memSensorRepo) MarkReadingReceived(context.Context, uint, time.Time) error { return nil }

func (m *memSensorRepo) Count(context.Context, uint, *bool) (int64, error) { return 0, nil }

func (m *memSensorRepo) CountOffline(context.Context, uint, time.Time) (int64, error) {
	return 0, nil
}

type memReadingRepo struct {
	stored []*entities.Reading
}

func (m *memReadingRepo) Create(_ context.Context, reading *entities.Reading) error {
	reading.ID = uint(len(m.stored) + 1)
	m.stored = append(m.stored, reading)
	return nil
}

func (m *memReadingRepo) LatestForSensor(context.Context, uint) (*entities.Reading, error) {
	return nil, repository.ErrReadingNotFound
}

func (m *memReadingRepo) CountSince(context.Context, uint, time.Time) (int64, error) {
	return 0, nil
}

type memAlertRepo struct{}

func (memAlertRepo) Create(_ context.Context, alert *entities.Alert) error {
	alert.ID = 1
	return nil
}

func (memAlertRepo) Get(context.Context, uint) (*entities.Alert, error) {
	return nil, repository.ErrAlertNotFound
}

func (memAlertRepo) List(context.Context, repository.AlertFilter) ([]entities.Alert, error) {
	return nil, nil
}

func (memAlertRepo) HasRecentPending(context.Context, uint, string, time.Time) (bool, error) {
	return false, nil
}

func (memAlertRepo) MarkResolved(context.Context, uint, time.Time) error { return nil }

func (memAlertRepo) CountPending(context.Context, uint) (int64, error) { return 0, nil }

type memThresholdRepo struct{}

func (memThresholdRepo) GetActive(_ context.Context, tenantID uint) (*entities.ThresholdConfig, error) {
	return alerting.DefaultConfig(tenantID), nil
}

func (memThresholdRepo) Create(context.Context, *entities.ThresholdConfig) error { return nil }

func newTestConsumer(t *testing.T) (*Consumer, *memReadingRepo, *observability.Metrics) {
	t.Helper()
	log := logger.NewSlogLogger(io.Discard, logger.LogLevelError, nil)
	metrics := observability.NewTestMetrics()

	sensors := &memSensorRepo{
		sensor: &entities.Sensor{ID: 1, DeviceID: "esp32-001", TenantID: 7, Name: "Greenhouse North"},
	}
	readings := &memReadingRepo{}
	thresholds := alerting.NewThresholdStore(memThresholdRepo{}, time.Minute, log)
	dedup := alerting.NewDeduplicator(memAlertRepo{}, alerting.DefaultDedupWindow, log)
	hub := live.NewHub(time.Second, metrics, log)
	gateway := ingest.NewGateway(sensors, readings, thresholds, dedup, hub, metrics, log)

	consumer := NewConsumer(nil, gateway, "sensores/+/data", time.Second, metrics, log)
	return consumer, readings, metrics
}

func TestHandleStoresReading(t *testing.T) {
	consumer, readings, _ := newTestConsumer(t)

	consumer.handle(t.Context(), "sensores/esp32-001/data",
		[]byte(`{"temperatura": 22.5, "humedad_suelo": 70}`))

	require.Len(t, readings.stored, 1)
	require.NotNil(t, readings.stored[0].Temperature)
	assert.InDelta(t, 22.5, *readings.stored[0].Temperature, 1e-9)
}

func TestHandleTopicOverridesPayloadDeviceID(t *testing.T) {
	consumer, readings, _ := newTestConsumer(t)

	// Payload claims another device; the topic segment wins.
	consumer.handle(t.Context(), "sensores/esp32-001/data",
		[]byte(`{"device_id": "spoofed", "temperatura": 22.5}`))

	require.Len(t, readings.stored, 1)
}

func TestHandlePayloadDeviceIDFallback(t *testing.T) {
	consumer, readings, _ := newTestConsumer(t)

	consumer.handle(t.Context(), "flattened-topic",
		[]byte(`{"device_id": "esp32-001", "temperatura": 22.5}`))

	require.Len(t, readings.stored, 1)
}

func TestHandleMalformedJSONIsSwallowed(t *testing.T) {
	consumer, readings, _ := newTestConsumer(t)

	consumer.handle(t.Context(), "sensores/esp32-001/data", []byte(`{not json`))

	assert.Empty(t, readings.stored)
}

func TestHandleUnknownDeviceIsSwallowed(t *testing.T) {
	consumer, readings, _ := newTestConsumer(t)

	consumer.handle(t.Context(), "sensores/ghost/data", []byte(`{"temperatura": 22.5}`))

	assert.Empty(t, readings.stored)
}

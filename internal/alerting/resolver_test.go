package alerting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrisense/agrisense-go/internal/datastore/entities"
	"github.com/agrisense/agrisense-go/internal/datastore/repository"
	"github.com/agrisense/agrisense-go/internal/observability"
)

func pendingTempAlert() *entities.Alert {
	return &entities.Alert{
		ID:             42,
		SensorID:       1,
		TenantID:       7,
		Type:           MetricTemperature,
		Severity:       entities.SeverityHigh,
		Title:          "Temperature Too High",
		Message:        "Temperature at Greenhouse North is 40°C, above the maximum of 35°C.",
		Value:          40,
		ThresholdValue: 35,
		State:          entities.AlertStatePending,
	}
}

func newTestResolver(alerts *mockAlertRepo, readings *mockReadingRepo, sensors *mockSensorRepo) *Resolver {
	thresholds := NewThresholdStore(&mockThresholdRepo{
		getActiveFn: func(_ context.Context, tenantID uint) (*entities.ThresholdConfig, error) {
			return DefaultConfig(tenantID), nil
		},
	}, time.Minute, testLogger())
	return NewResolver(alerts, readings, sensors, thresholds, observability.NewTestMetrics(), testLogger())
}

func TestResolveConditionCleared(t *testing.T) {
	var resolvedAt time.Time
	alerts := &mockAlertRepo{
		getFn: func(_ context.Context, id uint) (*entities.Alert, error) {
			require.Equal(t, uint(42), id)
			return pendingTempAlert(), nil
		},
		markResolvedFn: func(_ context.Context, _ uint, at time.Time) error {
			resolvedAt = at
			return nil
		},
	}
	sensors := &mockSensorRepo{
		getByIDFn: func(context.Context, uint) (*entities.Sensor, error) {
			return testSensor(), nil
		},
	}
	readings := &mockReadingRepo{
		latestFn: func(context.Context, uint) (*entities.Reading, error) {
			return &entities.Reading{Temperature: ptr(25)}, nil
		},
	}

	resolution, err := newTestResolver(alerts, readings, sensors).Resolve(t.Context(), 42, 7)
	require.NoError(t, err)
	assert.Equal(t, uint(42), resolution.AlertID)
	assert.False(t, resolution.Escalated)
	assert.Zero(t, resolution.EscalatedAlertID)
	assert.False(t, resolvedAt.IsZero())
	assert.Empty(t, alerts.created, "no escalation alert expected")
}

func TestResolveEscalatesWhenConditionPersists(t *testing.T) {
	alerts := &mockAlertRepo{
		getFn: func(context.Context, uint) (*entities.Alert, error) {
			return pendingTempAlert(), nil
		},
	}
	sensors := &mockSensorRepo{
		getByIDFn: func(context.Context, uint) (*entities.Sensor, error) {
			return testSensor(), nil
		},
	}
	readings := &mockReadingRepo{
		latestFn: func(context.Context, uint) (*entities.Reading, error) {
			return &entities.Reading{Temperature: ptr(41)}, nil
		},
	}

	resolution, err := newTestResolver(alerts, readings, sensors).Resolve(t.Context(), 42, 7)
	require.NoError(t, err)
	assert.True(t, resolution.Escalated)
	assert.NotZero(t, resolution.EscalatedAlertID)

	require.Len(t, alerts.created, 1)
	escalated := alerts.created[0]
	assert.Equal(t, entities.SeverityHigh, escalated.Severity)
	assert.Equal(t, entities.AlertStatePending, escalated.State)
	assert.True(t, escalated.Escalated)
	assert.Equal(t, "Temperature Too High"+EscalationTitleSuffix, escalated.Title)
	assert.Equal(t, MetricTemperature, escalated.Type)
	assert.InDelta(t, 41, escalated.Value, 1e-9)
}

func TestResolveEscalationKeepsOriginalTitleOnDirectionFlip(t *testing.T) {
	// The alert fired for a too-high temperature; by the re-check the metric
	// has swung below the minimum. The escalated alert carries the resolved
	// alert's title, not a freshly generated too-low one.
	alerts := &mockAlertRepo{
		getFn: func(context.Context, uint) (*entities.Alert, error) {
			return pendingTempAlert(), nil
		},
	}
	sensors := &mockSensorRepo{
		getByIDFn: func(context.Context, uint) (*entities.Sensor, error) {
			return testSensor(), nil
		},
	}
	readings := &mockReadingRepo{
		latestFn: func(context.Context, uint) (*entities.Reading, error) {
			return &entities.Reading{Temperature: ptr(5)}, nil
		},
	}

	resolution, err := newTestResolver(alerts, readings, sensors).Resolve(t.Context(), 42, 7)
	require.NoError(t, err)
	assert.True(t, resolution.Escalated)

	require.Len(t, alerts.created, 1)
	escalated := alerts.created[0]
	assert.Equal(t, "Temperature Too High"+EscalationTitleSuffix, escalated.Title)
	assert.InDelta(t, 5, escalated.Value, 1e-9)
	assert.InDelta(t, 15, escalated.ThresholdValue, 1e-9)
}

func TestResolveEscalationIgnoresOtherMetrics(t *testing.T) {
	// Latest reading violates pH, but the resolved alert is a temperature
	// alert, so no escalation happens.
	alerts := &mockAlertRepo{
		getFn: func(context.Context, uint) (*entities.Alert, error) {
			return pendingTempAlert(), nil
		},
	}
	sensors := &mockSensorRepo{
		getByIDFn: func(context.Context, uint) (*entities.Sensor, error) {
			return testSensor(), nil
		},
	}
	readings := &mockReadingRepo{
		latestFn: func(context.Context, uint) (*entities.Reading, error) {
			return &entities.Reading{Temperature: ptr(25), SoilPH: ptr(5.0)}, nil
		},
	}

	resolution, err := newTestResolver(alerts, readings, sensors).Resolve(t.Context(), 42, 7)
	require.NoError(t, err)
	assert.False(t, resolution.Escalated)
	assert.Empty(t, alerts.created)
}

func TestResolveUnknownAlert(t *testing.T) {
	alerts := &mockAlertRepo{}

	_, err := newTestResolver(alerts, &mockReadingRepo{}, &mockSensorRepo{}).Resolve(t.Context(), 999, 7)
	assert.ErrorIs(t, err, ErrAlertNotFound)
}

func TestResolveWrongTenant(t *testing.T) {
	alerts := &mockAlertRepo{
		getFn: func(context.Context, uint) (*entities.Alert, error) {
			return pendingTempAlert(), nil
		},
	}

	_, err := newTestResolver(alerts, &mockReadingRepo{}, &mockSensorRepo{}).Resolve(t.Context(), 42, 8)
	assert.ErrorIs(t, err, ErrAlertNotFound)
}

func TestResolveZeroTenantSkipsScoping(t *testing.T) {
	alerts := &mockAlertRepo{
		getFn: func(context.Context, uint) (*entities.Alert, error) {
			return pendingTempAlert(), nil
		},
	}

	resolution, err := newTestResolver(alerts, &mockReadingRepo{}, &mockSensorRepo{}).Resolve(t.Context(), 42, 0)
	require.NoError(t, err)
	assert.Equal(t, uint(42), resolution.AlertID)
}

func TestResolveSucceedsWithoutReadings(t *testing.T) {
	// A sensor with no readings yet cannot escalate but still resolves.
	alerts := &mockAlertRepo{
		getFn: func(context.Context, uint) (*entities.Alert, error) {
			return pendingTempAlert(), nil
		},
	}
	sensors := &mockSensorRepo{
		getByIDFn: func(context.Context, uint) (*entities.Sensor, error) {
			return testSensor(), nil
		},
	}
	readings := &mockReadingRepo{
		latestFn: func(context.Context, uint) (*entities.Reading, error) {
			return nil, repository.ErrReadingNotFound
		},
	}

	resolution, err := newTestResolver(alerts, readings, sensors).Resolve(t.Context(), 42, 7)
	require.NoError(t, err)
	assert.False(t, resolution.Escalated)
}

func TestResolveReportsSuccessWhenEscalationPersistFails(t *testing.T) {
	alerts := &mockAlertRepo{
		getFn: func(context.Context, uint) (*entities.Alert, error) {
			return pendingTempAlert(), nil
		},
		createFn: func(context.Context, *entities.Alert) error {
			return errors.New("insert failed")
		},
	}
	sensors := &mockSensorRepo{
		getByIDFn: func(context.Context, uint) (*entities.Sensor, error) {
			return testSensor(), nil
		},
	}
	readings := &mockReadingRepo{
		latestFn: func(context.Context, uint) (*entities.Reading, error) {
			return &entities.Reading{Temperature: ptr(41)}, nil
		},
	}

	resolution, err := newTestResolver(alerts, readings, sensors).Resolve(t.Context(), 42, 7)
	require.NoError(t, err)
	assert.False(t, resolution.Escalated)
}

func TestResolveMarkResolvedFailure(t *testing.T) {
	alerts := &mockAlertRepo{
		getFn: func(context.Context, uint) (*entities.Alert, error) {
			return pendingTempAlert(), nil
		},
		markResolvedFn: func(context.Context, uint, time.Time) error {
			return errors.New("write failed")
		},
	}

	_, err := newTestResolver(alerts, &mockReadingRepo{}, &mockSensorRepo{}).Resolve(t.Context(), 42, 7)
	assert.Error(t, err)
}

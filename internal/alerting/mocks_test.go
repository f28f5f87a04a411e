package alerting

import (
	"context"
	"io"
	"time"

	"github.com/agrisense/agrisense-go/internal/datastore/entities"
	"github.com/agrisense/agrisense-go/internal/datastore/repository"
	"github.com/agrisense/agrisense-go/internal/logger"
)

func testLogger() logger.Logger {
	return logger.NewSlogLogger(io.Discard, logger.LogLevelError, nil)
}

// Func-field mocks so each test only stubs what it touches.

type mockAlertRepo struct {
	createFn           func(ctx context.Context, alert *entities.Alert) error
	getFn              func(ctx context.Context, id uint) (*entities.Alert, error)
	hasRecentPendingFn func(ctx context.Context, sensorID uint, alertType string, since time.Time) (bool, error)
	markResolvedFn     func(ctx context.Context, id uint, at time.Time) error

	created []*entities.Alert
}

func (m *mockAlertRepo) Create(ctx context.Context, alert *entities.Alert) error {
	if m.createFn != nil {
		if err := m.createFn(ctx, alert); err != nil {
			return err
		}
	}
	alert.ID = uint(len(m.created) + 100)
	m.created = append(m.created, alert)
	return nil
}

func (m *mockAlertRepo) Get(ctx context.Context, id uint) (*entities.Alert, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, repository.ErrAlertNotFound
}

func (m *mockAlertRepo) List(context.Context, repository.AlertFilter) ([]entities.Alert, error) {
	return nil, nil
}

func (m *mockAlertRepo) HasRecentPending(ctx context.Context, sensorID uint, alertType string, since time.Time) (bool, error) {
	if m.hasRecentPendingFn != nil {
		return m.hasRecentPendingFn(ctx, sensorID, alertType, since)
	}
	return false, nil
}

func (m *mockAlertRepo) MarkResolved(ctx context.Context, id uint, at time.Time) error {
	if m.markResolvedFn != nil {
		return m.markResolvedFn(ctx, id, at)
	}
	return nil
}

func (m *mockAlertRepo) CountPending(context.Context, uint) (int64, error) {
	return 0, nil
}

type mockSensorRepo struct {
	getByIDFn func(ctx context.Context, id uint) (*entities.Sensor, error)
}

func (m *mockSensorRepo) GetByID(ctx context.Context, id uint) (*entities.Sensor, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, repository.ErrSensorNotFound
}

func (m *mockSensorRepo) GetByDeviceID(context.Context, string) (*entities.Sensor, error) {
	return nil, repository.ErrSensorNotFound
}

func (m *mockSensorRepo) MarkReadingReceived(context.Context, uint, time.Time) error {
	return nil
}

func (m *mockSensorRepo) Count(context.Context, uint, *bool) (int64, error) {
	return 0, nil
}

func (m *mockSensorRepo) CountOffline(context.Context, uint, time.Time) (int64, error) {
	return 0, nil
}

type mockReadingRepo struct {
	latestFn func(ctx context.Context, sensorID uint) (*entities.Reading, error)
}

func (m *mockReadingRepo) Create(context.Context, *entities.Reading) error {
	return nil
}

func (m *mockReadingRepo) LatestForSensor(ctx context.Context, sensorID uint) (*entities.Reading, error) {
	if m.latestFn != nil {
		return m.latestFn(ctx, sensorID)
	}
	return nil, repository.ErrReadingNotFound
}

func (m *mockReadingRepo) CountSince(context.Context, uint, time.Time) (int64, error) {
	return 0, nil
}

type mockThresholdRepo struct {
	getActiveFn func(ctx context.Context, tenantID uint) (*entities.ThresholdConfig, error)
	createFn    func(ctx context.Context, config *entities.ThresholdConfig) error

	getCalls    int
	createCalls int
}

func (m *mockThresholdRepo) GetActive(ctx context.Context, tenantID uint) (*entities.ThresholdConfig, error) {
	m.getCalls++
	if m.getActiveFn != nil {
		return m.getActiveFn(ctx, tenantID)
	}
	return nil, repository.ErrThresholdConfigNotFound
}

func (m *mockThresholdRepo) Create(ctx context.Context, config *entities.ThresholdConfig) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, config)
	}
	return nil
}

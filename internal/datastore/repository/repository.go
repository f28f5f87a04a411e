// Package repository defines the persistence contracts for the telemetry
// pipeline and their GORM implementations. The stores are treated as
// already-concurrent-safe services; the pipeline issues one logical write per
// event without client-side locking.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/agrisense/agrisense-go/internal/datastore/entities"
)

// Sentinel errors surfaced by the repositories.
var (
	ErrSensorNotFound          = errors.New("sensor not found")
	ErrReadingNotFound         = errors.New("reading not found")
	ErrAlertNotFound           = errors.New("alert not found")
	ErrThresholdConfigNotFound = errors.New("threshold config not found")
)

// SensorRepository resolves sensors and maintains their last-seen marker.
type SensorRepository interface {
	GetByID(ctx context.Context, id uint) (*entities.Sensor, error)
	GetByDeviceID(ctx context.Context, deviceID string) (*entities.Sensor, error)
	// MarkReadingReceived updates the sensor's last-reading timestamp and
	// flips it to active, the ingestion side effect on every accepted payload.
	MarkReadingReceived(ctx context.Context, id uint, at time.Time) error
	Count(ctx context.Context, tenantID uint, active *bool) (int64, error)
	// CountOffline counts active sensors whose last reading is older than
	// cutoff or missing entirely.
	CountOffline(ctx context.Context, tenantID uint, cutoff time.Time) (int64, error)
}

// ReadingRepository is the append-only reading store.
type ReadingRepository interface {
	Create(ctx context.Context, reading *entities.Reading) error
	// LatestForSensor returns the most recent reading by sample timestamp.
	LatestForSensor(ctx context.Context, sensorID uint) (*entities.Reading, error)
	CountSince(ctx context.Context, tenantID uint, since time.Time) (int64, error)
}

// AlertFilter controls alert listing queries.
type AlertFilter struct {
	TenantID uint
	SensorID uint
	State    string
	Severity string
	Limit    int
	Offset   int
}

// AlertRepository is the append-only alert ledger.
type AlertRepository interface {
	Create(ctx context.Context, alert *entities.Alert) error
	Get(ctx context.Context, id uint) (*entities.Alert, error)
	List(ctx context.Context, filter AlertFilter) ([]entities.Alert, error)
	// HasRecentPending reports whether a pending alert for the same
	// (sensor, metric type) was created at or after since. This is the
	// recent-duplicate existence check behind the suppression window.
	HasRecentPending(ctx context.Context, sensorID uint, alertType string, since time.Time) (bool, error)
	// MarkResolved transitions a pending alert to resolved. Resolving an
	// already-resolved alert is a no-op that still succeeds.
	MarkResolved(ctx context.Context, id uint, at time.Time) error
	CountPending(ctx context.Context, tenantID uint) (int64, error)
}

// ThresholdRepository stores per-tenant threshold configurations.
type ThresholdRepository interface {
	// GetActive returns the tenant's first active config. When several are
	// active the lowest id wins.
	GetActive(ctx context.Context, tenantID uint) (*entities.ThresholdConfig, error)
	Create(ctx context.Context, config *entities.ThresholdConfig) error
}

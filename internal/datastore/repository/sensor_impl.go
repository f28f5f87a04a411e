package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/agrisense/agrisense-go/internal/datastore/entities"
)

type sensorRepository struct {
	db *gorm.DB
}

// NewSensorRepository creates a SensorRepository backed by GORM.
func NewSensorRepository(db *gorm.DB) SensorRepository {
	return &sensorRepository{db: db}
}

func (r *sensorRepository) GetByID(ctx context.Context, id uint) (*entities.Sensor, error) {
	var sensor entities.Sensor
	if err := r.db.WithContext(ctx).First(&sensor, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSensorNotFound
		}
		return nil, fmt.Errorf("failed to get sensor %d: %w", id, err)
	}
	return &sensor, nil
}

func (r *sensorRepository) GetByDeviceID(ctx context.Context, deviceID string) (*entities.Sensor, error) {
	var sensor entities.Sensor
	if err := r.db.WithContext(ctx).Where("device_id = ?", deviceID).First(&sensor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSensorNotFound
		}
		return nil, fmt.Errorf("failed to get sensor by device id %q: %w", deviceID, err)
	}
	return &sensor, nil
}

func (r *sensorRepository) MarkReadingReceived(ctx context.Context, id uint, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&entities.Sensor{}).Where("id = ?", id).
		Updates(map[string]any{"last_reading_at": at, "active": true})
	if result.Error != nil {
		return fmt.Errorf("failed to mark reading received for sensor %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSensorNotFound
	}
	return nil
}

func (r *sensorRepository) Count(ctx context.Context, tenantID uint, active *bool) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&entities.Sensor{})
	if tenantID > 0 {
		query = query.Where("tenant_id = ?", tenantID)
	}
	if active != nil {
		query = query.Where("active = ?", *active)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count sensors: %w", err)
	}
	return count, nil
}

func (r *sensorRepository) CountOffline(ctx context.Context, tenantID uint, cutoff time.Time) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&entities.Sensor{}).
		Where("active = ?", true).
		Where("last_reading_at < ? OR last_reading_at IS NULL", cutoff)
	if tenantID > 0 {
		query = query.Where("tenant_id = ?", tenantID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count offline sensors: %w", err)
	}
	return count, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/agrisense/agrisense-go/internal/datastore/entities"
)

type readingRepository struct {
	db *gorm.DB
}

// NewReadingRepository creates a ReadingRepository backed by GORM.
func NewReadingRepository(db *gorm.DB) ReadingRepository {
	return &readingRepository{db: db}
}

func (r *readingRepository) Create(ctx context.Context, reading *entities.Reading) error {
	if err := r.db.WithContext(ctx).Create(reading).Error; err != nil {
		return fmt.Errorf("failed to create reading: %w", err)
	}
	return nil
}

func (r *readingRepository) LatestForSensor(ctx context.Context, sensorID uint) (*entities.Reading, error) {
	var reading entities.Reading
	err := r.db.WithContext(ctx).
		Where("sensor_id = ?", sensorID).
		Order("timestamp DESC").
		First(&reading).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReadingNotFound
		}
		return nil, fmt.Errorf("failed to get latest reading for sensor %d: %w", sensorID, err)
	}
	return &reading, nil
}

func (r *readingRepository) CountSince(ctx context.Context, tenantID uint, since time.Time) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&entities.Reading{}).
		Where("timestamp >= ?", since)
	if tenantID > 0 {
		query = query.Where("tenant_id = ?", tenantID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count readings: %w", err)
	}
	return count, nil
}

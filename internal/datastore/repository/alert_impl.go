package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/agrisense/agrisense-go/internal/datastore/entities"
)

type alertRepository struct {
	db *gorm.DB
}

// NewAlertRepository creates an AlertRepository backed by GORM.
func NewAlertRepository(db *gorm.DB) AlertRepository {
	return &alertRepository{db: db}
}

func (r *alertRepository) Create(ctx context.Context, alert *entities.Alert) error {
	if err := r.db.WithContext(ctx).Create(alert).Error; err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}
	return nil
}

func (r *alertRepository) Get(ctx context.Context, id uint) (*entities.Alert, error) {
	var alert entities.Alert
	if err := r.db.WithContext(ctx).First(&alert, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAlertNotFound
		}
		return nil, fmt.Errorf("failed to get alert %d: %w", id, err)
	}
	return &alert, nil
}

func (r *alertRepository) List(ctx context.Context, filter AlertFilter) ([]entities.Alert, error) {
	var alerts []entities.Alert
	query := r.db.WithContext(ctx).Model(&entities.Alert{})

	if filter.TenantID > 0 {
		query = query.Where("tenant_id = ?", filter.TenantID)
	}
	if filter.SensorID > 0 {
		query = query.Where("sensor_id = ?", filter.SensorID)
	}
	if filter.State != "" {
		query = query.Where("state = ?", filter.State)
	}
	if filter.Severity != "" {
		query = query.Where("severity = ?", filter.Severity)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	if err := query.Order("created_at DESC").Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}

func (r *alertRepository) HasRecentPending(ctx context.Context, sensorID uint, alertType string, since time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Alert{}).
		Where("sensor_id = ? AND type = ? AND state = ? AND created_at >= ?",
			sensorID, alertType, entities.AlertStatePending, since).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check recent pending alert: %w", err)
	}
	return count > 0, nil
}

func (r *alertRepository) MarkResolved(ctx context.Context, id uint, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&entities.Alert{}).Where("id = ?", id).
		Updates(map[string]any{"state": entities.AlertStateResolved, "resolved_at": at})
	if result.Error != nil {
		return fmt.Errorf("failed to resolve alert %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAlertNotFound
	}
	return nil
}

func (r *alertRepository) CountPending(ctx context.Context, tenantID uint) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&entities.Alert{}).
		Where("state = ?", entities.AlertStatePending)
	if tenantID > 0 {
		query = query.Where("tenant_id = ?", tenantID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count pending alerts: %w", err)
	}
	return count, nil
}

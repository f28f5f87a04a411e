package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/agrisense/agrisense-go/internal/datastore/entities"
)

type thresholdRepository struct {
	db *gorm.DB
}

// NewThresholdRepository creates a ThresholdRepository backed by GORM.
func NewThresholdRepository(db *gorm.DB) ThresholdRepository {
	return &thresholdRepository{db: db}
}

func (r *thresholdRepository) GetActive(ctx context.Context, tenantID uint) (*entities.ThresholdConfig, error) {
	var config entities.ThresholdConfig
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND active = ?", tenantID, true).
		Order("id ASC").
		First(&config).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrThresholdConfigNotFound
		}
		return nil, fmt.Errorf("failed to get active threshold config for tenant %d: %w", tenantID, err)
	}
	return &config, nil
}

func (r *thresholdRepository) Create(ctx context.Context, config *entities.ThresholdConfig) error {
	if err := r.db.WithContext(ctx).Create(config).Error; err != nil {
		return fmt.Errorf("failed to create threshold config: %w", err)
	}
	return nil
}

// Package datastore opens the database connection and owns schema migration.
package datastore

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"

	"github.com/agrisense/agrisense-go/internal/conf"
	"github.com/agrisense/agrisense-go/internal/datastore/entities"
)

// Open connects to the configured database and migrates the schema.
func Open(cfg conf.DatabaseSettings) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: gorm_logger.Default.LogMode(gorm_logger.Silent),
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "mysql":
		db, err = gorm.Open(mysql.Open(cfg.DSN), gormCfg)
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(cfg.DSN), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate applies the schema for all persisted collections.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&entities.Sensor{},
		&entities.Reading{},
		&entities.Alert{},
		&entities.ThresholdConfig{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Package entities defines the persisted data model.
package entities

import "time"

// Sensor is a registered field device. Full CRUD lifecycle is handled by the
// admin surface; the ingestion pipeline only resolves sensors by device id and
// updates their last-reading marker.
type Sensor struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	DeviceID      string     `gorm:"size:100;not null;uniqueIndex" json:"device_id"`
	TenantID      uint       `gorm:"not null;index" json:"tenant_id"`
	Name          string     `gorm:"size:255;not null" json:"name"`
	Location      string     `gorm:"size:255;default:''" json:"location"`
	Active        bool       `gorm:"not null;default:true;index" json:"active"`
	LastReadingAt *time.Time `json:"last_reading_at"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for GORM.
func (Sensor) TableName() string {
	return "sensors"
}

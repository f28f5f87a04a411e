package entities

import "time"

// Alert states. An alert only ever moves pending → resolved; a condition that
// still holds after resolution produces a new alert, never a resurrection.
const (
	AlertStatePending  = "pending"
	AlertStateResolved = "resolved"
)

// Alert severities, derived from the metric type at evaluation time.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Alert records one threshold violation raised for a sensor.
type Alert struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	SensorID       uint       `gorm:"not null;index:idx_alerts_sensor_type,priority:1" json:"sensor_id"`
	TenantID       uint       `gorm:"not null;index" json:"tenant_id"`
	Type           string     `gorm:"size:50;not null;index:idx_alerts_sensor_type,priority:2" json:"type"`
	Severity       string     `gorm:"size:10;not null" json:"severity"`
	Title          string     `gorm:"size:255;not null" json:"title"`
	Message        string     `gorm:"size:1000;not null" json:"message"`
	Value          float64    `gorm:"not null" json:"value"`
	ThresholdValue float64    `gorm:"not null" json:"threshold_value"`
	State          string     `gorm:"size:10;not null;default:'pending';index" json:"state"`
	Escalated      bool       `gorm:"not null;default:false" json:"escalated"`
	CreatedAt      time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	ResolvedAt     *time.Time `json:"resolved_at"`
	Sensor         Sensor     `gorm:"foreignKey:SensorID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for GORM.
func (Alert) TableName() string {
	return "alerts"
}

package entities

import "time"

// Reading is one timestamped sample from a sensor. Metric values are pointers
// because firmware sends only the metrics the device actually measures.
// Readings are immutable once stored; out-of-order timestamps are accepted
// as-is, ordering is the caller's concern.
type Reading struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	SensorID       uint       `gorm:"not null;index:idx_readings_sensor_ts,priority:1" json:"sensor_id"`
	TenantID       uint       `gorm:"not null;index" json:"tenant_id"`
	Temperature    *float64   `json:"temperatura"`
	AirHumidity    *float64   `json:"humedad_aire"`
	SoilHumidity   *float64   `json:"humedad_suelo"`
	SoilPH         *float64   `json:"ph_suelo"`
	SolarRadiation *float64   `json:"radiacion_solar"`
	Timestamp      time.Time  `gorm:"not null;index:idx_readings_sensor_ts,priority:2" json:"timestamp"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	Sensor         Sensor     `gorm:"foreignKey:SensorID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for GORM.
func (Reading) TableName() string {
	return "sensor_readings"
}

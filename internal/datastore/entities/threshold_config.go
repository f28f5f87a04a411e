package entities

import "time"

// ThresholdConfig holds a tenant's acceptable [min, max] band per metric.
// At most one active config per tenant is consulted; when several exist the
// lowest id wins.
type ThresholdConfig struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	TenantID        uint      `gorm:"not null;index" json:"tenant_id"`
	TempMin         float64   `gorm:"not null" json:"temp_min"`
	TempMax         float64   `gorm:"not null" json:"temp_max"`
	AirHumidityMin  float64   `gorm:"not null" json:"air_humidity_min"`
	AirHumidityMax  float64   `gorm:"not null" json:"air_humidity_max"`
	SoilHumidityMin float64   `gorm:"not null" json:"soil_humidity_min"`
	SoilHumidityMax float64   `gorm:"not null" json:"soil_humidity_max"`
	PHMin           float64   `gorm:"not null" json:"ph_min"`
	PHMax           float64   `gorm:"not null" json:"ph_max"`
	RadiationMin    float64   `gorm:"not null" json:"radiation_min"`
	RadiationMax    float64   `gorm:"not null" json:"radiation_max"`
	Active          bool      `gorm:"not null;default:true;index" json:"active"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName returns the table name for GORM.
func (ThresholdConfig) TableName() string {
	return "threshold_configs"
}

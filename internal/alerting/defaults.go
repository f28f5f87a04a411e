package alerting

import "github.com/agrisense/agrisense-go/internal/datastore/entities"

// Default threshold bands, applied when a tenant has no active configuration.
// Centralized here so the lazily created config and any seeding logic cannot
// silently diverge.
const (
	DefaultTempMin         = 15.0
	DefaultTempMax         = 35.0
	DefaultAirHumidityMin  = 40.0
	DefaultAirHumidityMax  = 90.0
	DefaultSoilHumidityMin = 60.0
	DefaultSoilHumidityMax = 85.0
	DefaultPHMin           = 6.0
	DefaultPHMax           = 7.5
	DefaultRadiationMin    = 0.0
	DefaultRadiationMax    = 1000.0
)

// DefaultConfig returns a threshold configuration with the built-in default
// bands for the given tenant.
func DefaultConfig(tenantID uint) *entities.ThresholdConfig {
	return &entities.ThresholdConfig{
		TenantID:        tenantID,
		TempMin:         DefaultTempMin,
		TempMax:         DefaultTempMax,
		AirHumidityMin:  DefaultAirHumidityMin,
		AirHumidityMax:  DefaultAirHumidityMax,
		SoilHumidityMin: DefaultSoilHumidityMin,
		SoilHumidityMax: DefaultSoilHumidityMax,
		PHMin:           DefaultPHMin,
		PHMax:           DefaultPHMax,
		RadiationMin:    DefaultRadiationMin,
		RadiationMax:    DefaultRadiationMax,
		Active:          true,
	}
}

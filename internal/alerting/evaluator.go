package alerting

import (
	"fmt"

	"github.com/agrisense/agrisense-go/internal/datastore/entities"
)

// Thresholds is the [min, max] band per metric used by the evaluator.
// It is a plain value type so evaluation stays a pure function.
type Thresholds struct {
	TempMin         float64
	TempMax         float64
	AirHumidityMin  float64
	AirHumidityMax  float64
	SoilHumidityMin float64
	SoilHumidityMax float64
	PHMin           float64
	PHMax           float64
	RadiationMax    float64
}

// ThresholdsFromConfig converts a stored config into an evaluator band set.
func ThresholdsFromConfig(c *entities.ThresholdConfig) Thresholds {
	return Thresholds{
		TempMin:         c.TempMin,
		TempMax:         c.TempMax,
		AirHumidityMin:  c.AirHumidityMin,
		AirHumidityMax:  c.AirHumidityMax,
		SoilHumidityMin: c.SoilHumidityMin,
		SoilHumidityMax: c.SoilHumidityMax,
		PHMin:           c.PHMin,
		PHMax:           c.PHMax,
		RadiationMax:    c.RadiationMax,
	}
}

// Candidate is an unpersisted violation produced by the evaluator.
// ThresholdValue is the specific bound that was violated, not always the same
// bound for a given metric.
type Candidate struct {
	Type           string
	Severity       string
	Title          string
	Message        string
	Value          float64
	ThresholdValue float64
}

// Evaluate compares each metric present in the reading against its band and
// returns one candidate per violation. Values strictly outside [min, max]
// violate; the bounds themselves are acceptable. Radiation is checked only
// against the upper bound and only for positive values, so a dark or absent
// radiation reading never raises "excessive radiation".
//
// Pure function: no I/O, no side effects, deterministic.
func Evaluate(sensor *entities.Sensor, reading *entities.Reading, t Thresholds) []Candidate {
	var candidates []Candidate

	if v := reading.Temperature; v != nil {
		switch {
		case *v < t.TempMin:
			candidates = append(candidates, Candidate{
				Type:     MetricTemperature,
				Severity: entities.SeverityHigh,
				Title:    "Temperature Too Low",
				Message: fmt.Sprintf("Temperature at %s is %g°C, below the minimum of %g°C.",
					sensor.Name, *v, t.TempMin),
				Value:          *v,
				ThresholdValue: t.TempMin,
			})
		case *v > t.TempMax:
			candidates = append(candidates, Candidate{
				Type:     MetricTemperature,
				Severity: entities.SeverityHigh,
				Title:    "Temperature Too High",
				Message: fmt.Sprintf("Temperature at %s is %g°C, above the maximum of %g°C.",
					sensor.Name, *v, t.TempMax),
				Value:          *v,
				ThresholdValue: t.TempMax,
			})
		}
	}

	if v := reading.AirHumidity; v != nil {
		switch {
		case *v < t.AirHumidityMin:
			candidates = append(candidates, Candidate{
				Type:     MetricAirHumidity,
				Severity: entities.SeverityMedium,
				Title:    "Air Humidity Low",
				Message: fmt.Sprintf("Air humidity at %s is %g%%, below the minimum of %g%%.",
					sensor.Name, *v, t.AirHumidityMin),
				Value:          *v,
				ThresholdValue: t.AirHumidityMin,
			})
		case *v > t.AirHumidityMax:
			candidates = append(candidates, Candidate{
				Type:     MetricAirHumidity,
				Severity: entities.SeverityMedium,
				Title:    "Air Humidity High",
				Message: fmt.Sprintf("Air humidity at %s is %g%%, above the maximum of %g%%.",
					sensor.Name, *v, t.AirHumidityMax),
				Value:          *v,
				ThresholdValue: t.AirHumidityMax,
			})
		}
	}

	if v := reading.SoilHumidity; v != nil {
		switch {
		case *v < t.SoilHumidityMin:
			// Low soil humidity signals irrigation need, hence the higher severity.
			candidates = append(candidates, Candidate{
				Type:     MetricSoilHumidity,
				Severity: entities.SeverityHigh,
				Title:    "Soil Humidity Low - Irrigation Needed",
				Message: fmt.Sprintf("Soil humidity at %s is %g%%, below the minimum of %g%%. Irrigation is required.",
					sensor.Name, *v, t.SoilHumidityMin),
				Value:          *v,
				ThresholdValue: t.SoilHumidityMin,
			})
		case *v > t.SoilHumidityMax:
			candidates = append(candidates, Candidate{
				Type:     MetricSoilHumidity,
				Severity: entities.SeverityMedium,
				Title:    "Soil Humidity High - Possible Waterlogging",
				Message: fmt.Sprintf("Soil humidity at %s is %g%%, above the maximum of %g%%. Check drainage.",
					sensor.Name, *v, t.SoilHumidityMax),
				Value:          *v,
				ThresholdValue: t.SoilHumidityMax,
			})
		}
	}

	if v := reading.SoilPH; v != nil {
		switch {
		case *v < t.PHMin:
			candidates = append(candidates, Candidate{
				Type:     MetricSoilPH,
				Severity: entities.SeverityHigh,
				Title:    "Soil pH Too Acidic",
				Message: fmt.Sprintf("Soil pH at %s is %g, below the minimum of %g.",
					sensor.Name, *v, t.PHMin),
				Value:          *v,
				ThresholdValue: t.PHMin,
			})
		case *v > t.PHMax:
			candidates = append(candidates, Candidate{
				Type:     MetricSoilPH,
				Severity: entities.SeverityHigh,
				Title:    "Soil pH Too Alkaline",
				Message: fmt.Sprintf("Soil pH at %s is %g, above the maximum of %g.",
					sensor.Name, *v, t.PHMax),
				Value:          *v,
				ThresholdValue: t.PHMax,
			})
		}
	}

	if v := reading.SolarRadiation; v != nil && *v > 0 && *v > t.RadiationMax {
		candidates = append(candidates, Candidate{
			Type:     MetricSolarRadiation,
			Severity: entities.SeverityMedium,
			Title:    "Excessive Solar Radiation",
			Message: fmt.Sprintf("Solar radiation at %s is %g W/m², above the maximum of %g W/m². Consider shading.",
				sensor.Name, *v, t.RadiationMax),
			Value:          *v,
			ThresholdValue: t.RadiationMax,
		})
	}

	return candidates
}

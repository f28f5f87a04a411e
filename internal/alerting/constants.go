// Package alerting evaluates sensor readings against per-tenant thresholds,
// deduplicates the resulting alerts over a time window, and escalates alerts
// whose underlying condition survives a manual resolution.
package alerting

import "time"

// Metric types identify which measurement an alert refers to. The values are
// wire-stable: firmware payload fields, stored alert rows, and the dashboard
// all use them.
const (
	MetricTemperature    = "temperatura"
	MetricAirHumidity    = "humedad_aire"
	MetricSoilHumidity   = "humedad_suelo"
	MetricSoilPH         = "ph"
	MetricSolarRadiation = "radiacion"
)

// DefaultDedupWindow is the span during which repeat violations of the same
// (sensor, metric type) are suppressed. The window is keyed neither by
// severity nor by which bound was violated, so a sensor oscillating across
// both bounds is still suppressed after the first alert.
const DefaultDedupWindow = 2 * time.Hour

// EscalationTitleSuffix is appended to the title of an alert created because
// the condition still held when the original alert was resolved.
const EscalationTitleSuffix = " - PERSISTENT PROBLEM"

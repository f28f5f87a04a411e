// Package observability exposes Prometheus instrumentation for the pipeline.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters tracked by the telemetry pipeline.
type Metrics struct {
	ReadingsIngested   prometheus.Counter
	IngestFailures     prometheus.Counter
	AlertsGenerated    prometheus.Counter
	AlertsSuppressed   prometheus.Counter
	AlertsEscalated    prometheus.Counter
	BroadcastsSent     prometheus.Counter
	BroadcastFailures  prometheus.Counter
	MQTTMessages       prometheus.Counter
	MQTTMessagesFailed prometheus.Counter
}

// NewMetrics creates the metric set and registers it with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ReadingsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agrisense_readings_ingested_total",
			Help: "Sensor readings accepted and persisted.",
		}),
		IngestFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agrisense_ingest_failures_total",
			Help: "Ingestion attempts rejected or failed.",
		}),
		AlertsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agrisense_alerts_generated_total",
			Help: "Alerts persisted after threshold evaluation.",
		}),
		AlertsSuppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agrisense_alerts_suppressed_total",
			Help: "Candidate alerts suppressed by the dedup window.",
		}),
		AlertsEscalated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agrisense_alerts_escalated_total",
			Help: "Escalated alerts created on resolution of a persisting condition.",
		}),
		BroadcastsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agrisense_live_broadcasts_total",
			Help: "Events broadcast to live subscribers.",
		}),
		BroadcastFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agrisense_live_broadcast_failures_total",
			Help: "Subscriber deliveries that failed and dropped the subscriber.",
		}),
		MQTTMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agrisense_mqtt_messages_total",
			Help: "MQTT sensor data messages received.",
		}),
		MQTTMessagesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agrisense_mqtt_messages_failed_total",
			Help: "MQTT messages dropped due to parse or processing errors.",
		}),
	}
	reg.MustRegister(
		m.ReadingsIngested,
		m.IngestFailures,
		m.AlertsGenerated,
		m.AlertsSuppressed,
		m.AlertsEscalated,
		m.BroadcastsSent,
		m.BroadcastFailures,
		m.MQTTMessages,
		m.MQTTMessagesFailed,
	)
	return m
}

// NewTestMetrics creates an unregistered-in-global metric set for tests.
func NewTestMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

package alerting

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/agrisense/agrisense-go/internal/datastore/entities"
	"github.com/agrisense/agrisense-go/internal/datastore/repository"
	"github.com/agrisense/agrisense-go/internal/logger"
	"github.com/agrisense/agrisense-go/internal/observability"
)

// ErrAlertNotFound is returned when the alert does not exist or belongs to a
// different tenant.
var ErrAlertNotFound = repository.ErrAlertNotFound

// Resolution reports the outcome of resolving an alert.
type Resolution struct {
	AlertID          uint `json:"alert_id"`
	Escalated        bool `json:"escalated"`
	EscalatedAlertID uint `json:"escalated_alert_id,omitempty"`
}

// Resolver marks alerts resolved and escalates when the underlying condition
// still holds on the sensor's latest reading.
type Resolver struct {
	alerts     repository.AlertRepository
	readings   repository.ReadingRepository
	sensors    repository.SensorRepository
	thresholds *ThresholdStore
	metrics    *observability.Metrics
	log        logger.Logger

	now func() time.Time
}

// NewResolver creates a Resolver.
func NewResolver(
	alerts repository.AlertRepository,
	readings repository.ReadingRepository,
	sensors repository.SensorRepository,
	thresholds *ThresholdStore,
	metrics *observability.Metrics,
	log logger.Logger,
) *Resolver {
	return &Resolver{
		alerts:     alerts,
		readings:   readings,
		sensors:    sensors,
		thresholds: thresholds,
		metrics:    metrics,
		log:        log,
		now:        time.Now,
	}
}

// Resolve transitions the alert to resolved, then re-checks the sensor's most
// recent reading for the same metric type only. If the metric is still out of
// range a brand-new alert is created with severity forced to high and the
// title suffixed; escalation bypasses the dedup window so it always fires.
//
// A tenantID of zero skips tenant scoping. When the sensor, its latest
// reading, or the tenant thresholds cannot be fetched, resolution still
// succeeds and no escalation check is performed.
func (r *Resolver) Resolve(ctx context.Context, alertID, tenantID uint) (*Resolution, error) {
	alert, err := r.alerts.Get(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if tenantID != 0 && alert.TenantID != tenantID {
		return nil, ErrAlertNotFound
	}

	if err := r.alerts.MarkResolved(ctx, alert.ID, r.now()); err != nil {
		return nil, fmt.Errorf("failed to mark alert resolved: %w", err)
	}

	resolution := &Resolution{AlertID: alert.ID}

	cand, ok := r.recheck(ctx, alert)
	if !ok {
		return resolution, nil
	}

	escalated := &entities.Alert{
		SensorID:       alert.SensorID,
		TenantID:       alert.TenantID,
		Type:           alert.Type,
		Severity:       entities.SeverityHigh,
		Title:          alert.Title + EscalationTitleSuffix,
		Message: fmt.Sprintf("Marked resolved but the condition still holds. %s Current value: %g (threshold: %g). Immediate intervention required.",
			alert.Message, cand.Value, cand.ThresholdValue),
		Value:          cand.Value,
		ThresholdValue: cand.ThresholdValue,
		State:          entities.AlertStatePending,
		Escalated:      true,
	}
	if err := r.alerts.Create(ctx, escalated); err != nil {
		// The resolution itself already happened; report it and surface the
		// escalation failure out of band.
		r.log.Error("failed to persist escalated alert",
			logger.Uint64("alert_id", uint64(alert.ID)),
			logger.Error(err))
		observability.CaptureError(err, map[string]string{
			"alert_id": strconv.FormatUint(uint64(alert.ID), 10),
			"type":     alert.Type,
		})
		return resolution, nil
	}

	r.metrics.AlertsEscalated.Inc()
	r.log.Info("alert escalated on resolution",
		logger.Uint64("alert_id", uint64(alert.ID)),
		logger.Uint64("escalated_alert_id", uint64(escalated.ID)),
		logger.String("type", alert.Type))

	resolution.Escalated = true
	resolution.EscalatedAlertID = escalated.ID
	return resolution, nil
}

// recheck evaluates the sensor's latest reading and returns the candidate for
// the resolved alert's metric type, if the violation persists.
func (r *Resolver) recheck(ctx context.Context, alert *entities.Alert) (Candidate, bool) {
	sensor, err := r.sensors.GetByID(ctx, alert.SensorID)
	if err != nil {
		if !errors.Is(err, repository.ErrSensorNotFound) {
			r.log.Warn("escalation check skipped: sensor lookup failed", logger.Error(err))
		}
		return Candidate{}, false
	}

	reading, err := r.readings.LatestForSensor(ctx, sensor.ID)
	if err != nil {
		if !errors.Is(err, repository.ErrReadingNotFound) {
			r.log.Warn("escalation check skipped: reading lookup failed", logger.Error(err))
		}
		return Candidate{}, false
	}

	thresholds, err := r.thresholds.GetOrCreateDefault(ctx, alert.TenantID)
	if err != nil {
		r.log.Warn("escalation check skipped: threshold lookup failed", logger.Error(err))
		return Candidate{}, false
	}

	for _, cand := range Evaluate(sensor, reading, thresholds) {
		if cand.Type == alert.Type {
			return cand, true
		}
	}
	return Candidate{}, false
}

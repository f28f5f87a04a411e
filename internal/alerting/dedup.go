package alerting

import (
	"context"
	"time"

	"github.com/agrisense/agrisense-go/internal/datastore/entities"
	"github.com/agrisense/agrisense-go/internal/datastore/repository"
	"github.com/agrisense/agrisense-go/internal/logger"
)

// Deduplicator admits evaluator candidates into the alert ledger, suppressing
// a candidate when a pending alert for the same (sensor, metric type) was
// created within the suppression window.
type Deduplicator struct {
	alerts repository.AlertRepository
	window time.Duration
	log    logger.Logger

	// now is stubbed in tests.
	now func() time.Time
}

// NewDeduplicator creates a Deduplicator with the given suppression window.
// A non-positive window falls back to DefaultDedupWindow.
func NewDeduplicator(alerts repository.AlertRepository, window time.Duration, log logger.Logger) *Deduplicator {
	if window <= 0 {
		window = DefaultDedupWindow
	}
	return &Deduplicator{
		alerts: alerts,
		window: window,
		log:    log,
		now:    time.Now,
	}
}

// Admit persists a new pending alert for the candidate unless a recent
// duplicate exists. Returns the persisted alert, or nil when suppressed.
func (d *Deduplicator) Admit(ctx context.Context, sensor *entities.Sensor, cand Candidate) (*entities.Alert, error) {
	since := d.now().Add(-d.window)
	exists, err := d.alerts.HasRecentPending(ctx, sensor.ID, cand.Type, since)
	if err != nil {
		return nil, err
	}
	if exists {
		d.log.Debug("alert suppressed by dedup window",
			logger.Uint64("sensor_id", uint64(sensor.ID)),
			logger.String("type", cand.Type))
		return nil, nil
	}

	alert := &entities.Alert{
		SensorID:       sensor.ID,
		TenantID:       sensor.TenantID,
		Type:           cand.Type,
		Severity:       cand.Severity,
		Title:          cand.Title,
		Message:        cand.Message,
		Value:          cand.Value,
		ThresholdValue: cand.ThresholdValue,
		State:          entities.AlertStatePending,
	}
	if err := d.alerts.Create(ctx, alert); err != nil {
		return nil, err
	}
	return alert, nil
}

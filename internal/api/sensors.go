package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// offlineAfter is how long a sensor may stay silent before it is reported
// offline.
const offlineAfter = 10 * time.Minute

func (c *Controller) initSensorRoutes() {
	sensors := c.Group.Group("/sensors", middleware.ContextTimeout(c.requestTimeout))

	sensors.GET("/stats", c.GetSensorStats)
	sensors.GET("/:deviceID/status", c.GetSensorStatus)
}

// sensorStatusResponse reports a single sensor's connectivity.
type sensorStatusResponse struct {
	DeviceID      string     `json:"device_id"`
	Name          string     `json:"name"`
	Location      string     `json:"location"`
	Online        bool       `json:"online"`
	LastReadingAt *time.Time `json:"last_reading_at,omitempty"`
}

// GetSensorStatus reports whether the sensor has delivered a reading
// recently enough to be considered online.
func (c *Controller) GetSensorStatus(ctx echo.Context) error {
	deviceID := ctx.Param("deviceID")

	sensor, err := c.sensors.GetByDeviceID(ctx.Request().Context(), deviceID)
	if err != nil {
		if c.notFound(err) {
			return c.HandleError(ctx, err, "Sensor not found", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Failed to fetch sensor", http.StatusInternalServerError)
	}

	online := sensor.LastReadingAt != nil &&
		time.Since(*sensor.LastReadingAt) <= offlineAfter

	return ctx.JSON(http.StatusOK, sensorStatusResponse{
		DeviceID:      sensor.DeviceID,
		Name:          sensor.Name,
		Location:      sensor.Location,
		Online:        online,
		LastReadingAt: sensor.LastReadingAt,
	})
}

// sensorStatsResponse is the fleet overview for a tenant.
type sensorStatsResponse struct {
	TotalSensors   int64 `json:"total_sensors"`
	ActiveSensors  int64 `json:"active_sensors"`
	OfflineSensors int64 `json:"offline_sensors"`
	ReadingsLast24 int64 `json:"readings_last_24h"`
	PendingAlerts  int64 `json:"pending_alerts"`
	LiveClients    int   `json:"live_clients"`
}

// GetSensorStats aggregates fleet counters for the dashboard header.
func (c *Controller) GetSensorStats(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	tenantID := uintQueryParam(ctx, "tenant_id")
	now := time.Now().UTC()

	total, err := c.sensors.Count(reqCtx, tenantID, nil)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to count sensors", http.StatusInternalServerError)
	}
	active := true
	activeCount, err := c.sensors.Count(reqCtx, tenantID, &active)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to count sensors", http.StatusInternalServerError)
	}
	offline, err := c.sensors.CountOffline(reqCtx, tenantID, now.Add(-offlineAfter))
	if err != nil {
		return c.HandleError(ctx, err, "Failed to count offline sensors", http.StatusInternalServerError)
	}
	readings, err := c.readings.CountSince(reqCtx, tenantID, now.Add(-24*time.Hour))
	if err != nil {
		return c.HandleError(ctx, err, "Failed to count readings", http.StatusInternalServerError)
	}
	pending, err := c.alerts.CountPending(reqCtx, tenantID)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to count pending alerts", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, sensorStatsResponse{
		TotalSensors:   total,
		ActiveSensors:  activeCount,
		OfflineSensors: offline,
		ReadingsLast24: readings,
		PendingAlerts:  pending,
		LiveClients:    c.hub.Count(),
	})
}

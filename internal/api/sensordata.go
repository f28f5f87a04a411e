package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/agrisense/agrisense-go/internal/ingest"
	"github.com/agrisense/agrisense-go/internal/logger"
)

func (c *Controller) initIngestRoutes() {
	c.Group.POST("/sensor-data", c.CreateSensorData, middleware.ContextTimeout(c.requestTimeout))
}

// sensorDataResponse acknowledges an accepted reading.
type sensorDataResponse struct {
	Message         string `json:"message"`
	ReadingID       uint   `json:"reading_id"`
	DeviceID        string `json:"device_id"`
	AlertsGenerated int    `json:"alerts_generated"`
}

// CreateSensorData ingests one reading posted directly by a device or
// gateway. Device identity comes from the payload's device_id field.
func (c *Controller) CreateSensorData(ctx echo.Context) error {
	var payload ingest.Payload
	if err := ctx.Bind(&payload); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}

	result, err := c.gateway.Ingest(ctx.Request().Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, ingest.ErrInvalidPayload):
			return c.HandleError(ctx, err, "Invalid sensor payload", http.StatusBadRequest)
		case errors.Is(err, ingest.ErrUnknownDevice):
			return c.HandleError(ctx, err, "Unknown device", http.StatusNotFound)
		default:
			return c.HandleError(ctx, err, "Failed to store sensor data", http.StatusInternalServerError)
		}
	}

	c.log.Debug("sensor data accepted",
		logger.String("device_id", result.DeviceID),
		logger.Int("alerts_generated", result.AlertsGenerated))

	return ctx.JSON(http.StatusCreated, sensorDataResponse{
		Message:         "Sensor data stored",
		ReadingID:       result.ReadingID,
		DeviceID:        result.DeviceID,
		AlertsGenerated: result.AlertsGenerated,
	})
}

package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/agrisense/agrisense-go/internal/datastore/entities"
	"github.com/agrisense/agrisense-go/internal/datastore/repository"
	"github.com/agrisense/agrisense-go/internal/logger"
)

const (
	defaultAlertLimit = 50
	maxAlertLimit     = 200
)

func (c *Controller) initAlertRoutes() {
	alerts := c.Group.Group("/alerts", middleware.ContextTimeout(c.requestTimeout))

	alerts.GET("", c.ListAlerts)
	alerts.GET("/pending/count", c.CountPendingAlerts)
	alerts.GET("/:id", c.GetAlert)
	alerts.POST("/:id/resolve", c.ResolveAlert)
}

// ListAlerts returns alerts newest-first, optionally filtered by tenant,
// sensor, state, and severity.
func (c *Controller) ListAlerts(ctx echo.Context) error {
	filter := repository.AlertFilter{
		State:    ctx.QueryParam("state"),
		Severity: ctx.QueryParam("severity"),
		Limit:    defaultAlertLimit,
	}
	filter.TenantID = uintQueryParam(ctx, "tenant_id")
	filter.SensorID = uintQueryParam(ctx, "sensor_id")

	if raw := ctx.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return c.HandleError(ctx, err, "Invalid limit parameter", http.StatusBadRequest)
		}
		filter.Limit = min(limit, maxAlertLimit)
	}
	if raw := ctx.QueryParam("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return c.HandleError(ctx, err, "Invalid offset parameter", http.StatusBadRequest)
		}
		filter.Offset = offset
	}

	list, err := c.alerts.List(ctx.Request().Context(), filter)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list alerts", http.StatusInternalServerError)
	}
	if list == nil {
		list = []entities.Alert{}
	}
	return ctx.JSON(http.StatusOK, list)
}

// GetAlert returns a single alert by id.
func (c *Controller) GetAlert(ctx echo.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid alert ID", http.StatusBadRequest)
	}

	alert, err := c.alerts.Get(ctx.Request().Context(), uint(id))
	if err != nil {
		if c.notFound(err) {
			return c.HandleError(ctx, err, "Alert not found", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Failed to fetch alert", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, alert)
}

// ResolveAlert marks an alert resolved and reports whether it escalated.
// Resolving an already-resolved alert succeeds without a second transition.
func (c *Controller) ResolveAlert(ctx echo.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid alert ID", http.StatusBadRequest)
	}
	tenantID := uintQueryParam(ctx, "tenant_id")

	resolution, err := c.resolver.Resolve(ctx.Request().Context(), uint(id), tenantID)
	if err != nil {
		if c.notFound(err) {
			return c.HandleError(ctx, err, "Alert not found", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Failed to resolve alert", http.StatusInternalServerError)
	}

	c.log.Info("alert resolved",
		logger.Uint64("alert_id", uint64(resolution.AlertID)),
		logger.Bool("escalated", resolution.Escalated))

	return ctx.JSON(http.StatusOK, resolution)
}

// CountPendingAlerts returns the number of pending alerts for the tenant.
func (c *Controller) CountPendingAlerts(ctx echo.Context) error {
	tenantID := uintQueryParam(ctx, "tenant_id")

	count, err := c.alerts.CountPending(ctx.Request().Context(), tenantID)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to count pending alerts", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, map[string]int64{"pending": count})
}

// uintQueryParam parses an unsigned integer query parameter, returning zero
// when absent or malformed.
func uintQueryParam(ctx echo.Context, name string) uint {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0
	}
	return uint(v)
}

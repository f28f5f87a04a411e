// Package api exposes the telemetry pipeline over HTTP: reading ingestion,
// alert queries and resolution, sensor status, and a live SSE stream.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agrisense/agrisense-go/internal/alerting"
	"github.com/agrisense/agrisense-go/internal/datastore/repository"
	"github.com/agrisense/agrisense-go/internal/ingest"
	"github.com/agrisense/agrisense-go/internal/live"
	"github.com/agrisense/agrisense-go/internal/logger"
	"github.com/agrisense/agrisense-go/internal/observability"
)

// Controller wires the HTTP handlers to the pipeline services.
type Controller struct {
	Echo     *echo.Echo
	Group    *echo.Group
	gateway  *ingest.Gateway
	resolver *alerting.Resolver
	alerts   repository.AlertRepository
	sensors  repository.SensorRepository
	readings repository.ReadingRepository
	hub      *live.Hub
	log      logger.Logger

	requestTimeout time.Duration
}

// New creates the controller and registers all routes on e.
func New(
	e *echo.Echo,
	gateway *ingest.Gateway,
	resolver *alerting.Resolver,
	alerts repository.AlertRepository,
	sensors repository.SensorRepository,
	readings repository.ReadingRepository,
	hub *live.Hub,
	registry *prometheus.Registry,
	requestTimeout time.Duration,
	log logger.Logger,
) *Controller {
	if requestTimeout <= 0 {
		requestTimeout = 10 * time.Second
	}
	c := &Controller{
		Echo:           e,
		Group:          e.Group("/api"),
		gateway:        gateway,
		resolver:       resolver,
		alerts:         alerts,
		sensors:        sensors,
		readings:       readings,
		hub:            hub,
		log:            log,
		requestTimeout: requestTimeout,
	}

	e.Use(middleware.Recover())

	// The SSE stream is long-lived, so the timeout applies per route group
	// instead of globally.
	c.initIngestRoutes()
	c.initAlertRoutes()
	c.initSensorRoutes()
	c.initStreamRoutes()

	e.GET("/metrics", echo.WrapHandler(
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	e.GET("/health", c.Health)

	return c
}

// Health is a liveness probe.
func (c *Controller) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// HandleError logs err and writes a JSON error body with the given status.
// Server-side failures are additionally reported to Sentry.
func (c *Controller) HandleError(ctx echo.Context, err error, message string, status int) error {
	c.log.Error(message,
		logger.String("path", ctx.Request().URL.Path),
		logger.Error(err))
	if status >= http.StatusInternalServerError {
		observability.CaptureError(err, map[string]string{
			"path":   ctx.Request().URL.Path,
			"method": ctx.Request().Method,
		})
	}
	return ctx.JSON(status, map[string]string{"error": message})
}

// notFound maps repository not-found sentinels to 404, everything else to 500.
func (c *Controller) notFound(err error) bool {
	return errors.Is(err, repository.ErrSensorNotFound) ||
		errors.Is(err, repository.ErrAlertNotFound) ||
		errors.Is(err, repository.ErrReadingNotFound) ||
		errors.Is(err, repository.ErrThresholdConfigNotFound)
}

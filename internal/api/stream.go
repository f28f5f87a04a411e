package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/agrisense/agrisense-go/internal/live"
	"github.com/agrisense/agrisense-go/internal/logger"
)

const heartbeatInterval = 30 * time.Second

func (c *Controller) initStreamRoutes() {
	c.Group.GET("/stream", c.StreamSensorUpdates)
}

// StreamSensorUpdates serves the live dashboard feed over SSE. Every reading
// accepted by the pipeline is pushed to all connected clients; a client that
// cannot keep up is dropped by the hub.
func (c *Controller) StreamSensorUpdates(ctx echo.Context) error {
	setSSEHeaders(ctx)

	sub := live.NewChannelSubscriber()
	c.hub.Subscribe(sub)
	defer func() {
		c.hub.Unsubscribe(sub.ID())
		sub.Close()
	}()

	if err := sendSSEMessage(ctx, "connected", map[string]string{
		"client_id": sub.ID(),
	}); err != nil {
		return err
	}

	c.log.Debug("live stream client connected",
		logger.String("client_id", sub.ID()),
		logger.String("remote", ctx.RealIP()))

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Request().Context().Done():
			c.log.Debug("live stream client disconnected",
				logger.String("client_id", sub.ID()))
			return nil
		case event, ok := <-sub.Events():
			if !ok {
				return nil
			}
			if err := sendSSEMessage(ctx, event.Type, event); err != nil {
				return err
			}
		case <-ticker.C:
			if err := sendSSEMessage(ctx, "heartbeat", map[string]string{
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			}); err != nil {
				return err
			}
		}
	}
}

func setSSEHeaders(ctx echo.Context) {
	h := ctx.Response().Header()
	h.Set(echo.HeaderContentType, "text/event-stream")
	h.Set(echo.HeaderCacheControl, "no-cache")
	h.Set(echo.HeaderConnection, "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	ctx.Response().WriteHeader(http.StatusOK)
}

func sendSSEMessage(ctx echo.Context, event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal SSE payload: %w", err)
	}
	if _, err := fmt.Fprintf(ctx.Response(), "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	ctx.Response().Flush()
	return nil
}

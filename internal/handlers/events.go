package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/intromesh/intromesh/internal/accounts"
	"github.com/intromesh/intromesh/internal/realtime"
)

const eventStreamHeartbeat = 30 * time.Second

// EventsHandler streams room events over SSE. Each account gets its identity
// room; staff additionally receive the shared admin room.
type EventsHandler struct {
	accountService *accounts.Service
	hub            *realtime.Hub
	logger         *slog.Logger
}

// NewEventsHandler creates the events handler.
func NewEventsHandler(log *slog.Logger, accountService *accounts.Service, hub *realtime.Hub) *EventsHandler {
	return &EventsHandler{
		accountService: accountService,
		hub:            hub,
		logger:         log.With(slog.String("handler", "events")),
	}
}

// Register mounts GET /events on the Echo instance.
func (h *EventsHandler) Register(e *echo.Echo) {
	e.GET("/events", h.Stream)
}

func writeSSEData(writer *bufio.Writer, flusher http.Flusher, payload string) error {
	if _, err := writer.WriteString(fmt.Sprintf("data: %s\n\n", payload)); err != nil {
		return err
	}
	if err := writer.Flush(); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

func writeSSEJSON(writer *bufio.Writer, flusher http.Flusher, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return writeSSEData(writer, flusher, string(data))
}

// Stream subscribes the caller to its rooms and relays events until the
// client disconnects. Delivery is at-most-once; disconnected clients catch up
// through the paged history.
func (h *EventsHandler) Stream(c echo.Context) error {
	ctx := c.Request().Context()
	actor, err := RequireActor(ctx, c, h.accountService)
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "streaming unsupported")
	}
	writer := bufio.NewWriter(c.Response().Writer)

	_, personal, cancelPersonal := h.hub.Subscribe(actor.ID, realtime.DefaultBufferSize)
	defer cancelPersonal()

	var staff <-chan realtime.Event
	if actor.Staff {
		var cancelStaff func()
		_, staff, cancelStaff = h.hub.Subscribe(realtime.RoomAdmin, realtime.DefaultBufferSize)
		defer cancelStaff()
	}

	if err := writeSSEJSON(writer, flusher, map[string]string{"type": "connected"}); err != nil {
		return nil
	}

	heartbeat := time.NewTicker(eventStreamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-personal:
			if !ok {
				return nil
			}
			if err := writeSSEJSON(writer, flusher, event); err != nil {
				return nil
			}
		case event, ok := <-staff:
			if !ok {
				return nil
			}
			if err := writeSSEJSON(writer, flusher, event); err != nil {
				return nil
			}
		case <-heartbeat.C:
			if err := writeSSEData(writer, flusher, `{"type":"ping"}`); err != nil {
				return nil
			}
		}
	}
}

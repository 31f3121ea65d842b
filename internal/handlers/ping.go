package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"

	"github.com/intromesh/intromesh/internal/version"
)

const healthPingTimeout = 2 * time.Second

// PingHandler serves liveness and readiness checks. /ping answers as long as
// the process runs; /health additionally checks that the database is
// reachable, so a load balancer stops routing to an instance that lost its
// pool.
type PingHandler struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPingHandler creates the health handler.
func NewPingHandler(log *slog.Logger, pool *pgxpool.Pool) *PingHandler {
	return &PingHandler{
		pool:   pool,
		logger: log.With(slog.String("handler", "ping")),
	}
}

// Register mounts GET /ping and HEAD /health on the Echo instance.
func (h *PingHandler) Register(e *echo.Echo) {
	e.GET("/ping", h.Ping)
	e.HEAD("/health", h.Health)
}

// Ping reports liveness plus the running build.
func (h *PingHandler) Ping(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.GetInfo(),
	})
}

// Health reports readiness: 200 while the database answers, 503 otherwise.
func (h *PingHandler) Health(c echo.Context) error {
	if h.pool != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), healthPingTimeout)
		defer cancel()
		if err := h.pool.Ping(ctx); err != nil {
			h.logger.Warn("health check: database unreachable", slog.Any("error", err))
			return c.NoContent(http.StatusServiceUnavailable)
		}
	}
	return c.NoContent(http.StatusOK)
}

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/intromesh/intromesh/internal/accounts"
	"github.com/intromesh/intromesh/internal/mediation"
)

// RequestsHandler serves the mediation request workflow.
type RequestsHandler struct {
	accountService   *accounts.Service
	mediationService *mediation.Service
	logger           *slog.Logger
}

// NewRequestsHandler creates the requests handler.
func NewRequestsHandler(log *slog.Logger, accountService *accounts.Service, mediationService *mediation.Service) *RequestsHandler {
	return &RequestsHandler{
		accountService:   accountService,
		mediationService: mediationService,
		logger:           log.With(slog.String("handler", "requests")),
	}
}

// Register mounts the request routes on the Echo instance.
func (h *RequestsHandler) Register(e *echo.Echo) {
	group := e.Group("/requests")
	group.POST("", h.Submit)
	group.GET("", h.List)
	group.GET("/pending", h.ListPending)
	group.GET("/:id", h.Get)
	group.GET("/:id/events", h.History)
	group.POST("/:id/transition", h.Transition)
	group.POST("/:id/cancel", h.Cancel)
}

// Submit creates a new mediation request from the authenticated account.
func (h *RequestsHandler) Submit(c echo.Context) error {
	ctx := c.Request().Context()
	actor, err := RequireActor(ctx, c, h.accountService)
	if err != nil {
		return err
	}
	var in mediation.SubmitInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req, err := h.mediationService.Submit(ctx, actor, in)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusCreated, req)
}

// List returns the requests the authenticated account appears in.
func (h *RequestsHandler) List(c echo.Context) error {
	accountID, err := RequireAccountID(c)
	if err != nil {
		return err
	}
	items, err := h.mediationService.ListForActor(c.Request().Context(), accountID)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, items)
}

// ListPending returns the staff review queue.
func (h *RequestsHandler) ListPending(c echo.Context) error {
	ctx := c.Request().Context()
	actor, err := RequireActor(ctx, c, h.accountService)
	if err != nil {
		return err
	}
	items, err := h.mediationService.ListPending(ctx, actor)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, items)
}

// Get returns one request.
func (h *RequestsHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	actor, err := RequireActor(ctx, c, h.accountService)
	if err != nil {
		return err
	}
	req, err := h.mediationService.Get(ctx, actor, c.Param("id"))
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, req)
}

// History returns the audit trail of one request, oldest first.
func (h *RequestsHandler) History(c echo.Context) error {
	ctx := c.Request().Context()
	actor, err := RequireActor(ctx, c, h.accountService)
	if err != nil {
		return err
	}
	events, err := h.mediationService.History(ctx, actor, c.Param("id"))
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, events)
}

// Transition moves a request along one workflow edge.
func (h *RequestsHandler) Transition(c echo.Context) error {
	ctx := c.Request().Context()
	actor, err := RequireActor(ctx, c, h.accountService)
	if err != nil {
		return err
	}
	var in mediation.TransitionInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req, err := h.mediationService.Transition(ctx, actor, c.Param("id"), in)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, req)
}

// Cancel withdraws a non-terminal request. Requester only.
func (h *RequestsHandler) Cancel(c echo.Context) error {
	ctx := c.Request().Context()
	actor, err := RequireActor(ctx, c, h.accountService)
	if err != nil {
		return err
	}
	req, err := h.mediationService.Cancel(ctx, actor, c.Param("id"))
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, req)
}

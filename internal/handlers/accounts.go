package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/intromesh/intromesh/internal/accounts"
	"github.com/intromesh/intromesh/internal/alias"
)

// AccountsHandler serves staff-facing account administration and alias lookup.
type AccountsHandler struct {
	accountService *accounts.Service
	aliasService   *alias.Service
	logger         *slog.Logger
}

// ResetPasswordRequest is the body for POST /accounts/:id/password.
type ResetPasswordRequest struct {
	Password string `json:"password"`
}

// NewAccountsHandler creates the accounts handler.
func NewAccountsHandler(log *slog.Logger, accountService *accounts.Service, aliasService *alias.Service) *AccountsHandler {
	return &AccountsHandler{
		accountService: accountService,
		aliasService:   aliasService,
		logger:         log.With(slog.String("handler", "accounts")),
	}
}

// Register mounts the account routes on the Echo instance.
func (h *AccountsHandler) Register(e *echo.Echo) {
	group := e.Group("/accounts")
	group.GET("", h.List)
	group.POST("", h.Create)
	group.GET("/:id", h.Get)
	group.POST("/:id/password", h.ResetPassword)
	group.GET("/:id/alias", h.GetAlias)
}

// List returns all accounts. Staff only.
func (h *AccountsHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := RequireStaff(ctx, c, h.accountService); err != nil {
		return err
	}
	items, err := h.accountService.List(ctx)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, items)
}

// Create registers a new account. Staff only.
func (h *AccountsHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := RequireStaff(ctx, c, h.accountService); err != nil {
		return err
	}
	var req accounts.CreateAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	account, err := h.accountService.Create(ctx, req)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusCreated, account)
}

// Get returns one account. Accounts may read themselves; staff may read anyone.
func (h *AccountsHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	actor, err := RequireActor(ctx, c, h.accountService)
	if err != nil {
		return err
	}
	accountID := c.Param("id")
	if accountID != actor.ID && !actor.Staff {
		return echo.NewHTTPError(http.StatusForbidden, "cannot read other accounts")
	}
	account, err := h.accountService.Get(ctx, accountID)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, account)
}

// ResetPassword sets a new password for the account. Staff only.
func (h *AccountsHandler) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := RequireStaff(ctx, c, h.accountService); err != nil {
		return err
	}
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.accountService.ResetPassword(ctx, c.Param("id"), req.Password); err != nil {
		return domainHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetAlias resolves the stable role-scoped alias of an account. Staff only:
// parties learn counterparty aliases through conversations, never by lookup.
func (h *AccountsHandler) GetAlias(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := RequireStaff(ctx, c, h.accountService); err != nil {
		return err
	}
	resolved, err := h.aliasService.Lookup(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, alias.ErrNoBinding) {
			return echo.NewHTTPError(http.StatusNotFound, "no alias bound")
		}
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"account_id": resolved.AccountID,
		"alias":      resolved.Display(),
	})
}

package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/intromesh/intromesh/internal/accounts"
	"github.com/intromesh/intromesh/internal/auth"
	"github.com/intromesh/intromesh/internal/mediation"
)

// RequireAccountID extracts the authenticated account ID from the request context.
func RequireAccountID(c echo.Context) (string, error) {
	return auth.UserIDFromContext(c)
}

// RequireActor resolves the authenticated account into a mediation actor,
// including its staff capability.
func RequireActor(ctx context.Context, c echo.Context, accountService *accounts.Service) (mediation.Actor, error) {
	accountID, err := RequireAccountID(c)
	if err != nil {
		return mediation.Actor{}, err
	}
	staff, err := accountService.IsStaff(ctx, accountID)
	if err != nil {
		return mediation.Actor{}, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return mediation.Actor{ID: accountID, Staff: staff}, nil
}

// RequireStaff resolves the actor and rejects non-staff with 403.
func RequireStaff(ctx context.Context, c echo.Context, accountService *accounts.Service) (mediation.Actor, error) {
	actor, err := RequireActor(ctx, c, accountService)
	if err != nil {
		return mediation.Actor{}, err
	}
	if !actor.Staff {
		return mediation.Actor{}, echo.NewHTTPError(http.StatusForbidden, "staff capability required")
	}
	return actor, nil
}

func parseIntOr(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

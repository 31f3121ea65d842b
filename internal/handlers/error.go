package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/intromesh/intromesh/internal/accounts"
	"github.com/intromesh/intromesh/internal/conversation"
	"github.com/intromesh/intromesh/internal/mediation"
	"github.com/intromesh/intromesh/internal/message"
	"github.com/intromesh/intromesh/internal/realtime"
)

// ErrorResponse is the standard API error body (message only).
type ErrorResponse struct {
	Message string `json:"message"`
}

// domainHTTPError maps service errors onto the API's status taxonomy.
// 423 marks a suspended channel, 409 every state conflict, so clients can
// tell "wait for staff" apart from "re-read and retry".
func domainHTTPError(err error) error {
	switch {
	case errors.Is(err, mediation.ErrValidation),
		errors.Is(err, message.ErrEmptyContent),
		errors.Is(err, message.ErrContentTooLong):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, mediation.ErrUnauthorized),
		errors.Is(err, conversation.ErrNotParticipant):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, mediation.ErrRequestNotFound),
		errors.Is(err, conversation.ErrConversationNotFound),
		errors.Is(err, accounts.ErrAccountNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, mediation.ErrInvalidTransition),
		errors.Is(err, mediation.ErrStaleState),
		errors.Is(err, mediation.ErrDuplicatePending),
		errors.Is(err, conversation.ErrConversationClosed):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, conversation.ErrChannelSuspended):
		return echo.NewHTTPError(http.StatusLocked, err.Error())
	case errors.Is(err, realtime.ErrRateLimited):
		return echo.NewHTTPError(http.StatusTooManyRequests, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

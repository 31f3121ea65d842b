package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/intromesh/intromesh/internal/accounts"
	"github.com/intromesh/intromesh/internal/alias"
	"github.com/intromesh/intromesh/internal/conversation"
	"github.com/intromesh/intromesh/internal/mediation"
	messagepkg "github.com/intromesh/intromesh/internal/message"
	"github.com/intromesh/intromesh/internal/realtime"
)

// ConversationsHandler serves gated conversations: message flow, history, and
// the staff gate controls.
type ConversationsHandler struct {
	accountService      *accounts.Service
	aliasService        *alias.Service
	conversationService *conversation.Service
	messageService      *messagepkg.Service
	publisher           *realtime.Publisher
	limiter             *realtime.Limiter
	logger              *slog.Logger
}

// PostMessageRequest is the body for POST /conversations/:id/messages.
type PostMessageRequest struct {
	Content string `json:"content"`
}

// NewConversationsHandler creates the conversations handler.
func NewConversationsHandler(
	log *slog.Logger,
	accountService *accounts.Service,
	aliasService *alias.Service,
	conversationService *conversation.Service,
	messageService *messagepkg.Service,
	publisher *realtime.Publisher,
	limiter *realtime.Limiter,
) *ConversationsHandler {
	return &ConversationsHandler{
		accountService:      accountService,
		aliasService:        aliasService,
		conversationService: conversationService,
		messageService:      messageService,
		publisher:           publisher,
		limiter:             limiter,
		logger:              log.With(slog.String("handler", "conversations")),
	}
}

// Register mounts the conversation routes on the Echo instance.
func (h *ConversationsHandler) Register(e *echo.Echo) {
	group := e.Group("/conversations")
	group.GET("", h.List)
	group.GET("/:id", h.Get)
	group.GET("/:id/messages", h.ListMessages)
	group.POST("/:id/messages", h.PostMessage)
	group.POST("/:id/approve", h.Approve)
	group.POST("/:id/disclosure", h.UnlockDisclosure)
	group.POST("/:id/close", h.Close)
}

// List returns the authenticated account's conversations.
func (h *ConversationsHandler) List(c echo.Context) error {
	accountID, err := RequireAccountID(c)
	if err != nil {
		return err
	}
	items, err := h.conversationService.ListForAccount(c.Request().Context(), accountID)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, items)
}

// Get returns one conversation with its participants.
func (h *ConversationsHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	actor, err := RequireActor(ctx, c, h.accountService)
	if err != nil {
		return err
	}
	conv, err := h.authorizeRead(ctx, actor, c.Param("id"))
	if err != nil {
		return err
	}
	if err := h.discloseParticipants(ctx, &conv); err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, conv)
}

// discloseParticipants attaches real display names once the disclosure gate
// is unlocked. While locked, participants stay alias-only.
func (h *ConversationsHandler) discloseParticipants(ctx context.Context, conv *conversation.Conversation) error {
	disclosed, err := h.aliasService.CanDisclose(ctx, conv.ID)
	if err != nil || !disclosed {
		return err
	}
	for i, p := range conv.Participants {
		account, err := h.accountService.Get(ctx, p.AccountID)
		if err != nil {
			return err
		}
		conv.Participants[i].DisplayName = account.DisplayName
	}
	return nil
}

// ListMessages returns one page of history, oldest first within the page.
func (h *ConversationsHandler) ListMessages(c echo.Context) error {
	ctx := c.Request().Context()
	actor, err := RequireActor(ctx, c, h.accountService)
	if err != nil {
		return err
	}
	if _, err := h.authorizeRead(ctx, actor, c.Param("id")); err != nil {
		return err
	}
	page := parseIntOr(c.QueryParam("page"), 1)
	pageSize := parseIntOr(c.QueryParam("page_size"), 0)
	result, err := h.messageService.ListPage(ctx, c.Param("id"), page, pageSize)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// PostMessage sends one message through the channel gate: validation first,
// then the rate limit, then the gate and persistence in one transaction, then
// fan-out. A rejected message is reported, never silently dropped, and it
// never consumes channel budget.
func (h *ConversationsHandler) PostMessage(c echo.Context) error {
	ctx := c.Request().Context()
	accountID, err := RequireAccountID(c)
	if err != nil {
		return err
	}
	conversationID := c.Param("id")

	isParticipant, err := h.conversationService.IsParticipant(ctx, conversationID, accountID)
	if err != nil {
		return domainHTTPError(err)
	}
	if !isParticipant {
		return domainHTTPError(conversation.ErrNotParticipant)
	}

	var req PostMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	content, err := messagepkg.ValidateContent(req.Content)
	if err != nil {
		return domainHTTPError(err)
	}

	if !h.limiter.Allow(accountID) {
		return domainHTTPError(realtime.ErrRateLimited)
	}

	msg, state, err := h.messageService.Send(ctx, conversationID, accountID, content)
	if err != nil {
		return domainHTTPError(err)
	}

	payload, _ := json.Marshal(map[string]string{
		"message_id":   msg.ID,
		"sender_alias": msg.SenderAlias,
		"content":      msg.Content,
	})
	h.publisher.PublishToParticipants(state.ParticipantIDs, realtime.Event{
		Type:           realtime.TypeMessageCreated,
		ConversationID: state.ConversationID,
		Data:           payload,
	})

	if state.Suspended {
		// This message exhausted the budget; staff must re-approve.
		h.publisher.PublishToParticipants(state.ParticipantIDs, realtime.Event{
			Type:           realtime.TypeChannelSuspended,
			ConversationID: state.ConversationID,
			RequestID:      state.RequestID,
		})
		h.publisher.PublishToStaff(realtime.Event{
			Type:           realtime.TypeApprovalNeeded,
			ConversationID: state.ConversationID,
			RequestID:      state.RequestID,
		})
	}

	return c.JSON(http.StatusCreated, msg)
}

// Approve reopens a suspended channel with a fresh budget window. Staff only.
func (h *ConversationsHandler) Approve(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := RequireStaff(ctx, c, h.accountService); err != nil {
		return err
	}
	conv, err := h.conversationService.AdminApprove(ctx, c.Param("id"))
	if err != nil {
		return domainHTTPError(err)
	}
	h.publisher.PublishToParticipants(conv.ParticipantIDs(), realtime.Event{
		Type:           realtime.TypeChannelReopened,
		ConversationID: conv.ID,
		RequestID:      conv.RequestID,
	})
	return c.JSON(http.StatusOK, conv)
}

// UnlockDisclosure flips the disclosure gate. Staff only.
func (h *ConversationsHandler) UnlockDisclosure(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := RequireStaff(ctx, c, h.accountService); err != nil {
		return err
	}
	conv, err := h.conversationService.UnlockDisclosure(ctx, c.Param("id"))
	if err != nil {
		return domainHTTPError(err)
	}
	h.publisher.PublishToParticipants(conv.ParticipantIDs(), realtime.Event{
		Type:           realtime.TypeDisclosureUnlocked,
		ConversationID: conv.ID,
		RequestID:      conv.RequestID,
	})
	return c.JSON(http.StatusOK, conv)
}

// Close terminates a conversation. Staff only; requests close their own
// conversation when they reach a terminal status.
func (h *ConversationsHandler) Close(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := RequireStaff(ctx, c, h.accountService); err != nil {
		return err
	}
	conv, err := h.conversationService.Close(ctx, c.Param("id"))
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, conv)
}

// authorizeRead loads the conversation and verifies the actor may see it:
// participants and staff only.
func (h *ConversationsHandler) authorizeRead(ctx context.Context, actor mediation.Actor, conversationID string) (conversation.Conversation, error) {
	conv, err := h.conversationService.Get(ctx, conversationID)
	if err != nil {
		return conversation.Conversation{}, domainHTTPError(err)
	}
	if actor.Staff {
		return conv, nil
	}
	for _, p := range conv.Participants {
		if p.AccountID == actor.ID {
			return conv, nil
		}
	}
	return conversation.Conversation{}, domainHTTPError(conversation.ErrNotParticipant)
}

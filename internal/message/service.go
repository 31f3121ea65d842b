// Package message persists and pages conversation history.
package message

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/intromesh/intromesh/internal/conversation"
	dbpkg "github.com/intromesh/intromesh/internal/db"
	"github.com/intromesh/intromesh/internal/db/sqlc"
)

// MaxContentLength bounds a single message body.
const MaxContentLength = 4000

const defaultPageSize = 50

var (
	ErrEmptyContent   = errors.New("message content is empty")
	ErrContentTooLong = errors.New("message content too long")
)

// Service delivers messages through the channel gate and serves paged history.
type Service struct {
	pool    txBeginner
	queries *sqlc.Queries
	logger  *slog.Logger
}

// txBeginner is the transaction-opening subset of pgxpool.Pool.
type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

func NewService(log *slog.Logger, pool txBeginner, queries *sqlc.Queries) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		pool:    pool,
		queries: queries,
		logger:  log.With(slog.String("service", "message")),
	}
}

// ValidateContent normalizes a message body and enforces the size bounds. An
// invalid body never reaches the gate, so it cannot consume channel budget.
func ValidateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrEmptyContent
	}
	if len(content) > MaxContentLength {
		return "", ErrContentTooLong
	}
	return content, nil
}

// SendState reports the gate outcome of one delivered message.
type SendState struct {
	ConversationID string
	RequestID      string
	GateState      string
	Suspended      bool
	ParticipantIDs []string
}

// Send delivers one message: the gate compare-and-swap and the insert run in
// a single transaction, so the unsupervised counter moves if and only if a
// message was stored. A send the gate refuses is reported, never silently
// dropped.
func (s *Service) Send(ctx context.Context, conversationID, senderID, content string) (Message, SendState, error) {
	content, err := ValidateContent(content)
	if err != nil {
		return Message{}, SendState{}, err
	}
	pgConversationID, err := dbpkg.ParseUUID(conversationID)
	if err != nil {
		return Message{}, SendState{}, conversation.ErrConversationNotFound
	}
	pgSenderID, err := dbpkg.ParseUUID(senderID)
	if err != nil {
		return Message{}, SendState{}, fmt.Errorf("invalid sender id: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Message{}, SendState{}, err
	}
	defer tx.Rollback(ctx)
	qtx := s.queries.WithTx(tx)

	conv, err := qtx.RecordConversationMessage(ctx, pgConversationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Message{}, SendState{}, s.gateRefusal(ctx, pgConversationID)
		}
		return Message{}, SendState{}, err
	}
	row, err := qtx.CreateMessage(ctx, sqlc.CreateMessageParams{
		ConversationID: pgConversationID,
		SenderID:       pgSenderID,
		Content:        content,
		Delivered:      true,
	})
	if err != nil {
		return Message{}, SendState{}, fmt.Errorf("create message: %w", err)
	}
	participants, err := qtx.ListConversationParticipants(ctx, pgConversationID)
	if err != nil {
		return Message{}, SendState{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Message{}, SendState{}, err
	}

	msg := toMessage(row)
	state := SendState{
		ConversationID: conversationID,
		RequestID:      dbpkg.UUIDString(conv.RequestID),
		GateState:      conv.GateState,
		Suspended:      conv.GateState == conversation.GateSuspended,
		ParticipantIDs: make([]string, 0, len(participants)),
	}
	for _, p := range participants {
		accountID := dbpkg.UUIDString(p.AccountID)
		if accountID == msg.SenderID {
			msg.SenderAlias = p.Alias
		}
		state.ParticipantIDs = append(state.ParticipantIDs, accountID)
	}
	return msg, state, nil
}

// gateRefusal maps a failed gate compare-and-swap to the reason the caller
// sees: the gate was not open, so nothing was counted or stored.
func (s *Service) gateRefusal(ctx context.Context, conversationID pgtype.UUID) error {
	current, err := s.queries.GetConversation(ctx, conversationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return conversation.ErrConversationNotFound
		}
		return err
	}
	if current.GateState == conversation.GateClosed {
		return conversation.ErrConversationClosed
	}
	return conversation.ErrChannelSuspended
}

// ListPage returns one page of history. Pages are counted newest-first, so
// page 1 holds the most recent messages; within a page items run oldest
// first, ready for display.
func (s *Service) ListPage(ctx context.Context, conversationID string, page, pageSize int) (Page, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = defaultPageSize
	}
	pgConversationID, err := dbpkg.ParseUUID(conversationID)
	if err != nil {
		return Page{}, fmt.Errorf("invalid conversation id: %w", err)
	}

	total, err := s.queries.CountMessages(ctx, pgConversationID)
	if err != nil {
		return Page{}, err
	}
	rows, err := s.queries.ListMessagesPage(ctx, sqlc.ListMessagesPageParams{
		ConversationID: pgConversationID,
		Limit:          int32(pageSize),
		Offset:         int32((page - 1) * pageSize),
	})
	if err != nil {
		return Page{}, err
	}

	aliases, err := s.participantAliases(ctx, pgConversationID)
	if err != nil {
		return Page{}, err
	}

	items := make([]Message, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		msg := toMessage(rows[i])
		msg.SenderAlias = aliases[msg.SenderID]
		items = append(items, msg)
	}
	return Page{
		Items: items,
		Pagination: Pagination{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		},
	}, nil
}

func (s *Service) participantAliases(ctx context.Context, conversationID pgtype.UUID) (map[string]string, error) {
	rows, err := s.queries.ListConversationParticipants(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	aliases := make(map[string]string, len(rows))
	for _, row := range rows {
		aliases[dbpkg.UUIDString(row.AccountID)] = row.Alias
	}
	return aliases, nil
}

func toMessage(row sqlc.Message) Message {
	return Message{
		ID:             dbpkg.UUIDString(row.ID),
		ConversationID: dbpkg.UUIDString(row.ConversationID),
		SenderID:       dbpkg.UUIDString(row.SenderID),
		Content:        row.Content,
		Delivered:      row.Delivered,
		CreatedAt:      dbpkg.TimeFromPg(row.CreatedAt),
	}
}

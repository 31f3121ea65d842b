// Package conversation manages gated conversations between mediated parties.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/intromesh/intromesh/internal/alias"
	dbpkg "github.com/intromesh/intromesh/internal/db"
	"github.com/intromesh/intromesh/internal/db/sqlc"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotParticipant       = errors.New("not a participant")
	// ErrChannelSuspended signals the unsupervised message budget is exhausted
	// and staff must re-approve the channel. The message is rejected, never
	// silently dropped.
	ErrChannelSuspended   = errors.New("channel suspended")
	ErrConversationClosed = errors.New("conversation closed")
)

// Service manages conversation lifecycle, participants, and the channel gate.
type Service struct {
	queries       *sqlc.Queries
	aliases       *alias.Service
	defaultBudget int32
	logger        *slog.Logger
}

// NewService creates a conversation service. defaultBudget is the
// unsupervised message budget applied to newly opened conversations.
func NewService(log *slog.Logger, queries *sqlc.Queries, aliases *alias.Service, defaultBudget int32) *Service {
	if log == nil {
		log = slog.Default()
	}
	if defaultBudget <= 0 {
		defaultBudget = 5
	}
	return &Service{
		queries:       queries,
		aliases:       aliases,
		defaultBudget: defaultBudget,
		logger:        log.With(slog.String("service", "conversation")),
	}
}

// Get returns a conversation with its participants.
func (s *Service) Get(ctx context.Context, conversationID string) (Conversation, error) {
	pgID, err := dbpkg.ParseUUID(conversationID)
	if err != nil {
		return Conversation{}, ErrConversationNotFound
	}
	row, err := s.queries.GetConversation(ctx, pgID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Conversation{}, ErrConversationNotFound
		}
		return Conversation{}, err
	}
	return s.withParticipants(ctx, toConversation(row))
}

// ListForAccount returns all conversations the account participates in.
func (s *Service) ListForAccount(ctx context.Context, accountID string) ([]Conversation, error) {
	pgID, err := dbpkg.ParseUUID(accountID)
	if err != nil {
		return nil, fmt.Errorf("invalid account id: %w", err)
	}
	rows, err := s.queries.ListConversationsForAccount(ctx, pgID)
	if err != nil {
		return nil, err
	}
	items := make([]Conversation, 0, len(rows))
	for _, row := range rows {
		items = append(items, toConversation(row))
	}
	return items, nil
}

// IsParticipant reports membership of an account in a conversation.
func (s *Service) IsParticipant(ctx context.Context, conversationID, accountID string) (bool, error) {
	pgConversationID, err := dbpkg.ParseUUID(conversationID)
	if err != nil {
		return false, ErrConversationNotFound
	}
	pgAccountID, err := dbpkg.ParseUUID(accountID)
	if err != nil {
		return false, fmt.Errorf("invalid account id: %w", err)
	}
	return s.queries.IsConversationParticipant(ctx, sqlc.IsConversationParticipantParams{
		ConversationID: pgConversationID,
		AccountID:      pgAccountID,
	})
}

// EnsureForRequest creates or reuses the conversation attached to a mediation
// request, opening the gate with the default budget and binding both
// participants under their aliases. Safe to call from concurrent transitions:
// the unique request index resolves the race.
func (s *Service) EnsureForRequest(ctx context.Context, requestID string, participantIDs ...string) (Conversation, error) {
	pgRequestID, err := dbpkg.ParseUUID(requestID)
	if err != nil {
		return Conversation{}, fmt.Errorf("invalid request id: %w", err)
	}

	existing, err := s.queries.GetConversationByRequest(ctx, pgRequestID)
	if err == nil {
		return s.withParticipants(ctx, toConversation(existing))
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Conversation{}, err
	}

	row, err := s.queries.CreateConversation(ctx, sqlc.CreateConversationParams{
		RequestID:     pgRequestID,
		MessageBudget: s.defaultBudget,
	})
	if err != nil {
		if dbpkg.IsUniqueViolation(err) {
			raced, getErr := s.queries.GetConversationByRequest(ctx, pgRequestID)
			if getErr != nil {
				return Conversation{}, getErr
			}
			return s.withParticipants(ctx, toConversation(raced))
		}
		return Conversation{}, fmt.Errorf("create conversation: %w", err)
	}
	conversationID := dbpkg.UUIDString(row.ID)

	for _, accountID := range participantIDs {
		resolved, err := s.aliases.ResolveAlias(ctx, accountID, "")
		if err != nil {
			return Conversation{}, fmt.Errorf("resolve alias for participant: %w", err)
		}
		pgAccountID, err := dbpkg.ParseUUID(accountID)
		if err != nil {
			return Conversation{}, fmt.Errorf("invalid participant id: %w", err)
		}
		if _, err := s.queries.AddConversationParticipant(ctx, sqlc.AddConversationParticipantParams{
			ConversationID: row.ID,
			AccountID:      pgAccountID,
			Alias:          resolved.Display(),
		}); err != nil {
			return Conversation{}, fmt.Errorf("add participant: %w", err)
		}
	}

	s.logger.Info("conversation opened",
		slog.String("conversation_id", conversationID),
		slog.String("request_id", requestID),
	)
	return s.Get(ctx, conversationID)
}

// AdminApprove reopens a suspended channel with a fresh budget window.
// Approving an already-open channel is an idempotent no-op; in particular it
// never resets the counter, so a window can never stretch past its budget.
func (s *Service) AdminApprove(ctx context.Context, conversationID string) (Conversation, error) {
	pgID, err := dbpkg.ParseUUID(conversationID)
	if err != nil {
		return Conversation{}, ErrConversationNotFound
	}
	row, err := s.queries.ReopenConversationGate(ctx, pgID)
	if err == nil {
		s.logger.Info("channel reopened", slog.String("conversation_id", conversationID))
		return toConversation(row), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Conversation{}, err
	}

	current, getErr := s.queries.GetConversation(ctx, pgID)
	if getErr != nil {
		if errors.Is(getErr, pgx.ErrNoRows) {
			return Conversation{}, ErrConversationNotFound
		}
		return Conversation{}, getErr
	}
	switch current.GateState {
	case GateOpen:
		return toConversation(current), nil
	case GateClosed:
		return Conversation{}, ErrConversationClosed
	default:
		return Conversation{}, fmt.Errorf("unexpected gate state: %s", current.GateState)
	}
}

// UnlockDisclosure flips the disclosure gate after the external NDA/payment
// signal (or explicit staff sign-off). Separate from channel re-approval.
func (s *Service) UnlockDisclosure(ctx context.Context, conversationID string) (Conversation, error) {
	pgID, err := dbpkg.ParseUUID(conversationID)
	if err != nil {
		return Conversation{}, ErrConversationNotFound
	}
	row, err := s.queries.UnlockConversationDisclosure(ctx, pgID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either gone or closed.
			if _, getErr := s.queries.GetConversation(ctx, pgID); getErr != nil {
				return Conversation{}, ErrConversationNotFound
			}
			return Conversation{}, ErrConversationClosed
		}
		return Conversation{}, err
	}
	s.logger.Info("disclosure unlocked", slog.String("conversation_id", conversationID))
	return toConversation(row), nil
}

// Close soft-closes the conversation. Terminal.
func (s *Service) Close(ctx context.Context, conversationID string) (Conversation, error) {
	pgID, err := dbpkg.ParseUUID(conversationID)
	if err != nil {
		return Conversation{}, ErrConversationNotFound
	}
	row, err := s.queries.CloseConversation(ctx, pgID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if current, getErr := s.queries.GetConversation(ctx, pgID); getErr == nil {
				// Already closed; closing is idempotent.
				return toConversation(current), nil
			}
			return Conversation{}, ErrConversationNotFound
		}
		return Conversation{}, err
	}
	return toConversation(row), nil
}

func (s *Service) withParticipants(ctx context.Context, conv Conversation) (Conversation, error) {
	pgID, err := dbpkg.ParseUUID(conv.ID)
	if err != nil {
		return conv, nil
	}
	rows, err := s.queries.ListConversationParticipants(ctx, pgID)
	if err != nil {
		return Conversation{}, err
	}
	conv.Participants = make([]Participant, 0, len(rows))
	for _, row := range rows {
		conv.Participants = append(conv.Participants, Participant{
			AccountID: dbpkg.UUIDString(row.AccountID),
			Alias:     row.Alias,
			JoinedAt:  dbpkg.TimeFromPg(row.JoinedAt),
		})
	}
	return conv, nil
}

func toConversation(row sqlc.Conversation) Conversation {
	return Conversation{
		ID:                dbpkg.UUIDString(row.ID),
		RequestID:         dbpkg.UUIDString(row.RequestID),
		DisclosureState:   row.DisclosureState,
		GateState:         row.GateState,
		UnsupervisedCount: row.UnsupervisedCount,
		MessageBudget:     row.MessageBudget,
		CreatedAt:         dbpkg.TimeFromPg(row.CreatedAt),
		UpdatedAt:         dbpkg.TimeFromPg(row.UpdatedAt),
	}
}

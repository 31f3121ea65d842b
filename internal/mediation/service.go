// Package mediation implements the admin-mediated request workflow: every
// introduction between parties moves through a staff-supervised state machine
// before any direct channel opens.
package mediation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/intromesh/intromesh/internal/conversation"
	dbpkg "github.com/intromesh/intromesh/internal/db"
	"github.com/intromesh/intromesh/internal/db/sqlc"
	"github.com/intromesh/intromesh/internal/realtime"
)

// Notifier delivers out-of-band notifications for request activity.
// Implementations must not block; the service calls them asynchronously.
type Notifier interface {
	NotifyStatusChange(ctx context.Context, req Request)
}

type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Service runs the mediation state machine over the request ledger.
type Service struct {
	pool          txBeginner
	queries       *sqlc.Queries
	conversations *conversation.Service
	publisher     *realtime.Publisher
	notifier      Notifier
	logger        *slog.Logger
}

func NewService(
	log *slog.Logger,
	pool txBeginner,
	queries *sqlc.Queries,
	conversations *conversation.Service,
	publisher *realtime.Publisher,
	notifier Notifier,
) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		pool:          pool,
		queries:       queries,
		conversations: conversations,
		publisher:     publisher,
		notifier:      notifier,
		logger:        log.With(slog.String("service", "mediation")),
	}
}

// Submit creates a new request in its entry status and records the first
// ledger event. A non-terminal request for the same kind and pair already in
// flight makes this a duplicate.
func (s *Service) Submit(ctx context.Context, actor Actor, in SubmitInput) (Request, error) {
	initial := InitialStatus(in.Kind)
	if initial == "" {
		return Request{}, fmt.Errorf("%w: unknown kind %q", ErrValidation, in.Kind)
	}
	if strings.TrimSpace(in.Payload) == "" {
		return Request{}, fmt.Errorf("%w: payload is empty", ErrValidation)
	}
	if in.TargetID == actor.ID {
		return Request{}, fmt.Errorf("%w: request targets its own requester", ErrValidation)
	}
	pgRequesterID, err := dbpkg.ParseUUID(actor.ID)
	if err != nil {
		return Request{}, fmt.Errorf("%w: bad requester id", ErrValidation)
	}
	pgTargetID, err := dbpkg.ParseUUID(in.TargetID)
	if err != nil {
		return Request{}, fmt.Errorf("%w: bad target id", ErrValidation)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Request{}, err
	}
	defer tx.Rollback(ctx)
	qtx := s.queries.WithTx(tx)

	row, err := qtx.CreateMediationRequest(ctx, sqlc.CreateMediationRequestParams{
		Kind:        in.Kind,
		RequesterID: pgRequesterID,
		TargetID:    pgTargetID,
		Payload:     in.Payload,
		Status:      initial,
	})
	if err != nil {
		if dbpkg.IsUniqueViolation(err) {
			return Request{}, ErrDuplicatePending
		}
		return Request{}, fmt.Errorf("create request: %w", err)
	}
	if _, err := qtx.CreateRequestEvent(ctx, sqlc.CreateRequestEventParams{
		RequestID: row.ID,
		ActorID:   pgRequesterID,
		Action:    "submit",
		ToStatus:  initial,
	}); err != nil {
		return Request{}, fmt.Errorf("record submit event: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Request{}, err
	}

	req := toRequest(row)
	s.logger.Info("request submitted",
		slog.String("request_id", req.ID),
		slog.String("kind", req.Kind),
	)
	s.publishStaff(realtime.Event{
		Type:      realtime.TypeFormSubmitted,
		RequestID: req.ID,
		Data:      mustJSON(map[string]string{"kind": req.Kind, "status": req.Status}),
	})
	s.notifyAsync(req)
	return req, nil
}

// Transition moves a request along one edge of its graph. The expected
// status acts as a compare-and-swap token: if another actor moved the request
// first, the caller gets ErrStaleState and must re-read.
func (s *Service) Transition(ctx context.Context, actor Actor, requestID string, in TransitionInput) (Request, error) {
	current, err := s.get(ctx, requestID)
	if err != nil {
		return Request{}, err
	}
	expected := in.ExpectedStatus
	if expected == "" {
		expected = current.Status
	}

	class := classify(actor, current)
	edgeExists, allowed := CanTransition(current.Kind, expected, in.ToStatus, class)
	if !edgeExists {
		return Request{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, expected, in.ToStatus)
	}
	if !allowed {
		return Request{}, ErrUnauthorized
	}
	if in.EditedPayload != "" && !actor.Staff {
		return Request{}, ErrUnauthorized
	}

	pgActorID, err := dbpkg.ParseUUID(actor.ID)
	if err != nil {
		return Request{}, fmt.Errorf("%w: bad actor id", ErrValidation)
	}
	pgRequestID, _ := dbpkg.ParseUUID(requestID)

	edited := pgtype.Text{}
	if in.EditedPayload != "" {
		edited = dbpkg.ToPgText(in.EditedPayload)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Request{}, err
	}
	defer tx.Rollback(ctx)
	qtx := s.queries.WithTx(tx)

	row, err := qtx.TransitionMediationRequest(ctx, sqlc.TransitionMediationRequestParams{
		ID:                 pgRequestID,
		Status:             expected,
		Status_2:           in.ToStatus,
		AdminEditedPayload: edited,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := s.queries.GetMediationRequest(ctx, pgRequestID); getErr != nil {
				return Request{}, ErrRequestNotFound
			}
			return Request{}, ErrStaleState
		}
		return Request{}, fmt.Errorf("transition request: %w", err)
	}
	if _, err := qtx.CreateRequestEvent(ctx, sqlc.CreateRequestEventParams{
		RequestID:  pgRequestID,
		ActorID:    pgActorID,
		Action:     "transition",
		FromStatus: expected,
		ToStatus:   in.ToStatus,
		Note:       in.Note,
	}); err != nil {
		return Request{}, fmt.Errorf("record transition event: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Request{}, err
	}

	req := toRequest(row)
	s.logger.Info("request transitioned",
		slog.String("request_id", req.ID),
		slog.String("from", expected),
		slog.String("to", req.Status),
	)
	s.applySideEffects(ctx, req, expected)
	s.notifyAsync(req)
	return req, nil
}

// Cancel lets the requester withdraw any non-terminal request. The request
// row stays locked for the duration, so a concurrent transition cannot slip
// between the status check and the close; the conversation, if one was
// opened, closes in the same transaction so no channel outlives its request.
func (s *Service) Cancel(ctx context.Context, actor Actor, requestID string) (Request, error) {
	pgActorID, err := dbpkg.ParseUUID(actor.ID)
	if err != nil {
		return Request{}, fmt.Errorf("%w: bad actor id", ErrValidation)
	}
	pgRequestID, err := dbpkg.ParseUUID(requestID)
	if err != nil {
		return Request{}, ErrRequestNotFound
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Request{}, err
	}
	defer tx.Rollback(ctx)
	qtx := s.queries.WithTx(tx)

	locked, err := qtx.GetMediationRequestForUpdate(ctx, pgRequestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Request{}, ErrRequestNotFound
		}
		return Request{}, err
	}
	current := toRequest(locked)
	if current.RequesterID != actor.ID {
		return Request{}, ErrUnauthorized
	}
	if current.Terminal() {
		return Request{}, fmt.Errorf("%w: request already closed", ErrInvalidTransition)
	}

	row, err := qtx.TransitionMediationRequest(ctx, sqlc.TransitionMediationRequestParams{
		ID:       pgRequestID,
		Status:   current.Status,
		Status_2: StatusClosedRejected,
	})
	if err != nil {
		return Request{}, fmt.Errorf("cancel request: %w", err)
	}
	if _, err := qtx.CreateRequestEvent(ctx, sqlc.CreateRequestEventParams{
		RequestID:  pgRequestID,
		ActorID:    pgActorID,
		Action:     "cancel",
		FromStatus: current.Status,
		ToStatus:   StatusClosedRejected,
		Note:       "cancelled",
	}); err != nil {
		return Request{}, fmt.Errorf("record cancel event: %w", err)
	}
	if _, err := qtx.CloseConversationByRequest(ctx, pgRequestID); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return Request{}, fmt.Errorf("close conversation: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Request{}, err
	}

	req := toRequest(row)
	s.logger.Info("request cancelled", slog.String("request_id", req.ID))
	s.publishStatusChanged(req, current.Status)
	s.notifyAsync(req)
	return req, nil
}

// Get returns one request. Only the two parties and staff may read it.
func (s *Service) Get(ctx context.Context, actor Actor, requestID string) (Request, error) {
	req, err := s.get(ctx, requestID)
	if err != nil {
		return Request{}, err
	}
	if !s.canRead(actor, req) {
		return Request{}, ErrUnauthorized
	}
	return req, nil
}

// History returns the ledger events for a request, oldest first.
func (s *Service) History(ctx context.Context, actor Actor, requestID string) ([]Event, error) {
	req, err := s.get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !s.canRead(actor, req) {
		return nil, ErrUnauthorized
	}
	pgRequestID, _ := dbpkg.ParseUUID(requestID)
	rows, err := s.queries.ListRequestEvents(ctx, pgRequestID)
	if err != nil {
		return nil, err
	}
	events := make([]Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, Event{
			ID:         dbpkg.UUIDString(row.ID),
			RequestID:  dbpkg.UUIDString(row.RequestID),
			ActorID:    dbpkg.UUIDString(row.ActorID),
			Action:     row.Action,
			FromStatus: row.FromStatus,
			ToStatus:   row.ToStatus,
			Note:       row.Note,
			CreatedAt:  dbpkg.TimeFromPg(row.CreatedAt),
		})
	}
	return events, nil
}

// ListForActor returns all requests the account appears in, newest first.
func (s *Service) ListForActor(ctx context.Context, accountID string) ([]Request, error) {
	pgID, err := dbpkg.ParseUUID(accountID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad account id", ErrValidation)
	}
	rows, err := s.queries.ListMediationRequestsForAccount(ctx, pgID)
	if err != nil {
		return nil, err
	}
	items := make([]Request, 0, len(rows))
	for _, row := range rows {
		items = append(items, toRequest(row))
	}
	return items, nil
}

// ListPending returns the staff work queue, oldest first: every request
// sitting on a status whose next move is staff's, including approved calls
// still waiting to be scheduled.
func (s *Service) ListPending(ctx context.Context, actor Actor) ([]Request, error) {
	if !actor.Staff {
		return nil, ErrUnauthorized
	}
	rows, err := s.queries.ListPendingMediationRequests(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]Request, 0, len(rows))
	for _, row := range rows {
		items = append(items, toRequest(row))
	}
	return items, nil
}

func (s *Service) get(ctx context.Context, requestID string) (Request, error) {
	pgID, err := dbpkg.ParseUUID(requestID)
	if err != nil {
		return Request{}, ErrRequestNotFound
	}
	row, err := s.queries.GetMediationRequest(ctx, pgID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Request{}, ErrRequestNotFound
		}
		return Request{}, err
	}
	return toRequest(row), nil
}

func (s *Service) canRead(actor Actor, req Request) bool {
	return actor.Staff || actor.ID == req.RequesterID || actor.ID == req.TargetID
}

// applySideEffects runs the conversation consequences of a committed
// transition. Every step here is idempotent, so a crash between commit and
// side effects heals on the next transition.
func (s *Service) applySideEffects(ctx context.Context, req Request, fromStatus string) {
	if req.Kind == KindCommunication {
		switch req.Status {
		case StatusForwardedToCounterpart, StatusApprovedDisclosed:
			conv, err := s.conversations.EnsureForRequest(ctx, req.ID, req.RequesterID, req.TargetID)
			if err != nil {
				s.logger.Error("ensure conversation", slog.String("request_id", req.ID), slog.String("error", err.Error()))
				break
			}
			if req.Status == StatusApprovedDisclosed {
				if _, err := s.conversations.UnlockDisclosure(ctx, conv.ID); err != nil &&
					!errors.Is(err, conversation.ErrConversationClosed) {
					s.logger.Error("unlock disclosure", slog.String("conversation_id", conv.ID), slog.String("error", err.Error()))
				} else {
					s.publisher.PublishToParticipants([]string{req.RequesterID, req.TargetID}, realtime.Event{
						Type:           realtime.TypeDisclosureUnlocked,
						ConversationID: conv.ID,
						RequestID:      req.ID,
					})
				}
			}
		}
	}
	switch req.Status {
	case StatusSubmitted, StatusCounterpartyResponded:
		// Back in a staff queue.
		s.publishStaff(realtime.Event{
			Type:      realtime.TypeApprovalNeeded,
			RequestID: req.ID,
			Data:      mustJSON(map[string]string{"status": req.Status}),
		})
	}
	if req.Terminal() {
		pgRequestID, err := dbpkg.ParseUUID(req.ID)
		if err == nil {
			if _, err := s.queries.CloseConversationByRequest(ctx, pgRequestID); err != nil && !errors.Is(err, pgx.ErrNoRows) {
				s.logger.Error("close conversation", slog.String("request_id", req.ID), slog.String("error", err.Error()))
			}
		}
	}
	s.publishStatusChanged(req, fromStatus)
}

func (s *Service) publishStatusChanged(req Request, fromStatus string) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishToParticipants([]string{req.RequesterID, req.TargetID}, realtime.Event{
		Type:      realtime.TypeStatusChanged,
		RequestID: req.ID,
		Data:      mustJSON(map[string]string{"from": fromStatus, "to": req.Status}),
	})
}

func (s *Service) publishStaff(ev realtime.Event) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishToStaff(ev)
}

func (s *Service) notifyAsync(req Request) {
	if s.notifier == nil {
		return
	}
	go s.notifier.NotifyStatusChange(context.Background(), req)
}

func mustJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}

func toRequest(row sqlc.MediationRequest) Request {
	return Request{
		ID:                 dbpkg.UUIDString(row.ID),
		Kind:               row.Kind,
		RequesterID:        dbpkg.UUIDString(row.RequesterID),
		TargetID:           dbpkg.UUIDString(row.TargetID),
		Payload:            row.Payload,
		AdminEditedPayload: dbpkg.TextToString(row.AdminEditedPayload),
		Status:             row.Status,
		CreatedAt:          dbpkg.TimeFromPg(row.CreatedAt),
		UpdatedAt:          dbpkg.TimeFromPg(row.UpdatedAt),
	}
}

package mediation_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/intromesh/intromesh/internal/accounts"
	"github.com/intromesh/intromesh/internal/alias"
	"github.com/intromesh/intromesh/internal/conversation"
	"github.com/intromesh/intromesh/internal/db/sqlc"
	"github.com/intromesh/intromesh/internal/mediation"
	messagepkg "github.com/intromesh/intromesh/internal/message"
	"github.com/intromesh/intromesh/internal/realtime"
)

const testMessageBudget = 3

type mediationFixture struct {
	queries       *sqlc.Queries
	accounts      *accounts.Service
	conversations *conversation.Service
	messages      *messagepkg.Service
	mediation     *mediation.Service
}

func setupMediationIntegrationTest(t *testing.T) (*mediationFixture, func()) {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("skip integration test: TEST_POSTGRES_DSN is not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Skipf("skip integration test: cannot connect to database: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("skip integration test: database ping failed: %v", err)
	}

	queries := sqlc.New(pool)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	accountSvc := accounts.NewService(logger, queries)
	aliasSvc := alias.NewService(logger, pool, queries)
	conversationSvc := conversation.NewService(logger, queries, aliasSvc, testMessageBudget)
	messageSvc := messagepkg.NewService(logger, pool, queries)
	publisher := realtime.NewPublisher(logger, realtime.NewHub())
	mediationSvc := mediation.NewService(logger, pool, queries, conversationSvc, publisher, nil)

	return &mediationFixture{
		queries:       queries,
		accounts:      accountSvc,
		conversations: conversationSvc,
		messages:      messageSvc,
		mediation:     mediationSvc,
	}, func() { pool.Close() }
}

func createAccountForTest(t *testing.T, f *mediationFixture, role string) accounts.Account {
	t.Helper()
	account, err := f.accounts.Create(context.Background(), accounts.CreateAccountRequest{
		Username: fmt.Sprintf("%s-%s", role, uuid.NewString()[:8]),
		Password: "integration-test-password",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("create %s account failed: %v", role, err)
	}
	return account
}

func staffActor(account accounts.Account) mediation.Actor {
	return mediation.Actor{ID: account.ID, Staff: true}
}

func partyActor(account accounts.Account) mediation.Actor {
	return mediation.Actor{ID: account.ID}
}

// Interest flow: submit, forward without an explicit review stop, target
// responds, staff close as accepted. Four ledger events in order.
func TestIntegrationInterestRequestLifecycle(t *testing.T) {
	f, cleanup := setupMediationIntegrationTest(t)
	defer cleanup()
	ctx := context.Background()

	founder := createAccountForTest(t, f, accounts.RoleFounder)
	investor := createAccountForTest(t, f, accounts.RoleInvestor)
	admin := createAccountForTest(t, f, accounts.RoleAdmin)

	req, err := f.mediation.Submit(ctx, partyActor(founder), mediation.SubmitInput{
		Kind:     mediation.KindInterest,
		TargetID: investor.ID,
		Payload:  "interested in your portfolio focus",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if req.Status != mediation.StatusSubmitted {
		t.Fatalf("expected submitted, got %s", req.Status)
	}

	req, err = f.mediation.Transition(ctx, staffActor(admin), req.ID, mediation.TransitionInput{
		ToStatus: mediation.StatusForwardedToCounterpart,
	})
	if err != nil {
		t.Fatalf("forward failed: %v", err)
	}

	req, err = f.mediation.Transition(ctx, partyActor(investor), req.ID, mediation.TransitionInput{
		ToStatus: mediation.StatusCounterpartyResponded,
	})
	if err != nil {
		t.Fatalf("respond failed: %v", err)
	}

	req, err = f.mediation.Transition(ctx, staffActor(admin), req.ID, mediation.TransitionInput{
		ToStatus: mediation.StatusClosedAccepted,
	})
	if err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if !req.Terminal() {
		t.Fatal("expected request to be terminal")
	}

	events, err := f.mediation.History(ctx, staffActor(admin), req.ID)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("expected 4 ledger events, got %d", len(events))
	}
	wantTo := []string{
		mediation.StatusSubmitted,
		mediation.StatusForwardedToCounterpart,
		mediation.StatusCounterpartyResponded,
		mediation.StatusClosedAccepted,
	}
	for i, want := range wantTo {
		if events[i].ToStatus != want {
			t.Fatalf("event %d: expected to_status %s, got %s", i, want, events[i].ToStatus)
		}
	}
}

// Communication flow: forwarding opens a gated conversation; the budget-th
// message is delivered and suspends the gate; re-approval resets the window.
func TestIntegrationCommunicationGateSuspendsAndReopens(t *testing.T) {
	f, cleanup := setupMediationIntegrationTest(t)
	defer cleanup()
	ctx := context.Background()

	founder := createAccountForTest(t, f, accounts.RoleFounder)
	investor := createAccountForTest(t, f, accounts.RoleInvestor)
	admin := createAccountForTest(t, f, accounts.RoleAdmin)

	req, err := f.mediation.Submit(ctx, partyActor(founder), mediation.SubmitInput{
		Kind:     mediation.KindCommunication,
		TargetID: investor.ID,
		Payload:  "would like to discuss a seed round",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err = f.mediation.Transition(ctx, staffActor(admin), req.ID, mediation.TransitionInput{
		ToStatus: mediation.StatusForwardedToCounterpart,
	}); err != nil {
		t.Fatalf("forward failed: %v", err)
	}

	conv, err := f.conversations.EnsureForRequest(ctx, req.ID, founder.ID, investor.ID)
	if err != nil {
		t.Fatalf("conversation not opened: %v", err)
	}
	if conv.GateState != conversation.GateOpen {
		t.Fatalf("expected open gate, got %s", conv.GateState)
	}
	if conv.DisclosureState != conversation.DisclosureLocked {
		t.Fatalf("expected locked disclosure, got %s", conv.DisclosureState)
	}
	if len(conv.Participants) != 2 {
		t.Fatalf("expected 2 participants, got %d", len(conv.Participants))
	}
	for _, p := range conv.Participants {
		if !strings.Contains(p.Alias, "#") {
			t.Fatalf("expected role alias, got %q", p.Alias)
		}
	}

	// A rejected body must not move the gate or consume budget.
	if _, _, err := f.messages.Send(ctx, conv.ID, founder.ID, "   \n\t"); !errors.Is(err, messagepkg.ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
	oversized := strings.Repeat("x", messagepkg.MaxContentLength+1)
	if _, _, err := f.messages.Send(ctx, conv.ID, founder.ID, oversized); !errors.Is(err, messagepkg.ErrContentTooLong) {
		t.Fatalf("expected ErrContentTooLong, got %v", err)
	}
	untouched, err := f.conversations.Get(ctx, conv.ID)
	if err != nil {
		t.Fatalf("get conversation failed: %v", err)
	}
	if untouched.UnsupervisedCount != 0 || untouched.GateState != conversation.GateOpen {
		t.Fatalf("rejected bodies consumed budget: count=%d state=%s", untouched.UnsupervisedCount, untouched.GateState)
	}

	senders := []string{founder.ID, investor.ID}
	for i := 0; i < testMessageBudget; i++ {
		msg, state, err := f.messages.Send(ctx, conv.ID, senders[i%2], fmt.Sprintf("message %d", i+1))
		if err != nil {
			t.Fatalf("message %d rejected: %v", i+1, err)
		}
		if msg.SenderAlias == "" {
			t.Fatalf("message %d delivered without sender alias", i+1)
		}
		if len(state.ParticipantIDs) != 2 {
			t.Fatalf("message %d: expected 2 participants in fan-out, got %d", i+1, len(state.ParticipantIDs))
		}
		if i < testMessageBudget-1 && state.GateState != conversation.GateOpen {
			t.Fatalf("gate closed early at message %d", i+1)
		}
		if i == testMessageBudget-1 && !state.Suspended {
			t.Fatalf("expected gate suspended after budget, got %s", state.GateState)
		}
	}

	if _, _, err := f.messages.Send(ctx, conv.ID, founder.ID, "over budget"); !errors.Is(err, conversation.ErrChannelSuspended) {
		t.Fatalf("expected ErrChannelSuspended, got %v", err)
	}

	reopened, err := f.conversations.AdminApprove(ctx, conv.ID)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if reopened.GateState != conversation.GateOpen || reopened.UnsupervisedCount != 0 {
		t.Fatalf("expected fresh open window, got state=%s count=%d", reopened.GateState, reopened.UnsupervisedCount)
	}

	// Approving an open channel must not extend the window.
	again, err := f.conversations.AdminApprove(ctx, conv.ID)
	if err != nil {
		t.Fatalf("idempotent approve failed: %v", err)
	}
	if again.GateState != conversation.GateOpen {
		t.Fatalf("expected open gate, got %s", again.GateState)
	}

	if _, _, err := f.messages.Send(ctx, conv.ID, founder.ID, "after reopen"); err != nil {
		t.Fatalf("expected message to flow after reopen: %v", err)
	}

	page, err := f.messages.ListPage(ctx, conv.ID, 1, 10)
	if err != nil {
		t.Fatalf("history page failed: %v", err)
	}
	// Exactly one stored message per counted gate slot: the rejected bodies
	// and the over-budget send left no rows behind.
	if page.Pagination.Total != testMessageBudget+1 {
		t.Fatalf("expected %d stored messages, got %d", testMessageBudget+1, page.Pagination.Total)
	}
	for i := 1; i < len(page.Items); i++ {
		if page.Items[i].CreatedAt.Before(page.Items[i-1].CreatedAt) {
			t.Fatal("expected page items oldest first")
		}
	}
}

// Cancelling mid-flight closes both the request and its conversation.
func TestIntegrationRequesterCancelClosesConversation(t *testing.T) {
	f, cleanup := setupMediationIntegrationTest(t)
	defer cleanup()
	ctx := context.Background()

	founder := createAccountForTest(t, f, accounts.RoleFounder)
	investor := createAccountForTest(t, f, accounts.RoleInvestor)
	admin := createAccountForTest(t, f, accounts.RoleAdmin)

	req, err := f.mediation.Submit(ctx, partyActor(founder), mediation.SubmitInput{
		Kind:     mediation.KindCommunication,
		TargetID: investor.ID,
		Payload:  "intro please",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err = f.mediation.Transition(ctx, staffActor(admin), req.ID, mediation.TransitionInput{
		ToStatus: mediation.StatusForwardedToCounterpart,
	}); err != nil {
		t.Fatalf("forward failed: %v", err)
	}
	conv, err := f.conversations.EnsureForRequest(ctx, req.ID, founder.ID, investor.ID)
	if err != nil {
		t.Fatalf("conversation not opened: %v", err)
	}

	if _, err := f.mediation.Cancel(ctx, partyActor(investor), req.ID); !errors.Is(err, mediation.ErrUnauthorized) {
		t.Fatalf("expected only the requester to cancel, got %v", err)
	}

	cancelled, err := f.mediation.Cancel(ctx, partyActor(founder), req.ID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != mediation.StatusClosedRejected {
		t.Fatalf("expected closed-rejected, got %s", cancelled.Status)
	}

	events, err := f.mediation.History(ctx, partyActor(founder), req.ID)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	last := events[len(events)-1]
	if last.Action != "cancel" || last.Note != "cancelled" {
		t.Fatalf("expected cancel event with note, got action=%s note=%s", last.Action, last.Note)
	}

	after, err := f.conversations.Get(ctx, conv.ID)
	if err != nil {
		t.Fatalf("get conversation failed: %v", err)
	}
	if after.GateState != conversation.GateClosed {
		t.Fatalf("expected closed conversation, got %s", after.GateState)
	}

	// The request row is locked for the duration of a cancel, so a second
	// cancel sees the terminal status instead of racing the first.
	if _, err := f.mediation.Cancel(ctx, partyActor(founder), req.ID); !errors.Is(err, mediation.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on double cancel, got %v", err)
	}
}

// One pending request per (kind, requester, target); closing frees the slot.
func TestIntegrationDuplicatePendingRejected(t *testing.T) {
	f, cleanup := setupMediationIntegrationTest(t)
	defer cleanup()
	ctx := context.Background()

	founder := createAccountForTest(t, f, accounts.RoleFounder)
	investor := createAccountForTest(t, f, accounts.RoleInvestor)

	in := mediation.SubmitInput{
		Kind:     mediation.KindInterest,
		TargetID: investor.ID,
		Payload:  "first",
	}
	req, err := f.mediation.Submit(ctx, partyActor(founder), in)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if _, err := f.mediation.Submit(ctx, partyActor(founder), in); !errors.Is(err, mediation.ErrDuplicatePending) {
		t.Fatalf("expected ErrDuplicatePending, got %v", err)
	}

	if _, err := f.mediation.Cancel(ctx, partyActor(founder), req.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if _, err := f.mediation.Submit(ctx, partyActor(founder), in); err != nil {
		t.Fatalf("expected resubmit after close to succeed: %v", err)
	}
}

// A transition against a stale expected status fails without corrupting state.
func TestIntegrationStaleTransitionRejected(t *testing.T) {
	f, cleanup := setupMediationIntegrationTest(t)
	defer cleanup()
	ctx := context.Background()

	founder := createAccountForTest(t, f, accounts.RoleFounder)
	investor := createAccountForTest(t, f, accounts.RoleInvestor)
	admin := createAccountForTest(t, f, accounts.RoleAdmin)

	req, err := f.mediation.Submit(ctx, partyActor(founder), mediation.SubmitInput{
		Kind:     mediation.KindCommunication,
		TargetID: investor.ID,
		Payload:  "hello",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := f.mediation.Transition(ctx, staffActor(admin), req.ID, mediation.TransitionInput{
		ToStatus: mediation.StatusAdminReviewing,
	}); err != nil {
		t.Fatalf("review failed: %v", err)
	}

	// Expected status lags behind reality.
	_, err = f.mediation.Transition(ctx, staffActor(admin), req.ID, mediation.TransitionInput{
		ToStatus:       mediation.StatusForwardedToCounterpart,
		ExpectedStatus: mediation.StatusSubmitted,
	})
	if !errors.Is(err, mediation.ErrStaleState) {
		t.Fatalf("expected ErrStaleState, got %v", err)
	}

	current, err := f.mediation.Get(ctx, staffActor(admin), req.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if current.Status != mediation.StatusAdminReviewing {
		t.Fatalf("expected state unchanged, got %s", current.Status)
	}
}

// Non-staff actors cannot take staff edges, and strangers cannot read.
func TestIntegrationCapabilityGuards(t *testing.T) {
	f, cleanup := setupMediationIntegrationTest(t)
	defer cleanup()
	ctx := context.Background()

	founder := createAccountForTest(t, f, accounts.RoleFounder)
	investor := createAccountForTest(t, f, accounts.RoleInvestor)
	stranger := createAccountForTest(t, f, accounts.RoleInvestor)

	req, err := f.mediation.Submit(ctx, partyActor(founder), mediation.SubmitInput{
		Kind:     mediation.KindInterest,
		TargetID: investor.ID,
		Payload:  "hi",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if _, err := f.mediation.Transition(ctx, partyActor(founder), req.ID, mediation.TransitionInput{
		ToStatus: mediation.StatusForwardedToCounterpart,
	}); !errors.Is(err, mediation.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for non-staff forward, got %v", err)
	}

	if _, err := f.mediation.Get(ctx, partyActor(stranger), req.ID); !errors.Is(err, mediation.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for stranger read, got %v", err)
	}
}

// Approving disclosure unlocks the conversation opened for the request.
func TestIntegrationDisclosureUnlockOnApproval(t *testing.T) {
	f, cleanup := setupMediationIntegrationTest(t)
	defer cleanup()
	ctx := context.Background()

	founder := createAccountForTest(t, f, accounts.RoleFounder)
	investor := createAccountForTest(t, f, accounts.RoleInvestor)
	admin := createAccountForTest(t, f, accounts.RoleAdmin)

	req, err := f.mediation.Submit(ctx, partyActor(founder), mediation.SubmitInput{
		Kind:     mediation.KindCommunication,
		TargetID: investor.ID,
		Payload:  "deep dive request",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	steps := []struct {
		actor mediation.Actor
		to    string
	}{
		{staffActor(admin), mediation.StatusForwardedToCounterpart},
		{partyActor(investor), mediation.StatusCounterpartyResponded},
		{staffActor(admin), mediation.StatusAdminReviewingResponse},
		{staffActor(admin), mediation.StatusApprovedDisclosed},
	}
	for _, step := range steps {
		if _, err := f.mediation.Transition(ctx, step.actor, req.ID, mediation.TransitionInput{ToStatus: step.to}); err != nil {
			t.Fatalf("transition to %s failed: %v", step.to, err)
		}
	}

	conv, err := f.conversations.EnsureForRequest(ctx, req.ID, founder.ID, investor.ID)
	if err != nil {
		t.Fatalf("get conversation failed: %v", err)
	}
	if conv.DisclosureState != conversation.DisclosureUnlocked {
		t.Fatalf("expected unlocked disclosure, got %s", conv.DisclosureState)
	}
}

// Call requests follow the short scheduling path and end terminal.
func TestIntegrationCallSchedulingPath(t *testing.T) {
	f, cleanup := setupMediationIntegrationTest(t)
	defer cleanup()
	ctx := context.Background()

	founder := createAccountForTest(t, f, accounts.RoleFounder)
	investor := createAccountForTest(t, f, accounts.RoleInvestor)
	admin := createAccountForTest(t, f, accounts.RoleAdmin)

	req, err := f.mediation.Submit(ctx, partyActor(founder), mediation.SubmitInput{
		Kind:     mediation.KindCall,
		TargetID: investor.ID,
		Payload:  "30 minute intro call",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if req.Status != mediation.StatusPending {
		t.Fatalf("expected pending, got %s", req.Status)
	}
	if req, err = f.mediation.Transition(ctx, staffActor(admin), req.ID, mediation.TransitionInput{ToStatus: mediation.StatusApproved}); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	// An approved call still waits on staff to schedule it, so it stays in
	// the staff queue.
	pending, err := f.mediation.ListPending(ctx, staffActor(admin))
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if !containsRequest(pending, req.ID) {
		t.Fatal("expected approved call in the staff queue")
	}

	for _, to := range []string{mediation.StatusScheduled, mediation.StatusCompleted} {
		if req, err = f.mediation.Transition(ctx, staffActor(admin), req.ID, mediation.TransitionInput{ToStatus: to}); err != nil {
			t.Fatalf("transition to %s failed: %v", to, err)
		}
	}
	if !req.Terminal() {
		t.Fatal("expected completed call to be terminal")
	}

	pending, err = f.mediation.ListPending(ctx, staffActor(admin))
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if containsRequest(pending, req.ID) {
		t.Fatal("expected completed call out of the staff queue")
	}
}

func containsRequest(items []mediation.Request, id string) bool {
	for _, item := range items {
		if item.ID == id {
			return true
		}
	}
	return false
}

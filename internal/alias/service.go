// Package alias maps real accounts to role-scoped pseudonymous identifiers.
//
// Real identity is never exposed to a counterparty unless the conversation's
// disclosure gate is unlocked; everything below the gate speaks in aliases.
package alias

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	dbpkg "github.com/intromesh/intromesh/internal/db"
	"github.com/intromesh/intromesh/internal/db/sqlc"
)

const maxAllocRetries = 5

var (
	// ErrNoBinding is returned by lookup-only paths when the account has no
	// alias binding yet.
	ErrNoBinding   = errors.New("no alias binding")
	ErrUnknownRole = errors.New("role has no alias bucket")
)

// Service resolves and lazily allocates alias bindings.
type Service struct {
	pool    pgxBeginner
	queries *sqlc.Queries
	logger  *slog.Logger
}

// pgxBeginner is the transaction-opening subset of pgxpool.Pool.
type pgxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// NewService creates an alias service.
func NewService(log *slog.Logger, pool pgxBeginner, queries *sqlc.Queries) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		pool:    pool,
		queries: queries,
		logger:  log.With(slog.String("service", "alias")),
	}
}

// ResolveAlias returns the stable pseudonym for an account, creating the
// binding on first use. When conversationID is given and the conversation
// carries a per-conversation alias override for this account, the override
// wins.
func (s *Service) ResolveAlias(ctx context.Context, accountID, conversationID string) (Alias, error) {
	pgAccountID, err := dbpkg.ParseUUID(accountID)
	if err != nil {
		return Alias{}, fmt.Errorf("invalid account id: %w", err)
	}

	if strings.TrimSpace(conversationID) != "" {
		if override, ok, err := s.conversationAlias(ctx, accountID, conversationID); err != nil {
			return Alias{}, err
		} else if ok {
			return override, nil
		}
	}

	row, err := s.queries.GetAliasBinding(ctx, pgAccountID)
	if err == nil {
		return toAlias(row), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Alias{}, err
	}
	return s.allocate(ctx, accountID)
}

// Lookup returns the existing binding without allocating; ErrNoBinding when absent.
func (s *Service) Lookup(ctx context.Context, accountID string) (Alias, error) {
	pgAccountID, err := dbpkg.ParseUUID(accountID)
	if err != nil {
		return Alias{}, fmt.Errorf("invalid account id: %w", err)
	}
	row, err := s.queries.GetAliasBinding(ctx, pgAccountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Alias{}, ErrNoBinding
		}
		return Alias{}, err
	}
	return toAlias(row), nil
}

// CanDisclose reports whether real identities may be shown inside the conversation.
func (s *Service) CanDisclose(ctx context.Context, conversationID string) (bool, error) {
	pgID, err := dbpkg.ParseUUID(conversationID)
	if err != nil {
		return false, fmt.Errorf("invalid conversation id: %w", err)
	}
	row, err := s.queries.GetConversation(ctx, pgID)
	if err != nil {
		return false, err
	}
	return row.DisclosureState == "unlocked", nil
}

// allocate creates a binding with the lowest free sequence number in the
// account's role bucket. Sequence numbers freed by account deletion become
// allocatable again; an existing binding is never renumbered. Concurrent
// allocations racing for the same gap are resolved by the (prefix, seq)
// unique constraint and retried.
func (s *Service) allocate(ctx context.Context, accountID string) (Alias, error) {
	pgAccountID, err := dbpkg.ParseUUID(accountID)
	if err != nil {
		return Alias{}, err
	}
	account, err := s.queries.GetAccountByID(ctx, pgAccountID)
	if err != nil {
		return Alias{}, fmt.Errorf("load account for alias: %w", err)
	}
	prefix, _, ok := bucketForRole(account.Role)
	if !ok {
		return Alias{}, fmt.Errorf("%w: %s", ErrUnknownRole, account.Role)
	}

	for range maxAllocRetries {
		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return Alias{}, fmt.Errorf("begin alias alloc tx: %w", err)
		}
		qtx := s.queries.WithTx(tx)

		seq, err := qtx.NextAliasSeq(ctx, prefix)
		if err != nil {
			_ = tx.Rollback(ctx)
			return Alias{}, fmt.Errorf("next alias seq: %w", err)
		}
		row, err := qtx.CreateAliasBinding(ctx, sqlc.CreateAliasBindingParams{
			AccountID: pgAccountID,
			Prefix:    prefix,
			Seq:       seq,
		})
		if err != nil {
			_ = tx.Rollback(ctx)
			if dbpkg.IsUniqueViolation(err) {
				// Lost the race for this gap, or another request bound the
				// account first; re-check before retrying the gap scan.
				if existing, lookupErr := s.queries.GetAliasBinding(ctx, pgAccountID); lookupErr == nil {
					return toAlias(existing), nil
				}
				continue
			}
			return Alias{}, fmt.Errorf("create alias binding: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return Alias{}, fmt.Errorf("commit alias alloc tx: %w", err)
		}
		return toAlias(row), nil
	}
	return Alias{}, errors.New("alias allocation: seq collision after retries")
}

func (s *Service) conversationAlias(ctx context.Context, accountID, conversationID string) (Alias, bool, error) {
	pgConversationID, err := dbpkg.ParseUUID(conversationID)
	if err != nil {
		return Alias{}, false, fmt.Errorf("invalid conversation id: %w", err)
	}
	participants, err := s.queries.ListConversationParticipants(ctx, pgConversationID)
	if err != nil {
		return Alias{}, false, err
	}
	for _, p := range participants {
		if dbpkg.UUIDString(p.AccountID) == accountID && strings.TrimSpace(p.Alias) != "" {
			return Alias{AccountID: accountID, Label: p.Alias}, true, nil
		}
	}
	return Alias{}, false, nil
}

func toAlias(row sqlc.AliasBinding) Alias {
	return Alias{
		AccountID: dbpkg.UUIDString(row.AccountID),
		Label:     labelForPrefix(row.Prefix),
		Prefix:    row.Prefix,
		Seq:       row.Seq,
	}
}

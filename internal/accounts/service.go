// Package accounts provides account lookup, credentials, and role capability checks.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	dbpkg "github.com/intromesh/intromesh/internal/db"
	"github.com/intromesh/intromesh/internal/db/sqlc"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveAccount    = errors.New("account is inactive")
	ErrAccountNotFound    = errors.New("account not found")
)

// Service reads and mutates accounts.
type Service struct {
	queries *sqlc.Queries
	logger  *slog.Logger
}

// NewService creates an account service.
func NewService(log *slog.Logger, queries *sqlc.Queries) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		queries: queries,
		logger:  log.With(slog.String("service", "accounts")),
	}
}

// Get returns an account by ID.
func (s *Service) Get(ctx context.Context, accountID string) (Account, error) {
	pgID, err := dbpkg.ParseUUID(accountID)
	if err != nil {
		return Account{}, ErrAccountNotFound
	}
	row, err := s.queries.GetAccountByID(ctx, pgID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}
	return toAccount(row), nil
}

// Login validates credentials and touches last_login_at.
func (s *Service) Login(ctx context.Context, username, password string) (Account, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return Account{}, ErrInvalidCredentials
	}
	row, err := s.queries.GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrInvalidCredentials
		}
		return Account{}, err
	}
	if !row.IsActive {
		return Account{}, ErrInactiveAccount
	}
	if err := bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(password)); err != nil {
		return Account{}, ErrInvalidCredentials
	}
	if _, err := s.queries.UpdateAccountLastLogin(ctx, row.ID); err != nil {
		s.logger.Warn("touch last login failed", slog.Any("error", err))
	}
	return toAccount(row), nil
}

// List returns all accounts (staff surface).
func (s *Service) List(ctx context.Context) ([]Account, error) {
	rows, err := s.queries.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]Account, 0, len(rows))
	for _, row := range rows {
		items = append(items, toAccount(row))
	}
	return items, nil
}

// Create adds a new account with a bcrypt-hashed password.
func (s *Service) Create(ctx context.Context, req CreateAccountRequest) (Account, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return Account{}, fmt.Errorf("username is required")
	}
	password := strings.TrimSpace(req.Password)
	if password == "" {
		return Account{}, fmt.Errorf("password is required")
	}
	role, err := normalizeRole(req.Role)
	if err != nil {
		return Account{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, err
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = username
	}

	row, err := s.queries.CreateAccount(ctx, sqlc.CreateAccountParams{
		Username:     username,
		Email:        dbpkg.ToPgText(req.Email),
		PasswordHash: string(hashed),
		Role:         role,
		DisplayName:  dbpkg.ToPgText(displayName),
		IsActive:     true,
	})
	if err != nil {
		return Account{}, err
	}
	return toAccount(row), nil
}

// ResetPassword sets a new password without checking the old one (staff action).
func (s *Service) ResetPassword(ctx context.Context, accountID, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return fmt.Errorf("new password is required")
	}
	pgID, err := dbpkg.ParseUUID(accountID)
	if err != nil {
		return err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = s.queries.UpdateAccountPassword(ctx, sqlc.UpdateAccountPasswordParams{
		ID:           pgID,
		PasswordHash: string(hashed),
	})
	return err
}

// IsStaff reports whether the account holds admin or superadmin capability.
func (s *Service) IsStaff(ctx context.Context, accountID string) (bool, error) {
	account, err := s.Get(ctx, accountID)
	if err != nil {
		return false, err
	}
	return account.IsStaff(), nil
}

func normalizeRole(raw string) (string, error) {
	role := strings.ToLower(strings.TrimSpace(raw))
	switch role {
	case RoleFounder, RoleInvestor, RoleAdmin, RoleSuperadmin:
		return role, nil
	}
	return "", fmt.Errorf("invalid role: %s", raw)
}

func toAccount(row sqlc.Account) Account {
	return Account{
		ID:          dbpkg.UUIDString(row.ID),
		Username:    row.Username,
		Email:       dbpkg.TextToString(row.Email),
		Role:        row.Role,
		DisplayName: dbpkg.TextToString(row.DisplayName),
		IsActive:    row.IsActive,
		CreatedAt:   dbpkg.TimeFromPg(row.CreatedAt),
		UpdatedAt:   dbpkg.TimeFromPg(row.UpdatedAt),
		LastLoginAt: dbpkg.TimeFromPg(row.LastLoginAt),
	}
}

package accounts

import "time"

// Platform roles. Founders and investors are the mediated parties; admin and
// superadmin hold staff capability.
const (
	RoleFounder    = "founder"
	RoleInvestor   = "investor"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

// Account is the API-facing account representation. PasswordHash never leaves
// the service.
type Account struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email,omitempty"`
	Role        string    `json:"role"`
	DisplayName string    `json:"display_name,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	LastLoginAt time.Time `json:"last_login_at,omitzero"`
}

// IsStaff reports whether the account may act on reviewing states and channel gates.
func (a Account) IsStaff() bool {
	return a.Role == RoleAdmin || a.Role == RoleSuperadmin
}

// CreateAccountRequest is the staff-facing account creation input.
type CreateAccountRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
}

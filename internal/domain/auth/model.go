// Package auth provides authentication and account management logic.
package auth

import (
	"strings"
	"time"

	"swiftpos/internal/core/apperror"
	"swiftpos/internal/core/id"
)

// Role is a staff role within the store.
type Role string

const (
	RoleInventory Role = "inventory"
	RoleCashier   Role = "cashier"
	RoleAnalyst   Role = "analyst"
	RoleManager   Role = "manager"
)

// IsValid reports whether the role is one of the known staff roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleInventory, RoleCashier, RoleAnalyst, RoleManager:
		return true
	}
	return false
}

// Display returns the human-readable role name.
func (r Role) Display() string {
	switch r {
	case RoleInventory:
		return "Inventory Person"
	case RoleCashier:
		return "Cashier"
	case RoleAnalyst:
		return "Analyst"
	case RoleManager:
		return "Manager"
	}
	return string(r)
}

// User represents a staff account.
type User struct {
	ID           id.ID  `db:"id"`
	Username     string `db:"username"`
	Email        string `db:"email"`
	FirstName    string `db:"first_name"`
	LastName     string `db:"last_name"`
	PasswordHash string `db:"password_hash"`

	// Role stays empty until a manager approves the account.
	Role       Role `db:"role"`
	IsApproved bool `db:"is_approved"`
	IsStaff    bool `db:"is_staff"`
	IsAdmin    bool `db:"is_admin"`

	ResetCode       *string    `db:"reset_code"`
	ResetCodeExpiry *time.Time `db:"reset_code_expiry"`

	FailedPasswordAttempts int        `db:"failed_password_attempts"`
	LastPasswordVerifiedAt *time.Time `db:"last_password_verified_at"`

	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt *time.Time `db:"updated_at"`
}

// NewUser creates a new unapproved user.
func NewUser(username, email, passwordHash string) *User {
	return &User{
		ID:           id.New(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
}

// FullName combines first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Privileged reports whether the account bypasses approval and role gates.
func (u *User) Privileged() bool {
	return u.IsStaff || u.IsAdmin
}

// CanLogin checks the approval and role gates for regular staff.
func (u *User) CanLogin() error {
	if u.Privileged() {
		return nil
	}
	if !u.IsApproved {
		return apperror.NewNotApproved()
	}
	if u.Role == "" {
		return apperror.NewForbidden("Role not assigned yet, contact admin")
	}
	return nil
}

// ClearResetCode drops any outstanding password reset code.
func (u *User) ClearResetCode() {
	u.ResetCode = nil
	u.ResetCodeExpiry = nil
}

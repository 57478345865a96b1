package auth

import (
	"context"

	"swiftpos/internal/core/id"
)

// Filter limits user listings.
type Filter struct {
	Role       Role
	Approved   *bool
	Search     string
	Limit      int
	Offset     int
}

// Repository persists user accounts.
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, userID id.ID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Update(ctx context.Context, user *User) error
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	List(ctx context.Context, filter Filter) ([]*User, int, error)
}

// ResetCodeSender delivers password reset codes to users.
type ResetCodeSender interface {
	SendResetCode(ctx context.Context, email, code string) error
}

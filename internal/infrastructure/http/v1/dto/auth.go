package dto

import (
	"time"

	"swiftpos/internal/domain/auth"
)

// RegisterRequest creates a new unapproved account.
type RegisterRequest struct {
	Username        string `json:"username" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

// LoginRequest authenticates by email or username.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// LoginResponse carries the access token and the signed-in profile.
type LoginResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	IsStaff     bool      `json:"isStaff"`
	IsAdmin     bool      `json:"isAdmin"`
}

// ApproveUserRequest assigns a role and unlocks the account.
type ApproveUserRequest struct {
	Role string `json:"role" binding:"required"`
}

// SendResetCodeRequest starts the forgot-password flow.
type SendResetCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// VerifyResetCodeRequest checks the emailed code.
type VerifyResetCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

// ResetPasswordRequest completes the forgot-password flow.
type ResetPasswordRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

// ConfirmPasswordRequest re-verifies the current password before a change.
type ConfirmPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest sets a new password for the signed-in user.
type ChangePasswordRequest struct {
	NewPassword     string `json:"newPassword" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID         string     `json:"id"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	FirstName  string     `json:"firstName,omitempty"`
	LastName   string     `json:"lastName,omitempty"`
	Role       string     `json:"role,omitempty"`
	IsApproved bool       `json:"isApproved"`
	IsStaff    bool       `json:"isStaff"`
	IsAdmin    bool       `json:"isAdmin"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

// FromUser maps a domain user to its public view.
func FromUser(u *auth.User) UserResponse {
	return UserResponse{
		ID:         u.ID.String(),
		Username:   u.Username,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Role:       string(u.Role),
		IsApproved: u.IsApproved,
		IsStaff:    u.IsStaff,
		IsAdmin:    u.IsAdmin,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

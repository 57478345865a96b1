package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"swiftpos/internal/core/apperror"
	appcontext "swiftpos/internal/core/context"
	"swiftpos/internal/core/id"
	"swiftpos/internal/core/tx"
	"swiftpos/pkg/logger"
)

// ServiceConfig holds auth service configuration.
type ServiceConfig struct {
	PasswordMinLength    int
	ChangePasswordMinLen int
	ResetCodeTTL         time.Duration
	MaxConfirmAttempts   int
	VerifyWindow         time.Duration
}

// DefaultServiceConfig returns default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		PasswordMinLength:    8,
		ChangePasswordMinLen: 4,
		ResetCodeTTL:         6*time.Minute + 10*time.Second,
		MaxConfirmAttempts:   3,
		VerifyWindow:         4 * time.Minute,
	}
}

// Service provides authentication and account management.
type Service struct {
	users      Repository
	jwtService *JWTService
	sender     ResetCodeSender
	txManager  tx.Manager
	config     ServiceConfig
	now        func() time.Time
}

// NewService creates a new auth service.
func NewService(users Repository, jwtService *JWTService, sender ResetCodeSender, txManager tx.Manager, config ServiceConfig) *Service {
	return &Service{
		users:      users,
		jwtService: jwtService,
		sender:     sender,
		txManager:  txManager,
		config:     config,
		now:        time.Now,
	}
}

// RegisterInput is the self-registration payload.
type RegisterInput struct {
	Username        string
	Email           string
	FirstName       string
	LastName        string
	Password        string
	ConfirmPassword string
}

// Register creates a new unapproved account. The user cannot log in until a
// manager approves it and assigns a role.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	if in.Username == "" || in.Email == "" || in.FirstName == "" || in.LastName == "" {
		return nil, apperror.NewValidation("All fields are required.")
	}
	if in.Password != in.ConfirmPassword {
		return nil, apperror.NewValidation("Passwords do not match").WithDetail("field", "password")
	}
	if len(in.Password) < s.config.PasswordMinLength {
		return nil, apperror.NewValidation(
			fmt.Sprintf("password must be at least %d characters", s.config.PasswordMinLength),
		).WithDetail("field", "password")
	}

	emailTaken, err := s.users.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("check email exists: %w", err)
	}
	if emailTaken {
		return nil, apperror.NewConflict("Email is already in use").WithDetail("email", in.Email)
	}
	usernameTaken, err := s.users.UsernameExists(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("check username exists: %w", err)
	}
	if usernameTaken {
		return nil, apperror.NewConflict("Username is already in use").WithDetail("username", in.Username)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := NewUser(in.Username, in.Email, string(passwordHash))
	user.FirstName = in.FirstName
	user.LastName = in.LastName

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.users.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "user registered",
		"user_id", user.ID,
		"email", user.Email)

	return user, nil
}

// LoginResult carries the access token and profile the client needs.
type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	Username    string
	Email       string
	Role        string
	IsStaff     bool
	IsAdmin     bool
}

// Login authenticates by email or username and returns an access token.
// The identifier is treated as an email when it contains '@'.
func (s *Service) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	var (
		user *User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.users.GetByEmail(ctx, identifier)
	} else {
		user, err = s.users.GetByUsername(ctx, identifier)
	}
	if err != nil {
		return nil, apperror.NewUnauthorized("Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperror.NewUnauthorized("Invalid credentials")
	}

	if err := user.CanLogin(); err != nil {
		return nil, err
	}

	token, expiresAt, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	logger.Info(ctx, "user logged in",
		"user_id", user.ID,
		"username", user.Username)

	return &LoginResult{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		Username:    user.Username,
		Email:       user.Email,
		Role:        string(user.Role),
		IsStaff:     user.IsStaff,
		IsAdmin:     user.IsAdmin,
	}, nil
}

// ValidateToken checks an access token and returns its user context.
func (s *Service) ValidateToken(token string) (*appcontext.UserContext, error) {
	userCtx, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid or expired token")
	}
	return userCtx, nil
}

// Approve marks an account approved and assigns its role.
func (s *Service) Approve(ctx context.Context, userID id.ID, role Role) (*User, error) {
	if !role.IsValid() {
		return nil, apperror.NewValidation("unknown role").WithDetail("role", string(role))
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.NewNotFound("user", userID.String())
	}

	user.IsApproved = true
	user.Role = role
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	logger.Info(ctx, "user approved",
		"user_id", user.ID,
		"role", role,
		"approved_by", appcontext.GetUserID(ctx))

	return user, nil
}

// SendResetCode issues a password reset code and emails it to the user.
func (s *Service) SendResetCode(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return apperror.NewNotFound("user", email)
	}

	code, err := generateResetCode(6)
	if err != nil {
		return fmt.Errorf("generate reset code: %w", err)
	}

	expiry := s.now().Add(s.config.ResetCodeTTL)
	user.ResetCode = &code
	user.ResetCodeExpiry = &expiry
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("store reset code: %w", err)
	}

	if err := s.sender.SendResetCode(ctx, user.Email, code); err != nil {
		return fmt.Errorf("send reset code: %w", err)
	}

	logger.Info(ctx, "reset code sent", "user_id", user.ID)
	return nil
}

// VerifyResetCode checks a reset code against the one on record.
func (s *Service) VerifyResetCode(ctx context.Context, email, code string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return apperror.NewNotFound("user", email)
	}

	if user.ResetCode == nil || *user.ResetCode != code {
		return apperror.NewValidation("Invalid code.")
	}
	if user.ResetCodeExpiry == nil || s.now().After(*user.ResetCodeExpiry) {
		return apperror.NewValidation("Code has expired.")
	}
	return nil
}

// ResetPassword sets a new password for a user who verified a reset code.
func (s *Service) ResetPassword(ctx context.Context, email, password, confirmPassword string) error {
	if password == "" || confirmPassword == "" {
		return apperror.NewValidation("All fields are required.")
	}
	if password != confirmPassword {
		return apperror.NewValidation("Passwords do not match.")
	}
	if len(password) < s.config.PasswordMinLength {
		return apperror.NewValidation(
			fmt.Sprintf("password must be at least %d characters", s.config.PasswordMinLength),
		)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return apperror.NewNotFound("user", email)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil {
		return apperror.NewValidation("New password cannot be the same as the old password.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	user.ClearResetCode()

	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	logger.Info(ctx, "password reset", "user_id", user.ID)
	return nil
}

// ConfirmPassword re-verifies the current user's password before sensitive
// actions. Three wrong attempts in a row force a logout.
func (s *Service) ConfirmPassword(ctx context.Context, oldPassword string) error {
	user, err := s.currentUser(ctx)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		user.FailedPasswordAttempts++

		if user.FailedPasswordAttempts >= s.config.MaxConfirmAttempts {
			user.FailedPasswordAttempts = 0
			if err := s.users.Update(ctx, user); err != nil {
				return fmt.Errorf("update user: %w", err)
			}
			return apperror.NewForbidden("Too many failed attempts. You have been logged out.")
		}

		remaining := s.config.MaxConfirmAttempts - user.FailedPasswordAttempts
		if err := s.users.Update(ctx, user); err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		return apperror.NewValidation(
			fmt.Sprintf("Incorrect password. %d attempt(s) left.", remaining),
		)
	}

	now := s.now()
	user.FailedPasswordAttempts = 0
	user.LastPasswordVerifiedAt = &now
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// ChangePassword changes the current user's password. The old password must
// have been confirmed within the verification window.
func (s *Service) ChangePassword(ctx context.Context, newPassword, confirmPassword string) error {
	user, err := s.currentUser(ctx)
	if err != nil {
		return err
	}

	if user.LastPasswordVerifiedAt == nil {
		return apperror.NewValidation("Old password verification required before changing password.")
	}
	if s.now().Sub(*user.LastPasswordVerifiedAt) > s.config.VerifyWindow {
		return apperror.NewValidation("Old password verification expired. Please verify again.")
	}

	if len(newPassword) < s.config.ChangePasswordMinLen {
		return apperror.NewValidation(
			fmt.Sprintf("New password must be at least %d characters.", s.config.ChangePasswordMinLen),
		)
	}
	if newPassword != confirmPassword {
		return apperror.NewValidation("Passwords do not match.")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(newPassword)) == nil {
		return apperror.NewValidation("New password cannot be the same as the old password.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	user.LastPasswordVerifiedAt = nil

	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	logger.Info(ctx, "password changed", "user_id", user.ID)
	return nil
}

// GetUser retrieves a user by ID.
func (s *Service) GetUser(ctx context.Context, userID id.ID) (*User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	return user, nil
}

// ListUsers lists users with filtering.
func (s *Service) ListUsers(ctx context.Context, filter Filter) ([]*User, int, error) {
	return s.users.List(ctx, filter)
}

func (s *Service) currentUser(ctx context.Context) (*User, error) {
	userCtx := appcontext.GetUser(ctx)
	if userCtx == nil {
		return nil, apperror.NewUnauthorized("authentication required")
	}
	userID, err := id.Parse(userCtx.UserID)
	if err != nil {
		return nil, apperror.NewUnauthorized("authentication required")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.NewNotFound("user", userCtx.UserID)
	}
	return user, nil
}

// generateResetCode returns a random numeric code of the given length.
func generateResetCode(length int) (string, error) {
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}

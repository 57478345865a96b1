package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"swiftpos/internal/core/apperror"
	appcontext "swiftpos/internal/core/context"
	"swiftpos/internal/core/id"
)

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memUserRepo struct {
	users map[id.ID]*User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[id.ID]*User{}}
}

func (r *memUserRepo) Create(_ context.Context, user *User) error {
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, userID id.ID) (*User, error) {
	if u, ok := r.users[userID]; ok {
		return u, nil
	}
	return nil, apperror.NewNotFound("user", userID.String())
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperror.NewNotFound("user", email)
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, apperror.NewNotFound("user", username)
}

func (r *memUserRepo) Update(_ context.Context, user *User) error {
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) EmailExists(_ context.Context, email string) (bool, error) {
	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *memUserRepo) UsernameExists(_ context.Context, username string) (bool, error) {
	for _, u := range r.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *memUserRepo) List(_ context.Context, _ Filter) ([]*User, int, error) {
	out := make([]*User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, len(out), nil
}

type recordingSender struct {
	email string
	code  string
}

func (s *recordingSender) SendResetCode(_ context.Context, email, code string) error {
	s.email = email
	s.code = code
	return nil
}

func newTestService(t *testing.T) (*Service, *memUserRepo, *recordingSender) {
	t.Helper()
	repo := newMemUserRepo()
	sender := &recordingSender{}
	svc := NewService(repo, NewJWTService(DefaultJWTConfig("test-secret")), sender, passthroughTx{}, DefaultServiceConfig())
	return svc, repo, sender
}

func seedUser(t *testing.T, repo *memUserRepo, username, email, password string, approve func(*User)) *User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := NewUser(username, email, string(hash))
	user.FirstName = "Jane"
	user.LastName = "Doe"
	if approve != nil {
		approve(user)
	}
	repo.users[user.ID] = user
	return user
}

func asCashier(u *User) {
	u.IsApproved = true
	u.Role = RoleCashier
}

func ctxFor(user *User) context.Context {
	return appcontext.WithUser(context.Background(), &appcontext.UserContext{
		UserID:   user.ID.String(),
		Email:    user.Email,
		Username: user.Username,
		Role:     string(user.Role),
	})
}

func TestRegister_AwaitsApproval(t *testing.T) {
	svc, repo, _ := newTestService(t)

	user, err := svc.Register(context.Background(), RegisterInput{
		Username:        "jdoe",
		Email:           "jane@example.com",
		FirstName:       "Jane",
		LastName:        "Doe",
		Password:        "password1",
		ConfirmPassword: "password1",
	})
	require.NoError(t, err)

	assert.False(t, user.IsApproved)
	assert.Empty(t, user.Role)
	assert.Equal(t, "Jane Doe", user.FullName())
	assert.Len(t, repo.users, 1)

	_, err = svc.Login(context.Background(), "jane@example.com", "password1")
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeNotApproved, appErr.Code)
	assert.Equal(t, "Account not approved yet, contact admin", appErr.Message)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seedUser(t, repo, "existing", "jane@example.com", "password1", asCashier)

	_, err := svc.Register(context.Background(), RegisterInput{
		Username:        "jdoe",
		Email:           "jane@example.com",
		FirstName:       "Jane",
		LastName:        "Doe",
		Password:        "password1",
		ConfirmPassword: "password1",
	})
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)
	assert.Equal(t, "Email is already in use", appErr.Message)
}

func TestRegister_PasswordMismatch(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Register(context.Background(), RegisterInput{
		Username:        "jdoe",
		Email:           "jane@example.com",
		FirstName:       "Jane",
		LastName:        "Doe",
		Password:        "password1",
		ConfirmPassword: "password2",
	})
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestLogin_ByEmailAndUsername(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seedUser(t, repo, "jdoe", "jane@example.com", "password1", asCashier)

	byEmail, err := svc.Login(context.Background(), "jane@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, "jdoe", byEmail.Username)
	assert.Equal(t, "cashier", byEmail.Role)
	assert.NotEmpty(t, byEmail.AccessToken)

	byUsername, err := svc.Login(context.Background(), "jdoe", "password1")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", byUsername.Email)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seedUser(t, repo, "jdoe", "jane@example.com", "password1", asCashier)

	_, err := svc.Login(context.Background(), "jdoe", "wrong")
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
	assert.Equal(t, "Invalid credentials", appErr.Message)

	_, err = svc.Login(context.Background(), "nobody", "password1")
	appErr, ok = apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
}

func TestLogin_RoleNotAssigned(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seedUser(t, repo, "jdoe", "jane@example.com", "password1", func(u *User) {
		u.IsApproved = true
	})

	_, err := svc.Login(context.Background(), "jdoe", "password1")
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
	assert.Equal(t, "Role not assigned yet, contact admin", appErr.Message)
}

func TestLogin_StaffSkipsApprovalGates(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seedUser(t, repo, "boss", "boss@example.com", "password1", func(u *User) {
		u.IsStaff = true
	})

	res, err := svc.Login(context.Background(), "boss", "password1")
	require.NoError(t, err)
	assert.True(t, res.IsStaff)
	assert.Empty(t, res.Role)
}

func TestTokenRoundTrip(t *testing.T) {
	svc, repo, _ := newTestService(t)
	user := seedUser(t, repo, "jdoe", "jane@example.com", "password1", asCashier)

	res, err := svc.Login(context.Background(), "jdoe", "password1")
	require.NoError(t, err)

	userCtx, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), userCtx.UserID)
	assert.Equal(t, "jane@example.com", userCtx.Email)
	assert.Equal(t, "jdoe", userCtx.Username)
	assert.Equal(t, "Jane Doe", userCtx.FullName)
	assert.Equal(t, "cashier", userCtx.Role)

	_, err = svc.ValidateToken("not-a-token")
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
}

func TestApprove_AssignsRole(t *testing.T) {
	svc, repo, _ := newTestService(t)
	user := seedUser(t, repo, "jdoe", "jane@example.com", "password1", nil)

	approved, err := svc.Approve(context.Background(), user.ID, RoleAnalyst)
	require.NoError(t, err)
	assert.True(t, approved.IsApproved)
	assert.Equal(t, RoleAnalyst, approved.Role)

	_, err = svc.Login(context.Background(), "jdoe", "password1")
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), user.ID, Role("janitor"))
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestResetCodeFlow(t *testing.T) {
	svc, repo, sender := newTestService(t)
	user := seedUser(t, repo, "jdoe", "jane@example.com", "password1", asCashier)

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	require.NoError(t, svc.SendResetCode(context.Background(), "jane@example.com"))
	assert.Equal(t, "jane@example.com", sender.email)
	assert.Len(t, sender.code, 6)
	require.NotNil(t, user.ResetCode)
	assert.Equal(t, sender.code, *user.ResetCode)
	assert.Equal(t, base.Add(6*time.Minute+10*time.Second), *user.ResetCodeExpiry)

	err := svc.VerifyResetCode(context.Background(), "jane@example.com", "000000")
	if sender.code != "000000" {
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, "Invalid code.", appErr.Message)
	}

	require.NoError(t, svc.VerifyResetCode(context.Background(), "jane@example.com", sender.code))

	svc.now = func() time.Time { return base.Add(7 * time.Minute) }
	err = svc.VerifyResetCode(context.Background(), "jane@example.com", sender.code)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "Code has expired.", appErr.Message)
}

func TestResetPassword_RejectsOldPassword(t *testing.T) {
	svc, repo, _ := newTestService(t)
	user := seedUser(t, repo, "jdoe", "jane@example.com", "password1", asCashier)

	err := svc.ResetPassword(context.Background(), "jane@example.com", "password1", "password1")
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "New password cannot be the same as the old password.", appErr.Message)

	code := "123456"
	expiry := time.Now().Add(time.Minute)
	user.ResetCode = &code
	user.ResetCodeExpiry = &expiry

	require.NoError(t, svc.ResetPassword(context.Background(), "jane@example.com", "brand-new-pass", "brand-new-pass"))
	assert.Nil(t, user.ResetCode)
	assert.Nil(t, user.ResetCodeExpiry)

	_, err = svc.Login(context.Background(), "jdoe", "brand-new-pass")
	require.NoError(t, err)
}

func TestConfirmPassword_LockoutAfterThreeAttempts(t *testing.T) {
	svc, repo, _ := newTestService(t)
	user := seedUser(t, repo, "jdoe", "jane@example.com", "password1", asCashier)
	ctx := ctxFor(user)

	err := svc.ConfirmPassword(ctx, "wrong")
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "Incorrect password. 2 attempt(s) left.", appErr.Message)

	err = svc.ConfirmPassword(ctx, "wrong")
	appErr, ok = apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "Incorrect password. 1 attempt(s) left.", appErr.Message)

	err = svc.ConfirmPassword(ctx, "wrong")
	appErr, ok = apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
	assert.Equal(t, "Too many failed attempts. You have been logged out.", appErr.Message)
	assert.Zero(t, user.FailedPasswordAttempts)

	// Counter starts fresh after the lockout.
	err = svc.ConfirmPassword(ctx, "wrong")
	appErr, ok = apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "Incorrect password. 2 attempt(s) left.", appErr.Message)

	require.NoError(t, svc.ConfirmPassword(ctx, "password1"))
	assert.Zero(t, user.FailedPasswordAttempts)
	assert.NotNil(t, user.LastPasswordVerifiedAt)
}

func TestChangePassword_RequiresRecentVerification(t *testing.T) {
	svc, repo, _ := newTestService(t)
	user := seedUser(t, repo, "jdoe", "jane@example.com", "password1", asCashier)
	ctx := ctxFor(user)

	err := svc.ChangePassword(ctx, "newpass", "newpass")
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "Old password verification required before changing password.", appErr.Message)

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	require.NoError(t, svc.ConfirmPassword(ctx, "password1"))

	svc.now = func() time.Time { return base.Add(5 * time.Minute) }
	err = svc.ChangePassword(ctx, "newpass", "newpass")
	appErr, ok = apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "Old password verification expired. Please verify again.", appErr.Message)

	svc.now = func() time.Time { return base.Add(time.Minute) }
	err = svc.ChangePassword(ctx, "password1", "password1")
	appErr, ok = apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "New password cannot be the same as the old password.", appErr.Message)

	require.NoError(t, svc.ChangePassword(ctx, "newpass", "newpass"))
	assert.Nil(t, user.LastPasswordVerifiedAt)

	_, err = svc.Login(context.Background(), "jdoe", "newpass")
	require.NoError(t, err)
}

// Package context carries request-scoped identity and tracing values.
package context

import "context"

// UserContext is the authenticated caller, decoded from the JWT by the
// auth middleware.
type UserContext struct {
	UserID   string
	Email    string
	Username string
	FullName string
	Role     string
	IsAdmin  bool
}

// DisplayName is the name recorded on documents and audit rows for the
// current user: full name when present, otherwise the username. Safe on
// a nil receiver so anonymous contexts record an empty name.
func (u *UserContext) DisplayName() string {
	switch {
	case u == nil:
		return ""
	case u.FullName != "":
		return u.FullName
	default:
		return u.Username
	}
}

type userKey struct{}

// WithUser attaches the caller to the context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// GetUser returns the caller from ctx, or nil when unauthenticated.
func GetUser(ctx context.Context) *UserContext {
	user, _ := ctx.Value(userKey{}).(*UserContext)
	return user
}

// GetUserID returns the caller's ID, or "" when unauthenticated.
func GetUserID(ctx context.Context) string {
	if user := GetUser(ctx); user != nil {
		return user.UserID
	}
	return ""
}

// HasRole reports whether the caller holds the role. Admins pass every
// role check.
func HasRole(ctx context.Context, role string) bool {
	user := GetUser(ctx)
	if user == nil {
		return false
	}
	return user.IsAdmin || user.Role == role
}

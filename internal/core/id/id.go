// Package id defines the identifier type shared by every stored entity.
package id

import "github.com/google/uuid"

// ID aliases uuid.UUID so repositories can pass values straight to pgx.
type ID = uuid.UUID

// New returns a time-ordered UUIDv7. The embedded timestamp keeps B-tree
// inserts append-mostly and makes IDs sortable by creation time.
func New() ID {
	v7, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the entropy source does; fall back to v4.
		return uuid.New()
	}
	return v7
}

// Parse validates and converts a string form of an ID.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// MustParse is Parse that panics. For tests and fixtures only.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

// Nil is the zero ID.
func Nil() ID {
	return uuid.Nil
}

// IsNil reports whether the ID is unset.
func IsNil(v ID) bool {
	return v == uuid.Nil
}

// Package refgen generates unique human-checkable references for audit
// entities (sales, pool entries, stock history rows, write-offs).
//
// A reference is "<Prefix>-<12 hex chars>". Collisions are astronomically
// unlikely but the generator still verifies uniqueness against storage and
// retries a bounded number of times before giving up with an integrity error.
package refgen

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"swiftpos/internal/core/apperror"
)

// DefaultAttempts is the bounded retry count for collision resolution.
const DefaultAttempts = 10

// suffixLen is the number of hex characters after the prefix.
const suffixLen = 12

// ExistsFunc reports whether a candidate reference is already taken.
type ExistsFunc func(ctx context.Context, ref string) (bool, error)

// Generator produces unique references for one entity family.
type Generator struct {
	prefix   string
	attempts int
}

// New creates a Generator with the given prefix (e.g. "Sale").
func New(prefix string) *Generator {
	return &Generator{prefix: prefix, attempts: DefaultAttempts}
}

// WithAttempts overrides the retry bound. Used in tests.
func (g *Generator) WithAttempts(n int) *Generator {
	g.attempts = n
	return g
}

// Next returns a fresh unique reference, checking candidates through exists.
// After the retry bound is exhausted it fails with an integrity error; the
// caller's transaction rolls back and nothing is persisted.
func (g *Generator) Next(ctx context.Context, exists ExistsFunc) (string, error) {
	for i := 0; i < g.attempts; i++ {
		ref, err := g.candidate()
		if err != nil {
			return "", err
		}
		taken, err := exists(ctx, ref)
		if err != nil {
			return "", fmt.Errorf("check reference %q: %w", ref, err)
		}
		if !taken {
			return ref, nil
		}
	}
	return "", apperror.NewIntegrity(
		fmt.Sprintf("could not generate unique %s reference", g.prefix),
	)
}

func (g *Generator) candidate() (string, error) {
	buf := make([]byte, suffixLen/2)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return fmt.Sprintf("%s-%s", g.prefix, hex.EncodeToString(buf)), nil
}

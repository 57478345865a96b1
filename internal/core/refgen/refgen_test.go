package refgen

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swiftpos/internal/core/apperror"
)

func TestNext_Format(t *testing.T) {
	g := New("Sale")
	ref, err := g.Next(context.Background(), func(ctx context.Context, ref string) (bool, error) {
		return false, nil
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "Sale-"))
	assert.Len(t, ref, len("Sale-")+12)
}

func TestNext_RetriesOnCollision(t *testing.T) {
	calls := 0
	g := New("StockHistory")
	ref, err := g.Next(context.Background(), func(ctx context.Context, ref string) (bool, error) {
		calls++
		return calls < 3, nil // first two candidates taken
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.NotEmpty(t, ref)
}

func TestNext_BoundedRetries(t *testing.T) {
	calls := 0
	g := New("DamageProduct").WithAttempts(4)
	_, err := g.Next(context.Background(), func(ctx context.Context, ref string) (bool, error) {
		calls++
		return true, nil // every candidate collides
	})
	require.Error(t, err)
	assert.Equal(t, 4, calls)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeIntegrity, appErr.Code)
}

func TestNext_Distinct(t *testing.T) {
	g := New("Sale")
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		ref, err := g.Next(context.Background(), func(ctx context.Context, ref string) (bool, error) {
			return false, nil
		})
		require.NoError(t, err)
		assert.False(t, seen[ref], "duplicate reference %s", ref)
		seen[ref] = true
	}
}

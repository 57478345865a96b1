package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiff(t *testing.T) {
	oldState := map[string]any{
		"name":     "Sugar 1kg",
		"quantity": 10,
		"status":   "active",
	}
	newState := map[string]any{
		"name":     "Sugar 1kg",
		"quantity": 7,
		"badge":    "gold",
	}

	changes := Diff(oldState, newState)

	assert.NotContains(t, changes, "name")
	assert.Equal(t, map[string]any{"old": 10, "new": 7}, changes["quantity"])
	assert.Equal(t, map[string]any{"old": "active", "new": nil}, changes["status"])
	assert.Equal(t, map[string]any{"old": nil, "new": "gold"}, changes["badge"])
}

func TestDiff_NoChanges(t *testing.T) {
	state := map[string]any{"name": "Carton", "quantity": 5}
	assert.Empty(t, Diff(state, state))
}

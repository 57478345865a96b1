package overhead

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swiftpos/internal/core/types"
)

func intPtr(n int) *int { return &n }

func TestValidate(t *testing.T) {
	ctx := context.Background()

	t.Run("capital with capital category", func(t *testing.T) {
		o := New(TypeCapital, CategoryEquipment, types.MustMoney("5000.00"))
		require.NoError(t, o.Validate(ctx))
	})

	t.Run("capital with recurring category rejected", func(t *testing.T) {
		o := New(TypeCapital, CategoryRent, types.MustMoney("5000.00"))
		require.Error(t, o.Validate(ctx))
	})

	t.Run("recurring requires duration", func(t *testing.T) {
		o := New(TypeRecurring, CategoryRent, types.MustMoney("1200.00"))
		require.Error(t, o.Validate(ctx))

		o.Duration = intPtr(6)
		require.NoError(t, o.Validate(ctx))
	})

	t.Run("others requires description", func(t *testing.T) {
		o := New(TypeCapital, CategoryOthers, types.MustMoney("100.00"))
		require.Error(t, o.Validate(ctx))

		o.Description = "stationery restock"
		require.NoError(t, o.Validate(ctx))
	})

	t.Run("zero amount rejected", func(t *testing.T) {
		o := New(TypeCapital, CategoryEquipment, types.Zero())
		require.Error(t, o.Validate(ctx))
	})
}

func TestFillDescription(t *testing.T) {
	o := New(TypeRecurring, CategoryRent, types.MustMoney("1200.00"))
	o.Duration = intPtr(12)
	o.CreatedByName = "Jane Doe"
	o.FillDescription()
	assert.Equal(t, "Recurring overhead for Office payment, recorded by Jane Doe", o.Description)

	anon := New(TypeCapital, CategoryEquipment, types.MustMoney("800.00"))
	anon.FillDescription()
	assert.Equal(t, "Capital for Equipment Purchase payment", anon.Description)

	explicit := New(TypeCapital, CategoryEquipment, types.MustMoney("800.00"))
	explicit.Description = "new freezer"
	explicit.FillDescription()
	assert.Equal(t, "new freezer", explicit.Description)
}

func TestAmortizedFor(t *testing.T) {
	o := New(TypeRecurring, CategoryRent, types.MustMoney("1200.00"))
	o.Duration = intPtr(3)
	o.CreatedAt = time.Date(2026, time.November, 15, 0, 0, 0, 0, time.UTC)

	share := types.MustMoney("400.00")

	// window spans November, December and January across the year boundary
	assert.True(t, o.AmortizedFor(2026, time.November).Equal(share))
	assert.True(t, o.AmortizedFor(2026, time.December).Equal(share))
	assert.True(t, o.AmortizedFor(2027, time.January).Equal(share))

	assert.True(t, o.AmortizedFor(2026, time.October).IsZero())
	assert.True(t, o.AmortizedFor(2027, time.February).IsZero())
}

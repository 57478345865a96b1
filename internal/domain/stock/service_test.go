package stock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swiftpos/internal/core/id"
)

func day(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

// batches arrive pre-sorted by soonest expiry, as the repository returns them
func testBatches(quantities ...int) []*Batch {
	dates := []string{"2026-01-01", "2026-02-01", "2026-03-01", "2026-04-01"}
	batches := make([]*Batch, 0, len(quantities))
	for i, q := range quantities {
		b := NewBatch(id.New(), "BN-"+dates[i], q)
		b.ExpiryDate = day(dates[i])
		batches = append(batches, b)
	}
	return batches
}

func TestPlanBatchDrain_EarliestFirst(t *testing.T) {
	batches := testBatches(4, 10, 6)

	plan := planBatchDrain(batches, 9)

	require.Len(t, plan, 2)
	assert.Equal(t, batches[0].ID, plan[0].batchID)
	assert.Equal(t, 4, plan[0].quantity)
	assert.Equal(t, 0, plan[0].left)
	assert.Equal(t, batches[1].ID, plan[1].batchID)
	assert.Equal(t, 5, plan[1].quantity)
	assert.Equal(t, 5, plan[1].left)
}

func TestPlanBatchDrain_SkipsEmptyBatches(t *testing.T) {
	batches := testBatches(0, 3, 5)

	plan := planBatchDrain(batches, 4)

	require.Len(t, plan, 2)
	assert.Equal(t, batches[1].ID, plan[0].batchID)
	assert.Equal(t, 3, plan[0].quantity)
	assert.Equal(t, batches[2].ID, plan[1].batchID)
	assert.Equal(t, 1, plan[1].quantity)
	assert.Equal(t, 4, plan[1].left)
}

func TestPlanBatchDrain_SingleBatchPartial(t *testing.T) {
	batches := testBatches(10)

	plan := planBatchDrain(batches, 4)

	require.Len(t, plan, 1)
	assert.Equal(t, 4, plan[0].quantity)
	assert.Equal(t, 6, plan[0].left)
}

func TestPlanBatchDrain_ShortStockStopsQuietly(t *testing.T) {
	// batch totals are advisory: a shortfall is not an error here
	batches := testBatches(2, 1)

	plan := planBatchDrain(batches, 10)

	require.Len(t, plan, 2)
	assert.Equal(t, 2, plan[0].quantity)
	assert.Equal(t, 1, plan[1].quantity)
}

func TestPlanBatchDrain_ZeroQuantity(t *testing.T) {
	assert.Empty(t, planBatchDrain(testBatches(5), 0))
}

func TestBatchStatus(t *testing.T) {
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	sold := NewBatch(id.New(), "B1", 0)
	assert.Equal(t, "sold out", sold.Status(now))

	noExpiry := NewBatch(id.New(), "B2", 5)
	assert.Equal(t, "no expiry", noExpiry.Status(now))

	expired := NewBatch(id.New(), "B3", 5)
	expired.ExpiryDate = day("2026-01-05")
	assert.Equal(t, "expired", expired.Status(now))

	threshold := 14
	expiring := NewBatch(id.New(), "B4", 5)
	expiring.ExpiryDate = day("2026-01-20")
	expiring.ExpiryMinThresholdDays = &threshold
	assert.Equal(t, "expiring", expiring.Status(now))

	fresh := NewBatch(id.New(), "B5", 5)
	fresh.ExpiryDate = day("2026-03-11")
	assert.Equal(t, "60 days left to expiry", fresh.Status(now))
}

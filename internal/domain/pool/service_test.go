package pool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swiftpos/internal/core/apperror"
	"swiftpos/internal/core/id"
	"swiftpos/internal/core/types"
	"swiftpos/internal/domain/catalogs/product"
)

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memPoolRepo struct {
	Repository
	entries map[id.ID]*Entry
	deleted []id.ID
}

func newMemPoolRepo() *memPoolRepo {
	return &memPoolRepo{entries: make(map[id.ID]*Entry)}
}

func (r *memPoolRepo) Create(_ context.Context, e *Entry) error {
	r.entries[e.ID] = e
	return nil
}

func (r *memPoolRepo) Update(_ context.Context, e *Entry) error {
	r.entries[e.ID] = e
	return nil
}

func (r *memPoolRepo) Delete(_ context.Context, entryID id.ID) error {
	delete(r.entries, entryID)
	r.deleted = append(r.deleted, entryID)
	return nil
}

func (r *memPoolRepo) GetByID(_ context.Context, entryID id.ID) (*Entry, error) {
	e, ok := r.entries[entryID]
	if !ok {
		return nil, apperror.NewNotFound("pool entry", entryID)
	}
	return e, nil
}

func (r *memPoolRepo) GetForUpdate(ctx context.Context, entryID id.ID) (*Entry, error) {
	return r.GetByID(ctx, entryID)
}

func (r *memPoolRepo) GetByProductCode(_ context.Context, kind Kind, code string) (*Entry, error) {
	for _, e := range r.entries {
		if e.Kind == kind && e.ProductCode == code {
			return e, nil
		}
	}
	return nil, apperror.NewNotFound("pool entry", code)
}

func (r *memPoolRepo) ReferenceExists(_ context.Context, ref string) (bool, error) {
	for _, e := range r.entries {
		if e.Reference == ref {
			return true, nil
		}
	}
	return false, nil
}

type stubProductRepo struct {
	product.Repository
	products map[id.ID]*product.Product
}

func (r *stubProductRepo) GetByID(_ context.Context, productID id.ID) (*product.Product, error) {
	p, ok := r.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID)
	}
	return p, nil
}

func testProduct(t *testing.T) *product.Product {
	t.Helper()
	p := product.New("PRD-001", "Groundnut Oil", id.New())
	p.Description = "Groundnut Oil 5L Bottle"
	p.UnitPrice = types.MustMoney("100.00")
	p.ApplyVAT = true
	p.VATValue = types.MustMoney("7.50")
	p.Quantity = 40
	return p
}

func newTestService(t *testing.T, products ...*product.Product) (*Service, *memPoolRepo) {
	t.Helper()
	repo := newMemPoolRepo()
	prodRepo := &stubProductRepo{products: make(map[id.ID]*product.Product)}
	for _, p := range products {
		prodRepo.products[p.ID] = p
	}
	return NewService(repo, prodRepo, nil, passthroughTx{}), repo
}

func TestSlash_CreatesEntryWithProductSnapshot(t *testing.T) {
	p := testProduct(t)
	svc, repo := newTestService(t, p)

	e, err := svc.Slash(context.Background(), KindExpiring, SlashInput{
		ProductID:   p.ID,
		ResalePrice: types.MustMoney("80.00"),
		Quantity:    5,
		Note:        "close to expiry",
	})
	require.NoError(t, err)

	assert.Equal(t, "PRD-001", e.ProductCode)
	assert.Equal(t, "Groundnut Oil", e.ProductName)
	assert.Equal(t, "Groundnut Oil 5L Bottle (EP)", e.Description)
	// snapshot price carries VAT: 100.00 + 7.50
	assert.True(t, e.InitialUnitPrice.Equal(types.MustMoney("107.50")))
	// loss = (107.50 - 80.00) * 5
	assert.True(t, e.LossValue.Equal(types.MustMoney("137.50")))
	assert.Regexp(t, `^ExpiringProduct-[0-9a-f]{12}$`, e.Reference)
	assert.Len(t, repo.entries, 1)
}

func TestSlash_AggregatesByProductCode(t *testing.T) {
	p := testProduct(t)
	svc, repo := newTestService(t, p)
	ctx := context.Background()

	first, err := svc.Slash(ctx, KindExpiring, SlashInput{
		ProductID: p.ID, ResalePrice: types.MustMoney("80.00"), Quantity: 5, Note: "first",
	})
	require.NoError(t, err)

	second, err := svc.Slash(ctx, KindExpiring, SlashInput{
		ProductID: p.ID, ResalePrice: types.MustMoney("70.00"), Quantity: 3, Note: "second",
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 8, second.Quantity)
	// expiring pool keeps the original resale price and note
	assert.True(t, second.ResalePrice.Equal(types.MustMoney("80.00")))
	assert.Equal(t, "first", second.Note)
	assert.Len(t, repo.entries, 1)
}

func TestSlash_DamagedReplacesPriceAndNote(t *testing.T) {
	p := testProduct(t)
	svc, _ := newTestService(t, p)
	ctx := context.Background()

	_, err := svc.Slash(ctx, KindDamaged, SlashInput{
		ProductID: p.ID, ResalePrice: types.MustMoney("60.00"), Quantity: 2, Note: "dented",
	})
	require.NoError(t, err)

	e, err := svc.Slash(ctx, KindDamaged, SlashInput{
		ProductID: p.ID, ResalePrice: types.MustMoney("50.00"), Quantity: 4, Note: "crushed",
	})
	require.NoError(t, err)

	assert.Equal(t, 6, e.Quantity)
	assert.True(t, e.ResalePrice.Equal(types.MustMoney("50.00")))
	assert.Equal(t, "crushed", e.Note)
	assert.Equal(t, "Groundnut Oil 5L Bottle (DP)", e.Description)
}

func TestSlash_Validation(t *testing.T) {
	p := testProduct(t)
	svc, _ := newTestService(t, p)
	ctx := context.Background()

	cases := []struct {
		name string
		in   SlashInput
	}{
		{"zero resale price", SlashInput{ProductID: p.ID, ResalePrice: types.Zero(), Quantity: 1, Note: "n"}},
		{"zero quantity", SlashInput{ProductID: p.ID, ResalePrice: types.MustMoney("10.00"), Quantity: 0, Note: "n"}},
		{"blank note", SlashInput{ProductID: p.ID, ResalePrice: types.MustMoney("10.00"), Quantity: 1, Note: "   "}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Slash(ctx, KindExpiring, tc.in)
			require.Error(t, err)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
		})
	}
}

func TestDeduct_InsufficientIsHardError(t *testing.T) {
	p := testProduct(t)
	svc, _ := newTestService(t, p)
	ctx := context.Background()

	e, err := svc.Slash(ctx, KindDamaged, SlashInput{
		ProductID: p.ID, ResalePrice: types.MustMoney("50.00"), Quantity: 3, Note: "crushed",
	})
	require.NoError(t, err)

	err = svc.Deduct(ctx, e, 5)
	require.Error(t, err)
	assert.True(t, apperror.IsPoolUnavailable(err))
	assert.Contains(t, err.Error(), "only 3 units available in the Damaged table")
	// entry untouched
	assert.Equal(t, 3, e.Quantity)
}

func TestDeduct_DeletesAtZero(t *testing.T) {
	p := testProduct(t)
	svc, repo := newTestService(t, p)
	ctx := context.Background()

	e, err := svc.Slash(ctx, KindExpiring, SlashInput{
		ProductID: p.ID, ResalePrice: types.MustMoney("80.00"), Quantity: 4, Note: "expiring",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Deduct(ctx, e, 4))
	assert.Empty(t, repo.entries)
	assert.Equal(t, []id.ID{e.ID}, repo.deleted)
}

func TestDeduct_PartialRecomputesLoss(t *testing.T) {
	p := testProduct(t)
	svc, repo := newTestService(t, p)
	ctx := context.Background()

	e, err := svc.Slash(ctx, KindExpiring, SlashInput{
		ProductID: p.ID, ResalePrice: types.MustMoney("80.00"), Quantity: 10, Note: "expiring",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Deduct(ctx, e, 6))
	assert.Equal(t, 4, e.Quantity)
	// loss = (107.50 - 80.00) * 4
	assert.True(t, e.LossValue.Equal(types.MustMoney("110.00")))
	assert.Len(t, repo.entries, 1)
}

package sales

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swiftpos/internal/core/apperror"
	"swiftpos/internal/core/id"
	"swiftpos/internal/core/numerator"
	"swiftpos/internal/core/types"
	"swiftpos/internal/domain/catalogs/customer"
	"swiftpos/internal/domain/catalogs/product"
	"swiftpos/internal/domain/pool"
	"swiftpos/internal/domain/stock"
)

// --- test doubles ---

type passthroughTx struct{ calls int }

func (m *passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

type stubProductRepo struct {
	product.Repository
	products   map[id.ID]*product.Product
	quantities map[id.ID]int
}

func newStubProductRepo(products ...*product.Product) *stubProductRepo {
	r := &stubProductRepo{
		products:   make(map[id.ID]*product.Product),
		quantities: make(map[id.ID]int),
	}
	for _, p := range products {
		r.products[p.ID] = p
		r.quantities[p.ID] = p.Quantity
	}
	return r
}

func (r *stubProductRepo) GetByID(_ context.Context, productID id.ID) (*product.Product, error) {
	p, ok := r.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID)
	}
	return p, nil
}

func (r *stubProductRepo) GetForUpdate(ctx context.Context, productID id.ID) (*product.Product, error) {
	return r.GetByID(ctx, productID)
}

func (r *stubProductRepo) SetQuantity(_ context.Context, productID id.ID, quantity int) error {
	r.quantities[productID] = quantity
	if p, ok := r.products[productID]; ok {
		p.Quantity = quantity
	}
	return nil
}

type memPoolRepo struct {
	pool.Repository
	entries map[id.ID]*pool.Entry
}

func newMemPoolRepo(entries ...*pool.Entry) *memPoolRepo {
	r := &memPoolRepo{entries: make(map[id.ID]*pool.Entry)}
	for _, e := range entries {
		r.entries[e.ID] = e
	}
	return r
}

func (r *memPoolRepo) GetByID(_ context.Context, entryID id.ID) (*pool.Entry, error) {
	e, ok := r.entries[entryID]
	if !ok {
		return nil, apperror.NewNotFound("pool entry", entryID)
	}
	return e, nil
}

func (r *memPoolRepo) GetForUpdate(ctx context.Context, entryID id.ID) (*pool.Entry, error) {
	return r.GetByID(ctx, entryID)
}

func (r *memPoolRepo) Update(_ context.Context, e *pool.Entry) error {
	r.entries[e.ID] = e
	return nil
}

func (r *memPoolRepo) Delete(_ context.Context, entryID id.ID) error {
	delete(r.entries, entryID)
	return nil
}

type movement struct {
	productID id.ID
	action    stock.Action
	quantity  int
	notes     string
}

type recordingLedger struct {
	movements []movement
	drains    []struct {
		productID id.ID
		quantity  int
	}
}

func (l *recordingLedger) RecordMovement(_ context.Context, productID id.ID, action stock.Action, quantity int, notes string) error {
	l.movements = append(l.movements, movement{productID, action, quantity, notes})
	return nil
}

func (l *recordingLedger) DrainFIFO(_ context.Context, productID id.ID, quantity int) error {
	l.drains = append(l.drains, struct {
		productID id.ID
		quantity  int
	}{productID, quantity})
	return nil
}

type memSalesRepo struct {
	sales    map[id.ID]*Sale
	items    []*SaleItem
	receipts map[id.ID]*Receipt
	created  int
}

func newMemSalesRepo() *memSalesRepo {
	return &memSalesRepo{
		sales:    make(map[id.ID]*Sale),
		receipts: make(map[id.ID]*Receipt),
	}
}

func (r *memSalesRepo) CreateSale(_ context.Context, s *Sale) error {
	r.sales[s.ID] = s
	return nil
}

func (r *memSalesRepo) CreateItem(_ context.Context, item *SaleItem) error {
	r.items = append(r.items, item)
	return nil
}

func (r *memSalesRepo) UpdateSaleTotals(_ context.Context, s *Sale) error {
	r.sales[s.ID] = s
	return nil
}

func (r *memSalesRepo) GetSale(_ context.Context, saleID id.ID) (*Sale, error) {
	s, ok := r.sales[saleID]
	if !ok {
		return nil, apperror.NewNotFound("sale", saleID)
	}
	return s, nil
}

func (r *memSalesRepo) List(context.Context, Filter) ([]*Sale, error) { return nil, nil }

func (r *memSalesRepo) ReferenceExists(_ context.Context, ref string) (bool, error) {
	for _, s := range r.sales {
		if s.Reference == ref {
			return true, nil
		}
	}
	return false, nil
}

func (r *memSalesRepo) GetOrCreateReceipt(_ context.Context, saleID id.ID) (*Receipt, error) {
	if rec, ok := r.receipts[saleID]; ok {
		return rec, nil
	}
	r.created++
	rec := &Receipt{ID: id.New(), SaleID: saleID, CreatedAt: time.Now().UTC()}
	r.receipts[saleID] = rec
	return rec, nil
}

func (r *memSalesRepo) UpdateReceipt(_ context.Context, rec *Receipt) error {
	r.receipts[rec.SaleID] = rec
	return nil
}

func (r *memSalesRepo) ListReceiptsByDay(context.Context, time.Time, int) ([]*Receipt, error) {
	return nil, nil
}

func (r *memSalesRepo) CashierSummary(context.Context, string, time.Time) (*CashierSummary, error) {
	return &CashierSummary{
		TotalSales:         types.Zero(),
		PaymentTypeAmounts: map[PaymentType]types.Money{},
	}, nil
}

type stubRenderer struct{ rendered []ReceiptData }

func (r *stubRenderer) Render(_ context.Context, data ReceiptData) ([]byte, error) {
	r.rendered = append(r.rendered, data)
	return []byte("%PDF-1.4"), nil
}

type stubFileStore struct{ saved []string }

func (s *stubFileStore) Save(_ context.Context, name string, _ []byte) (string, error) {
	s.saved = append(s.saved, name)
	return "/media/receipts/" + name, nil
}

type stubCustomerRepo struct{ customer.Repository }

// --- fixtures ---

type fixture struct {
	svc      *Service
	repo     *memSalesRepo
	products *stubProductRepo
	pools    *memPoolRepo
	ledger   *recordingLedger
	renderer *stubRenderer
	files    *stubFileStore
	tx       *passthroughTx
}

func newFixture(t *testing.T, products []*product.Product, entries []*pool.Entry) *fixture {
	t.Helper()

	f := &fixture{
		repo:     newMemSalesRepo(),
		products: newStubProductRepo(products...),
		pools:    newMemPoolRepo(entries...),
		ledger:   &recordingLedger{},
		renderer: &stubRenderer{},
		files:    &stubFileStore{},
		tx:       &passthroughTx{},
	}
	drainer := pool.NewService(f.pools, f.products, nil, f.tx)
	f.svc = NewService(
		f.repo, f.products, f.pools, drainer, f.ledger,
		&stubCustomerRepo{}, f.renderer, f.files, nil,
		&numerator.MockGenerator{}, f.tx,
	)
	return f
}

func testProduct(t *testing.T, stockQty int) *product.Product {
	t.Helper()
	p := product.New("OIL-5L", "Groundnut Oil", id.New())
	p.Description = "Groundnut Oil 5L Bottle"
	p.Quantity = stockQty
	p.UnitBuyingPrice = types.MustMoney("60.00")
	p.UnitPrice = types.MustMoney("100.00")
	p.Discount = types.MustMoney("5.00")
	p.DiscountQuantity = 3
	p.ApplyVAT = true
	p.VATValue = types.MustMoney("7.50")
	return p
}

func testPoolEntry(t *testing.T, kind pool.Kind, p *product.Product, qty int) *pool.Entry {
	t.Helper()
	e := pool.NewEntry(kind, p.ID, p.Code, p.Name, p.PriceWithVAT())
	e.ResalePrice = types.MustMoney("50.00")
	e.Quantity = qty
	e.Note = "slashed"
	e.Reference = fmt.Sprintf("%s-abcdef123456", kind.RefPrefix())
	e.RecalcLoss()
	return e
}

func ordinaryLine(p *product.Product, qty int) CartLine {
	unit := p.UnitPrice
	q := types.MoneyFromInt(int64(qty))
	discount := types.Zero()
	if p.DiscountQuantity > 0 && qty >= p.DiscountQuantity {
		discount = p.Discount.Mul(q)
	}
	return CartLine{
		Checker:       p.ID.String() + "-OIL5L",
		SaleType:      SaleTypeOrdinary,
		Quantity:      qty,
		UnitPrice:     unit,
		VATValue:      p.VATValue.Mul(q),
		DiscountValue: discount,
		Amount:        unit.Mul(q),
	}
}

func poolLine(e *pool.Entry, saleType SaleType, qty int) CartLine {
	q := types.MoneyFromInt(int64(qty))
	return CartLine{
		Checker:       e.ID.String() + "-POOL",
		SaleType:      saleType,
		Quantity:      qty,
		UnitPrice:     e.ResalePrice,
		VATValue:      types.Zero(),
		DiscountValue: types.Zero(),
		Amount:        e.ResalePrice.Mul(q),
	}
}

func cartFor(lines ...CartLine) *CartSubmission {
	sub := types.Zero()
	vat := types.Zero()
	discount := types.Zero()
	for _, l := range lines {
		sub = sub.Add(l.Amount)
		vat = vat.Add(l.VATValue)
		discount = discount.Add(l.DiscountValue)
	}
	return &CartSubmission{
		Payment:       PaymentCash,
		GrandTotal:    sub.Add(vat).Sub(discount),
		TotalVAT:      vat,
		TotalDiscount: discount,
		Lines:         lines,
	}
}

// --- commit ---

func TestCommit_ComputesCostAndProfit(t *testing.T) {
	p := testProduct(t, 10)
	f := newFixture(t, []*product.Product{p}, nil)

	result, err := f.svc.Commit(context.Background(), cartFor(ordinaryLine(p, 4)))
	require.NoError(t, err)

	require.Len(t, result.Sale.Items, 1)
	item := result.Sale.Items[0]

	// cost basis is the buying price, not the sale price
	assert.True(t, item.CostPrice.Equal(types.MustMoney("60.00")))
	// qty 4 meets the discount threshold of 3, so the per-unit discount
	// participates in profit: (100 - 60 - 5) * 4
	assert.True(t, item.Profit.Equal(types.MustMoney("140.00")))
	// stored amount = raw 400 + vat 30 - discount 20
	assert.True(t, item.Amount.Equal(types.MustMoney("410.00")))

	assert.True(t, result.Sale.TotalCost.Equal(types.MustMoney("240.00")))
	assert.True(t, result.Sale.TotalProfit.Equal(types.MustMoney("140.00")))
}

func TestCommit_NoDiscountBelowThreshold(t *testing.T) {
	p := testProduct(t, 10)
	f := newFixture(t, []*product.Product{p}, nil)

	result, err := f.svc.Commit(context.Background(), cartFor(ordinaryLine(p, 2)))
	require.NoError(t, err)

	// qty 2 is below the threshold of 3: (100 - 60) * 2
	assert.True(t, result.Sale.Items[0].Profit.Equal(types.MustMoney("80.00")))
}

func TestCommit_DeductsProductStock(t *testing.T) {
	p := testProduct(t, 10)
	f := newFixture(t, []*product.Product{p}, nil)

	_, err := f.svc.Commit(context.Background(), cartFor(ordinaryLine(p, 4)))
	require.NoError(t, err)

	assert.Equal(t, 6, f.products.quantities[p.ID])
}

func TestCommit_OversellClampsToZeroWithImbalanceNote(t *testing.T) {
	p := testProduct(t, 3)
	f := newFixture(t, []*product.Product{p}, nil)

	_, err := f.svc.Commit(context.Background(), cartFor(ordinaryLine(p, 5)))
	require.NoError(t, err)

	assert.Equal(t, 0, f.products.quantities[p.ID])
	require.Len(t, f.ledger.movements, 1)
	m := f.ledger.movements[0]
	assert.Equal(t, stock.ActionSold, m.action)
	assert.Equal(t, 5, m.quantity)
	assert.Contains(t, m.notes, "(Stock imbalance)")
}

func TestCommit_NormalSaleHasNoImbalanceNote(t *testing.T) {
	p := testProduct(t, 10)
	f := newFixture(t, []*product.Product{p}, nil)

	_, err := f.svc.Commit(context.Background(), cartFor(ordinaryLine(p, 4)))
	require.NoError(t, err)

	require.Len(t, f.ledger.movements, 1)
	assert.NotContains(t, f.ledger.movements[0].notes, "Stock imbalance")
	assert.Contains(t, f.ledger.movements[0].notes, "Sales sales made by")
}

func TestCommit_DamagedInsufficientRejects(t *testing.T) {
	p := testProduct(t, 10)
	entry := testPoolEntry(t, pool.KindDamaged, p, 3)
	f := newFixture(t, []*product.Product{p}, []*pool.Entry{entry})

	_, err := f.svc.Commit(context.Background(), cartFor(poolLine(entry, SaleTypeDamaged, 5)))
	require.Error(t, err)
	assert.True(t, apperror.IsPoolUnavailable(err))
	assert.Contains(t, err.Error(), "only 3 units available in the Damaged table")

	// the entry itself was not reduced
	assert.Equal(t, 3, f.pools.entries[entry.ID].Quantity)
}

func TestCommit_ExpiringDeductsAndDeletesAtZero(t *testing.T) {
	p := testProduct(t, 10)
	entry := testPoolEntry(t, pool.KindExpiring, p, 4)
	f := newFixture(t, []*product.Product{p}, []*pool.Entry{entry})

	_, err := f.svc.Commit(context.Background(), cartFor(poolLine(entry, SaleTypeExpiring, 4)))
	require.NoError(t, err)

	// entry drained to exactly zero is deleted, not kept at zero
	_, exists := f.pools.entries[entry.ID]
	assert.False(t, exists)
}

func TestCommit_ExpiringPartialDeduct(t *testing.T) {
	p := testProduct(t, 10)
	entry := testPoolEntry(t, pool.KindExpiring, p, 9)
	f := newFixture(t, []*product.Product{p}, []*pool.Entry{entry})

	_, err := f.svc.Commit(context.Background(), cartFor(poolLine(entry, SaleTypeExpiring, 4)))
	require.NoError(t, err)

	assert.Equal(t, 5, f.pools.entries[entry.ID].Quantity)
}

func TestCommit_FIFODrainOnlyForOrdinaryLines(t *testing.T) {
	p := testProduct(t, 10)
	entry := testPoolEntry(t, pool.KindDamaged, p, 5)
	f := newFixture(t, []*product.Product{p}, []*pool.Entry{entry})

	_, err := f.svc.Commit(context.Background(), cartFor(
		ordinaryLine(p, 2),
		poolLine(entry, SaleTypeDamaged, 1),
	))
	require.NoError(t, err)

	require.Len(t, f.ledger.drains, 1)
	assert.Equal(t, p.ID, f.ledger.drains[0].productID)
	assert.Equal(t, 2, f.ledger.drains[0].quantity)
}

func TestCommit_ReceiptGetOrCreate(t *testing.T) {
	p := testProduct(t, 10)
	f := newFixture(t, []*product.Product{p}, nil)

	result, err := f.svc.Commit(context.Background(), cartFor(ordinaryLine(p, 2)))
	require.NoError(t, err)

	assert.Equal(t, 1, f.repo.created)
	rec := f.repo.receipts[result.Sale.ID]
	require.NotNil(t, rec)
	assert.Equal(t, result.Sale.Reference, rec.SalesReference)
	assert.NotEmpty(t, rec.ReceiptNumber)
	assert.Equal(t, result.ReceiptURL, rec.FilePath)
	assert.Contains(t, result.ReceiptURL, "/media/receipts/receipt_")
}

func TestCommit_ReceiptDescriptionsTagPoolLines(t *testing.T) {
	p := testProduct(t, 10)
	entry := testPoolEntry(t, pool.KindExpiring, p, 5)
	f := newFixture(t, []*product.Product{p}, []*pool.Entry{entry})

	_, err := f.svc.Commit(context.Background(), cartFor(poolLine(entry, SaleTypeExpiring, 2)))
	require.NoError(t, err)

	require.Len(t, f.renderer.rendered, 1)
	require.Len(t, f.renderer.rendered[0].Items, 1)
	assert.Equal(t, "Groundnut Oil 5L Bottle (EP)", f.renderer.rendered[0].Items[0].Description)
}

func TestCommit_SaleReferenceFormat(t *testing.T) {
	p := testProduct(t, 10)
	f := newFixture(t, []*product.Product{p}, nil)

	result, err := f.svc.Commit(context.Background(), cartFor(ordinaryLine(p, 1)))
	require.NoError(t, err)

	assert.Regexp(t, `^Sale-[0-9a-f]{12}$`, result.Sale.Reference)
}

func TestCommit_InvalidCheckerRejectedBeforeTransaction(t *testing.T) {
	p := testProduct(t, 10)
	f := newFixture(t, []*product.Product{p}, nil)

	line := ordinaryLine(p, 1)
	line.Checker = "garbage"
	_, err := f.svc.Commit(context.Background(), cartFor(line))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid key format")
	assert.Zero(t, f.tx.calls)
}

func TestCommit_RejectsInvalidPaymentType(t *testing.T) {
	p := testProduct(t, 10)
	f := newFixture(t, []*product.Product{p}, nil)

	cart := cartFor(ordinaryLine(p, 1))
	cart.Payment = "Cheque"
	_, err := f.svc.Commit(context.Background(), cart)

	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestCommit_StaleCartEntryRejects(t *testing.T) {
	p := testProduct(t, 10)
	f := newFixture(t, []*product.Product{p}, nil)

	line := CartLine{
		Checker:   id.New().String() + "-GONE",
		SaleType:  SaleTypeExpiring,
		Quantity:  1,
		UnitPrice: types.MustMoney("50.00"),
		Amount:    types.MustMoney("50.00"),
	}
	_, err := f.svc.Commit(context.Background(), cartFor(line))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no longer exists in the Expiring table")
}

// --- preview ---

func TestPreview_OrdinaryPricing(t *testing.T) {
	p := testProduct(t, 10)
	f := newFixture(t, []*product.Product{p}, nil)

	result, err := f.svc.Preview(context.Background(), []PreviewRequestLine{
		{Checker: p.ID.String() + "-OIL5L", SaleType: SaleTypeOrdinary, Quantity: 4},
	})
	require.NoError(t, err)

	require.Len(t, result.Items, 1)
	line := result.Items[0]
	assert.True(t, line.UnitPrice.Equal(types.MustMoney("100.00")))
	assert.True(t, line.Amount.Equal(types.MustMoney("400.00")))
	assert.True(t, line.VATValue.Equal(types.MustMoney("30.00")))
	assert.True(t, line.DiscountValue.Equal(types.MustMoney("20.00")))
	assert.Empty(t, line.Message)

	// grand = 400 + 30 - 20
	assert.True(t, result.Totals.GrandTotal.Equal(types.MustMoney("410.00")))
}

func TestPreview_ClampsPoolQuantity(t *testing.T) {
	p := testProduct(t, 10)
	entry := testPoolEntry(t, pool.KindDamaged, p, 3)
	f := newFixture(t, []*product.Product{p}, []*pool.Entry{entry})

	result, err := f.svc.Preview(context.Background(), []PreviewRequestLine{
		{Checker: entry.ID.String() + "-POOL", SaleType: SaleTypeDamaged, Quantity: 5},
	})
	require.NoError(t, err)

	require.Len(t, result.Items, 1)
	line := result.Items[0]
	assert.Equal(t, 3, line.Quantity)
	assert.Equal(t, "Quantity adjusted to available stock (3)", line.Message)
	assert.True(t, line.UnitPrice.Equal(types.MustMoney("50.00")))
	assert.True(t, line.Amount.Equal(types.MustMoney("150.00")))
}

func TestPreview_DropsPoolLineClampedToZero(t *testing.T) {
	p := testProduct(t, 10)
	entry := testPoolEntry(t, pool.KindExpiring, p, 0)
	f := newFixture(t, []*product.Product{p}, []*pool.Entry{entry})

	result, err := f.svc.Preview(context.Background(), []PreviewRequestLine{
		{Checker: entry.ID.String() + "-POOL", SaleType: SaleTypeExpiring, Quantity: 2},
	})
	require.NoError(t, err)

	assert.Empty(t, result.Items)
	assert.True(t, result.Totals.GrandTotal.IsZero())
}

func TestPreview_InvalidKeyGetsMessageNotError(t *testing.T) {
	f := newFixture(t, nil, nil)

	result, err := f.svc.Preview(context.Background(), []PreviewRequestLine{
		{Checker: "not-a-key", SaleType: SaleTypeOrdinary, Quantity: 1},
	})
	require.NoError(t, err)

	require.Len(t, result.Items, 1)
	assert.Equal(t, "Invalid key format", result.Items[0].Message)
	assert.True(t, result.Items[0].Amount.IsZero())
}

func TestPreview_MissingProductGetsMessage(t *testing.T) {
	f := newFixture(t, nil, nil)

	result, err := f.svc.Preview(context.Background(), []PreviewRequestLine{
		{Checker: id.New().String() + "-GONE", SaleType: SaleTypeOrdinary, Quantity: 1},
	})
	require.NoError(t, err)

	require.Len(t, result.Items, 1)
	assert.Equal(t, "Product not found", result.Items[0].Message)
}

// --- cart parsing ---

func TestParseChecker(t *testing.T) {
	target := id.New()

	sel, err := ParseChecker(target.String()+"-OIL5L", SaleTypeOrdinary)
	require.NoError(t, err)
	assert.Equal(t, target, sel.TargetID)
	assert.Equal(t, SaleTypeOrdinary, sel.Type)

	_, err = ParseChecker("short", SaleTypeOrdinary)
	require.Error(t, err)

	_, err = ParseChecker(target.String(), "bogus")
	require.Error(t, err)
}

package sales

import (
	"context"
	"fmt"
	"time"

	"swiftpos/internal/core/apperror"
	appcontext "swiftpos/internal/core/context"
	"swiftpos/internal/core/id"
	"swiftpos/internal/core/numerator"
	"swiftpos/internal/core/refgen"
	"swiftpos/internal/core/tx"
	"swiftpos/internal/core/types"
	"swiftpos/internal/domain/catalogs/customer"
	"swiftpos/internal/domain/catalogs/product"
	"swiftpos/internal/domain/event"
	"swiftpos/internal/domain/pool"
	"swiftpos/internal/domain/stock"
	"swiftpos/pkg/logger"
)

// todaysReceiptsLimit caps the receipt strip on the cashier screen.
const todaysReceiptsLimit = 5

// Service runs the sale workflow.
type Service struct {
	repo      Repository
	products  product.Repository
	pools     pool.Repository
	drainer   PoolDrainer
	ledger    StockLedger
	customers customer.Repository

	renderer Renderer
	files    FileStore
	events   event.Publisher

	receiptNums numerator.Generator
	saleRefs    *refgen.Generator
	txManager   tx.Manager
}

// NewService creates the sales service.
func NewService(
	repo Repository,
	products product.Repository,
	pools pool.Repository,
	drainer PoolDrainer,
	ledger StockLedger,
	customers customer.Repository,
	renderer Renderer,
	files FileStore,
	events event.Publisher,
	receiptNums numerator.Generator,
	txManager tx.Manager,
) *Service {
	if events == nil {
		events = event.Nop{}
	}
	return &Service{
		repo:        repo,
		products:    products,
		pools:       pools,
		drainer:     drainer,
		ledger:      ledger,
		customers:   customers,
		renderer:    renderer,
		files:       files,
		events:      events,
		receiptNums: receiptNums,
		saleRefs:    refgen.New("Sale"),
		txManager:   txManager,
	}
}

// CommitResult is what the cashier screen gets back after a sale.
type CommitResult struct {
	Sale       *Sale           `json:"sale"`
	Summary    *CashierSummary `json:"summary"`
	ReceiptURL string          `json:"receiptUrl"`
}

// resolvedLine pairs a cart line with its locked source rows.
type resolvedLine struct {
	line     CartLine
	selector Selector
	product  *product.Product
	entry    *pool.Entry
}

// Commit atomically persists the sale with its items and receipt and applies
// every stock side effect exactly once. Ordinary lines tolerate overselling
// by clamping product stock to zero and flagging the audit note; damaged and
// expiring lines reject the whole sale when their pool entry cannot cover
// the quantity. Any error rolls back everything.
func (s *Service) Commit(ctx context.Context, cart *CartSubmission) (*CommitResult, error) {
	if err := cart.Validate(ctx); err != nil {
		return nil, err
	}

	// Resolve every selector before opening the transaction.
	selectors := make([]Selector, len(cart.Lines))
	for i, line := range cart.Lines {
		sel, err := ParseChecker(line.Checker, line.SaleType)
		if err != nil {
			return nil, err
		}
		selectors[i] = sel
	}

	staffName := appcontext.GetUser(ctx).DisplayName()

	sale := &Sale{
		ID:            id.New(),
		CustomerID:    cart.CustomerID,
		StaffName:     staffName,
		Payment:       cart.Payment,
		TotalAmount:   types.RoundCents(cart.GrandTotal),
		TotalVAT:      types.RoundCents(cart.TotalVAT),
		TotalDiscount: types.RoundCents(cart.TotalDiscount),
		SaleDate:      time.Now().UTC(),
	}

	var receiptURL string

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		ref, err := s.saleRefs.Next(ctx, s.repo.ReferenceExists)
		if err != nil {
			return err
		}
		sale.Reference = ref

		if err := s.repo.CreateSale(ctx, sale); err != nil {
			return fmt.Errorf("create sale: %w", err)
		}

		totalCost := types.Zero()
		totalProfit := types.Zero()

		for i, line := range cart.Lines {
			resolved, err := s.resolveLine(ctx, line, selectors[i])
			if err != nil {
				return err
			}

			item := buildItem(sale.ID, resolved)
			if err := s.repo.CreateItem(ctx, item); err != nil {
				return fmt.Errorf("create sale item: %w", err)
			}
			sale.Items = append(sale.Items, item)

			totalCost = totalCost.Add(item.CostPrice.Mul(types.MoneyFromInt(int64(item.Quantity))))
			totalProfit = totalProfit.Add(item.Profit)

			if err := s.applyStockEffects(ctx, resolved); err != nil {
				return err
			}
		}

		sale.TotalCost = types.RoundCents(totalCost)
		sale.TotalProfit = types.RoundCents(totalProfit)

		url, err := s.generateReceipt(ctx, sale)
		if err != nil {
			return err
		}
		receiptURL = url

		if err := s.repo.UpdateSaleTotals(ctx, sale); err != nil {
			return fmt.Errorf("update sale totals: %w", err)
		}

		return s.events.Publish(ctx, event.Event{
			AggregateType: "Sale",
			AggregateID:   sale.ID,
			Type:          "SaleCommitted",
			Payload: map[string]any{
				"reference":   sale.Reference,
				"staffName":   sale.StaffName,
				"totalAmount": sale.TotalAmount,
				"items":       len(sale.Items),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	summary, err := s.repo.CashierSummary(ctx, staffName, sale.SaleDate)
	if err != nil {
		logger.Error(ctx, "cashier summary failed after sale", "error", err, "saleRef", sale.Reference)
		summary = &CashierSummary{PaymentTypeAmounts: map[PaymentType]types.Money{}}
	}

	logger.Info(ctx, "sale committed",
		"reference", sale.Reference,
		"items", len(sale.Items),
		"totalAmount", sale.TotalAmount)

	return &CommitResult{Sale: sale, Summary: summary, ReceiptURL: receiptURL}, nil
}

// resolveLine locks the rows a line touches and snapshots the product.
func (s *Service) resolveLine(ctx context.Context, line CartLine, sel Selector) (*resolvedLine, error) {
	r := &resolvedLine{line: line, selector: sel}

	switch sel.Type {
	case SaleTypeOrdinary:
		p, err := s.products.GetForUpdate(ctx, sel.TargetID)
		if err != nil {
			return nil, err
		}
		r.product = p

	case SaleTypeDamaged, SaleTypeExpiring:
		entry, err := s.pools.GetForUpdate(ctx, sel.TargetID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return nil, staleCartError(sel.Type)
			}
			return nil, err
		}
		r.entry = entry

		p, err := s.products.GetForUpdate(ctx, entry.ProductID)
		if err != nil {
			return nil, err
		}
		r.product = p
	}

	return r, nil
}

// buildItem computes the stored line figures. The caller's monetary inputs
// are trusted; cost and profit come from the product snapshot.
func buildItem(saleID id.ID, r *resolvedLine) *SaleItem {
	line := r.line
	qty := types.MoneyFromInt(int64(line.Quantity))

	costPrice := r.product.UnitBuyingPrice
	unitDiscount := r.product.UnitDiscountFor(line.Quantity)

	return &SaleItem{
		ID:            id.New(),
		SaleID:        saleID,
		ProductID:     r.product.ID,
		Quantity:      line.Quantity,
		Type:          line.SaleType,
		UnitPrice:     line.UnitPrice,
		CostPrice:     costPrice,
		VATValue:      line.VATValue,
		DiscountValue: line.DiscountValue,
		Amount:        types.RoundCents(line.Amount.Add(line.VATValue).Sub(line.DiscountValue)),
		Profit:        types.RoundCents(line.UnitPrice.Sub(costPrice).Sub(unitDiscount).Mul(qty)),
	}
}

// applyStockEffects deducts inventory for one resolved line and writes its
// audit entry. Runs inside the commit transaction with rows already locked.
func (s *Service) applyStockEffects(ctx context.Context, r *resolvedLine) error {
	qty := r.line.Quantity
	p := r.product

	// Product stock clamps to zero on oversell; the shortfall is recorded,
	// not rejected.
	imbalance := false
	newQty := p.Quantity - qty
	if newQty < 0 {
		newQty = 0
		imbalance = true
	}
	if err := s.products.SetQuantity(ctx, p.ID, newQty); err != nil {
		return fmt.Errorf("deduct product stock: %w", err)
	}

	// Pool stock is strict: the whole sale fails if the entry cannot cover
	// the line.
	if r.entry != nil {
		if err := s.drainer.Deduct(ctx, r.entry, qty); err != nil {
			return err
		}
	}

	if r.line.SaleType == SaleTypeOrdinary {
		if err := s.ledger.DrainFIFO(ctx, p.ID, qty); err != nil {
			return err
		}
	}

	notes := fmt.Sprintf("%s sales made by %s", r.line.SaleType.HistoryLabel(), saleActor(ctx))
	if imbalance {
		notes += " (Stock imbalance)"
	}
	if err := s.ledger.RecordMovement(ctx, p.ID, stock.ActionSold, qty, notes); err != nil {
		return err
	}

	return s.events.Publish(ctx, event.Event{
		AggregateType: "Product",
		AggregateID:   p.ID,
		Type:          "StockAdjusted",
		Payload: map[string]any{
			"productCode": p.Code,
			"quantity":    newQty,
			"sold":        qty,
		},
	})
}

// generateReceipt renders and stores the sale's receipt, reusing the
// existing receipt row when the sale already has one.
func (s *Service) generateReceipt(ctx context.Context, sale *Sale) (string, error) {
	data, err := s.buildReceiptData(ctx, sale)
	if err != nil {
		return "", err
	}

	// Django recomputes the stored grand total from the receipt view.
	sale.TotalAmount = data.GrandTotal

	pdf, err := s.renderer.Render(ctx, data)
	if err != nil {
		return "", fmt.Errorf("render receipt: %w", err)
	}

	url, err := s.files.Save(ctx, fmt.Sprintf("receipt_%s.pdf", sale.ID), pdf)
	if err != nil {
		return "", fmt.Errorf("store receipt: %w", err)
	}

	receipt, err := s.repo.GetOrCreateReceipt(ctx, sale.ID)
	if err != nil {
		return "", fmt.Errorf("get or create receipt: %w", err)
	}
	receipt.CustomerID = sale.CustomerID
	receipt.SalesReference = sale.Reference
	receipt.ReceiptNumber = data.ReceiptNumber
	receipt.FilePath = url
	if err := s.repo.UpdateReceipt(ctx, receipt); err != nil {
		return "", fmt.Errorf("update receipt: %w", err)
	}

	return url, nil
}

// buildReceiptData flattens the sale into the renderer's view. Item
// descriptions are suffixed so pool lines read differently on paper.
func (s *Service) buildReceiptData(ctx context.Context, sale *Sale) (ReceiptData, error) {
	number, err := s.receiptNums.GetNextNumber(ctx, numerator.DefaultConfig("RCP"), nil, sale.SaleDate)
	if err != nil {
		return ReceiptData{}, fmt.Errorf("receipt number: %w", err)
	}

	customerName, customerPhone := "N/A", "N/A"
	if sale.CustomerID != nil {
		c, err := s.customers.GetByID(ctx, *sale.CustomerID)
		if err != nil && !apperror.IsNotFound(err) {
			return ReceiptData{}, err
		}
		if c != nil {
			customerName = c.Name
			if c.Phone != nil && *c.Phone != "" {
				customerPhone = *c.Phone
			}
		}
	}

	subtotal := types.Zero()
	items := make([]ReceiptLine, 0, len(sale.Items))
	for _, item := range sale.Items {
		p, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			return ReceiptData{}, err
		}

		description := p.Description
		if description == "" {
			description = p.Name
		}
		switch item.Type {
		case SaleTypeExpiring:
			description += " (EP)"
		case SaleTypeDamaged:
			description += " (DM)"
		}

		amount := item.UnitPrice.Mul(types.MoneyFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(amount)
		items = append(items, ReceiptLine{
			Description: description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      amount,
		})
	}

	return ReceiptData{
		ReceiptNumber: number,
		CashierName:   sale.StaffName,
		DateTime:      sale.SaleDate,
		CustomerName:  customerName,
		CustomerPhone: customerPhone,
		Items:         items,
		Subtotal:      types.RoundCents(subtotal),
		Discount:      sale.TotalDiscount,
		VAT:           sale.TotalVAT,
		GrandTotal:    types.RoundCents(subtotal.Add(sale.TotalVAT).Sub(sale.TotalDiscount)),
		Reference:     sale.Reference,
	}, nil
}

// Get returns one sale with its items.
func (s *Service) Get(ctx context.Context, saleID id.ID) (*Sale, error) {
	return s.repo.GetSale(ctx, saleID)
}

// List returns sales matching the filter, newest first.
func (s *Service) List(ctx context.Context, f Filter) ([]*Sale, error) {
	return s.repo.List(ctx, f)
}

// TodaysReceipts returns the latest receipts generated today.
func (s *Service) TodaysReceipts(ctx context.Context) ([]*Receipt, error) {
	return s.repo.ListReceiptsByDay(ctx, time.Now().UTC(), todaysReceiptsLimit)
}

// CashierSummary returns the current user's same-day sales summary.
func (s *Service) CashierSummary(ctx context.Context) (*CashierSummary, error) {
	return s.repo.CashierSummary(ctx, saleActor(ctx), time.Now().UTC())
}

func saleActor(ctx context.Context) string {
	if name := appcontext.GetUser(ctx).DisplayName(); name != "" {
		return name
	}
	return "Cashier"
}

func staleCartError(t SaleType) error {
	table := "Expiring"
	if t == SaleTypeDamaged {
		table = "Damaged"
	}
	return apperror.NewPoolUnavailable(
		fmt.Sprintf("Product no longer exists in the %s table. Please remove it from cart.", table))
}

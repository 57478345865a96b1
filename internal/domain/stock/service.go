package stock

import (
	"context"
	"fmt"
	"time"

	"swiftpos/internal/core/apperror"
	appcontext "swiftpos/internal/core/context"
	"swiftpos/internal/core/id"
	"swiftpos/internal/core/refgen"
	"swiftpos/internal/core/tx"
	"swiftpos/internal/domain"
	"swiftpos/internal/domain/catalogs/product"
	"swiftpos/internal/domain/writeoff"
	"swiftpos/pkg/logger"
)

// Service provides stock movements: intake, adjustments, batch lifecycle
// and FIFO batch draining for the sale workflow.
type Service struct {
	repo      Repository
	products  product.Repository
	writeOffs writeoff.Repository

	historyRefs  *refgen.Generator
	writeOffRefs *refgen.Generator

	txManager tx.Manager
}

// NewService creates a new stock service.
func NewService(
	repo Repository,
	products product.Repository,
	writeOffs writeoff.Repository,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:         repo,
		products:     products,
		writeOffs:    writeOffs,
		historyRefs:  refgen.New("StockHistory"),
		writeOffRefs: refgen.New("InventoryWriteOff"),
		txManager:    txManager,
	}
}

// RecordStockIn writes a Stock In audit entry for a product intake.
func (s *Service) RecordStockIn(ctx context.Context, productID id.ID, quantity int, note string) error {
	return s.RecordMovement(ctx, productID, ActionStockIn, quantity, note)
}

// RecordMovement writes one stock history entry with a generated reference
// and the acting user snapshotted from context.
func (s *Service) RecordMovement(ctx context.Context, productID id.ID, action Action, quantity int, notes string) error {
	if !IsValidAction(action) {
		return apperror.NewValidation("invalid stock action").
			WithDetail("field", "action").
			WithDetail("value", string(action))
	}

	ref, err := s.historyRefs.Next(ctx, s.repo.HistoryReferenceExists)
	if err != nil {
		return err
	}

	actionBy := ""
	if user := appcontext.GetUser(ctx); user != nil {
		actionBy = user.DisplayName()
	}

	h := &History{
		ID:        id.New(),
		Reference: ref,
		ProductID: productID,
		Action:    action,
		Quantity:  quantity,
		ActionBy:  actionBy,
		Notes:     notes,
		Date:      time.Now().UTC(),
	}

	if err := s.repo.CreateHistory(ctx, h); err != nil {
		return fmt.Errorf("create stock history: %w", err)
	}
	return nil
}

// Adjust applies a signed quantity change to a product, with the audit entry
// and, for reductions, a permanent write-off record. A reduction larger than
// the current stock is rejected.
func (s *Service) Adjust(ctx context.Context, productID id.ID, delta int, action Action, note string) error {
	if delta == 0 {
		return apperror.NewValidation("quantity must not be zero").
			WithDetail("field", "quantity")
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.products.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}

		if delta < 0 && p.Quantity < -delta {
			return apperror.NewValidation("Cannot reduce more than current stock.").
				WithDetail("available", p.Quantity).
				WithDetail("requested", -delta)
		}

		if err := s.products.SetQuantity(ctx, productID, p.Quantity+delta); err != nil {
			return fmt.Errorf("set product quantity: %w", err)
		}

		if err := s.RecordMovement(ctx, productID, action, delta, note); err != nil {
			return err
		}

		if delta < 0 {
			if err := s.recordWriteOff(ctx, p, -delta, action, note); err != nil {
				return err
			}
		}

		if p.Quantity+delta <= p.MinStockThreshold {
			logger.Warn(ctx, "product at or below minimum stock",
				"product_id", productID, "quantity", p.Quantity+delta, "threshold", p.MinStockThreshold)
		}

		return nil
	})
}

// recordWriteOff persists the permanent loss record for a stock reduction.
func (s *Service) recordWriteOff(ctx context.Context, p *product.Product, quantity int, action Action, note string) error {
	ref, err := s.writeOffRefs.Next(ctx, s.writeOffs.ReferenceExists)
	if err != nil {
		return err
	}

	description := p.Description
	if description == "" {
		description = p.Name
	}

	if note == "" {
		actor := ""
		if user := appcontext.GetUser(ctx); user != nil {
			actor = user.DisplayName()
		}
		note = fmt.Sprintf("%s recorded on %s by %s",
			reasonForAction(action), time.Now().UTC().Format("2006-01-02 15:04"), actor)
	}

	w := writeoff.New(p.ID, description, quantity, reasonForAction(action), p.UnitPrice)
	w.Reference = ref
	w.Note = note
	if user := appcontext.GetUser(ctx); user != nil {
		w.CreatedByName = user.DisplayName()
	}

	if err := w.Validate(ctx); err != nil {
		return err
	}
	if err := s.writeOffs.Create(ctx, w); err != nil {
		return fmt.Errorf("create write-off: %w", err)
	}
	return nil
}

// reasonForAction maps a stock action to a write-off reason.
func reasonForAction(action Action) writeoff.Reason {
	switch action {
	case ActionDamaged:
		return writeoff.ReasonDamaged
	case ActionReturned:
		return writeoff.ReasonReturned
	case ActionExpired:
		return writeoff.ReasonExpired
	case ActionLost:
		return writeoff.ReasonLost
	default:
		return writeoff.ReasonAdjustment
	}
}

// --- Batches ---

// CreateBatch registers a delivery batch.
func (s *Service) CreateBatch(ctx context.Context, b *Batch) error {
	if err := b.Validate(ctx); err != nil {
		return err
	}
	if user := appcontext.GetUser(ctx); user != nil {
		b.CreatedByName = user.DisplayName()
	}
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.CreateBatch(ctx, b)
	})
}

// UpdateBatch modifies a batch.
func (s *Service) UpdateBatch(ctx context.Context, b *Batch) error {
	if err := b.Validate(ctx); err != nil {
		return err
	}
	if user := appcontext.GetUser(ctx); user != nil {
		b.UpdatedByName = user.DisplayName()
	}
	b.Touch()
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.UpdateBatch(ctx, b)
	})
}

// GetBatch retrieves a batch by ID.
func (s *Service) GetBatch(ctx context.Context, batchID id.ID) (*Batch, error) {
	return s.repo.GetBatch(ctx, batchID)
}

// DeleteBatch removes a batch.
func (s *Service) DeleteBatch(ctx context.Context, batchID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.DeleteBatch(ctx, batchID)
	})
}

// ListBatches retrieves batches, newest first.
func (s *Service) ListBatches(ctx context.Context, limit, offset int) (domain.ListResult[*Batch], error) {
	return s.repo.ListBatches(ctx, limit, offset)
}

// ListHistory retrieves stock history, newest first.
func (s *Service) ListHistory(ctx context.Context, filter HistoryFilter) (domain.ListResult[*History], error) {
	return s.repo.ListHistory(ctx, filter)
}

// batchDraw is one planned deduction against a single batch.
type batchDraw struct {
	batchID  id.ID
	quantity int
	left     int
}

// planBatchDrain distributes a sold quantity over batches ordered soonest
// expiry first: the earliest-expiring batch is drained to zero before the
// next one is touched. Batches are never increased. If the batches cannot
// cover the full quantity the plan simply stops short, mirroring the
// advisory nature of batch totals.
func planBatchDrain(batches []*Batch, quantity int) []batchDraw {
	var plan []batchDraw
	remaining := quantity

	for _, b := range batches {
		if remaining <= 0 {
			break
		}
		if b.QuantityLeft <= 0 {
			continue
		}

		take := b.QuantityLeft
		if take > remaining {
			take = remaining
		}

		plan = append(plan, batchDraw{
			batchID:  b.ID,
			quantity: take,
			left:     b.QuantityLeft - take,
		})
		remaining -= take
	}

	return plan
}

// DrainFIFO deducts a sold quantity from the product's batches in ascending
// expiry order. Must run inside the caller's transaction: the batch rows are
// already locked by GetDrainableBatches.
func (s *Service) DrainFIFO(ctx context.Context, productID id.ID, quantity int) error {
	batches, err := s.repo.GetDrainableBatches(ctx, productID)
	if err != nil {
		return fmt.Errorf("get drainable batches: %w", err)
	}

	for _, draw := range planBatchDrain(batches, quantity) {
		if err := s.repo.SetBatchQuantity(ctx, draw.batchID, draw.left); err != nil {
			return fmt.Errorf("drain batch: %w", err)
		}
	}

	return nil
}

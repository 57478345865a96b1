package pool

import (
	"context"
	"fmt"
	"time"

	"swiftpos/internal/core/apperror"
	appcontext "swiftpos/internal/core/context"
	"swiftpos/internal/core/id"
	"swiftpos/internal/core/refgen"
	"swiftpos/internal/core/tx"
	"swiftpos/internal/core/types"
	"swiftpos/internal/domain/catalogs/product"
	"swiftpos/internal/domain/event"
	"swiftpos/pkg/logger"
)

// Service manages the expiring and damaged resale pools.
type Service struct {
	repo      Repository
	products  product.Repository
	events    event.Publisher
	txManager tx.Manager

	refs map[Kind]*refgen.Generator
}

// NewService creates a pool service.
func NewService(repo Repository, products product.Repository, events event.Publisher, txManager tx.Manager) *Service {
	if events == nil {
		events = event.Nop{}
	}
	return &Service{
		repo:      repo,
		products:  products,
		events:    events,
		txManager: txManager,
		refs: map[Kind]*refgen.Generator{
			KindExpiring: refgen.New(KindExpiring.RefPrefix()),
			KindDamaged:  refgen.New(KindDamaged.RefPrefix()),
		},
	}
}

// SlashInput is a request to move product units into a resale pool.
type SlashInput struct {
	ProductID   id.ID
	ResalePrice types.Money
	Quantity    int
	Note        string
}

// Slash records product units in the pool of the given kind at a reduced
// resale price. Entries aggregate per product code: a repeated slash grows
// the existing entry's quantity. For the damaged pool a repeated slash also
// replaces the resale price and note with the latest values.
func (s *Service) Slash(ctx context.Context, kind Kind, in SlashInput) (*Entry, error) {
	probe := &Entry{Kind: kind, ResalePrice: in.ResalePrice, Quantity: in.Quantity, Note: in.Note}
	if err := probe.Validate(ctx); err != nil {
		return nil, err
	}

	var result *Entry
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.products.GetByID(ctx, in.ProductID)
		if err != nil {
			return err
		}

		productKey := p.Code
		if productKey == "" {
			productKey = p.ID.String()
		}

		existing, err := s.repo.GetByProductCode(ctx, kind, productKey)
		if err != nil && !apperror.IsNotFound(err) {
			return err
		}

		actor := appcontext.GetUser(ctx).DisplayName()

		if existing != nil {
			existing.Quantity += in.Quantity
			if kind == KindDamaged {
				existing.ResalePrice = in.ResalePrice
				existing.Note = in.Note
			}
			existing.LastUpdatedName = actor
			now := time.Now().UTC()
			existing.UpdatedAt = &now
			existing.RecalcLoss()

			if err := s.repo.Update(ctx, existing); err != nil {
				return fmt.Errorf("update pool entry: %w", err)
			}
			result = existing
		} else {
			e := NewEntry(kind, p.ID, productKey, p.Name, p.PriceWithVAT())
			e.ResalePrice = in.ResalePrice
			e.Quantity = in.Quantity
			e.Note = in.Note
			e.StaffName = actor
			if p.Description != "" {
				e.Description = p.Description + kind.DescriptionSuffix()
			}

			ref, err := s.refs[kind].Next(ctx, s.repo.ReferenceExists)
			if err != nil {
				return err
			}
			e.Reference = ref
			e.RecalcLoss()

			if err := s.repo.Create(ctx, e); err != nil {
				return fmt.Errorf("create pool entry: %w", err)
			}
			result = e
		}

		return s.publishChanged(ctx, result, "slashed")
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "product slashed into pool",
		"kind", string(kind),
		"productCode", result.ProductCode,
		"quantity", result.Quantity)
	return result, nil
}

// Deduct takes quantity units off a locked pool entry. The caller must run
// it inside a transaction that already holds the row lock via GetForUpdate.
// Insufficient pool stock is a hard error: the sale cannot proceed.
func (s *Service) Deduct(ctx context.Context, entry *Entry, quantity int) error {
	if quantity > entry.Quantity {
		return poolShortError(entry, quantity)
	}

	entry.Quantity -= quantity
	if entry.Quantity == 0 {
		if err := s.repo.Delete(ctx, entry.ID); err != nil {
			return fmt.Errorf("delete drained pool entry: %w", err)
		}
		return s.publishChanged(ctx, entry, "sold out")
	}

	entry.RecalcLoss()
	now := time.Now().UTC()
	entry.UpdatedAt = &now
	if err := s.repo.Update(ctx, entry); err != nil {
		return fmt.Errorf("update pool entry: %w", err)
	}
	return s.publishChanged(ctx, entry, "deducted")
}

// Approve marks a pool entry as reviewed by a manager.
func (s *Service) Approve(ctx context.Context, entryID id.ID) (*Entry, error) {
	var e *Entry
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		e, err = s.repo.GetForUpdate(ctx, entryID)
		if err != nil {
			return err
		}
		if e.IsApproved {
			return nil
		}
		e.IsApproved = true
		e.LastUpdatedName = appcontext.GetUser(ctx).DisplayName()
		now := time.Now().UTC()
		e.UpdatedAt = &now
		return s.repo.Update(ctx, e)
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Get returns one pool entry.
func (s *Service) Get(ctx context.Context, entryID id.ID) (*Entry, error) {
	return s.repo.GetByID(ctx, entryID)
}

// List returns pool entries of one kind, newest first.
func (s *Service) List(ctx context.Context, f Filter) ([]*Entry, error) {
	return s.repo.List(ctx, f)
}

// TotalLoss sums the projected loss across live entries of one kind.
func (s *Service) TotalLoss(ctx context.Context, kind Kind) (types.Money, error) {
	return s.repo.TotalLoss(ctx, kind)
}

func (s *Service) publishChanged(ctx context.Context, e *Entry, change string) error {
	return s.events.Publish(ctx, event.Event{
		AggregateType: "PoolEntry",
		AggregateID:   e.ID,
		Type:          "PoolEntryChanged",
		Payload: map[string]any{
			"kind":        string(e.Kind),
			"reference":   e.Reference,
			"productCode": e.ProductCode,
			"quantity":    e.Quantity,
			"change":      change,
		},
	})
}

func poolShortError(e *Entry, requested int) error {
	table := "Expiring"
	if e.Kind == KindDamaged {
		table = "Damaged"
	}
	return apperror.NewPoolUnavailable(
		fmt.Sprintf("Product %s has only %d units available in the %s table. Reduce quantity in cart.",
			e.ProductName, e.Quantity, table)).
		WithDetail("requested", requested).
		WithDetail("available", e.Quantity)
}

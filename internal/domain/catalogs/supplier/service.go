package supplier

import (
	"context"
	"fmt"

	"swiftpos/internal/core/apperror"
	"swiftpos/internal/core/id"
	"swiftpos/internal/core/tx"
	"swiftpos/internal/core/types"
	"swiftpos/internal/domain"
	"swiftpos/pkg/logger"
)

// badge ranking keeps the top and bottom ten suppliers marked
const badgeRankLimit = 10

// Service provides business logic for the Supplier catalog.
type Service struct {
	*domain.CatalogService[*Supplier]
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new Supplier service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Supplier]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "supplier",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		txManager:      txManager,
	}

	base.Hooks().On(domain.BeforeCreate, svc.checkDuplicate)

	return svc
}

// checkDuplicate rejects a second supplier sharing a name, email, phone
// or account number with an existing one. Optional fields are only
// checked when set.
func (s *Service) checkDuplicate(ctx context.Context, sup *Supplier) error {
	checks := []struct {
		field  string
		value  string
		exists func(context.Context, string) (bool, error)
	}{
		{"name", sup.Name, s.repo.ExistsByName},
		{"email", strVal(sup.Email), s.repo.ExistsByEmail},
		{"phone", strVal(sup.Phone), s.repo.ExistsByPhone},
		{"account_number", strVal(sup.AccountNumber), s.repo.ExistsByAccountNumber},
	}

	for _, c := range checks {
		if c.value == "" {
			continue
		}
		exists, err := c.exists(ctx, c.value)
		if err != nil {
			return fmt.Errorf("check supplier %s: %w", c.field, err)
		}
		if exists {
			return apperror.NewDuplicate("supplier", c.field, c.value)
		}
	}
	return nil
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// RecordSupply accumulates a delivery into the (supplier, product) supply
// record, creating it on first delivery. Runs in the caller's transaction
// when one is active.
func (s *Service) RecordSupply(ctx context.Context, supplierID, productID id.ID, quantity int, unitPrice types.Money) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		supply, err := s.repo.GetSupply(ctx, supplierID, productID)
		if err != nil {
			if !apperror.IsNotFound(err) {
				return fmt.Errorf("get supply: %w", err)
			}
			return s.repo.CreateSupply(ctx, NewSupply(supplierID, productID, quantity, unitPrice))
		}

		supply.AddDelivery(quantity, unitPrice)
		return s.repo.UpdateSupply(ctx, supply)
	})
}

// ListSupplies retrieves all supply records for a supplier.
func (s *Service) ListSupplies(ctx context.Context, supplierID id.ID) ([]*Supply, error) {
	return s.repo.ListSupplies(ctx, supplierID)
}

// UpdateBadges recomputes supplier badges from supply volume.
// Top ten suppliers by quantity become Top, bottom ten Low, the rest Normal.
func (s *Service) UpdateBadges(ctx context.Context) error {
	ranked, err := s.repo.RankBySupplyVolume(ctx)
	if err != nil {
		return fmt.Errorf("rank suppliers: %w", err)
	}

	total := len(ranked)
	if total == 0 {
		return nil
	}

	for i, row := range ranked {
		rank := i + 1
		var badge Badge
		switch {
		case rank <= badgeRankLimit:
			badge = BadgeTop
		case rank > total-badgeRankLimit:
			badge = BadgeLow
		default:
			badge = BadgeNormal
		}

		if err := s.repo.SetBadge(ctx, row.SupplierID, badge); err != nil {
			logger.Warn(ctx, "set supplier badge failed", "supplier_id", row.SupplierID, "error", err)
		}
	}

	return nil
}

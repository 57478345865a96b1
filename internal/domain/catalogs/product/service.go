package product

import (
	"context"
	"fmt"
	"time"

	"swiftpos/internal/core/apperror"
	appcontext "swiftpos/internal/core/context"
	"swiftpos/internal/core/id"
	"swiftpos/internal/core/tx"
	"swiftpos/internal/core/types"
	"swiftpos/internal/domain"
	"swiftpos/internal/domain/catalogs/unit"
)

// StockRecorder writes stock audit entries for product intake.
// Implemented by the stock service.
type StockRecorder interface {
	RecordStockIn(ctx context.Context, productID id.ID, quantity int, note string) error
}

// SupplyRecorder accumulates supplier deliveries.
// Implemented by the supplier service.
type SupplyRecorder interface {
	RecordSupply(ctx context.Context, supplierID, productID id.ID, quantity int, unitPrice types.Money) error
}

// Service provides business logic for the Product catalog.
type Service struct {
	*domain.CatalogService[*Product]
	repo      Repository
	units     unit.Repository
	stock     StockRecorder
	supplies  SupplyRecorder
	txManager tx.Manager
}

// NewService creates a new Product service.
func NewService(
	repo Repository,
	units unit.Repository,
	stock StockRecorder,
	supplies SupplyRecorder,
	txManager tx.Manager,
) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Product]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "product",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		units:          units,
		stock:          stock,
		supplies:       supplies,
		txManager:      txManager,
	}

	base.Hooks().On(domain.BeforeCreate, svc.normalize)
	base.Hooks().On(domain.BeforeUpdate, svc.normalize)

	return svc
}

// normalize fills derived product fields before persisting.
func (s *Service) normalize(ctx context.Context, p *Product) error {
	unitName := ""
	if !id.IsNil(p.UnitID) {
		u, err := s.units.GetByID(ctx, p.UnitID)
		if err != nil {
			return apperror.NewValidation("unit not found").
				WithDetail("unitId", p.UnitID.String())
		}
		unitName = u.Name
	}
	p.Normalize(unitName)
	return nil
}

// IntakeInput carries the optional intake context for CreateOrRestock.
type IntakeInput struct {
	// SupplierID links the delivery to a supplier when known
	SupplierID *id.ID

	// Note overrides the auto-generated stock history note
	Note string
}

// CreateOrRestock creates a product, or restocks an existing one when the
// code is already known. Either way a Stock In audit entry is written and,
// when a supplier is named, the delivery is accumulated into its supply
// record. Everything runs in one transaction.
func (s *Service) CreateOrRestock(ctx context.Context, p *Product, in IntakeInput) (created bool, err error) {
	if err := p.Validate(ctx); err != nil {
		return false, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, getErr := s.repo.GetByCode(ctx, p.Code)
		if getErr != nil && !apperror.IsNotFound(getErr) {
			return fmt.Errorf("get product by code: %w", getErr)
		}

		intakeQty := p.Quantity

		if getErr == nil {
			// Restock path: carry over identity, replace the rest
			created = false
			p.ID = existing.ID
			p.CreatedAt = existing.CreatedAt
			p.CreatedByName = existing.CreatedByName
			if user := appcontext.GetUser(ctx); user != nil {
				p.UpdatedByName = user.DisplayName()
			}
			p.Touch()

			if err := s.normalize(ctx, p); err != nil {
				return err
			}
			if err := s.repo.Update(ctx, p); err != nil {
				return fmt.Errorf("update product: %w", err)
			}
		} else {
			created = true
			if user := appcontext.GetUser(ctx); user != nil {
				p.CreatedByName = user.DisplayName()
			}

			if err := s.normalize(ctx, p); err != nil {
				return err
			}
			if err := s.repo.Create(ctx, p); err != nil {
				return fmt.Errorf("create product: %w", err)
			}
		}

		note := in.Note
		if note == "" {
			if created {
				note = fmt.Sprintf("Initial stock added on %s", time.Now().UTC().Format("2006-01-02"))
			} else {
				note = fmt.Sprintf("Stock updated on %s", time.Now().UTC().Format("2006-01-02"))
			}
		}
		if err := s.stock.RecordStockIn(ctx, p.ID, p.Quantity, note); err != nil {
			return fmt.Errorf("record stock in: %w", err)
		}

		if in.SupplierID != nil && !id.IsNil(*in.SupplierID) {
			if err := s.supplies.RecordSupply(ctx, *in.SupplierID, p.ID, intakeQty, p.UnitBuyingPrice); err != nil {
				return fmt.Errorf("record supply: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return false, err
	}

	return created, nil
}

// GetByCode retrieves a product by its unique code.
func (s *Service) GetByCode(ctx context.Context, code string) (*Product, error) {
	p, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("product", code)
		}
		return nil, err
	}
	return p, nil
}

// FindLowStock retrieves products at or below their minimum threshold.
func (s *Service) FindLowStock(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Product], error) {
	return s.repo.FindLowStock(ctx, filter)
}

// ListByCategory retrieves products in a category.
func (s *Service) ListByCategory(ctx context.Context, categoryID id.ID, filter domain.ListFilter) (domain.ListResult[*Product], error) {
	return s.repo.ListByCategory(ctx, categoryID, filter)
}

package supplier

import (
	"context"

	"swiftpos/internal/core/id"
	"swiftpos/internal/domain"
)

// SupplyVolume aggregates a supplier's total supplied quantity and amount.
// Used for badge ranking.
type SupplyVolume struct {
	SupplierID  id.ID `db:"supplier_id"`
	TotalQty    int64 `db:"total_qty"`
	TotalAmount int64 `db:"total_amount"`
}

// Repository defines the interface for Supplier persistence.
type Repository interface {
	domain.CatalogRepository[*Supplier]

	// ExistsByEmail, ExistsByPhone and ExistsByAccountNumber back the
	// per-field duplicate checks on supplier creation.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	ExistsByAccountNumber(ctx context.Context, accountNumber string) (bool, error)

	// GetSupply retrieves the supply record for a (supplier, product) pair,
	// or a not-found error if the supplier has never delivered the product.
	GetSupply(ctx context.Context, supplierID, productID id.ID) (*Supply, error)

	// CreateSupply inserts a new supply record.
	CreateSupply(ctx context.Context, supply *Supply) error

	// UpdateSupply modifies an existing supply record.
	UpdateSupply(ctx context.Context, supply *Supply) error

	// ListSupplies retrieves all supply records for a supplier, newest first.
	ListSupplies(ctx context.Context, supplierID id.ID) ([]*Supply, error)

	// RankBySupplyVolume returns all suppliers ordered by total supplied
	// quantity, then amount, descending. Suppliers with no supplies rank last.
	RankBySupplyVolume(ctx context.Context) ([]SupplyVolume, error)

	// SetBadge updates only the badge column.
	SetBadge(ctx context.Context, supplierID id.ID, badge Badge) error
}

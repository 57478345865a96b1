// Package product provides the product catalog, the central entity of the
// inventory: every sale line, batch, pool entry and write-off points back
// to a Product.
package product

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"swiftpos/internal/core/apperror"
	"swiftpos/internal/core/entity"
	"swiftpos/internal/core/id"
	"swiftpos/internal/core/types"
)

// Status marks whether a product is still sold.
type Status string

const (
	StatusActive       Status = "active"
	StatusDiscontinued Status = "discontinue"
)

// Product represents a catalog item with a single running quantity.
type Product struct {
	entity.Catalog

	// Code is the unique product code (SKU)
	Code string `db:"code" json:"code"`

	Description string `db:"description" json:"description,omitempty"`

	CategoryID *id.ID `db:"category_id" json:"categoryId,omitempty"`
	UnitID     id.ID  `db:"unit_id" json:"unitId"`

	// Quantity is the running stock level in base units
	Quantity          int `db:"quantity" json:"quantity"`
	MinStockThreshold int `db:"min_stock_threshold" json:"minStockThreshold"`

	UnitBuyingPrice  types.Money      `db:"unit_buying_price" json:"unitBuyingPrice"`
	MarkupPercentage *decimal.Decimal `db:"markup_percentage" json:"markupPercentage,omitempty"`
	UnitPrice        types.Money      `db:"unit_price" json:"unitPrice"`

	// Discount is the per-unit discount amount, applied only when the sold
	// quantity reaches DiscountQuantity
	Discount           types.Money      `db:"discount" json:"discount"`
	DiscountPercentage *decimal.Decimal `db:"discount_percentage" json:"discountPercentage,omitempty"`
	DiscountQuantity   int              `db:"discount_quantity" json:"discountQuantity"`

	MeasurementValue *decimal.Decimal `db:"measurement_value" json:"measurementValue,omitempty"`
	MeasurementUnit  string           `db:"measurement_unit" json:"measurementUnit,omitempty"`

	ExpiryDate             *time.Time `db:"expiry_date" json:"expiryDate,omitempty"`
	ExpiryMinThresholdDays *int       `db:"expiry_min_threshold_days" json:"expiryMinThresholdDays,omitempty"`

	Status Status `db:"status" json:"status"`

	ApplyVAT bool        `db:"apply_vat" json:"applyVat"`
	VATValue types.Money `db:"vat_value" json:"vatValue"`

	ImageURL *string `db:"image_url" json:"imageUrl,omitempty"`

	CreatedByName string `db:"created_by_name" json:"createdByName,omitempty"`
	UpdatedByName string `db:"updated_by_name" json:"updatedByName,omitempty"`
}

// PriceWithVAT returns the selling price with the per-unit VAT amount
// added when VAT applies to this product.
func (p *Product) PriceWithVAT() types.Money {
	if p.ApplyVAT {
		return p.UnitPrice.Add(p.VATValue)
	}
	return p.UnitPrice
}

// New creates a new Product with required fields.
func New(code, name string, unitID id.ID) *Product {
	return &Product{
		Catalog:  entity.NewCatalog(name),
		Code:     code,
		UnitID:   unitID,
		Status:   StatusActive,
		Discount: types.Zero(),
		VATValue: types.Zero(),
	}
}

// Validate implements entity.Validatable.
func (p *Product) Validate(ctx context.Context) error {
	if p.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if p.Code == "" {
		return apperror.NewValidation("product code is required").
			WithDetail("field", "code")
	}
	if p.Quantity < 0 {
		return apperror.NewValidation("quantity cannot be negative").
			WithDetail("field", "quantity")
	}
	if p.UnitBuyingPrice.IsNegative() || p.UnitPrice.IsNegative() {
		return apperror.NewValidation("prices cannot be negative").
			WithDetail("field", "unitPrice")
	}
	if p.ApplyVAT && p.VATValue.IsZero() {
		return apperror.NewValidation("VAT value is required when VAT is applied").
			WithDetail("field", "vatValue")
	}
	if p.Status != StatusActive && p.Status != StatusDiscontinued {
		return apperror.NewValidation("invalid status").
			WithDetail("field", "status").
			WithDetail("value", string(p.Status))
	}
	return nil
}

// Normalize fills derived fields before persisting:
// auto-generated description, markup percentage and discount percentage.
// unitName is the display name of the product's unit of measure.
func (p *Product) Normalize(unitName string) {
	if !p.ApplyVAT {
		p.VATValue = types.Zero()
	}

	if p.Description == "" && p.MeasurementValue != nil && p.MeasurementUnit != "" && unitName != "" {
		p.Description = fmt.Sprintf("%s %s%s %s", p.Name, p.MeasurementValue.String(), p.MeasurementUnit, unitName)
	}

	if p.MarkupPercentage == nil && p.UnitBuyingPrice.IsPositive() && p.UnitPrice.IsPositive() {
		markup := p.UnitPrice.Sub(p.UnitBuyingPrice).
			Div(p.UnitBuyingPrice).
			Mul(decimal.NewFromInt(100)).
			Round(2)
		p.MarkupPercentage = &markup
	}

	if p.Discount.IsPositive() && p.UnitPrice.IsPositive() {
		pct := p.Discount.Div(p.UnitPrice).Mul(decimal.NewFromInt(100)).Round(2)
		p.DiscountPercentage = &pct
	}
}

// UnitDiscountFor returns the per-unit discount for a sold quantity.
// The discount applies only when a threshold quantity is configured and met.
func (p *Product) UnitDiscountFor(quantity int) types.Money {
	if p.DiscountQuantity > 0 && quantity >= p.DiscountQuantity {
		return p.Discount
	}
	return types.Zero()
}

// IsLowStock reports whether the running quantity fell to the minimum threshold.
func (p *Product) IsLowStock() bool {
	return p.Quantity <= p.MinStockThreshold
}

package sales

import (
	"context"
	"fmt"

	"swiftpos/internal/core/apperror"
	"swiftpos/internal/core/id"
	"swiftpos/internal/core/types"
)

// uuidLen is the length of a canonical UUID string inside a cart key.
const uuidLen = 36

// Selector resolves a cart line to its source pool: the product row for an
// ordinary sale, or the pool entry row for a damaged/expiring sale. It is
// built once when the cart enters the workflow and carried downstream so the
// raw cart key is never re-parsed.
type Selector struct {
	Type SaleType

	// TargetID is a product ID for ordinary lines and a pool entry ID for
	// damaged/expiring lines.
	TargetID id.ID
}

// ParseChecker extracts the target ID from a cart key. Keys have the form
// "<uuid>-<display suffix>"; only the leading UUID matters.
func ParseChecker(checker string, saleType SaleType) (Selector, error) {
	if !saleType.IsValid() {
		return Selector{}, apperror.NewValidation("Invalid sale type").
			WithDetail("field", "sale_type").
			WithDetail("value", string(saleType))
	}
	if len(checker) < uuidLen {
		return Selector{}, apperror.NewValidation("Invalid key format").
			WithDetail("field", "checker")
	}
	target, err := id.Parse(checker[:uuidLen])
	if err != nil {
		return Selector{}, apperror.NewValidation("Invalid key format").
			WithDetail("field", "checker")
	}
	return Selector{Type: saleType, TargetID: target}, nil
}

// CartLine is one line of an inbound cart. Monetary fields are the caller's
// pre-computed figures and are trusted at commit.
type CartLine struct {
	Checker       string      `json:"checker"`
	SaleType      SaleType    `json:"saleType"`
	Quantity      int         `json:"quantity"`
	UnitPrice     types.Money `json:"unitPrice"`
	VATValue      types.Money `json:"vatValue"`
	DiscountValue types.Money `json:"discountValue"`
	Amount        types.Money `json:"amount"`
}

// CartSubmission is a complete cart ready to commit.
type CartSubmission struct {
	CustomerID    *id.ID      `json:"customerId,omitempty"`
	Payment       PaymentType `json:"paymentType"`
	GrandTotal    types.Money `json:"grandTotal"`
	TotalVAT      types.Money `json:"totalVat"`
	TotalDiscount types.Money `json:"totalDiscount"`
	Lines         []CartLine  `json:"items"`
}

// Validate rejects malformed carts before any transaction opens.
func (c *CartSubmission) Validate(ctx context.Context) error {
	if !c.Payment.IsValid() {
		return apperror.NewValidation("invalid payment type").
			WithDetail("field", "payment_type").
			WithDetail("value", string(c.Payment))
	}
	if len(c.Lines) == 0 {
		return apperror.NewValidation("cart has no items").
			WithDetail("field", "items")
	}
	for i, line := range c.Lines {
		if line.Quantity < 1 {
			return apperror.NewValidation(fmt.Sprintf("item %d: quantity must be at least 1", i)).
				WithDetail("field", "quantity")
		}
		if !line.SaleType.IsValid() {
			return apperror.NewValidation(fmt.Sprintf("item %d: invalid sale type", i)).
				WithDetail("field", "sale_type").
				WithDetail("value", string(line.SaleType))
		}
	}
	return nil
}

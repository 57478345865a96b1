package sales

import (
	"context"
	"fmt"

	"swiftpos/internal/core/apperror"
	"swiftpos/internal/core/types"
)

// PreviewRequestLine is one cart key the frontend wants priced.
type PreviewRequestLine struct {
	Checker  string   `json:"checker"`
	SaleType SaleType `json:"saleType"`
	Quantity int      `json:"quantity"`
}

// PreviewLine is one priced line of a cart preview. Message carries the
// advisory text when the line was adjusted or could not be priced.
type PreviewLine struct {
	Checker       string      `json:"checker"`
	SaleType      SaleType    `json:"saleType"`
	Quantity      int         `json:"quantity"`
	UnitPrice     types.Money `json:"unitPrice"`
	Amount        types.Money `json:"amount"`
	VATValue      types.Money `json:"vatValue"`
	DiscountValue types.Money `json:"discountValue"`
	Message       string      `json:"message,omitempty"`
}

// PreviewTotals aggregates the priced lines.
type PreviewTotals struct {
	SubTotal      types.Money `json:"subTotal"`
	TotalVAT      types.Money `json:"totalVat"`
	TotalDiscount types.Money `json:"totalDiscount"`
	GrandTotal    types.Money `json:"grandTotal"`
}

// PreviewResult is the recomputed cart.
type PreviewResult struct {
	Items  []PreviewLine `json:"validatedItems"`
	Totals PreviewTotals `json:"totals"`
}

// Preview reprices a cart against current stock without touching anything.
// Pool quantities are silently clamped to availability with an advisory
// message; a pool line clamped to zero drops out of the result. The preview
// never rejects: the commit remains the authority on availability.
func (s *Service) Preview(ctx context.Context, lines []PreviewRequestLine) (*PreviewResult, error) {
	result := &PreviewResult{
		Items: make([]PreviewLine, 0, len(lines)),
		Totals: PreviewTotals{
			SubTotal:      types.Zero(),
			TotalVAT:      types.Zero(),
			TotalDiscount: types.Zero(),
			GrandTotal:    types.Zero(),
		},
	}

	for _, req := range lines {
		sel, err := ParseChecker(req.Checker, req.SaleType)
		if err != nil {
			result.Items = append(result.Items, PreviewLine{
				Checker:       req.Checker,
				SaleType:      req.SaleType,
				UnitPrice:     types.Zero(),
				Amount:        types.Zero(),
				VATValue:      types.Zero(),
				DiscountValue: types.Zero(),
				Message:       "Invalid key format",
			})
			continue
		}

		line, include, err := s.previewLine(ctx, req, sel)
		if err != nil {
			return nil, err
		}
		if !include {
			continue
		}

		result.Totals.SubTotal = result.Totals.SubTotal.Add(line.Amount)
		result.Totals.TotalVAT = result.Totals.TotalVAT.Add(line.VATValue)
		result.Totals.TotalDiscount = result.Totals.TotalDiscount.Add(line.DiscountValue)
		result.Items = append(result.Items, line)
	}

	result.Totals.GrandTotal = result.Totals.SubTotal.
		Add(result.Totals.TotalVAT).
		Sub(result.Totals.TotalDiscount)
	return result, nil
}

// previewLine prices one line. The second return value is false when the
// line should be dropped entirely (a pool line clamped to zero).
func (s *Service) previewLine(ctx context.Context, req PreviewRequestLine, sel Selector) (PreviewLine, bool, error) {
	line := PreviewLine{
		Checker:       req.Checker,
		SaleType:      req.SaleType,
		Quantity:      req.Quantity,
		UnitPrice:     types.Zero(),
		Amount:        types.Zero(),
		VATValue:      types.Zero(),
		DiscountValue: types.Zero(),
	}
	qty := req.Quantity

	switch sel.Type {
	case SaleTypeOrdinary:
		p, err := s.products.GetByID(ctx, sel.TargetID)
		if err != nil {
			if apperror.IsNotFound(err) {
				line.Message = "Product not found"
				return line, true, nil
			}
			return line, false, err
		}

		line.UnitPrice = p.UnitPrice
		line.DiscountValue = p.UnitDiscountFor(qty).Mul(types.MoneyFromInt(int64(qty)))
		if p.ApplyVAT {
			line.VATValue = p.VATValue.Mul(types.MoneyFromInt(int64(qty)))
		}
		line.Amount = p.UnitPrice.Mul(types.MoneyFromInt(int64(qty)))

	case SaleTypeDamaged, SaleTypeExpiring:
		entry, err := s.pools.GetByID(ctx, sel.TargetID)
		if err != nil {
			if apperror.IsNotFound(err) {
				if sel.Type == SaleTypeDamaged {
					line.Message = "Damaged product not found"
				} else {
					line.Message = "Expiring product not found"
				}
				return line, true, nil
			}
			return line, false, err
		}

		if qty > entry.Quantity {
			qty = entry.Quantity
			line.Quantity = qty
			line.Message = fmt.Sprintf("Quantity adjusted to available stock (%d)", entry.Quantity)
		}
		if qty == 0 {
			return line, false, nil
		}

		line.UnitPrice = entry.ResalePrice
		line.Amount = entry.ResalePrice.Mul(types.MoneyFromInt(int64(qty)))
	}

	return line, true, nil
}

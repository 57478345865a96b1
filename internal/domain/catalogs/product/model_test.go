package product

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swiftpos/internal/core/id"
	"swiftpos/internal/core/types"
)

func TestNormalize_AutoDescription(t *testing.T) {
	p := New("SKU-100", "Cooking Oil", id.New())
	mv := decimal.NewFromInt(5)
	p.MeasurementValue = &mv
	p.MeasurementUnit = "L"

	p.Normalize("Bottle")

	assert.Equal(t, "Cooking Oil 5L Bottle", p.Description)
}

func TestNormalize_KeepsExplicitDescription(t *testing.T) {
	p := New("SKU-100", "Cooking Oil", id.New())
	p.Description = "hand written"
	mv := decimal.NewFromInt(5)
	p.MeasurementValue = &mv
	p.MeasurementUnit = "L"

	p.Normalize("Bottle")

	assert.Equal(t, "hand written", p.Description)
}

func TestNormalize_Markup(t *testing.T) {
	p := New("SKU-101", "Sugar", id.New())
	p.UnitBuyingPrice = types.MustMoney("80")
	p.UnitPrice = types.MustMoney("100")

	p.Normalize("")

	require.NotNil(t, p.MarkupPercentage)
	assert.True(t, p.MarkupPercentage.Equal(decimal.NewFromInt(25)),
		"expected 25, got %s", p.MarkupPercentage)
}

func TestNormalize_DiscountPercentage(t *testing.T) {
	p := New("SKU-102", "Rice", id.New())
	p.UnitPrice = types.MustMoney("200")
	p.Discount = types.MustMoney("10")

	p.Normalize("")

	require.NotNil(t, p.DiscountPercentage)
	assert.True(t, p.DiscountPercentage.Equal(decimal.NewFromInt(5)),
		"expected 5, got %s", p.DiscountPercentage)
}

func TestNormalize_ClearsVATWhenNotApplied(t *testing.T) {
	p := New("SKU-103", "Bread", id.New())
	p.ApplyVAT = false
	p.VATValue = types.MustMoney("16")

	p.Normalize("")

	assert.True(t, p.VATValue.IsZero())
}

func TestValidate_VATRequiredWhenApplied(t *testing.T) {
	p := New("SKU-104", "Milk", id.New())
	p.UnitPrice = types.MustMoney("50")
	p.ApplyVAT = true

	err := p.Validate(context.Background())
	require.Error(t, err)

	p.VATValue = types.MustMoney("16")
	assert.NoError(t, p.Validate(context.Background()))
}

func TestUnitDiscountFor(t *testing.T) {
	p := New("SKU-105", "Flour", id.New())
	p.Discount = types.MustMoney("7.50")
	p.DiscountQuantity = 12

	assert.True(t, p.UnitDiscountFor(11).IsZero())
	assert.True(t, p.UnitDiscountFor(12).Equal(types.MustMoney("7.50")))
	assert.True(t, p.UnitDiscountFor(40).Equal(types.MustMoney("7.50")))

	// no threshold configured means no discount at any quantity
	p.DiscountQuantity = 0
	assert.True(t, p.UnitDiscountFor(100).IsZero())
}

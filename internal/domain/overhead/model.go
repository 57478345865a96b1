// Package overhead tracks business running costs: one-off capital spend and
// recurring costs amortized over a duration in months. Recurring shares feed
// the dashboard's net profit figures.
package overhead

import (
	"context"
	"fmt"
	"strings"
	"time"

	"swiftpos/internal/core/apperror"
	"swiftpos/internal/core/id"
	"swiftpos/internal/core/types"
)

// Type splits overheads into one-off and amortized.
type Type string

const (
	TypeCapital   Type = "capital"
	TypeRecurring Type = "recurring"
)

// Category buckets overhead spend.
type Category string

const (
	CategorySalaries  Category = "salaries"
	CategoryRent      Category = "rent"
	CategoryInsurance Category = "insurance"
	CategoryUtilities Category = "utilities"
	CategoryEquipment Category = "equipment"
	CategoryRepair    Category = "repair"
	CategoryLicense   Category = "license"
	CategoryMarketing Category = "marketing"
	CategoryOthers    Category = "others"
)

var recurringCategories = map[Category]bool{
	CategorySalaries:  true,
	CategoryRent:      true,
	CategoryInsurance: true,
	CategoryUtilities: true,
	CategoryOthers:    true,
}

var capitalCategories = map[Category]bool{
	CategoryEquipment: true,
	CategoryRepair:    true,
	CategoryLicense:   true,
	CategoryMarketing: true,
	CategoryOthers:    true,
}

var categoryDisplay = map[Category]string{
	CategorySalaries:  "Salaries & Wages",
	CategoryRent:      "Office/Shop Rent",
	CategoryInsurance: "Insurance",
	CategoryUtilities: "Utilities (Electricity, Water, etc.)",
	CategoryEquipment: "Equipment Purchase",
	CategoryRepair:    "Repair or Maintenance",
	CategoryLicense:   "Annual Licence Renewal",
	CategoryMarketing: "Marketing Campaign",
	CategoryOthers:    "Others",
}

// Overhead is one recorded cost. Recurring overheads carry a duration of
// 1 to 12 months over which the amount is spread evenly.
type Overhead struct {
	ID          id.ID       `db:"id" json:"id"`
	Type        Type        `db:"overhead_type" json:"overheadType"`
	Category    Category    `db:"category" json:"category"`
	Description string      `db:"description" json:"description,omitempty"`
	Duration    *int        `db:"duration" json:"duration,omitempty"`
	Amount      types.Money `db:"amount" json:"amount"`

	CreatedByName string    `db:"created_by_name" json:"createdByName,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

// New creates an overhead record.
func New(t Type, category Category, amount types.Money) *Overhead {
	return &Overhead{
		ID:        id.New(),
		Type:      t,
		Category:  category,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	}
}

// Validate enforces the type/category pairing rules.
func (o *Overhead) Validate(ctx context.Context) error {
	switch o.Type {
	case TypeCapital:
		if !capitalCategories[o.Category] {
			return apperror.NewValidation("Invalid category for capital overhead.").
				WithDetail("field", "category")
		}
	case TypeRecurring:
		if !recurringCategories[o.Category] {
			return apperror.NewValidation("Invalid category for recurring overhead.").
				WithDetail("field", "category")
		}
		if o.Duration == nil || *o.Duration < 1 || *o.Duration > 12 {
			return apperror.NewValidation("Duration is required for recurring overhead.").
				WithDetail("field", "duration")
		}
	default:
		return apperror.NewValidation("invalid overhead type").
			WithDetail("field", "overhead_type").
			WithDetail("value", string(o.Type))
	}

	if o.Category == CategoryOthers && strings.TrimSpace(o.Description) == "" {
		return apperror.NewValidation("Description is required when 'others' is selected.").
			WithDetail("field", "description")
	}
	if o.Amount.LessThanOrEqual(types.Zero()) {
		return apperror.NewValidation("Amount is required.").
			WithDetail("field", "amount")
	}
	return nil
}

// TypeDisplay is the human wording, truncated at the first slash.
func (o *Overhead) TypeDisplay() string {
	if o.Type == TypeCapital {
		return "Capital"
	}
	return "Recurring"
}

// CategoryDisplay is the human wording, truncated at the first slash.
func (o *Overhead) CategoryDisplay() string {
	display, ok := categoryDisplay[o.Category]
	if !ok {
		display = string(o.Category)
	}
	if idx := strings.Index(display, "/"); idx >= 0 {
		display = display[:idx]
	}
	return display
}

// FillDescription generates the description when the caller left it blank
// and the category is specific enough to describe itself.
func (o *Overhead) FillDescription() {
	if o.Description != "" || o.Category == CategoryOthers {
		return
	}
	if o.CreatedByName != "" {
		o.Description = fmt.Sprintf("%s overhead for %s payment, recorded by %s",
			o.TypeDisplay(), o.CategoryDisplay(), o.CreatedByName)
		return
	}
	o.Description = fmt.Sprintf("%s for %s payment", o.TypeDisplay(), o.CategoryDisplay())
}

// MonthlyShare is the even slice of a recurring overhead's amount.
func (o *Overhead) MonthlyShare() types.Money {
	duration := 1
	if o.Duration != nil && *o.Duration > 0 {
		duration = *o.Duration
	}
	return o.Amount.Div(types.MoneyFromInt(int64(duration)))
}

// AmortizedFor returns the share this overhead contributes to the given
// month, zero when the month falls outside its amortization window. The
// window starts in the creation month and runs for the duration.
func (o *Overhead) AmortizedFor(year int, month time.Month) types.Money {
	duration := 1
	if o.Duration != nil && *o.Duration > 0 {
		duration = *o.Duration
	}

	startYear, startMonth := o.CreatedAt.Year(), int(o.CreatedAt.Month())
	for i := 0; i < duration; i++ {
		y := startYear + (startMonth-1+i)/12
		m := (startMonth-1+i)%12 + 1
		if y == year && m == int(month) {
			return o.MonthlyShare()
		}
	}
	return types.Zero()
}

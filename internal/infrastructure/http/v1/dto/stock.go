package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockAdjustRequest moves stock out of a product with an audited action.
type StockAdjustRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
	Action    string `json:"action" binding:"required"`
	Note      string `json:"note"`
}

// BatchRequest creates or updates a delivery batch.
type BatchRequest struct {
	ProductID              string     `json:"productId" binding:"required"`
	BatchNumber            string     `json:"batchNumber" binding:"required"`
	QuantityLeft           int        `json:"quantityLeft"`
	ExpiryDate             *time.Time `json:"expiryDate"`
	ExpiryMinThresholdDays *int       `json:"expiryMinThresholdDays"`
}

// PoolSlashRequest moves product units into a resale pool at a cut price.
type PoolSlashRequest struct {
	ProductID   string          `json:"productId" binding:"required"`
	ResalePrice decimal.Decimal `json:"resalePrice"`
	Quantity    int             `json:"quantity" binding:"required"`
	Note        string          `json:"note"`
}

// OverheadRequest records a business expense.
type OverheadRequest struct {
	Type        string          `json:"overheadType" binding:"required"`
	Category    string          `json:"category" binding:"required"`
	Description string          `json:"description"`
	Duration    *int            `json:"duration"`
	Amount      decimal.Decimal `json:"amount"`
}

package handlers

import (
	"github.com/gin-gonic/gin"

	"swiftpos/internal/domain/stock"
	"swiftpos/internal/infrastructure/http/v1/dto"
)

// StockHandler serves the movement audit trail and delivery batches.
type StockHandler struct {
	*BaseHandler
	service *stock.Service
}

// NewStockHandler creates the stock handler.
func NewStockHandler(base *BaseHandler, service *stock.Service) *StockHandler {
	return &StockHandler{BaseHandler: base, service: service}
}

// Adjust handles POST /stock/adjust. A negative quantity reduces stock and
// writes the matching write-off; positive quantities record an intake.
func (h *StockHandler) Adjust(c *gin.Context) {
	var req dto.StockAdjustRequest
	if !h.BindJSON(c, &req) {
		return
	}

	productID, err := parseIDField(req.ProductID, "productId")
	if err != nil {
		h.Error(c, err)
		return
	}

	action := stock.Action(req.Action)
	if err := h.service.Adjust(c.Request.Context(), productID, req.Quantity, action, req.Note); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "stock adjusted")
}

// ListHistory handles GET /stock/history.
func (h *StockHandler) ListHistory(c *gin.Context) {
	filter := stock.HistoryFilter{
		Search: c.Query("search"),
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if productParam := c.Query("productId"); productParam != "" {
		productID, err := parseIDField(productParam, "productId")
		if err != nil {
			h.Error(c, err)
			return
		}
		filter.ProductID = &productID
	}
	if actionParam := c.Query("action"); actionParam != "" {
		action := stock.Action(actionParam)
		filter.Action = &action
	}

	result, err := h.service.ListHistory(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// CreateBatch handles POST /stock/batches.
func (h *StockHandler) CreateBatch(c *gin.Context) {
	var req dto.BatchRequest
	if !h.BindJSON(c, &req) {
		return
	}

	b, err := h.batchFromRequest(req)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.CreateBatch(c.Request.Context(), b); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, b.ID.String())
}

// GetBatch handles GET /stock/batches/:id.
func (h *StockHandler) GetBatch(c *gin.Context) {
	batchID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	b, err := h.service.GetBatch(c.Request.Context(), batchID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, b)
}

// UpdateBatch handles PUT /stock/batches/:id.
func (h *StockHandler) UpdateBatch(c *gin.Context) {
	batchID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.BatchRequest
	if !h.BindJSON(c, &req) {
		return
	}

	b, err := h.service.GetBatch(c.Request.Context(), batchID)
	if err != nil {
		h.Error(c, err)
		return
	}

	productID, err := parseIDField(req.ProductID, "productId")
	if err != nil {
		h.Error(c, err)
		return
	}
	b.ProductID = productID
	b.BatchNumber = req.BatchNumber
	b.QuantityLeft = req.QuantityLeft
	b.ExpiryDate = req.ExpiryDate
	b.ExpiryMinThresholdDays = req.ExpiryMinThresholdDays

	if err := h.service.UpdateBatch(c.Request.Context(), b); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, b)
}

// DeleteBatch handles DELETE /stock/batches/:id.
func (h *StockHandler) DeleteBatch(c *gin.Context) {
	batchID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteBatch(c.Request.Context(), batchID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// ListBatches handles GET /stock/batches.
func (h *StockHandler) ListBatches(c *gin.Context) {
	limit := h.ParseIntQuery(c, "limit", 50)
	offset := h.ParseIntQuery(c, "offset", 0)

	result, err := h.service.ListBatches(c.Request.Context(), limit, offset)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

func (h *StockHandler) batchFromRequest(req dto.BatchRequest) (*stock.Batch, error) {
	productID, err := parseIDField(req.ProductID, "productId")
	if err != nil {
		return nil, err
	}

	b := stock.NewBatch(productID, req.BatchNumber, req.QuantityLeft)
	b.ExpiryDate = req.ExpiryDate
	b.ExpiryMinThresholdDays = req.ExpiryMinThresholdDays
	return b, nil
}

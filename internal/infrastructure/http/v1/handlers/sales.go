package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"swiftpos/internal/domain/sales"
	"swiftpos/internal/infrastructure/http/v1/dto"
)

// SalesHandler serves cart preview, sale commit and receipts.
type SalesHandler struct {
	*BaseHandler
	service *sales.Service
}

// NewSalesHandler creates the sales handler.
func NewSalesHandler(base *BaseHandler, service *sales.Service) *SalesHandler {
	return &SalesHandler{BaseHandler: base, service: service}
}

// Preview handles POST /sales/preview - reprice a cart against current
// stock without committing anything.
func (h *SalesHandler) Preview(c *gin.Context) {
	var req struct {
		Items []sales.PreviewRequestLine `json:"items" binding:"required"`
	}
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Preview(c.Request.Context(), req.Items)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// Commit handles POST /sales - atomically persist the sale, its items,
// the receipt and every stock side effect.
func (h *SalesHandler) Commit(c *gin.Context) {
	var cart sales.CartSubmission
	if !h.BindJSON(c, &cart) {
		return
	}

	result, err := h.service.Commit(c.Request.Context(), &cart)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// Get handles GET /sales/:id.
func (h *SalesHandler) Get(c *gin.Context) {
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	sale, err := h.service.Get(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, sale)
}

// List handles GET /sales.
func (h *SalesHandler) List(c *gin.Context) {
	filter := sales.Filter{
		StaffName: c.Query("staffName"),
		Limit:     h.ParseIntQuery(c, "limit", 50),
		Offset:    h.ParseIntQuery(c, "offset", 0),
	}

	if customerParam := c.Query("customerId"); customerParam != "" {
		customerID, err := parseIDField(customerParam, "customerId")
		if err != nil {
			h.Error(c, err)
			return
		}
		filter.CustomerID = &customerID
	}
	if from, ok := parseTimeQuery(c, "from"); ok {
		filter.From = from
	}
	if to, ok := parseTimeQuery(c, "to"); ok {
		filter.To = to
	}

	items, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: int64(len(items)),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// TodaysReceipts handles GET /sales/receipts/today.
func (h *SalesHandler) TodaysReceipts(c *gin.Context) {
	receipts, err := h.service.TodaysReceipts(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, receipts)
}

// CashierSummary handles GET /sales/summary - the signed-in cashier's
// totals for today.
func (h *SalesHandler) CashierSummary(c *gin.Context) {
	summary, err := h.service.CashierSummary(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, summary)
}

// parseTimeQuery reads an RFC 3339 or date-only query parameter.
func parseTimeQuery(c *gin.Context, key string) (*time.Time, bool) {
	val := c.Query(key)
	if val == "" {
		return nil, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, val); err == nil {
			return &t, true
		}
	}
	return nil, false
}

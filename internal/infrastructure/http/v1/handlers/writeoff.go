package handlers

import (
	"github.com/gin-gonic/gin"

	"swiftpos/internal/domain/writeoff"
)

// WriteOffHandler serves the permanent loss ledger.
type WriteOffHandler struct {
	*BaseHandler
	service *writeoff.Service
}

// NewWriteOffHandler creates the write-off handler.
func NewWriteOffHandler(base *BaseHandler, service *writeoff.Service) *WriteOffHandler {
	return &WriteOffHandler{BaseHandler: base, service: service}
}

func (h *WriteOffHandler) filterFromQuery(c *gin.Context) (writeoff.Filter, bool) {
	filter := writeoff.Filter{
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if productParam := c.Query("productId"); productParam != "" {
		productID, err := parseIDField(productParam, "productId")
		if err != nil {
			h.Error(c, err)
			return filter, false
		}
		filter.ProductID = &productID
	}
	if reasonParam := c.Query("reason"); reasonParam != "" {
		reason := writeoff.Reason(reasonParam)
		filter.Reason = &reason
	}
	if from, ok := parseTimeQuery(c, "from"); ok {
		filter.From = from
	}
	if to, ok := parseTimeQuery(c, "to"); ok {
		filter.To = to
	}
	return filter, true
}

// List handles GET /write-offs with the running loss total.
func (h *WriteOffHandler) List(c *gin.Context) {
	filter, ok := h.filterFromQuery(c)
	if !ok {
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	totalLoss, err := h.service.TotalLoss(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{
		"items":      result.Items,
		"totalCount": result.TotalCount,
		"limit":      result.Limit,
		"offset":     result.Offset,
		"totalLoss":  totalLoss,
	})
}

// Get handles GET /write-offs/:id.
func (h *WriteOffHandler) Get(c *gin.Context) {
	writeOffID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	w, err := h.service.Get(c.Request.Context(), writeOffID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, w)
}

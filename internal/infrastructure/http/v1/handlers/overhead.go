package handlers

import (
	"github.com/gin-gonic/gin"

	"swiftpos/internal/domain/overhead"
	"swiftpos/internal/infrastructure/http/v1/dto"
)

// OverheadHandler serves business expense records and their totals.
type OverheadHandler struct {
	*BaseHandler
	service *overhead.Service
}

// NewOverheadHandler creates the overhead handler.
func NewOverheadHandler(base *BaseHandler, service *overhead.Service) *OverheadHandler {
	return &OverheadHandler{BaseHandler: base, service: service}
}

// Create handles POST /overheads.
func (h *OverheadHandler) Create(c *gin.Context) {
	var req dto.OverheadRequest
	if !h.BindJSON(c, &req) {
		return
	}

	o := overhead.New(overhead.Type(req.Type), overhead.Category(req.Category), req.Amount)
	o.Description = req.Description
	o.Duration = req.Duration

	if err := h.service.Create(c.Request.Context(), o); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, o.ID.String())
}

// Update handles PUT /overheads/:id.
func (h *OverheadHandler) Update(c *gin.Context) {
	overheadID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.OverheadRequest
	if !h.BindJSON(c, &req) {
		return
	}

	o, err := h.service.Get(c.Request.Context(), overheadID)
	if err != nil {
		h.Error(c, err)
		return
	}

	o.Type = overhead.Type(req.Type)
	o.Category = overhead.Category(req.Category)
	o.Description = req.Description
	o.Duration = req.Duration
	o.Amount = req.Amount

	if err := h.service.Update(c.Request.Context(), o); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, o)
}

// Get handles GET /overheads/:id.
func (h *OverheadHandler) Get(c *gin.Context) {
	overheadID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	o, err := h.service.Get(c.Request.Context(), overheadID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, o)
}

// List handles GET /overheads.
func (h *OverheadHandler) List(c *gin.Context) {
	filter := overhead.Filter{
		Type:     overhead.Type(c.Query("overheadType")),
		Category: overhead.Category(c.Query("category")),
		Search:   c.Query("search"),
		Limit:    h.ParseIntQuery(c, "limit", 50),
		Offset:   h.ParseIntQuery(c, "offset", 0),
	}
	if from, ok := parseTimeQuery(c, "from"); ok {
		filter.From = from
	}
	if to, ok := parseTimeQuery(c, "to"); ok {
		filter.To = to
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// Totals handles GET /overheads/totals - capital and recurring rollups.
func (h *OverheadHandler) Totals(c *gin.Context) {
	totals, err := h.service.CalculateTotals(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, totals)
}

package handlers

import (
	"github.com/gin-gonic/gin"

	"swiftpos/internal/core/apperror"
	"swiftpos/internal/domain/pool"
	"swiftpos/internal/infrastructure/http/v1/dto"
)

// PoolHandler serves the expiring and damaged resale pools. The pool kind
// comes from the route so one handler covers both.
type PoolHandler struct {
	*BaseHandler
	service *pool.Service
}

// NewPoolHandler creates the pool handler.
func NewPoolHandler(base *BaseHandler, service *pool.Service) *PoolHandler {
	return &PoolHandler{BaseHandler: base, service: service}
}

func poolKind(c *gin.Context) (pool.Kind, error) {
	kind := pool.Kind(c.Param("kind"))
	if kind != pool.KindExpiring && kind != pool.KindDamaged {
		return "", apperror.NewValidation("unknown pool kind").
			WithDetail("kind", c.Param("kind"))
	}
	return kind, nil
}

// Slash handles POST /pools/:kind - move product units into the pool.
func (h *PoolHandler) Slash(c *gin.Context) {
	kind, err := poolKind(c)
	if err != nil {
		h.Error(c, err)
		return
	}

	var req dto.PoolSlashRequest
	if !h.BindJSON(c, &req) {
		return
	}

	productID, err := parseIDField(req.ProductID, "productId")
	if err != nil {
		h.Error(c, err)
		return
	}

	entry, err := h.service.Slash(c.Request.Context(), kind, pool.SlashInput{
		ProductID:   productID,
		ResalePrice: req.ResalePrice,
		Quantity:    req.Quantity,
		Note:        req.Note,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, entry)
}

// List handles GET /pools/:kind.
func (h *PoolHandler) List(c *gin.Context) {
	kind, err := poolKind(c)
	if err != nil {
		h.Error(c, err)
		return
	}

	filter := pool.Filter{
		Kind:   kind,
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

	entries, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	totalLoss, err := h.service.TotalLoss(c.Request.Context(), kind)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{
		"items":     entries,
		"totalLoss": totalLoss,
	})
}

// Get handles GET /pools/:kind/:id.
func (h *PoolHandler) Get(c *gin.Context) {
	entryID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	entry, err := h.service.Get(c.Request.Context(), entryID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, entry)
}

// Approve handles POST /pools/:kind/:id/approve - manager sign-off that
// releases the entry for sale.
func (h *PoolHandler) Approve(c *gin.Context) {
	entryID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	entry, err := h.service.Approve(c.Request.Context(), entryID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, entry)
}

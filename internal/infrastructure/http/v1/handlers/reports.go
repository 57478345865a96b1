package handlers

import (
	"github.com/gin-gonic/gin"

	"swiftpos/internal/domain/reports"
)

// ReportsHandler serves the two manager dashboards: daily sales and
// inventory health.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{BaseHandler: base, service: service}
}

// Dashboard handles GET /reports/dashboard.
func (h *ReportsHandler) Dashboard(c *gin.Context) {
	summary, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, summary)
}

// Inventory handles GET /reports/inventory.
func (h *ReportsHandler) Inventory(c *gin.Context) {
	dashboard, err := h.service.Inventory(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dashboard)
}

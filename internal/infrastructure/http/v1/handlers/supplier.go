package handlers

import (
	"github.com/gin-gonic/gin"

	"swiftpos/internal/core/types"
	"swiftpos/internal/domain/catalogs/supplier"
	"swiftpos/internal/infrastructure/http/v1/dto"
)

// SupplierHandler serves supplier CRUD plus the supply history.
type SupplierHandler struct {
	*CatalogHandler[*supplier.Supplier, dto.SupplierRequest, dto.SupplierRequest]
	service *supplier.Service
}

// NewSupplierHandler creates the supplier handler.
func NewSupplierHandler(base *BaseHandler, service *supplier.Service) *SupplierHandler {
	crud := NewCatalogHandler(base, CatalogHandlerConfig[*supplier.Supplier, dto.SupplierRequest, dto.SupplierRequest]{
		Service:    service.CatalogService,
		EntityName: "supplier",
		MapCreateDTO: func(req dto.SupplierRequest) *supplier.Supplier {
			s := supplier.New(req.Name)
			applySupplierRequest(s, req)
			return s
		},
		MapUpdateDTO: func(req dto.SupplierRequest, existing *supplier.Supplier) *supplier.Supplier {
			existing.Name = req.Name
			applySupplierRequest(existing, req)
			return existing
		},
	})
	return &SupplierHandler{CatalogHandler: crud, service: service}
}

func applySupplierRequest(s *supplier.Supplier, req dto.SupplierRequest) {
	s.Address = req.Address
	s.Phone = req.Phone
	s.Email = req.Email
	s.BankName = req.BankName
	s.AccountNumber = req.AccountNumber
	if req.Status != "" {
		s.Status = supplier.Status(req.Status)
	}
}

// ListSupplies handles GET /suppliers/:id/supplies.
func (h *SupplierHandler) ListSupplies(c *gin.Context) {
	supplierID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	supplies, err := h.service.ListSupplies(c.Request.Context(), supplierID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      supplies,
		TotalCount: int64(len(supplies)),
		Limit:      len(supplies),
	})
}

// RecordSupply handles POST /suppliers/:id/supplies.
func (h *SupplierHandler) RecordSupply(c *gin.Context) {
	supplierID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.RecordSupplyRequest
	if !h.BindJSON(c, &req) {
		return
	}

	productID, err := parseIDField(req.ProductID, "productId")
	if err != nil {
		h.Error(c, err)
		return
	}

	unitPrice := types.Money(req.UnitPrice)
	if err := h.service.RecordSupply(c.Request.Context(), supplierID, productID, req.Quantity, unitPrice); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "supply recorded")
}

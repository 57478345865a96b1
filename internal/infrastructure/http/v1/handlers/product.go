package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"swiftpos/internal/core/id"
	"swiftpos/internal/domain"
	"swiftpos/internal/domain/catalogs/product"
	"swiftpos/internal/infrastructure/http/v1/dto"
)

// ProductHandler serves the product catalog. Creation doubles as restock:
// posting a known code grows the existing product's stock instead of
// erroring on the duplicate.
type ProductHandler struct {
	*BaseHandler
	service *product.Service
}

// NewProductHandler creates the product handler.
func NewProductHandler(base *BaseHandler, service *product.Service) *ProductHandler {
	return &ProductHandler{BaseHandler: base, service: service}
}

// Intake handles POST /products - create or restock by code.
func (h *ProductHandler) Intake(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ProductIntakeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	unitID, err := parseIDField(req.UnitID, "unitId")
	if err != nil {
		h.Error(c, err)
		return
	}

	p := product.New(req.Code, req.Name, unitID)
	p.Description = req.Description
	p.Quantity = req.Quantity
	p.MinStockThreshold = req.MinStockThreshold
	p.UnitBuyingPrice = req.UnitBuyingPrice
	p.MarkupPercentage = req.MarkupPercentage
	p.UnitPrice = req.UnitPrice
	p.Discount = req.Discount
	p.DiscountPercentage = req.DiscountPercentage
	p.DiscountQuantity = req.DiscountQuantity
	p.MeasurementValue = req.MeasurementValue
	p.MeasurementUnit = req.MeasurementUnit
	p.ExpiryDate = req.ExpiryDate
	p.ExpiryMinThresholdDays = req.ExpiryMinThresholdDays
	p.ApplyVAT = req.ApplyVAT
	p.VATValue = req.VATValue
	p.ImageURL = req.ImageURL

	if req.CategoryID != nil {
		categoryID, err := parseIDField(*req.CategoryID, "categoryId")
		if err != nil {
			h.Error(c, err)
			return
		}
		p.CategoryID = &categoryID
	}

	in := product.IntakeInput{Note: req.Note}
	if req.SupplierID != nil {
		supplierID, err := parseIDField(*req.SupplierID, "supplierId")
		if err != nil {
			h.Error(c, err)
			return
		}
		in.SupplierID = &supplierID
	}

	created, err := h.service.CreateOrRestock(ctx, p, in)
	if err != nil {
		h.Error(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, p)
}

// Get handles GET /products/:id.
func (h *ProductHandler) Get(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// GetByCode handles GET /products/code/:code.
func (h *ProductHandler) GetByCode(c *gin.Context) {
	p, err := h.service.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// List handles GET /products. A categoryId query narrows to one category.
func (h *ProductHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter, ok := h.ParseListFilter(c)
	if !ok {
		return
	}

	var (
		result domain.ListResult[*product.Product]
		err    error
	)
	if categoryParam := c.Query("categoryId"); categoryParam != "" {
		var categoryID id.ID
		categoryID, err = parseIDField(categoryParam, "categoryId")
		if err != nil {
			h.Error(c, err)
			return
		}
		result, err = h.service.ListByCategory(ctx, categoryID, filter)
	} else {
		result, err = h.service.List(ctx, filter)
	}
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// LowStock handles GET /products/low-stock.
func (h *ProductHandler) LowStock(c *gin.Context) {
	filter, ok := h.ParseListFilter(c)
	if !ok {
		return
	}

	result, err := h.service.FindLowStock(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// Update handles PUT /products/:id.
func (h *ProductHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	existing, err := h.service.GetByID(ctx, productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	var req dto.ProductIntakeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	existing.Name = req.Name
	existing.Code = req.Code
	existing.Description = req.Description
	existing.MinStockThreshold = req.MinStockThreshold
	existing.UnitBuyingPrice = req.UnitBuyingPrice
	existing.MarkupPercentage = req.MarkupPercentage
	existing.UnitPrice = req.UnitPrice
	existing.Discount = req.Discount
	existing.DiscountPercentage = req.DiscountPercentage
	existing.DiscountQuantity = req.DiscountQuantity
	existing.MeasurementValue = req.MeasurementValue
	existing.MeasurementUnit = req.MeasurementUnit
	existing.ExpiryDate = req.ExpiryDate
	existing.ExpiryMinThresholdDays = req.ExpiryMinThresholdDays
	existing.ApplyVAT = req.ApplyVAT
	existing.VATValue = req.VATValue
	existing.ImageURL = req.ImageURL

	if req.CategoryID != nil {
		categoryID, err := parseIDField(*req.CategoryID, "categoryId")
		if err != nil {
			h.Error(c, err)
			return
		}
		existing.CategoryID = &categoryID
	} else {
		existing.CategoryID = nil
	}

	unitID, err := parseIDField(req.UnitID, "unitId")
	if err != nil {
		h.Error(c, err)
		return
	}
	existing.UnitID = unitID

	if err := h.service.Update(ctx, existing); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, existing)
}

// Delete handles DELETE /products/:id.
func (h *ProductHandler) Delete(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), productID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

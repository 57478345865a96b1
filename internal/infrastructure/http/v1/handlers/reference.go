package handlers

import (
	"swiftpos/internal/domain"
	"swiftpos/internal/domain/catalogs/category"
	"swiftpos/internal/domain/catalogs/unit"
	"swiftpos/internal/infrastructure/http/v1/dto"
)

// CategoryHTTPHandler serves product category CRUD.
type CategoryHTTPHandler = CatalogHandler[*category.Category, dto.NameRequest, dto.NameRequest]

// NewCategoryHandler creates the category handler.
func NewCategoryHandler(base *BaseHandler, service *domain.CatalogService[*category.Category]) *CategoryHTTPHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[*category.Category, dto.NameRequest, dto.NameRequest]{
		Service:    service,
		EntityName: "category",
		MapCreateDTO: func(req dto.NameRequest) *category.Category {
			return category.New(req.Name)
		},
		MapUpdateDTO: func(req dto.NameRequest, existing *category.Category) *category.Category {
			existing.Name = req.Name
			return existing
		},
	})
}

// UnitHTTPHandler serves unit-of-measure CRUD.
type UnitHTTPHandler = CatalogHandler[*unit.Unit, dto.NameRequest, dto.NameRequest]

// NewUnitHandler creates the unit handler.
func NewUnitHandler(base *BaseHandler, service *domain.CatalogService[*unit.Unit]) *UnitHTTPHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[*unit.Unit, dto.NameRequest, dto.NameRequest]{
		Service:    service,
		EntityName: "unit",
		MapCreateDTO: func(req dto.NameRequest) *unit.Unit {
			return unit.New(req.Name)
		},
		MapUpdateDTO: func(req dto.NameRequest, existing *unit.Unit) *unit.Unit {
			existing.Name = req.Name
			return existing
		},
	})
}

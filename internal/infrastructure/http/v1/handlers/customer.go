package handlers

import (
	"swiftpos/internal/domain/catalogs/customer"
	"swiftpos/internal/infrastructure/http/v1/dto"
)

// CustomerHTTPHandler serves customer CRUD.
type CustomerHTTPHandler = CatalogHandler[*customer.Customer, dto.CustomerRequest, dto.CustomerRequest]

// NewCustomerHandler creates the customer handler.
func NewCustomerHandler(base *BaseHandler, service *customer.Service) *CustomerHTTPHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[*customer.Customer, dto.CustomerRequest, dto.CustomerRequest]{
		Service:    service.CatalogService,
		EntityName: "customer",
		MapCreateDTO: func(req dto.CustomerRequest) *customer.Customer {
			c := customer.New(req.Name)
			c.Phone = req.Phone
			c.Email = req.Email
			c.Address = req.Address
			if req.Status != "" {
				c.Status = customer.Status(req.Status)
			}
			return c
		},
		MapUpdateDTO: func(req dto.CustomerRequest, existing *customer.Customer) *customer.Customer {
			existing.Name = req.Name
			existing.Phone = req.Phone
			existing.Email = req.Email
			existing.Address = req.Address
			if req.Status != "" {
				existing.Status = customer.Status(req.Status)
			}
			return existing
		},
	})
}

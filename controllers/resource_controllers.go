package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/box-erp-api/models"
	"github.com/kendall-kelly/box-erp-api/services"
)

// ResourceControllers holds the plain CRUD endpoints.
type ResourceControllers struct {
	Customers *CRUDController[models.Customer]
	Products  *CRUDController[models.Product]
	Molds     *CRUDController[models.ProductMold]
	Personnel *CRUDController[models.Personnel]
	Machines  *CRUDController[models.Machine]
	Shifts    *CRUDController[models.Shift]
	Roles     *CRUDController[models.Role]
	Users     *CRUDController[models.User]
	Messages  *CRUDController[models.Message]
	Plans     *CRUDController[models.MonthlyPlan]
	Stock     *StockController
}

// NewResourceControllers creates a controller per resource.
func NewResourceControllers(r *services.Resources, stock *services.StockService, respond *Responder) *ResourceControllers {
	return &ResourceControllers{
		Customers: NewCRUDController[models.Customer](r.Customers, respond),
		Products:  NewCRUDController[models.Product](r.Products, respond),
		Molds:     NewCRUDController[models.ProductMold](r.Molds, respond),
		Personnel: NewCRUDController[models.Personnel](r.Personnel, respond),
		Machines:  NewCRUDController[models.Machine](r.Machines, respond),
		Shifts:    NewCRUDController[models.Shift](r.Shifts, respond),
		Roles:     NewCRUDController[models.Role](r.Roles, respond),
		Users:     NewCRUDController[models.User](r.Users, respond),
		Messages:  NewCRUDController[models.Message](r.Messages, respond),
		Plans:     NewCRUDController[models.MonthlyPlan](r.Plans, respond),
		Stock:     NewStockController(r.Stock, stock, respond),
	}
}

// Register mounts every resource under api.
func (rc *ResourceControllers) Register(api gin.IRouter) {
	rc.Customers.Register(api.Group("/customers"))
	rc.Products.Register(api.Group("/products"))
	rc.Molds.Register(api.Group("/molds"))
	rc.Personnel.Register(api.Group("/personnel"))
	rc.Machines.Register(api.Group("/machines"))
	rc.Shifts.Register(api.Group("/shifts"))
	rc.Roles.Register(api.Group("/roles"))
	rc.Users.Register(api.Group("/users"))
	rc.Messages.Register(api.Group("/messages"))
	rc.Plans.Register(api.Group("/plans"))
	rc.Stock.Register(api.Group("/stock"))
}

package controllers

import (
	"github.com/kendall-kelly/box-erp-api/models"
	"github.com/kendall-kelly/box-erp-api/services"
)

// OrderController serves /api/orders. PATCH runs the order workflow.
type OrderController struct {
	*CRUDController[models.Order]
}

// NewOrderController creates an OrderController.
func NewOrderController(orders *services.OrderService, respond *Responder) *OrderController {
	return &OrderController{CRUDController: NewCRUDController[models.Order](orders, respond)}
}

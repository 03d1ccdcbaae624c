package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/box-erp-api/models"
	"github.com/kendall-kelly/box-erp-api/services"
)

// StockController serves the stock ledger and its per product summary.
type StockController struct {
	*CRUDController[models.StockItem]
	stock *services.StockService
}

// NewStockController creates a StockController.
func NewStockController(ledger *services.Resource[models.StockItem], stock *services.StockService, respond *Responder) *StockController {
	return &StockController{
		CRUDController: NewCRUDController[models.StockItem](ledger, respond),
		stock:          stock,
	}
}

// Register mounts the summary route next to the ledger routes.
func (h *StockController) Register(r gin.IRoutes) {
	r.GET("/summary", h.Summary)
	h.CRUDController.Register(r)
}

// Summary handles GET /api/stock/summary
func (h *StockController) Summary(c *gin.Context) {
	balances, err := h.stock.Summary(c.Request.Context())
	if err != nil {
		h.respond.Error(c, err)
		return
	}
	h.respond.OK(c, http.StatusOK, balances)
}

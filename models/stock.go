package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Stock movement types.
const (
	MovementIn       = "in"
	MovementOut      = "out"
	MovementShipment = "shipment"
)

// StockItem is one signed row of the finished-goods ledger.
type StockItem struct {
	Base
	StockNumber  string          `gorm:"not null;index" json:"stockNumber"`
	ProductID    string          `gorm:"index" json:"productId"`
	ProductName  string          `json:"productName"`
	Quantity     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity"`
	Unit         string          `gorm:"default:'adet'" json:"unit"`
	MovementType string          `gorm:"default:'in'" json:"movementType"`
	OrderID      string          `gorm:"index" json:"orderId"`
	Note         string          `json:"note"`
}

// TableName specifies the table name for the StockItem model
func (StockItem) TableName() string {
	return "stock_items"
}

// PlanEntry is one job placed on a day of a plan.
type PlanEntry struct {
	OrderID     string          `json:"orderId"`
	ProductName string          `json:"productName"`
	Quantity    decimal.Decimal `json:"quantity"`
	Shift       string          `json:"shift"`
}

// PlanGrid maps a day of the month ("1".."31") to its jobs.
type PlanGrid struct {
	Days map[string][]PlanEntry `json:"days"`
}

// MonthlyPlan is the production board of one machine for one month.
type MonthlyPlan struct {
	Base
	Year      int                          `gorm:"not null;index:idx_plan_period" json:"year"`
	Month     int                          `gorm:"not null;index:idx_plan_period" json:"month"`
	MachineID string                       `gorm:"index" json:"machineId"`
	Title     string                       `json:"title"`
	Grid      datatypes.JSONType[PlanGrid] `json:"grid"`
	Notes     string                       `gorm:"type:text" json:"notes"`
}

// TableName specifies the table name for the MonthlyPlan model
func (MonthlyPlan) TableName() string {
	return "monthly_plans"
}

package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Dimensions are the outer measurements of a box.
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Unit   string  `json:"unit"`
}

// ProductFeatures describe how a box is manufactured.
type ProductFeatures struct {
	Material    string `json:"material"`
	Flute       string `json:"flute"`
	Color       string `json:"color"`
	PrintColors int    `json:"printColors"`
	Gofre       bool   `json:"gofre"`
	Lamination  string `json:"lamination"`
	Windowed    bool   `json:"windowed"`
}

// Product is a box specification, usually made for one customer.
type Product struct {
	Base
	Code         string                              `gorm:"index" json:"code"`
	Name         string                              `gorm:"not null" json:"name"`
	CustomerID   string                              `gorm:"index" json:"customerId"`
	CustomerName string                              `json:"customerName"`
	BoxType      string                              `json:"boxType"`
	Dimensions   datatypes.JSONType[Dimensions]      `json:"dimensions"`
	Features     datatypes.JSONType[ProductFeatures] `json:"features"`
	Images       datatypes.JSONSlice[string]         `json:"images"`
	UnitPrice    decimal.Decimal                     `gorm:"type:decimal(20,4)" json:"unitPrice"`
	Currency     string                              `gorm:"default:'TRY'" json:"currency"`
	Notes        string                              `gorm:"type:text" json:"notes"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// ProductMold is a dimension preset offered when creating products.
type ProductMold struct {
	Base
	BoxType string  `gorm:"not null;uniqueIndex:idx_mold_key" json:"boxType"`
	Shape   string  `gorm:"not null;uniqueIndex:idx_mold_key" json:"shape"`
	Length  float64 `gorm:"uniqueIndex:idx_mold_key" json:"length"`
	Width   float64 `gorm:"uniqueIndex:idx_mold_key" json:"width"`
	Height  float64 `gorm:"uniqueIndex:idx_mold_key" json:"height"`
	Unit    string  `gorm:"default:'mm'" json:"unit"`
	Name    string  `json:"name"`
	Notes   string  `json:"notes"`
}

// TableName specifies the table name for the ProductMold model
func (ProductMold) TableName() string {
	return "product_molds"
}

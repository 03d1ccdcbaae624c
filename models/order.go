package models

import (
	"github.com/kendall-kelly/box-erp-api/workflow"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// LineItem is one product line of an order.
type LineItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	VatRate     decimal.Decimal `json:"vatRate"`
	Total       decimal.Decimal `json:"total"`
}

// LineItems is the JSON column holding an order's lines.
type LineItems = datatypes.JSONSlice[LineItem]

// StockUsage records raw material consumed by an order.
type StockUsage struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
}

// Order is a sales order moving through the department workflow.
type Order struct {
	Base
	CustomerID       string                          `gorm:"index" json:"customerId"`
	CustomerName     string                          `json:"customerName"`
	Currency         string                          `gorm:"default:'TRY'" json:"currency"`
	Items            LineItems                       `json:"items"`
	Subtotal         decimal.Decimal                 `gorm:"type:decimal(20,4)" json:"subtotal"`
	VatTotal         decimal.Decimal                 `gorm:"type:decimal(20,4)" json:"vatTotal"`
	GrandTotal       decimal.Decimal                 `gorm:"type:decimal(20,4)" json:"grandTotal"`
	Status           workflow.Status                 `gorm:"type:varchar(40);not null;default:'created';index" json:"status"`
	AssignedUserID   string                          `gorm:"index" json:"assignedUserId"`
	AssignedRoleName string                          `json:"assignedRoleName"`
	DeliveryDate     string                          `json:"deliveryDate"`
	InvoiceNumber    string                          `json:"invoiceNumber"`
	Notes            string                          `gorm:"type:text" json:"notes"`
	Procurement      datatypes.JSONMap               `json:"procurement"`
	Production       datatypes.JSONMap               `json:"production"`
	DesignImages     datatypes.JSONSlice[string]     `json:"designImages"`
	StockUsage       datatypes.JSONSlice[StockUsage] `json:"stockUsage"`
	OrderPhase
}

// OrderPhase holds the commercial terms added after the first schema version.
type OrderPhase struct {
	PaymentMethod   string          `json:"paymentMethod"`
	MaturityDays    int             `json:"maturityDays"`
	Prepayment      decimal.Decimal `gorm:"type:decimal(20,4)" json:"prepayment"`
	GofrePrice      decimal.Decimal `gorm:"type:decimal(20,4)" json:"gofrePrice"`
	GofreVatRate    decimal.Decimal `gorm:"type:decimal(20,4)" json:"gofreVatRate"`
	ShippingPrice   decimal.Decimal `gorm:"type:decimal(20,4)" json:"shippingPrice"`
	ShippingVatRate decimal.Decimal `gorm:"type:decimal(20,4)" json:"shippingVatRate"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// Snapshot returns the fields the workflow engine plans against.
func (o *Order) Snapshot() workflow.Snapshot {
	return workflow.Snapshot{
		OrderID:          o.ID,
		CustomerName:     o.CustomerName,
		Status:           o.Status,
		AssignedUserID:   o.AssignedUserID,
		AssignedRoleName: o.AssignedRoleName,
	}
}

var hundred = decimal.NewFromInt(100)

// LineTotal is quantity times unit price, before VAT.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.Quantity.Mul(li.UnitPrice).Round(2)
}

// VAT is the tax owed on the line.
func (li LineItem) VAT() decimal.Decimal {
	return li.LineTotal().Mul(li.VatRate).Div(hundred).Round(2)
}

// ComputeLineTotals fills Total on every item.
func (o *Order) ComputeLineTotals() {
	for i := range o.Items {
		o.Items[i].Total = o.Items[i].LineTotal()
	}
}

// ComputeTotals derives subtotal, VAT and grand total from items and add-on charges.
func (o *Order) ComputeTotals() {
	subtotal := decimal.Zero
	vat := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.LineTotal())
		vat = vat.Add(item.VAT())
	}

	for _, charge := range []struct{ price, rate decimal.Decimal }{
		{o.GofrePrice, o.GofreVatRate},
		{o.ShippingPrice, o.ShippingVatRate},
	} {
		subtotal = subtotal.Add(charge.price)
		vat = vat.Add(charge.price.Mul(charge.rate).Div(hundred).Round(2))
	}

	o.Subtotal = subtotal
	o.VatTotal = vat
	o.GrandTotal = subtotal.Add(vat)
}

// DuplicateProductID returns the first product id that appears on more than one line.
func (o *Order) DuplicateProductID() (string, bool) {
	seen := make(map[string]struct{}, len(o.Items))
	for _, item := range o.Items {
		if _, ok := seen[item.ProductID]; ok {
			return item.ProductID, true
		}
		seen[item.ProductID] = struct{}{}
	}
	return "", false
}

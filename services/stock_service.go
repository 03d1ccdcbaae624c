package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kendall-kelly/box-erp-api/models"
)

// StockBalance is the net ledger quantity of one product.
type StockBalance struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    decimal.Decimal `json:"quantity"`
	Movements   int64           `json:"movements"`
}

// StockService aggregates the stock ledger.
type StockService struct {
	db *gorm.DB
}

// NewStockService creates a StockService.
func NewStockService(db *gorm.DB) *StockService {
	return &StockService{db: db}
}

// Summary returns the net quantity per product, ordered by product name.
// Quantities are added as decimals; SQLite keeps them as REAL and SUM would drift.
func (s *StockService) Summary(ctx context.Context) ([]StockBalance, error) {
	var rows []models.StockItem
	err := s.db.WithContext(ctx).
		Select("product_id", "product_name", "quantity").
		Order("product_id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to summarize stock: %w", err)
	}

	balances := []StockBalance{}
	index := make(map[string]int)
	for _, row := range rows {
		i, ok := index[row.ProductID]
		if !ok {
			i = len(balances)
			index[row.ProductID] = i
			balances = append(balances, StockBalance{ProductID: row.ProductID, Quantity: decimal.Zero})
		}
		b := &balances[i]
		b.Quantity = b.Quantity.Add(row.Quantity)
		b.Movements++
		if row.ProductName > b.ProductName {
			b.ProductName = row.ProductName
		}
	}

	sort.SliceStable(balances, func(i, j int) bool {
		return balances[i].ProductName < balances[j].ProductName
	})
	return balances, nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	// Amounts are sent to the UI as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Base holds the identity and timestamps shared by every entity.
type Base struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a random id when the client did not supply one.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = NewID()
	}
	return nil
}

// NewID returns a new opaque identifier.
func NewID() string {
	return uuid.NewString()
}

// All returns every persisted model, in migration order.
func All() []any {
	return []any{
		&Customer{},
		&Product{},
		&ProductMold{},
		&Order{},
		&Personnel{},
		&Machine{},
		&Shift{},
		&Role{},
		&User{},
		&Message{},
		&Notification{},
		&StockItem{},
		&MonthlyPlan{},
		&Setting{},
		&ErrorLog{},
	}
}

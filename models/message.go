package models

import (
	"time"

	"gorm.io/datatypes"
)

// Message is a direct message between two users, optionally about an order.
type Message struct {
	Base
	SenderID   string `gorm:"not null;index" json:"senderId"`
	ReceiverID string `gorm:"index" json:"receiverId"`
	Subject    string `json:"subject"`
	Content    string `gorm:"type:text;not null" json:"content"`
	OrderID    string `gorm:"index" json:"orderId"`
	IsRead     bool   `gorm:"not null;default:false" json:"isRead"`
}

// TableName specifies the table name for the Message model
func (Message) TableName() string {
	return "messages"
}

// Notification is addressed to a single user or broadcast to a role.
type Notification struct {
	Base
	UserID         string `gorm:"index" json:"userId"`
	RoleID         string `gorm:"index" json:"roleId"`
	Title          string `gorm:"not null" json:"title"`
	Message        string `gorm:"type:text" json:"message"`
	Type           string `json:"type"`
	RelatedOrderID string `gorm:"index" json:"relatedOrderId"`
	IsRead         bool   `gorm:"not null;default:false" json:"isRead"`
}

// TableName specifies the table name for the Notification model
func (Notification) TableName() string {
	return "notifications"
}

// ErrorLog is a server or client error kept for support.
type ErrorLog struct {
	Base
	Source  string            `gorm:"index" json:"source"`
	Message string            `gorm:"type:text" json:"message"`
	Stack   string            `gorm:"type:text" json:"stack"`
	Context datatypes.JSONMap `json:"context"`
}

// TableName specifies the table name for the ErrorLog model
func (ErrorLog) TableName() string {
	return "error_logs"
}

// Setting is a key/value preference.
type Setting struct {
	Key       string    `gorm:"primaryKey;type:varchar(128)" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for the Setting model
func (Setting) TableName() string {
	return "settings"
}

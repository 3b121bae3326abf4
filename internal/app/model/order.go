package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string // checkout lifecycle

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Order is the snapshot of a cart taken at checkout. No payment is captured.
type Order struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	UserID    *uint           `gorm:"index" json:"user_id,omitempty"` // nil for guest checkout
	SessionID string          `gorm:"type:varchar(64);index" json:"session_id"`
	Email     string          `gorm:"not null" json:"email"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	Discount  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount"`
	PromoCode string          `gorm:"type:varchar(50)" json:"promo_code,omitempty"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	Status    OrderStatus     `gorm:"type:varchar(20);default:'pending'" json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	User       *User       `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"user,omitempty"`
	OrderItems []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	OrderID   uint            `gorm:"not null;index" json:"order_id"`
	ProductID string          `gorm:"type:varchar(64);not null" json:"product_id"` // cart product id, not a foreign key
	Name      string          `gorm:"not null" json:"name"`
	Size      string          `gorm:"type:varchar(4);not null" json:"size"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	CreatedAt time.Time       `json:"created_at"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

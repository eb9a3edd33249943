package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ethanhollis/cartwright-backend/pkg/enums"
)

// Order captures the cart totals frozen at checkout.
type Order struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	Status       enums.OrderStatus `gorm:"column:status;not null;default:'pending'"`
	Subtotal     decimal.Decimal   `gorm:"column:subtotal;type:numeric(12,2);not null"`
	ShippingCost decimal.Decimal   `gorm:"column:shipping_cost;type:numeric(12,2);not null"`
	Tax          decimal.Decimal   `gorm:"column:tax;type:numeric(12,2);not null"`
	Total        decimal.Decimal   `gorm:"column:total;type:numeric(12,2);not null"`
	ItemCount    int               `gorm:"column:item_count;not null"`
	LineItems    []OrderLineItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderLineItem is one product line on an order. SKU and name are denormalized
// so the line survives product deletion.
type OrderLineItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	SKU            string    `gorm:"column:sku;not null"`
	ProductName    string    `gorm:"column:product_name;not null"`
	Quantity       int       `gorm:"column:quantity;not null"`
	UnitPriceCents int       `gorm:"column:unit_price_cents;not null;default:0"`
	TotalCents     int       `gorm:"column:total_cents;not null;default:0"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// ShipmentItem is one product line on an inbound shipment.
type ShipmentItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ShipmentID     uuid.UUID `gorm:"column:shipment_id;type:uuid;not null;index"`
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	SKU            string    `gorm:"column:sku;not null"`
	ProductName    string    `gorm:"column:product_name;not null"`
	Quantity       int       `gorm:"column:quantity;not null"`
	UnitCostCents  int       `gorm:"column:unit_cost_cents;not null;default:0"`
	TotalCostCents int       `gorm:"column:total_cost_cents;not null;default:0"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}

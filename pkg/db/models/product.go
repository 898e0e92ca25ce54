package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/uncoverhq/ops-backend/pkg/enums"
)

// Product is the canonical inventory unit. Stock, reserved, available, and
// status are owned by the inventory ledger; available and status are derived
// and must only ever be written through the ledger's recompute path.
type Product struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SKU            string            `gorm:"column:sku;not null;uniqueIndex"`
	Name           string            `gorm:"column:name;not null"`
	Category       string            `gorm:"column:category;not null"`
	PriceUSDCents  int               `gorm:"column:price_usd_cents;not null;default:0"`
	PriceKESCents  int               `gorm:"column:price_kes_cents;not null;default:0"`
	PriceNGNCents  int               `gorm:"column:price_ngn_cents;not null;default:0"`
	CostCents      int               `gorm:"column:cost_cents;not null;default:0"`
	Stock          int               `gorm:"column:stock;not null;default:0"`
	ReservedStock  int               `gorm:"column:reserved_stock;not null;default:0"`
	AvailableStock int               `gorm:"column:available_stock;not null;default:0"`
	ReorderLevel   int               `gorm:"column:reorder_level;not null;default:0"`
	Status         enums.StockStatus `gorm:"column:status;not null"`
	ImageURL       *string           `gorm:"column:image_url"`
	Description    *string           `gorm:"column:description"`
	WarehouseID    *uuid.UUID        `gorm:"column:warehouse_id;type:uuid"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

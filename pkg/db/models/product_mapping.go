package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/uncoverhq/ops-backend/pkg/enums"
)

// ProductMapping links one product to its identifiers on the external
// platforms of a single market. There is at most one row per product and
// market; writes are upserts.
type ProductMapping struct {
	ID             uuid.UUID    `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID      uuid.UUID    `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_product_mappings_product_market"`
	Market         enums.Region `gorm:"column:market;not null;uniqueIndex:idx_product_mappings_product_market"`
	ShopifyID      *string      `gorm:"column:shopify_id"`
	ShopifyHandle  *string      `gorm:"column:shopify_handle"`
	OdooID         *string      `gorm:"column:odoo_id"`
	OdooName       *string      `gorm:"column:odoo_name"`
	QuickbooksID   *string      `gorm:"column:quickbooks_id"`
	QuickbooksName *string      `gorm:"column:quickbooks_name"`
	LetaAiID       *string      `gorm:"column:leta_ai_id"`
	LetaAiName     *string      `gorm:"column:leta_ai_name"`
	RendaID        *string      `gorm:"column:renda_id"`
	RendaName      *string      `gorm:"column:renda_name"`
	CreatedAt      time.Time    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time    `gorm:"column:updated_at;autoUpdateTime"`
}

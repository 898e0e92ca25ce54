package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/uncoverhq/ops-backend/pkg/enums"
)

// Order is a customer order from one of the sales channels. Sync columns are
// bookkeeping for downstream platform handoffs; the handoffs themselves are
// performed outside this service.
type Order struct {
	ID               uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Reference        string                 `gorm:"column:reference;not null;uniqueIndex"`
	ShopifyOrderID   *string                `gorm:"column:shopify_order_id"`
	OdooInvoiceID    *string                `gorm:"column:odoo_invoice_id"`
	Source           enums.OrderSource      `gorm:"column:source;not null"`
	Type             enums.OrderType        `gorm:"column:type;not null"`
	CustomerName     string                 `gorm:"column:customer_name;not null"`
	CustomerEmail    string                 `gorm:"column:customer_email;not null"`
	CustomerPhone    *string                `gorm:"column:customer_phone"`
	CustomerAddress  *string                `gorm:"column:customer_address"`
	SubtotalCents    int                    `gorm:"column:subtotal_cents;not null;default:0"`
	ShippingCents    int                    `gorm:"column:shipping_cents;not null;default:0"`
	TotalCents       int                    `gorm:"column:total_cents;not null;default:0"`
	Currency         enums.Currency         `gorm:"column:currency;not null"`
	Status           enums.OrderStatus      `gorm:"column:status;not null;default:'pending'"`
	OdooSOSync       enums.SyncState        `gorm:"column:odoo_so_sync;not null;default:'pending'"`
	OdooInvoiceSync  enums.SyncState        `gorm:"column:odoo_invoice_sync;not null;default:'pending'"`
	QBInvoiceSync    enums.SyncState        `gorm:"column:qb_invoice_sync;not null;default:'pending'"`
	DeliverySync     enums.SyncState        `gorm:"column:delivery_sync;not null;default:'pending'"`
	DeliveryPlatform enums.DeliveryPlatform `gorm:"column:delivery_platform;not null;default:'none'"`
	TrackingNumber   *string                `gorm:"column:tracking_number"`
	DeliveryNotes    *string                `gorm:"column:delivery_notes"`
	FulfilledAt      *time.Time             `gorm:"column:fulfilled_at"`
	DeliveredAt      *time.Time             `gorm:"column:delivered_at"`
	Items            []OrderLineItem        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/uncoverhq/ops-backend/pkg/db/models"
	"github.com/uncoverhq/ops-backend/pkg/enums"
)

// LineItemDTO is the API shape of one order line.
type LineItemDTO struct {
	ID             uuid.UUID `json:"id"`
	ProductID      uuid.UUID `json:"product_id"`
	SKU            string    `json:"sku"`
	ProductName    string    `json:"product_name"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int       `json:"unit_price_cents"`
	TotalCents     int       `json:"total_cents"`
}

// OrderDTO is the API shape of an order.
type OrderDTO struct {
	ID               uuid.UUID              `json:"id"`
	Reference        string                 `json:"reference"`
	ShopifyOrderID   *string                `json:"shopify_order_id,omitempty"`
	OdooInvoiceID    *string                `json:"odoo_invoice_id,omitempty"`
	Source           enums.OrderSource      `json:"source"`
	Type             enums.OrderType        `json:"type"`
	CustomerName     string                 `json:"customer_name"`
	CustomerEmail    string                 `json:"customer_email"`
	CustomerPhone    *string                `json:"customer_phone,omitempty"`
	CustomerAddress  *string                `json:"customer_address,omitempty"`
	SubtotalCents    int                    `json:"subtotal_cents"`
	ShippingCents    int                    `json:"shipping_cents"`
	TotalCents       int                    `json:"total_cents"`
	TotalUSDCents    int                    `json:"total_usd_cents"`
	Currency         enums.Currency         `json:"currency"`
	Status           enums.OrderStatus      `json:"status"`
	OdooSOSync       enums.SyncState        `json:"odoo_so_sync"`
	OdooInvoiceSync  enums.SyncState        `json:"odoo_invoice_sync"`
	QBInvoiceSync    enums.SyncState        `json:"qb_invoice_sync"`
	DeliverySync     enums.SyncState        `json:"delivery_sync"`
	DeliveryPlatform enums.DeliveryPlatform `json:"delivery_platform"`
	TrackingNumber   *string                `json:"tracking_number,omitempty"`
	DeliveryNotes    *string                `json:"delivery_notes,omitempty"`
	FulfilledAt      *time.Time             `json:"fulfilled_at,omitempty"`
	DeliveredAt      *time.Time             `json:"delivered_at,omitempty"`
	Items            []LineItemDTO          `json:"items"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

// NewOrderDTO maps an order model to its API shape. The USD total is computed
// with the fixed conversion rates when a converter is supplied.
func NewOrderDTO(order *models.Order, usdCents int) *OrderDTO {
	items := make([]LineItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, LineItemDTO{
			ID:             item.ID,
			ProductID:      item.ProductID,
			SKU:            item.SKU,
			ProductName:    item.ProductName,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			TotalCents:     item.TotalCents,
		})
	}

	return &OrderDTO{
		ID:               order.ID,
		Reference:        order.Reference,
		ShopifyOrderID:   order.ShopifyOrderID,
		OdooInvoiceID:    order.OdooInvoiceID,
		Source:           order.Source,
		Type:             order.Type,
		CustomerName:     order.CustomerName,
		CustomerEmail:    order.CustomerEmail,
		CustomerPhone:    order.CustomerPhone,
		CustomerAddress:  order.CustomerAddress,
		SubtotalCents:    order.SubtotalCents,
		ShippingCents:    order.ShippingCents,
		TotalCents:       order.TotalCents,
		TotalUSDCents:    usdCents,
		Currency:         order.Currency,
		Status:           order.Status,
		OdooSOSync:       order.OdooSOSync,
		OdooInvoiceSync:  order.OdooInvoiceSync,
		QBInvoiceSync:    order.QBInvoiceSync,
		DeliverySync:     order.DeliverySync,
		DeliveryPlatform: order.DeliveryPlatform,
		TrackingNumber:   order.TrackingNumber,
		DeliveryNotes:    order.DeliveryNotes,
		FulfilledAt:      order.FulfilledAt,
		DeliveredAt:      order.DeliveredAt,
		Items:            items,
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
	}
}

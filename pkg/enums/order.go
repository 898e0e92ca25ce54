package enums

import "fmt"

// OrderStatus tracks the lifecycle of a customer order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusInTransit  OrderStatus = "in_transit"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusFailed     OrderStatus = "failed"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusInTransit,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusFailed,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from the status.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusDelivered, OrderStatusCancelled, OrderStatusFailed:
		return true
	}
	return false
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}

// OrderSource identifies the sales channel an order originated from.
type OrderSource string

const (
	OrderSourceShopifyKenya   OrderSource = "shopify_kenya"
	OrderSourceShopifyNigeria OrderSource = "shopify_nigeria"
	OrderSourceB2BOdoo        OrderSource = "b2b_odoo"
)

var validOrderSources = []OrderSource{
	OrderSourceShopifyKenya,
	OrderSourceShopifyNigeria,
	OrderSourceB2BOdoo,
}

// String implements fmt.Stringer.
func (s OrderSource) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderSource.
func (s OrderSource) IsValid() bool {
	for _, candidate := range validOrderSources {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseOrderSource converts raw input into an OrderSource.
func ParseOrderSource(value string) (OrderSource, error) {
	for _, candidate := range validOrderSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order source %q", value)
}

// OrderType distinguishes direct-to-consumer orders from wholesale ones.
type OrderType string

const (
	OrderTypeB2C OrderType = "b2c"
	OrderTypeB2B OrderType = "b2b"
)

var validOrderTypes = []OrderType{
	OrderTypeB2C,
	OrderTypeB2B,
}

// String implements fmt.Stringer.
func (t OrderType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known OrderType.
func (t OrderType) IsValid() bool {
	for _, candidate := range validOrderTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseOrderType converts raw input into an OrderType.
func ParseOrderType(value string) (OrderType, error) {
	for _, candidate := range validOrderTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order type %q", value)
}

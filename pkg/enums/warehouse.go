package enums

import "fmt"

// WarehouseStatus describes the operational state of a warehouse.
type WarehouseStatus string

const (
	WarehouseStatusActive      WarehouseStatus = "active"
	WarehouseStatusMaintenance WarehouseStatus = "maintenance"
	WarehouseStatusFull        WarehouseStatus = "full"
)

var validWarehouseStatuses = []WarehouseStatus{
	WarehouseStatusActive,
	WarehouseStatusMaintenance,
	WarehouseStatusFull,
}

// String implements fmt.Stringer.
func (s WarehouseStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known WarehouseStatus.
func (s WarehouseStatus) IsValid() bool {
	for _, candidate := range validWarehouseStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseWarehouseStatus converts raw input into a WarehouseStatus.
func ParseWarehouseStatus(value string) (WarehouseStatus, error) {
	for _, candidate := range validWarehouseStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid warehouse status %q", value)
}

// DeliveryPlatform identifies the last-mile provider attached to a warehouse.
type DeliveryPlatform string

const (
	DeliveryPlatformRendaWMS DeliveryPlatform = "renda_wms"
	DeliveryPlatformLetaAI   DeliveryPlatform = "leta_ai"
	DeliveryPlatformNone     DeliveryPlatform = "none"
)

var validDeliveryPlatforms = []DeliveryPlatform{
	DeliveryPlatformRendaWMS,
	DeliveryPlatformLetaAI,
	DeliveryPlatformNone,
}

// String implements fmt.Stringer.
func (p DeliveryPlatform) String() string {
	return string(p)
}

// IsValid reports whether the value is a known DeliveryPlatform.
func (p DeliveryPlatform) IsValid() bool {
	for _, candidate := range validDeliveryPlatforms {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseDeliveryPlatform converts raw input into a DeliveryPlatform.
func ParseDeliveryPlatform(value string) (DeliveryPlatform, error) {
	for _, candidate := range validDeliveryPlatforms {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery platform %q", value)
}

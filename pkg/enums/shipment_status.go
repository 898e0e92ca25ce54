package enums

import "fmt"

// ShipmentStatus tracks an inbound shipment from creation to receipt.
type ShipmentStatus string

const (
	ShipmentStatusCreated          ShipmentStatus = "created"
	ShipmentStatusInTransit        ShipmentStatus = "in_transit"
	ShipmentStatusAtPort           ShipmentStatus = "at_port"
	ShipmentStatusCustomsClearance ShipmentStatus = "customs_clearance"
	ShipmentStatusOutForDelivery   ShipmentStatus = "out_for_delivery"
	ShipmentStatusReceived         ShipmentStatus = "received"
)

// validShipmentStatuses is ordered by lifecycle progression; rank comparisons
// rely on this ordering.
var validShipmentStatuses = []ShipmentStatus{
	ShipmentStatusCreated,
	ShipmentStatusInTransit,
	ShipmentStatusAtPort,
	ShipmentStatusCustomsClearance,
	ShipmentStatusOutForDelivery,
	ShipmentStatusReceived,
}

// String implements fmt.Stringer.
func (s ShipmentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ShipmentStatus.
func (s ShipmentStatus) IsValid() bool {
	for _, candidate := range validShipmentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Rank returns the lifecycle position of the status, or -1 when unknown.
func (s ShipmentStatus) Rank() int {
	for i, candidate := range validShipmentStatuses {
		if candidate == s {
			return i
		}
	}
	return -1
}

// ParseShipmentStatus converts raw input into a ShipmentStatus.
func ParseShipmentStatus(value string) (ShipmentStatus, error) {
	for _, candidate := range validShipmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid shipment status %q", value)
}

package enums

import "fmt"

// ActivityType categorizes entries in the operations activity log.
type ActivityType string

const (
	ActivityTypeOrder     ActivityType = "order"
	ActivityTypeShipment  ActivityType = "shipment"
	ActivityTypeInventory ActivityType = "inventory"
	ActivityTypeTransfer  ActivityType = "transfer"
	ActivityTypeRequest   ActivityType = "request"
	ActivityTypeSync      ActivityType = "sync"
	ActivityTypeUser      ActivityType = "user"
)

var validActivityTypes = []ActivityType{
	ActivityTypeOrder,
	ActivityTypeShipment,
	ActivityTypeInventory,
	ActivityTypeTransfer,
	ActivityTypeRequest,
	ActivityTypeSync,
	ActivityTypeUser,
}

// String implements fmt.Stringer.
func (t ActivityType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known ActivityType.
func (t ActivityType) IsValid() bool {
	for _, candidate := range validActivityTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseActivityType converts raw input into an ActivityType.
func ParseActivityType(value string) (ActivityType, error) {
	for _, candidate := range validActivityTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid activity type %q", value)
}

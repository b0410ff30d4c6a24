package enums

import "fmt"

// PickupType describes how laundry reaches the shop.
type PickupType string

const (
	PickupTypeDropOff PickupType = "drop_off"
	PickupTypePickup  PickupType = "pickup"
)

var validPickupTypes = []PickupType{
	PickupTypeDropOff,
	PickupTypePickup,
}

// String implements fmt.Stringer.
func (p PickupType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PickupType.
func (p PickupType) IsValid() bool {
	for _, candidate := range validPickupTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePickupType converts raw input into a PickupType.
func ParsePickupType(value string) (PickupType, error) {
	for _, candidate := range validPickupTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pickup type %q", value)
}

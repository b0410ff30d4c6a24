package enums

import "fmt"

// PaymentEventType classifies rows of the payment audit trail.
type PaymentEventType string

const (
	PaymentEventTypeUpdated      PaymentEventType = "payment_updated"
	PaymentEventTypeAutoPromoted PaymentEventType = "payment_auto_promoted"
)

var validPaymentEventTypes = []PaymentEventType{
	PaymentEventTypeUpdated,
	PaymentEventTypeAutoPromoted,
}

// String implements fmt.Stringer.
func (p PaymentEventType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentEventType.
func (p PaymentEventType) IsValid() bool {
	for _, candidate := range validPaymentEventTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentEventType converts raw input into a PaymentEventType.
func ParsePaymentEventType(value string) (PaymentEventType, error) {
	for _, candidate := range validPaymentEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment event type %q", value)
}

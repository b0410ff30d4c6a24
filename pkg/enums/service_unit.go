package enums

import "fmt"

type ServiceUnit string

const (
	ServiceUnitKg  ServiceUnit = "kg"
	ServiceUnitPcs ServiceUnit = "pcs"
	ServiceUnitSet ServiceUnit = "set"
)

var validServiceUnits = []ServiceUnit{
	ServiceUnitKg,
	ServiceUnitPcs,
	ServiceUnitSet,
}

// String implements fmt.Stringer.
func (s ServiceUnit) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ServiceUnit.
func (s ServiceUnit) IsValid() bool {
	for _, candidate := range validServiceUnits {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseServiceUnit converts raw input into a ServiceUnit.
func ParseServiceUnit(value string) (ServiceUnit, error) {
	for _, candidate := range validServiceUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid service unit %q", value)
}

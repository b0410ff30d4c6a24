package enums

import "fmt"

// ReportType selects which ledger sides a financial report includes.
type ReportType string

const (
	ReportTypeAll     ReportType = "all"
	ReportTypeIncome  ReportType = "income"
	ReportTypeExpense ReportType = "expense"
)

var validReportTypes = []ReportType{
	ReportTypeAll,
	ReportTypeIncome,
	ReportTypeExpense,
}

// String implements fmt.Stringer.
func (r ReportType) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ReportType.
func (r ReportType) IsValid() bool {
	for _, candidate := range validReportTypes {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseReportType converts raw input into a ReportType.
func ParseReportType(value string) (ReportType, error) {
	for _, candidate := range validReportTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid report type %q", value)
}

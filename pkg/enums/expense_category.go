package enums

import "fmt"

// ExpenseCategory groups operating costs in the financial report.
type ExpenseCategory string

const (
	ExpenseCategoryDetergent   ExpenseCategory = "detergent"
	ExpenseCategoryElectricity ExpenseCategory = "electricity"
	ExpenseCategoryWater       ExpenseCategory = "water"
	ExpenseCategoryMaintenance ExpenseCategory = "maintenance"
	ExpenseCategorySalary      ExpenseCategory = "salary"
	ExpenseCategoryOther       ExpenseCategory = "other"
)

var validExpenseCategories = []ExpenseCategory{
	ExpenseCategoryDetergent,
	ExpenseCategoryElectricity,
	ExpenseCategoryWater,
	ExpenseCategoryMaintenance,
	ExpenseCategorySalary,
	ExpenseCategoryOther,
}

// String implements fmt.Stringer.
func (e ExpenseCategory) String() string {
	return string(e)
}

// IsValid reports whether the value is a known ExpenseCategory.
func (e ExpenseCategory) IsValid() bool {
	for _, candidate := range validExpenseCategories {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseExpenseCategory converts raw input into a ExpenseCategory.
func ParseExpenseCategory(value string) (ExpenseCategory, error) {
	for _, candidate := range validExpenseCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid expense category %q", value)
}

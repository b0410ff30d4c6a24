package discounts

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/laundry-backend/pkg/db/models"
	"github.com/angelmondragon/laundry-backend/pkg/enums"
	"github.com/angelmondragon/laundry-backend/pkg/money"
)

var hundred = decimal.NewFromInt(100)

// IsEligible applies the same filter as Repository.ListEligible to a loaded discount.
func IsEligible(d models.Discount, subtotal money.Money, now time.Time) bool {
	if !d.IsActive {
		return false
	}
	if subtotal.LessThan(d.MinAmount) {
		return false
	}
	return !now.Before(d.ValidFrom) && !now.After(d.ValidUntil)
}

// Compute returns the amount d takes off subtotal. Percentage discounts are
// capped by MaxDiscount when one is set; unknown types and nil discounts give zero.
func Compute(d *models.Discount, subtotal money.Money) money.Money {
	if d == nil {
		return money.Zero
	}
	switch d.Type {
	case enums.DiscountTypeFixed:
		return money.FromDecimal(d.Value)
	case enums.DiscountTypePercentage:
		amount := subtotal.Mul(d.Value.Div(hundred))
		if d.MaxDiscount != nil && d.MaxDiscount.IsPositive() && amount.GreaterThan(*d.MaxDiscount) {
			return *d.MaxDiscount
		}
		return amount
	default:
		return money.Zero
	}
}

// Label renders the option text shown next to a discount, e.g. "Member (10%)".
func Label(d models.Discount) string {
	if d.Type == enums.DiscountTypePercentage {
		return fmt.Sprintf("%s (%s%%)", d.Name, d.Value.String())
	}
	return fmt.Sprintf("%s (%s)", d.Name, money.FromDecimal(d.Value).Rupiah())
}

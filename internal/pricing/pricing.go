// Package pricing turns order form state into priced lines, aggregates and
// payment fields. Everything here is recomputed from scratch on each call;
// nothing is persisted.
package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/laundry-backend/pkg/enums"
	"github.com/angelmondragon/laundry-backend/pkg/money"
)

// MinimumCourierWeight is the kg floor for orders collected or delivered by courier.
var MinimumCourierWeight = decimal.NewFromInt(3)

const weightPlaces = 2

// Line is one service entry of an order form.
type Line struct {
	ID        *uuid.UUID      `json:"id,omitempty"`
	ServiceID uuid.UUID       `json:"service_id"`
	Weight    decimal.Decimal `json:"weight"`
	UnitPrice money.Money     `json:"unit_price"`
	Price     money.Money     `json:"price"`
	Notes     *string         `json:"notes,omitempty"`
}

// Fulfilment says how laundry travels between customer and shop.
type Fulfilment struct {
	PickupType   enums.PickupType
	DeliveryType enums.DeliveryType
}

// RequiresMinimumWeight is true when a courier leg is involved.
func (f Fulfilment) RequiresMinimumWeight() bool {
	return f.PickupType == enums.PickupTypePickup || f.DeliveryType == enums.DeliveryTypeDelivery
}

// LinePrice is unitPrice × weight, unrounded.
func LinePrice(unitPrice money.Money, weight decimal.Decimal) money.Money {
	return unitPrice.Mul(weight)
}

// ComputeTotal is subtotal + tax + fee - discount, floored at zero.
func ComputeTotal(subtotal, tax, fee, discount money.Money) money.Money {
	return money.Sum(subtotal, tax, fee).Sub(discount).NonNegative()
}

// TotalWeight sums the weights of lines.
func TotalWeight(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Weight)
	}
	return total
}

// RescaleWeights lifts weights so they add up to floor when their sum is
// below it, keeping each weight's share of the original total (or splitting
// equally when every weight is zero). Results are rounded to 2 places.
// The returned total is the adjusted total, not the sum of rounded weights.
func RescaleWeights(weights []decimal.Decimal, floor decimal.Decimal) ([]decimal.Decimal, decimal.Decimal, bool) {
	original := decimal.Zero
	for _, w := range weights {
		original = original.Add(w)
	}
	if len(weights) == 0 || original.GreaterThanOrEqual(floor) {
		return weights, original, false
	}

	adjusted := decimal.Max(floor, original)
	out := make([]decimal.Decimal, len(weights))
	for i, w := range weights {
		var next decimal.Decimal
		if original.IsPositive() {
			next = w.Div(original).Mul(adjusted)
		} else {
			next = adjusted.Div(decimal.NewFromInt(int64(len(weights))))
		}
		out[i] = next.Round(weightPlaces)
	}
	return out, adjusted, true
}

package discounts

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/laundry-backend/pkg/db/models"
	"github.com/angelmondragon/laundry-backend/pkg/enums"
	"github.com/angelmondragon/laundry-backend/pkg/money"
)

// Resolution is the outcome of applying a selected discount to a subtotal.
// Cleared is set when a selection was dropped because it no longer applies.
type Resolution struct {
	Discount *models.Discount
	Amount   money.Money
	Cleared  bool
}

// DiscountID returns the id of the applied discount, if any.
func (r Resolution) DiscountID() *uuid.UUID {
	if r.Discount == nil {
		return nil
	}
	id := r.Discount.ID
	return &id
}

type Option struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"name"`
	Label       string             `json:"label"`
	Type        enums.DiscountType `json:"type"`
	Value       decimal.Decimal    `json:"value"`
	MinAmount   money.Money        `json:"min_amount"`
	MaxDiscount *money.Money       `json:"max_discount,omitempty"`
	Amount      money.Money        `json:"amount"`
}

func newOption(d models.Discount, subtotal money.Money) Option {
	return Option{
		ID:          d.ID,
		Name:        d.Name,
		Label:       Label(d),
		Type:        d.Type,
		Value:       d.Value,
		MinAmount:   d.MinAmount,
		MaxDiscount: d.MaxDiscount,
		Amount:      Compute(&d, subtotal),
	}
}

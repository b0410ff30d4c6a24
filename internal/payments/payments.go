// Package payments applies operator payment updates to saved orders.
package payments

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/laundry-backend/pkg/db/models"
	"github.com/angelmondragon/laundry-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/laundry-backend/pkg/errors"
	"github.com/angelmondragon/laundry-backend/pkg/money"
)

// Request is a payment update as entered at the cashier.
type Request struct {
	PaymentStatus   enums.PaymentStatus `json:"payment_status"`
	PaidAmount      money.Money         `json:"paid_amount"`
	PaymentMethodID *uuid.UUID          `json:"payment_method_id,omitempty"`
}

// Outcome is the arithmetic result of applying a Request to an order.
type Outcome struct {
	RequestedStatus enums.PaymentStatus
	FinalStatus     enums.PaymentStatus
	PreviousPaid    money.Money
	PaidAmount      money.Money
	ChangeAmount    money.Money
	RemainingAmount money.Money
	AutoPromoted    bool
}

// Validate checks the request preconditions before any computation.
func (r Request) Validate() error {
	if r.PaymentStatus == "" {
		return pkgerrors.Validation(pkgerrors.FieldErrors{"payment_status": "payment status is required"})
	}
	if r.PaymentStatus == enums.PaymentStatusPaid || r.PaymentStatus == enums.PaymentStatusPartial {
		errs := pkgerrors.FieldErrors{}
		if !r.PaidAmount.IsPositive() {
			errs["paid_amount"] = "paid amount must be greater than zero"
		}
		if r.PaymentMethodID == nil || *r.PaymentMethodID == uuid.Nil {
			errs["payment_method_id"] = "payment method is required"
		}
		if len(errs) > 0 {
			return pkgerrors.Validation(errs)
		}
	}
	return nil
}

// Calculate applies req to the order's current totals.
//
// partial adds the input to what was already paid and promotes the order to
// paid once nothing remains. paid takes the input as the new paid amount and
// must cover the outstanding balance. unpaid resets the paid amount.
func Calculate(order models.Order, req Request) (Outcome, error) {
	if err := req.Validate(); err != nil {
		return Outcome{}, err
	}

	total := order.TotalAmount
	current := order.PaidAmount
	input := req.PaidAmount
	out := Outcome{
		RequestedStatus: req.PaymentStatus,
		FinalStatus:     req.PaymentStatus,
		PreviousPaid:    current,
	}

	switch req.PaymentStatus {
	case enums.PaymentStatusPartial:
		out.PaidAmount = current.Add(input)
		out.RemainingAmount = total.Sub(out.PaidAmount).NonNegative()
		if out.PaidAmount.GreaterThan(total) {
			out.ChangeAmount = out.PaidAmount.Sub(total)
		} else {
			out.ChangeAmount = out.RemainingAmount
		}
		if !out.RemainingAmount.IsPositive() {
			out.FinalStatus = enums.PaymentStatusPaid
			out.AutoPromoted = true
		}

	case enums.PaymentStatusPaid:
		outstanding := total.Sub(current)
		if input.LessThan(outstanding) {
			return Outcome{}, pkgerrors.New(
				pkgerrors.CodeBusinessRule,
				"paid amount is less than the outstanding balance of "+outstanding.Rupiah(),
			).WithDetails(map[string]any{
				"outstanding_amount": outstanding,
				"paid_amount":        input,
			})
		}
		out.PaidAmount = input
		out.RemainingAmount = money.Zero
		out.ChangeAmount = input.Sub(total)

	case enums.PaymentStatusUnpaid:
		out.PaidAmount = money.Zero
		out.RemainingAmount = total
		out.ChangeAmount = total

	default:
		return Outcome{}, pkgerrors.Validation(pkgerrors.FieldErrors{"payment_status": "invalid payment status"})
	}
	return out, nil
}

// CanUpdatePayment is false for cancelled orders and refunded payments.
func CanUpdatePayment(order models.Order) bool {
	return order.Status != enums.OrderStatusCancelled && order.PaymentStatus != enums.PaymentStatusRefunded
}

// Summary is the read-only payment picture of an order.
type Summary struct {
	TotalAmount       money.Money         `json:"total_amount"`
	PaidAmount        money.Money         `json:"paid_amount"`
	ChangeAmount      money.Money         `json:"change_amount"`
	RemainingAmount   money.Money         `json:"remaining_amount"`
	PaymentStatus     enums.PaymentStatus `json:"payment_status"`
	IsOverpaid        bool                `json:"is_overpaid"`
	PaymentMethod     *string             `json:"payment_method"`
	PaymentPercentage decimal.Decimal     `json:"payment_percentage"`
	CanUpdate         bool                `json:"can_update"`
}

var hundred = decimal.NewFromInt(100)

func Summarize(order models.Order) Summary {
	s := Summary{
		TotalAmount:       order.TotalAmount,
		PaidAmount:        order.PaidAmount,
		ChangeAmount:      order.ChangeAmount,
		RemainingAmount:   order.RemainingAmount(),
		PaymentStatus:     order.PaymentStatus,
		IsOverpaid:        order.PaidAmount.GreaterThan(order.TotalAmount),
		PaymentPercentage: decimal.Zero,
		CanUpdate:         CanUpdatePayment(order),
	}
	if order.PaymentMethod != nil {
		name := order.PaymentMethod.Name
		s.PaymentMethod = &name
	}
	if order.TotalAmount.IsPositive() {
		s.PaymentPercentage = order.PaidAmount.Decimal().
			Div(order.TotalAmount.Decimal()).
			Mul(hundred).
			Round(2)
	}
	return s
}

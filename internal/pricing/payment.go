package pricing

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/laundry-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/laundry-backend/pkg/errors"
	"github.com/angelmondragon/laundry-backend/pkg/money"
)

// PaymentFields is the payment section of an order form after the status rules ran.
type PaymentFields struct {
	Status          enums.PaymentStatus `json:"payment_status"`
	PaidAmount      money.Money         `json:"paid_amount"`
	PaymentMethodID *uuid.UUID          `json:"payment_method_id"`
	RemainingAmount money.Money         `json:"remaining_amount"`
	Visible         bool                `json:"show_payment_fields"`
	MethodRequired  bool                `json:"payment_method_required"`
	AmountEditable  bool                `json:"paid_amount_editable"`
	RemainingHint   string              `json:"remaining_hint,omitempty"`
}

// ApplyPaymentStatus enforces what each payment status allows at entry time:
// unpaid and refunded carry nothing, paid covers the whole total, partial keeps
// the operator amount strictly between zero and the total.
func ApplyPaymentStatus(status enums.PaymentStatus, total, paid money.Money, methodID *uuid.UUID) (PaymentFields, pkgerrors.FieldErrors) {
	if status == "" {
		status = enums.PaymentStatusUnpaid
	}
	errs := pkgerrors.FieldErrors{}
	fields := PaymentFields{Status: status}

	switch {
	case status.ClearsPayment():
		fields.PaidAmount = money.Zero
		fields.RemainingAmount = total
		return fields, nil

	case status == enums.PaymentStatusPaid:
		fields.PaidAmount = total
		fields.RemainingAmount = money.Zero

	case status == enums.PaymentStatusPartial:
		fields.PaidAmount = paid
		fields.AmountEditable = true
		fields.RemainingAmount = total.Sub(paid).NonNegative()
		fields.RemainingHint = "Remaining: " + fields.RemainingAmount.Rupiah()
		switch {
		case !paid.IsPositive():
			errs["paid_amount"] = "paid amount must be greater than zero"
		case !paid.LessThan(total):
			errs["paid_amount"] = "partial payment must be less than the total amount"
		}

	default:
		errs["payment_status"] = "invalid payment status"
		return fields, errs
	}

	fields.Visible = true
	fields.MethodRequired = true
	fields.PaymentMethodID = methodID
	if methodID == nil || *methodID == uuid.Nil {
		errs["payment_method_id"] = "payment method is required"
	}
	if len(errs) == 0 {
		return fields, nil
	}
	return fields, errs
}

package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/laundry-backend/internal/pricing"
	"github.com/angelmondragon/laundry-backend/pkg/db/models"
	"github.com/angelmondragon/laundry-backend/pkg/enums"
	"github.com/angelmondragon/laundry-backend/pkg/money"
	"github.com/angelmondragon/laundry-backend/pkg/pagination"
)

// LineInput is one service entry as submitted by the operator. ID is set when
// editing an existing line.
type LineInput struct {
	ID        *uuid.UUID      `json:"id,omitempty"`
	ServiceID uuid.UUID       `json:"service_id" validate:"required"`
	Weight    decimal.Decimal `json:"weight"`
	Notes     *string         `json:"notes,omitempty"`
}

// OrderInput carries the editable order fields for create and update.
// Derived amounts are always recomputed server-side.
type OrderInput struct {
	OrderCode       string              `json:"order_code" validate:"omitempty,max=30"`
	CustomerID      uuid.UUID           `json:"customer_id" validate:"required"`
	OrderDate       *time.Time          `json:"order_date,omitempty"`
	DeliveryDate    *time.Time          `json:"delivery_date,omitempty"`
	Status          enums.OrderStatus   `json:"status,omitempty"`
	PickupType      enums.PickupType    `json:"pickup_type,omitempty"`
	DeliveryType    enums.DeliveryType  `json:"delivery_type,omitempty"`
	PickupAddress   *string             `json:"pickup_address,omitempty"`
	DeliveryAddress *string             `json:"delivery_address,omitempty"`
	Lines           []LineInput         `json:"lines" validate:"required,min=1,dive"`
	DiscountID      *uuid.UUID          `json:"discount_id,omitempty"`
	TaxAmount       money.Money         `json:"tax_amount"`
	AdditionalFee   money.Money         `json:"additional_fee"`
	PaymentStatus   enums.PaymentStatus `json:"payment_status,omitempty"`
	PaidAmount      money.Money         `json:"paid_amount"`
	PaymentMethodID *uuid.UUID          `json:"payment_method_id,omitempty"`
	Notes           *string             `json:"notes,omitempty"`
}

func (in OrderInput) formState() pricing.FormState {
	lines := make([]pricing.Line, len(in.Lines))
	for i, l := range in.Lines {
		lines[i] = pricing.Line{ID: l.ID, ServiceID: l.ServiceID, Weight: l.Weight, Notes: l.Notes}
	}
	return pricing.FormState{
		Lines:           lines,
		PickupType:      in.PickupType,
		DeliveryType:    in.DeliveryType,
		DiscountID:      in.DiscountID,
		TaxAmount:       in.TaxAmount,
		AdditionalFee:   in.AdditionalFee,
		PaymentStatus:   in.PaymentStatus,
		PaidAmount:      in.PaidAmount,
		PaymentMethodID: in.PaymentMethodID,
	}
}

// ListFilters narrows order listings.
type ListFilters struct {
	Status        *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
	CustomerID    *uuid.UUID
	Query         string
}

// OrderList is a page of orders.
type OrderList struct {
	Orders []models.Order
	Meta   pagination.Meta
}

// LineView is the API shape of a persisted order line.
type LineView struct {
	ID          uuid.UUID       `json:"id"`
	ServiceID   uuid.UUID       `json:"service_id"`
	ServiceName string          `json:"service_name,omitempty"`
	Weight      decimal.Decimal `json:"weight"`
	UnitPrice   money.Money     `json:"unit_price"`
	Price       money.Money     `json:"price"`
	Notes       *string         `json:"notes,omitempty"`
}

// OrderView is the API shape of an order.
type OrderView struct {
	ID              uuid.UUID           `json:"id"`
	OrderCode       string              `json:"order_code"`
	CustomerID      uuid.UUID           `json:"customer_id"`
	CustomerName    string              `json:"customer_name,omitempty"`
	OrderDate       time.Time           `json:"order_date"`
	PickupDate      *time.Time          `json:"pickup_date"`
	DeliveryDate    *time.Time          `json:"delivery_date"`
	EstimatedFinish *time.Time          `json:"estimated_finish"`
	ActualFinish    *time.Time          `json:"actual_finish"`
	Status          enums.OrderStatus   `json:"status"`
	PaymentStatus   enums.PaymentStatus `json:"payment_status"`
	PickupType      enums.PickupType    `json:"pickup_type"`
	DeliveryType    enums.DeliveryType  `json:"delivery_type"`
	PickupAddress   *string             `json:"pickup_address"`
	DeliveryAddress *string             `json:"delivery_address"`
	TotalWeight     decimal.Decimal     `json:"total_weight"`
	TotalItems      int                 `json:"total_items"`
	Subtotal        money.Money         `json:"subtotal"`
	DiscountID      *uuid.UUID          `json:"discount_id"`
	DiscountAmount  money.Money         `json:"discount_amount"`
	TaxAmount       money.Money         `json:"tax_amount"`
	AdditionalFee   money.Money         `json:"additional_fee"`
	TotalAmount     money.Money         `json:"total_amount"`
	PaidAmount      money.Money         `json:"paid_amount"`
	ChangeAmount    money.Money         `json:"change_amount"`
	RemainingAmount money.Money         `json:"remaining_amount"`
	PaymentMethodID *uuid.UUID          `json:"payment_method_id"`
	Notes           *string             `json:"notes"`
	Lines           []LineView          `json:"lines,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// NewOrderView maps a loaded order, including whatever relations were preloaded.
func NewOrderView(o models.Order) OrderView {
	view := OrderView{
		ID:              o.ID,
		OrderCode:       o.OrderCode,
		CustomerID:      o.CustomerID,
		OrderDate:       o.OrderDate,
		PickupDate:      o.PickupDate,
		DeliveryDate:    o.DeliveryDate,
		EstimatedFinish: o.EstimatedFinish,
		ActualFinish:    o.ActualFinish,
		Status:          o.Status,
		PaymentStatus:   o.PaymentStatus,
		PickupType:      o.PickupType,
		DeliveryType:    o.DeliveryType,
		PickupAddress:   o.PickupAddress,
		DeliveryAddress: o.DeliveryAddress,
		TotalWeight:     o.TotalWeight,
		TotalItems:      o.TotalItems,
		Subtotal:        o.Subtotal,
		DiscountID:      o.DiscountID,
		DiscountAmount:  o.DiscountAmount,
		TaxAmount:       o.TaxAmount,
		AdditionalFee:   o.AdditionalFee,
		TotalAmount:     o.TotalAmount,
		PaidAmount:      o.PaidAmount,
		ChangeAmount:    o.ChangeAmount,
		RemainingAmount: o.RemainingAmount(),
		PaymentMethodID: o.PaymentMethodID,
		Notes:           o.Notes,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	if o.Customer != nil {
		view.CustomerName = o.Customer.Name
	}
	for _, line := range o.Lines {
		lv := LineView{
			ID:        line.ID,
			ServiceID: line.ServiceID,
			Weight:    line.Weight,
			UnitPrice: line.UnitPrice,
			Price:     line.Price,
			Notes:     line.Notes,
		}
		if line.Service != nil {
			lv.ServiceName = line.Service.Name
		}
		view.Lines = append(view.Lines, lv)
	}
	return view
}

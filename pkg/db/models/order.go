package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/laundry-backend/pkg/enums"
	"github.com/angelmondragon/laundry-backend/pkg/money"
)

// Order is the aggregate persisted on save together with its lines and discount link.
type Order struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OrderCode       string              `gorm:"column:order_code;not null;unique"`
	CustomerID      uuid.UUID           `gorm:"column:customer_id;type:uuid;not null"`
	PaymentMethodID *uuid.UUID          `gorm:"column:payment_method_id;type:uuid"`
	DiscountID      *uuid.UUID          `gorm:"column:discount_id;type:uuid"`
	OrderDate       time.Time           `gorm:"column:order_date;not null"`
	PickupDate      *time.Time          `gorm:"column:pickup_date"`
	DeliveryDate    *time.Time          `gorm:"column:delivery_date"`
	EstimatedFinish *time.Time          `gorm:"column:estimated_finish"`
	ActualFinish    *time.Time          `gorm:"column:actual_finish"`
	Status          enums.OrderStatus   `gorm:"column:status;not null;default:'pending'"`
	PaymentStatus   enums.PaymentStatus `gorm:"column:payment_status;not null;default:'unpaid'"`
	PickupType      enums.PickupType    `gorm:"column:pickup_type;not null;default:'drop_off'"`
	DeliveryType    enums.DeliveryType  `gorm:"column:delivery_type;not null;default:'pickup'"`
	PickupAddress   *string             `gorm:"column:pickup_address"`
	DeliveryAddress *string             `gorm:"column:delivery_address"`
	TotalWeight     decimal.Decimal     `gorm:"column:total_weight;type:numeric(8,2);not null;default:0"`
	TotalItems      int                 `gorm:"column:total_items;not null;default:0"`
	Subtotal        money.Money         `gorm:"column:subtotal;type:numeric(12,2);not null;default:0"`
	DiscountAmount  money.Money         `gorm:"column:discount_amount;type:numeric(12,2);not null;default:0"`
	TaxAmount       money.Money         `gorm:"column:tax_amount;type:numeric(12,2);not null;default:0"`
	AdditionalFee   money.Money         `gorm:"column:additional_fee;type:numeric(12,2);not null;default:0"`
	TotalAmount     money.Money         `gorm:"column:total_amount;type:numeric(12,2);not null"`
	PaidAmount      money.Money         `gorm:"column:paid_amount;type:numeric(12,2);not null;default:0"`
	ChangeAmount    money.Money         `gorm:"column:change_amount;type:numeric(12,2);not null;default:0"`
	Notes           *string             `gorm:"column:notes"`
	Lines           []OrderLine         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Customer        *Customer           `gorm:"foreignKey:CustomerID"`
	PaymentMethod   *PaymentMethod      `gorm:"foreignKey:PaymentMethodID"`
	Discount        *Discount           `gorm:"foreignKey:DiscountID"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// RemainingAmount is the unpaid balance, never negative.
func (o Order) RemainingAmount() money.Money {
	return o.TotalAmount.Sub(o.PaidAmount).NonNegative()
}

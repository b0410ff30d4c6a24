package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/laundry-backend/pkg/enums"
	"github.com/angelmondragon/laundry-backend/pkg/money"
)

// PaymentEvent is an immutable audit row written with every payment update.
type PaymentEvent struct {
	ID              uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	OrderID         uuid.UUID              `gorm:"column:order_id;type:uuid;not null"`
	Type            enums.PaymentEventType `gorm:"column:type;not null"`
	PreviousStatus  enums.PaymentStatus    `gorm:"column:previous_status;not null"`
	RequestedStatus enums.PaymentStatus    `gorm:"column:requested_status;not null"`
	FinalStatus     enums.PaymentStatus    `gorm:"column:final_status;not null"`
	PreviousPaid    money.Money            `gorm:"column:previous_paid;type:numeric(12,2);not null"`
	InputAmount     money.Money            `gorm:"column:input_amount;type:numeric(12,2);not null"`
	NewPaid         money.Money            `gorm:"column:new_paid;type:numeric(12,2);not null"`
	ChangeAmount    money.Money            `gorm:"column:change_amount;type:numeric(12,2);not null"`
	RemainingAmount money.Money            `gorm:"column:remaining_amount;type:numeric(12,2);not null"`
	PaymentMethodID *uuid.UUID             `gorm:"column:payment_method_id;type:uuid"`
	Metadata        *string                `gorm:"column:metadata"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime"`
}

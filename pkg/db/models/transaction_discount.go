package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/laundry-backend/pkg/money"
)

// TransactionDiscount links an order to the discount applied at save time.
type TransactionDiscount struct {
	ID             uuid.UUID   `gorm:"column:id;type:uuid;primaryKey"`
	OrderID        uuid.UUID   `gorm:"column:order_id;type:uuid;not null"`
	DiscountID     uuid.UUID   `gorm:"column:discount_id;type:uuid;not null"`
	DiscountAmount money.Money `gorm:"column:discount_amount;type:numeric(12,2);not null"`
	CreatedAt      time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}

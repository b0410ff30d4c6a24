package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/laundry-backend/pkg/enums"
	"github.com/angelmondragon/laundry-backend/pkg/money"
)

// Discount is a promotion applicable to an order subtotal.
// Value is rupiah for fixed discounts and a percentage for percentage ones.
type Discount struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Name        string             `gorm:"column:name;not null"`
	Description *string            `gorm:"column:description"`
	Type        enums.DiscountType `gorm:"column:type;not null"`
	Value       decimal.Decimal    `gorm:"column:value;type:numeric(12,2);not null"`
	MinAmount   money.Money        `gorm:"column:min_amount;type:numeric(12,2);not null;default:0"`
	MaxDiscount *money.Money       `gorm:"column:max_discount;type:numeric(12,2)"`
	ValidFrom   time.Time          `gorm:"column:valid_from;not null"`
	ValidUntil  time.Time          `gorm:"column:valid_until;not null"`
	IsActive    bool               `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

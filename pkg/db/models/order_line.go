package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/laundry-backend/pkg/money"
)

// OrderLine is one service entry within an order; UnitPrice is a snapshot of
// the service price at entry time.
type OrderLine struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	ServiceID uuid.UUID       `gorm:"column:service_id;type:uuid;not null"`
	Weight    decimal.Decimal `gorm:"column:weight;type:numeric(8,2);not null"`
	UnitPrice money.Money     `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Price     money.Money     `gorm:"column:price;type:numeric(12,2);not null"`
	Notes     *string         `gorm:"column:notes"`
	Service   *Service        `gorm:"foreignKey:ServiceID"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (OrderLine) TableName() string {
	return "order_details"
}

package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/laundry-backend/pkg/enums"
	"github.com/angelmondragon/laundry-backend/pkg/money"
)

type Expense struct {
	ID            uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	Category      enums.ExpenseCategory `gorm:"column:category;not null"`
	Description   string                `gorm:"column:description;not null"`
	Amount        money.Money           `gorm:"column:amount;type:numeric(12,2);not null"`
	ExpenseDate   time.Time             `gorm:"column:expense_date;not null"`
	ReceiptNumber *string               `gorm:"column:receipt_number"`
	CreatedAt     time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

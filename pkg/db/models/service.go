package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/laundry-backend/pkg/enums"
	"github.com/angelmondragon/laundry-backend/pkg/money"
)

// Service is a priced catalog entry (e.g. "Cuci Kering" per kg).
type Service struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Name         string            `gorm:"column:name;not null"`
	Description  *string           `gorm:"column:description"`
	Unit         enums.ServiceUnit `gorm:"column:unit;not null;default:'kg'"`
	Price        money.Money       `gorm:"column:price;type:numeric(12,2);not null"`
	DurationDays int               `gorm:"column:duration_days;not null;default:1"`
	IsActive     bool              `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

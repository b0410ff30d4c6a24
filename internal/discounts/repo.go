package discounts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/laundry-backend/pkg/db/models"
	"github.com/angelmondragon/laundry-backend/pkg/money"
)

// Repository reads discount definitions; discount maintenance is out of scope.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Discount, error)
	ListEligible(ctx context.Context, subtotal money.Money, now time.Time) ([]models.Discount, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Discount, error) {
	var discount models.Discount
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&discount).Error; err != nil {
		return nil, err
	}
	return &discount, nil
}

func (r *repository) ListEligible(ctx context.Context, subtotal money.Money, now time.Time) ([]models.Discount, error) {
	var rows []models.Discount
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("min_amount <= ?", subtotal).
		Where("valid_from <= ? AND valid_until >= ?", now, now).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

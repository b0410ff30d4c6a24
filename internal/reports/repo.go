package reports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/laundry-backend/pkg/db/models"
	"github.com/angelmondragon/laundry-backend/pkg/enums"
)

// Repository reads the rows a financial report is built from.
type Repository interface {
	PaidOrdersBetween(ctx context.Context, start, end time.Time, paymentMethodID *uuid.UUID) ([]models.Order, error)
	ExpensesBetween(ctx context.Context, start, end time.Time) ([]models.Expense, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) PaidOrdersBetween(ctx context.Context, start, end time.Time, paymentMethodID *uuid.UUID) ([]models.Order, error) {
	query := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("PaymentMethod").
		Where("payment_status = ?", enums.PaymentStatusPaid).
		Where("order_date BETWEEN ? AND ?", start, end)
	if paymentMethodID != nil {
		query = query.Where("payment_method_id = ?", *paymentMethodID)
	}

	var rows []models.Order
	if err := query.Order("order_date DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ExpensesBetween(ctx context.Context, start, end time.Time) ([]models.Expense, error) {
	var rows []models.Expense
	err := r.db.WithContext(ctx).
		Where("expense_date BETWEEN ? AND ?", start, end).
		Order("expense_date DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

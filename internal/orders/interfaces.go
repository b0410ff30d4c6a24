package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/laundry-backend/pkg/db/models"
	"github.com/angelmondragon/laundry-backend/pkg/pagination"
)

// Repository defines persistence operations for orders, their lines and discount links.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Order, int64, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, updates map[string]any) error
	FindLines(ctx context.Context, orderID uuid.UUID) ([]models.OrderLine, error)
	CreateLines(ctx context.Context, lines []models.OrderLine) error
	UpdateLine(ctx context.Context, lineID uuid.UUID, updates map[string]any) error
	DeleteLines(ctx context.Context, orderID uuid.UUID, lineIDs []uuid.UUID) error
	CreateDiscountLink(ctx context.Context, link *models.TransactionDiscount) error
	DeleteDiscountLinks(ctx context.Context, orderID uuid.UUID) error
	FindDiscountLinks(ctx context.Context, orderID uuid.UUID) ([]models.TransactionDiscount, error)
}

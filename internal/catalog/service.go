package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/laundry-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/laundry-backend/pkg/errors"
)

// Service answers the catalog questions asked while pricing and paying orders.
type Service interface {
	// FindServices returns the services that exist among ids, keyed by id.
	// Missing ids are simply absent from the map.
	FindServices(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Service, error)
	ListServices(ctx context.Context) ([]models.Service, error)
	ListPaymentMethods(ctx context.Context) ([]models.PaymentMethod, error)
	// RequireActivePaymentMethod fails with a validation error when id does
	// not name an active payment method.
	RequireActivePaymentMethod(ctx context.Context, id uuid.UUID) (*models.PaymentMethod, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) FindServices(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Service, error) {
	rows, err := s.repo.FindServices(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load services")
	}
	byID := make(map[uuid.UUID]models.Service, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	return byID, nil
}

func (s *service) ListServices(ctx context.Context) ([]models.Service, error) {
	rows, err := s.repo.ListActiveServices(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list services")
	}
	return rows, nil
}

func (s *service) ListPaymentMethods(ctx context.Context) ([]models.PaymentMethod, error) {
	rows, err := s.repo.ListActivePaymentMethods(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payment methods")
	}
	return rows, nil
}

func (s *service) RequireActivePaymentMethod(ctx context.Context, id uuid.UUID) (*models.PaymentMethod, error) {
	method, err := s.repo.FindPaymentMethod(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Validation(pkgerrors.FieldErrors{"payment_method_id": "payment method not found"})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment method")
	}
	if !method.IsActive {
		return nil, pkgerrors.Validation(pkgerrors.FieldErrors{"payment_method_id": "payment method is inactive"})
	}
	return method, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

package discounts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/angelmondragon/laundry-backend/pkg/errors"
	"github.com/angelmondragon/laundry-backend/pkg/money"
)

type Service interface {
	// Resolve applies the selected discount to subtotal. A missing or no
	// longer eligible discount resolves to zero without an error.
	Resolve(ctx context.Context, discountID *uuid.UUID, subtotal money.Money) (Resolution, error)
	Eligible(ctx context.Context, subtotal money.Money) ([]Option, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "discount repository required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, now: now}, nil
}

func (s *service) Resolve(ctx context.Context, discountID *uuid.UUID, subtotal money.Money) (Resolution, error) {
	if discountID == nil || *discountID == uuid.Nil {
		return Resolution{}, nil
	}
	discount, err := s.repo.FindByID(ctx, *discountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Resolution{Cleared: true}, nil
		}
		return Resolution{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load discount")
	}
	if !IsEligible(*discount, subtotal, s.now().UTC()) {
		return Resolution{Cleared: true}, nil
	}
	return Resolution{Discount: discount, Amount: Compute(discount, subtotal)}, nil
}

func (s *service) Eligible(ctx context.Context, subtotal money.Money) ([]Option, error) {
	rows, err := s.repo.ListEligible(ctx, subtotal, s.now().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list eligible discounts")
	}
	options := make([]Option, 0, len(rows))
	for _, row := range rows {
		options = append(options, newOption(row, subtotal))
	}
	return options, nil
}

package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/laundry-backend/pkg/db/models"
	"github.com/angelmondragon/laundry-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/laundry-backend/pkg/errors"
	"github.com/angelmondragon/laundry-backend/pkg/money"
)

// Service records and reads the payment audit trail of orders.
type Service interface {
	WithTx(tx *gorm.DB) Service
	RecordEvent(ctx context.Context, input RecordPaymentEventInput) (*models.PaymentEvent, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.PaymentEvent, error)
	HasEvent(ctx context.Context, orderID uuid.UUID, eventType enums.PaymentEventType) (bool, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// RecordPaymentEventInput captures the immutable data a payment event requires.
type RecordPaymentEventInput struct {
	OrderID         uuid.UUID              `json:"order_id"`
	Type            enums.PaymentEventType `json:"type"`
	PreviousStatus  enums.PaymentStatus    `json:"previous_status"`
	RequestedStatus enums.PaymentStatus    `json:"requested_status"`
	FinalStatus     enums.PaymentStatus    `json:"final_status"`
	PreviousPaid    money.Money            `json:"previous_paid"`
	InputAmount     money.Money            `json:"input_amount"`
	NewPaid         money.Money            `json:"new_paid"`
	ChangeAmount    money.Money            `json:"change_amount"`
	RemainingAmount money.Money            `json:"remaining_amount"`
	PaymentMethodID *uuid.UUID             `json:"payment_method_id"`
	Metadata        map[string]any         `json:"metadata"`
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx), now: s.now}
}

func (s *service) RecordEvent(ctx context.Context, input RecordPaymentEventInput) (*models.PaymentEvent, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment event type %q", input.Type))
	}
	for _, status := range []enums.PaymentStatus{input.PreviousStatus, input.RequestedStatus, input.FinalStatus} {
		if !status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment status %q", status))
		}
	}

	event := &models.PaymentEvent{
		ID:              uuid.New(),
		OrderID:         input.OrderID,
		Type:            input.Type,
		PreviousStatus:  input.PreviousStatus,
		RequestedStatus: input.RequestedStatus,
		FinalStatus:     input.FinalStatus,
		PreviousPaid:    input.PreviousPaid,
		InputAmount:     input.InputAmount,
		NewPaid:         input.NewPaid,
		ChangeAmount:    input.ChangeAmount,
		RemainingAmount: input.RemainingAmount,
		PaymentMethodID: input.PaymentMethodID,
		CreatedAt:       s.now().UTC(),
	}
	if len(input.Metadata) > 0 {
		raw, err := json.Marshal(input.Metadata)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode payment event metadata")
		}
		meta := string(raw)
		event.Metadata = &meta
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *service) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.PaymentEvent, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	events, err := s.repo.ListByOrderID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payment events")
	}
	return events, nil
}

func (s *service) HasEvent(ctx context.Context, orderID uuid.UUID, eventType enums.PaymentEventType) (bool, error) {
	if orderID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if !eventType.IsValid() {
		return false, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment event type %q", eventType))
	}

	events, err := s.repo.ListByOrderID(ctx, orderID)
	if err != nil {
		return false, err
	}
	for _, event := range events {
		if event.Type == eventType {
			return true, nil
		}
	}
	return false, nil
}

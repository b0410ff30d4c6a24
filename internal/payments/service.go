package payments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/laundry-backend/internal/ledger"
	"github.com/angelmondragon/laundry-backend/internal/orders"
	"github.com/angelmondragon/laundry-backend/pkg/db/models"
	"github.com/angelmondragon/laundry-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/laundry-backend/pkg/errors"
	"github.com/angelmondragon/laundry-backend/pkg/logger"
	"github.com/angelmondragon/laundry-backend/pkg/metrics"
	"github.com/angelmondragon/laundry-backend/pkg/money"
)

const (
	messageAutoPromoted = "Payment updated. Status was changed to paid automatically because the payment covers the total."
	messageUpdated      = "Payment updated with status "
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// PaymentMethods checks that a selected payment method can be used.
type PaymentMethods interface {
	RequireActivePaymentMethod(ctx context.Context, id uuid.UUID) (*models.PaymentMethod, error)
}

// ResultData mirrors the stored payment fields after an update.
type ResultData struct {
	PaidAmount      money.Money         `json:"paid_amount"`
	ChangeAmount    money.Money         `json:"change_amount"`
	RemainingAmount money.Money         `json:"remaining_amount"`
	PaymentStatus   enums.PaymentStatus `json:"payment_status"`
}

type Result struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    *ResultData `json:"data"`
}

type Service interface {
	UpdatePayment(ctx context.Context, orderID uuid.UUID, req Request) (*Result, error)
	Summary(ctx context.Context, orderID uuid.UUID) (*Summary, error)
	History(ctx context.Context, orderID uuid.UUID) ([]models.PaymentEvent, error)
}

type service struct {
	orders  orders.Repository
	ledger  ledger.Service
	methods PaymentMethods
	tx      txRunner
	logg    *logger.Logger
	metrics *metrics.LaundryMetrics
}

// NewService wires the payment service. m may be nil.
func NewService(repo orders.Repository, events ledger.Service, methods PaymentMethods, tx txRunner, logg *logger.Logger, m *metrics.LaundryMetrics) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repository required")
	}
	if events == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "ledger service required")
	}
	if methods == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment method lookup required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{orders: repo, ledger: events, methods: methods, tx: tx, logg: logg, metrics: m}, nil
}

// UpdatePayment applies req to the stored order. The order update and its
// audit event commit together or not at all.
func (s *service) UpdatePayment(ctx context.Context, orderID uuid.UUID, req Request) (*Result, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveDuration("payment.update", time.Since(start)) }()

	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.PaymentMethodID != nil && *req.PaymentMethodID != uuid.Nil {
		if _, err := s.methods.RequireActivePaymentMethod(ctx, *req.PaymentMethodID); err != nil {
			return nil, err
		}
	}

	ctx = s.logg.WithOrderID(ctx, orderID.String())
	var outcome Outcome
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.orders.WithTx(tx)
		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return err
		}
		if !CanUpdatePayment(*order) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "payment cannot be updated for this order")
		}

		outcome, err = Calculate(*order, req)
		if err != nil {
			return err
		}

		updates := map[string]any{
			"payment_status": outcome.FinalStatus,
			"paid_amount":    outcome.PaidAmount,
			"change_amount":  outcome.ChangeAmount,
		}
		methodID := order.PaymentMethodID
		switch {
		case outcome.FinalStatus == enums.PaymentStatusUnpaid:
			methodID = nil
			updates["payment_method_id"] = nil
		case req.PaymentMethodID != nil:
			methodID = req.PaymentMethodID
			updates["payment_method_id"] = *req.PaymentMethodID
		}
		if err := repo.UpdateOrder(ctx, orderID, updates); err != nil {
			return err
		}

		eventType := enums.PaymentEventTypeUpdated
		if outcome.AutoPromoted {
			eventType = enums.PaymentEventTypeAutoPromoted
		}
		_, err = s.ledger.WithTx(tx).RecordEvent(ctx, ledger.RecordPaymentEventInput{
			OrderID:         orderID,
			Type:            eventType,
			PreviousStatus:  order.PaymentStatus,
			RequestedStatus: outcome.RequestedStatus,
			FinalStatus:     outcome.FinalStatus,
			PreviousPaid:    outcome.PreviousPaid,
			InputAmount:     req.PaidAmount,
			NewPaid:         outcome.PaidAmount,
			ChangeAmount:    outcome.ChangeAmount,
			RemainingAmount: outcome.RemainingAmount,
			PaymentMethodID: methodID,
		})
		return err
	})
	if err != nil {
		s.metrics.IncFailure("payment.update")
		if typed := pkgerrors.As(err); typed != nil && typed.Code() != pkgerrors.CodeDependency && typed.Code() != pkgerrors.CodeInternal {
			s.logg.Warn(s.logg.WithField(ctx, "reason", typed.Message()), "payment.update_rejected")
			return nil, err
		}
		s.logg.Error(ctx, "payment.update_failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment update failed")
	}

	s.metrics.IncPaymentUpdate(outcome.RequestedStatus.String(), outcome.FinalStatus.String())
	ctx = s.logg.WithFields(ctx, map[string]any{
		"requested_status": outcome.RequestedStatus.String(),
		"final_status":     outcome.FinalStatus.String(),
		"paid_amount":      outcome.PaidAmount.String(),
	})
	message := messageUpdated + outcome.FinalStatus.String()
	if outcome.AutoPromoted {
		s.metrics.IncAutoPromotion()
		s.logg.Info(ctx, "payment.auto_promoted")
		message = messageAutoPromoted
	} else {
		s.logg.Info(ctx, "payment.updated")
	}

	return &Result{
		Success: true,
		Message: message,
		Data: &ResultData{
			PaidAmount:      outcome.PaidAmount,
			ChangeAmount:    outcome.ChangeAmount,
			RemainingAmount: outcome.RemainingAmount,
			PaymentStatus:   outcome.FinalStatus,
		},
	}, nil
}

func (s *service) Summary(ctx context.Context, orderID uuid.UUID) (*Summary, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	summary := Summarize(*order)
	return &summary, nil
}

func (s *service) History(ctx context.Context, orderID uuid.UUID) ([]models.PaymentEvent, error) {
	if _, err := s.load(ctx, orderID); err != nil {
		return nil, err
	}
	return s.ledger.ListByOrder(ctx, orderID)
}

func (s *service) load(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

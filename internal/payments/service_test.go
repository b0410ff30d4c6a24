package payments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/laundry-backend/internal/catalog"
	"github.com/angelmondragon/laundry-backend/internal/ledger"
	"github.com/angelmondragon/laundry-backend/internal/orders"
	"github.com/angelmondragon/laundry-backend/pkg/db"
	"github.com/angelmondragon/laundry-backend/pkg/db/dbtest"
	"github.com/angelmondragon/laundry-backend/pkg/db/models"
	"github.com/angelmondragon/laundry-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/laundry-backend/pkg/errors"
	"github.com/angelmondragon/laundry-backend/pkg/logger"
	"github.com/angelmondragon/laundry-backend/pkg/metrics"
	"github.com/angelmondragon/laundry-backend/pkg/money"
)

type fixture struct {
	conn    *gorm.DB
	orders  orders.Repository
	ledger  ledger.Service
	methods catalog.Service
	method  models.PaymentMethod
	metrics *metrics.LaundryMetrics
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	conn := dbtest.Open(t)
	events, err := ledger.NewService(ledger.NewRepository(conn))
	require.NoError(t, err)
	methods, err := catalog.NewService(catalog.NewRepository(conn))
	require.NoError(t, err)
	return fixture{
		conn:    conn,
		orders:  orders.NewRepository(conn),
		ledger:  events,
		methods: methods,
		method:  dbtest.PaymentMethod(t, conn, "Cash"),
		metrics: metrics.NewLaundryMetrics(prometheus.NewRegistry()),
	}
}

func (f fixture) service(t *testing.T, events ledger.Service) Service {
	t.Helper()
	if events == nil {
		events = f.ledger
	}
	svc, err := NewService(f.orders, events, f.methods, db.NewFromGorm(f.conn), logger.Nop(), f.metrics)
	require.NoError(t, err)
	return svc
}

func (f fixture) seedOrder(t *testing.T, total, paid int64, status enums.PaymentStatus) *models.Order {
	t.Helper()
	customer := dbtest.Customer(t, f.conn, "Siti")
	order := &models.Order{
		OrderCode:     "ORD-20250715-" + uuid.NewString()[:4],
		CustomerID:    customer.ID,
		OrderDate:     time.Now().UTC(),
		Status:        enums.OrderStatusPending,
		PaymentStatus: status,
		PickupType:    enums.PickupTypeDropOff,
		DeliveryType:  enums.DeliveryTypePickup,
		Subtotal:      money.FromInt(total),
		TotalAmount:   money.FromInt(total),
		PaidAmount:    money.FromInt(paid),
	}
	require.NoError(t, f.orders.CreateOrder(context.Background(), order))
	return order
}

type failingLedger struct {
	ledger.Service
}

func (f failingLedger) WithTx(tx *gorm.DB) ledger.Service {
	return f
}

func (f failingLedger) RecordEvent(ctx context.Context, input ledger.RecordPaymentEventInput) (*models.PaymentEvent, error) {
	return nil, errors.New("audit table unavailable")
}

func TestUpdatePaymentAutoPromotesPartial(t *testing.T) {
	f := newFixture(t)
	svc := f.service(t, nil)
	order := f.seedOrder(t, 100000, 60000, enums.PaymentStatusPartial)
	ctx := context.Background()

	res, err := svc.UpdatePayment(ctx, order.ID, Request{
		PaymentStatus:   enums.PaymentStatusPartial,
		PaidAmount:      money.FromInt(40000),
		PaymentMethodID: &f.method.ID,
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, messageAutoPromoted, res.Message)
	assert.Equal(t, enums.PaymentStatusPaid, res.Data.PaymentStatus)
	assert.True(t, res.Data.PaidAmount.Equal(money.FromInt(100000)))
	assert.True(t, res.Data.RemainingAmount.IsZero())

	stored, err := f.orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusPaid, stored.PaymentStatus)
	assert.True(t, stored.PaidAmount.Equal(money.FromInt(100000)))
	require.NotNil(t, stored.PaymentMethodID)
	assert.Equal(t, f.method.ID, *stored.PaymentMethodID)

	history, err := svc.History(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, enums.PaymentEventTypeAutoPromoted, history[0].Type)
	assert.Equal(t, enums.PaymentStatusPartial, history[0].RequestedStatus)
	assert.Equal(t, enums.PaymentStatusPaid, history[0].FinalStatus)
	assert.True(t, history[0].PreviousPaid.Equal(money.FromInt(60000)))
}

func TestUpdatePaymentRejectsInsufficientPaid(t *testing.T) {
	f := newFixture(t)
	svc := f.service(t, nil)
	order := f.seedOrder(t, 50000, 0, enums.PaymentStatusUnpaid)
	ctx := context.Background()

	_, err := svc.UpdatePayment(ctx, order.ID, Request{
		PaymentStatus:   enums.PaymentStatusPaid,
		PaidAmount:      money.FromInt(30000),
		PaymentMethodID: &f.method.ID,
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeBusinessRule))

	stored, err := f.orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusUnpaid, stored.PaymentStatus)
	assert.True(t, stored.PaidAmount.IsZero())

	events, err := f.ledger.ListByOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestUpdatePaymentRollsBackWhenAuditFails(t *testing.T) {
	f := newFixture(t)
	svc := f.service(t, failingLedger{})
	order := f.seedOrder(t, 80000, 0, enums.PaymentStatusUnpaid)
	ctx := context.Background()

	_, err := svc.UpdatePayment(ctx, order.ID, Request{
		PaymentStatus:   enums.PaymentStatusPaid,
		PaidAmount:      money.FromInt(100000),
		PaymentMethodID: &f.method.ID,
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	assert.Contains(t, err.Error(), "audit table unavailable")

	stored, err := f.orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusUnpaid, stored.PaymentStatus)
	assert.True(t, stored.PaidAmount.IsZero())
	assert.Nil(t, stored.PaymentMethodID)
}

func TestUpdatePaymentUnpaidClearsMethod(t *testing.T) {
	f := newFixture(t)
	svc := f.service(t, nil)
	order := f.seedOrder(t, 40000, 0, enums.PaymentStatusUnpaid)
	ctx := context.Background()

	_, err := svc.UpdatePayment(ctx, order.ID, Request{
		PaymentStatus:   enums.PaymentStatusPaid,
		PaidAmount:      money.FromInt(50000),
		PaymentMethodID: &f.method.ID,
	})
	require.NoError(t, err)

	res, err := svc.UpdatePayment(ctx, order.ID, Request{PaymentStatus: enums.PaymentStatusUnpaid})
	require.NoError(t, err)
	assert.Equal(t, "Payment updated with status unpaid", res.Message)
	assert.True(t, res.Data.ChangeAmount.Equal(money.FromInt(40000)))

	stored, err := f.orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.PaymentMethodID)
	assert.True(t, stored.PaidAmount.IsZero())

	history, err := svc.History(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestUpdatePaymentRejectsCancelledOrder(t *testing.T) {
	f := newFixture(t)
	svc := f.service(t, nil)
	order := f.seedOrder(t, 40000, 0, enums.PaymentStatusUnpaid)
	ctx := context.Background()
	require.NoError(t, f.orders.UpdateOrder(ctx, order.ID, map[string]any{"status": enums.OrderStatusCancelled}))

	_, err := svc.UpdatePayment(ctx, order.ID, Request{
		PaymentStatus:   enums.PaymentStatusPaid,
		PaidAmount:      money.FromInt(40000),
		PaymentMethodID: &f.method.ID,
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
}

func TestUpdatePaymentUnknownOrder(t *testing.T) {
	f := newFixture(t)
	svc := f.service(t, nil)
	_, err := svc.UpdatePayment(context.Background(), uuid.New(), Request{PaymentStatus: enums.PaymentStatusUnpaid})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestUpdatePaymentRejectsUnknownMethod(t *testing.T) {
	f := newFixture(t)
	svc := f.service(t, nil)
	order := f.seedOrder(t, 40000, 0, enums.PaymentStatusUnpaid)
	missing := uuid.New()

	_, err := svc.UpdatePayment(context.Background(), order.ID, Request{
		PaymentStatus:   enums.PaymentStatusPaid,
		PaidAmount:      money.FromInt(40000),
		PaymentMethodID: &missing,
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestPaymentSummary(t *testing.T) {
	f := newFixture(t)
	svc := f.service(t, nil)
	order := f.seedOrder(t, 80000, 20000, enums.PaymentStatusPartial)

	summary, err := svc.Summary(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, summary.RemainingAmount.Equal(money.FromInt(60000)))
	assert.Equal(t, "25", summary.PaymentPercentage.String())
	assert.True(t, summary.CanUpdate)
}

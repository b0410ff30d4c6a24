package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	internalpayments "github.com/angelmondragon/laundry-backend/internal/payments"
	"github.com/angelmondragon/laundry-backend/pkg/db/models"
	"github.com/angelmondragon/laundry-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/laundry-backend/pkg/errors"
	"github.com/angelmondragon/laundry-backend/pkg/money"
)

type stubPaymentsService struct {
	updateFn  func(ctx context.Context, orderID uuid.UUID, req internalpayments.Request) (*internalpayments.Result, error)
	summaryFn func(ctx context.Context, orderID uuid.UUID) (*internalpayments.Summary, error)
	historyFn func(ctx context.Context, orderID uuid.UUID) ([]models.PaymentEvent, error)
}

func (s stubPaymentsService) UpdatePayment(ctx context.Context, orderID uuid.UUID, req internalpayments.Request) (*internalpayments.Result, error) {
	return s.updateFn(ctx, orderID, req)
}

func (s stubPaymentsService) Summary(ctx context.Context, orderID uuid.UUID) (*internalpayments.Summary, error) {
	return s.summaryFn(ctx, orderID)
}

func (s stubPaymentsService) History(ctx context.Context, orderID uuid.UUID) ([]models.PaymentEvent, error) {
	return s.historyFn(ctx, orderID)
}

func request(method, body string, orderID string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, "/api/v1/orders/"+orderID+"/payment", nil)
	} else {
		req = httptest.NewRequest(method, "/api/v1/orders/"+orderID+"/payment", strings.NewReader(body))
	}
	rc := chi.NewRouteContext()
	rc.URLParams.Add("orderId", orderID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestUpdateWritesMessageAndData(t *testing.T) {
	orderID := uuid.New()
	methodID := uuid.New()
	svc := stubPaymentsService{updateFn: func(_ context.Context, id uuid.UUID, req internalpayments.Request) (*internalpayments.Result, error) {
		if id != orderID {
			t.Fatalf("unexpected order id %s", id)
		}
		if req.PaymentStatus != enums.PaymentStatusPartial || !req.PaidAmount.Equal(money.FromInt(60000)) {
			t.Fatalf("unexpected request %+v", req)
		}
		if req.PaymentMethodID == nil || *req.PaymentMethodID != methodID {
			t.Fatalf("payment method not decoded")
		}
		return &internalpayments.Result{
			Success: true,
			Message: "Payment updated. Status was changed to paid automatically because the payment covers the total.",
			Data: &internalpayments.ResultData{
				PaidAmount:    money.FromInt(100000),
				ChangeAmount:  money.FromInt(0),
				PaymentStatus: enums.PaymentStatusPaid,
			},
		}, nil
	}}

	body := `{"payment_status":"partial","paid_amount":"Rp 60.000","payment_method_id":"` + methodID.String() + `"}`
	resp := httptest.NewRecorder()
	Update(svc, nil).ServeHTTP(resp, request(http.MethodPost, body, orderID.String()))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Message string `json:"message"`
		Data    struct {
			PaymentStatus string `json:"payment_status"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.PaymentStatus != "paid" || !strings.Contains(envelope.Message, "automatically") {
		t.Fatalf("unexpected envelope %+v", envelope)
	}
}

func TestUpdateInsufficientPaymentIs422(t *testing.T) {
	svc := stubPaymentsService{updateFn: func(context.Context, uuid.UUID, internalpayments.Request) (*internalpayments.Result, error) {
		return nil, pkgerrors.New(pkgerrors.CodeBusinessRule, "paid amount does not cover the outstanding balance").
			WithDetails(map[string]any{"outstanding_amount": "50000", "paid_amount": "40000"})
	}}
	body := `{"payment_status":"paid","paid_amount":40000,"payment_method_id":"` + uuid.NewString() + `"}`
	resp := httptest.NewRecorder()
	Update(svc, nil).ServeHTTP(resp, request(http.MethodPost, body, uuid.NewString()))
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "outstanding_amount") {
		t.Fatalf("expected details in body: %s", resp.Body.String())
	}
}

func TestSummary(t *testing.T) {
	svc := stubPaymentsService{summaryFn: func(context.Context, uuid.UUID) (*internalpayments.Summary, error) {
		return &internalpayments.Summary{
			TotalAmount:       money.FromInt(150000),
			PaidAmount:        money.FromInt(100000),
			PaymentPercentage: decimal.RequireFromString("66.67"),
			CanUpdate:         true,
		}, nil
	}}
	resp := httptest.NewRecorder()
	Summary(svc, nil).ServeHTTP(resp, request(http.MethodGet, "", uuid.NewString()))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"payment_percentage":"66.67"`) {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}

func TestHistoryNotFound(t *testing.T) {
	svc := stubPaymentsService{historyFn: func(context.Context, uuid.UUID) ([]models.PaymentEvent, error) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}}
	resp := httptest.NewRecorder()
	History(svc, nil).ServeHTTP(resp, request(http.MethodGet, "", uuid.NewString()))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestHistoryListsEvents(t *testing.T) {
	svc := stubPaymentsService{historyFn: func(_ context.Context, orderID uuid.UUID) ([]models.PaymentEvent, error) {
		return []models.PaymentEvent{{ID: uuid.New(), OrderID: orderID, Type: enums.PaymentEventTypeAutoPromoted, FinalStatus: enums.PaymentStatusPaid}}, nil
	}}
	resp := httptest.NewRecorder()
	History(svc, nil).ServeHTTP(resp, request(http.MethodGet, "", uuid.NewString()))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"type":"payment_auto_promoted"`) {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}

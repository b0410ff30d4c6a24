package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	internalorders "github.com/angelmondragon/laundry-backend/internal/orders"
	"github.com/angelmondragon/laundry-backend/internal/pricing"
	"github.com/angelmondragon/laundry-backend/pkg/db/models"
	"github.com/angelmondragon/laundry-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/laundry-backend/pkg/errors"
	"github.com/angelmondragon/laundry-backend/pkg/metrics"
	"github.com/angelmondragon/laundry-backend/pkg/money"
	"github.com/angelmondragon/laundry-backend/pkg/pagination"
)

type stubPricer struct {
	recalculateFn func(ctx context.Context, state pricing.FormState) (pricing.Patch, error)
}

func (s stubPricer) Recalculate(ctx context.Context, state pricing.FormState) (pricing.Patch, error) {
	return s.recalculateFn(ctx, state)
}

type stubOrdersService struct {
	createFn       func(ctx context.Context, input internalorders.OrderInput) (*models.Order, error)
	updateFn       func(ctx context.Context, id uuid.UUID, input internalorders.OrderInput) (*models.Order, error)
	getFn          func(ctx context.Context, id uuid.UUID) (*models.Order, error)
	listFn         func(ctx context.Context, params pagination.Params, filters internalorders.ListFilters) (*internalorders.OrderList, error)
	updateStatusFn func(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*models.Order, error)
}

func (s *stubOrdersService) Create(ctx context.Context, input internalorders.OrderInput) (*models.Order, error) {
	return s.createFn(ctx, input)
}

func (s *stubOrdersService) Update(ctx context.Context, id uuid.UUID, input internalorders.OrderInput) (*models.Order, error) {
	return s.updateFn(ctx, id, input)
}

func (s *stubOrdersService) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.getFn(ctx, id)
}

func (s *stubOrdersService) List(ctx context.Context, params pagination.Params, filters internalorders.ListFilters) (*internalorders.OrderList, error) {
	return s.listFn(ctx, params, filters)
}

func (s *stubOrdersService) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*models.Order, error) {
	return s.updateStatusFn(ctx, id, status)
}

func withOrderID(req *http.Request, id string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add("orderId", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestQuoteDefaultsFulfilmentAndRecordsDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewLaundryMetrics(reg)
	var got pricing.FormState
	pricer := stubPricer{recalculateFn: func(_ context.Context, state pricing.FormState) (pricing.Patch, error) {
		got = state
		return pricing.Patch{TotalAmount: money.FromInt(57500)}, nil
	}}

	body := `{"lines":[{"service_id":"` + uuid.NewString() + `","weight":"2.5"}],"tax_amount":"Rp 1.000"}`
	resp := httptest.NewRecorder()
	Quote(pricer, m, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/orders/quote", strings.NewReader(body)))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if got.PickupType != enums.PickupTypeDropOff || got.DeliveryType != enums.DeliveryTypePickup {
		t.Fatalf("expected walk-in defaults, got %+v", got)
	}
	if len(got.Lines) != 1 || got.Lines[0].Weight.String() != "2.5" {
		t.Fatalf("unexpected lines %+v", got.Lines)
	}
	if !got.TaxAmount.Equal(money.FromInt(1000)) {
		t.Fatalf("expected formatted tax parsed, got %s", got.TaxAmount)
	}

	var envelope struct {
		Data struct {
			TotalAmount json.Number `json:"total_amount"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.TotalAmount.String() != "57500" {
		t.Fatalf("unexpected total %s", envelope.Data.TotalAmount)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if count := histogramCount(families, "laundry_operation_duration_seconds"); count != 1 {
		t.Fatalf("expected one quote observation, got %d", count)
	}
}

func histogramCount(families []*dto.MetricFamily, name string) uint64 {
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		var total uint64
		for _, metric := range mf.GetMetric() {
			total += metric.GetHistogram().GetSampleCount()
		}
		return total
	}
	return 0
}

func TestQuoteRejectsUnknownFields(t *testing.T) {
	pricer := stubPricer{recalculateFn: func(context.Context, pricing.FormState) (pricing.Patch, error) {
		t.Fatal("pricer must not run")
		return pricing.Patch{}, nil
	}}
	resp := httptest.NewRecorder()
	Quote(pricer, nil, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/orders/quote", strings.NewReader(`{"total_amount":1}`)))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestListParsesFiltersAndWritesMeta(t *testing.T) {
	customerID := uuid.New()
	svc := &stubOrdersService{listFn: func(_ context.Context, params pagination.Params, filters internalorders.ListFilters) (*internalorders.OrderList, error) {
		if params.Page != 2 || params.PerPage != 10 {
			t.Fatalf("unexpected params %+v", params)
		}
		if filters.Status == nil || *filters.Status != enums.OrderStatusWashing {
			t.Fatalf("status not parsed")
		}
		if filters.PaymentStatus == nil || *filters.PaymentStatus != enums.PaymentStatusPartial {
			t.Fatalf("payment status not parsed")
		}
		if filters.CustomerID == nil || *filters.CustomerID != customerID {
			t.Fatalf("customer not parsed")
		}
		if filters.Query != "ORD-2024" {
			t.Fatalf("unexpected query %q", filters.Query)
		}
		return &internalorders.OrderList{
			Orders: []models.Order{{ID: uuid.New(), OrderCode: "ORD-20240310-0001"}},
			Meta:   pagination.NewMeta(params, 11),
		}, nil
	}}

	url := "/api/v1/orders?page=2&per_page=10&status=washing&payment_status=partial&q=+ORD-2024+&customer_id=" + customerID.String()
	resp := httptest.NewRecorder()
	List(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, url, nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data []internalorders.OrderView `json:"data"`
		Meta pagination.Meta            `json:"meta"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0].OrderCode != "ORD-20240310-0001" {
		t.Fatalf("unexpected orders %+v", envelope.Data)
	}
	if envelope.Meta.TotalPages != 2 || envelope.Meta.Total != 11 {
		t.Fatalf("unexpected meta %+v", envelope.Meta)
	}
}

func TestListRejectsUnknownStatus(t *testing.T) {
	svc := &stubOrdersService{}
	resp := httptest.NewRecorder()
	List(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/orders?status=lost", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCreateReturnsCreated(t *testing.T) {
	customerID := uuid.New()
	serviceID := uuid.New()
	svc := &stubOrdersService{createFn: func(_ context.Context, input internalorders.OrderInput) (*models.Order, error) {
		if input.CustomerID != customerID || len(input.Lines) != 1 || input.Lines[0].ServiceID != serviceID {
			t.Fatalf("unexpected input %+v", input)
		}
		return &models.Order{ID: uuid.New(), OrderCode: "ORD-20240310-4821", CustomerID: customerID, TotalAmount: money.FromInt(46000)}, nil
	}}

	body := `{"customer_id":"` + customerID.String() + `","lines":[{"service_id":"` + serviceID.String() + `","weight":4}]}`
	resp := httptest.NewRecorder()
	Create(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body)))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestCreateValidationDetails(t *testing.T) {
	svc := &stubOrdersService{createFn: func(context.Context, internalorders.OrderInput) (*models.Order, error) {
		return nil, pkgerrors.Validation(pkgerrors.FieldErrors{"paid_amount": "partial payment must be less than the total"})
	}}
	body := `{"customer_id":"` + uuid.NewString() + `","lines":[{"service_id":"` + uuid.NewString() + `","weight":1}]}`
	resp := httptest.NewRecorder()
	Create(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body)))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error.Details["paid_amount"] == "" {
		t.Fatalf("expected field detail, got %+v", envelope.Error.Details)
	}
}

func TestDetailNotFound(t *testing.T) {
	svc := &stubOrdersService{getFn: func(context.Context, uuid.UUID) (*models.Order, error) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}}
	id := uuid.NewString()
	req := withOrderID(httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+id, nil), id)
	resp := httptest.NewRecorder()
	Detail(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestDetailRejectsMalformedID(t *testing.T) {
	req := withOrderID(httptest.NewRequest(http.MethodGet, "/api/v1/orders/abc", nil), "abc")
	resp := httptest.NewRecorder()
	Detail(&stubOrdersService{}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestUpdatePassesOrderID(t *testing.T) {
	orderID := uuid.New()
	svc := &stubOrdersService{updateFn: func(_ context.Context, id uuid.UUID, input internalorders.OrderInput) (*models.Order, error) {
		if id != orderID {
			t.Fatalf("unexpected id %s", id)
		}
		return &models.Order{ID: id}, nil
	}}
	body := `{"customer_id":"` + uuid.NewString() + `","lines":[{"service_id":"` + uuid.NewString() + `","weight":1}]}`
	req := withOrderID(httptest.NewRequest(http.MethodPut, "/api/v1/orders/"+orderID.String(), strings.NewReader(body)), orderID.String())
	resp := httptest.NewRecorder()
	Update(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestUpdateStatus(t *testing.T) {
	orderID := uuid.New()
	svc := &stubOrdersService{updateStatusFn: func(_ context.Context, id uuid.UUID, status enums.OrderStatus) (*models.Order, error) {
		if status != enums.OrderStatusReady {
			t.Fatalf("unexpected status %s", status)
		}
		return &models.Order{ID: id, Status: status}, nil
	}}
	req := withOrderID(httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"status":"ready"}`)), orderID.String())
	resp := httptest.NewRecorder()
	UpdateStatus(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	req = withOrderID(httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"status":"teleported"}`)), orderID.String())
	resp = httptest.NewRecorder()
	UpdateStatus(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status got %d", resp.Code)
	}
}

func TestUpdateStatusTerminalConflict(t *testing.T) {
	svc := &stubOrdersService{updateStatusFn: func(context.Context, uuid.UUID, enums.OrderStatus) (*models.Order, error) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "delivered orders cannot change status")
	}}
	id := uuid.NewString()
	req := withOrderID(httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"status":"washing"}`)), id)
	resp := httptest.NewRecorder()
	UpdateStatus(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

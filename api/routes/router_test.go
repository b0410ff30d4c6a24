package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/laundry-backend/internal/catalog"
	"github.com/angelmondragon/laundry-backend/internal/discounts"
	"github.com/angelmondragon/laundry-backend/internal/ledger"
	"github.com/angelmondragon/laundry-backend/internal/orders"
	"github.com/angelmondragon/laundry-backend/internal/payments"
	"github.com/angelmondragon/laundry-backend/internal/pricing"
	"github.com/angelmondragon/laundry-backend/internal/reports"
	"github.com/angelmondragon/laundry-backend/pkg/config"
	"github.com/angelmondragon/laundry-backend/pkg/db"
	"github.com/angelmondragon/laundry-backend/pkg/db/dbtest"
	"github.com/angelmondragon/laundry-backend/pkg/db/models"
	"github.com/angelmondragon/laundry-backend/pkg/logger"
	"github.com/angelmondragon/laundry-backend/pkg/metrics"
)

type harness struct {
	conn    *gorm.DB
	handler http.Handler
	service models.Service
	method  models.PaymentMethod
	cust    models.Customer
}

func testConfig() *config.Config {
	return &config.Config{
		App:     config.AppConfig{Env: "test", Port: "0", Name: "laundry-api"},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

func newHarness(t *testing.T) harness {
	t.Helper()
	conn := dbtest.Open(t)
	client := db.NewFromGorm(conn)
	logg := logger.Nop()
	reg := prometheus.NewRegistry()
	m := metrics.NewLaundryMetrics(reg)

	catalogSvc, err := catalog.NewService(catalog.NewRepository(conn))
	require.NoError(t, err)
	discountSvc, err := discounts.NewService(discounts.NewRepository(conn), time.Now)
	require.NoError(t, err)
	engine, err := pricing.NewEngine(catalogSvc, discountSvc)
	require.NoError(t, err)
	ordersSvc, err := orders.NewService(orders.NewRepository(conn), client, engine, catalogSvc, logg, orders.WithMetrics(m))
	require.NoError(t, err)
	events, err := ledger.NewService(ledger.NewRepository(conn))
	require.NoError(t, err)
	paymentsSvc, err := payments.NewService(orders.NewRepository(conn), events, catalogSvc, client, logg, m)
	require.NoError(t, err)
	reportsSvc, err := reports.NewService(reports.NewRepository(conn), logg)
	require.NoError(t, err)

	handler := NewRouter(testConfig(), logg, Dependencies{
		DB:        client,
		Gatherer:  reg,
		Metrics:   m,
		Catalog:   catalogSvc,
		Discounts: discountSvc,
		Pricer:    engine,
		Orders:    ordersSvc,
		Payments:  paymentsSvc,
		Reports:   reportsSvc,
	})

	return harness{
		conn:    conn,
		handler: handler,
		service: dbtest.Service(t, conn, "Cuci Kering", 7000, 2),
		method:  dbtest.PaymentMethod(t, conn, "Cash"),
		cust:    dbtest.Customer(t, conn, "Budi"),
	}
}

func (h harness) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	h.handler.ServeHTTP(resp, req)
	return resp
}

func decodeData(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Data    map[string]any `json:"data"`
		Message string         `json:"message"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Data
}

func (h harness) orderBody(weight string) map[string]any {
	return map[string]any{
		"customer_id":   h.cust.ID,
		"pickup_type":   "drop_off",
		"delivery_type": "pickup",
		"lines": []map[string]any{
			{"service_id": h.service.ID, "weight": weight},
		},
		"payment_status": "unpaid",
	}
}

func TestHealthRoutes(t *testing.T) {
	h := newHarness(t)

	live := h.do(t, http.MethodGet, "/health/live", nil, nil)
	assert.Equal(t, http.StatusOK, live.Code)

	ready := h.do(t, http.MethodGet, "/health/ready", nil, nil)
	assert.Equal(t, http.StatusOK, ready.Code)
}

func TestMetricsRouteServesLaundryCollectors(t *testing.T) {
	h := newHarness(t)

	quote := h.do(t, http.MethodPost, "/api/v1/orders/quote", map[string]any{
		"lines": []map[string]any{{"service_id": h.service.ID, "weight": "2"}},
	}, nil)
	require.Equal(t, http.StatusOK, quote.Code)

	resp := h.do(t, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "laundry_")
}

func TestMetricsRouteDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Enabled = false
	handler := NewRouter(cfg, logger.Nop(), Dependencies{Gatherer: prometheus.NewRegistry()})

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestCatalogRoutes(t *testing.T) {
	h := newHarness(t)

	services := h.do(t, http.MethodGet, "/api/v1/services", nil, nil)
	require.Equal(t, http.StatusOK, services.Code)
	assert.Contains(t, services.Body.String(), "Cuci Kering")
	assert.Contains(t, services.Body.String(), "Rp 7.000/kg")

	methods := h.do(t, http.MethodGet, "/api/v1/payment-methods", nil, nil)
	require.Equal(t, http.StatusOK, methods.Code)
	assert.Contains(t, methods.Body.String(), "Cash")
}

func TestUnknownRouteIs404(t *testing.T) {
	h := newHarness(t)
	resp := h.do(t, http.MethodGet, "/api/v1/customers", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestOrderLifecycleThroughRouter(t *testing.T) {
	h := newHarness(t)

	created := h.do(t, http.MethodPost, "/api/v1/orders", h.orderBody("3"), nil)
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	order := decodeData(t, created)
	id, _ := order["id"].(string)
	require.NotEmpty(t, id)
	assert.EqualValues(t, 21000, order["total_amount"])
	assert.True(t, strings.HasPrefix(order["order_code"].(string), "ORD-"))

	detail := h.do(t, http.MethodGet, "/api/v1/orders/"+id, nil, nil)
	require.Equal(t, http.StatusOK, detail.Code)

	list := h.do(t, http.MethodGet, "/api/v1/orders?payment_status=unpaid", nil, nil)
	require.Equal(t, http.StatusOK, list.Code)
	assert.Contains(t, list.Body.String(), id)

	pay := h.do(t, http.MethodPost, "/api/v1/orders/"+id+"/payment", map[string]any{
		"payment_status":    "partial",
		"paid_amount":       21000,
		"payment_method_id": h.method.ID,
	}, nil)
	require.Equal(t, http.StatusOK, pay.Code, pay.Body.String())
	assert.Contains(t, pay.Body.String(), "changed to paid automatically")

	summary := h.do(t, http.MethodGet, "/api/v1/orders/"+id+"/payment", nil, nil)
	require.Equal(t, http.StatusOK, summary.Code)
	assert.Contains(t, summary.Body.String(), `"paid"`)

	history := h.do(t, http.MethodGet, "/api/v1/orders/"+id+"/payments", nil, nil)
	require.Equal(t, http.StatusOK, history.Code)
	assert.Contains(t, history.Body.String(), "payment_auto_promoted")

	status := h.do(t, http.MethodPost, "/api/v1/orders/"+id+"/status", map[string]any{"status": "washing"}, nil)
	require.Equal(t, http.StatusOK, status.Code, status.Body.String())

	report := h.do(t, http.MethodGet, "/api/v1/reports/financial?report_type=income", nil, nil)
	require.Equal(t, http.StatusOK, report.Code, report.Body.String())
	assert.Contains(t, report.Body.String(), "Budi")
}

func TestPaymentRejectsInsufficientPaidStatus(t *testing.T) {
	h := newHarness(t)

	created := h.do(t, http.MethodPost, "/api/v1/orders", h.orderBody("2"), nil)
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	id := decodeData(t, created)["id"].(string)

	pay := h.do(t, http.MethodPost, "/api/v1/orders/"+id+"/payment", map[string]any{
		"payment_status": "paid",
		"paid_amount":    1000,
	}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, pay.Code)
	assert.Contains(t, pay.Body.String(), "BUSINESS_RULE_VIOLATION")
}

func TestMutatingRoutesPassThroughWithoutRedis(t *testing.T) {
	h := newHarness(t)
	headers := map[string]string{"Idempotency-Key": "abc-123"}

	first := h.do(t, http.MethodPost, "/api/v1/orders", h.orderBody("1"), headers)
	second := h.do(t, http.MethodPost, "/api/v1/orders", h.orderBody("1"), headers)
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	require.Equal(t, http.StatusCreated, second.Code, second.Body.String())
	assert.Empty(t, second.Header().Get("Idempotent-Replay"))
	assert.NotEqual(t, decodeData(t, first)["id"], decodeData(t, second)["id"])
}

func TestRequestIDEchoed(t *testing.T) {
	h := newHarness(t)
	resp := h.do(t, http.MethodGet, "/health/live", nil, map[string]string{"X-Request-Id": "req-42"})
	assert.Equal(t, "req-42", resp.Header().Get("X-Request-Id"))
}

func TestUpdateWithUnknownServiceIsValidationError(t *testing.T) {
	h := newHarness(t)

	created := h.do(t, http.MethodPost, "/api/v1/orders", h.orderBody("3"), nil)
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	id := decodeData(t, created)["id"].(string)

	body := h.orderBody("2")
	body["lines"] = []map[string]any{{"service_id": uuid.New(), "weight": "2"}}
	resp := h.do(t, http.MethodPut, "/api/v1/orders/"+id, body, nil)
	require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), "lines.0.service_id")

	detail := h.do(t, http.MethodGet, "/api/v1/orders/"+id, nil, nil)
	require.Equal(t, http.StatusOK, detail.Code)
	order := decodeData(t, detail)
	assert.EqualValues(t, 21000, order["total_amount"])
	assert.Len(t, order["lines"], 1)
}

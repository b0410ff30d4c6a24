package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/angelmondragon/laundry-backend/pkg/errors"
)

type lineBody struct {
	ServiceID string `json:"service_id" validate:"required"`
}

type orderBody struct {
	CustomerID string     `json:"customer_id" validate:"required"`
	Lines      []lineBody `json:"lines" validate:"required,min=1,dive"`
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"customer_id":"c","lines":[{"service_id":"s"}],"extra":1}`))
	var body orderBody
	err := DecodeJSONBody(req, &body)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyEmpty(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	var body orderBody
	err := DecodeJSONBody(req, &body)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Message() != "request body is required" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestDecodeJSONBodyReportsNestedFieldPaths(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"customer_id":"c","lines":[{"service_id":"s"},{"service_id":""}]}`))
	var body orderBody
	err := DecodeJSONBody(req, &body)
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	fields, ok := typed.Details().(pkgerrors.FieldErrors)
	if !ok {
		t.Fatalf("unexpected details %T", typed.Details())
	}
	if fields["lines.1.service_id"] != "service_id is required" {
		t.Fatalf("unexpected field errors %v", fields)
	}
}

func TestDecodeJSONBodyRequiresLines(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"customer_id":"c","lines":[]}`))
	var body orderBody
	err := DecodeJSONBody(req, &body)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Message() != "lines needs at least 1 entries" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=3&per_page=500", nil)
	page, err := ParseQueryInt(req, "page", 1, 1, 1000)
	if err != nil || page != 3 {
		t.Fatalf("unexpected page %d err %v", page, err)
	}
	if _, err := ParseQueryInt(req, "per_page", 25, 1, 100); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected out of range error, got %v", err)
	}
	missing, err := ParseQueryInt(req, "absent", 7, 1, 10)
	if err != nil || missing != 7 {
		t.Fatalf("expected default, got %d %v", missing, err)
	}
}

func TestParseQueryDate(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?start_date=2024-03-01&end_date=03/31/2024", nil)
	start, err := ParseQueryDate(req, "start_date", time.Time{})
	if err != nil {
		t.Fatalf("unexpected err %v", err)
	}
	if !start.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start %v", start)
	}
	if _, err := ParseQueryDate(req, "end_date", time.Time{}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseQueryUUID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?payment_method_id=nope", nil)
	if _, err := ParseQueryUUID(req, "payment_method_id"); err == nil {
		t.Fatalf("expected error")
	}
	id, err := ParseQueryUUID(req, "customer_id")
	if err != nil || id != nil {
		t.Fatalf("expected nil id, got %v %v", id, err)
	}
}

func TestParseURLUUID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/orders/x", nil)
	rc := chi.NewRouteContext()
	rc.URLParams.Add("orderId", "8a0d1f2e-3b4c-4d5e-8f60-718293a4b5c6")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))

	id, err := ParseURLUUID(req, "orderId")
	if err != nil || id.String() != "8a0d1f2e-3b4c-4d5e-8f60-718293a4b5c6" {
		t.Fatalf("unexpected id %v err %v", id, err)
	}
	if _, err := ParseURLUUID(req, "missing"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  ORD-2024  ", 5); got != "ORD-2" {
		t.Fatalf("unexpected %q", got)
	}
	if got := SanitizeString("abc", 0); got != "abc" {
		t.Fatalf("no limit should keep input, got %q", got)
	}
}

func TestSanitizeStringKeepsRunesWhole(t *testing.T) {
	got := SanitizeString(strings.Repeat("a", 49)+"é", 50)
	if !utf8.ValidString(got) {
		t.Fatalf("truncation produced invalid UTF-8: %q", got)
	}
	if got != strings.Repeat("a", 49) {
		t.Fatalf("unexpected %q", got)
	}

	if got := SanitizeString("cuci\xffkering", 20); got != "cucikering" {
		t.Fatalf("invalid bytes should be dropped, got %q", got)
	}
}

package orders

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/laundry-backend/api/responses"
	"github.com/angelmondragon/laundry-backend/api/validators"
	internalorders "github.com/angelmondragon/laundry-backend/internal/orders"
	"github.com/angelmondragon/laundry-backend/internal/pricing"
	"github.com/angelmondragon/laundry-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/laundry-backend/pkg/errors"
	"github.com/angelmondragon/laundry-backend/pkg/logger"
	"github.com/angelmondragon/laundry-backend/pkg/metrics"
	"github.com/angelmondragon/laundry-backend/pkg/money"
	"github.com/angelmondragon/laundry-backend/pkg/pagination"
)

const maxSearchLength = 50

// Pricer recomputes the derived fields of an order form.
type Pricer interface {
	Recalculate(ctx context.Context, state pricing.FormState) (pricing.Patch, error)
}

type quoteLine struct {
	ID        *uuid.UUID      `json:"id,omitempty"`
	ServiceID uuid.UUID       `json:"service_id"`
	Weight    decimal.Decimal `json:"weight"`
	Notes     *string         `json:"notes,omitempty"`
}

type quoteRequest struct {
	Lines           []quoteLine         `json:"lines"`
	PickupType      enums.PickupType    `json:"pickup_type"`
	DeliveryType    enums.DeliveryType  `json:"delivery_type"`
	DiscountID      *uuid.UUID          `json:"discount_id"`
	TaxAmount       money.Money         `json:"tax_amount"`
	AdditionalFee   money.Money         `json:"additional_fee"`
	PaymentStatus   enums.PaymentStatus `json:"payment_status"`
	PaidAmount      money.Money         `json:"paid_amount"`
	PaymentMethodID *uuid.UUID          `json:"payment_method_id"`
}

func (q quoteRequest) formState() pricing.FormState {
	lines := make([]pricing.Line, len(q.Lines))
	for i, l := range q.Lines {
		lines[i] = pricing.Line{ID: l.ID, ServiceID: l.ServiceID, Weight: l.Weight, Notes: l.Notes}
	}
	pickup := q.PickupType
	if pickup == "" {
		pickup = enums.PickupTypeDropOff
	}
	delivery := q.DeliveryType
	if delivery == "" {
		delivery = enums.DeliveryTypePickup
	}
	return pricing.FormState{
		Lines:           lines,
		PickupType:      pickup,
		DeliveryType:    delivery,
		DiscountID:      q.DiscountID,
		TaxAmount:       q.TaxAmount,
		AdditionalFee:   q.AdditionalFee,
		PaymentStatus:   q.PaymentStatus,
		PaidAmount:      q.PaidAmount,
		PaymentMethodID: q.PaymentMethodID,
	}
}

// Quote recalculates an unsaved order form. Field problems come back inside
// the patch so the form can show them next to the inputs.
func Quote(pricer Pricer, m *metrics.LaundryMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pricer == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing engine unavailable"))
			return
		}
		var payload quoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		start := time.Now()
		patch, err := pricer.Recalculate(r.Context(), payload.formState())
		m.ObserveDuration("quote", time.Since(start))
		if err != nil {
			m.IncFailure("quote")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, patch)
	}
}

// List returns a page of orders filtered by status, payment status, customer
// and a code search.
func List(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		page, err := validators.ParseQueryInt(r, "page", 1, 1, 100000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		perPage, err := validators.ParseQueryInt(r, "per_page", pagination.DefaultPerPage, 1, pagination.MaxPerPage)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters, err := buildListFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), pagination.Params{Page: page, PerPage: perPage}, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		views := make([]internalorders.OrderView, 0, len(list.Orders))
		for _, order := range list.Orders {
			views = append(views, internalorders.NewOrderView(order))
		}
		responses.WriteList(w, views, list.Meta)
	}
}

func buildListFilters(r *http.Request) (internalorders.ListFilters, error) {
	q := r.URL.Query()
	filters := internalorders.ListFilters{
		Query: validators.SanitizeString(q.Get("q"), maxSearchLength),
	}
	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		filters.Status = &status
	}
	if raw := strings.TrimSpace(q.Get("payment_status")); raw != "" {
		status, err := enums.ParsePaymentStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment_status")
		}
		filters.PaymentStatus = &status
	}
	customerID, err := validators.ParseQueryUUID(r, "customer_id")
	if err != nil {
		return filters, err
	}
	filters.CustomerID = customerID
	return filters, nil
}

func Create(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		var payload internalorders.OrderInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Create(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, internalorders.NewOrderView(*order))
	}
}

func Detail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		orderID, err := validators.ParseURLUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalorders.NewOrderView(*order))
	}
}

func Update(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		orderID, err := validators.ParseURLUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload internalorders.OrderInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Update(r.Context(), orderID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalorders.NewOrderView(*order))
	}
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateStatus moves an order through the workflow.
func UpdateStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		orderID, err := validators.ParseURLUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload statusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}
		order, err := svc.UpdateStatus(r.Context(), orderID, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalorders.NewOrderView(*order))
	}
}

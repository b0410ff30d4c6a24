package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/laundry-backend/internal/discounts"
	"github.com/angelmondragon/laundry-backend/pkg/db/models"
	"github.com/angelmondragon/laundry-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/laundry-backend/pkg/errors"
	"github.com/angelmondragon/laundry-backend/pkg/money"
)

// ServiceCatalog resolves the services referenced by lines. Unknown ids are
// absent from the returned map.
type ServiceCatalog interface {
	FindServices(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Service, error)
}

// DiscountResolver applies a selected discount to a subtotal.
type DiscountResolver interface {
	Resolve(ctx context.Context, discountID *uuid.UUID, subtotal money.Money) (discounts.Resolution, error)
}

type Engine struct {
	services  ServiceCatalog
	discounts DiscountResolver
	floor     decimal.Decimal
	now       func() time.Time
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithMinimumWeight overrides the courier weight floor.
func WithMinimumWeight(floor decimal.Decimal) Option {
	return func(e *Engine) {
		if !floor.IsNegative() {
			e.floor = floor
		}
	}
}

func NewEngine(services ServiceCatalog, resolver DiscountResolver, opts ...Option) (*Engine, error) {
	if services == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "service catalog required")
	}
	if resolver == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "discount resolver required")
	}
	e := &Engine{
		services:  services,
		discounts: resolver,
		floor:     MinimumCourierWeight,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// WeightAdjustment is the result of enforcing the courier weight floor.
type WeightAdjustment struct {
	Lines       []Line
	TotalWeight decimal.Decimal
	Adjusted    bool
}

// Summary holds the aggregates of a set of lines.
type Summary struct {
	TotalWeight     decimal.Decimal `json:"total_weight"`
	TotalItems      int             `json:"total_items"`
	Subtotal        money.Money     `json:"subtotal"`
	EstimatedFinish *time.Time      `json:"estimated_finish"`
	PickupDate      *time.Time      `json:"pickup_date"`
}

// EnforceMinimumWeight rescales lines up to the floor when a courier leg is
// involved and the entered weights fall short. Line prices are recomputed
// from catalog prices, not from the unit prices carried by the lines.
func (e *Engine) EnforceMinimumWeight(ctx context.Context, f Fulfilment, lines []Line) (WeightAdjustment, error) {
	services, err := e.services.FindServices(ctx, serviceIDs(lines))
	if err != nil {
		return WeightAdjustment{}, err
	}
	return e.enforceMinimumWeight(f, lines, services), nil
}

func (e *Engine) enforceMinimumWeight(f Fulfilment, lines []Line, services map[uuid.UUID]models.Service) WeightAdjustment {
	if !f.RequiresMinimumWeight() {
		return WeightAdjustment{Lines: lines, TotalWeight: TotalWeight(lines)}
	}

	weights := make([]decimal.Decimal, len(lines))
	for i, line := range lines {
		weights[i] = line.Weight
	}
	scaled, total, adjusted := RescaleWeights(weights, e.floor)
	if !adjusted {
		return WeightAdjustment{Lines: lines, TotalWeight: total}
	}

	out := make([]Line, len(lines))
	for i, line := range lines {
		line.Weight = scaled[i]
		line.UnitPrice = unitPrice(services, line.ServiceID)
		line.Price = LinePrice(line.UnitPrice, line.Weight)
		out[i] = line
	}
	return WeightAdjustment{Lines: out, TotalWeight: total, Adjusted: true}
}

// Summarize aggregates lines. Finish and pickup dates are now + the longest
// service duration, or nil when no line resolves to a service with a duration.
func (e *Engine) Summarize(ctx context.Context, lines []Line) (Summary, error) {
	if len(lines) == 0 {
		return Summary{TotalWeight: decimal.Zero, Subtotal: money.Zero}, nil
	}
	services, err := e.services.FindServices(ctx, serviceIDs(lines))
	if err != nil {
		return Summary{}, err
	}
	return e.summarize(lines, services), nil
}

func (e *Engine) summarize(lines []Line, services map[uuid.UUID]models.Service) Summary {
	summary := Summary{TotalWeight: decimal.Zero, Subtotal: money.Zero}
	if len(lines) == 0 {
		return summary
	}

	maxDuration := 0
	for _, line := range lines {
		summary.TotalWeight = summary.TotalWeight.Add(line.Weight)
		summary.Subtotal = summary.Subtotal.Add(line.Price)
		if svc, ok := services[line.ServiceID]; ok && svc.DurationDays > maxDuration {
			maxDuration = svc.DurationDays
		}
	}
	summary.TotalItems = len(lines)

	if maxDuration > 0 {
		finish := e.now().UTC().AddDate(0, 0, maxDuration)
		pickup := finish
		summary.EstimatedFinish = &finish
		summary.PickupDate = &pickup
	}
	return summary
}

// FormState is everything the order form holds that affects pricing.
type FormState struct {
	Lines           []Line              `json:"lines"`
	PickupType      enums.PickupType    `json:"pickup_type"`
	DeliveryType    enums.DeliveryType  `json:"delivery_type"`
	DiscountID      *uuid.UUID          `json:"discount_id"`
	TaxAmount       money.Money         `json:"tax_amount"`
	AdditionalFee   money.Money         `json:"additional_fee"`
	PaymentStatus   enums.PaymentStatus `json:"payment_status"`
	PaidAmount      money.Money         `json:"paid_amount"`
	PaymentMethodID *uuid.UUID          `json:"payment_method_id"`
}

// Patch is the set of derived fields the form should redisplay.
type Patch struct {
	Lines           []Line                `json:"lines"`
	WeightAdjusted  bool                  `json:"weight_adjusted"`
	TotalWeight     decimal.Decimal       `json:"total_weight"`
	TotalItems      int                   `json:"total_items"`
	Subtotal        money.Money           `json:"subtotal"`
	DiscountID      *uuid.UUID            `json:"discount_id"`
	DiscountAmount  money.Money           `json:"discount_amount"`
	DiscountCleared bool                  `json:"discount_cleared"`
	TaxAmount       money.Money           `json:"tax_amount"`
	AdditionalFee   money.Money           `json:"additional_fee"`
	TotalAmount     money.Money           `json:"total_amount"`
	EstimatedFinish *time.Time            `json:"estimated_finish"`
	PickupDate      *time.Time            `json:"pickup_date"`
	Payment         PaymentFields         `json:"payment"`
	Errors          pkgerrors.FieldErrors `json:"errors,omitempty"`
}

// Valid reports whether the patch carries no field errors.
func (p Patch) Valid() bool {
	return len(p.Errors) == 0
}

// Recalculate derives every computed field of an order form from its current
// state: lines are repriced from the catalog, the courier floor is enforced,
// aggregates and discount are recomputed against the new subtotal, and the
// payment status rules are applied to the resulting total.
func (e *Engine) Recalculate(ctx context.Context, state FormState) (Patch, error) {
	services, err := e.services.FindServices(ctx, serviceIDs(state.Lines))
	if err != nil {
		return Patch{}, err
	}

	errs := pkgerrors.FieldErrors{}
	lines := make([]Line, len(state.Lines))
	for i, line := range state.Lines {
		if line.Weight.IsNegative() {
			errs[fmt.Sprintf("lines.%d.weight", i)] = "weight cannot be negative"
		}
		if _, known := services[line.ServiceID]; !known && line.ServiceID != uuid.Nil {
			errs[fmt.Sprintf("lines.%d.service_id", i)] = "service not found"
		}
		line.UnitPrice = unitPrice(services, line.ServiceID)
		line.Price = LinePrice(line.UnitPrice, line.Weight)
		lines[i] = line
	}

	adjustment := e.enforceMinimumWeight(Fulfilment{PickupType: state.PickupType, DeliveryType: state.DeliveryType}, lines, services)
	for i, line := range adjustment.Lines {
		if _, exists := errs[fmt.Sprintf("lines.%d.weight", i)]; !exists && !line.Weight.IsPositive() {
			errs[fmt.Sprintf("lines.%d.weight", i)] = "weight must be greater than zero"
		}
	}

	summary := e.summarize(adjustment.Lines, services)
	if adjustment.Adjusted {
		summary.TotalWeight = adjustment.TotalWeight
	}

	resolution, err := e.discounts.Resolve(ctx, state.DiscountID, summary.Subtotal)
	if err != nil {
		return Patch{}, err
	}

	tax := state.TaxAmount
	fee := state.AdditionalFee
	if tax.IsNegative() {
		errs["tax_amount"] = "tax amount cannot be negative"
	}
	if fee.IsNegative() {
		errs["additional_fee"] = "additional fee cannot be negative"
	}

	total := ComputeTotal(summary.Subtotal, tax, fee, resolution.Amount)
	payment, paymentErrs := ApplyPaymentStatus(state.PaymentStatus, total, state.PaidAmount, state.PaymentMethodID)
	for k, v := range paymentErrs {
		errs[k] = v
	}

	patch := Patch{
		Lines:           adjustment.Lines,
		WeightAdjusted:  adjustment.Adjusted,
		TotalWeight:     summary.TotalWeight,
		TotalItems:      summary.TotalItems,
		Subtotal:        summary.Subtotal,
		DiscountID:      resolution.DiscountID(),
		DiscountAmount:  resolution.Amount,
		DiscountCleared: resolution.Cleared,
		TaxAmount:       tax,
		AdditionalFee:   fee,
		TotalAmount:     total,
		EstimatedFinish: summary.EstimatedFinish,
		PickupDate:      summary.PickupDate,
		Payment:         payment,
	}
	if len(errs) > 0 {
		patch.Errors = errs
	}
	return patch, nil
}

func unitPrice(services map[uuid.UUID]models.Service, id uuid.UUID) money.Money {
	if svc, ok := services[id]; ok {
		return svc.Price
	}
	return money.Zero
}

func serviceIDs(lines []Line) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ServiceID)
	}
	return ids
}

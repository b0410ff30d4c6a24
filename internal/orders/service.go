package orders

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/laundry-backend/internal/pricing"
	"github.com/angelmondragon/laundry-backend/pkg/db"
	"github.com/angelmondragon/laundry-backend/pkg/db/models"
	"github.com/angelmondragon/laundry-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/laundry-backend/pkg/errors"
	"github.com/angelmondragon/laundry-backend/pkg/logger"
	"github.com/angelmondragon/laundry-backend/pkg/metrics"
	"github.com/angelmondragon/laundry-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Pricer recomputes every derived field of an order form.
type Pricer interface {
	Recalculate(ctx context.Context, state pricing.FormState) (pricing.Patch, error)
}

// PaymentMethods checks that a selected payment method can be used.
type PaymentMethods interface {
	RequireActivePaymentMethod(ctx context.Context, id uuid.UUID) (*models.PaymentMethod, error)
}

// Service defines order-level operations beyond repository reads.
type Service interface {
	Create(ctx context.Context, input OrderInput) (*models.Order, error)
	Update(ctx context.Context, id uuid.UUID, input OrderInput) (*models.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*models.Order, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	pricer  Pricer
	methods PaymentMethods
	logg    *logger.Logger
	metrics *metrics.LaundryMetrics
	now     func() time.Time
	codes   CodeGenerator
}

type ServiceOption func(*service)

func WithClock(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithCodeGenerator(gen CodeGenerator) ServiceOption {
	return func(s *service) {
		if gen != nil {
			s.codes = gen
		}
	}
}

func WithMetrics(m *metrics.LaundryMetrics) ServiceOption {
	return func(s *service) {
		s.metrics = m
	}
}

// NewService builds the order service with the required dependencies.
func NewService(repo Repository, tx txRunner, pricer Pricer, methods PaymentMethods, logg *logger.Logger, opts ...ServiceOption) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if pricer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "pricing engine required")
	}
	if methods == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment method lookup required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	s := &service{
		repo:    repo,
		tx:      tx,
		pricer:  pricer,
		methods: methods,
		logg:    logg,
		now:     time.Now,
		codes:   RandomCode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *service) Create(ctx context.Context, input OrderInput) (*models.Order, error) {
	start := s.now()
	defer func() { s.metrics.ObserveDuration("order.create", time.Since(start)) }()

	input = normalizeInput(input)
	if input.Status == "" {
		input.Status = enums.OrderStatusPending
	}
	patch, err := s.price(ctx, input)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	order := &models.Order{
		ID:         uuid.New(),
		OrderCode:  input.OrderCode,
		CustomerID: input.CustomerID,
		OrderDate:  now,
		Status:     input.Status,
	}
	if order.OrderCode == "" {
		order.OrderCode = s.codes(now)
	}
	if input.OrderDate != nil {
		order.OrderDate = input.OrderDate.UTC()
	}
	applyInput(order, input, patch)
	for _, line := range patch.Lines {
		line.ID = nil
		order.Lines = append(order.Lines, newLine(order.ID, line))
	}

	ctx = s.logg.WithOrderID(ctx, order.ID.String())
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateOrder(ctx, order); err != nil {
			return err
		}
		return linkDiscount(ctx, repo, order)
	})
	if err != nil {
		return nil, s.saveFailed(ctx, "order.create", err)
	}

	s.metrics.IncOrderSaved("create")
	ctx = s.logg.WithFields(ctx, map[string]any{
		"order_code":  order.OrderCode,
		"total_lines": len(order.Lines),
		"total":       order.TotalAmount.String(),
	})
	s.logg.Info(ctx, "order.created")
	return s.Get(ctx, order.ID)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input OrderInput) (*models.Order, error) {
	start := s.now()
	defer func() { s.metrics.ObserveDuration("order.update", time.Since(start)) }()

	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	existing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	input = normalizeInput(input)
	patch, err := s.price(ctx, input)
	if err != nil {
		return nil, err
	}

	order := *existing
	order.Lines = nil
	if input.OrderCode != "" {
		order.OrderCode = input.OrderCode
	}
	order.CustomerID = input.CustomerID
	if input.OrderDate != nil {
		order.OrderDate = input.OrderDate.UTC()
	}
	applyInput(&order, input, patch)

	ctx = s.logg.WithOrderID(ctx, id.String())
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpdateOrder(ctx, id, orderUpdates(order)); err != nil {
			return err
		}
		if err := syncLines(ctx, repo, id, patch.Lines); err != nil {
			return err
		}
		if err := repo.DeleteDiscountLinks(ctx, id); err != nil {
			return err
		}
		return linkDiscount(ctx, repo, &order)
	})
	if err != nil {
		return nil, s.saveFailed(ctx, "order.update", err)
	}

	s.metrics.IncOrderSaved("update")
	s.logg.Info(s.logg.WithField(ctx, "order_code", order.OrderCode), "order.updated")
	return s.Get(ctx, id)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	return s.load(ctx, id)
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error) {
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.Validation(pkgerrors.FieldErrors{"status": "invalid order status"})
	}
	if filters.PaymentStatus != nil && !filters.PaymentStatus.IsValid() {
		return nil, pkgerrors.Validation(pkgerrors.FieldErrors{"payment_status": "invalid payment status"})
	}
	params = params.Normalize()
	rows, total, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return &OrderList{Orders: rows, Meta: pagination.NewMeta(params, total)}, nil
}

// UpdateStatus moves an order through the workflow. Ready stamps the actual
// finish; delivered stamps the delivery date (and actual finish when unset).
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !status.IsValid() {
		return nil, pkgerrors.Validation(pkgerrors.FieldErrors{"status": "invalid order status"})
	}

	ctx = s.logg.WithOrderID(ctx, id.String())
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status == status {
			return nil
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order status cannot change after "+order.Status.String())
		}

		now := s.now().UTC()
		updates := map[string]any{"status": status}
		switch status {
		case enums.OrderStatusReady:
			updates["actual_finish"] = now
		case enums.OrderStatusDelivered:
			if order.ActualFinish == nil {
				updates["actual_finish"] = now
			}
			updates["delivery_date"] = now
		}
		if err := repo.UpdateOrder(ctx, id, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) == nil {
			err = pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		return nil, err
	}

	s.logg.Info(s.logg.WithField(ctx, "status", status.String()), "order.status_updated")
	return s.Get(ctx, id)
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// price validates the input and runs it through the pricing engine.
func (s *service) price(ctx context.Context, input OrderInput) (pricing.Patch, error) {
	errs := validateInput(input)

	patch, err := s.pricer.Recalculate(ctx, input.formState())
	if err != nil {
		return pricing.Patch{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "price order")
	}
	for k, v := range patch.Errors {
		if _, exists := errs[k]; !exists {
			errs[k] = v
		}
	}
	if len(errs) > 0 {
		return pricing.Patch{}, pkgerrors.Validation(errs)
	}

	if id := patch.Payment.PaymentMethodID; id != nil {
		if _, err := s.methods.RequireActivePaymentMethod(ctx, *id); err != nil {
			return pricing.Patch{}, err
		}
	}
	return patch, nil
}

func (s *service) saveFailed(ctx context.Context, operation string, err error) error {
	s.metrics.IncFailure(operation)
	if db.IsUniqueViolation(err, "order_code") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order code already exists")
	}
	s.logg.Error(ctx, operation+".failed", err)
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save order")
}

func normalizeInput(in OrderInput) OrderInput {
	in.OrderCode = strings.TrimSpace(in.OrderCode)
	if in.PickupType == "" {
		in.PickupType = enums.PickupTypeDropOff
	}
	if in.DeliveryType == "" {
		in.DeliveryType = enums.DeliveryTypePickup
	}
	if in.PaymentStatus == "" {
		in.PaymentStatus = enums.PaymentStatusUnpaid
	}
	in.PickupAddress = trimmed(in.PickupAddress)
	in.DeliveryAddress = trimmed(in.DeliveryAddress)
	in.Notes = trimmed(in.Notes)
	return in
}

func validateInput(in OrderInput) pkgerrors.FieldErrors {
	errs := pkgerrors.FieldErrors{}
	if in.CustomerID == uuid.Nil {
		errs["customer_id"] = "customer is required"
	}
	if len(in.Lines) == 0 {
		errs["lines"] = "at least one service is required"
	}
	for i, line := range in.Lines {
		if line.ServiceID == uuid.Nil {
			errs[lineField(i, "service_id")] = "service is required"
		}
	}
	if in.Status != "" && !in.Status.IsValid() {
		errs["status"] = "invalid order status"
	}
	if !in.PickupType.IsValid() {
		errs["pickup_type"] = "invalid pickup type"
	}
	if !in.DeliveryType.IsValid() {
		errs["delivery_type"] = "invalid delivery type"
	}
	if in.PickupType == enums.PickupTypePickup && in.PickupAddress == nil {
		errs["pickup_address"] = "pickup address is required"
	}
	if in.DeliveryType == enums.DeliveryTypeDelivery && in.DeliveryAddress == nil {
		errs["delivery_address"] = "delivery address is required"
	}
	return errs
}

func applyInput(order *models.Order, in OrderInput, patch pricing.Patch) {
	order.PickupType = in.PickupType
	order.DeliveryType = in.DeliveryType
	order.PickupAddress = in.PickupAddress
	order.DeliveryAddress = in.DeliveryAddress
	order.Notes = in.Notes
	if in.DeliveryDate != nil {
		d := in.DeliveryDate.UTC()
		order.DeliveryDate = &d
	}
	order.TotalWeight = patch.TotalWeight
	order.TotalItems = patch.TotalItems
	order.Subtotal = patch.Subtotal
	order.DiscountID = patch.DiscountID
	order.DiscountAmount = patch.DiscountAmount
	order.TaxAmount = patch.TaxAmount
	order.AdditionalFee = patch.AdditionalFee
	order.TotalAmount = patch.TotalAmount
	order.EstimatedFinish = patch.EstimatedFinish
	order.PickupDate = patch.PickupDate
	order.PaymentStatus = patch.Payment.Status
	order.PaidAmount = patch.Payment.PaidAmount
	order.PaymentMethodID = patch.Payment.PaymentMethodID
}

func orderUpdates(o models.Order) map[string]any {
	return map[string]any{
		"order_code":        o.OrderCode,
		"customer_id":       o.CustomerID,
		"order_date":        o.OrderDate,
		"delivery_date":     o.DeliveryDate,
		"pickup_date":       o.PickupDate,
		"estimated_finish":  o.EstimatedFinish,
		"pickup_type":       o.PickupType,
		"delivery_type":     o.DeliveryType,
		"pickup_address":    o.PickupAddress,
		"delivery_address":  o.DeliveryAddress,
		"total_weight":      o.TotalWeight,
		"total_items":       o.TotalItems,
		"subtotal":          o.Subtotal,
		"discount_id":       o.DiscountID,
		"discount_amount":   o.DiscountAmount,
		"tax_amount":        o.TaxAmount,
		"additional_fee":    o.AdditionalFee,
		"total_amount":      o.TotalAmount,
		"payment_status":    o.PaymentStatus,
		"paid_amount":       o.PaidAmount,
		"payment_method_id": o.PaymentMethodID,
		"notes":             o.Notes,
	}
}

// syncLines matches submitted lines to stored ones by id: known ids are
// updated in place, the rest are inserted, and stored lines that were not
// submitted are deleted.
func syncLines(ctx context.Context, repo Repository, orderID uuid.UUID, lines []pricing.Line) error {
	existing, err := repo.FindLines(ctx, orderID)
	if err != nil {
		return err
	}
	stored := make(map[uuid.UUID]struct{}, len(existing))
	for _, line := range existing {
		stored[line.ID] = struct{}{}
	}

	kept := make(map[uuid.UUID]struct{}, len(lines))
	var inserts []models.OrderLine
	for _, line := range lines {
		if line.ID != nil {
			if _, ok := stored[*line.ID]; ok {
				if _, dup := kept[*line.ID]; !dup {
					kept[*line.ID] = struct{}{}
					err := repo.UpdateLine(ctx, *line.ID, map[string]any{
						"service_id": line.ServiceID,
						"weight":     line.Weight,
						"unit_price": line.UnitPrice,
						"price":      line.Price,
						"notes":      line.Notes,
					})
					if err != nil {
						return err
					}
					continue
				}
			}
		}
		line.ID = nil
		inserts = append(inserts, newLine(orderID, line))
	}

	var removed []uuid.UUID
	for _, line := range existing {
		if _, ok := kept[line.ID]; !ok {
			removed = append(removed, line.ID)
		}
	}
	if err := repo.DeleteLines(ctx, orderID, removed); err != nil {
		return err
	}
	return repo.CreateLines(ctx, inserts)
}

// linkDiscount records the applied discount when it actually reduced the order.
func linkDiscount(ctx context.Context, repo Repository, order *models.Order) error {
	if order.DiscountID == nil || !order.DiscountAmount.IsPositive() {
		return nil
	}
	return repo.CreateDiscountLink(ctx, &models.TransactionDiscount{
		OrderID:        order.ID,
		DiscountID:     *order.DiscountID,
		DiscountAmount: order.DiscountAmount,
	})
}

func newLine(orderID uuid.UUID, line pricing.Line) models.OrderLine {
	out := models.OrderLine{
		OrderID:   orderID,
		ServiceID: line.ServiceID,
		Weight:    line.Weight,
		UnitPrice: line.UnitPrice,
		Price:     line.Price,
		Notes:     line.Notes,
	}
	if line.ID != nil {
		out.ID = *line.ID
	}
	return out
}

func lineField(i int, name string) string {
	return "lines." + strconv.Itoa(i) + "." + name
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

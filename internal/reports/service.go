// Package reports builds income and expense reports over a date window.
package reports

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/laundry-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/laundry-backend/pkg/errors"
	"github.com/angelmondragon/laundry-backend/pkg/logger"
	"github.com/angelmondragon/laundry-backend/pkg/money"
)

const (
	EntryIncome  = "income"
	EntryExpense = "expense"

	incomeCategory = "sales"
	unknownName    = "Unknown"
)

// Filter selects the report window. Start and End are whole days, inclusive.
type Filter struct {
	Start           time.Time
	End             time.Time
	Type            enums.ReportType
	PaymentMethodID *uuid.UUID
}

type Entry struct {
	Type          string      `json:"type"`
	Date          time.Time   `json:"date"`
	Description   string      `json:"description"`
	Category      string      `json:"category"`
	Amount        money.Money `json:"amount"`
	PaymentMethod *string     `json:"payment_method,omitempty"`
	Reference     *string     `json:"reference,omitempty"`
}

type Totals struct {
	Income       money.Money `json:"total_income"`
	Expense      money.Money `json:"total_expense"`
	NetProfit    money.Money `json:"net_profit"`
	OrderCount   int         `json:"total_orders"`
	ExpenseCount int         `json:"total_expenses"`
}

type Report struct {
	Start   time.Time        `json:"start_date"`
	End     time.Time        `json:"end_date"`
	Type    enums.ReportType `json:"report_type"`
	Entries []Entry          `json:"entries"`
	Summary Totals           `json:"summary"`
}

type Service interface {
	Generate(ctx context.Context, filter Filter) (*Report, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "reports repository required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Generate(ctx context.Context, filter Filter) (*Report, error) {
	if filter.Type == "" {
		filter.Type = enums.ReportTypeAll
	}
	errs := pkgerrors.FieldErrors{}
	if filter.Start.IsZero() {
		errs["start_date"] = "start date is required"
	}
	if filter.End.IsZero() {
		errs["end_date"] = "end date is required"
	}
	if !filter.Type.IsValid() {
		errs["report_type"] = "invalid report type"
	}
	if len(errs) > 0 {
		return nil, pkgerrors.Validation(errs)
	}

	start := startOfDay(filter.Start)
	end := startOfDay(filter.End).Add(24*time.Hour - time.Nanosecond)
	if start.After(end) {
		return nil, pkgerrors.Validation(pkgerrors.FieldErrors{"start_date": "start date cannot be after end date"})
	}

	report := &Report{
		Start:   start,
		End:     end,
		Type:    filter.Type,
		Entries: []Entry{},
		Summary: Totals{Income: money.Zero, Expense: money.Zero},
	}

	if filter.Type == enums.ReportTypeAll || filter.Type == enums.ReportTypeIncome {
		orders, err := s.repo.PaidOrdersBetween(ctx, start, end, filter.PaymentMethodID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load paid orders")
		}
		for _, o := range orders {
			customer := unknownName
			if o.Customer != nil {
				customer = o.Customer.Name
			}
			method := unknownName
			if o.PaymentMethod != nil {
				method = o.PaymentMethod.Name
			}
			code := o.OrderCode
			report.Entries = append(report.Entries, Entry{
				Type:          EntryIncome,
				Date:          o.OrderDate,
				Description:   "Order #" + o.OrderCode + " - " + customer,
				Category:      incomeCategory,
				Amount:        o.TotalAmount,
				PaymentMethod: &method,
				Reference:     &code,
			})
			report.Summary.Income = report.Summary.Income.Add(o.TotalAmount)
			report.Summary.OrderCount++
		}
	}

	if filter.Type == enums.ReportTypeAll || filter.Type == enums.ReportTypeExpense {
		expenses, err := s.repo.ExpensesBetween(ctx, start, end)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load expenses")
		}
		for _, e := range expenses {
			report.Entries = append(report.Entries, Entry{
				Type:        EntryExpense,
				Date:        e.ExpenseDate,
				Description: e.Description,
				Category:    e.Category.String(),
				Amount:      e.Amount,
				Reference:   e.ReceiptNumber,
			})
			report.Summary.Expense = report.Summary.Expense.Add(e.Amount)
			report.Summary.ExpenseCount++
		}
	}

	report.Summary.NetProfit = report.Summary.Income.Sub(report.Summary.Expense)
	sort.SliceStable(report.Entries, func(i, j int) bool {
		return report.Entries[i].Date.After(report.Entries[j].Date)
	})

	ctx = s.logg.WithFields(ctx, map[string]any{
		"report_type": filter.Type.String(),
		"entries":     len(report.Entries),
		"net_profit":  report.Summary.NetProfit.String(),
	})
	s.logg.Info(ctx, "report.generated")
	return report, nil
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

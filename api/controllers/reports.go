package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/laundry-backend/api/responses"
	"github.com/angelmondragon/laundry-backend/api/validators"
	"github.com/angelmondragon/laundry-backend/internal/reports"
	"github.com/angelmondragon/laundry-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/laundry-backend/pkg/errors"
	"github.com/angelmondragon/laundry-backend/pkg/logger"
)

// FinancialReport serves GET /reports/financial. The window defaults to the
// current month up to today.
func FinancialReport(svc reports.Service, logg *logger.Logger, now func() time.Time) http.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reports service unavailable"))
			return
		}

		today := now().UTC().Truncate(24 * time.Hour)
		monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)

		start, err := validators.ParseQueryDate(r, "start_date", monthStart)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		end, err := validators.ParseQueryDate(r, "end_date", today)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reportType := enums.ReportTypeAll
		if raw := strings.TrimSpace(r.URL.Query().Get("report_type")); raw != "" {
			parsed, err := enums.ParseReportType(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid report_type"))
				return
			}
			reportType = parsed
		}

		methodID, err := validators.ParseQueryUUID(r, "payment_method_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.Generate(r.Context(), reports.Filter{
			Start:           start,
			End:             end,
			Type:            reportType,
			PaymentMethodID: methodID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

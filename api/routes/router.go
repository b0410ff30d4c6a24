package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/laundry-backend/api/controllers"
	ordercontrollers "github.com/angelmondragon/laundry-backend/api/controllers/orders"
	paymentcontrollers "github.com/angelmondragon/laundry-backend/api/controllers/payments"
	"github.com/angelmondragon/laundry-backend/api/middleware"
	"github.com/angelmondragon/laundry-backend/internal/catalog"
	"github.com/angelmondragon/laundry-backend/internal/discounts"
	"github.com/angelmondragon/laundry-backend/internal/orders"
	"github.com/angelmondragon/laundry-backend/internal/payments"
	"github.com/angelmondragon/laundry-backend/internal/reports"
	"github.com/angelmondragon/laundry-backend/pkg/config"
	"github.com/angelmondragon/laundry-backend/pkg/db"
	"github.com/angelmondragon/laundry-backend/pkg/logger"
	"github.com/angelmondragon/laundry-backend/pkg/metrics"
	"github.com/angelmondragon/laundry-backend/pkg/redis"
)

// Dependencies are the services the HTTP surface dispatches to. Redis and
// Gatherer are optional.
type Dependencies struct {
	DB        db.Pinger
	Redis     *redis.Client
	Gatherer  prometheus.Gatherer
	Metrics   *metrics.LaundryMetrics
	Catalog   catalog.Service
	Discounts discounts.Service
	Pricer    ordercontrollers.Pricer
	Orders    orders.Service
	Payments  payments.Service
	Reports   reports.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	readiness := map[string]controllers.Pinger{"database": deps.DB}
	var store redis.IdempotencyStore
	if deps.Redis != nil {
		readiness["redis"] = deps.Redis
		store = deps.Redis
	}
	idempotent := middleware.Idempotency(store, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	if cfg.Metrics.Enabled && deps.Gatherer != nil {
		r.Method(http.MethodGet, cfg.Metrics.Path, promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/services", controllers.ListServices(deps.Catalog, logg))
		r.Get("/payment-methods", controllers.ListPaymentMethods(deps.Catalog, logg))
		r.Get("/discounts/eligible", controllers.EligibleDiscounts(deps.Discounts, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/quote", ordercontrollers.Quote(deps.Pricer, deps.Metrics, logg))
			r.Get("/", ordercontrollers.List(deps.Orders, logg))
			r.With(idempotent).Post("/", ordercontrollers.Create(deps.Orders, logg))
			r.Route("/{orderId}", func(r chi.Router) {
				r.Get("/", ordercontrollers.Detail(deps.Orders, logg))
				r.With(idempotent).Put("/", ordercontrollers.Update(deps.Orders, logg))
				r.With(idempotent).Post("/status", ordercontrollers.UpdateStatus(deps.Orders, logg))
				r.Get("/payment", paymentcontrollers.Summary(deps.Payments, logg))
				r.With(idempotent).Post("/payment", paymentcontrollers.Update(deps.Payments, logg))
				r.Get("/payments", paymentcontrollers.History(deps.Payments, logg))
			})
		})

		r.Get("/reports/financial", controllers.FinancialReport(deps.Reports, logg, nil))
	})

	return r
}

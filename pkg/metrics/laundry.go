package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "laundry"

// LaundryMetrics records pricing, order and payment activity.
type LaundryMetrics struct {
	duration       *prometheus.HistogramVec
	ordersSaved    *prometheus.CounterVec
	paymentUpdates *prometheus.CounterVec
	autoPromotions prometheus.Counter
	failures       *prometheus.CounterVec
}

// NewLaundryMetrics registers the collectors on reg. A nil registerer yields
// a recorder whose methods are no-ops.
func NewLaundryMetrics(reg prometheus.Registerer) *LaundryMetrics {
	if reg == nil {
		return &LaundryMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "operation_duration_seconds",
		Help:      "Duration of pricing and persistence operations in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
	ordersSaved := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_saved_total",
		Help:      "Orders persisted, by operation.",
	}, []string{"operation"})
	paymentUpdates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_updates_total",
		Help:      "Payment updates applied, by requested and final status.",
	}, []string{"requested", "final"})
	autoPromotions := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_auto_promotions_total",
		Help:      "Partial payments that settled the order and were promoted to paid.",
	})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operation_failures_total",
		Help:      "Failed operations, by operation.",
	}, []string{"operation"})
	reg.MustRegister(duration, ordersSaved, paymentUpdates, autoPromotions, failures)
	return &LaundryMetrics{
		duration:       duration,
		ordersSaved:    ordersSaved,
		paymentUpdates: paymentUpdates,
		autoPromotions: autoPromotions,
		failures:       failures,
	}
}

// ObserveDuration records how long the named operation took.
func (m *LaundryMetrics) ObserveDuration(operation string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

func (m *LaundryMetrics) IncOrderSaved(operation string) {
	if m == nil || m.ordersSaved == nil {
		return
	}
	m.ordersSaved.WithLabelValues(normalizeLabel(operation)).Inc()
}

func (m *LaundryMetrics) IncPaymentUpdate(requested, final string) {
	if m == nil || m.paymentUpdates == nil {
		return
	}
	m.paymentUpdates.WithLabelValues(normalizeLabel(requested), normalizeLabel(final)).Inc()
}

func (m *LaundryMetrics) IncAutoPromotion() {
	if m == nil || m.autoPromotions == nil {
		return
	}
	m.autoPromotions.Inc()
}

func (m *LaundryMetrics) IncFailure(operation string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(operation)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

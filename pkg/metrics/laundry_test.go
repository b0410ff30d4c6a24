package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestLaundryMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLaundryMetrics(reg)

	m.ObserveDuration("update_payment", 120*time.Millisecond)
	m.IncOrderSaved("create")
	m.IncOrderSaved("create")
	m.IncPaymentUpdate("partial", "paid")
	m.IncAutoPromotion()
	m.IncFailure("")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "laundry_orders_saved_total", "operation", "create"); err != nil {
		t.Fatalf("fetch orders saved: %v", err)
	} else if got != 2 {
		t.Fatalf("expected orders saved=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "laundry_payment_updates_total", "final", "paid"); err != nil {
		t.Fatalf("fetch payment updates: %v", err)
	} else if got != 1 {
		t.Fatalf("expected payment updates=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "laundry_operation_failures_total", "operation", "unknown"); err != nil {
		t.Fatalf("fetch failures: %v", err)
	} else if got != 1 {
		t.Fatalf("expected failures=1, got %f", got)
	}

	mf := findMetricFamily(mfs, "laundry_payment_auto_promotions_total")
	if mf == nil || len(mf.GetMetric()) != 1 || mf.GetMetric()[0].GetCounter().GetValue() != 1 {
		t.Fatalf("expected a single auto promotion, got %v", mf)
	}

	if got, err := fetchHistogramSum(mfs, "laundry_operation_duration_seconds", "operation", "update_payment"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestLaundryMetricsNilSafe(t *testing.T) {
	var m *LaundryMetrics
	m.IncOrderSaved("create")
	m.IncAutoPromotion()

	empty := NewLaundryMetrics(nil)
	empty.ObserveDuration("quote", time.Second)
	empty.IncPaymentUpdate("paid", "paid")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}

package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestClientMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewClientMetrics(reg)

	metrics.ObserveRequest("GET", "/cart", 200, 120*time.Millisecond)
	metrics.ObserveRequest("GET", "/cart", 0, 10*time.Millisecond)
	metrics.IncRefresh("success")
	metrics.IncMutation("cart", "rolled_back")
	metrics.IncCacheLookup(true)
	metrics.IncCacheLookup(false)
	metrics.IncCacheLookup(false)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "storefront_requests_total", "status", "200"); err != nil {
		t.Fatalf("fetch requests: %v", err)
	} else if got != 1 {
		t.Fatalf("expected requests{status=200}=1, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "storefront_requests_total", "status", "error"); err != nil {
		t.Fatalf("fetch failed requests: %v", err)
	} else if got != 1 {
		t.Fatalf("expected requests{status=error}=1, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "storefront_token_refresh_total", "outcome", "success"); err != nil || got != 1 {
		t.Fatalf("expected refresh success=1, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "storefront_optimistic_mutations_total", "outcome", "rolled_back"); err != nil || got != 1 {
		t.Fatalf("expected rolled_back=1, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "storefront_cache_lookups_total", "result", "miss"); err != nil || got != 2 {
		t.Fatalf("expected misses=2, got %f (%v)", got, err)
	}
	if got, err := fetchHistogramSum(mfs, "storefront_request_duration_seconds", "route", "/cart"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var metrics *ClientMetrics
	metrics.ObserveRequest("GET", "/x", 200, time.Second)
	metrics.IncRefresh("failure")
	metrics.IncMutation("cart", "committed")
	metrics.IncCacheLookup(true)

	empty := NewClientMetrics(nil)
	empty.IncMutation("wishlist", "committed")
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
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
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

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestInventoryMetricsRecordsMutations(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewInventoryMetrics(reg)
	m.RecordMutation("student_borrow", -3)
	m.RecordMutation("student_borrow", -2)
	m.RecordMutation("", 4)
	m.ObserveSummaryBuild("cache", 10*time.Millisecond)
	m.SetDriftedProducts(2)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "stockroom_inventory_stock_mutations_total", "action", "student_borrow"); err != nil || got != 2 {
		t.Fatalf("expected 2 borrow mutations, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "stockroom_inventory_units_moved_total", "action", "student_borrow"); err != nil || got != 5 {
		t.Fatalf("expected 5 borrowed units, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "stockroom_inventory_stock_mutations_total", "action", "unknown"); err != nil || got != 1 {
		t.Fatalf("expected empty action to fall back to unknown, got %f err=%v", got, err)
	}
	if got, err := fetchHistogramSum(mfs, "stockroom_inventory_summary_build_seconds", "source", "cache"); err != nil || got <= 0 {
		t.Fatalf("expected summary build observation, got %f err=%v", got, err)
	}
	if got := fetchGaugeValue(t, mfs, "stockroom_inventory_drifted_products"); got != 2 {
		t.Fatalf("expected drifted gauge 2, got %f", got)
	}
}

func TestNilMetricsAreNoops(t *testing.T) {
	var inv *InventoryMetrics
	inv.RecordMutation("student_borrow", 1)
	inv.SetDriftedProducts(1)
	NewInventoryMetrics(nil).ObserveSummaryBuild("store", time.Second)

	var h *HTTPMetrics
	h.Observe(http.MethodGet, "/products", 200, time.Millisecond)
}

func TestHTTPMetricsAndHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe(http.MethodGet, "/products", http.StatusOK, 5*time.Millisecond)
	m.Observe(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "stockroom_http_requests_total", "route", "/products"); err != nil || got != 1 {
		t.Fatalf("expected one /products request, got %f err=%v", got, err)
	}
	if _, err := fetchCounterValue(mfs, "stockroom_http_requests_total", "route", "unmatched"); err != nil {
		t.Fatalf("expected unmatched route label: %v", err)
	}

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "stockroom_http_requests_total") {
		t.Fatalf("expected exposition to include request counter, got %s", body)
	}
}

func fetchGaugeValue(t *testing.T, mfs []*dto.MetricFamily, name string) float64 {
	t.Helper()
	mf := findMetricFamily(mfs, name)
	if mf == nil || len(mf.GetMetric()) == 0 {
		t.Fatalf("gauge %q not found", name)
	}
	return mf.GetMetric()[0].GetGauge().GetValue()
}

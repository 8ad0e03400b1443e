package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
)

func TestRecorder(t *testing.T) {
	m := New("test", nil)

	m.SaleRecorded(decimal.RequireFromString("12.50"), 3)
	m.SaleRecorded(decimal.RequireFromString("7.50"), 1)
	m.SaleFailed("insufficient_stock")
	m.ImportFinished("products", 9, 1)

	if got := testutil.ToFloat64(m.SalesTotal); got != 2 {
		t.Errorf("sales_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.RevenueTotal); got != 20 {
		t.Errorf("revenue_total = %v, want 20", got)
	}
	if got := testutil.ToFloat64(m.SaleFailuresTotal.WithLabelValues("insufficient_stock")); got != 1 {
		t.Errorf("sale_failures_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ImportRowsTotal.WithLabelValues("products", "imported")); got != 9 {
		t.Errorf("import_rows_total{imported} = %v, want 9", got)
	}
	if got := testutil.ToFloat64(m.ImportRowsTotal.WithLabelValues("products", "failed")); got != 1 {
		t.Errorf("import_rows_total{failed} = %v, want 1", got)
	}
}

func TestActiveImportsGauge(t *testing.T) {
	active := 2
	m := New("test", func() int { return active })

	if got := testutil.ToFloat64(m.ImportsActive); got != 2 {
		t.Errorf("imports_active = %v, want 2", got)
	}
	active = 0
	if got := testutil.ToFloat64(m.ImportsActive); got != 0 {
		t.Errorf("imports_active = %v, want 0", got)
	}
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := New("test", nil)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/"+id, nil))
	}

	got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/products/{id}", "404"))
	if got != 3 {
		t.Errorf("http_requests_total = %v, want 3", got)
	}
	if n := testutil.CollectAndCount(m.HTTPRequestsTotal); n != 1 {
		t.Errorf("series = %d, want 1", n)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New("stockpos", nil)
	m.SaleRecorded(decimal.NewFromInt(1), 1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	for _, want := range []string{"stockpos_sales_total 1", "go_goroutines"} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}

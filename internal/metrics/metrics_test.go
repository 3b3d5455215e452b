package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"renewme/internal/core"
)

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	m := &dto.Metric{}
	if err := g.Write(m); err != nil {
		t.Fatalf("write gauge: %v", err)
	}
	return m.GetGauge().GetValue()
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		t.Fatalf("write counter: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestNewTwiceDoesNotPanic(t *testing.T) {
	New()
	New()
}

func TestObserveDashboard(t *testing.T) {
	m := New()
	m.ObserveDashboard(core.Dashboard{ActiveCount: 3, TotalMonthly: 42.5, DueWithinWeek: 2})

	if got := gaugeValue(t, m.activeCount); got != 3 {
		t.Errorf("active = %v, want 3", got)
	}
	if got := gaugeValue(t, m.monthlySpend); got != 42.5 {
		t.Errorf("monthly = %v, want 42.5", got)
	}
	if got := gaugeValue(t, m.dueWithinWeek); got != 2 {
		t.Errorf("due = %v, want 2", got)
	}
}

func TestCounters(t *testing.T) {
	m := New()
	m.IncReminderPublished()
	m.IncReminderPublished()
	m.IncSheetSync(true)
	m.IncSheetSync(false)
	m.IncSheetSync(false)

	if got := counterValue(t, m.remindersPublished); got != 2 {
		t.Errorf("reminders = %v, want 2", got)
	}
	if got := counterValue(t, m.sheetSyncs.WithLabelValues("error")); got != 2 {
		t.Errorf("sheet errors = %v, want 2", got)
	}
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/v1/subscriptions/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/subscriptions/"+id, nil))
	}

	got := counterValue(t, m.requestsTotal.WithLabelValues("GET", "/api/v1/subscriptions/{id}", "404"))
	if got != 3 {
		t.Errorf("requests = %v, want 3", got)
	}
}

func TestHandlerExposesRegisteredMetrics(t *testing.T) {
	m := New()
	m.RegisterCacheStats("dashboard", func() (uint64, uint64) { return 7, 2 })
	m.IncReminderPublished()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	for _, want := range []string{
		`renewme_reminders_published_total 1`,
		`renewme_cache_hits_total{cache="dashboard"} 7`,
		`renewme_cache_misses_total{cache="dashboard"} 2`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

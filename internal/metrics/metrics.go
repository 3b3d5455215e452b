// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"renewme/internal/core"
)

const namespace = "renewme"

// Metrics owns a private registry so constructing it twice (tests, several
// binaries in one process) never collides on the default registry.
type Metrics struct {
	Registry *prometheus.Registry
	factory  promauto.Factory

	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	activeCount        prometheus.Gauge
	monthlySpend       prometheus.Gauge
	dueWithinWeek      prometheus.Gauge
	remindersPublished prometheus.Counter
	sheetSyncs         *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		factory:  factory,

		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by method, route and status.",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by method and route.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		activeCount: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_subscriptions",
			Help:      "Active subscriptions at the last dashboard computation.",
		}),
		monthlySpend: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "monthly_spend",
			Help:      "Monthly-equivalent spend across active subscriptions, summed as stored.",
		}),
		dueWithinWeek: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "renewals_due_within_week",
			Help:      "Active subscriptions renewing in the next 7 days.",
		}),
		remindersPublished: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_published_total",
			Help:      "reminder.due events published.",
		}),
		sheetSyncs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sheet_syncs_total",
				Help:      "Google Sheets report rewrites by result.",
			},
			[]string{"result"},
		),
	}
}

// ObserveDashboard updates the summary gauges.
func (m *Metrics) ObserveDashboard(d core.Dashboard) {
	m.activeCount.Set(float64(d.ActiveCount))
	m.monthlySpend.Set(d.TotalMonthly)
	m.dueWithinWeek.Set(float64(d.DueWithinWeek))
}

// IncReminderPublished counts one published reminder.
func (m *Metrics) IncReminderPublished() {
	m.remindersPublished.Inc()
}

// IncSheetSync counts one report rewrite; ok selects the result label.
func (m *Metrics) IncSheetSync(ok bool) {
	result := "success"
	if !ok {
		result = "error"
	}
	m.sheetSyncs.WithLabelValues(result).Inc()
}

// RegisterCacheStats exposes a cache's hit and miss counters.
func (m *Metrics) RegisterCacheStats(name string, stats func() (hits, misses uint64)) {
	labels := prometheus.Labels{"cache": name}
	m.factory.NewCounterFunc(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        "cache_hits_total",
		Help:        "Cache hits.",
		ConstLabels: labels,
	}, func() float64 {
		hits, _ := stats()
		return float64(hits)
	})
	m.factory.NewCounterFunc(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        "cache_misses_total",
		Help:        "Cache misses.",
		ConstLabels: labels,
	}, func() float64 {
		_, misses := stats()
		return float64(misses)
	})
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// Middleware records request counts and latency labelled by the matched chi
// route pattern, keeping label cardinality bounded.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Package metrics exposes Prometheus collectors for the HTTP layer, the
// authorization guard and the payment proxy.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "samaquete",
		Name:      "http_in_flight_requests",
		Help:      "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "samaquete",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "samaquete",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latencies in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// AuthzDenied counts guard rejections by role, action and entity kind.
	AuthzDenied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "samaquete",
			Name:      "authz_denied_total",
			Help:      "Authorization guard denials.",
		},
		[]string{"role", "action", "kind"},
	)

	// PaymentProxyRequests counts calls to the external payment API by outcome.
	PaymentProxyRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "samaquete",
			Name:      "payment_proxy_requests_total",
			Help:      "Requests forwarded to the external payment API.",
		},
		[]string{"outcome"},
	)

	// AuditDropped counts activity log entries that could not be stored.
	AuditDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "samaquete",
		Name:      "activity_log_dropped_total",
		Help:      "Activity log entries that failed to persist.",
	})

	// NotificationsDropped counts parish notifications that could not be stored.
	NotificationsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "samaquete",
		Name:      "parish_notification_dropped_total",
		Help:      "Parish notifications that failed to persist.",
	})
)

var registerOnce sync.Once

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpInFlight,
			httpRequestsTotal,
			httpRequestDuration,
			AuthzDenied,
			PaymentProxyRequests,
			AuditDropped,
			NotificationsDropped,
		)
	})
}

// Handler serves the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Instrument records request count, latency and in-flight gauge.
// The route label is the chi route pattern so ids do not explode cardinality.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := strconv.Itoa(sw.code)
		httpRequestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

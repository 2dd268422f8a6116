package metrics

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// OperationUnmatched labels requests that hit no registered route.
const OperationUnmatched = "unmatched"

// HTTP Prometheus metrics, labelled by API operation rather than raw path.
var (
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "geoframe",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds by operation",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"operation"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geoframe",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by operation and status class",
		},
		[]string{"operation", "code"}, // code: 2xx / 4xx / 5xx
	)

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "geoframe",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "HTTP requests currently being served",
		},
	)

	AuthRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geoframe",
			Subsystem: "http",
			Name:      "auth_rejections_total",
			Help:      "Requests rejected by bearer authentication",
		},
		[]string{"reason"}, // missing / scheme / invalid
	)
)

var httpMetricsRegistered bool

// RegisterHTTPMetrics registers the HTTP metrics. Must be called once from main.
func RegisterHTTPMetrics() {
	if httpMetricsRegistered {
		return
	}
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpInFlight)
	prometheus.MustRegister(AuthRejectionsTotal)
	httpMetricsRegistered = true
}

// Middleware records request duration and count per operation. operations
// maps "METHOD /route/pattern" to an operation name.
func Middleware(operations map[string]string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			httpInFlight.Inc()
			defer httpInFlight.Dec()

			start := time.Now()
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			op := Operation(operations, r)
			httpRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
			httpRequestsTotal.WithLabelValues(op, statusClass(ww.Status())).Inc()
		})
	}
}

// Operation resolves the operation name of a routed request.
func Operation(operations map[string]string, r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return OperationUnmatched
	}
	pattern := rctx.RoutePattern()
	if pattern == "" {
		return OperationUnmatched
	}
	if op, ok := operations[r.Method+" "+pattern]; ok {
		return op
	}
	return OperationUnmatched
}

// statusClass collapses a status code to its class. Nothing written means 200.
func statusClass(status int) string {
	switch {
	case status == 0 || status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

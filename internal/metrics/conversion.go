package metrics

import "github.com/prometheus/client_golang/prometheus"

// Conversion Prometheus metrics.
var (
	ConversionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geoframe",
			Name:      "conversions_total",
			Help:      "Total number of frame conversions",
		},
		[]string{"kind", "from", "to", "status"}, // kind: position / velocity
	)

	ConversionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "geoframe",
			Name:      "conversion_duration_seconds",
			Help:      "Frame conversion duration in seconds",
			Buckets:   []float64{1e-7, 5e-7, 1e-6, 5e-6, 1e-5, 5e-5, 1e-4, 1e-3},
		},
		[]string{"kind"},
	)

	ConversionErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geoframe",
			Name:      "conversion_errors_total",
			Help:      "Total failed frame conversions",
		},
		[]string{"kind", "reason"},
	)

	ReferenceUpdatesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "geoframe",
			Name:      "reference_updates_total",
			Help:      "Total reference frame and surface updates",
		},
	)

	SelfCheckFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geoframe",
			Name:      "selfcheck_failures_total",
			Help:      "Total self-check failures",
		},
		[]string{"check"},
	)
)

var convMetricsRegistered bool

// RegisterConversionMetrics registers Prometheus conversion metrics. Must be called once from main.
func RegisterConversionMetrics() {
	if convMetricsRegistered {
		return
	}
	prometheus.MustRegister(ConversionsTotal)
	prometheus.MustRegister(ConversionDuration)
	prometheus.MustRegister(ConversionErrorsTotal)
	prometheus.MustRegister(ReferenceUpdatesTotal)
	prometheus.MustRegister(SelfCheckFailuresTotal)
	convMetricsRegistered = true
}

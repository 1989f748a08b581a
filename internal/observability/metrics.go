package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	candidatesTotal        *prometheus.CounterVec
	verdictsTotal          *prometheus.CounterVec
	dispatchFailuresTotal  *prometheus.CounterVec
	telemetryFailuresTotal *prometheus.CounterVec
	alertsThrottledTotal   prometheus.Counter
	classifyDuration       prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		candidatesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "clipguard_candidates_total", Help: "Clipboard candidates classified"},
			[]string{"method"},
		),
		verdictsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "clipguard_verdicts_total", Help: "Verdicts by matched rule and resulting action"},
			[]string{"rule", "action"},
		),
		dispatchFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "clipguard_dispatch_failures_total", Help: "Best-effort dispatch steps that failed"},
			[]string{"step"},
		),
		telemetryFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "clipguard_telemetry_failures_total", Help: "Raw telemetry deliveries that failed"},
			[]string{"sink"},
		),
		alertsThrottledTotal: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "clipguard_alerts_throttled_total", Help: "Alerts dropped by the per-host throttle"},
		),
		classifyDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "clipguard_classify_duration_seconds",
				Help:    "Time spent classifying a candidate",
				Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
			},
		),
	}

	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.candidatesTotal,
		m.verdictsTotal,
		m.dispatchFailuresTotal,
		m.telemetryFailuresTotal,
		m.alertsThrottledTotal,
		m.classifyDuration,
	)

	return m
}

func (m *Metrics) Handler(reg *prometheus.Registry) http.Handler {
	if reg == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveClassification(method, rule, action string, took time.Duration) {
	if m == nil {
		return
	}
	if rule == "" {
		rule = "none"
	}
	if method == "" {
		method = "unknown"
	}
	m.candidatesTotal.WithLabelValues(method).Inc()
	m.verdictsTotal.WithLabelValues(rule, action).Inc()
	m.classifyDuration.Observe(took.Seconds())
}

func (m *Metrics) DispatchFailure(step string) {
	if m == nil {
		return
	}
	m.dispatchFailuresTotal.WithLabelValues(step).Inc()
}

func (m *Metrics) TelemetryFailure(sink string) {
	if m == nil {
		return
	}
	m.telemetryFailuresTotal.WithLabelValues(sink).Inc()
}

func (m *Metrics) AlertThrottled() {
	if m == nil {
		return
	}
	m.alertsThrottledTotal.Inc()
}

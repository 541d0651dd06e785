package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the vigil scan engine. The repo
// never serves these; an embedding caller exposes the registry.
type Metrics struct {
	ScanTotal            *prometheus.CounterVec
	ScanDurationMs       *prometheus.HistogramVec
	GuardrailActionTotal *prometheus.CounterVec
	DetectionTotal       *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		ScanTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_scan_total",
			Help: "Total number of scans, by final action.",
		}, []string{"action"}),

		ScanDurationMs: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vigil_scan_duration_ms",
			Help:    "End-to-end scan duration in milliseconds.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
		}, []string{"action"}),

		GuardrailActionTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_guardrail_action_total",
			Help: "Total guardrail actions taken.",
		}, []string{"guardrail", "action"}),

		DetectionTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_detection_total",
			Help: "Total jailbreak detections, by category and risk tier.",
		}, []string{"category", "tier"}),
	}
}

// RecordScan records a completed scan and its duration.
func (m *Metrics) RecordScan(action string, durationMs float64) {
	m.ScanTotal.WithLabelValues(action).Inc()
	m.ScanDurationMs.WithLabelValues(action).Observe(durationMs)
}

// RecordGuardrailAction records a single guardrail's action.
func (m *Metrics) RecordGuardrailAction(guardrail, action string) {
	m.GuardrailActionTotal.WithLabelValues(guardrail, action).Inc()
}

// RecordDetection records one matched jailbreak category at its tier.
func (m *Metrics) RecordDetection(category, tier string) {
	m.DetectionTotal.WithLabelValues(category, tier).Inc()
}

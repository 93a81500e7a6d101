package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	analyses   *prometheus.CounterVec
	signals    *prometheus.CounterVec
	confluence *prometheus.HistogramVec
	errors     *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

// New creates a Prometheus metrics recorder on the default registry.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates a recorder on reg, mainly for tests.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		analyses: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fusion_analyses_total",
				Help: "Total number of analyses run",
			},
			[]string{"interval"},
		),
		signals: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fusion_signals_total",
				Help: "Signals emitted by detector family",
			},
			[]string{"family"},
		),
		confluence: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fusion_confluence_score",
				Help:    "Distribution of confluence scores",
				Buckets: prometheus.LinearBuckets(0, 10, 11),
			},
			[]string{"band"},
		),
		errors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fusion_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fusion_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordAnalysis counts one analysis. The symbol is not used as a label to
// keep cardinality bounded.
func (r *Recorder) RecordAnalysis(_ string, interval string) {
	r.analyses.WithLabelValues(interval).Inc()
}

// RecordSignals adds n signals for family.
func (r *Recorder) RecordSignals(family string, n int) {
	if n <= 0 {
		return
	}
	r.signals.WithLabelValues(family).Add(float64(n))
}

// RecordConfluence observes a confluence score bucketed by recommendation band.
func (r *Recorder) RecordConfluence(_ string, score int) {
	r.confluence.WithLabelValues(band(score)).Observe(float64(score))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errors.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

func band(score int) string {
	switch {
	case score >= 80:
		return "80"
	case score >= 65:
		return "65"
	case score >= 50:
		return "50"
	case score >= 35:
		return "35"
	default:
		return "0"
	}
}

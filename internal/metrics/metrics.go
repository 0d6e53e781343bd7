package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes the predictor's Prometheus metrics
type Recorder struct {
	predictions   *prometheus.CounterVec
	resolved      *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	roundsTotal   prometheus.Counter
	lastPredicted prometheus.Gauge
	confidence    prometheus.Gauge
	volatility    prometheus.Gauge
	lastRound     prometheus.Gauge
	latency       *prometheus.HistogramVec
}

// New registers the metrics with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Recorder{
		predictions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aviator_predictions_total",
				Help: "Total number of predictions computed",
			},
			[]string{"tier"},
		),
		resolved: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aviator_predictions_resolved_total",
				Help: "Total number of predictions resolved against an actual round",
			},
			[]string{"status"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aviator_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		roundsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "aviator_rounds_ingested_total",
				Help: "Total number of rounds ingested",
			},
		),
		lastPredicted: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "aviator_predicted_multiplier",
				Help: "Last predicted multiplier",
			},
		),
		confidence: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "aviator_prediction_confidence",
				Help: "Confidence of the last prediction",
			},
		),
		volatility: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "aviator_volatility",
				Help: "Standard deviation of the buffered multipliers",
			},
		),
		lastRound: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "aviator_last_multiplier",
				Help: "Multiplier of the newest round",
			},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aviator_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordPrediction records a computed prediction
func (r *Recorder) RecordPrediction(tier string, predicted float64, confidence int, volatility float64) {
	r.predictions.WithLabelValues(tier).Inc()
	r.lastPredicted.Set(predicted)
	r.confidence.Set(float64(confidence))
	r.volatility.Set(volatility)
}

// RecordResolved records a prediction resolved as success or fail
func (r *Recorder) RecordResolved(status string) {
	r.resolved.WithLabelValues(status).Inc()
}

// RecordRounds records newly ingested rounds and the newest multiplier
func (r *Recorder) RecordRounds(count int, last float64) {
	r.roundsTotal.Add(float64(count))
	r.lastRound.Set(last)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

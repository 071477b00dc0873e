package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	pointsIngested *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	lastModalPrice *prometheus.GaugeVec
	latency        *prometheus.HistogramVec
	trainings      *prometheus.CounterVec
	predictions    *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		pointsIngested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agripulse_points_ingested_total",
				Help: "Total number of price points ingested",
			},
			[]string{"source", "commodity"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agripulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastModalPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "agripulse_last_modal_price",
				Help: "Last recorded modal price for a commodity series",
			},
			[]string{"commodity", "region"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agripulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		trainings: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agripulse_trainings_total",
				Help: "Total number of model training runs by result",
			},
			[]string{"result"},
		),
		predictions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agripulse_predictions_total",
				Help: "Total number of forecasts served",
			},
			[]string{"commodity"},
		),
	}
}

// RecordIngested records a price point ingested from a source.
func (r *Recorder) RecordIngested(source, commodity string) {
	r.pointsIngested.WithLabelValues(source, commodity).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last modal price for a commodity series.
func (r *Recorder) RecordLastPrice(commodity, region string, price float64) {
	r.lastModalPrice.WithLabelValues(commodity, region).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordTraining records a training run outcome.
func (r *Recorder) RecordTraining(result string) {
	r.trainings.WithLabelValues(result).Inc()
}

// RecordPrediction records a served forecast.
func (r *Recorder) RecordPrediction(commodity string) {
	r.predictions.WithLabelValues(commodity).Inc()
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Alias1177/Forecaster/internal/forecast"
)

// Recorder exposes forecasting metrics to Prometheus.
type Recorder struct {
	forecastsTotal   *prometheus.CounterVec
	stepsTotal       *prometheus.CounterVec
	errorsTotal      *prometheus.CounterVec
	trainingDuration *prometheus.HistogramVec
	trainingLoss     *prometheus.GaugeVec
	testRMSE         *prometheus.GaugeVec
	fetchLatency     *prometheus.HistogramVec
}

// New registers the forecaster metrics on reg.
func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		forecastsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forecaster_runs_total",
				Help: "Total number of completed forecast runs",
			},
			[]string{"symbol"},
		),
		stepsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forecaster_predicted_steps_total",
				Help: "Predicted steps by direction",
			},
			[]string{"symbol", "direction"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forecaster_errors_total",
				Help: "Failed forecast runs by error kind",
			},
			[]string{"kind"},
		),
		trainingDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "forecaster_training_duration_seconds",
				Help:    "Time spent training the sequence model",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
			[]string{"symbol"},
		),
		trainingLoss: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "forecaster_training_loss",
				Help: "Final-epoch training MSE on the scaled series",
			},
			[]string{"symbol"},
		),
		testRMSE: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "forecaster_test_rmse",
				Help: "One-step RMSE on held-out windows, in price units",
			},
			[]string{"symbol"},
		),
		fetchLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "forecaster_fetch_duration_seconds",
				Help:    "Market data fetch latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"symbol"},
		),
	}
}

// RecordForecast records a completed run.
func (r *Recorder) RecordForecast(res *forecast.Result) {
	r.forecastsTotal.WithLabelValues(res.Symbol).Inc()
	r.trainingDuration.WithLabelValues(res.Symbol).Observe(res.Training.Duration.Seconds())
	r.trainingLoss.WithLabelValues(res.Symbol).Set(res.Training.FinalLoss)
	r.testRMSE.WithLabelValues(res.Symbol).Set(res.Evaluation.RMSE)
	for _, rec := range res.Records {
		r.stepsTotal.WithLabelValues(res.Symbol, string(rec.Direction)).Inc()
	}
}

// RecordError records a failed run.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordFetch records how long fetching candles took.
func (r *Recorder) RecordFetch(symbol string, d time.Duration) {
	r.fetchLatency.WithLabelValues(symbol).Observe(d.Seconds())
}

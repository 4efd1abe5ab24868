package forecast

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Forecaster/models"
)

// Result is the output of one forecasting run.
type Result struct {
	RunID        string                    `json:"run_id"`
	Symbol       string                    `json:"symbol"`
	Interval     time.Duration             `json:"interval"`
	GeneratedAt  time.Time                 `json:"generated_at"`
	LastObserved time.Time                 `json:"last_observed"`
	LastClose    float64                   `json:"last_close"`
	ScaleMin     float64                   `json:"scale_min"`
	ScaleMax     float64                   `json:"scale_max"`
	TrainPairs   int                       `json:"train_pairs"`
	TestPairs    int                       `json:"test_pairs"`
	Training     TrainingReport            `json:"training"`
	Evaluation   Evaluation                `json:"evaluation"`
	Records      []models.PredictionRecord `json:"records"`
}

// ModelFactory builds an untrained model for a run.
type ModelFactory func(cfg Config) SequenceModel

// Pipeline runs scale -> window -> train -> roll forward for one series.
type Pipeline struct {
	cfg      Config
	newModel ModelFactory
	logger   zerolog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithModelFactory replaces the default LSTM model.
func WithModelFactory(f ModelFactory) Option {
	return func(p *Pipeline) {
		p.newModel = f
	}
}

// NewPipeline creates a pipeline that trains a fresh LSTMModel per run.
func NewPipeline(cfg Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg: cfg,
		newModel: func(cfg Config) SequenceModel {
			return NewLSTMModel(cfg)
		},
		logger: log.With().Str("component", "forecast_pipeline").Logger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithInterval returns a copy of the pipeline that spaces forecast
// timestamps by d instead of inferring the step from the candles.
func (p *Pipeline) WithInterval(d time.Duration) *Pipeline {
	cp := *p
	cp.cfg.Interval = d
	return &cp
}

// Run forecasts cfg.ForecastHorizon steps past the last candle. Candles must
// be ordered oldest first. Training honours ctx cancellation; no timeout is
// applied here.
func (p *Pipeline) Run(ctx context.Context, symbol string, candles []models.Candle) (*Result, error) {
	cfg := p.cfg
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, ErrDataUnavailable)
	}

	n := len(candles)
	w := cfg.WindowLength
	trainN := int(float64(n) * cfg.TrainFraction)
	if trainN-w-1 <= 0 || (n-trainN)-w-1 <= 0 {
		return nil, fmt.Errorf("%s: %d candles split %d/%d, each side needs more than %d: %w",
			symbol, n, trainN, n-trainN, w+1, ErrInsufficientHistory)
	}

	var scaler MinMaxScaler
	scaled, err := scaler.FitTransform(ClosePrices(candles))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", symbol, err)
	}

	interval := cfg.Interval
	if interval == 0 {
		if interval, err = InferInterval(candles); err != nil {
			return nil, fmt.Errorf("%s: %w", symbol, err)
		}
	}

	trainSeries, testSeries := SplitSeries(scaled, cfg.TrainFraction)
	trainPairs := BuildWindows(trainSeries, w)
	testPairs := BuildWindows(testSeries, w)

	p.logger.Info().
		Str("symbol", symbol).
		Int("candles", n).
		Int("train_pairs", len(trainPairs)).
		Int("test_pairs", len(testPairs)).
		Dur("interval", interval).
		Msg("Training forecast model")

	model := p.newModel(cfg)
	windows, targets := Unzip(trainPairs)
	report, err := model.Train(ctx, windows, targets)
	if err != nil {
		return nil, fmt.Errorf("%s: train: %w", symbol, err)
	}

	eval, err := Evaluate(model, &scaler, testPairs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", symbol, err)
	}

	last := candles[n-1]
	seed := NewWindow(scaled[n-w:])
	records, err := Rollout(model, &scaler, seed, last.Timestamp, interval, cfg.ForecastHorizon)
	if err != nil {
		return nil, fmt.Errorf("%s: rollout: %w", symbol, err)
	}

	res := &Result{
		RunID:        uuid.NewString(),
		Symbol:       symbol,
		Interval:     interval,
		GeneratedAt:  time.Now().UTC(),
		LastObserved: last.Timestamp,
		LastClose:    last.Close,
		ScaleMin:     scaler.Min,
		ScaleMax:     scaler.Max,
		TrainPairs:   len(trainPairs),
		TestPairs:    len(testPairs),
		Training:     report,
		Evaluation:   eval,
		Records:      records,
	}

	p.logger.Info().
		Str("symbol", symbol).
		Str("run_id", res.RunID).
		Float64("test_rmse", eval.RMSE).
		Float64("directional_accuracy", eval.DirectionalAccuracy).
		Msg("Forecast ready")
	return res, nil
}

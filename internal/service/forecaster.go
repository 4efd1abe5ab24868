package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Forecaster/internal/forecast"
	"github.com/Alias1177/Forecaster/internal/metrics"
	"github.com/Alias1177/Forecaster/models"
)

var (
	// ErrNoStore is returned by Latest when no forecast store is configured.
	ErrNoStore = errors.New("forecast store not configured")
	// ErrInvalidRequest wraps a malformed symbol or interval.
	ErrInvalidRequest = errors.New("invalid forecast request")
)

// Store persists forecast runs.
type Store interface {
	SaveForecast(ctx context.Context, res *forecast.Result) error
	LatestForecast(ctx context.Context, symbol string) (*forecast.Result, error)
}

// Options controls how much history is fetched and how long a run may take.
type Options struct {
	DefaultSymbol   string
	DefaultInterval string
	HistoryDays     int
	// CandleCount overrides HistoryDays when positive.
	CandleCount int
	RunTimeout  time.Duration
	// MaxConcurrent caps simultaneous runs; training is CPU bound. Defaults to 1.
	MaxConcurrent int
}

// Forecast is the result of one request together with the candles it used.
type Forecast struct {
	*forecast.Result
	Candles []models.Candle `json:"-"`
}

// Forecaster fetches candles and runs the forecasting pipeline.
type Forecaster struct {
	client   models.CandleClient
	pipeline *forecast.Pipeline
	store    Store
	metrics  *metrics.Recorder
	opts     Options
	slots    chan struct{}
	logger   zerolog.Logger
}

// NewForecaster creates a Forecaster. store and recorder may be nil.
func NewForecaster(client models.CandleClient, pipeline *forecast.Pipeline, store Store, recorder *metrics.Recorder, opts Options) *Forecaster {
	if opts.DefaultInterval == "" {
		opts.DefaultInterval = "1h"
	}
	if opts.HistoryDays <= 0 {
		opts.HistoryDays = 180
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	return &Forecaster{
		client:   client,
		pipeline: pipeline,
		store:    store,
		metrics:  recorder,
		opts:     opts,
		slots:    make(chan struct{}, opts.MaxConcurrent),
		logger:   log.With().Str("component", "forecaster").Logger(),
	}
}

// Forecast fetches history for symbol and predicts the next horizon steps.
// An empty interval falls back to the default one. Runs beyond
// MaxConcurrent wait for a free slot until ctx is done; the wait does not
// count against RunTimeout.
func (f *Forecaster) Forecast(ctx context.Context, symbol, interval string) (*Forecast, error) {
	symbol = models.NormalizeSymbol(symbol)
	if symbol == "" {
		symbol = f.opts.DefaultSymbol
	}
	if !models.ValidSymbol(symbol) {
		return nil, fmt.Errorf("%w: symbol %q", ErrInvalidRequest, symbol)
	}
	if interval == "" {
		interval = f.opts.DefaultInterval
	}
	step, err := models.ParseInterval(interval)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	select {
	case f.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for a free slot: %w", ctx.Err())
	}
	defer func() { <-f.slots }()

	if f.opts.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.opts.RunTimeout)
		defer cancel()
	}

	count := f.opts.CandleCount
	if count <= 0 {
		count = models.CandlesForPeriod(interval, f.opts.HistoryDays)
	}

	start := time.Now()
	candles, err := f.client.GetCandles(ctx, symbol, interval, count)
	if err != nil {
		err = fmt.Errorf("fetch %s %s: %w: %w", symbol, interval, forecast.ErrDataUnavailable, err)
		f.fail(err)
		return nil, err
	}
	// only symbols the API knows reach the labelled series
	if f.metrics != nil {
		f.metrics.RecordFetch(symbol, time.Since(start))
	}

	f.logger.Debug().Str("symbol", symbol).Str("interval", interval).Int("candles", len(candles)).Msg("Fetched candles")

	res, err := f.pipeline.WithInterval(step).Run(ctx, symbol, candles)
	if err != nil {
		f.fail(err)
		return nil, err
	}

	if f.metrics != nil {
		f.metrics.RecordForecast(res)
	}
	if f.store != nil {
		if err := f.store.SaveForecast(ctx, res); err != nil {
			f.logger.Error().Err(err).Str("run_id", res.RunID).Msg("Failed to save forecast")
		}
	}

	return &Forecast{Result: res, Candles: candles}, nil
}

// Latest returns the most recently stored forecast for symbol, or nil.
func (f *Forecaster) Latest(ctx context.Context, symbol string) (*forecast.Result, error) {
	if f.store == nil {
		return nil, ErrNoStore
	}
	return f.store.LatestForecast(ctx, models.NormalizeSymbol(symbol))
}

func (f *Forecaster) fail(err error) {
	kind := ErrorKind(err)
	if f.metrics != nil {
		f.metrics.RecordError(kind)
	}
	f.logger.Error().Err(err).Str("kind", kind).Msg("Forecast failed")
}

// ErrorKind classifies a forecast error for metrics and API responses.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.Is(err, forecast.ErrDataUnavailable):
		return "data_unavailable"
	case errors.Is(err, forecast.ErrInsufficientHistory):
		return "insufficient_history"
	case errors.Is(err, forecast.ErrDegenerateScale):
		return "degenerate_scale"
	case errors.Is(err, forecast.ErrModelTrainingFailure):
		return "training_failure"
	default:
		return "internal"
	}
}

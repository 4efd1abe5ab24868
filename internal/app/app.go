// Package app wires configuration into the services shared by the binaries.
package app

import (
	"context"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Forecaster/internal/api/twelvedata"
	"github.com/Alias1177/Forecaster/internal/config"
	"github.com/Alias1177/Forecaster/internal/database"
	"github.com/Alias1177/Forecaster/internal/forecast"
	"github.com/Alias1177/Forecaster/internal/metrics"
	"github.com/Alias1177/Forecaster/internal/service"
)

// App holds the long-lived dependencies of a process.
type App struct {
	Config     *config.Config
	Registry   *prometheus.Registry
	Metrics    *metrics.Recorder
	DB         *database.DB
	Forecaster *service.Forecaster
}

// SetupLogger points the global zerolog logger at a console writer.
func SetupLogger(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).Level(lvl)
}

// New builds the forecaster and its dependencies. The database is optional
// and only opened when its settings are present.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.New(reg)

	client := twelvedata.NewClient(twelvedata.ClientOptions{
		APIKey:          cfg.TwelveAPIKey,
		RequestTimeout:  cfg.RequestTimeout,
		RequestsPerSec:  2,
		MaxRetries:      3,
		MaxRetryTimeout: 2 * cfg.RequestTimeout,
		Location:        time.UTC,
	})

	a := &App{Config: cfg, Registry: reg, Metrics: recorder}

	var store service.Store
	if cfg.DatabaseEnabled() {
		db, err := database.New(ctx, database.ConnectionParams{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.Name,
			SSLMode:  cfg.Database.SSLMode,
		})
		if err != nil {
			return nil, err
		}
		a.DB = db
		store = db
		log.Info().Str("host", cfg.Database.Host).Str("db", cfg.Database.Name).Msg("Forecast store connected")

		if days := cfg.Database.RetentionDays; days > 0 {
			n, err := db.PruneForecasts(ctx, time.Now().AddDate(0, 0, -days))
			if err != nil {
				log.Warn().Err(err).Msg("Failed to prune old forecasts")
			} else if n > 0 {
				log.Info().Int64("runs", n).Int("retention_days", days).Msg("Pruned old forecasts")
			}
		}
	} else {
		log.Warn().Msg("Database settings missing, forecasts will not be stored")
	}

	a.Forecaster = service.NewForecaster(client, forecast.NewPipeline(cfg.Forecast), store, recorder, service.Options{
		DefaultSymbol:   cfg.Symbol,
		DefaultInterval: cfg.Interval,
		HistoryDays:     cfg.HistoryDays,
		CandleCount:     cfg.CandleCount,
		RunTimeout:      cfg.RunTimeout,
		MaxConcurrent:   cfg.MaxConcurrent,
	})
	return a, nil
}

// Close releases the database connection if one was opened.
func (a *App) Close() {
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}
}

package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Forecaster/internal/service"
)

// Runner produces one forecast.
type Runner interface {
	Forecast(ctx context.Context, symbol, interval string) (*service.Forecast, error)
}

// Notify receives every successful scheduled forecast.
type Notify func(*service.Forecast)

// Scheduler runs forecasts for a fixed symbol list on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	runner   Runner
	symbols  []string
	interval string
	notify   Notify
	ctx      context.Context
	logger   zerolog.Logger
}

// New creates a Scheduler. Cron specs include a seconds field.
func New(ctx context.Context, runner Runner, symbols []string, interval string, notify Notify) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		runner:   runner,
		symbols:  symbols,
		interval: interval,
		notify:   notify,
		ctx:      ctx,
		logger:   log.With().Str("component", "scheduler").Logger(),
	}
}

// Register adds the forecast job under spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.RunOnce); err != nil {
		return fmt.Errorf("register forecast job: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Strs("symbols", s.symbols).Msg("Scheduler started")
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Scheduler stopped")
}

// RunOnce forecasts every symbol sequentially. A failing symbol is logged
// and does not stop the others.
func (s *Scheduler) RunOnce() {
	for _, symbol := range s.symbols {
		if s.ctx.Err() != nil {
			return
		}
		res, err := s.runner.Forecast(s.ctx, symbol, s.interval)
		if err != nil {
			s.logger.Error().Err(err).Str("symbol", symbol).Msg("Scheduled forecast failed")
			continue
		}
		if s.notify != nil {
			s.notify(res)
		}
	}
}

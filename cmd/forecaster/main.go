package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Forecaster/internal/app"
	"github.com/Alias1177/Forecaster/internal/bot"
	"github.com/Alias1177/Forecaster/internal/config"
	"github.com/Alias1177/Forecaster/internal/report"
	"github.com/Alias1177/Forecaster/internal/scheduler"
	"github.com/Alias1177/Forecaster/internal/service"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to an optional YAML config")
	symbol := flag.String("symbol", "", "ticker to forecast (overrides SYMBOL)")
	interval := flag.String("interval", "", "candle interval (overrides INTERVAL)")
	once := flag.Bool("once", false, "run a single forecast even when FORECAST_CRON is set")
	chartPath := flag.String("chart", "", "also write the one-shot forecast chart to this PNG file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	app.SetupLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize")
	}
	defer a.Close()

	if *symbol == "" {
		*symbol = cfg.Symbol
	}
	if *interval == "" {
		*interval = cfg.Interval
	}

	if cfg.Schedule.Cron == "" || *once {
		res, err := a.Forecaster.Forecast(ctx, *symbol, *interval)
		if err != nil {
			log.Fatal().Err(err).Str("kind", service.ErrorKind(err)).Msg("Forecast failed")
		}
		if err := report.WriteTable(os.Stdout, res.Result, res.Candles); err != nil {
			log.Fatal().Err(err).Msg("Failed to write report")
		}
		if *chartPath != "" {
			if err := writeChart(*chartPath, res); err != nil {
				log.Fatal().Err(err).Str("path", *chartPath).Msg("Failed to write chart")
			}
			log.Info().Str("path", *chartPath).Msg("Chart written")
		}
		return
	}

	symbols := cfg.Schedule.Symbols
	if len(symbols) == 0 {
		symbols = []string{*symbol}
	}

	notify := func(f *service.Forecast) {
		if err := report.WriteTable(os.Stdout, f.Result, f.Candles); err != nil {
			log.Error().Err(err).Msg("Failed to write report")
		}
	}
	if cfg.Telegram.BotToken != "" && len(cfg.Telegram.ChatIDs) > 0 {
		api, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Telegram bot")
		}
		b := bot.New(api, a.Forecaster, cfg.Symbol, cfg.Interval)
		toStdout := notify
		notify = func(f *service.Forecast) {
			toStdout(f)
			b.Broadcast(ctx, cfg.Telegram.ChatIDs, f)
		}
	}

	s := scheduler.New(ctx, a.Forecaster, symbols, *interval, notify)
	if err := s.Register(cfg.Schedule.Cron); err != nil {
		log.Fatal().Err(err).Msg("Invalid FORECAST_CRON")
	}
	s.Start()
	<-ctx.Done()
	s.Stop()
}

func writeChart(path string, f *service.Forecast) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.WriteChart(file, f.Result); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

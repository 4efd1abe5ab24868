package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Forecaster/internal/app"
	"github.com/Alias1177/Forecaster/internal/config"
	"github.com/Alias1177/Forecaster/internal/server"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
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

	srv := server.New(cfg.HTTP.Addr, server.NewHandler(a.Forecaster), a.Registry)
	if err := srv.Run(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server failed")
	}
}

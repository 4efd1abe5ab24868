package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cenkalti/backoff/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Forecaster/internal/report"
	"github.com/Alias1177/Forecaster/internal/service"
	"github.com/Alias1177/Forecaster/models"
)

// Sender is the part of tgbotapi.BotAPI the bot needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Runner produces forecasts.
type Runner interface {
	Forecast(ctx context.Context, symbol, interval string) (*service.Forecast, error)
}

type command int

const (
	cmdHelp command = iota
	cmdForecast
)

type forecastRequest struct {
	Symbol   string
	Interval string
}

// Bot answers forecast requests over Telegram.
type Bot struct {
	api             Sender
	runner          Runner
	defaultSymbol   string
	defaultInterval string
	// training is CPU bound, so requests run one at a time
	busy   chan struct{}
	logger zerolog.Logger
}

// New creates a Bot.
func New(api Sender, runner Runner, defaultSymbol, defaultInterval string) *Bot {
	return &Bot{
		api:             api,
		runner:          runner,
		defaultSymbol:   defaultSymbol,
		defaultInterval: defaultInterval,
		busy:            make(chan struct{}, 1),
		logger:          log.With().Str("component", "telegram_bot").Logger(),
	}
}

// Run consumes updates until ctx is done or the channel closes.
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				go b.HandleMessage(ctx, update.Message)
			}
		}
	}
}

// HandleMessage replies to a single chat message.
func (b *Bot) HandleMessage(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	cmd, req, err := parseMessage(message.Text, b.defaultSymbol, b.defaultInterval)
	if err != nil {
		b.reply(chatID, err.Error())
		return
	}
	if cmd == cmdHelp {
		b.reply(chatID, helpText(b.defaultSymbol, b.defaultInterval))
		return
	}

	select {
	case b.busy <- struct{}{}:
	default:
		b.reply(chatID, "Another forecast is running, yours is queued.")
		select {
		case b.busy <- struct{}{}:
		case <-ctx.Done():
			return
		}
	}
	defer func() { <-b.busy }()

	b.reply(chatID, fmt.Sprintf("Training a model for %s (%s). This can take a few minutes...", req.Symbol, req.Interval))

	res, err := b.runner.Forecast(ctx, req.Symbol, req.Interval)
	if err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Str("symbol", req.Symbol).Msg("Forecast failed")
		b.reply(chatID, userMessage(err, req.Symbol))
		return
	}

	msg := tgbotapi.NewMessage(chatID, report.Message(res.Result))
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send forecast")
	}

	photo, err := chartPhoto(chatID, res)
	if err != nil {
		b.logger.Error().Err(err).Str("symbol", req.Symbol).Msg("Failed to render chart")
		return
	}
	if _, err := b.api.Send(photo); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send chart")
	}
}

// Broadcast pushes a forecast and its chart to each chat, retrying
// transient send errors.
func (b *Bot) Broadcast(ctx context.Context, chatIDs []int64, f *service.Forecast) {
	text := report.Message(f.Result)
	var chart bytes.Buffer
	if err := report.WriteChart(&chart, f.Result); err != nil {
		b.logger.Error().Err(err).Str("symbol", f.Symbol).Msg("Failed to render chart")
		chart.Reset()
	}

	for _, chatID := range chatIDs {
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = tgbotapi.ModeMarkdown
		b.sendWithRetry(ctx, chatID, f.Symbol, msg)

		if chart.Len() > 0 {
			b.sendWithRetry(ctx, chatID, f.Symbol, newPhoto(chatID, f.Symbol, chart.Bytes()))
		}
	}
}

func (b *Bot) sendWithRetry(ctx context.Context, chatID int64, symbol string, c tgbotapi.Chattable) {
	op := func() error {
		_, err := b.api.Send(c)
		return err
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Str("symbol", symbol).Msg("Broadcast failed")
	}
}

func chartPhoto(chatID int64, f *service.Forecast) (tgbotapi.PhotoConfig, error) {
	var buf bytes.Buffer
	if err := report.WriteChart(&buf, f.Result); err != nil {
		return tgbotapi.PhotoConfig{}, err
	}
	return newPhoto(chatID, f.Symbol, buf.Bytes()), nil
}

func newPhoto(chatID int64, symbol string, png []byte) tgbotapi.PhotoConfig {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{
		Name:  "forecast.png",
		Bytes: png,
	})
	photo.Caption = symbol + " forecast"
	return photo
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send reply")
	}
}

// parseMessage accepts "/start", "/help", "/forecast [SYMBOL] [INTERVAL]"
// and a bare "SYMBOL [INTERVAL]".
func parseMessage(text, defSymbol, defInterval string) (command, forecastRequest, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return cmdHelp, forecastRequest{}, nil
	}

	args := fields
	if strings.HasPrefix(fields[0], "/") {
		// group chats send "/forecast@botname"
		name := strings.ToLower(strings.SplitN(fields[0], "@", 2)[0])
		switch name {
		case "/forecast", "/predict":
			args = fields[1:]
		default:
			return cmdHelp, forecastRequest{}, nil
		}
	}
	if len(args) > 2 {
		return cmdHelp, forecastRequest{}, errors.New("Usage: /forecast SYMBOL [INTERVAL]")
	}

	req := forecastRequest{Symbol: defSymbol, Interval: defInterval}
	if len(args) > 0 {
		req.Symbol = models.NormalizeSymbol(args[0])
	}
	if len(args) > 1 {
		req.Interval = strings.ToLower(args[1])
	}

	if !models.ValidSymbol(req.Symbol) {
		return cmdHelp, forecastRequest{}, fmt.Errorf("%q is not a ticker symbol", req.Symbol)
	}
	if _, err := models.ParseInterval(req.Interval); err != nil {
		return cmdHelp, forecastRequest{}, fmt.Errorf("Unsupported interval %q. Try 1min, 5min, 15min, 30min, 1h, 4h or 1day.", req.Interval)
	}
	return cmdForecast, req, nil
}

func helpText(defSymbol, defInterval string) string {
	return fmt.Sprintf("Send a ticker to get a 24-step price forecast from an LSTM model trained on recent history.\n\n"+
		"Examples:\n/forecast\n/forecast TSLA\n/forecast EUR/USD 15min\nAAPL 1day\n\n"+
		"Defaults: %s, %s", defSymbol, defInterval)
}

func userMessage(err error, symbol string) string {
	switch service.ErrorKind(err) {
	case "invalid_request":
		return fmt.Sprintf("%q is not a ticker symbol or the interval is unsupported.", symbol)
	case "data_unavailable":
		return fmt.Sprintf("Could not load price history for %s. Check the ticker and try again.", symbol)
	case "insufficient_history":
		return fmt.Sprintf("Not enough history for %s to train a model. Try a shorter interval.", symbol)
	case "degenerate_scale":
		return fmt.Sprintf("The price of %s did not move over the history window, nothing to learn from.", symbol)
	case "timeout":
		return "Training took too long and was stopped. Please try again later."
	default:
		return "Sorry, the forecast failed. Please try again later."
	}
}

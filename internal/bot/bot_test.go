package bot

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Alias1177/Forecaster/internal/forecast"
	"github.com/Alias1177/Forecaster/internal/service"
	"github.com/Alias1177/Forecaster/models"
)

type fakeSender struct {
	mu     sync.Mutex
	sent   []tgbotapi.MessageConfig
	photos []tgbotapi.PhotoConfig
}

func (s *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch m := c.(type) {
	case tgbotapi.MessageConfig:
		s.sent = append(s.sent, m)
	case tgbotapi.PhotoConfig:
		s.photos = append(s.photos, m)
	}
	return tgbotapi.Message{}, nil
}

func (s *fakeSender) last() tgbotapi.MessageConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent[len(s.sent)-1]
}

type fakeRunner struct {
	err      error
	symbol   string
	interval string
}

func (r *fakeRunner) Forecast(_ context.Context, symbol, interval string) (*service.Forecast, error) {
	r.symbol, r.interval = symbol, interval
	if r.err != nil {
		return nil, r.err
	}
	ts := time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC)
	return &service.Forecast{Result: &forecast.Result{
		Symbol:    symbol,
		Interval:  time.Hour,
		LastClose: 180,
		Records:   []models.PredictionRecord{{Step: 1, Timestamp: ts, PredictedPrice: 181, Direction: models.DirectionUp}},
	}}, nil
}

func TestParseMessage(t *testing.T) {
	tests := []struct {
		text    string
		cmd     command
		want    forecastRequest
		wantErr bool
	}{
		{text: "/start", cmd: cmdHelp},
		{text: "", cmd: cmdHelp},
		{text: "/forecast", cmd: cmdForecast, want: forecastRequest{"AMZN", "1h"}},
		{text: "/forecast@PriceBot tsla", cmd: cmdForecast, want: forecastRequest{"TSLA", "1h"}},
		{text: "/forecast EUR/USD 15MIN", cmd: cmdForecast, want: forecastRequest{"EUR/USD", "15min"}},
		{text: "aapl 1day", cmd: cmdForecast, want: forecastRequest{"AAPL", "1day"}},
		{text: "aapl 3h", wantErr: true},
		{text: "what is the price", wantErr: true},
		{text: "$$$", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			cmd, req, err := parseMessage(tt.text, "AMZN", "1h")
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseMessage(%q) error = %v, wantErr %v", tt.text, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if cmd != tt.cmd || req != tt.want {
				t.Errorf("parseMessage(%q) = %v %+v, want %v %+v", tt.text, cmd, req, tt.cmd, tt.want)
			}
		})
	}
}

func message(text string) *tgbotapi.Message {
	return &tgbotapi.Message{Text: text, Chat: &tgbotapi.Chat{ID: 42}}
}

func TestHandleMessageForecast(t *testing.T) {
	sender := &fakeSender{}
	runner := &fakeRunner{}
	b := New(sender, runner, "AMZN", "1h")

	b.HandleMessage(context.Background(), message("/forecast msft"))

	if runner.symbol != "MSFT" || runner.interval != "1h" {
		t.Fatalf("runner got %q %q", runner.symbol, runner.interval)
	}
	got := sender.last()
	if got.ChatID != 42 || got.ParseMode != tgbotapi.ModeMarkdown || !strings.Contains(got.Text, "MSFT") {
		t.Errorf("last message = %+v", got)
	}
	if len(b.busy) != 0 {
		t.Error("busy slot not released")
	}

	if len(sender.photos) != 1 {
		t.Fatalf("sent %d charts, want 1", len(sender.photos))
	}
	photo := sender.photos[0]
	file, ok := photo.File.(tgbotapi.FileBytes)
	if photo.ChatID != 42 || !ok || !bytes.HasPrefix(file.Bytes, []byte("\x89PNG")) {
		t.Errorf("chart = chat %d, file %T", photo.ChatID, photo.File)
	}
}

func TestHandleMessageErrors(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("fetch: %w", forecast.ErrDataUnavailable), "Could not load price history"},
		{forecast.ErrInsufficientHistory, "Not enough history"},
		{forecast.ErrDegenerateScale, "did not move"},
		{context.DeadlineExceeded, "took too long"},
		{fmt.Errorf("%w: symbol %q", service.ErrInvalidRequest, "AMZN"), "not a ticker symbol"},
	}

	for _, tt := range tests {
		sender := &fakeSender{}
		New(sender, &fakeRunner{err: tt.err}, "AMZN", "1h").HandleMessage(context.Background(), message("AMZN"))
		if got := sender.last().Text; !strings.Contains(got, tt.want) {
			t.Errorf("reply to %v = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestHandleMessageHelp(t *testing.T) {
	sender := &fakeSender{}
	runner := &fakeRunner{}
	New(sender, runner, "AMZN", "1h").HandleMessage(context.Background(), message("/start"))

	if runner.symbol != "" {
		t.Error("help triggered a forecast")
	}
	if !strings.Contains(sender.last().Text, "/forecast TSLA") {
		t.Errorf("help text = %q", sender.last().Text)
	}
}

func TestBroadcast(t *testing.T) {
	sender := &fakeSender{}
	b := New(sender, &fakeRunner{}, "AMZN", "1h")
	f, _ := (&fakeRunner{}).Forecast(context.Background(), "AMZN", "1h")

	b.Broadcast(context.Background(), []int64{1, 2}, f)

	if len(sender.sent) != 2 || sender.sent[0].ChatID != 1 || sender.sent[1].ChatID != 2 {
		t.Errorf("sent = %+v", sender.sent)
	}
	if len(sender.photos) != 2 || sender.photos[1].ChatID != 2 {
		t.Errorf("sent %d charts, want one per chat", len(sender.photos))
	}
}

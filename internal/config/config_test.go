package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Symbol != "AMZN" || cfg.Interval != "1h" || cfg.HistoryDays != 180 {
		t.Errorf("unexpected defaults: symbol=%s interval=%s days=%d", cfg.Symbol, cfg.Interval, cfg.HistoryDays)
	}
	if cfg.Forecast.WindowLength != 60 || cfg.Forecast.ForecastHorizon != 24 || cfg.Forecast.Epochs != 50 {
		t.Errorf("forecast defaults not applied: %+v", cfg.Forecast)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("request timeout = %v", cfg.RequestTimeout)
	}
	if cfg.MaxConcurrent != 1 {
		t.Errorf("max concurrent runs = %d, want 1", cfg.MaxConcurrent)
	}
	if cfg.DatabaseEnabled() {
		t.Error("database enabled without settings")
	}
}

func TestLoadYAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlDoc := `
symbol: EUR/USD
interval: 5min
forecast:
  epochs: 10
  window_length: 30
schedule:
  cron: "0 0 * * * *"
  symbols: [EUR/USD, GBP/USD]
`
	if err := os.WriteFile(path, []byte(yamlDoc), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("EPOCHS", "3")
	t.Setenv("RUN_TIMEOUT", "90")
	t.Setenv("TELEGRAM_CHAT_IDS", "101, 202,not-a-number")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Symbol != "EUR/USD" || cfg.Interval != "5min" {
		t.Errorf("yaml not applied: %s %s", cfg.Symbol, cfg.Interval)
	}
	if cfg.Forecast.WindowLength != 30 {
		t.Errorf("window length = %d, want 30", cfg.Forecast.WindowLength)
	}
	if cfg.Forecast.Epochs != 3 {
		t.Errorf("env override lost: epochs = %d", cfg.Forecast.Epochs)
	}
	if cfg.Forecast.BatchSize != 64 {
		t.Errorf("default lost under yaml: batch size = %d", cfg.Forecast.BatchSize)
	}
	if cfg.RunTimeout != 90*time.Second {
		t.Errorf("run timeout = %v, want 90s", cfg.RunTimeout)
	}
	if len(cfg.Schedule.Symbols) != 2 {
		t.Errorf("schedule symbols = %v", cfg.Schedule.Symbols)
	}
	if ids := cfg.Telegram.ChatIDs; len(ids) != 2 || ids[0] != 101 || ids[1] != 202 {
		t.Errorf("chat ids = %v, want [101 202]", ids)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"TRAIN_FRACTION", "1.5"},
		{"MAX_CONCURRENT_RUNS", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(""); err == nil {
				t.Fatalf("Load() accepted %s=%s", tt.key, tt.value)
			}
		})
	}
}

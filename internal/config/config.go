package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/Alias1177/Forecaster/internal/forecast"
)

// Config holds all application configuration
type Config struct {
	TwelveAPIKey   string        `yaml:"twelve_api_key"`
	Symbol         string        `yaml:"symbol" default:"AMZN" validate:"required"`
	Interval       string        `yaml:"interval" default:"1h" validate:"oneof=1min 5min 15min 30min 45min 1h 2h 4h 8h 1day 1week"`
	HistoryDays    int           `yaml:"history_days" default:"180" validate:"gte=1"`
	CandleCount    int           `yaml:"candle_count" validate:"gte=0,lte=5000"` // 0 derives it from HistoryDays
	LogLevel       string        `yaml:"log_level" default:"info"`
	RequestTimeout time.Duration `yaml:"request_timeout" default:"30s"`
	RunTimeout     time.Duration `yaml:"run_timeout" default:"15m"`
	MaxConcurrent  int           `yaml:"max_concurrent_runs" default:"1" validate:"gte=1"`

	Forecast forecast.Config `yaml:"forecast"`

	Database struct {
		Host     string `yaml:"host"`
		Port     string `yaml:"port" default:"5432"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslmode" default:"disable"`

		// RetentionDays drops stored runs older than this at startup; 0 keeps all
		RetentionDays int `yaml:"retention_days" default:"90" validate:"gte=0"`
	} `yaml:"database"`

	Telegram struct {
		BotToken string  `yaml:"bot_token"`
		ChatIDs  []int64 `yaml:"chat_ids"` // receive scheduled forecasts
	} `yaml:"telegram"`

	HTTP struct {
		Addr string `yaml:"addr" default:":8080"`
	} `yaml:"http"`

	Schedule struct {
		Cron    string   `yaml:"cron"`
		Symbols []string `yaml:"symbols"`
	} `yaml:"schedule"`
}

// Load builds the configuration: struct defaults, then the optional YAML
// file at path, then environment variables (a .env file is loaded first
// when present).
func Load(path string) (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overrides fields from environment variables
func applyEnv(cfg *Config) {
	cfg.TwelveAPIKey = getEnvWithDefault("TWELVE_API_KEY", cfg.TwelveAPIKey)
	cfg.Symbol = getEnvWithDefault("SYMBOL", cfg.Symbol)
	cfg.Interval = getEnvWithDefault("INTERVAL", cfg.Interval)
	cfg.HistoryDays = getEnvIntWithDefault("HISTORY_DAYS", cfg.HistoryDays)
	cfg.CandleCount = getEnvIntWithDefault("CANDLE_COUNT", cfg.CandleCount)
	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.RequestTimeout = getEnvDurationWithDefault("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.RunTimeout = getEnvDurationWithDefault("RUN_TIMEOUT", cfg.RunTimeout)
	cfg.MaxConcurrent = getEnvIntWithDefault("MAX_CONCURRENT_RUNS", cfg.MaxConcurrent)

	f := &cfg.Forecast
	f.WindowLength = getEnvIntWithDefault("WINDOW_LENGTH", f.WindowLength)
	f.ForecastHorizon = getEnvIntWithDefault("FORECAST_HORIZON", f.ForecastHorizon)
	f.TrainFraction = getEnvFloatWithDefault("TRAIN_FRACTION", f.TrainFraction)
	f.BatchSize = getEnvIntWithDefault("BATCH_SIZE", f.BatchSize)
	f.Epochs = getEnvIntWithDefault("EPOCHS", f.Epochs)
	f.HiddenWidth = getEnvIntWithDefault("HIDDEN_WIDTH", f.HiddenWidth)
	f.DenseWidth = getEnvIntWithDefault("DENSE_WIDTH", f.DenseWidth)
	f.DropoutRate = getEnvFloatWithDefault("DROPOUT_RATE", f.DropoutRate)
	f.LearningRate = getEnvFloatWithDefault("LEARNING_RATE", f.LearningRate)
	f.Seed = int64(getEnvIntWithDefault("SEED", int(f.Seed)))

	cfg.Database.Host = getEnvWithDefault("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnvWithDefault("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnvWithDefault("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnvWithDefault("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Name = getEnvWithDefault("DB_NAME", cfg.Database.Name)
	cfg.Database.SSLMode = getEnvWithDefault("DB_SSLMODE", cfg.Database.SSLMode)
	cfg.Database.RetentionDays = getEnvIntWithDefault("DB_RETENTION_DAYS", cfg.Database.RetentionDays)

	cfg.Telegram.BotToken = getEnvWithDefault("TELEGRAM_BOT_TOKEN", cfg.Telegram.BotToken)
	if v := os.Getenv("TELEGRAM_CHAT_IDS"); v != "" {
		cfg.Telegram.ChatIDs = nil
		for _, s := range splitList(v) {
			id, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				log.Warn().Str("value", s).Msg("Ignoring invalid Telegram chat ID")
				continue
			}
			cfg.Telegram.ChatIDs = append(cfg.Telegram.ChatIDs, id)
		}
	}
	cfg.HTTP.Addr = getEnvWithDefault("HTTP_ADDR", cfg.HTTP.Addr)
	cfg.Schedule.Cron = getEnvWithDefault("FORECAST_CRON", cfg.Schedule.Cron)
	if v := os.Getenv("FORECAST_SYMBOLS"); v != "" {
		cfg.Schedule.Symbols = splitList(v)
	}
}

// Validate checks field constraints, including the forecast hyperparameters
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// DatabaseEnabled reports whether PostgreSQL connection settings are present
func (c *Config) DatabaseEnabled() bool {
	return c.Database.Host != "" && c.Database.Name != ""
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring non-integer environment value")
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring non-numeric environment value")
	}
	return defaultValue
}

// getEnvDurationWithDefault accepts Go durations ("90s") or plain seconds ("30")
func getEnvDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring invalid duration")
	}
	return defaultValue
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

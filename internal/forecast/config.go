package forecast

import (
	"fmt"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Config holds the pipeline and model hyperparameters.
type Config struct {
	WindowLength    int           `yaml:"window_length" default:"60" validate:"gte=1"`
	ForecastHorizon int           `yaml:"forecast_horizon" default:"24" validate:"gte=1"`
	TrainFraction   float64       `yaml:"train_fraction" default:"0.8" validate:"gt=0,lt=1"`
	BatchSize       int           `yaml:"batch_size" default:"64" validate:"gte=1"`
	Epochs          int           `yaml:"epochs" default:"50" validate:"gte=1"`
	HiddenWidth     int           `yaml:"hidden_width" default:"50" validate:"gte=1"`
	DenseWidth      int           `yaml:"dense_width" default:"25" validate:"gte=1"`
	DropoutRate     float64       `yaml:"dropout_rate" default:"0.2" validate:"gte=0,lt=1"`
	LearningRate    float64       `yaml:"learning_rate" default:"0.001" validate:"gt=0"`
	Seed            int64         `yaml:"seed" default:"42"`
	// Interval overrides the sampling interval inferred from the input timestamps.
	Interval time.Duration `yaml:"interval"`
}

// DefaultConfig returns the configuration the forecaster was designed around.
func DefaultConfig() Config {
	var cfg Config
	defaults.MustSet(&cfg)
	return cfg
}

// Validate checks the hyperparameters are usable.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid forecast config: %w", err)
	}
	return nil
}

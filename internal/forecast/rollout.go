package forecast

import (
	"fmt"
	"time"

	"github.com/Alias1177/Forecaster/models"
)

// Predictor is the read-only half of SequenceModel.
type Predictor interface {
	Predict(window []float64) (float64, error)
}

// Rollout forecasts horizon steps past seed by feeding every prediction back
// into the window. Step i compares the new price with the window's last
// value, which from step 2 on is itself a prediction. Records are stamped
// base+i*interval.
func Rollout(model Predictor, scaler *MinMaxScaler, seed Window, base time.Time, interval time.Duration, horizon int) ([]models.PredictionRecord, error) {
	if !scaler.Fitted() {
		return nil, ErrScalerNotFitted
	}
	if seed.Len() == 0 {
		return nil, fmt.Errorf("empty seed window: %w", ErrInsufficientHistory)
	}

	records := make([]models.PredictionRecord, 0, horizon)
	window := seed
	for i := 1; i <= horizon; i++ {
		next, err := model.Predict(window.Values())
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}

		price := scaler.InverseValue(next)
		lastPrice := scaler.InverseValue(window.Last())

		records = append(records, models.PredictionRecord{
			Step:           i,
			Timestamp:      base.Add(time.Duration(i) * interval),
			PredictedPrice: price,
			Direction:      models.DirectionBetween(lastPrice, price),
		})
		window = window.Slide(next)
	}
	return records, nil
}

package forecast

import (
	"fmt"
	"math"

	"github.com/Alias1177/Forecaster/models"
)

// Evaluation measures one-step accuracy on held-out windows.
type Evaluation struct {
	Samples int `json:"samples"`
	// MSE is measured on the scaled series, comparable to the training loss.
	MSE float64 `json:"mse"`
	// RMSE is in price units.
	RMSE float64 `json:"rmse"`
	// DirectionalAccuracy is the share of windows where the predicted move
	// away from the window's last value has the same sign as the real one.
	DirectionalAccuracy float64 `json:"directional_accuracy"`
}

// Evaluate runs one-step predictions over pairs.
func Evaluate(model Predictor, scaler *MinMaxScaler, pairs []Pair) (Evaluation, error) {
	ev := Evaluation{Samples: len(pairs)}
	if len(pairs) == 0 {
		return ev, nil
	}

	sq, hits := 0.0, 0
	for _, p := range pairs {
		pred, err := model.Predict(p.Window)
		if err != nil {
			return ev, fmt.Errorf("evaluate window at %d: %w", p.Start, err)
		}
		diff := pred - p.Target
		sq += diff * diff

		last := p.Window[len(p.Window)-1]
		if models.DirectionBetween(last, pred) == models.DirectionBetween(last, p.Target) {
			hits++
		}
	}

	ev.MSE = sq / float64(len(pairs))
	ev.RMSE = math.Sqrt(ev.MSE) * (scaler.Max - scaler.Min)
	ev.DirectionalAccuracy = float64(hits) / float64(len(pairs))
	return ev, nil
}

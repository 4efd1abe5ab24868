package forecast

import (
	"fmt"
	"sort"
	"time"

	"github.com/Alias1177/Forecaster/models"
)

// ClosePrices extracts the close column.
func ClosePrices(candles []models.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// HistoricalDirections labels each candle UP when it closed above its open.
func HistoricalDirections(candles []models.Candle) []models.Direction {
	out := make([]models.Direction, len(candles))
	for i, c := range candles {
		out[i] = models.DirectionBetween(c.Open, c.Close)
	}
	return out
}

// InferInterval returns the median gap between consecutive timestamps.
// The median ignores overnight and weekend gaps in intraday data.
func InferInterval(candles []models.Candle) (time.Duration, error) {
	gaps := make([]time.Duration, 0, len(candles))
	for i := 1; i < len(candles); i++ {
		if d := candles[i].Timestamp.Sub(candles[i-1].Timestamp); d > 0 {
			gaps = append(gaps, d)
		}
	}
	if len(gaps) == 0 {
		return 0, fmt.Errorf("cannot infer sampling interval from %d candles: %w", len(candles), ErrInsufficientHistory)
	}

	sort.Slice(gaps, func(i, j int) bool { return gaps[i] < gaps[j] })
	return gaps[len(gaps)/2], nil
}

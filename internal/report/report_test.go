package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/Alias1177/Forecaster/internal/forecast"
	"github.com/Alias1177/Forecaster/models"
)

func sampleResult() (*forecast.Result, []models.Candle) {
	base := time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC)
	var candles []models.Candle
	for i := 0; i < 8; i++ {
		open := 180 + float64(i)
		close := open + 0.5
		if i%2 == 1 {
			close = open - 0.5
		}
		candles = append(candles, models.Candle{Timestamp: base.Add(time.Duration(i) * time.Hour), Open: open, High: open + 1, Low: open - 1, Close: close})
	}
	last := candles[len(candles)-1]
	res := &forecast.Result{
		RunID:        "run-1",
		Symbol:       "AMZN",
		Interval:     time.Hour,
		LastObserved: last.Timestamp,
		LastClose:    last.Close,
		Records: []models.PredictionRecord{
			{Step: 1, Timestamp: last.Timestamp.Add(time.Hour), PredictedPrice: 187.25, Direction: models.DirectionUp},
			{Step: 2, Timestamp: last.Timestamp.Add(2 * time.Hour), PredictedPrice: 186.9, Direction: models.DirectionDown},
		},
		Evaluation: forecast.Evaluation{RMSE: 1.234, DirectionalAccuracy: 0.55},
	}
	return res, candles
}

func TestPrice(t *testing.T) {
	tests := []struct {
		p      float64
		places int32
		want   string
	}{
		{187.256, 2, "187.26"},
		{1.08, 5, "1.08000"},
		{25000, 1, "25000.0"},
	}
	for _, tt := range tests {
		if got := Price(tt.p, tt.places); got != tt.want {
			t.Errorf("Price(%v, %d) = %q, want %q", tt.p, tt.places, got, tt.want)
		}
	}

	if PricePlaces(1.08) != 5 || PricePlaces(187) != 2 || PricePlaces(25000) != 1 {
		t.Error("unexpected precision choice")
	}
}

func TestWriteTable(t *testing.T) {
	res, candles := sampleResult()
	var buf bytes.Buffer
	if err := WriteTable(&buf, res, candles); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	// only the last five candles are listed
	if strings.Contains(out, "2024-05-06 12:00") {
		t.Error("table includes a candle older than the tail")
	}
	if !strings.Contains(out, "2024-05-06 13:00") {
		t.Error("table misses the first tail candle")
	}
	for _, want := range []string{"187.25", "186.90", "UP", "DOWN", "55.0%"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestMessage(t *testing.T) {
	res, _ := sampleResult()
	msg := Message(res)
	for _, want := range []string{"*Forecast for AMZN (1h)*", "UP steps: 1 of 2", "187.25"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Alias1177/Forecaster/internal/forecast"
	"github.com/Alias1177/Forecaster/models"
)

func TestRecordForecast(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordForecast(&forecast.Result{
		Symbol: "AMZN",
		Records: []models.PredictionRecord{
			{Direction: models.DirectionUp},
			{Direction: models.DirectionDown},
			{Direction: models.DirectionUp},
		},
	})
	r.RecordError("degenerate_scale")

	if got := testutil.ToFloat64(r.forecastsTotal.WithLabelValues("AMZN")); got != 1 {
		t.Errorf("runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.stepsTotal.WithLabelValues("AMZN", "UP")); got != 2 {
		t.Errorf("UP steps = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.errorsTotal.WithLabelValues("degenerate_scale")); got != 1 {
		t.Errorf("errors = %v, want 1", got)
	}

	// a second recorder on its own registry must not collide
	New(prometheus.NewRegistry())
}

package forecast

import (
	"testing"
	"time"

	"github.com/Alias1177/Forecaster/models"
)

// stepPredictor returns the window's last value plus delta and records
// every window it was given.
type stepPredictor struct {
	delta float64
	seen  [][]float64
}

func (p *stepPredictor) Predict(window []float64) (float64, error) {
	p.seen = append(p.seen, window)
	return window[len(window)-1] + p.delta, nil
}

func fittedScaler(t *testing.T) *MinMaxScaler {
	t.Helper()
	var s MinMaxScaler
	if err := s.Fit([]float64{100, 200}); err != nil {
		t.Fatal(err)
	}
	return &s
}

func TestRolloutTimestampsAndCount(t *testing.T) {
	base := time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC)
	seed := NewWindow([]float64{0.1, 0.2, 0.3})

	records, err := Rollout(&stepPredictor{delta: 0.01}, fittedScaler(t), seed, base, time.Hour, 24)
	if err != nil {
		t.Fatalf("Rollout() error = %v", err)
	}
	if len(records) != 24 {
		t.Fatalf("got %d records, want 24", len(records))
	}
	for i, r := range records {
		want := base.Add(time.Duration(i+1) * time.Hour)
		if !r.Timestamp.Equal(want) {
			t.Errorf("record %d at %v, want %v", i, r.Timestamp, want)
		}
		if r.Step != i+1 {
			t.Errorf("record %d has step %d", i, r.Step)
		}
		if r.Direction != models.DirectionUp {
			t.Errorf("record %d direction %s, want UP", i, r.Direction)
		}
	}
	if got := records[0].PredictedPrice; got < 130.999 || got > 131.001 {
		t.Errorf("first price = %v, want 131", got)
	}
}

func TestRolloutFeedsPredictionsBack(t *testing.T) {
	p := &stepPredictor{delta: -0.05}
	seed := NewWindow([]float64{0.5, 0.6, 0.7})

	records, err := Rollout(p, fittedScaler(t), seed, time.Unix(0, 0), time.Minute, 3)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]float64{
		{0.5, 0.6, 0.7},
		{0.6, 0.7, 0.65},
		{0.7, 0.65, 0.6},
	}
	for i, w := range want {
		for k := range w {
			if diff := p.seen[i][k] - w[k]; diff > 1e-12 || diff < -1e-12 {
				t.Fatalf("step %d window = %v, want %v", i+1, p.seen[i], w)
			}
		}
	}
	for _, r := range records {
		if r.Direction != models.DirectionDown {
			t.Errorf("step %d direction %s, want DOWN", r.Step, r.Direction)
		}
	}
	if seed.Last() != 0.7 {
		t.Error("rollout modified the seed window")
	}
}

func TestRolloutTieIsDown(t *testing.T) {
	records, err := Rollout(&stepPredictor{}, fittedScaler(t), NewWindow([]float64{0.25, 0.5}), time.Unix(0, 0), time.Hour, 2)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range records {
		if r.PredictedPrice != 150 {
			t.Fatalf("price %v, want 150", r.PredictedPrice)
		}
		if r.Direction != models.DirectionDown {
			t.Errorf("equal price labelled %s, want DOWN", r.Direction)
		}
	}
}

func TestRolloutRequiresFittedScaler(t *testing.T) {
	_, err := Rollout(&stepPredictor{}, &MinMaxScaler{}, NewWindow([]float64{1}), time.Unix(0, 0), time.Hour, 1)
	if err == nil {
		t.Fatal("Rollout() accepted an unfitted scaler")
	}
}

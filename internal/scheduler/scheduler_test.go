package scheduler

import (
	"context"
	"testing"

	"github.com/Alias1177/Forecaster/internal/forecast"
	"github.com/Alias1177/Forecaster/internal/service"
)

type fakeRunner struct {
	calls []string
	fail  map[string]bool
}

func (r *fakeRunner) Forecast(_ context.Context, symbol, interval string) (*service.Forecast, error) {
	r.calls = append(r.calls, symbol+"@"+interval)
	if r.fail[symbol] {
		return nil, forecast.ErrDataUnavailable
	}
	return &service.Forecast{Result: &forecast.Result{Symbol: symbol}}, nil
}

func TestRunOnceContinuesAfterFailure(t *testing.T) {
	runner := &fakeRunner{fail: map[string]bool{"MSFT": true}}
	var notified []string
	s := New(context.Background(), runner, []string{"AMZN", "MSFT", "AAPL"}, "1h", func(f *service.Forecast) {
		notified = append(notified, f.Symbol)
	})

	s.RunOnce()

	if len(runner.calls) != 3 || runner.calls[0] != "AMZN@1h" {
		t.Fatalf("calls = %v", runner.calls)
	}
	if len(notified) != 2 || notified[0] != "AMZN" || notified[1] != "AAPL" {
		t.Errorf("notified = %v", notified)
	}
}

func TestRunOnceStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runner := &fakeRunner{}
	New(ctx, runner, []string{"AMZN"}, "1h", nil).RunOnce()
	if len(runner.calls) != 0 {
		t.Errorf("ran %v after cancel", runner.calls)
	}
}

func TestRegister(t *testing.T) {
	s := New(context.Background(), &fakeRunner{}, nil, "1h", nil)
	if err := s.Register("0 0 * * * *"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := s.Register("every hour"); err == nil {
		t.Error("Register() accepted an invalid spec")
	}
}

package models

import (
	"testing"
	"time"
)

func TestParseInterval(t *testing.T) {
	tests := []struct {
		interval string
		want     time.Duration
		wantErr  bool
	}{
		{interval: "1h", want: time.Hour},
		{interval: "5min", want: 5 * time.Minute},
		{interval: "1day", want: 24 * time.Hour},
		{interval: "3min", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.interval, func(t *testing.T) {
			got, err := ParseInterval(tt.interval)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseInterval(%q) expected error", tt.interval)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseInterval(%q) unexpected error: %v", tt.interval, err)
			}
			if got != tt.want {
				t.Errorf("ParseInterval(%q) = %v, want %v", tt.interval, got, tt.want)
			}
		})
	}
}

func TestCandlesForPeriod(t *testing.T) {
	if got := CandlesForPeriod("1h", 30); got != 792 {
		t.Errorf("CandlesForPeriod(1h, 30) = %d, want 792", got)
	}
	if got := CandlesForPeriod("1min", 30); got != MaxOutputSize {
		t.Errorf("CandlesForPeriod(1min, 30) = %d, want clamp to %d", got, MaxOutputSize)
	}
}

func TestDirectionBetween(t *testing.T) {
	if d := DirectionBetween(10, 11); d != DirectionUp {
		t.Errorf("rise labelled %s", d)
	}
	if d := DirectionBetween(10, 9); d != DirectionDown {
		t.Errorf("fall labelled %s", d)
	}
	if d := DirectionBetween(10, 10); d != DirectionDown {
		t.Errorf("tie labelled %s, want DOWN", d)
	}
	if DirectionUp.Flag() != 1 || DirectionDown.Flag() != 0 {
		t.Error("unexpected direction flags")
	}
}

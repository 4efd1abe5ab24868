package forecast

import (
	"errors"
	"math"
	"testing"
)

func TestMinMaxScalerRoundTrip(t *testing.T) {
	series := []float64{101.5, 99.25, 130.75, 120, 99.25, 125.125}
	var s MinMaxScaler
	scaled, err := s.FitTransform(series)
	if err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}
	if s.Min != 99.25 || s.Max != 130.75 {
		t.Fatalf("fitted range = [%v, %v], want [99.25, 130.75]", s.Min, s.Max)
	}

	for i, v := range scaled {
		if v < 0 || v > 1 {
			t.Errorf("scaled[%d] = %v outside [0,1]", i, v)
		}
	}
	if scaled[1] != 0 || scaled[2] != 1 {
		t.Errorf("min/max scaled to %v/%v, want 0/1", scaled[1], scaled[2])
	}

	back, err := s.InverseTransform(scaled)
	if err != nil {
		t.Fatalf("InverseTransform() error = %v", err)
	}
	for i := range series {
		if math.Abs(back[i]-series[i]) > 1e-9 {
			t.Errorf("round trip of %v = %v", series[i], back[i])
		}
	}

	for v := s.Min; v <= s.Max; v += 0.37 {
		if got := s.InverseValue(s.TransformValue(v)); math.Abs(got-v) > 1e-9 {
			t.Errorf("InverseValue(TransformValue(%v)) = %v", v, got)
		}
	}
}

func TestMinMaxScalerErrors(t *testing.T) {
	tests := []struct {
		name   string
		series []float64
		want   error
	}{
		{name: "empty", series: nil, want: ErrDataUnavailable},
		{name: "constant", series: []float64{42, 42, 42}, want: ErrDegenerateScale},
		{name: "single value", series: []float64{7}, want: ErrDegenerateScale},
		{name: "nan", series: []float64{1, math.NaN(), 3}, want: ErrDataUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s MinMaxScaler
			err := s.Fit(tt.series)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Fit() error = %v, want %v", err, tt.want)
			}
			if s.Fitted() {
				t.Error("scaler reports fitted after failed Fit")
			}
		})
	}
}

func TestMinMaxScalerRequiresFit(t *testing.T) {
	var s MinMaxScaler
	if _, err := s.Transform([]float64{1}); !errors.Is(err, ErrScalerNotFitted) {
		t.Errorf("Transform() error = %v, want ErrScalerNotFitted", err)
	}
	if _, err := s.InverseTransform([]float64{1}); !errors.Is(err, ErrScalerNotFitted) {
		t.Errorf("InverseTransform() error = %v, want ErrScalerNotFitted", err)
	}
}

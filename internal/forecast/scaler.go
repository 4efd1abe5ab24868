package forecast

import (
	"fmt"
	"math"
)

// MinMaxScaler maps prices linearly onto [0,1] using the range seen at Fit time.
// It is not modified after Fit, so a fitted scaler can be shared read-only.
type MinMaxScaler struct {
	Min    float64
	Max    float64
	fitted bool
}

// Fit records the min and max of series.
func (s *MinMaxScaler) Fit(series []float64) error {
	if len(series) == 0 {
		return fmt.Errorf("fit scaler: %w", ErrDataUnavailable)
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range series {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("fit scaler: non-finite price %v: %w", v, ErrDataUnavailable)
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return fmt.Errorf("fit scaler: all %d prices equal %v: %w", len(series), lo, ErrDegenerateScale)
	}

	s.Min, s.Max, s.fitted = lo, hi, true
	return nil
}

// FitTransform fits the scaler to series and returns the scaled copy.
func (s *MinMaxScaler) FitTransform(series []float64) ([]float64, error) {
	if err := s.Fit(series); err != nil {
		return nil, err
	}
	return s.Transform(series)
}

// Transform scales values with (v-min)/(max-min).
func (s *MinMaxScaler) Transform(values []float64) ([]float64, error) {
	if !s.fitted {
		return nil, ErrScalerNotFitted
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = s.TransformValue(v)
	}
	return out, nil
}

// InverseTransform maps scaled values back to prices.
func (s *MinMaxScaler) InverseTransform(values []float64) ([]float64, error) {
	if !s.fitted {
		return nil, ErrScalerNotFitted
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = s.InverseValue(v)
	}
	return out, nil
}

// TransformValue scales a single price. The scaler must be fitted.
func (s *MinMaxScaler) TransformValue(v float64) float64 {
	return (v - s.Min) / (s.Max - s.Min)
}

// InverseValue maps a single scaled value back to a price. The scaler must be fitted.
func (s *MinMaxScaler) InverseValue(v float64) float64 {
	return v*(s.Max-s.Min) + s.Min
}

// Fitted reports whether Fit has succeeded.
func (s *MinMaxScaler) Fitted() bool {
	return s.fitted
}

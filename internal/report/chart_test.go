package report

import (
	"bytes"
	"errors"
	"image/png"
	"testing"

	"github.com/Alias1177/Forecaster/internal/forecast"
)

func TestWriteChart(t *testing.T) {
	res, _ := sampleResult()
	var buf bytes.Buffer
	if err := WriteChart(&buf, res); err != nil {
		t.Fatalf("WriteChart() error = %v", err)
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if cfg.Width <= 0 || cfg.Width <= cfg.Height {
		t.Errorf("chart is %dx%d, want a landscape image", cfg.Width, cfg.Height)
	}
}

func TestWriteChartNoRecords(t *testing.T) {
	tests := []struct {
		name string
		res  *forecast.Result
	}{
		{"nil result", nil},
		{"no records", &forecast.Result{Symbol: "AMZN"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteChart(&buf, tt.res); !errors.Is(err, ErrNoRecords) {
				t.Fatalf("WriteChart() error = %v, want ErrNoRecords", err)
			}
			if buf.Len() != 0 {
				t.Errorf("wrote %d bytes for an empty result", buf.Len())
			}
		})
	}
}

package report

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/Alias1177/Forecaster/internal/forecast"
)

// Chart size; the PNG is rendered at 96 dpi.
const (
	ChartWidth  = 8 * vg.Inch
	ChartHeight = 7 * vg.Inch
)

// ErrNoRecords is returned when a result has nothing to plot.
var ErrNoRecords = errors.New("no forecast records to chart")

var (
	priceColor     = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	directionColor = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
)

// WriteChart renders the predicted price path above the 1/0 direction
// series and writes them to w as one PNG.
func WriteChart(w io.Writer, res *forecast.Result) error {
	if res == nil || len(res.Records) == 0 {
		return ErrNoRecords
	}

	price, err := pricePlot(res)
	if err != nil {
		return fmt.Errorf("price chart: %w", err)
	}
	direction, err := directionPlot(res)
	if err != nil {
		return fmt.Errorf("direction chart: %w", err)
	}

	img := vgimg.New(ChartWidth, ChartHeight)
	dc := draw.New(img)
	plots := [][]*plot.Plot{{price}, {direction}}
	tiles := draw.Tiles{
		Rows:      2,
		Cols:      1,
		PadX:      vg.Millimeter,
		PadY:      8 * vg.Millimeter,
		PadTop:    2 * vg.Millimeter,
		PadBottom: 2 * vg.Millimeter,
		PadLeft:   2 * vg.Millimeter,
		PadRight:  4 * vg.Millimeter,
	}
	canvases := plot.Align(plots, tiles, dc)
	price.Draw(canvases[0][0])
	direction.Draw(canvases[1][0])

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func timeAxis(p *plot.Plot) {
	p.X.Label.Text = "Time (UTC)"
	p.X.Tick.Marker = plot.TimeTicks{Format: "01-02\n15:04"}
}

func pricePlot(res *forecast.Result) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s predicted close, next %d steps", res.Symbol, len(res.Records))
	p.Y.Label.Text = "Price"
	timeAxis(p)

	pts := make(plotter.XYs, 0, len(res.Records)+1)
	// the path starts at the last observed close
	if !res.LastObserved.IsZero() {
		pts = append(pts, plotter.XY{X: float64(res.LastObserved.Unix()), Y: res.LastClose})
	}
	for _, r := range res.Records {
		pts = append(pts, plotter.XY{X: float64(r.Timestamp.Unix()), Y: r.PredictedPrice})
	}

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return nil, err
	}
	line.Color = priceColor
	line.Width = vg.Points(1.5)
	points.Shape = draw.CircleGlyph{}
	points.Color = priceColor
	points.Radius = vg.Points(2)

	p.Add(plotter.NewGrid(), line, points)
	return p, nil
}

func directionPlot(res *forecast.Result) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Predicted direction (1 = UP, 0 = DOWN)"
	timeAxis(p)
	p.Y.Min, p.Y.Max = -0.25, 1.25
	p.Y.Tick.Marker = plot.ConstantTicks([]plot.Tick{
		{Value: 0, Label: "DOWN"},
		{Value: 1, Label: "UP"},
	})

	pts := make(plotter.XYs, len(res.Records))
	for i, r := range res.Records {
		pts[i] = plotter.XY{X: float64(r.Timestamp.Unix()), Y: float64(r.Direction.Flag())}
	}

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return nil, err
	}
	line.Color = directionColor
	line.StepStyle = plotter.PreStep
	points.Shape = draw.CircleGlyph{}
	points.Color = directionColor

	p.Add(plotter.NewGrid(), line, points)
	return p, nil
}

// Package report renders forecast results for terminals and chat.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Alias1177/Forecaster/internal/forecast"
	"github.com/Alias1177/Forecaster/models"
)

// TailSize is how many of the most recent candles are shown.
const TailSize = 5

const timeLayout = "2006-01-02 15:04"

// Price formats p with a fixed number of decimal places.
func Price(p float64, places int32) string {
	return decimal.NewFromFloat(p).StringFixed(places)
}

// PricePlaces picks a precision that keeps small quotes readable.
func PricePlaces(p float64) int32 {
	d := decimal.NewFromFloat(p).Abs()
	switch {
	case d.LessThan(decimal.NewFromInt(10)):
		return 5
	case d.LessThan(decimal.NewFromInt(1000)):
		return 2
	default:
		return 1
	}
}

// WriteTable writes the recent candles followed by the forecast records.
func WriteTable(w io.Writer, res *forecast.Result, candles []models.Candle) error {
	places := PricePlaces(res.LastClose)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "%s every %s, run %s\n\n", res.Symbol, res.Interval, res.RunID)

	if len(candles) > 0 {
		tail := candles
		if len(tail) > TailSize {
			tail = tail[len(tail)-TailSize:]
		}
		dirs := forecast.HistoricalDirections(tail)

		fmt.Fprintln(tw, "Recent prices")
		fmt.Fprintln(tw, "Timestamp\tOpen\tHigh\tLow\tClose\tDirection\tBinary")
		for i, c := range tail {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
				c.Timestamp.Format(timeLayout),
				Price(c.Open, places), Price(c.High, places), Price(c.Low, places), Price(c.Close, places),
				dirs[i], dirs[i].Flag())
		}
		fmt.Fprintln(tw)
	}

	fmt.Fprintf(tw, "Next %d steps\n", len(res.Records))
	fmt.Fprintln(tw, "Step\tTimestamp\tPredicted Price\tDirection\tBinary")
	for _, r := range res.Records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n",
			r.Step, r.Timestamp.Format(timeLayout), Price(r.PredictedPrice, places), r.Direction, r.Direction.Flag())
	}
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, "Training loss\t%.6f\n", res.Training.FinalLoss)
	fmt.Fprintf(tw, "Test RMSE\t%s\n", Price(res.Evaluation.RMSE, places))
	fmt.Fprintf(tw, "Directional accuracy\t%.1f%%\n", res.Evaluation.DirectionalAccuracy*100)

	return tw.Flush()
}

// Message formats a compact Markdown summary for chat clients.
func Message(res *forecast.Result) string {
	places := PricePlaces(res.LastClose)
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("*Forecast for %s (%s)*\n", res.Symbol, shortDuration(res.Interval)))
	sb.WriteString(fmt.Sprintf("Last close: %s at %s\n\n", Price(res.LastClose, places), res.LastObserved.Format(timeLayout)))

	up := 0
	for _, r := range res.Records {
		arrow := "🔽"
		if r.Direction == models.DirectionUp {
			arrow = "🔼"
			up++
		}
		sb.WriteString(fmt.Sprintf("`%2d %s %s` %s\n", r.Step, r.Timestamp.Format("01-02 15:04"), Price(r.PredictedPrice, places), arrow))
	}

	sb.WriteString(fmt.Sprintf("\nUP steps: %d of %d\n", up, len(res.Records)))
	sb.WriteString(fmt.Sprintf("Test RMSE: %s | Direction hit rate: %.1f%%\n",
		Price(res.Evaluation.RMSE, places), res.Evaluation.DirectionalAccuracy*100))
	return sb.String()
}

func shortDuration(d time.Duration) string {
	s := d.String()
	switch {
	case strings.HasSuffix(s, "h0m0s"):
		return strings.TrimSuffix(s, "0m0s")
	case strings.HasSuffix(s, "m0s"):
		return strings.TrimSuffix(s, "0s")
	}
	return s
}

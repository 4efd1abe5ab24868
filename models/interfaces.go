package models

import "context"

// CandleClient supplies historical candles, oldest first
type CandleClient interface {
	GetCandles(ctx context.Context, symbol string, interval string, count int) ([]Candle, error)
}

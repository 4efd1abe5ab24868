package models

import (
	"time"
)

// Candle represents a single price candle
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Datetime  string    `json:"datetime"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume,omitempty"`
}

// TwelveResponse represents the API response from Twelve Data
type TwelveResponse struct {
	Meta struct {
		Symbol   string `json:"symbol"`
		Interval string `json:"interval"`
	} `json:"meta"`
	Values []struct {
		Datetime string  `json:"datetime"`
		Open     float64 `json:"open,string"`
		High     float64 `json:"high,string"`
		Low      float64 `json:"low,string"`
		Close    float64 `json:"close,string"`
		Volume   int64   `json:"volume,string,omitempty"`
	} `json:"values"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Direction is the UP/DOWN movement label of a price step
type Direction string

const (
	DirectionUp   Direction = "UP"
	DirectionDown Direction = "DOWN"
)

// Flag returns 1 for UP and 0 for DOWN, the encoding used in charts and tables
func (d Direction) Flag() int {
	if d == DirectionUp {
		return 1
	}
	return 0
}

// DirectionBetween labels the move from prev to next. Equal prices are DOWN.
func DirectionBetween(prev, next float64) Direction {
	if next > prev {
		return DirectionUp
	}
	return DirectionDown
}

// PredictionRecord is one step of a forecast rollout
type PredictionRecord struct {
	Step           int       `json:"step"`
	Timestamp      time.Time `json:"timestamp"`
	PredictedPrice float64   `json:"predicted_price"`
	Direction      Direction `json:"direction"`
}

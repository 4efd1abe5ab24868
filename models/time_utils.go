package models

import (
	"fmt"
	"time"
)

// MaxOutputSize is the largest outputsize Twelve Data accepts per request
const MaxOutputSize = 5000

var intervalDurations = map[string]time.Duration{
	"1min":  time.Minute,
	"5min":  5 * time.Minute,
	"15min": 15 * time.Minute,
	"30min": 30 * time.Minute,
	"45min": 45 * time.Minute,
	"1h":    time.Hour,
	"2h":    2 * time.Hour,
	"4h":    4 * time.Hour,
	"8h":    8 * time.Hour,
	"1day":  24 * time.Hour,
	"1week": 7 * 24 * time.Hour,
}

// ParseInterval converts a Twelve Data interval string into a duration
func ParseInterval(interval string) (time.Duration, error) {
	d, ok := intervalDurations[interval]
	if !ok {
		return 0, fmt.Errorf("unsupported interval %q", interval)
	}
	return d, nil
}

// CandlesForPeriod estimates how many candles cover the given number of days
func CandlesForPeriod(interval string, days int) int {
	candlesPerDay := 0

	switch interval {
	case "1min":
		candlesPerDay = 24 * 60
	case "5min":
		candlesPerDay = 24 * 12
	case "15min":
		candlesPerDay = 24 * 4
	case "30min":
		candlesPerDay = 24 * 2
	case "45min":
		candlesPerDay = 24 * 60 / 45
	case "1h":
		candlesPerDay = 24
	case "2h":
		candlesPerDay = 12
	case "4h":
		candlesPerDay = 6
	case "8h":
		candlesPerDay = 3
	case "1day":
		candlesPerDay = 1
	case "1week":
		candlesPerDay = 1
		days = days / 7
		if days < 1 {
			days = 1
		}
	}

	// 10% buffer for gaps (weekends, holidays)
	count := int(float64(candlesPerDay) * float64(days) * 1.1)
	if count > MaxOutputSize {
		count = MaxOutputSize
	}
	return count
}

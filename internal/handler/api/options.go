package api

import "SignalFusion/internal/domain/models"

// History depth the market-data provider keeps per interval.
var availableOptions = models.AvailableOptions{
	Intervals: []string{"1m", "2m", "5m", "15m", "30m", "60m", "90m", "1h", "4h", "8h", "12h", "1d", "5d", "1wk", "1mo", "3mo"},
	Periods:   []string{"1d", "5d", "1mo", "3mo", "6mo", "1y", "2y", "5y", "10y", "ytd", "max"},
	IntervalLimits: map[string]string{
		"1m":  "7d",
		"2m":  "60d",
		"5m":  "60d",
		"15m": "60d",
		"30m": "60d",
		"60m": "730d",
		"90m": "60d",
		"1h":  "730d",
		"4h":  "730d",
		"8h":  "730d",
		"12h": "730d",
		"1d":  "max",
		"5d":  "max",
		"1wk": "max",
		"1mo": "max",
		"3mo": "max",
	},
}

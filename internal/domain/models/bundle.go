package models

import "time"

// MACD holds the line, signal and histogram series.
type MACD struct {
	Line      Series `json:"line"`
	Signal    Series `json:"signal"`
	Histogram Series `json:"histogram"`
}

// Bollinger holds the three band series.
type Bollinger struct {
	Upper  Series `json:"upper"`
	Middle Series `json:"middle"`
	Lower  Series `json:"lower"`
}

// ADX holds the trend-strength series and both directional indices.
type ADX struct {
	ADX     Series `json:"adx"`
	PlusDI  Series `json:"plusDI"`
	MinusDI Series `json:"minusDI"`
}

// DerivedIndicators are computed from price by the engine. A nil member
// means its inputs were absent.
type DerivedIndicators struct {
	MACD      *MACD      `json:"macd"`
	Bollinger *Bollinger `json:"bollinger"`
	ADX       *ADX       `json:"adx"`
	WilliamsR *Series    `json:"williamsR"`
}

// Bundle is the complete result of one analysis.
type Bundle struct {
	Symbol            string            `json:"symbol"`
	Interval          string            `json:"interval"`
	GeneratedAt       time.Time         `json:"generatedAt"`
	Bars              int               `json:"bars"`
	DerivedIndicators DerivedIndicators `json:"derivedIndicators"`
	OscillatorStates  OscillatorStates  `json:"oscillatorStates"`
	Timeline          []TimelineEntry   `json:"timeline"`
	Backtest          BacktestResult    `json:"backtest"`
	Confluence        ConfluenceResult  `json:"confluence"`
	Advice            TradingAdvice     `json:"advice"`
}

// MultiTickerResult is the outcome of analysing several instruments at once.
type MultiTickerResult struct {
	Interval string             `json:"interval"`
	Bundles  map[string]*Bundle `json:"bundles"`
	Errors   map[string]string  `json:"errors,omitempty"`
}

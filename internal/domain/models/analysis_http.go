package models

import "time"

// Requests for the analysis HTTP endpoints.

type AnalyzeRequest struct {
	Symbol   string `query:"symbol" json:"symbol" validate:"required"`
	Interval string `query:"interval" json:"interval" default:"1d" validate:"required"`
	N        int    `query:"n" json:"n" default:"500" validate:"gte=30,lte=5000"`
	Now      string `query:"now" json:"now"`
}

type AnalyzeSnapshotRequest struct {
	Interval   string      `json:"interval" default:"1d" validate:"required"`
	Now        string      `json:"now"`
	Snapshot   *Snapshot   `json:"snapshot"`
	Bars       []Bar       `json:"bars"`
	Symbol     string      `json:"symbol"`
	Prediction *Prediction `json:"prediction"`
}

type MultiTickerRequest struct {
	Symbols  string `query:"symbols" json:"symbols" validate:"required"`
	Interval string `query:"interval" json:"interval" default:"1d" validate:"required"`
	N        int    `query:"n" json:"n" default:"300" validate:"gte=30,lte=5000"`
	Now      string `query:"now" json:"now"`
}

type TimelineRequest struct {
	Symbol   string `query:"symbol" json:"symbol" validate:"required"`
	Interval string `query:"interval" json:"interval" default:"1d" validate:"required"`
	N        int    `query:"n" json:"n" default:"500" validate:"gte=30,lte=5000"`
	Now      string `query:"now" json:"now"`
	Limit    int    `query:"limit" json:"limit" default:"200" validate:"gte=1,lte=5000"`
}

// ConfluenceView is the trimmed response of the confluence endpoint.
type ConfluenceView struct {
	Symbol           string           `json:"symbol"`
	Interval         string           `json:"interval"`
	GeneratedAt      time.Time        `json:"generatedAt"`
	Confluence       ConfluenceResult `json:"confluence"`
	Advice           TradingAdvice    `json:"advice"`
	OscillatorStates OscillatorStates `json:"oscillatorStates"`
}

// AvailableOptions lists what the market-data provider accepts.
type AvailableOptions struct {
	Intervals      []string          `json:"intervals"`
	Periods        []string          `json:"periods"`
	IntervalLimits map[string]string `json:"intervalLimits"`
}

// AnalysisRequestMessage is the Kafka payload asking for an analysis.
type AnalysisRequestMessage struct {
	Symbol   string `json:"symbol" validate:"required"`
	Interval string `json:"interval" default:"1d"`
	N        int    `json:"n" default:"500" validate:"gte=30,lte=5000"`
	Now      string `json:"now,omitempty"`
	Bars     []Bar  `json:"bars,omitempty"`
}

// BundleEnvelope wraps a bundle published downstream.
type BundleEnvelope struct {
	RequestID string  `json:"requestId"`
	Bundle    *Bundle `json:"bundle"`
}

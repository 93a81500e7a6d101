package models

import "time"

// Bar is one row delivered by the market-data provider: OHLCV plus any
// oscillator columns computed upstream. Nil pointers are missing values.
type Bar struct {
	Time      time.Time `json:"time"`
	Open      *float64  `json:"open"`
	High      *float64  `json:"high"`
	Low       *float64  `json:"low"`
	Close     *float64  `json:"close"`
	Volume    *float64  `json:"volume"`
	WT1       *float64  `json:"wt1,omitempty"`
	WT2       *float64  `json:"wt2,omitempty"`
	MoneyFlow *float64  `json:"moneyFlow,omitempty"`
	RSIValue  *float64  `json:"rsiValue,omitempty"`
	RSIState  *float64  `json:"rsiState,omitempty"`
	RSIMA     *float64  `json:"rsiMA,omitempty"`
	WRShort   *float64  `json:"wrShort,omitempty"`
	WRLong    *float64  `json:"wrLong,omitempty"`
	WRAvg     *float64  `json:"wrAvg,omitempty"`
}

// Field returns the pointer for col, or nil for an unknown column.
func (b *Bar) Field(col Column) *float64 {
	switch col {
	case ColOpen:
		return b.Open
	case ColHigh:
		return b.High
	case ColLow:
		return b.Low
	case ColClose:
		return b.Close
	case ColVolume:
		return b.Volume
	case ColWT1:
		return b.WT1
	case ColWT2:
		return b.WT2
	case ColMoneyFlow:
		return b.MoneyFlow
	case ColRSIValue:
		return b.RSIValue
	case ColRSIState:
		return b.RSIState
	case ColRSIMA:
		return b.RSIMA
	case ColWRShort:
		return b.WRShort
	case ColWRLong:
		return b.WRLong
	case ColWRAvg:
		return b.WRAvg
	default:
		return nil
	}
}

// Float returns a pointer to v; handy when building bars by hand.
func Float(v float64) *float64 { return &v }

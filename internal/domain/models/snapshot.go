package models

import (
	"encoding/json"
	"sort"
	"time"
)

// Column names a series carried by a Snapshot.
type Column string

const (
	ColOpen      Column = "open"
	ColHigh      Column = "high"
	ColLow       Column = "low"
	ColClose     Column = "close"
	ColVolume    Column = "volume"
	ColWT1       Column = "wt1"
	ColWT2       Column = "wt2"
	ColMoneyFlow Column = "moneyFlow"
	ColRSIValue  Column = "rsiValue"
	ColRSIState  Column = "rsiState"
	ColRSIMA     Column = "rsiMA"
	ColWRShort   Column = "wrShort"
	ColWRLong    Column = "wrLong"
	ColWRAvg     Column = "wrAvg"
)

// Columns lists every column a Snapshot understands, in a stable order.
var Columns = []Column{
	ColOpen, ColHigh, ColLow, ColClose, ColVolume,
	ColWT1, ColWT2, ColMoneyFlow,
	ColRSIValue, ColRSIState, ColRSIMA,
	ColWRShort, ColWRLong, ColWRAvg,
}

// Snapshot is the per-instrument input of one analysis: a shared date axis
// and the named series attached to it. A Snapshot is not mutated after it is
// built; WithColumn returns a copy.
type Snapshot struct {
	Symbol   string
	Dates    []time.Time
	columns  map[Column][]float64
	rejected []Column
}

// NewSnapshot creates an empty snapshot on the given ascending date axis.
func NewSnapshot(symbol string, dates []time.Time) *Snapshot {
	return &Snapshot{
		Symbol:  symbol,
		Dates:   dates,
		columns: make(map[Column][]float64),
	}
}

// Attach adds a series if its date axis matches the snapshot's axis exactly.
// A series on another axis is rejected and its family stays absent.
func (s *Snapshot) Attach(col Column, series Series) bool {
	if !sameAxis(s.Dates, series.Dates) || len(series.Values) != len(s.Dates) {
		s.rejected = append(s.rejected, col)
		return false
	}
	vals := make([]float64, len(series.Values))
	for i, v := range series.Values {
		if IsNull(v) {
			vals[i] = Null()
			continue
		}
		vals[i] = v
	}
	s.columns[col] = vals
	return true
}

// WithColumn returns a copy of the snapshot with col set to values, which
// must already be aligned with the snapshot's axis.
func (s *Snapshot) WithColumn(col Column, values []float64) *Snapshot {
	cp := &Snapshot{
		Symbol:   s.Symbol,
		Dates:    s.Dates,
		columns:  make(map[Column][]float64, len(s.columns)+1),
		rejected: s.rejected,
	}
	for k, v := range s.columns {
		cp.columns[k] = v
	}
	if len(values) == len(s.Dates) {
		cp.columns[col] = values
	}
	return cp
}

// Values returns the raw values of col or nil when the column is missing.
// Callers must treat the returned slice as read-only.
func (s *Snapshot) Values(col Column) []float64 {
	if s == nil {
		return nil
	}
	return s.columns[col]
}

// Has reports whether col is attached and carries at least one finite value.
func (s *Snapshot) Has(col Column) bool {
	for _, v := range s.Values(col) {
		if !IsNull(v) {
			return true
		}
	}
	return false
}

// Series returns col as a Series on the snapshot's axis.
func (s *Snapshot) Series(col Column) (Series, bool) {
	vals, ok := s.columns[col]
	if !ok {
		return Series{}, false
	}
	return Series{Dates: s.Dates, Values: vals}, true
}

// Len returns the number of bars on the axis.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Dates)
}

// Rejected lists the columns refused by Attach because of a misaligned axis.
func (s *Snapshot) Rejected() []Column { return s.rejected }

// Present lists attached columns in the order of Columns.
func (s *Snapshot) Present() []Column {
	out := make([]Column, 0, len(s.columns))
	for _, c := range Columns {
		if _, ok := s.columns[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

type snapshotJSON struct {
	Symbol string            `json:"symbol"`
	Series map[Column]Series `json:"series"`
}

func (s *Snapshot) MarshalJSON() ([]byte, error) {
	out := snapshotJSON{Symbol: s.Symbol, Series: make(map[Column]Series, len(s.columns))}
	for col, vals := range s.columns {
		out.Series[col] = Series{Dates: s.Dates, Values: vals}
	}
	return json.Marshal(out)
}

// UnmarshalJSON takes the axis from the close series when present, otherwise
// from the first series by column name, and attaches the rest against it.
func (s *Snapshot) UnmarshalJSON(b []byte) error {
	var in snapshotJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	axis := axisColumn(in.Series)
	var dates []time.Time
	if axis != "" {
		dates = in.Series[axis].Dates
	}
	*s = *NewSnapshot(in.Symbol, dates)
	cols := make([]string, 0, len(in.Series))
	for c := range in.Series {
		cols = append(cols, string(c))
	}
	sort.Strings(cols)
	for _, c := range cols {
		s.Attach(Column(c), in.Series[Column(c)])
	}
	return nil
}

func axisColumn(series map[Column]Series) Column {
	if _, ok := series[ColClose]; ok {
		return ColClose
	}
	var first Column
	for c := range series {
		if first == "" || c < first {
			first = c
		}
	}
	return first
}

func sameAxis(a, b []time.Time) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

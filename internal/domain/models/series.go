package models

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Series is an ordered sequence of per-bar values on its own date axis.
// A NaN value marks a missing point; it is serialized as JSON null.
type Series struct {
	Dates  []time.Time
	Values []float64
}

// Point is the wire form of one Series element.
type Point struct {
	Date  time.Time `json:"date"`
	Value *float64  `json:"value"`
}

// Null returns the missing-value marker used by Series.
func Null() float64 { return math.NaN() }

// IsNull reports whether v is a missing point. Infinities count as missing.
func IsNull(v float64) bool { return math.IsNaN(v) || math.IsInf(v, 0) }

// NewSeries pairs dates with values. Non-finite values are normalized to
// the null marker. It returns an error when the lengths differ.
func NewSeries(dates []time.Time, values []float64) (Series, error) {
	if len(dates) != len(values) {
		return Series{}, fmt.Errorf("series: %d dates for %d values", len(dates), len(values))
	}
	vals := make([]float64, len(values))
	for i, v := range values {
		if IsNull(v) {
			vals[i] = Null()
			continue
		}
		vals[i] = v
	}
	return Series{Dates: dates, Values: vals}, nil
}

// Len returns the number of bars.
func (s Series) Len() int { return len(s.Values) }

// At returns the value at i and whether it is present.
func (s Series) At(i int) (float64, bool) {
	if i < 0 || i >= len(s.Values) || IsNull(s.Values[i]) {
		return 0, false
	}
	return s.Values[i], true
}

// Absent reports whether the series carries no finite value at all.
func (s Series) Absent() bool {
	for _, v := range s.Values {
		if !IsNull(v) {
			return false
		}
	}
	return true
}

// Points converts the series to its wire form.
func (s Series) Points() []Point {
	out := make([]Point, len(s.Values))
	for i, v := range s.Values {
		out[i].Date = s.Dates[i]
		if !IsNull(v) {
			val := v
			out[i].Value = &val
		}
	}
	return out
}

func (s Series) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Points())
}

func (s *Series) UnmarshalJSON(b []byte) error {
	var pts []Point
	if err := json.Unmarshal(b, &pts); err != nil {
		return err
	}
	s.Dates = make([]time.Time, len(pts))
	s.Values = make([]float64, len(pts))
	for i, p := range pts {
		s.Dates[i] = p.Date
		if p.Value == nil || IsNull(*p.Value) {
			s.Values[i] = Null()
			continue
		}
		s.Values[i] = *p.Value
	}
	return nil
}

// Package timeseries provides the albedo observation series model shared by
// the loader, trend statistics, and reporting layers. A series is a pair of
// equal-length slices: decimal years and albedo values.
package timeseries

import (
	"fmt"
	"math"
	"time"
)

// Series holds one fraction class's albedo observations, ordered by time.
type Series struct {
	Years  []float64
	Values []float64
}

// New creates a series from paired decimal-year and value slices.
// The slices must be the same length.
func New(years, values []float64) (*Series, error) {
	if len(years) != len(values) {
		return nil, fmt.Errorf("years/values length mismatch: %d vs %d", len(years), len(values))
	}
	return &Series{Years: years, Values: values}, nil
}

// FromTimes creates a series from timestamped observations, converting each
// timestamp to a decimal year.
func FromTimes(times []time.Time, values []float64) (*Series, error) {
	if len(times) != len(values) {
		return nil, fmt.Errorf("times/values length mismatch: %d vs %d", len(times), len(values))
	}
	years := make([]float64, len(times))
	for i, t := range times {
		years[i] = DecimalYear(t)
	}
	return &Series{Years: years, Values: values}, nil
}

// Len returns the number of observations.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Values)
}

// Clone returns a deep copy of the series.
func (s *Series) Clone() *Series {
	out := &Series{
		Years:  make([]float64, len(s.Years)),
		Values: make([]float64, len(s.Values)),
	}
	copy(out.Years, s.Years)
	copy(out.Values, s.Values)
	return out
}

// Clean returns a copy of the series with non-finite observations removed.
// A pair is dropped when either the year or the value is NaN or infinite.
// The second return is the number of removed observations.
func (s *Series) Clean() (*Series, int) {
	out := &Series{
		Years:  make([]float64, 0, len(s.Years)),
		Values: make([]float64, 0, len(s.Values)),
	}
	removed := 0
	for i := range s.Values {
		y := s.Years[i]
		v := s.Values[i]
		if math.IsNaN(v) || math.IsInf(v, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
			removed++
			continue
		}
		out.Years = append(out.Years, y)
		out.Values = append(out.Values, v)
	}
	return out, removed
}

// Validate cleans the series and checks it against a minimum observation
// count. It returns ok=false when fewer than minObs finite observations
// remain; the cleaned series and removed count are returned either way.
func Validate(s *Series, minObs int) (bool, *Series, int) {
	if s == nil {
		return false, &Series{}, 0
	}
	clean, removed := s.Clean()
	return clean.Len() >= minObs, clean, removed
}

// DecimalYear converts a timestamp to a fractional year, e.g. 2015-07-02
// maps to roughly 2015.5.
func DecimalYear(t time.Time) float64 {
	year := t.Year()
	start := time.Date(year, 1, 1, 0, 0, 0, 0, t.Location())
	end := time.Date(year+1, 1, 1, 0, 0, 0, 0, t.Location())
	elapsed := t.Sub(start).Seconds()
	total := end.Sub(start).Seconds()
	return float64(year) + elapsed/total
}

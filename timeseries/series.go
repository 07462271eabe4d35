package timeseries

import (
	"math"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Day is the spacing of a daily series.
const Day = 24 * time.Hour

// Series represents a time series with timestamps and values.
type Series struct {
	Timestamps []time.Time
	Values     []float64
	Name       string
}

// New creates a daily series from values, starting at the Unix epoch.
func New(values []float64) *Series {
	return NewDaily(time.Unix(0, 0).UTC(), values)
}

// NewDaily creates a series with one value per calendar day starting at start.
func NewDaily(start time.Time, values []float64) *Series {
	start = Truncate(start)
	timestamps := make([]time.Time, len(values))
	for i := range timestamps {
		timestamps[i] = start.AddDate(0, 0, i)
	}
	return &Series{
		Timestamps: timestamps,
		Values:     values,
	}
}

// NewWithTimestamps creates a time series with explicit timestamps.
func NewWithTimestamps(timestamps []time.Time, values []float64) (*Series, error) {
	if len(timestamps) != len(values) {
		return nil, goerr.New("timestamps and values must have the same length",
			goerr.V("timestamps", len(timestamps)),
			goerr.V("values", len(values)))
	}
	return &Series{
		Timestamps: timestamps,
		Values:     values,
	}, nil
}

// Truncate drops the clock part of t and returns midnight UTC of the same calendar date.
func Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Len returns the length of the series.
func (s *Series) Len() int {
	return len(s.Values)
}

// Mean calculates the arithmetic mean of the series.
func (s *Series) Mean() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	return stat.Mean(s.Values, nil)
}

// Variance calculates the sample variance of the series.
func (s *Series) Variance() float64 {
	if len(s.Values) < 2 {
		return 0
	}
	return stat.Variance(s.Values, nil)
}

// Std calculates the sample standard deviation of the series.
func (s *Series) Std() float64 {
	return math.Sqrt(s.Variance())
}

// Min returns the minimum value in the series.
func (s *Series) Min() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	return floats.Min(s.Values)
}

// Max returns the maximum value in the series.
func (s *Series) Max() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	return floats.Max(s.Values)
}

// Last returns the final timestamp and value. ok is false for an empty series.
func (s *Series) Last() (ts time.Time, v float64, ok bool) {
	if len(s.Values) == 0 {
		return time.Time{}, 0, false
	}
	return s.Timestamps[len(s.Timestamps)-1], s.Values[len(s.Values)-1], true
}

// HasNonFinite reports whether any value is NaN or infinite.
func (s *Series) HasNonFinite() bool {
	for _, v := range s.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return false
}

// IsConstant reports whether every value equals the first one.
// An empty series is considered constant.
func (s *Series) IsConstant() bool {
	for _, v := range s.Values {
		if v != s.Values[0] {
			return false
		}
	}
	return true
}

// Diff calculates the first difference of the series (d=1).
func (s *Series) Diff() *Series {
	return s.DiffN(1)
}

// DiffN calculates the n-th lag difference of the series. The result is
// n points shorter and keeps the timestamps of the later operand.
func (s *Series) DiffN(n int) *Series {
	if n <= 0 || len(s.Values) <= n {
		return &Series{Name: s.Name + "_diff"}
	}

	result := make([]float64, len(s.Values)-n)
	for i := n; i < len(s.Values); i++ {
		result[i-n] = s.Values[i] - s.Values[i-n]
	}

	timestamps := make([]time.Time, len(result))
	if len(s.Timestamps) > n {
		copy(timestamps, s.Timestamps[n:])
	}

	return &Series{
		Timestamps: timestamps,
		Values:     result,
		Name:       s.Name + "_diff",
	}
}

// Deltas returns day-over-day changes with the same length as the series.
// The first delta is 0.
func (s *Series) Deltas() *Series {
	out := s.Copy()
	out.Name = s.Name + "_delta"
	for i := len(out.Values) - 1; i > 0; i-- {
		out.Values[i] = s.Values[i] - s.Values[i-1]
	}
	if len(out.Values) > 0 {
		out.Values[0] = 0
	}
	return out
}

// Slice returns a slice of the series from start to end (exclusive).
func (s *Series) Slice(start, end int) *Series {
	if start < 0 {
		start = 0
	}
	if end > len(s.Values) {
		end = len(s.Values)
	}
	if start >= end {
		return &Series{Name: s.Name}
	}

	values := make([]float64, end-start)
	copy(values, s.Values[start:end])

	timestamps := make([]time.Time, len(values))
	if len(s.Timestamps) >= end {
		copy(timestamps, s.Timestamps[start:end])
	}

	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       s.Name,
	}
}

// Between returns the points whose timestamps fall in [start, end].
// A zero start or end leaves that side unbounded.
func (s *Series) Between(start, end time.Time) *Series {
	out := &Series{Name: s.Name}
	for i, ts := range s.Timestamps {
		if !start.IsZero() && ts.Before(start) {
			continue
		}
		if !end.IsZero() && ts.After(end) {
			continue
		}
		out.Timestamps = append(out.Timestamps, ts)
		out.Values = append(out.Values, s.Values[i])
	}
	return out
}

// Copy creates a deep copy of the series.
func (s *Series) Copy() *Series {
	values := make([]float64, len(s.Values))
	copy(values, s.Values)

	timestamps := make([]time.Time, len(s.Timestamps))
	copy(timestamps, s.Timestamps)

	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       s.Name,
	}
}

// Normalize standardizes the series (z-score normalization) using the
// sample standard deviation. A series with zero spread maps to all zeros.
func (s *Series) Normalize() *Series {
	out := s.Copy()
	out.Name = s.Name + "_normalized"
	if len(s.Values) == 0 {
		return out
	}

	mean, std := stat.MeanStdDev(s.Values, nil)
	for i, v := range s.Values {
		if std == 0 || math.IsNaN(std) {
			out.Values[i] = 0
			continue
		}
		out.Values[i] = (v - mean) / std
	}
	return out
}

package timeseries

import (
	"math"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// ErrTagDataGap marks a missing day that forward-fill cannot resolve.
var ErrTagDataGap = goerr.NewTag("data_gap")

// Daily resamples the series to one point per calendar day spanning the
// first to the last timestamp. Days without an observation, and NaN
// observations, take the most recent earlier value (forward-fill).
// Timestamps must be strictly increasing once truncated to the day.
func (s *Series) Daily() (*Series, error) {
	if len(s.Timestamps) != len(s.Values) {
		return nil, goerr.New("timestamps and values must have the same length",
			goerr.V("timestamps", len(s.Timestamps)),
			goerr.V("values", len(s.Values)))
	}
	out := &Series{Name: s.Name}
	if len(s.Values) == 0 {
		return out, nil
	}

	first := Truncate(s.Timestamps[0])
	last := Truncate(s.Timestamps[len(s.Timestamps)-1])
	if last.Before(first) {
		return nil, goerr.New("timestamps must be strictly increasing",
			goerr.V("first", first), goerr.V("last", last))
	}

	n := int(last.Sub(first)/Day) + 1
	out.Timestamps = make([]time.Time, n)
	out.Values = make([]float64, n)
	for i := range out.Values {
		out.Timestamps[i] = first.AddDate(0, 0, i)
		out.Values[i] = math.NaN()
	}

	prev := first.AddDate(0, 0, -1)
	for i, ts := range s.Timestamps {
		day := Truncate(ts)
		if !day.After(prev) {
			return nil, goerr.New("timestamps must be strictly increasing",
				goerr.V("index", i), goerr.V("date", day))
		}
		prev = day
		out.Values[int(day.Sub(first)/Day)] = s.Values[i]
	}

	for i, v := range out.Values {
		if !math.IsNaN(v) {
			continue
		}
		if i == 0 {
			return nil, goerr.New("no earlier value to forward-fill from",
				goerr.V("date", out.Timestamps[i].Format(time.DateOnly)),
				goerr.V("series", s.Name),
				goerr.T(ErrTagDataGap))
		}
		out.Values[i] = out.Values[i-1]
	}

	return out, nil
}

// IsDaily reports whether the series has exactly one point per consecutive day.
func (s *Series) IsDaily() bool {
	for i := 1; i < len(s.Timestamps); i++ {
		if !Truncate(s.Timestamps[i]).Equal(Truncate(s.Timestamps[i-1]).AddDate(0, 0, 1)) {
			return false
		}
	}
	return true
}

package dataset

import (
	"slices"
	"time"

	"github.com/sartorproj/epicast/timeseries"
)

// Aggregate sums the records of one region across its sub-regions per
// date, keeps dates within [start, end] and resamples the result to a
// strict daily series with forward-fill. Region matching is exact and
// case-sensitive. A zero start or end leaves that side unbounded.
//
// An unknown region, or a window holding no dates, yields an empty series
// and no error.
func Aggregate(records []Record, region string, start, end time.Time) (*timeseries.Series, error) {
	if !start.IsZero() {
		start = timeseries.Truncate(start)
	}
	if !end.IsZero() {
		end = timeseries.Truncate(end)
	}

	sums := make(map[time.Time]float64)
	for _, r := range records {
		if r.Region != region {
			continue
		}
		day := timeseries.Truncate(r.Date)
		if !start.IsZero() && day.Before(start) {
			continue
		}
		if !end.IsZero() && day.After(end) {
			continue
		}
		sums[day] += r.Value
	}

	dates := make([]time.Time, 0, len(sums))
	for d := range sums {
		dates = append(dates, d)
	}
	slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })

	values := make([]float64, len(dates))
	for i, d := range dates {
		values[i] = sums[d]
	}

	series, err := timeseries.NewWithTimestamps(dates, values)
	if err != nil {
		return nil, err
	}
	series.Name = region

	return series.Daily()
}

// Regions returns the distinct region names of records, sorted.
func Regions(records []Record) []string {
	set := make(map[string]struct{})
	for _, r := range records {
		set[r.Region] = struct{}{}
	}
	return sortedKeys(set)
}

// DateBounds returns the earliest and latest record dates. ok is false
// when records is empty.
func DateBounds(records []Record) (first, last time.Time, ok bool) {
	for i, r := range records {
		day := timeseries.Truncate(r.Date)
		if i == 0 || day.Before(first) {
			first = day
		}
		if i == 0 || day.After(last) {
			last = day
		}
	}
	return first, last, len(records) > 0
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Package timeseries provides the dated series type used across the pipeline.
//
// A Series pairs timestamps with values. Most pipeline stages work on
// daily series: one point per calendar day at midnight UTC with no gaps.
//
// # Creating a Series
//
//	values := []float64{100, 102, 105, 103, 108, 110}
//	series := timeseries.NewDaily(start, values)
//
// # Daily Frequency
//
// Daily fills missing days with the most recent earlier value and fails
// with a tagged error when a gap has nothing to fill from:
//
//	daily, err := series.Daily()
//	if goerr.HasTag(err, timeseries.ErrTagDataGap) {
//	    // leading gap
//	}
//
// # Transformations
//
//	diff := series.Diff()            // first difference, one point shorter
//	deltas := series.Deltas()        // day-over-day change, first point 0
//	window := series.Between(a, b)   // inclusive date window
//	z := series.Normalize()          // z-scores
//
// # CSV
//
// ReadCSV and WriteCSV handle two-column date,value files:
//
//	series, err := timeseries.ReadCSV(r, nil)
//	err = timeseries.WriteCSV(w, series, nil, 0)
package timeseries

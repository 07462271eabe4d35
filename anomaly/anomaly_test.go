package anomaly_test

import (
	"math"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/sartorproj/epicast/anomaly"
	"github.com/sartorproj/epicast/timeseries"
)

var start = time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC)

// cumulative builds a cumulative series from daily new counts.
func cumulative(daily []float64) *timeseries.Series {
	values := make([]float64, len(daily))
	total := 0.0
	for i, d := range daily {
		total += d
		values[i] = total
	}
	return timeseries.NewDaily(start, values)
}

func TestDeltas(t *testing.T) {
	d := anomaly.Deltas(timeseries.NewDaily(start, []float64{5, 8, 8, 20}))
	gt.Equal(t, d.Values, []float64{0, 3, 0, 12})
	gt.Equal(t, d.Timestamps[0], start)
}

func TestDetectSpike(t *testing.T) {
	daily := make([]float64, 30)
	for i := range daily {
		daily[i] = 10
	}
	daily[20] = 200

	flags, err := anomaly.Detect(cumulative(daily), anomaly.DefaultThreshold)
	gt.NoError(t, err).Required()
	if len(flags) != 1 {
		t.Fatalf("expected one flag, got %d", len(flags))
	}
	gt.Equal(t, flags[0].Date, start.AddDate(0, 0, 20))
	gt.Equal(t, flags[0].Delta, 200.0)
	gt.True(t, flags[0].ZScore > anomaly.DefaultThreshold)
}

func TestDetectIsOneSided(t *testing.T) {
	daily := make([]float64, 40)
	for i := range daily {
		daily[i] = 100
	}
	daily[10] += 5000 // spike
	daily[25] -= 5000 // correction of the same size

	flags, err := anomaly.Detect(cumulative(daily), anomaly.DefaultThreshold)
	gt.NoError(t, err).Required()
	if len(flags) != 1 {
		t.Fatalf("want exactly one flag, got %d: %+v", len(flags), flags)
	}
	gt.Equal(t, flags[0].Date, start.AddDate(0, 0, 10))
	gt.Equal(t, flags[0].Delta, 5100.0)
	gt.True(t, flags[0].ZScore > anomaly.DefaultThreshold)
}

func TestDetectFlatSeries(t *testing.T) {
	flat := timeseries.NewDaily(start, []float64{7, 7, 7, 7, 7, 7, 7, 7})
	flags, err := anomaly.Detect(flat, anomaly.DefaultThreshold)
	gt.NoError(t, err)
	gt.Equal(t, len(flags), 0)
}

func TestDetectLinearSeries(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = 1000 + 25*float64(i)
	}
	// deltas are 0 followed by a constant, so only the first day deviates
	// and it deviates downward
	flags, err := anomaly.Detect(timeseries.NewDaily(start, values), anomaly.DefaultThreshold)
	gt.NoError(t, err)
	gt.Equal(t, len(flags), 0)
}

func TestDetectOrderAndThreshold(t *testing.T) {
	daily := []float64{1, 2, 1, 2, 1, 40, 1, 2, 1, 2, 1, 35, 2, 1, 2, 1}
	series := cumulative(daily)

	flags, err := anomaly.Detect(series, 1.0)
	gt.NoError(t, err).Required()
	if len(flags) != 2 {
		t.Fatalf("expected two flags, got %d", len(flags))
	}
	gt.True(t, flags[0].Date.Before(flags[1].Date))
	gt.Equal(t, flags[0].Date, start.AddDate(0, 0, 5))
	gt.Equal(t, flags[1].Date, start.AddDate(0, 0, 11))

	none, err := anomaly.Detect(series, 100)
	gt.NoError(t, err)
	gt.Equal(t, len(none), 0)
}

func TestDetectShortAndInvalid(t *testing.T) {
	flags, err := anomaly.Detect(timeseries.NewDaily(start, []float64{3}), anomaly.DefaultThreshold)
	gt.NoError(t, err)
	gt.Equal(t, len(flags), 0)

	flags, err = anomaly.Detect(timeseries.NewDaily(start, nil), anomaly.DefaultThreshold)
	gt.NoError(t, err)
	gt.Equal(t, len(flags), 0)

	_, err = anomaly.Detect(timeseries.NewDaily(start, []float64{1, math.NaN(), 3}), anomaly.DefaultThreshold)
	gt.Error(t, err)

	_, err = anomaly.Detect(timeseries.NewDaily(start, []float64{1, 2, 3}), math.NaN())
	gt.Error(t, err)
}

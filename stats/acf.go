package stats

import (
	"github.com/sartorproj/epicast/timeseries"
	"gonum.org/v1/gonum/stat"
)

// ACF calculates the sample autocorrelation function for lags 0 to maxLag.
// maxLag is capped at n-1. It returns nil for a series with zero variance.
func ACF(series *timeseries.Series, maxLag int) []float64 {
	n := series.Len()
	if maxLag >= n {
		maxLag = n - 1
	}
	if maxLag < 0 {
		return nil
	}

	mean := stat.Mean(series.Values, nil)
	denom := 0.0
	for _, v := range series.Values {
		denom += (v - mean) * (v - mean)
	}
	if denom == 0 {
		return nil
	}

	acf := make([]float64, maxLag+1)
	for k := range acf {
		sum := 0.0
		for i := k; i < n; i++ {
			sum += (series.Values[i] - mean) * (series.Values[i-k] - mean)
		}
		acf[k] = sum / denom
	}
	return acf
}

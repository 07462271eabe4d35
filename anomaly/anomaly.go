// Package anomaly flags days whose new-case count is unusually high.
package anomaly

import (
	"math"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sartorproj/epicast/timeseries"
	"gonum.org/v1/gonum/stat"
)

// DefaultThreshold is the z-score a day must exceed to be flagged.
const DefaultThreshold = 2.0

// Flag is one anomalous day.
type Flag struct {
	Date   time.Time `json:"date"`
	Delta  float64   `json:"delta"`
	ZScore float64   `json:"z_score"`
}

// Deltas returns the day-over-day changes of a cumulative series. The
// first day has a change of 0.
func Deltas(series *timeseries.Series) *timeseries.Series {
	return series.Deltas()
}

// Detect standardizes the daily deltas with their sample mean and sample
// standard deviation and flags days with a z-score strictly above
// threshold. Only spikes are flagged, never drops. A series whose deltas
// have no spread yields no flags.
func Detect(series *timeseries.Series, threshold float64) ([]Flag, error) {
	if math.IsNaN(threshold) {
		return nil, goerr.New("threshold is NaN")
	}
	if series.HasNonFinite() {
		return nil, goerr.New("series contains non-finite values", goerr.V("series", series.Name))
	}

	deltas := Deltas(series)
	if deltas.Len() < 2 {
		return nil, nil
	}

	mean, std := stat.MeanStdDev(deltas.Values, nil)
	if std == 0 || math.IsNaN(std) {
		return nil, nil
	}

	var flags []Flag
	for i, d := range deltas.Values {
		z := (d - mean) / std
		if z > threshold {
			flags = append(flags, Flag{
				Date:   deltas.Timestamps[i],
				Delta:  d,
				ZScore: z,
			})
		}
	}
	return flags, nil
}

package dataset

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Record is one (row, date) cell of a wide table in long form.
type Record struct {
	Region       string
	SubRegion    string
	HasSubRegion bool
	Date         time.Time
	Value        float64
}

// Melt reshapes a wide table into long records, one per row and date
// column, in row-major order. Lat and Long are not carried over.
func Melt(table *WideTable) ([]Record, error) {
	if table == nil {
		return nil, nil
	}

	records := make([]Record, 0, len(table.Rows)*len(table.Dates))
	for i, row := range table.Rows {
		if len(row.Values) != len(table.Dates) {
			return nil, goerr.New("row width does not match date columns",
				goerr.V("metric", table.Metric),
				goerr.V("row", i+1),
				goerr.V("values", len(row.Values)),
				goerr.V("dates", len(table.Dates)),
				goerr.T(ErrTagParse))
		}
		for j, date := range table.Dates {
			records = append(records, Record{
				Region:       row.Region,
				SubRegion:    row.SubRegion,
				HasSubRegion: row.SubRegion != "",
				Date:         date,
				Value:        row.Values[j],
			})
		}
	}
	return records, nil
}

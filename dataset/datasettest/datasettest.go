// Package datasettest builds synthetic wide tables for tests.
package datasettest

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	"github.com/sartorproj/epicast/dataset"
)

// Row is one generated table row. Value returns the cell for day index i.
type Row struct {
	SubRegion string
	Region    string
	Value     func(i int) float64
}

// Start is the first date column of the upstream tables.
var Start = time.Date(2020, time.January, 22, 0, 0, 0, 0, time.UTC)

// Linear returns base + slope*i.
func Linear(base, slope float64) func(int) float64 {
	return func(i int) float64 { return base + slope*float64(i) }
}

// Constant returns v for every day.
func Constant(v float64) func(int) float64 {
	return func(int) float64 { return v }
}

// Values returns the listed values, repeating the last one past the end.
func Values(vs ...float64) func(int) float64 {
	return func(i int) float64 {
		if i >= len(vs) {
			return vs[len(vs)-1]
		}
		return vs[i]
	}
}

// CSV renders rows as a wide table with days date columns from start.
func CSV(start time.Time, days int, rows ...Row) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{dataset.ColumnSubRegion, dataset.ColumnRegion, dataset.ColumnLat, dataset.ColumnLong}
	for i := 0; i < days; i++ {
		header = append(header, start.AddDate(0, 0, i).Format(dataset.DateLayout))
	}
	_ = w.Write(header)

	for _, row := range rows {
		record := []string{row.SubRegion, row.Region, "10.5", "-20.25"}
		for i := 0; i < days; i++ {
			record = append(record, strconv.FormatFloat(row.Value(i), 'f', -1, 64))
		}
		_ = w.Write(record)
	}
	w.Flush()

	return buf.String()
}

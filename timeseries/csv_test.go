package timeseries_test

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/sartorproj/epicast/timeseries"
)

func TestReadCSV(t *testing.T) {
	csvData := `date,value
2020-01-01,100
2020-01-02,101
2020-01-03,102`

	series, err := timeseries.ReadCSV(strings.NewReader(csvData), nil)
	gt.NoError(t, err).Required()

	gt.Equal(t, series.Len(), 3)
	gt.Equal(t, series.Values, []float64{100, 101, 102})
	gt.Equal(t, series.Timestamps[0], day("2020-01-01"))
	gt.Equal(t, series.Name, "value")
}

func TestReadCSVCustomColumns(t *testing.T) {
	csvData := `Country,Day,Cases
India,03/01/2020,3
India,03/02/2020,5`

	opts := &timeseries.CSVOptions{DateColumn: "Day", ValueColumn: "Cases", DateFormat: "01/02/2006"}
	series, err := timeseries.ReadCSV(strings.NewReader(csvData), opts)
	gt.NoError(t, err).Required()

	gt.Equal(t, series.Values, []float64{3, 5})
	gt.Equal(t, series.Timestamps[1], day("2020-03-02"))
}

func TestReadCSVMissingValues(t *testing.T) {
	csvData := `date,value
2020-01-01,100
2020-01-02,NA
2020-01-03,
2020-01-04,104`

	series, err := timeseries.ReadCSV(strings.NewReader(csvData), nil)
	gt.NoError(t, err).Required()
	gt.Equal(t, series.Len(), 4)
	gt.True(t, math.IsNaN(series.Values[1]))
	gt.True(t, math.IsNaN(series.Values[2]))

	daily, err := series.Daily()
	gt.NoError(t, err).Required()
	gt.Equal(t, daily.Values, []float64{100, 100, 100, 104})
}

func TestReadCSVErrors(t *testing.T) {
	testCases := []struct {
		name    string
		csvData string
	}{
		{"missing column", "date,count\n2020-01-01,1"},
		{"bad date", "date,value\n01/01/2020,1"},
		{"bad value", "date,value\n2020-01-01,many"},
		{"no rows", "date,value\n"},
		{"empty", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := timeseries.ReadCSV(strings.NewReader(tc.csvData), nil)
			gt.Error(t, err)
		})
	}
}

func TestWriteCSV(t *testing.T) {
	s := timeseries.NewDaily(day("2020-05-01"), []float64{1.5, 2.25})

	var buf bytes.Buffer
	gt.NoError(t, timeseries.WriteCSV(&buf, s, &timeseries.CSVOptions{ValueColumn: "forecast"}, -1))
	gt.Equal(t, buf.String(), "date,forecast\n2020-05-01,1.5\n2020-05-02,2.25\n")

	back, err := timeseries.ReadCSV(&buf, &timeseries.CSVOptions{ValueColumn: "forecast"})
	gt.NoError(t, err).Required()
	gt.Equal(t, back.Values, s.Values)
}

func TestDefaultCSVOptions(t *testing.T) {
	opts := timeseries.DefaultCSVOptions()
	gt.Equal(t, opts.DateColumn, "date")
	gt.Equal(t, opts.ValueColumn, "value")
	gt.Equal(t, opts.DateFormat, "2006-01-02")
}

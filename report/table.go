package report

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sartorproj/epicast/dashboard"
	"github.com/sartorproj/epicast/timeseries"
	"github.com/xuri/excelize/v2"
)

// Column headers of the forecast table.
const (
	DateHeader     = "Date"
	ForecastHeader = "Forecasted Cases"
)

const (
	forecastSheet = "Forecast"
	modelSheet    = "Model"
)

// WriteForecastCSV writes the forecast table with integer counts.
func WriteForecastCSV(w io.Writer, view *dashboard.View) error {
	s := &timeseries.Series{
		Timestamps: make([]time.Time, len(view.Table)),
		Values:     make([]float64, len(view.Table)),
	}
	for i, row := range view.Table {
		s.Timestamps[i] = row.Date
		s.Values[i] = float64(row.Count)
	}

	opts := &timeseries.CSVOptions{DateColumn: DateHeader, ValueColumn: ForecastHeader}
	if err := timeseries.WriteCSV(w, s, opts, 0); err != nil {
		return goerr.Wrap(err, "failed to write forecast CSV")
	}
	return nil
}

// WriteForecastXLSX writes a workbook holding the forecast table and the
// model summary.
func WriteForecastXLSX(w io.Writer, view *dashboard.View) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", forecastSheet); err != nil {
		return goerr.Wrap(err, "failed to rename sheet")
	}

	headers := []string{DateHeader, ForecastHeader}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(forecastSheet, cell, header); err != nil {
			return goerr.Wrap(err, "failed to write header", goerr.V("cell", cell))
		}
	}
	if err := f.SetColWidth(forecastSheet, "A", "B", 18); err != nil {
		return goerr.Wrap(err, "failed to size columns")
	}

	for i, row := range view.Table {
		r := i + 2
		if err := f.SetCellValue(forecastSheet, "A"+strconv.Itoa(r), row.Date.Format(time.DateOnly)); err != nil {
			return goerr.Wrap(err, "failed to write date", goerr.V("row", r))
		}
		if err := f.SetCellValue(forecastSheet, "B"+strconv.Itoa(r), row.Count); err != nil {
			return goerr.Wrap(err, "failed to write count", goerr.V("row", r))
		}
	}

	if _, err := f.NewSheet(modelSheet); err != nil {
		return goerr.Wrap(err, "failed to add model sheet")
	}
	for i, kv := range modelRows(view) {
		r := strconv.Itoa(i + 1)
		if err := f.SetCellValue(modelSheet, "A"+r, kv.key); err != nil {
			return goerr.Wrap(err, "failed to write model key", goerr.V("row", r))
		}
		if err := f.SetCellValue(modelSheet, "B"+r, kv.value); err != nil {
			return goerr.Wrap(err, "failed to write model value", goerr.V("row", r))
		}
	}

	if err := f.Write(w); err != nil {
		return goerr.Wrap(err, "failed to write workbook")
	}
	return nil
}

type keyValue struct {
	key   string
	value any
}

func modelRows(view *dashboard.View) []keyValue {
	rows := []keyValue{
		{"Region", view.Selection.Region},
		{"Start", view.Selection.Start.Format(time.DateOnly)},
		{"End", view.Selection.End.Format(time.DateOnly)},
		{"Horizon", view.Selection.Horizon},
	}
	m := view.Model
	if m == nil {
		return rows
	}
	rows = append(rows,
		keyValue{"Order", "(" + itoa(m.Order.P) + "," + itoa(m.Order.D) + "," + itoa(m.Order.Q) + ")"},
		keyValue{"Observations", m.NObs},
		keyValue{"Intercept", m.Intercept},
		keyValue{"Residual variance", m.Variance},
	)
	for _, opt := range []struct {
		key string
		v   *float64
	}{
		{"AIC", m.AIC}, {"AICc", m.AICc}, {"BIC", m.BIC}, {"Log likelihood", m.LogLik},
		{"Ljung-Box Q", m.LjungBoxQ}, {"Ljung-Box p-value", m.LjungBoxP},
	} {
		if opt.v != nil {
			rows = append(rows, keyValue{opt.key, *opt.v})
		} else {
			rows = append(rows, keyValue{opt.key, "n/a"})
		}
	}
	return rows
}

// File names written by WriteAll.
const (
	HistoryFile   = "history.png"
	AnomaliesFile = "anomalies.png"
	CSVFile       = "forecast.csv"
	XLSXFile      = "forecast.xlsx"
)

// WriteAll writes both charts and both forecast tables into dir.
func WriteAll(dir string, view *dashboard.View) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return goerr.Wrap(err, "failed to create output directory", goerr.V("dir", dir))
	}

	history, err := HistoryChart(view)
	if err != nil {
		return err
	}
	anomalies, err := AnomalyChart(view)
	if err != nil {
		return err
	}

	writers := []struct {
		name  string
		write func(io.Writer) error
	}{
		{HistoryFile, func(w io.Writer) error { return WriteChart(w, history, "png") }},
		{AnomaliesFile, func(w io.Writer) error { return WriteChart(w, anomalies, "png") }},
		{CSVFile, func(w io.Writer) error { return WriteForecastCSV(w, view) }},
		{XLSXFile, func(w io.Writer) error { return WriteForecastXLSX(w, view) }},
	}
	for _, out := range writers {
		if err := writeFile(filepath.Join(dir, out.name), out.write); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return goerr.Wrap(err, "failed to create file", goerr.V("path", path))
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = goerr.Wrap(cerr, "failed to close file", goerr.V("path", path))
		}
	}()
	return write(file)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

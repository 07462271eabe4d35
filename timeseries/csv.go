package timeseries

import (
	"encoding/csv"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// CSVOptions holds options for reading and writing two-column series files.
type CSVOptions struct {
	DateColumn  string // Header of the date column (default: "date")
	ValueColumn string // Header of the value column (default: "value")
	DateFormat  string // Layout of the date cells (default: time.DateOnly)
}

// DefaultCSVOptions returns default options for CSV loading.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		DateColumn:  "date",
		ValueColumn: "value",
		DateFormat:  time.DateOnly,
	}
}

func (o *CSVOptions) withDefaults() *CSVOptions {
	def := DefaultCSVOptions()
	if o == nil {
		return def
	}
	out := *o
	if out.DateColumn == "" {
		out.DateColumn = def.DateColumn
	}
	if out.ValueColumn == "" {
		out.ValueColumn = def.ValueColumn
	}
	if out.DateFormat == "" {
		out.DateFormat = def.DateFormat
	}
	return &out
}

// ReadCSV loads a dated series from a CSV stream with a header row.
// Rows whose value is empty or NA are kept as NaN so Daily can
// forward-fill them.
func ReadCSV(r io.Reader, opts *CSVOptions) (*Series, error) {
	opts = opts.withDefaults()

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read CSV header")
	}

	dateIdx, valueIdx := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case opts.DateColumn:
			dateIdx = i
		case opts.ValueColumn:
			valueIdx = i
		}
	}
	if dateIdx < 0 || valueIdx < 0 {
		return nil, goerr.New("CSV header is missing a required column",
			goerr.V("date_column", opts.DateColumn),
			goerr.V("value_column", opts.ValueColumn),
			goerr.V("header", header))
	}

	series := &Series{Name: opts.ValueColumn}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read CSV row", goerr.V("line", line))
		}

		ts, err := time.Parse(opts.DateFormat, strings.TrimSpace(record[dateIdx]))
		if err != nil {
			return nil, goerr.Wrap(err, "invalid date",
				goerr.V("line", line), goerr.V("value", record[dateIdx]))
		}

		val := math.NaN()
		switch raw := strings.TrimSpace(record[valueIdx]); raw {
		case "", "NA", "NaN", "null":
		default:
			val, err = strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, goerr.Wrap(err, "invalid value",
					goerr.V("line", line), goerr.V("value", raw))
			}
		}

		series.Timestamps = append(series.Timestamps, Truncate(ts))
		series.Values = append(series.Values, val)
	}

	if series.Len() == 0 {
		return nil, goerr.New("no data rows found in CSV")
	}
	return series, nil
}

// WriteCSV writes the series as a header row plus one row per point.
// Values are written with the given precision; -1 means the shortest
// representation that round-trips.
func WriteCSV(w io.Writer, s *Series, opts *CSVOptions, precision int) error {
	opts = opts.withDefaults()

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{opts.DateColumn, opts.ValueColumn}); err != nil {
		return goerr.Wrap(err, "failed to write CSV header")
	}
	for i, v := range s.Values {
		row := []string{
			s.Timestamps[i].Format(opts.DateFormat),
			strconv.FormatFloat(v, 'f', precision, 64),
		}
		if err := writer.Write(row); err != nil {
			return goerr.Wrap(err, "failed to write CSV row", goerr.V("index", i))
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return goerr.Wrap(err, "failed to flush CSV")
	}
	return nil
}

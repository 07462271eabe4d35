package dataset

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

// ErrTagParse marks malformed upstream table content.
var ErrTagParse = goerr.NewTag("parse")

// DateLayout is the layout of the date column headers (M/D/YY).
const DateLayout = "1/2/06"

// Identifier columns of the upstream wide tables.
const (
	ColumnSubRegion = "Province/State"
	ColumnRegion    = "Country/Region"
	ColumnLat       = "Lat"
	ColumnLong      = "Long"
)

// WideRow is one region (or sub-region) row of a wide table.
type WideRow struct {
	Region    string
	SubRegion string // empty when the region is not split
	Lat       float64
	Long      float64
	Values    []float64 // one value per WideTable.Dates entry
}

// WideTable is a cumulative count table with one column per date.
// It is not modified after ReadCSV returns.
type WideTable struct {
	Metric string
	Dates  []time.Time
	Rows   []WideRow
}

// ReadCSV parses a wide table. Every column other than the identifier
// columns must be a date header in DateLayout. Empty count cells read as 0.
func ReadCSV(r io.Reader, metric string) (*WideTable, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, goerr.New("table is empty", goerr.V("metric", metric), goerr.T(ErrTagParse))
		}
		return nil, goerr.Wrap(err, "failed to read table header", goerr.V("metric", metric), goerr.T(ErrTagParse))
	}

	table := &WideTable{Metric: metric}
	regionIdx, subRegionIdx, latIdx, longIdx := -1, -1, -1, -1
	var dateIdx []int
	seen := make(map[time.Time]string)

	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		switch name {
		case ColumnRegion:
			regionIdx = i
		case ColumnSubRegion:
			subRegionIdx = i
		case ColumnLat:
			latIdx = i
		case ColumnLong:
			longIdx = i
		default:
			date, err := time.Parse(DateLayout, name)
			if err != nil {
				return nil, goerr.Wrap(err, "column header is not a date",
					goerr.V("metric", metric),
					goerr.V("column", i),
					goerr.V("header", name),
					goerr.T(ErrTagParse))
			}
			if prev, ok := seen[date]; ok {
				return nil, goerr.New("duplicate date column",
					goerr.V("metric", metric),
					goerr.V("column", i),
					goerr.V("header", name),
					goerr.V("previous", prev),
					goerr.T(ErrTagParse))
			}
			seen[date] = name
			dateIdx = append(dateIdx, i)
			table.Dates = append(table.Dates, date)
		}
	}
	if regionIdx < 0 {
		return nil, goerr.New("region column not found",
			goerr.V("metric", metric),
			goerr.V("column", ColumnRegion),
			goerr.T(ErrTagParse))
	}

	for rowNum := 1; ; rowNum++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read table row",
				goerr.V("metric", metric), goerr.V("row", rowNum), goerr.T(ErrTagParse))
		}

		row := WideRow{
			Region: strings.TrimSpace(record[regionIdx]),
			Values: make([]float64, len(dateIdx)),
		}
		if subRegionIdx >= 0 {
			row.SubRegion = strings.TrimSpace(record[subRegionIdx])
		}
		if row.Lat, err = parseCoordinate(record, latIdx); err != nil {
			return nil, goerr.Wrap(err, "invalid latitude",
				goerr.V("metric", metric), goerr.V("row", rowNum), goerr.V("column", latIdx), goerr.T(ErrTagParse))
		}
		if row.Long, err = parseCoordinate(record, longIdx); err != nil {
			return nil, goerr.Wrap(err, "invalid longitude",
				goerr.V("metric", metric), goerr.V("row", rowNum), goerr.V("column", longIdx), goerr.T(ErrTagParse))
		}

		for j, col := range dateIdx {
			cell := strings.TrimSpace(record[col])
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err == nil && (math.IsNaN(v) || math.IsInf(v, 0)) {
				err = strconv.ErrSyntax
			}
			if err != nil {
				return nil, goerr.Wrap(err, "count is not a number",
					goerr.V("metric", metric),
					goerr.V("row", rowNum),
					goerr.V("column", header[col]),
					goerr.V("value", cell),
					goerr.T(ErrTagParse))
			}
			row.Values[j] = v
		}

		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

func parseCoordinate(record []string, idx int) (float64, error) {
	if idx < 0 {
		return math.NaN(), nil
	}
	cell := strings.TrimSpace(record[idx])
	if cell == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(cell, 64)
}

// Regions returns the distinct region names, sorted.
func (t *WideTable) Regions() []string {
	set := make(map[string]struct{}, len(t.Rows))
	for _, row := range t.Rows {
		set[row.Region] = struct{}{}
	}
	return sortedKeys(set)
}

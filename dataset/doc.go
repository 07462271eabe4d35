// Package dataset turns the upstream wide count tables into per-region
// daily series.
//
// The pipeline is ReadCSV, then Melt into long records, then Aggregate
// for a single region and date window:
//
//	table, err := dataset.ReadCSV(r, "confirmed")
//	records, err := dataset.Melt(table)
//	series, err := dataset.Aggregate(records, "India", start, end)
//
// Malformed headers and cells fail with errors tagged ErrTagParse.
package dataset

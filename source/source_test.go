package source_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/sartorproj/epicast/dataset"
	"github.com/sartorproj/epicast/dataset/datasettest"
	"github.com/sartorproj/epicast/source"
)

var (
	confirmedCSV = datasettest.CSV(datasettest.Start, 5,
		datasettest.Row{Region: "India", Value: datasettest.Linear(10, 5)},
		datasettest.Row{SubRegion: "Hubei", Region: "China", Value: datasettest.Constant(100)},
	)
	deathsCSV = datasettest.CSV(datasettest.Start, 5,
		datasettest.Row{Region: "India", Value: datasettest.Linear(0, 1)},
		datasettest.Row{SubRegion: "Hubei", Region: "China", Value: datasettest.Constant(3)},
	)
)

type fetchCounter struct {
	count atomic.Int32
}

func (f *fetchCounter) ObserveStage(string, time.Duration, error) {}
func (f *fetchCounter) ObserveFetch(string, time.Duration)        { f.count.Add(1) }
func (f *fetchCounter) SetAnomalies(int)                          {}

func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/confirmed.csv", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(confirmedCSV))
	})
	mux.HandleFunc("/deaths.csv", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(deathsCSV))
	})
	mux.HandleFunc("/broken.csv", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Country/Region,yesterday\nIndia,1\n"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoadOverHTTP(t *testing.T) {
	srv := newUpstream(t)
	counter := &fetchCounter{}
	loader := source.New(source.WithHTTPClient(srv.Client()), source.WithRecorder(counter))

	tables, err := loader.Load(context.Background(), srv.URL+"/confirmed.csv", srv.URL+"/deaths.csv")
	gt.NoError(t, err).Required()

	gt.Equal(t, tables.Confirmed.Metric, source.MetricConfirmed)
	gt.Equal(t, tables.Deaths.Metric, source.MetricDeaths)
	gt.Equal(t, len(tables.Confirmed.Rows), 2)
	gt.Equal(t, len(tables.Deaths.Dates), 5)
	gt.Equal(t, tables.Confirmed.Rows[0].Values, []float64{10, 15, 20, 25, 30})
	gt.Equal(t, counter.count.Load(), int32(2))
}

func TestLoadFailures(t *testing.T) {
	srv := newUpstream(t)
	loader := source.New(source.WithHTTPClient(srv.Client()))

	t.Run("missing table", func(t *testing.T) {
		_, err := loader.Load(context.Background(), srv.URL+"/confirmed.csv", srv.URL+"/missing.csv")
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, source.ErrTagDataFetch))
		gt.V(t, goerr.Values(err)["metric"]).Equal(source.MetricDeaths)
	})

	t.Run("malformed table", func(t *testing.T) {
		_, err := loader.Load(context.Background(), srv.URL+"/broken.csv", srv.URL+"/deaths.csv")
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, dataset.ErrTagParse))
		gt.False(t, goerr.HasTag(err, source.ErrTagDataFetch))
	})

	t.Run("unreachable host", func(t *testing.T) {
		_, err := loader.Fetch(context.Background(), source.MetricConfirmed, "http://127.0.0.1:1/confirmed.csv")
		gt.True(t, goerr.HasTag(err, source.ErrTagDataFetch))
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		_, err := loader.Fetch(context.Background(), source.MetricConfirmed, "ftp://example.com/confirmed.csv")
		gt.True(t, goerr.HasTag(err, source.ErrTagDataFetch))
	})

	t.Run("empty location", func(t *testing.T) {
		_, err := loader.Fetch(context.Background(), source.MetricConfirmed, "")
		gt.True(t, goerr.HasTag(err, source.ErrTagDataFetch))
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := loader.Load(ctx, srv.URL+"/confirmed.csv", srv.URL+"/deaths.csv")
		gt.True(t, goerr.HasTag(err, source.ErrTagDataFetch))
	})
}

func TestLoadFromFiles(t *testing.T) {
	dir := t.TempDir()
	confirmed := filepath.Join(dir, "confirmed.csv")
	deaths := filepath.Join(dir, "deaths.csv")
	gt.NoError(t, os.WriteFile(confirmed, []byte(confirmedCSV), 0o600)).Required()
	gt.NoError(t, os.WriteFile(deaths, []byte(deathsCSV), 0o600)).Required()

	t.Run("plain paths", func(t *testing.T) {
		tables, err := source.Load(context.Background(), confirmed, deaths)
		gt.NoError(t, err).Required()
		gt.Equal(t, tables.Confirmed.Regions(), []string{"China", "India"})
	})

	t.Run("file URLs", func(t *testing.T) {
		tables, err := source.Load(context.Background(), "file://"+confirmed, "file://"+deaths)
		gt.NoError(t, err).Required()
		gt.Equal(t, tables.Deaths.Rows[1].Values, []float64{3, 3, 3, 3, 3})
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := source.Load(context.Background(), confirmed, filepath.Join(dir, "nope.csv"))
		gt.True(t, goerr.HasTag(err, source.ErrTagDataFetch))
	})
}

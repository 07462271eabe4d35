// Package source downloads the upstream wide tables.
package source

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sartorproj/epicast/dataset"
	"github.com/sartorproj/epicast/metrics"
	"golang.org/x/sync/errgroup"
)

// ErrTagDataFetch marks an upstream table that could not be retrieved.
var ErrTagDataFetch = goerr.NewTag("data_fetch")

// Default upstream locations (JHU CSSE global time series).
const (
	DefaultConfirmedURL = "https://raw.githubusercontent.com/CSSEGISandData/COVID-19/master/csse_covid_19_data/csse_covid_19_time_series/time_series_covid19_confirmed_global.csv"
	DefaultDeathsURL    = "https://raw.githubusercontent.com/CSSEGISandData/COVID-19/master/csse_covid_19_data/csse_covid_19_time_series/time_series_covid19_deaths_global.csv"
)

// Metric names of the two tables.
const (
	MetricConfirmed = "confirmed"
	MetricDeaths    = "deaths"
)

// Tables holds both upstream tables.
type Tables struct {
	Confirmed *dataset.WideTable
	Deaths    *dataset.WideTable
}

// Loader fetches tables over HTTP or from local files.
type Loader struct {
	client   *http.Client
	recorder metrics.Recorder
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient sets the client used for http and https locations.
func WithHTTPClient(client *http.Client) Option {
	return func(l *Loader) {
		l.client = client
	}
}

// WithRecorder sets the metrics recorder for fetch timings.
func WithRecorder(recorder metrics.Recorder) Option {
	return func(l *Loader) {
		l.recorder = recorder
	}
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{
		client:   http.DefaultClient,
		recorder: metrics.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches the confirmed and deaths tables concurrently and returns
// once both are parsed. Either failure fails the whole load.
func Load(ctx context.Context, confirmedURL, deathsURL string) (*Tables, error) {
	return New().Load(ctx, confirmedURL, deathsURL)
}

// Load fetches the confirmed and deaths tables concurrently and returns
// once both are parsed. Either failure fails the whole load.
func (l *Loader) Load(ctx context.Context, confirmedURL, deathsURL string) (*Tables, error) {
	var tables Tables
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		t, err := l.Fetch(egCtx, MetricConfirmed, confirmedURL)
		tables.Confirmed = t
		return err
	})
	eg.Go(func() error {
		t, err := l.Fetch(egCtx, MetricDeaths, deathsURL)
		tables.Deaths = t
		return err
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return &tables, nil
}

// Fetch retrieves and parses one table. location is an http(s) URL, a
// file:// URL or a plain file path.
func (l *Loader) Fetch(ctx context.Context, metric, location string) (*dataset.WideTable, error) {
	logger := ctxlog.From(ctx)
	start := time.Now()

	body, err := l.open(ctx, location)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch table",
			goerr.V("metric", metric),
			goerr.V("location", location),
			goerr.T(ErrTagDataFetch))
	}
	defer func() {
		if err := body.Close(); err != nil {
			logger.Warn("failed to close table body", "error", err, "metric", metric)
		}
	}()

	table, err := dataset.ReadCSV(body, metric)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse table", goerr.V("location", location))
	}

	elapsed := time.Since(start)
	l.recorder.ObserveFetch(metric, elapsed)
	logger.Info("table loaded",
		"metric", metric,
		"location", location,
		"rows", len(table.Rows),
		"dates", len(table.Dates),
		"duration", elapsed,
	)
	return table, nil
}

func (l *Loader) open(ctx context.Context, location string) (io.ReadCloser, error) {
	if location == "" {
		return nil, goerr.New("location is empty")
	}

	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// plain path, including Windows drive letters
		return os.Open(location)
	}

	switch strings.ToLower(u.Scheme) {
	case "file":
		path := u.Path
		if path == "" {
			path = u.Opaque
		}
		return os.Open(path)

	case "http", "https":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to build request")
		}
		resp, err := l.client.Do(req)
		if err != nil {
			return nil, goerr.Wrap(err, "request failed")
		}
		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			return nil, goerr.New("unexpected response status", goerr.V("status", resp.StatusCode))
		}
		return resp.Body, nil

	default:
		return nil, goerr.New("unsupported location scheme", goerr.V("scheme", u.Scheme))
	}
}

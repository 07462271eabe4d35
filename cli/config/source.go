package config

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sartorproj/epicast/metrics"
	"github.com/sartorproj/epicast/source"
	"github.com/urfave/cli/v3"
)

// Source holds the upstream table configuration
type Source struct {
	ConfirmedURL string
	DeathsURL    string
	Timeout      time.Duration
}

// Flags returns CLI flags for Source configuration
func (s *Source) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "confirmed-url",
			Usage:       "Location of the confirmed cases table (URL or file path)",
			Category:    "Source",
			Sources:     cli.EnvVars("EPICAST_CONFIRMED_URL"),
			Destination: &s.ConfirmedURL,
		},
		&cli.StringFlag{
			Name:        "deaths-url",
			Usage:       "Location of the deaths table (URL or file path)",
			Category:    "Source",
			Sources:     cli.EnvVars("EPICAST_DEATHS_URL"),
			Destination: &s.DeathsURL,
		},
		&cli.DurationFlag{
			Name:        "fetch-timeout",
			Usage:       "Timeout of each table download",
			Category:    "Source",
			Value:       time.Minute,
			Sources:     cli.EnvVars("EPICAST_FETCH_TIMEOUT"),
			Destination: &s.Timeout,
		},
	}
}

// Resolve returns a copy with unset locations taken from settings and
// then from the public defaults.
func (s Source) Resolve(settings *Settings) Source {
	if s.ConfirmedURL == "" && settings != nil {
		s.ConfirmedURL = settings.Source.Confirmed
	}
	if s.DeathsURL == "" && settings != nil {
		s.DeathsURL = settings.Source.Deaths
	}
	if s.ConfirmedURL == "" {
		s.ConfirmedURL = source.DefaultConfirmedURL
	}
	if s.DeathsURL == "" {
		s.DeathsURL = source.DefaultDeathsURL
	}
	return s
}

// Validate validates the source configuration
func (s *Source) Validate() error {
	if s.Timeout < 0 {
		return goerr.New("fetch timeout must not be negative", goerr.V("timeout", s.Timeout))
	}
	return nil
}

// Load downloads both tables.
func (s *Source) Load(ctx context.Context, settings *Settings, recorder metrics.Recorder) (*source.Tables, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	resolved := s.Resolve(settings)

	loader := source.New(
		source.WithHTTPClient(&http.Client{Timeout: resolved.Timeout}),
		source.WithRecorder(recorder),
	)
	return loader.Load(ctx, resolved.ConfirmedURL, resolved.DeathsURL)
}

// LogValue returns structured log value
func (s Source) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("confirmed_url", s.ConfirmedURL),
		slog.String("deaths_url", s.DeathsURL),
		slog.Duration("timeout", s.Timeout),
	)
}

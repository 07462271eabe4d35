package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sartorproj/epicast/cli/config"
	"github.com/sartorproj/epicast/dashboard"
	"github.com/sartorproj/epicast/metrics"
	"github.com/urfave/cli/v3"
)

// joinFlags combines multiple flag slices into one
func joinFlags(flags ...[]cli.Flag) []cli.Flag {
	var result []cli.Flag
	for _, f := range flags {
		result = append(result, f...)
	}
	return result
}

// loadSession downloads both tables and builds the session.
func loadSession(ctx context.Context, fileCfg *config.File, sourceCfg *config.Source, dashboardCfg *config.Dashboard, recorder metrics.Recorder) (*dashboard.Session, error) {
	logger := ctxlog.From(ctx)

	settings, err := fileCfg.Load()
	if err != nil {
		return nil, err
	}
	opts, err := dashboardCfg.Options(settings, recorder)
	if err != nil {
		return nil, err
	}

	began := time.Now()
	tables, err := sourceCfg.Load(ctx, settings, recorder)
	recorder.ObserveStage(metrics.StageLoad, time.Since(began), err)
	if err != nil {
		return nil, err
	}

	session, err := dashboard.NewSession(tables.Confirmed, tables.Deaths, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build session")
	}

	logger.Info("Case data loaded",
		slog.String("session", session.ID),
		slog.Int("regions", len(session.Regions())),
		slog.String("min_date", session.MinDate().Format(time.DateOnly)),
		slog.String("max_date", session.MaxDate().Format(time.DateOnly)),
	)
	return session, nil
}

// parseDate parses an optional YYYY-MM-DD flag value.
func parseDate(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, goerr.Wrap(err, "dates must be formatted as YYYY-MM-DD",
			goerr.V(name, value),
			goerr.T(dashboard.ErrTagInvalidSelection))
	}
	return t, nil
}

// Package cli implements the epicast command line.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sartorproj/epicast/cli/config"
	"github.com/sartorproj/epicast/dashboard"
	"github.com/urfave/cli/v3"
)

// Run runs the CLI application
func Run(ctx context.Context, args []string) error {
	if err := newApp(os.Stdout, os.Stderr).Run(ctx, args); err != nil {
		msg, _ := dashboard.UserMessage(err)
		slog.Default().Error(msg, "error", err)
		return goerr.Wrap(err, "CLI execution failed")
	}
	return nil
}

func newApp(stdout, stderr io.Writer) *cli.Command {
	var loggerCfg config.Logger

	return &cli.Command{
		Name:      "epicast",
		Usage:     "COVID-19 case dashboard with ARIMA forecasts and anomaly flags",
		Version:   "0.1.0",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags:     loggerCfg.Flags(),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, err := loggerCfg.Configure(stderr)
			if err != nil {
				return nil, err
			}

			slog.SetDefault(logger)
			ctx = ctxlog.With(ctx, logger)
			return ctx, nil
		},
		Commands: []*cli.Command{
			cmdServe(),
			cmdRender(),
			cmdRegions(),
			cmdForecast(),
		},
	}
}

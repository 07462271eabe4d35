package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sartorproj/epicast/cli/config"
	"github.com/sartorproj/epicast/dashboard"
	"github.com/sartorproj/epicast/metrics"
	"github.com/sartorproj/epicast/report"
	"github.com/urfave/cli/v3"
)

func cmdRender() *cli.Command {
	var (
		fileCfg      config.File
		sourceCfg    config.Source
		dashboardCfg config.Dashboard
		start, end   string
		outDir       string
	)

	flags := joinFlags(
		fileCfg.Flags(),
		sourceCfg.Flags(),
		dashboardCfg.Flags(),
		[]cli.Flag{
			&cli.StringFlag{
				Name:        "start",
				Usage:       "First date of the selection (YYYY-MM-DD, default: first date in the data)",
				Destination: &start,
			},
			&cli.StringFlag{
				Name:        "end",
				Usage:       "Last date of the selection (YYYY-MM-DD, default: last date in the data)",
				Destination: &end,
			},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "Directory to write the charts and forecast tables to",
				Destination: &outDir,
			},
		},
	)

	return &cli.Command{
		Name:  "render",
		Usage: "Render one selection and print the statistics, anomalies and forecast",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			dashboardCfg.Capture(c)
			session, err := loadSession(ctx, &fileCfg, &sourceCfg, &dashboardCfg, metrics.Nop())
			if err != nil {
				return err
			}

			sel := session.DefaultSelection()
			if dashboardCfg.Region != "" {
				sel.Region = dashboardCfg.Region
			}
			if sel.Start, err = parseDate("start", start); err != nil {
				return err
			}
			if sel.End, err = parseDate("end", end); err != nil {
				return err
			}
			sel = session.Complete(sel)

			view, err := dashboard.Render(ctx, session, sel)
			if err != nil {
				return err
			}

			newPrinter(c.Root().Writer).view(view)

			if outDir != "" {
				if err := os.MkdirAll(outDir, 0o755); err != nil {
					return goerr.Wrap(err, "failed to create output directory", goerr.V("dir", outDir))
				}
				if err := report.WriteAll(outDir, view); err != nil {
					return err
				}
				logger.Info("Report written", slog.String("dir", outDir))
			}
			return nil
		},
	}
}

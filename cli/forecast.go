package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sartorproj/epicast/dashboard"
	"github.com/sartorproj/epicast/forecast"
	"github.com/sartorproj/epicast/timeseries"
	"github.com/urfave/cli/v3"
)

// cmdForecast forecasts a single dated series read from a two-column CSV file.
func cmdForecast() *cli.Command {
	var (
		input     string
		horizon   int
		precision int
		opts      = timeseries.DefaultCSVOptions()
	)

	return &cli.Command{
		Name:  "forecast",
		Usage: "Forecast a date,value CSV series and print the forecast as CSV",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "input",
				Aliases:     []string{"i"},
				Usage:       "CSV file with a header row",
				Required:    true,
				Destination: &input,
			},
			&cli.IntFlag{
				Name:        "horizon",
				Usage:       "Number of days to forecast",
				Value:       dashboard.DefaultHorizon,
				Destination: &horizon,
			},
			&cli.StringFlag{
				Name:        "date-column",
				Usage:       "Header of the date column",
				Value:       opts.DateColumn,
				Destination: &opts.DateColumn,
			},
			&cli.StringFlag{
				Name:        "value-column",
				Usage:       "Header of the value column",
				Value:       opts.ValueColumn,
				Destination: &opts.ValueColumn,
			},
			&cli.IntFlag{
				Name:        "precision",
				Usage:       "Decimal places of the forecast values",
				Value:       2,
				Destination: &precision,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			f, err := os.Open(input)
			if err != nil {
				return goerr.Wrap(err, "failed to open input", goerr.V("path", input))
			}
			defer f.Close()

			series, err := timeseries.ReadCSV(f, opts)
			if err != nil {
				return goerr.Wrap(err, "failed to read input", goerr.V("path", input))
			}
			daily, err := series.Daily()
			if err != nil {
				return err
			}

			result, err := forecast.Forecast(daily, horizon)
			if err != nil {
				return err
			}
			return timeseries.WriteCSV(c.Root().Writer, result.Series(), opts, precision)
		},
	}
}

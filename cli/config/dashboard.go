package config

import (
	"log/slog"

	"github.com/sartorproj/epicast/dashboard"
	"github.com/sartorproj/epicast/metrics"
	"github.com/urfave/cli/v3"
)

const thresholdFlag = "threshold"

// Dashboard holds the dashboard defaults
type Dashboard struct {
	Region    string
	Horizon   int
	Threshold float64

	thresholdSet bool
}

// Flags returns CLI flags for Dashboard configuration
func (d *Dashboard) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "region",
			Usage:       "Default region (default \"" + dashboard.DefaultRegion + "\")",
			Category:    "Dashboard",
			Sources:     cli.EnvVars("EPICAST_REGION"),
			Destination: &d.Region,
		},
		&cli.IntFlag{
			Name:        "horizon",
			Usage:       "Default forecast horizon in days (default 30)",
			Category:    "Dashboard",
			Sources:     cli.EnvVars("EPICAST_HORIZON"),
			Destination: &d.Horizon,
		},
		&cli.FloatFlag{
			Name:        thresholdFlag,
			Usage:       "Anomaly z-score threshold (default 2)",
			Category:    "Dashboard",
			Sources:     cli.EnvVars("EPICAST_THRESHOLD"),
			Destination: &d.Threshold,
		},
	}
}

// Capture records which flags c was given, so that an explicit zero
// threshold is kept rather than read as unset.
func (d *Dashboard) Capture(c *cli.Command) {
	d.thresholdSet = c.IsSet(thresholdFlag)
}

// Resolve returns a copy with unset fields taken from settings.
func (d Dashboard) Resolve(settings *Settings) Dashboard {
	if settings == nil {
		return d
	}
	if d.Region == "" {
		d.Region = settings.Dashboard.Region
	}
	if d.Horizon == 0 {
		d.Horizon = settings.Dashboard.Horizon
	}
	if !d.thresholdSet && settings.Dashboard.Threshold != nil {
		d.Threshold = *settings.Dashboard.Threshold
		d.thresholdSet = true
	}
	return d
}

// Validate validates the dashboard configuration
func (d *Dashboard) Validate() error {
	if err := validateHorizon(d.Horizon); err != nil {
		return err
	}
	if d.thresholdSet || d.Threshold != 0 {
		return validateThreshold(d.Threshold)
	}
	return nil
}

// Options returns the session options for the resolved configuration.
func (d *Dashboard) Options(settings *Settings, recorder metrics.Recorder) ([]dashboard.Option, error) {
	resolved := d.Resolve(settings)
	if err := resolved.Validate(); err != nil {
		return nil, err
	}

	opts := []dashboard.Option{dashboard.WithRecorder(recorder)}
	if resolved.Region != "" {
		opts = append(opts, dashboard.WithDefaultRegion(resolved.Region))
	}
	if resolved.Horizon != 0 {
		opts = append(opts, dashboard.WithDefaultHorizon(resolved.Horizon))
	}
	if resolved.thresholdSet || resolved.Threshold != 0 {
		opts = append(opts, dashboard.WithThreshold(resolved.Threshold))
	}
	return opts, nil
}

// LogValue returns structured log value
func (d Dashboard) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("region", d.Region),
		slog.Int("horizon", d.Horizon),
		slog.Float64("threshold", d.Threshold),
	)
}

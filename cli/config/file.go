package config

import (
	"log/slog"
	"math"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sartorproj/epicast/dashboard"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Settings is the content of the optional YAML configuration file.
// Zero fields are unset; command line flags override set fields.
//
//	source:
//	  confirmed: https://example.com/confirmed.csv
//	  deaths: ./deaths.csv
//	dashboard:
//	  region: Italy
//	  horizon: 14
//	  threshold: 2.5
type Settings struct {
	Source    SourceSettings    `yaml:"source"`
	Dashboard DashboardSettings `yaml:"dashboard"`
}

// SourceSettings holds the table locations.
type SourceSettings struct {
	Confirmed string `yaml:"confirmed"`
	Deaths    string `yaml:"deaths"`
}

// DashboardSettings holds the dashboard defaults.
type DashboardSettings struct {
	Region    string   `yaml:"region"`
	Horizon   int      `yaml:"horizon"`
	Threshold *float64 `yaml:"threshold"` // nil when unset; 0 is a valid threshold
}

// Validate validates the settings
func (s *Settings) Validate() error {
	d := s.Dashboard
	if err := validateHorizon(d.Horizon); err != nil {
		return err
	}
	if d.Threshold != nil {
		return validateThreshold(*d.Threshold)
	}
	return nil
}

// validateHorizon accepts 0 as unset.
func validateHorizon(horizon int) error {
	if horizon != 0 && (horizon < dashboard.MinHorizon || horizon > dashboard.MaxHorizon) {
		return goerr.New("horizon out of range",
			goerr.V("horizon", horizon),
			goerr.V("min", dashboard.MinHorizon),
			goerr.V("max", dashboard.MaxHorizon))
	}
	return nil
}

func validateThreshold(threshold float64) error {
	if threshold < 0 || math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return goerr.New("threshold must be a finite number not below zero", goerr.V("threshold", threshold))
	}
	return nil
}

// LoadSettings loads settings from a YAML file
func LoadSettings(path string) (*Settings, error) {
	if path == "" {
		return nil, goerr.New("configuration file path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(err, "configuration file not found",
				goerr.V("path", path))
		}
		return nil, goerr.Wrap(err, "failed to read configuration file",
			goerr.V("path", path))
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, goerr.Wrap(err, "failed to parse YAML configuration",
			goerr.V("path", path))
	}

	if err := settings.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid configuration",
			goerr.V("path", path))
	}

	return &settings, nil
}

// File holds the configuration file flag.
type File struct {
	Path string
}

// Flags returns CLI flags for File configuration
func (f *File) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "YAML configuration file with source and dashboard defaults",
			Sources:     cli.EnvVars("EPICAST_CONFIG"),
			Destination: &f.Path,
		},
	}
}

// Load returns the file settings, or empty settings when no file is set.
func (f *File) Load() (*Settings, error) {
	if f.Path == "" {
		return &Settings{}, nil
	}
	return LoadSettings(f.Path)
}

// LogValue returns structured log value
func (f File) LogValue() slog.Value {
	return slog.GroupValue(slog.String("path", f.Path))
}

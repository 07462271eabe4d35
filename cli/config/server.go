package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Server holds server configuration
type Server struct {
	Addr    string
	Metrics bool
}

// Flags returns CLI flags for Server configuration
func (s *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address",
			Value:       "localhost:8080",
			Sources:     cli.EnvVars("EPICAST_ADDR"),
			Destination: &s.Addr,
		},
		&cli.BoolFlag{
			Name:        "metrics",
			Usage:       "Serve Prometheus metrics at /metrics",
			Value:       true,
			Sources:     cli.EnvVars("EPICAST_METRICS"),
			Destination: &s.Metrics,
		},
	}
}

// Validate validates the server configuration
func (s *Server) Validate() error {
	if s.Addr == "" {
		return goerr.New("server address is required")
	}
	return nil
}

// LogValue returns structured log value
func (s Server) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("addr", s.Addr),
		slog.Bool("metrics", s.Metrics),
	)
}

package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sartorproj/epicast/cli/config"
	"github.com/sartorproj/epicast/metrics"
	"github.com/sartorproj/epicast/server"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		fileCfg      config.File
		serverCfg    config.Server
		sourceCfg    config.Source
		dashboardCfg config.Dashboard
	)

	flags := joinFlags(
		fileCfg.Flags(),
		serverCfg.Flags(),
		sourceCfg.Flags(),
		dashboardCfg.Flags(),
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Load the case data and start the dashboard server",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting epicast server",
				slog.Any("server", serverCfg),
				slog.Any("config", fileCfg),
				slog.Any("source", sourceCfg),
				slog.Any("dashboard", dashboardCfg),
			)

			if err := serverCfg.Validate(); err != nil {
				return err
			}

			dashboardCfg.Capture(c)
			recorder := metrics.NewPrometheusRecorder()
			session, err := loadSession(ctx, &fileCfg, &sourceCfg, &dashboardCfg, recorder)
			if err != nil {
				return err
			}

			var opts []server.Option
			if serverCfg.Metrics {
				opts = append(opts, server.WithMetricsHandler(recorder.Handler()))
			}
			srv := server.New(ctx, serverCfg.Addr, session, opts...)

			errCh := make(chan error, 1)
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			case err := <-errCh:
				return goerr.Wrap(err, "HTTP server failed", goerr.V("addr", serverCfg.Addr))
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}

package cli

import (
	"context"
	"fmt"

	"github.com/sartorproj/epicast/cli/config"
	"github.com/sartorproj/epicast/metrics"
	"github.com/urfave/cli/v3"
)

func cmdRegions() *cli.Command {
	var (
		fileCfg      config.File
		sourceCfg    config.Source
		dashboardCfg config.Dashboard
	)

	return &cli.Command{
		Name:  "regions",
		Usage: "List the selectable regions",
		Flags: joinFlags(fileCfg.Flags(), sourceCfg.Flags()),
		Action: func(ctx context.Context, c *cli.Command) error {
			session, err := loadSession(ctx, &fileCfg, &sourceCfg, &dashboardCfg, metrics.Nop())
			if err != nil {
				return err
			}
			for _, region := range session.Regions() {
				if _, err := fmt.Fprintln(c.Root().Writer, region); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

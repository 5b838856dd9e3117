package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/sea-ice-etl/internal/adapter/naturalearth"
	"github.com/couchcryptid/sea-ice-etl/internal/config"
)

func newBasemapCommand(ctx *commandContext) *cobra.Command {
	var (
		force   bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "basemap",
		Short: "Download the Natural Earth land, coastline and border layers",
		Long: "Download the public-domain Natural Earth 110m shapefiles to the configured\n" +
			"basemap paths (default " + config.DefaultBasemapDir + "). Layers already on disk are kept\n" +
			"unless --force is given.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(ctx.configPath)
			if err != nil {
				return err
			}
			logger := ctx.newLogger(cmd, cfg)

			client := naturalearth.NewClient(cfg.Basemap.SourceURL, timeout, logger)
			written, err := client.Install(cmd.Context(), []naturalearth.Target{
				{Layer: naturalearth.Land, Path: cfg.Basemap.Land},
				{Layer: naturalearth.Coastline, Path: cfg.Basemap.Coastline},
				{Layer: naturalearth.Borders, Path: cfg.Basemap.Borders},
			}, force)
			for _, path := range written {
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Download layers that are already present")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "Per-download HTTP timeout")
	return cmd
}

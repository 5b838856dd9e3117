package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "seaice",
		Short:         "Convert sea-ice concentration grids to GeoJSON points and polar maps",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&ctx.configPath, "config", "c", "", "Configuration file path (TOML)")
	flags.StringVarP(&ctx.input, "input", "i", "", "Input NetCDF file (overrides SEAICE_INPUT)")
	flags.StringVar(&ctx.date, "date", "", "Product date YYYY-MM-DD (default: parsed from the file name)")
	flags.StringVar(&ctx.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(newGeoJSONCommand(ctx))
	rootCmd.AddCommand(newPNGCommand(ctx))
	rootCmd.AddCommand(newConvertCommand(ctx))
	rootCmd.AddCommand(newBasemapCommand(ctx))

	return rootCmd
}

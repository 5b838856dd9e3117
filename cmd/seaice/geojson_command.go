package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/sea-ice-etl/internal/pipeline"
)

func newGeoJSONCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "geojson [input.nc]",
		Short: "Export valid grid cells as GeoJSON points",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.open(cmd, args)
			if err != nil {
				return err
			}
			res, err := s.pipelines.Exporter.Export(cmd.Context(), pipeline.ExportRequest{
				InputPath:  s.input,
				OutputPath: s.outputPath(output, s.cfg.Dataset.GeoJSONOut, ".geojson"),
				Date:       s.date,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d features)\n", res.Artifact.Path, res.Artifact.Records)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "GeoJSON output path")
	cmd.Flags().IntVar(&ctx.sampleStep, "sample-step", 0, "Keep every n-th valid cell (0 uses SEAICE_SAMPLE_STEP)")
	return cmd
}

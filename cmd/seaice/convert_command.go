package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/sea-ice-etl/internal/pipeline"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var geojsonOut, pngOut string

	cmd := &cobra.Command{
		Use:   "convert [input.nc]",
		Short: "Write both the GeoJSON export and the PNG map",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.open(cmd, args)
			if err != nil {
				return err
			}
			exp, err := s.pipelines.Exporter.Export(cmd.Context(), pipeline.ExportRequest{
				InputPath:  s.input,
				OutputPath: s.outputPath(geojsonOut, s.cfg.Dataset.GeoJSONOut, ".geojson"),
				Date:       s.date,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d features)\n", exp.Artifact.Path, exp.Artifact.Records)

			ren, err := s.pipelines.Renderer.Render(cmd.Context(), pipeline.RenderRequest{
				InputPath:  s.input,
				OutputPath: s.outputPath(pngOut, s.cfg.Dataset.PNGOut, ".png"),
				Date:       s.date,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", ren.Artifact.Path, ren.Artifact.Bytes)
			return nil
		},
	}

	cmd.Flags().StringVar(&geojsonOut, "geojson", "", "GeoJSON output path")
	cmd.Flags().StringVar(&pngOut, "png", "", "PNG output path")
	cmd.Flags().IntVar(&ctx.sampleStep, "sample-step", 0, "Keep every n-th valid cell in the GeoJSON export (0 uses SEAICE_SAMPLE_STEP)")
	return cmd
}

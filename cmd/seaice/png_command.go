package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/sea-ice-etl/internal/pipeline"
)

func newPNGCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "png [input.nc]",
		Short: "Render the grid as a north polar stereographic map",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.open(cmd, args)
			if err != nil {
				return err
			}
			res, err := s.pipelines.Renderer.Render(cmd.Context(), pipeline.RenderRequest{
				InputPath:  s.input,
				OutputPath: s.outputPath(output, s.cfg.Dataset.PNGOut, ".png"),
				Date:       s.date,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", res.Artifact.Path, res.Artifact.Bytes)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "PNG output path")
	return cmd
}

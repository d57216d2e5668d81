package main

import (
	"github.com/spf13/cobra"

	mandel "github.com/marben/deepzoom"
	"github.com/marben/deepzoom/viewport"
)

func newLocationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "locations",
		Short: "print the built-in landmarks as a location file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return viewport.SaveLocations(cmd.OutOrStdout(), mandel.Landmarks())
		},
	}
}

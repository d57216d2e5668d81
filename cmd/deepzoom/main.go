// Command deepzoom renders deep zoom locations in-process on the cpu or gpu
// backend and checks the two backends against each other.
package main

import (
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	mandel "github.com/marben/deepzoom"
	"github.com/marben/deepzoom/internal/cli"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

// view selects what to render.
type view struct {
	location      string
	locations     string
	width, height int
}

func (vw *view) flags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&vw.location, "location", "l", mandel.SeahorseValley.Name, "location name")
	f.StringVar(&vw.locations, "locations", "", "yaml location file (default: built-in landmarks)")
	f.IntVar(&vw.width, "width", 800, "canvas width")
	f.IntVar(&vw.height, "height", 600, "canvas height")
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	root := &cobra.Command{
		Use:          "deepzoom",
		Short:        "perturbation deep zoom renderer",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			cobra.OnFinalize(stop)
			cmd.SetContext(ctx)
			return nil
		},
	}
	cli.BindFlags(root, v)
	root.AddCommand(
		newRenderCmd(v),
		newCompareCmd(v),
		newShaderCmd(),
		newLocationsCmd(),
	)
	return root
}

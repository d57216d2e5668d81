package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	mandel "github.com/marben/deepzoom"
	"github.com/marben/deepzoom/internal/cli"
	"github.com/marben/deepzoom/session"
)

// agreement summarizes how far two renders of the same view differ.
type agreement struct {
	pixels     int
	mismatched int
	maxDelta   uint32
}

func (a agreement) fraction() float64 {
	if a.pixels == 0 {
		return 0
	}
	return float64(a.mismatched) / float64(a.pixels)
}

// compareGrids counts pixels whose escape state differs or whose iteration
// counts differ by more than tol.
func compareGrids(x, y []mandel.PixelResult, tol uint32) agreement {
	a := agreement{pixels: min(len(x), len(y))}
	for i := range a.pixels {
		p, q := x[i], y[i]
		d := max(p.Iterations, q.Iterations) - min(p.Iterations, q.Iterations)
		a.maxDelta = max(a.maxDelta, d)
		if p.Escaped != q.Escaped || d > tol {
			a.mismatched++
		}
	}
	return a
}

func newCompareCmd(v *viper.Viper) *cobra.Command {
	var (
		vw          view
		tol         uint32
		maxMismatch float64
	)
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "render a location on both backends and check they agree",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := cli.Setup(cmd, v)
			if err != nil {
				return err
			}
			var grids [2][]mandel.PixelResult
			for i, backend := range []string{session.BackendCPU, session.BackendGPU} {
				c := cfg
				c.Backend = backend
				d, err := renderView(cmd.Context(), c, vw, logger)
				if err != nil {
					return err
				}
				grids[i] = d.Pixels()
			}
			a := compareGrids(grids[0], grids[1], tol)
			logger.WithFields(logrus.Fields{
				"pixels":     a.pixels,
				"mismatched": a.mismatched,
				"max_delta":  a.maxDelta,
			}).Info("backends compared")
			if a.fraction() > maxMismatch {
				return fmt.Errorf("%.4f%% of pixels disagree (limit %.4f%%)", 100*a.fraction(), 100*maxMismatch)
			}
			return nil
		},
	}
	vw.flags(cmd)
	cmd.Flags().Uint32Var(&tol, "tolerance", 1, "iteration count difference still counted as agreement")
	cmd.Flags().Float64Var(&maxMismatch, "max-mismatch", 0.001, "fraction of disagreeing pixels tolerated")
	return cmd
}

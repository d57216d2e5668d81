package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/marben/deepzoom/internal/cli"
	"github.com/marben/deepzoom/session"
)

func newRenderCmd(v *viper.Viper) *cobra.Command {
	var (
		vw           view
		out          string
		previewWidth int
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "render a location to png",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := cli.Setup(cmd, v)
			if err != nil {
				return err
			}
			d, err := renderView(cmd.Context(), cfg, vw, logger)
			if err != nil {
				return err
			}
			if err := cli.SavePreview(d, out, previewWidth); err != nil {
				return err
			}
			logger.WithFields(logrus.Fields{
				"file":     out,
				"glitched": d.Glitched(),
				"failed":   len(d.Failed()),
			}).Info("image saved")
			return nil
		},
	}
	vw.flags(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "mandel.png", "output png")
	cmd.Flags().IntVar(&previewWidth, "preview-width", 0, "scale the png to this width (0 keeps the canvas size)")
	return cmd
}

// renderView renders vw on the backend named by cfg and waits for it.
func renderView(ctx context.Context, cfg session.Config, vw view, logger *logrus.Logger) (*session.Dataset, error) {
	loc, err := cli.ResolveLocation(vw.location, vw.locations)
	if err != nil {
		return nil, err
	}
	vp, err := loc.Viewport(vw.width, vw.height)
	if err != nil {
		return nil, err
	}
	b, err := session.NewBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	logger.WithFields(logrus.Fields{"location": loc.Name, "backend": b.Name()}).Info("rendering")
	s := session.New(cfg, b, cli.ProgressLogger(logger))
	if _, err := s.Start(ctx, vp, vw.width, vw.height); err != nil {
		return nil, err
	}
	d, err := s.Wait()
	if err != nil {
		return nil, fmt.Errorf("render %q on %s: %w", loc.Name, b.Name(), err)
	}
	return d, nil
}

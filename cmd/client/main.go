// Command client is a remote compute unit: it dials the server and renders
// the tiles it is sent until the connection ends.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/marben/deepzoom/internal/cli"
	"github.com/marben/deepzoom/remote"
	"github.com/marben/deepzoom/render"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var (
		url   string
		name  string
		retry time.Duration
	)
	cmd := &cobra.Command{
		Use:          "client",
		Short:        "serve as a remote compute unit",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, logger, err := cli.Setup(cmd, v)
			if err != nil {
				return err
			}
			if name == "" {
				name, _ = os.Hostname()
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, url, name, retry, logger)
		},
	}
	cli.BindFlags(cmd, v)
	f := cmd.Flags()
	f.StringVar(&url, "server", "ws://localhost:8080/ws", "server websocket url, or tcp://host:port")
	f.StringVar(&name, "name", "", "unit name (default: hostname)")
	f.DurationVar(&retry, "retry", 2*time.Second, "delay before reconnecting (0 exits after one session)")
	return cmd
}

func run(ctx context.Context, url, name string, retry time.Duration, logger *logrus.Logger) error {
	for {
		err := serveOnce(ctx, url, name, logger)
		if ctx.Err() != nil {
			return nil
		}
		if retry == 0 {
			return err
		}
		logger.WithError(err).WithField("retry", retry).Warn("connection ended")
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(retry):
		}
	}
}

func serveOnce(ctx context.Context, addr, name string, logger *logrus.Logger) error {
	logger.WithField("server", addr).Info("connecting")
	conn, err := remote.Dial(ctx, addr)
	if err != nil {
		return err
	}

	// the server calls this renderer to compute orbits and render tiles
	logger.WithField("unit", name).Info("serving as compute unit")
	if err := remote.Serve(ctx, conn, render.NewUnit(name)); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

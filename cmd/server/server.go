// Command server coordinates a render over compute units that connect to it
// over websocket or tcp, plus optional in-process units, and saves the result.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/marben/irpc"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	mandel "github.com/marben/deepzoom"
	"github.com/marben/deepzoom/cpu"
	"github.com/marben/deepzoom/internal/cli"
	"github.com/marben/deepzoom/render"
	"github.com/marben/deepzoom/session"
)

// main is the entry point for the deep zoom server.
// Note: all pixels are evaluated by compute units; the server only computes
// reference orbits and distributes work.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

type options struct {
	port          int
	tcpPort       int
	location      string
	locations     string
	width, height int
	localUnits    int
	minUnits      int
	out           string
	previewWidth  int
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var o options
	cmd := &cobra.Command{
		Use:          "server",
		Short:        "coordinate a deep zoom render over remote compute units",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := cli.Setup(cmd, v)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, logger, o)
		},
	}
	cli.BindFlags(cmd, v)
	f := cmd.Flags()
	f.IntVar(&o.port, "port", 8080, "http port of the websocket endpoint")
	f.IntVar(&o.tcpPort, "tcp-port", 8081, "tcp port for compute units (0 disables)")
	f.StringVar(&o.location, "location", mandel.SeahorseValley.Name, "location name")
	f.StringVar(&o.locations, "locations", "", "yaml location file (default: built-in landmarks)")
	f.IntVar(&o.width, "width", 1920, "canvas width")
	f.IntVar(&o.height, "height", 1080, "canvas height")
	f.IntVar(&o.localUnits, "local-units", 0, "in-process compute units")
	f.IntVar(&o.minUnits, "min-units", 1, "compute units to wait for before rendering")
	f.StringVar(&o.out, "out", "mandel.png", "output png")
	f.IntVar(&o.previewWidth, "preview-width", 0, "scale the png to this width (0 keeps the canvas size)")
	return cmd
}

func run(ctx context.Context, cfg session.Config, logger *logrus.Logger, o options) error {
	loc, err := cli.ResolveLocation(o.location, o.locations)
	if err != nil {
		return err
	}
	v, err := loc.Viewport(o.width, o.height)
	if err != nil {
		return err
	}

	c := cpu.NewCoordinator(mandel.KindPerturbation)
	for i := range o.localUnits {
		name := fmt.Sprintf("local-%d", i)
		if err := c.AddUnit(ctx, name, render.NewUnit(name)); err != nil {
			return fmt.Errorf("local unit: %w", err)
		}
	}

	// irpc server with onConnect hook to plug units into rendering
	irpcServer := unitServer(ctx, c, logger)
	defer irpcServer.Close()

	websocketListener, httpServer := webServer(ctx, o.port, logger)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("http server")
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	// irpcServer can serve multiple listeners. In this case both websocket and tcp
	go serveUnits(ctx, irpcServer, websocketListener, logger)
	if o.tcpPort != 0 {
		tcpListener, err := net.Listen("tcp", fmt.Sprintf(":%d", o.tcpPort))
		if err != nil {
			return fmt.Errorf("net.Listen: %w", err)
		}
		go serveUnits(ctx, irpcServer, tcpListener, logger)
	}
	logger.WithFields(logrus.Fields{"ws_port": o.port, "tcp_port": o.tcpPort}).Info("waiting for compute units")

	if err := waitForUnits(ctx, c, o.minUnits, logger); err != nil {
		return err
	}

	s := session.New(cfg, session.CPU(c), cli.ProgressLogger(logger))
	if _, err := s.Start(ctx, v, o.width, o.height); err != nil {
		return fmt.Errorf("start render: %w", err)
	}
	d, err := s.Wait()
	if err != nil {
		return fmt.Errorf("render %q: %w", loc.Name, err)
	}
	if err := cli.SavePreview(d, o.out, o.previewWidth); err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"file":     o.out,
		"glitched": d.Glitched(),
		"failed":   len(d.Failed()),
	}).Info("fully rendered image saved")

	logger.Info("server waiting for shutdown")
	<-ctx.Done()
	return nil
}

// unitServer plugs every accepted connection in as a compute unit and
// removes it when the connection ends.
func unitServer(ctx context.Context, c *cpu.Coordinator, logger *logrus.Logger) *irpc.Server {
	var n atomic.Int64
	return irpc.NewServer(irpc.WithOnConnect(func(ep *irpc.Endpoint) {
		go func() {
			name := fmt.Sprintf("remote-%d", n.Add(1)-1)
			entry := logger.WithFields(logrus.Fields{"unit": name, "remote": ep.RemoteAddr()})

			// Each unit provides mandel.Renderer over its connection.
			client, err := mandel.NewRendererIrpcClient(ep)
			if err != nil {
				entry.WithError(err).Warn("new renderer client")
				ep.Close()
				return
			}
			if err := c.AddUnit(ctx, name, client); err != nil {
				entry.WithError(err).Warn("unit rejected")
				ep.Close()
				return
			}
			entry.WithField("units", c.Units()).Info("compute unit connected")

			<-ep.Context().Done()
			c.RemoveUnit(name)
			entry.WithFields(logrus.Fields{
				"units": c.Units(),
				"cause": context.Cause(ep.Context()),
			}).Info("compute unit disconnected")
		}()
	}))
}

func serveUnits(ctx context.Context, s *irpc.Server, l net.Listener, logger *logrus.Logger) {
	if err := s.Serve(l); err != nil && !errors.Is(err, irpc.ErrServerClosed) && ctx.Err() == nil {
		logger.WithError(err).WithField("listener", l.Addr()).Error("serve compute units")
	}
}

func waitForUnits(ctx context.Context, c *cpu.Coordinator, n int, logger *logrus.Logger) error {
	t := time.NewTicker(500 * time.Millisecond)
	defer t.Stop()
	for c.Units() < n {
		logger.WithFields(logrus.Fields{"units": c.Units(), "want": n}).Debug("waiting for compute units")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return nil
}

// Package remote carries compute units over websocket connections. Each
// connection is an irpc endpoint: the unit process serves mandel.Renderer
// on it with Serve and the coordinator drives it through
// mandel.RendererIrpcClient.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/coder/websocket"
	"github.com/marben/irpc"

	mandel "github.com/marben/deepzoom"
	"github.com/marben/deepzoom/internal/logging"
)

// ReadLimit bounds a single websocket message; a full orbit at the
// iteration cap exceeds the websocket default by far.
const ReadLimit = 1 << 30

var ErrServerClosed = errors.New("remote: server closed the connection")

// NetConn adapts an accepted or dialed websocket to the net.Conn an irpc
// endpoint runs on. The connection lives until it is closed; it is not tied
// to the context of any request carried over it.
func NetConn(c *websocket.Conn) net.Conn {
	c.SetReadLimit(ReadLimit)
	return websocket.NetConn(context.Background(), c, websocket.MessageBinary)
}

// Dial connects to a coordinator: a tcp://host:port address dials plain
// TCP, anything else is a websocket url. ctx bounds the handshake only.
func Dial(ctx context.Context, addr string) (net.Conn, error) {
	if hostport, ok := strings.CutPrefix(addr, "tcp://"); ok {
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", hostport)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", addr, err)
		}
		return conn, nil
	}
	c, _, err := websocket.Dial(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return NetConn(c), nil
}

// Serve answers coordinator calls on conn with r until ctx ends, which
// returns nil, or the connection ends. A coordinator hanging up returns
// ErrServerClosed.
func Serve(ctx context.Context, conn net.Conn, r mandel.Renderer) error {
	ep := irpc.NewEndpoint(conn, irpc.WithEndpointServices(mandel.NewRendererIrpcService(r)))
	logging.Logger().Debug("serving renderer", "remote", conn.RemoteAddr())

	select {
	case <-ctx.Done():
		ep.Close()
		return nil
	case <-ep.Context().Done():
	}
	err := context.Cause(ep.Context())
	if errors.Is(err, irpc.ErrEndpointClosedByCounterpart) {
		return ErrServerClosed
	}
	return err
}

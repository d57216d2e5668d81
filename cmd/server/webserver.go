package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/marben/deepzoom/remote"
)

// webServer serves the websocket endpoint compute units dial into and
// returns net.Listener accepting those websocket connections.
func webServer(ctx context.Context, port int, logger *logrus.Logger) (*WebsocketListener, *http.Server) {
	l := newWSListener(ctx, fmt.Sprintf(":%d/ws", port))
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", websocketHandler(l, logger))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return l, srv
}

// websocketHandler handles the http ws endpoint
// if websocket is succesfully initialized it is passed to WebsocketListener so it can be accepted
func websocketHandler(l *WebsocketListener, logger *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			logger.WithError(err).WithField("remote", r.RemoteAddr).Warn("websocket accept")
			return
		}

		select {
		case l.ch <- c:
		case <-l.ctx.Done():
			c.Close(websocket.StatusGoingAway, "server shutting down")
		}
	}
}

// WebsocketListener implements net.Listener
// it queues accepted websocket connections until the irpc server picks them up
type WebsocketListener struct {
	ch     chan *websocket.Conn
	ctx    context.Context
	cancel context.CancelFunc
	addr   wsAddr
}

func newWSListener(ctx context.Context, addr string) *WebsocketListener {
	ctx, cancel := context.WithCancel(ctx)
	return &WebsocketListener{
		ch:     make(chan *websocket.Conn),
		ctx:    ctx,
		cancel: cancel,
		addr:   wsAddr{addr: addr},
	}
}

// Accept wraps the next websocket in a net.Conn. The conn outlives every
// request made over it; only closing it or the listener ends it.
func (l *WebsocketListener) Accept() (net.Conn, error) {
	select {
	case c := <-l.ch:
		return remote.NetConn(c), nil
	case <-l.ctx.Done():
		return nil, net.ErrClosed
	}
}

func (l *WebsocketListener) Addr() net.Addr {
	return l.addr
}

func (l *WebsocketListener) Close() error {
	l.cancel()
	return nil
}

// wsAddr implements net.Addr
type wsAddr struct {
	addr string
}

func (a wsAddr) Network() string {
	return "ws"
}

func (a wsAddr) String() string {
	return a.addr
}

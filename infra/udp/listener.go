package udp

import (
	"errors"
	"net"

	"go.uber.org/zap"

	"github.com/PeymanShobeiri/Distributed-System-Design/api/wire"
)

// Handler processes one decoded inter-node request and returns the
// result string to send back. The market node implements this.
type Handler interface {
	HandleRequest(req wire.Request) string
}

// Listener is one node's inter-node endpoint: a single loop reading
// datagrams and dispatching synchronously into the node's entry
// points. Serialization happens at the node lock, not here.
type Listener struct {
	conn    *net.UDPConn
	handler Handler
	log     *zap.Logger
}

// Listen binds the node's UDP endpoint.
func Listen(addr string, handler Handler, log *zap.Logger) (*Listener, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, err
	}
	return &Listener{conn: conn, handler: handler, log: log}, nil
}

// Addr returns the bound address, useful when the port was 0.
func (l *Listener) Addr() string {
	return l.conn.LocalAddr().String()
}

// Serve runs the receive loop until the listener is closed.
func (l *Listener) Serve() {
	buf := make([]byte, maxDatagram)
	for {
		n, raddr, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			l.log.Warn("listener read failed", zap.Error(err))
			continue
		}

		req, err := wire.Decode(buf[:n])
		var result string
		if err != nil {
			result = "Failed: " + err.Error()
		} else {
			result = l.handler.HandleRequest(req)
		}

		if _, err := l.conn.WriteToUDP([]byte(result), raddr); err != nil {
			l.log.Warn("listener reply failed", zap.Error(err))
		}
	}
}

// Close stops the listener; Serve returns after the current dispatch.
func (l *Listener) Close() error {
	return l.conn.Close()
}

// Package udp is the point-to-point inter-node channel: one datagram
// request, one datagram reply, bounded by a read deadline. The channel
// is deliberately unreliable; a missed reply is a failure result for
// the caller, never a retry.
package udp

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/PeymanShobeiri/Distributed-System-Design/api/wire"
	"github.com/PeymanShobeiri/Distributed-System-Design/domain/market"
)

// maxDatagram bounds request and reply sizes. Availability aggregates
// are the largest payloads and stay well under this.
const maxDatagram = 64 * 1024

// Channel exchanges wire requests with peer nodes by partition key.
type Channel struct {
	peers   map[string]string
	timeout time.Duration
}

// NewChannel creates a channel over a partition → address book.
func NewChannel(peers map[string]string, timeout time.Duration) *Channel {
	return &Channel{peers: peers, timeout: timeout}
}

// Exchange sends one request to the owning partition's listener and
// blocks for the reply or the deadline, whichever comes first.
func (c *Channel) Exchange(partition string, req wire.Request) (string, error) {
	addr, ok := c.peers[partition]
	if !ok {
		return "", fmt.Errorf("no address for partition %s", partition)
	}

	conn, err := net.Dial("udp", addr)
	if err != nil {
		return "", fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return "", err
	}
	if _, err := conn.Write(req.Encode()); err != nil {
		return "", fmt.Errorf("send to %s: %w", addr, err)
	}

	buf := make([]byte, maxDatagram)
	n, err := conn.Read(buf)
	if err != nil {
		var nerr net.Error
		if errors.As(err, &nerr) && nerr.Timeout() {
			return "", fmt.Errorf("%w: partition %s after %s", market.ErrRemoteTimeout, partition, c.timeout)
		}
		return "", fmt.Errorf("receive from %s: %w", addr, err)
	}
	return string(buf[:n]), nil
}

package service

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PeymanShobeiri/Distributed-System-Design/api/wire"
	"github.com/PeymanShobeiri/Distributed-System-Design/audit"
	"github.com/PeymanShobeiri/Distributed-System-Design/domain/market"
)

// memChannel wires test nodes together in-process: a request to a
// partition is dispatched into that node exactly as the UDP listener
// would do.
type memChannel struct {
	nodes map[string]*Node
}

func (c *memChannel) Exchange(partition string, req wire.Request) (string, error) {
	n, ok := c.nodes[partition]
	if !ok {
		return "", fmt.Errorf("%w: no node for partition %s", market.ErrRemoteTimeout, partition)
	}
	return n.HandleRequest(req), nil
}

func newCluster(t *testing.T, recs map[string]audit.Recorder) map[string]*Node {
	t.Helper()
	ch := &memChannel{nodes: make(map[string]*Node)}
	for _, p := range market.Partitions() {
		var rec audit.Recorder
		if recs != nil {
			rec = recs[p]
		}
		n, err := NewNode(p, ch, rec)
		require.NoError(t, err)
		ch.nodes[p] = n
	}
	return ch.nodes
}

// captureAudit collects audit lines for assertions.
type captureAudit struct {
	mu    sync.Mutex
	lines []string
}

func (c *captureAudit) Record(actor, op, params, result string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, op+" | "+params+" | "+result)
}

func (c *captureAudit) contains(substr string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range c.lines {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

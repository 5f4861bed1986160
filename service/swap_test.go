package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PeymanShobeiri/Distributed-System-Design/api/wire"
	"github.com/PeymanShobeiri/Distributed-System-Design/audit"
	"github.com/PeymanShobeiri/Distributed-System-Design/domain/market"
)

func TestSwapNotOwned(t *testing.T) {
	nodes := newCluster(t, nil)
	nyk := nodes[market.PartitionNewYork]

	res := nyk.SwapShare("NYKB01", "NYKM010124", "Equity", "NYKM020124", "Bonus")
	assert.False(t, wire.Succeeded(res))
	assert.Contains(t, res, "does not own")
}

// Held units of the old share move wholesale into the new one, and
// capacity accounting on both shares reflects the move.
func TestSwapLocalSuccess(t *testing.T) {
	nodes := newCluster(t, nil)
	nyk := nodes[market.PartitionNewYork]

	require.True(t, wire.Succeeded(nyk.AddShare("NYKM010124", "Equity", 5)))
	require.True(t, wire.Succeeded(nyk.AddShare("NYKM080124", "Bonus", 3)))
	require.True(t, wire.Succeeded(nyk.PurchaseShare("NYKB01", "NYKM010124", "Equity", 2)))

	res := nyk.SwapShare("NYKB01", "NYKM010124", "Equity", "NYKM080124", "Bonus")
	require.True(t, wire.Succeeded(res), res)
	assert.Contains(t, res, "swapped")

	assert.Zero(t, nyk.ledger.Units("NYKB01", "NYKM010124", market.Equity))
	assert.Equal(t, 2, nyk.ledger.Units("NYKB01", "NYKM080124", market.Bonus))

	oldShare, _ := nyk.registry.Get(market.Equity, "NYKM010124")
	newShare, _ := nyk.registry.Get(market.Bonus, "NYKM080124")
	assert.Equal(t, 0, oldShare.Used())
	assert.Equal(t, 5, oldShare.Remaining())
	assert.Equal(t, 2, newShare.Used())
	assert.Equal(t, 1, newShare.Remaining())
}

func TestSwapAcrossPartitions(t *testing.T) {
	nodes := newCluster(t, nil)
	nyk := nodes[market.PartitionNewYork]
	lon := nodes[market.PartitionLondon]
	tok := nodes[market.PartitionTokyo]

	require.True(t, wire.Succeeded(lon.AddShare("LONM010124", "Equity", 5)))
	require.True(t, wire.Succeeded(tok.AddShare("TOKM080224", "Bonus", 5)))
	require.True(t, wire.Succeeded(nyk.PurchaseShare("NYKB01", "LONM010124", "Equity", 2)))

	res := nyk.SwapShare("NYKB01", "LONM010124", "Equity", "TOKM080224", "Bonus")
	require.True(t, wire.Succeeded(res), res)

	lonShare, _ := lon.registry.Get(market.Equity, "LONM010124")
	tokShare, _ := tok.registry.Get(market.Bonus, "TOKM080224")
	assert.Zero(t, lonShare.Used())
	assert.Equal(t, 2, tokShare.HolderUnits("NYKB01"))
	assert.Zero(t, nyk.ledger.Units("NYKB01", "LONM010124", market.Equity))
	assert.Equal(t, 2, nyk.ledger.Units("NYKB01", "TOKM080224", market.Bonus))
}

func TestSwapAbortsWhenPurchaseFails(t *testing.T) {
	nodes := newCluster(t, nil)
	nyk := nodes[market.PartitionNewYork]

	require.True(t, wire.Succeeded(nyk.AddShare("NYKM010124", "Equity", 5)))
	require.True(t, wire.Succeeded(nyk.AddShare("NYKM080124", "Bonus", 1)))
	require.True(t, wire.Succeeded(nyk.PurchaseShare("NYKB01", "NYKM010124", "Equity", 2)))
	// Another buyer fills the target share completely.
	require.True(t, wire.Succeeded(nyk.PurchaseShare("NYKB02", "NYKM080124", "Bonus", 1)))

	res := nyk.SwapShare("NYKB01", "NYKM010124", "Equity", "NYKM080124", "Bonus")
	assert.False(t, wire.Succeeded(res))
	assert.Contains(t, res, "cannot purchase new share")

	// Nothing moved.
	assert.Equal(t, 2, nyk.ledger.Units("NYKB01", "NYKM010124", market.Equity))
	assert.Zero(t, nyk.ledger.Units("NYKB01", "NYKM080124", market.Bonus))
	oldShare, _ := nyk.registry.Get(market.Equity, "NYKM010124")
	assert.Equal(t, 2, oldShare.Used())
}

// The sell leg fails because the owning partition's admin removed the
// old share after it was bought; the stale home-ledger entry is the
// tolerated inconsistency window. The new-share purchase is rolled
// back.
func TestSwapRollsBackOnSellFailure(t *testing.T) {
	nodes := newCluster(t, nil)
	nyk := nodes[market.PartitionNewYork]
	lon := nodes[market.PartitionLondon]
	tok := nodes[market.PartitionTokyo]

	require.True(t, wire.Succeeded(lon.AddShare("LONM010124", "Equity", 5)))
	require.True(t, wire.Succeeded(tok.AddShare("TOKM080224", "Bonus", 5)))
	require.True(t, wire.Succeeded(nyk.PurchaseShare("NYKB01", "LONM010124", "Equity", 2)))

	// Admin removal on the owning node purges its ledger; the home
	// node's double-booked entries survive.
	require.True(t, wire.Succeeded(lon.RemoveShare("LONM010124", "Equity")))
	require.Equal(t, 2, nyk.ledger.Units("NYKB01", "LONM010124", market.Equity))

	res := nyk.SwapShare("NYKB01", "LONM010124", "Equity", "TOKM080224", "Bonus")
	assert.False(t, wire.Succeeded(res))
	assert.Contains(t, res, "Rolling back")

	// Compensation removed the new share everywhere.
	tokShare, _ := tok.registry.Get(market.Bonus, "TOKM080224")
	assert.Zero(t, tokShare.Used())
	assert.Zero(t, nyk.ledger.Units("NYKB01", "TOKM080224", market.Bonus))
	// The stale old-share entry remains; it is reconciled by later
	// sells or admin action, not by the swap.
	assert.Equal(t, 2, nyk.ledger.Units("NYKB01", "LONM010124", market.Equity))
}

// sabotageChannel lets the purchase leg through and kills sell
// messages for one share id, so the compensating sell-back fails too.
type sabotageChannel struct {
	inner       Channel
	failShareID string
}

func (c *sabotageChannel) Exchange(partition string, req wire.Request) (string, error) {
	if req.Op == wire.OpSell && strings.HasPrefix(req.Payload, c.failShareID) {
		return "", market.ErrRemoteTimeout
	}
	return c.inner.Exchange(partition, req)
}

func TestSwapCompensationFailureIsLoggedNotRetried(t *testing.T) {
	recs := map[string]audit.Recorder{}
	capture := &captureAudit{}
	recs[market.PartitionNewYork] = capture

	ch := &memChannel{nodes: make(map[string]*Node)}
	sab := &sabotageChannel{inner: ch, failShareID: "TOKM080224"}
	for _, p := range market.Partitions() {
		var (
			n   *Node
			err error
		)
		if p == market.PartitionNewYork {
			n, err = NewNode(p, sab, capture)
		} else {
			n, err = NewNode(p, ch, nil)
		}
		require.NoError(t, err)
		ch.nodes[p] = n
	}
	nyk := ch.nodes[market.PartitionNewYork]
	lon := ch.nodes[market.PartitionLondon]
	tok := ch.nodes[market.PartitionTokyo]

	require.True(t, wire.Succeeded(lon.AddShare("LONM010124", "Equity", 5)))
	require.True(t, wire.Succeeded(tok.AddShare("TOKM080224", "Bonus", 5)))
	require.True(t, wire.Succeeded(nyk.PurchaseShare("NYKB01", "LONM010124", "Equity", 2)))
	require.True(t, wire.Succeeded(lon.RemoveShare("LONM010124", "Equity")))

	res := nyk.SwapShare("NYKB01", "LONM010124", "Equity", "TOKM080224", "Bonus")

	// The caller still sees a plain swap failure.
	assert.False(t, wire.Succeeded(res))
	assert.Contains(t, res, "could not sell old share")

	// The stuck allocation on the owning node is real and surfaced
	// only through the audit trail.
	tokShare, _ := tok.registry.Get(market.Bonus, "TOKM080224")
	assert.Equal(t, 2, tokShare.HolderUnits("NYKB01"))
	assert.True(t, capture.contains("swap compensation failed"),
		"compensation failure must be audited: %v", capture.lines)
	assert.True(t, capture.contains("final state RolledBack"))
}

// Package service hosts the market node: the single write entry point
// into one partition's registry and ledger, the request router that
// decides local versus remote handling, and the swap coordinator.
//
// Every externally triggered operation, whether it arrives through a
// local entry point or the inter-node listener, holds the node's one
// mutex for its full duration. All mutations on a node are strictly
// serialized; a cross-partition operation keeps the caller's lock
// across the whole remote round trip. Two nodes calling each other at
// the same time can therefore block until the reply timeout fires.
// That risk is accepted, not solved.
package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/PeymanShobeiri/Distributed-System-Design/api/wire"
	"github.com/PeymanShobeiri/Distributed-System-Design/audit"
	"github.com/PeymanShobeiri/Distributed-System-Design/domain/market"
)

// Channel is the point-to-point inter-node exchange: send one request
// to the partition that owns the subject and block for its reply,
// bounded by the channel's timeout. No retries at any layer.
type Channel interface {
	Exchange(partition string, req wire.Request) (string, error)
}

// Node owns one partition. All state behind mu.
type Node struct {
	mu sync.Mutex

	partition string
	name      string
	registry  *market.Registry
	ledger    *market.Ledger
	channel   Channel
	audit     audit.Recorder
}

// NewNode creates a node for a partition key. An unknown key is a
// configuration error and fatal at startup; everything after this
// point is reported as a failure result instead.
func NewNode(partition string, channel Channel, rec audit.Recorder) (*Node, error) {
	name, ok := market.PartitionName(partition)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a market partition", market.ErrUnknownPartition, partition)
	}
	if rec == nil {
		rec = audit.Discard{}
	}
	return &Node{
		partition: partition,
		name:      name,
		registry:  market.NewRegistry(partition),
		ledger:    market.NewLedger(),
		channel:   channel,
		audit:     rec,
	}, nil
}

// Partition returns the node's partition key.
func (n *Node) Partition() string {
	return n.partition
}

// Name returns the node's market name.
func (n *Node) Name() string {
	return n.name
}

//
// ------------------------------------------------
// Admin entry points
// ------------------------------------------------
//

// AddShare registers a new share on this partition.
func (n *Node) AddShare(shareID, category string, capacity int) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	result := n.addLocked(shareID, category, capacity)
	n.audit.Record("Admin", "addShare",
		fmt.Sprintf("shareID=%s, shareType=%s, capacity=%d", shareID, category, capacity), result)
	return result
}

func (n *Node) addLocked(shareID, category string, capacity int) string {
	cat, err := market.ParseCategory(category)
	if err != nil {
		return failf("invalid share type %q", category)
	}
	if capacity < 0 {
		return failf("capacity must not be negative")
	}
	switch err := n.registry.Add(cat, shareID, capacity); {
	case err == nil:
		return fmt.Sprintf("Success: share %s added with capacity=%d", shareID, capacity)
	case isErr(err, market.ErrCrossPartition):
		return failf("cannot add share %s owned by another partition", shareID)
	case isErr(err, market.ErrDuplicateShare):
		return failf("share %s already exists for shareType of %s", shareID, category)
	default:
		return failf("%v", err)
	}
}

// RemoveShare deletes a share from this partition and purges it from
// every holder's ledger entry. Admin removal overrides holdings.
func (n *Node) RemoveShare(shareID, category string) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	result := n.removeLocked(shareID, category)
	n.audit.Record("Admin", "removeShare",
		fmt.Sprintf("shareID=%s, shareType=%s", shareID, category), result)
	return result
}

func (n *Node) removeLocked(shareID, category string) string {
	cat, err := market.ParseCategory(category)
	if err != nil {
		return failf("invalid share type %q", category)
	}
	switch err := n.registry.Remove(cat, shareID); {
	case err == nil:
		n.ledger.Purge(cat, shareID)
		return fmt.Sprintf("Success: share %s removed from %s", shareID, n.name)
	case isErr(err, market.ErrCrossPartition):
		return failf("cannot remove share %s owned by another partition", shareID)
	case isErr(err, market.ErrShareNotFound):
		return failf("share %s does not exist on %s", shareID, n.name)
	default:
		return failf("%v", err)
	}
}

//
// ------------------------------------------------
// Buyer entry points
// ------------------------------------------------
//

// PurchaseShare buys count units of a share for an account, routed to
// the owning partition.
func (n *Node) PurchaseShare(accountID, shareID, category string, count int) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	result := n.purchaseLocked(accountID, shareID, category, count)
	n.audit.Record(accountID, "purchaseShare",
		fmt.Sprintf("shareID=%s, shareType=%s, shareCount=%d", shareID, category, count), result)
	return result
}

// SellShare releases up to count units of a share, routed to the
// owning partition.
func (n *Node) SellShare(accountID, shareID string, count int) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	result := n.sellLocked(accountID, shareID, count)
	n.audit.Record(accountID, "sellShare",
		fmt.Sprintf("shareID=%s, shareCount=%d", shareID, count), result)
	return result
}

// ListShareAvailability aggregates availability of one category across
// every partition. Unreachable partitions contribute nothing.
func (n *Node) ListShareAvailability(category string) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	result := n.listLocked(category)
	n.audit.Record("Admin", "listShareAvailability",
		fmt.Sprintf("shareType=%s", category), result)
	return result
}

// SwapShare atomically exchanges held units of one share for another,
// compensating on partial failure.
func (n *Node) SwapShare(accountID, oldShareID, oldCategory, newShareID, newCategory string) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	result := n.swapLocked(accountID, oldShareID, oldCategory, newShareID, newCategory)
	n.audit.Record(accountID, "swapShare",
		fmt.Sprintf("oldShareID=%s, oldShareType=%s, newShareID=%s, newShareType=%s",
			oldShareID, oldCategory, newShareID, newCategory), result)
	return result
}

// ListShares reports the account's holdings recorded on this node.
// Dual bookkeeping keeps this query node-local: cross-partition
// purchases are booked here as well as on the owning node.
func (n *Node) ListShares(accountID string) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	result := n.listSharesLocked(accountID)
	n.audit.Record(accountID, "getShares", "", result)
	return result
}

func (n *Node) listSharesLocked(accountID string) string {
	holdings := n.ledger.HoldingsOf(accountID)
	if holdings == nil {
		return fmt.Sprintf("Success: no shares found for buyer %s", accountID)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Success: shares for %s:\n", accountID)
	for _, c := range market.Categories() {
		rows, ok := holdings[c]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "Type [%s]:\n", c)
		for _, h := range rows {
			fmt.Fprintf(&b, "\t%s\tcount: %d\n", h.ShareID, h.Units)
		}
	}
	return b.String()
}

//
// ------------------------------------------------
// Inter-node listener dispatch
// ------------------------------------------------
//

// HandleRequest serves one inter-node request exactly as a local call.
// The listener dispatches here synchronously; the entry points below
// take the node lock themselves.
func (n *Node) HandleRequest(req wire.Request) string {
	switch req.Op {
	case wire.OpPurchase:
		shareID, count, err := wire.ParseSharePayload(req.Payload)
		if err != nil {
			return failf("%v", err)
		}
		return n.PurchaseShare(req.AccountID, shareID, req.Category, count)
	case wire.OpSell:
		shareID, count, err := wire.ParseSharePayload(req.Payload)
		if err != nil {
			return failf("%v", err)
		}
		return n.SellShare(req.AccountID, shareID, count)
	case wire.OpList:
		return n.LocalAvailability(req.Category)
	default:
		return failf("unknown operation %q", req.Op)
	}
}

// LocalAvailability renders this partition's availability snapshot
// only. Remote aggregators call this through the wire; no fan-out
// happens here.
func (n *Node) LocalAvailability(category string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	cat, err := market.ParseCategory(category)
	if err != nil {
		return failf("invalid share type %q", category)
	}
	return n.availabilityLocked(cat)
}

func failf(format string, args ...any) string {
	return "Failed: " + fmt.Sprintf(format, args...)
}

func isErr(err, target error) bool {
	return errors.Is(err, target)
}

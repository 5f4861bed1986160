package service

import (
	"fmt"
	"strings"

	"github.com/PeymanShobeiri/Distributed-System-Design/api/wire"
	"github.com/PeymanShobeiri/Distributed-System-Design/domain/market"
)

// Request routing. Each operation resolves the owning partition from
// the subject identifier; local subjects mutate this node's state
// directly, remote ones go over the channel and the reply is folded
// back into the local ledger by its Success/Failed tag alone.

func (n *Node) purchaseLocked(accountID, shareID, category string, count int) string {
	cat, err := market.ParseCategory(category)
	if err != nil {
		return failf("invalid share type %q", category)
	}
	if _, err := market.ParsePartition(accountID); err != nil {
		return failf("invalid buyer id %q", accountID)
	}
	if err := market.ValidateShareID(shareID); err != nil {
		return failf("%v", err)
	}
	if count <= 0 {
		return failf("share count must be positive")
	}
	owner, _ := market.ParsePartition(shareID)

	if owner != n.partition {
		return n.purchaseRemote(accountID, shareID, cat, owner, count)
	}

	// Local purchase.
	if err := market.CheckSameDay(n.ledger, accountID, cat, shareID); err != nil {
		return failf("%s already purchased this share type today.", accountID)
	}
	share, ok := n.registry.Get(cat, shareID)
	if !ok {
		return failf("share %s not found in %s", shareID, n.name)
	}
	remaining := share.Remaining()
	if remaining <= 0 {
		return failf("share %s is full in %s", shareID, n.name)
	}
	// Oversized requests fill whatever capacity remains, never more.
	real := min(count, remaining)
	switch err := share.AddHolder(accountID, real); {
	case err == nil:
	case isErr(err, market.ErrAlreadyHeld):
		return failf("%s already purchased %s.", accountID, shareID)
	default:
		return failf("share %s is full in %s", shareID, n.name)
	}
	for i := 0; i < real; i++ {
		n.ledger.Record(accountID, cat, shareID)
	}
	return fmt.Sprintf("Success: %s purchased %d of share %s", accountID, real, shareID)
}

// purchaseRemote runs the cross-partition rules against the home
// ledger first, then forwards to the owning node. On a Success reply
// the purchase is double-booked into the home ledger so holdings
// queries stay node-local.
func (n *Node) purchaseRemote(accountID, shareID string, cat market.Category, owner string, count int) string {
	if count > market.CrossPartitionMax {
		return failf("%s cannot buy more than %d shares from other partitions per week.",
			accountID, market.CrossPartitionMax)
	}
	if err := market.CheckCrossPartitionCap(n.ledger, accountID, shareID, count); err != nil {
		return failf("%s exceeded the limit for buying from other partitions.", accountID)
	}
	if err := market.CheckSameDay(n.ledger, accountID, cat, shareID); err != nil {
		return failf("%s already purchased this share type today.", accountID)
	}

	reply, err := n.exchange(owner, wire.Request{
		Op:        wire.OpPurchase,
		AccountID: accountID,
		Category:  string(cat),
		Payload:   wire.SharePayload(shareID, count),
	})
	if err != nil {
		return failf("no reply from partition %s: %v", owner, err)
	}
	if wire.Succeeded(reply) {
		for i := 0; i < count; i++ {
			n.ledger.Record(accountID, cat, shareID)
		}
	}
	return reply
}

func (n *Node) sellLocked(accountID, shareID string, count int) string {
	owner, err := market.ParsePartition(shareID)
	if err != nil {
		return failf("%v", err)
	}
	if count <= 0 {
		return failf("share count must be positive")
	}

	if owner != n.partition {
		reply, err := n.exchange(owner, wire.Request{
			Op:        wire.OpSell,
			AccountID: accountID,
			Category:  wire.None,
			Payload:   wire.SharePayload(shareID, count),
		})
		if err != nil {
			return failf("no reply from partition %s: %v", owner, err)
		}
		if wire.Succeeded(reply) {
			n.ledger.Release(accountID, shareID, count)
		}
		return reply
	}

	cat, ok := n.ledger.CategoryFor(accountID, shareID)
	if !ok {
		return failf("%s does not own %s", accountID, shareID)
	}
	removed := n.ledger.Release(accountID, shareID, count)
	if share, found := n.registry.Get(cat, shareID); found {
		share.RemoveHolder(accountID, removed)
	}
	return fmt.Sprintf("Success: %s sold %d of share %s", accountID, removed, shareID)
}

func (n *Node) listLocked(category string) string {
	cat, err := market.ParseCategory(category)
	if err != nil {
		return failf("invalid share type %q", category)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Success: share availability for %s:\n", cat)
	b.WriteString(n.availabilityLocked(cat))

	// Fan out to every other partition. A partition that does not
	// reply in time contributes nothing; the partial aggregate is
	// still returned as a whole.
	for _, p := range market.Partitions() {
		if p == n.partition {
			continue
		}
		reply, err := n.exchange(p, wire.Request{
			Op:        wire.OpList,
			AccountID: "Admin",
			Category:  string(cat),
			Payload:   wire.None,
		})
		if err != nil || strings.HasPrefix(reply, "Failed") {
			continue
		}
		b.WriteString(reply)
	}
	return b.String()
}

func (n *Node) availabilityLocked(cat market.Category) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s]:\n", n.name, cat)
	rows := n.registry.Availability(cat)
	if len(rows) == 0 {
		fmt.Fprintf(&b, "No shares of type %s\n", cat)
		return b.String()
	}
	for _, row := range rows {
		fmt.Fprintf(&b, "[ShareID=%s, Capacity=%d, Purchased=%d, Remaining=%d]\n",
			row.ShareID, row.Capacity, row.Used, row.Remaining)
	}
	return b.String()
}

func (n *Node) exchange(partition string, req wire.Request) (string, error) {
	if n.channel == nil {
		return "", fmt.Errorf("no channel to partition %s", partition)
	}
	return n.channel.Exchange(partition, req)
}

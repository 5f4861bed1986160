package service

import (
	"fmt"

	"github.com/PeymanShobeiri/Distributed-System-Design/api/wire"
	"github.com/PeymanShobeiri/Distributed-System-Design/domain/market"
)

// The swap is a two-leg saga, not a distributed transaction: buy the
// new share first, then sell the old one, and compensate the buy when
// the sell leg fails. Compensation is best-effort and never retried;
// when it fails too, the inconsistency is surfaced through the audit
// log while the caller still sees the swap as failed.

type swapState int

const (
	swapInit swapState = iota
	swapNewPurchased
	swapOldSold
	swapRolledBack
)

func (s swapState) String() string {
	switch s {
	case swapInit:
		return "Init"
	case swapNewPurchased:
		return "NewPurchased"
	case swapOldSold:
		return "OldSold"
	case swapRolledBack:
		return "RolledBack"
	default:
		return "Unknown"
	}
}

func (n *Node) swapLocked(accountID, oldShareID, oldCategory, newShareID, newCategory string) string {
	oldCat, err := market.ParseCategory(oldCategory)
	if err != nil {
		return failf("invalid share type %q", oldCategory)
	}
	if _, err := market.ParseCategory(newCategory); err != nil {
		return failf("invalid share type %q", newCategory)
	}

	state := swapInit
	defer func() {
		n.audit.Record(accountID, "swapSaga",
			fmt.Sprintf("oldShareID=%s, newShareID=%s", oldShareID, newShareID),
			fmt.Sprintf("final state %s", state))
	}()

	quantity := n.ledger.Units(accountID, oldShareID, oldCat)
	if quantity <= 0 {
		return failf("%v: %s does not own share %s", market.ErrNotOwned, accountID, oldShareID)
	}

	// Leg one: buy the new share for the full held quantity. The
	// router applies the complete rule set, local or remote. A
	// failure here is terminal with nothing mutated.
	purchaseResult := n.purchaseLocked(accountID, newShareID, newCategory, quantity)
	if !wire.Succeeded(purchaseResult) {
		return failf("%v: cannot purchase new share %s with quantity=%d. Reason: %s",
			market.ErrSwapAborted, newShareID, quantity, purchaseResult)
	}
	state = swapNewPurchased

	// Leg two: sell the old share.
	sellResult := n.sellLocked(accountID, oldShareID, quantity)
	if !wire.Succeeded(sellResult) {
		n.compensate(accountID, newShareID, newCategory, quantity)
		state = swapRolledBack
		return failf("could not sell old share %s. Rolling back new share. Reason: %s",
			oldShareID, sellResult)
	}
	state = swapOldSold

	return fmt.Sprintf("Success: %s swapped old share %s with new share %s for quantity=%d",
		accountID, oldShareID, newShareID, quantity)
}

// compensate sells back the just-purchased new share, wherever it
// lives. One attempt only; a compensation failure is recorded and
// swallowed, the swap result is already fixed as failed.
func (n *Node) compensate(accountID, newShareID, newCategory string, quantity int) {
	owner, err := market.ParsePartition(newShareID)
	if err != nil {
		n.recordCompensationFailure(accountID, newShareID, quantity, err.Error())
		return
	}

	if owner == n.partition {
		cat, _ := market.ParseCategory(newCategory)
		n.ledger.Release(accountID, newShareID, quantity)
		if share, ok := n.registry.Get(cat, newShareID); ok {
			share.RemoveHolder(accountID, quantity)
		}
		return
	}

	reply, err := n.exchange(owner, wire.Request{
		Op:        wire.OpSell,
		AccountID: accountID,
		Category:  wire.None,
		Payload:   wire.SharePayload(newShareID, quantity),
	})
	if err != nil {
		n.recordCompensationFailure(accountID, newShareID, quantity, err.Error())
		return
	}
	if !wire.Succeeded(reply) {
		n.recordCompensationFailure(accountID, newShareID, quantity, reply)
		return
	}
	n.ledger.Release(accountID, newShareID, quantity)
}

func (n *Node) recordCompensationFailure(accountID, newShareID string, quantity int, reason string) {
	n.audit.Record(accountID, "swapShare",
		fmt.Sprintf("newShareID=%s, quantity=%d", newShareID, quantity),
		fmt.Sprintf("Failed: %v: %s", market.ErrCompensationFailed, reason))
}

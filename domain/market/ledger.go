package market

import "sort"

// Ledger is one node's record of which account holds which share
// units: accountID → category → ordered multiset of shareIDs, one
// occurrence per held unit. Duplicates are expected; removal takes
// arbitrary but consistent occurrences.
//
// Cross-partition purchases are double-booked: the owning node and the
// buyer's home node each keep an entry, so holdings queries stay
// node-local at the cost of a short inconsistency window.
type Ledger struct {
	holdings map[string]map[Category][]string
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{holdings: make(map[string]map[Category][]string)}
}

// Record appends one held unit. Each call adds one occurrence.
func (l *Ledger) Record(accountID string, category Category, shareID string) {
	byCat, ok := l.holdings[accountID]
	if !ok {
		byCat = make(map[Category][]string)
		l.holdings[accountID] = byCat
	}
	byCat[category] = append(byCat[category], shareID)
}

// CategoryFor returns the category under which an account holds a
// share. A held id is expected under at most one category.
func (l *Ledger) CategoryFor(accountID, shareID string) (Category, bool) {
	byCat, ok := l.holdings[accountID]
	if !ok {
		return "", false
	}
	for _, c := range Categories() {
		for _, id := range byCat[c] {
			if id == shareID {
				return c, true
			}
		}
	}
	return "", false
}

// Units returns the number of occurrences of a share held by an
// account under a category.
func (l *Ledger) Units(accountID, shareID string, category Category) int {
	count := 0
	for _, id := range l.holdings[accountID][category] {
		if id == shareID {
			count++
		}
	}
	return count
}

// Release removes up to count occurrences of a share from an account,
// locating the category itself. Returns the number actually removed;
// zero when the account does not hold the share.
func (l *Ledger) Release(accountID, shareID string, count int) int {
	category, ok := l.CategoryFor(accountID, shareID)
	if !ok {
		return 0
	}
	held := l.holdings[accountID][category]
	kept := held[:0]
	removed := 0
	for _, id := range held {
		if id == shareID && removed < count {
			removed++
			continue
		}
		kept = append(kept, id)
	}
	l.holdings[accountID][category] = kept
	return removed
}

// Purge removes every occurrence of a share under a category from all
// accounts. Admin-removal cascade; no corresponding sell happens.
func (l *Ledger) Purge(category Category, shareID string) {
	for _, byCat := range l.holdings {
		held, ok := byCat[category]
		if !ok {
			continue
		}
		kept := held[:0]
		for _, id := range held {
			if id != shareID {
				kept = append(kept, id)
			}
		}
		byCat[category] = kept
	}
}

// Holding is one (shareID, units) pair of a holdings report.
type Holding struct {
	ShareID string
	Units   int
}

// HoldingsOf summarizes an account's holdings per category, ordered by
// share id. Empty map when the account holds nothing.
func (l *Ledger) HoldingsOf(accountID string) map[Category][]Holding {
	byCat, ok := l.holdings[accountID]
	if !ok {
		return nil
	}
	out := make(map[Category][]Holding)
	for _, c := range Categories() {
		if len(byCat[c]) == 0 {
			continue
		}
		counts := make(map[string]int)
		for _, id := range byCat[c] {
			counts[id]++
		}
		rows := make([]Holding, 0, len(counts))
		for id, n := range counts {
			rows = append(rows, Holding{ShareID: id, Units: n})
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].ShareID < rows[j].ShareID })
		out[c] = rows
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// EachHolding visits every (account, category, shareID) occurrence.
// Used by the rule engine to scan embedded dates.
func (l *Ledger) EachHolding(accountID string, fn func(category Category, shareID string)) {
	byCat, ok := l.holdings[accountID]
	if !ok {
		return
	}
	for _, c := range Categories() {
		for _, id := range byCat[c] {
			fn(c, id)
		}
	}
}

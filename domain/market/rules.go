package market

// Business rules are stateless predicates over a ledger snapshot and a
// purchase request, evaluated before any state is mutated. Both rules
// read the dates embedded in share identifiers, never the wall clock.

// CrossPartitionMax caps cross-partition purchasing: at most this many
// units in one request, and at most this many held units whose
// embedded date falls in the same week bucket.
const CrossPartitionMax = 3

// CheckSameDay rejects a purchase when the account already holds any
// share of the same category carrying the same embedded day.
func CheckSameDay(ledger *Ledger, accountID string, category Category, shareID string) error {
	target, err := ParseDate(shareID)
	if err != nil {
		return err
	}
	for _, held := range ledger.holdings[accountID][category] {
		d, err := ParseDate(held)
		if err != nil {
			continue
		}
		if d.SameDay(target) {
			return ErrAlreadyPurchasedToday
		}
	}
	return nil
}

// CheckCrossPartitionCap rejects a purchase whose target lives on
// another partition when the request is too large or the account has
// already accumulated enough holdings in the target's week bucket.
//
// The weekly count deliberately spans every held share whose date
// lands in the bucket, whichever path bought it; a locally bought
// share in the same week counts against the cap too.
func CheckCrossPartitionCap(ledger *Ledger, accountID, shareID string, count int) error {
	if count > CrossPartitionMax {
		return ErrCrossPartitionLimit
	}
	target, err := ParseDate(shareID)
	if err != nil {
		return err
	}
	inWeek := 0
	ledger.EachHolding(accountID, func(_ Category, held string) {
		d, err := ParseDate(held)
		if err != nil {
			return
		}
		if d.SameWeek(target) {
			inWeek++
		}
	})
	if inWeek >= CrossPartitionMax {
		return ErrCrossPartitionLimit
	}
	return nil
}

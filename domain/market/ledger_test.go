package market

import "testing"

func TestLedgerRecordAndUnits(t *testing.T) {
	l := NewLedger()
	l.Record("NYKB01", Equity, "NYKM010124")
	l.Record("NYKB01", Equity, "NYKM010124")
	l.Record("NYKB01", Equity, "NYKM020124")

	if got := l.Units("NYKB01", "NYKM010124", Equity); got != 2 {
		t.Errorf("units = %d, want 2", got)
	}
	if got := l.Units("NYKB01", "NYKM010124", Bonus); got != 0 {
		t.Errorf("units under other category = %d, want 0", got)
	}

	cat, ok := l.CategoryFor("NYKB01", "NYKM010124")
	if !ok || cat != Equity {
		t.Errorf("CategoryFor = %q, %v", cat, ok)
	}
	if _, ok := l.CategoryFor("NYKB01", "NYKM990124"); ok {
		t.Error("CategoryFor found a share never recorded")
	}
	if _, ok := l.CategoryFor("LONB01", "NYKM010124"); ok {
		t.Error("CategoryFor found a share for the wrong account")
	}
}

func TestLedgerRelease(t *testing.T) {
	l := NewLedger()
	for i := 0; i < 3; i++ {
		l.Record("NYKB01", Bonus, "NYKM010124")
	}

	if got := l.Release("NYKB01", "NYKM010124", 2); got != 2 {
		t.Errorf("released %d, want 2", got)
	}
	if got := l.Units("NYKB01", "NYKM010124", Bonus); got != 1 {
		t.Errorf("units after release = %d, want 1", got)
	}
	// Asking for more than held releases what is there.
	if got := l.Release("NYKB01", "NYKM010124", 10); got != 1 {
		t.Errorf("released %d, want 1", got)
	}
	if got := l.Release("NYKB01", "NYKM010124", 1); got != 0 {
		t.Errorf("released %d from empty holding, want 0", got)
	}
}

func TestLedgerPurge(t *testing.T) {
	l := NewLedger()
	l.Record("NYKB01", Equity, "NYKM010124")
	l.Record("NYKB01", Equity, "NYKM010124")
	l.Record("LONB07", Equity, "NYKM010124")
	l.Record("NYKB01", Equity, "NYKM020124")
	l.Record("NYKB01", Bonus, "NYKM010124")

	l.Purge(Equity, "NYKM010124")

	for _, acct := range []string{"NYKB01", "LONB07"} {
		if got := l.Units(acct, "NYKM010124", Equity); got != 0 {
			t.Errorf("%s still holds %d units after purge", acct, got)
		}
	}
	if got := l.Units("NYKB01", "NYKM020124", Equity); got != 1 {
		t.Errorf("unrelated holding removed by purge, units=%d", got)
	}
	if got := l.Units("NYKB01", "NYKM010124", Bonus); got != 1 {
		t.Errorf("other-category holding removed by purge, units=%d", got)
	}
}

func TestLedgerHoldingsOf(t *testing.T) {
	l := NewLedger()
	if got := l.HoldingsOf("NYKB01"); got != nil {
		t.Errorf("empty account holdings = %v, want nil", got)
	}

	l.Record("NYKB01", Equity, "NYKM020124")
	l.Record("NYKB01", Equity, "NYKM010124")
	l.Record("NYKB01", Equity, "NYKM010124")

	holdings := l.HoldingsOf("NYKB01")
	rows := holdings[Equity]
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0] != (Holding{"NYKM010124", 2}) || rows[1] != (Holding{"NYKM020124", 1}) {
		t.Errorf("rows = %v", rows)
	}
}

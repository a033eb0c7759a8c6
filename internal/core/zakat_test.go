package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestSummarizeCashOnly(t *testing.T) {
	p := DefaultPrices()
	a := Assets{Cash: d("100000")}

	s := Summarize(p, a, Deductions{}, nil)

	if !s.GrossAssets.Equal(d("100000")) {
		t.Fatalf("gross = %s, want 100000", s.GrossAssets)
	}
	// Silver nisab: 612.36 g * 48.50 = 29699.46, lower than the gold one.
	if !s.NisabSilver.Equal(d("29699.46")) {
		t.Fatalf("nisab silver = %s, want 29699.46", s.NisabSilver)
	}
	if !s.NisabGold.Equal(d("404595")) {
		t.Fatalf("nisab gold = %s, want 404595", s.NisabGold)
	}
	if !s.NisabThreshold.Equal(s.NisabSilver) {
		t.Fatalf("threshold = %s, want the silver nisab", s.NisabThreshold)
	}
	if !s.NisabMet {
		t.Fatal("nisab should be met")
	}
	if !s.ZakatDue.Equal(d("2500")) {
		t.Fatalf("due = %s, want 2500", s.ZakatDue)
	}
}

func TestSummarizeGoldPurity(t *testing.T) {
	p := Prices{Gold24PerGram: d("1000"), SilverPerGram: d("10")}
	a := Assets{Gold24g: d("1"), Gold21g: d("1"), Gold18g: d("1")}

	s := Summarize(p, a, Deductions{}, nil)

	// 1000 + 1000*21/24 + 1000*18/24 = 1000 + 875 + 750
	if !s.GrossAssets.Equal(d("2625")) {
		t.Fatalf("gross = %s, want 2625", s.GrossAssets)
	}
}

func TestSummarizeDeductionsFloorAtZero(t *testing.T) {
	p := DefaultPrices()
	a := Assets{Cash: d("1000")}
	ded := Deductions{ImmediateDebts: d("5000")}

	s := Summarize(p, a, ded, nil)

	if !s.NetWealth.IsZero() {
		t.Fatalf("net = %s, want 0", s.NetWealth)
	}
	if s.NisabMet {
		t.Fatal("nisab must not be met at zero net wealth")
	}
	if !s.ZakatDue.IsZero() {
		t.Fatalf("due = %s, want 0", s.ZakatDue)
	}
}

func TestSummarizeCustomAssets(t *testing.T) {
	p := DefaultPrices()
	custom := []CustomAsset{
		{ID: "c1", Label: "savings cert", Amount: d("40000")},
		{ID: "c2", Label: "loan to friend", Amount: d("10000")},
	}

	s := Summarize(p, Assets{}, Deductions{}, custom)

	if !s.GrossAssets.Equal(d("50000")) {
		t.Fatalf("gross = %s, want 50000", s.GrossAssets)
	}
}

func TestSummarizeBelowNisab(t *testing.T) {
	p := DefaultPrices()
	a := Assets{Cash: d("1000")}

	s := Summarize(p, a, Deductions{}, nil)

	if s.NisabMet {
		t.Fatal("1000 is below the silver nisab")
	}
	if !s.ZakatDue.IsZero() {
		t.Fatalf("due = %s, want 0", s.ZakatDue)
	}
}

func TestSummarizeTracker(t *testing.T) {
	due := d("2500")
	payments := []Payment{
		{ID: "p1", Amount: d("1000")},
		{ID: "p2", Amount: d("250")},
	}

	ts := SummarizeTracker(due, payments)

	if !ts.TotalPaid.Equal(d("1250")) {
		t.Fatalf("paid = %s, want 1250", ts.TotalPaid)
	}
	if !ts.Remaining.Equal(d("1250")) {
		t.Fatalf("remaining = %s, want 1250", ts.Remaining)
	}
	if !ts.Progress.Equal(d("50")) {
		t.Fatalf("progress = %s, want 50", ts.Progress)
	}
	if ts.Complete {
		t.Fatal("tracker should not be complete")
	}
}

func TestSummarizeTrackerOverpaid(t *testing.T) {
	ts := SummarizeTracker(d("100"), []Payment{{ID: "p1", Amount: d("150")}})

	if !ts.Remaining.IsZero() {
		t.Fatalf("remaining = %s, want 0", ts.Remaining)
	}
	if !ts.Progress.Equal(d("100")) {
		t.Fatalf("progress = %s, want capped 100", ts.Progress)
	}
	if !ts.Complete {
		t.Fatal("overpaid tracker is complete")
	}
}

func TestSummarizeTrackerZeroDue(t *testing.T) {
	ts := SummarizeTracker(decimal.Zero, []Payment{{ID: "p1", Amount: d("10")}})

	if !ts.Progress.IsZero() {
		t.Fatalf("progress = %s, want 0 when nothing is due", ts.Progress)
	}
	if ts.Complete {
		t.Fatal("nothing due means never complete")
	}
}

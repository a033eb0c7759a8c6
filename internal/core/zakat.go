// Package core holds the ledger domain types and the zakat arithmetic.
//
// All monetary values and metal weights are decimal.Decimal so that repeated
// weighted sums stay exact regardless of the currency scale in use.
package core

import "github.com/shopspring/decimal"

// Nisab thresholds in grams of pure metal.
const (
	NisabGoldGrams   = 87.48
	NisabSilverGrams = 612.36
)

// ZakatRate is the obligation rate applied to net wealth: 2.5%.
var ZakatRate = decimal.New(25, -3)

var (
	nisabGoldGrams   = decimal.NewFromFloat(NisabGoldGrams)
	nisabSilverGrams = decimal.NewFromFloat(NisabSilverGrams)

	// Karat purity factors relative to 24k.
	purity21 = decimal.NewFromInt(21).Div(decimal.NewFromInt(24))
	purity18 = decimal.NewFromInt(18).Div(decimal.NewFromInt(24))
)

// Summary is the derived view of a calculator state.
type Summary struct {
	GrossAssets     decimal.Decimal `json:"grossAssets"`
	TotalDeductions decimal.Decimal `json:"totalDeductions"`
	NetWealth       decimal.Decimal `json:"netWealth"`
	NisabGold       decimal.Decimal `json:"nisabGold"`
	NisabSilver     decimal.Decimal `json:"nisabSilver"`
	NisabThreshold  decimal.Decimal `json:"nisabThreshold"`
	NisabMet        bool            `json:"nisabMet"`
	ZakatDue        decimal.Decimal `json:"zakatDue"`
}

// TrackerSummary is the derived view of the payment tracker against a given
// obligation.
type TrackerSummary struct {
	TotalPaid decimal.Decimal `json:"totalPaid"`
	Remaining decimal.Decimal `json:"remaining"`
	Progress  decimal.Decimal `json:"progress"` // percent, capped at 100
	Complete  bool            `json:"complete"`
}

// Summarize computes gross assets, net wealth, the nisab thresholds and the
// resulting obligation for one calculator state.
//
// Gold below 24k is valued at the 24k price scaled by karat purity. The
// nisab threshold is the lower of the gold and silver thresholds, which is
// the stricter of the two standards.
func Summarize(p Prices, a Assets, d Deductions, custom []CustomAsset) Summary {
	gross := a.Gold24g.Mul(p.Gold24PerGram).
		Add(a.Gold21g.Mul(p.Gold24PerGram).Mul(purity21)).
		Add(a.Gold18g.Mul(p.Gold24PerGram).Mul(purity18)).
		Add(a.SilverG.Mul(p.SilverPerGram)).
		Add(a.Cash).
		Add(a.Inventory).
		Add(a.Receivables).
		Add(a.Investments).
		Add(a.OtherAssets)
	for _, c := range custom {
		gross = gross.Add(c.Amount)
	}

	deductions := d.ImmediateDebts.Add(d.OtherLiabilities)

	net := gross.Sub(deductions)
	if net.IsNegative() {
		net = decimal.Zero
	}

	nisabGold := nisabGoldGrams.Mul(p.Gold24PerGram)
	nisabSilver := nisabSilverGrams.Mul(p.SilverPerGram)
	threshold := nisabGold
	if nisabSilver.LessThan(threshold) {
		threshold = nisabSilver
	}

	s := Summary{
		GrossAssets:     gross,
		TotalDeductions: deductions,
		NetWealth:       net,
		NisabGold:       nisabGold,
		NisabSilver:     nisabSilver,
		NisabThreshold:  threshold,
		NisabMet:        net.GreaterThanOrEqual(threshold),
	}
	if s.NisabMet {
		s.ZakatDue = net.Mul(ZakatRate)
	} else {
		s.ZakatDue = decimal.Zero
	}
	return s
}

// SummarizeTracker totals the recorded payments against the given obligation.
// Remaining is floored at zero and progress is capped at 100 percent.
func SummarizeTracker(due decimal.Decimal, payments []Payment) TrackerSummary {
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}

	remaining := due.Sub(paid)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	progress := decimal.Zero
	if due.IsPositive() {
		progress = paid.Div(due).Mul(decimal.NewFromInt(100))
		if progress.GreaterThan(decimal.NewFromInt(100)) {
			progress = decimal.NewFromInt(100)
		}
	}

	return TrackerSummary{
		TotalPaid: paid,
		Remaining: remaining,
		Progress:  progress,
		Complete:  due.IsPositive() && paid.GreaterThanOrEqual(due),
	}
}

package ledger

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"zakat/internal/core"
)

// Result classifies an import attempt.
type Result int

const (
	// Applied: every field in the document was merged.
	Applied Result = iota
	// PartiallyApplied: the document was merged, but some fields were
	// skipped (wrong type or unknown name). Skipped lists them.
	PartiallyApplied
	// Rejected: nothing was applied; Reason explains why.
	Rejected
)

func (r Result) String() string {
	switch r {
	case Applied:
		return "applied"
	case PartiallyApplied:
		return "partially-applied"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("result(%d)", int(r))
	}
}

// Outcome is the structured result of ApplyJSON. It makes the lenient merge
// inspectable instead of silently swallowing mismatches.
type Outcome struct {
	Result  Result   `json:"result"`
	Skipped []string `json:"skipped,omitempty"`
	Reason  string   `json:"reason,omitempty"`
}

// ApplyJSON merges an incoming snapshot or export document into the ledger.
// It never panics and never throws away state it cannot improve on:
//
//   - a document that is not valid JSON, or whose schema version is missing
//     or different, is rejected with the state unchanged;
//   - absent top-level groups (calculator, tracker) are ignored silently;
//   - present groups are shallow-merged field by field, each scalar going
//     through a decimal decode: fields of the wrong type or with unknown
//     names are skipped and reported;
//   - customAssets and payments are atomic collections: they are replaced
//     wholesale when the incoming value is a decodable array, otherwise
//     left untouched and reported.
func (s *Store) ApplyJSON(data []byte) Outcome {
	var doc struct {
		Version    *int            `json:"version"`
		Calculator json.RawMessage `json:"calculator"`
		Tracker    json.RawMessage `json:"tracker"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return Outcome{Result: Rejected, Reason: "malformed document"}
	}
	if doc.Version == nil {
		return Outcome{Result: Rejected, Reason: "missing schema version"}
	}
	if *doc.Version != core.SchemaVersion {
		return Outcome{
			Result: Rejected,
			Reason: fmt.Sprintf("schema version %d, expected %d", *doc.Version, core.SchemaVersion),
		}
	}

	var skipped []string
	s.mu.Lock()
	skipped = append(skipped, s.applyCalculator(doc.Calculator)...)
	skipped = append(skipped, s.applyTracker(doc.Tracker)...)
	s.mu.Unlock()
	s.changed()

	if len(skipped) > 0 {
		return Outcome{Result: PartiallyApplied, Skipped: skipped}
	}
	return Outcome{Result: Applied}
}

func (s *Store) applyCalculator(raw json.RawMessage) []string {
	if absent(raw) {
		return nil
	}
	var group struct {
		Prices       json.RawMessage `json:"prices"`
		Assets       json.RawMessage `json:"assets"`
		Deductions   json.RawMessage `json:"deductions"`
		CustomAssets json.RawMessage `json:"customAssets"`
	}
	if err := json.Unmarshal(raw, &group); err != nil {
		return []string{"calculator"}
	}

	var skipped []string
	skipped = append(skipped, mergeScalars("calculator.prices", group.Prices, map[string]*decimal.Decimal{
		"gold24PerGram": &s.calc.Prices.Gold24PerGram,
		"silverPerGram": &s.calc.Prices.SilverPerGram,
	})...)
	skipped = append(skipped, mergeScalars("calculator.assets", group.Assets, map[string]*decimal.Decimal{
		"gold24g":     &s.calc.Assets.Gold24g,
		"gold21g":     &s.calc.Assets.Gold21g,
		"gold18g":     &s.calc.Assets.Gold18g,
		"silverG":     &s.calc.Assets.SilverG,
		"cash":        &s.calc.Assets.Cash,
		"inventory":   &s.calc.Assets.Inventory,
		"receivables": &s.calc.Assets.Receivables,
		"investments": &s.calc.Assets.Investments,
		"otherAssets": &s.calc.Assets.OtherAssets,
	})...)
	skipped = append(skipped, mergeScalars("calculator.deductions", group.Deductions, map[string]*decimal.Decimal{
		"immediateDebts":   &s.calc.Deductions.ImmediateDebts,
		"otherLiabilities": &s.calc.Deductions.OtherLiabilities,
	})...)

	if !absent(group.CustomAssets) {
		var assets []core.CustomAsset
		if err := json.Unmarshal(group.CustomAssets, &assets); err != nil || assets == nil {
			skipped = append(skipped, "calculator.customAssets")
		} else {
			s.calc.CustomAssets = assets
		}
	}
	return skipped
}

func (s *Store) applyTracker(raw json.RawMessage) []string {
	if absent(raw) {
		return nil
	}
	var group struct {
		Payments json.RawMessage `json:"payments"`
	}
	if err := json.Unmarshal(raw, &group); err != nil {
		return []string{"tracker"}
	}
	if absent(group.Payments) {
		return nil
	}
	var payments []core.Payment
	if err := json.Unmarshal(group.Payments, &payments); err != nil || payments == nil {
		return []string{"tracker.payments"}
	}
	s.tracker.Payments = payments
	return nil
}

// mergeScalars shallow-merges an object of decimal scalars into the given
// field set. Each present field is decoded independently so one bad value
// cannot poison its siblings.
func mergeScalars(path string, raw json.RawMessage, fields map[string]*decimal.Decimal) []string {
	if absent(raw) {
		return nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return []string{path}
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var skipped []string
	for _, key := range keys {
		dst, known := fields[key]
		if !known {
			skipped = append(skipped, path+"."+key)
			continue
		}
		var v decimal.Decimal
		if err := json.Unmarshal(m[key], &v); err != nil {
			skipped = append(skipped, path+"."+key)
			continue
		}
		*dst = v
	}
	return skipped
}

func absent(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

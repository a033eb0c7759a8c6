package ledger

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"zakat/internal/core"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func populated(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	cash := d("100000")
	gold := d("12.5")
	s.UpdateAssets(AssetsPatch{Cash: &cash, Gold24g: &gold})
	debts := d("5000")
	s.UpdateDeductions(DeductionsPatch{ImmediateDebts: &debts})
	s.AddCustomAsset("savings cert", d("40000"))
	p := s.AddPayments(1)[0]
	amount := d("1250")
	recipient := "local charity"
	s.UpdatePayment(p.ID, PaymentPatch{Amount: &amount, Recipient: &recipient})
	return s
}

// asJSON canonicalises a value for comparison. Decimal zero values and
// decoded zeros are distinct in memory but identical on the wire, and the
// wire shape is what the round-trip property is about.
func asJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

func TestApplyRoundTrip(t *testing.T) {
	src := populated(t)
	snap := src.Snapshot()
	data, err := snap.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	dst := NewStore()
	outcome := dst.ApplyJSON(data)
	if outcome.Result != Applied {
		t.Fatalf("outcome = %+v, want applied", outcome)
	}

	if got, want := asJSON(t, dst.Calculator()), asJSON(t, snap.Calculator); got != want {
		t.Fatalf("calculator mismatch after round trip:\n got %s\nwant %s", got, want)
	}
	if got, want := asJSON(t, dst.Payments()), asJSON(t, snap.Tracker.Payments); got != want {
		t.Fatalf("payments mismatch after round trip:\n got %s\nwant %s", got, want)
	}
}

func TestApplyRejectsVersionMismatch(t *testing.T) {
	s := populated(t)
	before := s.Calculator()

	outcome := s.ApplyJSON([]byte(`{"version":99,"calculator":{"assets":{"cash":1}}}`))
	if outcome.Result != Rejected {
		t.Fatalf("outcome = %+v, want rejected", outcome)
	}
	if !reflect.DeepEqual(s.Calculator(), before) {
		t.Fatal("state must be unchanged after rejection")
	}

	if out := s.ApplyJSON([]byte(`{"calculator":{}}`)); out.Result != Rejected {
		t.Fatalf("missing version: outcome = %+v, want rejected", out)
	}
}

func TestApplyRejectsMalformedDocument(t *testing.T) {
	s := NewStore()
	for _, data := range []string{`{`, `[]`, `"hello"`, `{"version":"one"}`} {
		if out := s.ApplyJSON([]byte(data)); out.Result != Rejected {
			t.Fatalf("%q: outcome = %+v, want rejected", data, out)
		}
	}
}

func TestApplyIgnoresAbsentGroups(t *testing.T) {
	s := populated(t)
	before := s.Calculator()
	beforePayments := s.Payments()

	outcome := s.ApplyJSON([]byte(`{"version":1}`))
	if outcome.Result != Applied {
		t.Fatalf("outcome = %+v, want applied", outcome)
	}
	if !reflect.DeepEqual(s.Calculator(), before) {
		t.Fatal("calculator must survive a document without groups")
	}
	if !reflect.DeepEqual(s.Payments(), beforePayments) {
		t.Fatal("payments must survive a document without groups")
	}
}

func TestApplySkipsMistypedGroups(t *testing.T) {
	s := populated(t)
	before := s.Calculator()
	beforePayments := s.Payments()

	outcome := s.ApplyJSON([]byte(`{"version":1,"calculator":"nonsense","tracker":42}`))
	if outcome.Result != PartiallyApplied {
		t.Fatalf("outcome = %+v, want partially-applied", outcome)
	}
	wantSkipped := []string{"calculator", "tracker"}
	if !reflect.DeepEqual(outcome.Skipped, wantSkipped) {
		t.Fatalf("skipped = %v, want %v", outcome.Skipped, wantSkipped)
	}
	if !reflect.DeepEqual(s.Calculator(), before) || !reflect.DeepEqual(s.Payments(), beforePayments) {
		t.Fatal("mistyped groups must leave state untouched")
	}
}

func TestApplyMergesScalarsIndividually(t *testing.T) {
	s := NewStore()

	outcome := s.ApplyJSON([]byte(`{
		"version": 1,
		"calculator": {
			"prices": {"gold24PerGram": 5000, "silverPerGram": "oops"},
			"assets": {"cash": "250.75", "mystery": 1}
		}
	}`))

	if outcome.Result != PartiallyApplied {
		t.Fatalf("outcome = %+v, want partially-applied", outcome)
	}
	wantSkipped := []string{"calculator.prices.silverPerGram", "calculator.assets.mystery"}
	if !reflect.DeepEqual(outcome.Skipped, wantSkipped) {
		t.Fatalf("skipped = %v, want %v", outcome.Skipped, wantSkipped)
	}

	calc := s.Calculator()
	if !calc.Prices.Gold24PerGram.Equal(d("5000")) {
		t.Fatalf("gold price = %s, want 5000", calc.Prices.Gold24PerGram)
	}
	// The bad sibling must not block the good one, and the bad field keeps
	// its previous value.
	if !calc.Prices.SilverPerGram.Equal(core.DefaultPrices().SilverPerGram) {
		t.Fatalf("silver price = %s, want default", calc.Prices.SilverPerGram)
	}
	if !calc.Assets.Cash.Equal(d("250.75")) {
		t.Fatalf("cash = %s, want 250.75", calc.Assets.Cash)
	}
}

func TestApplyReplacesArraysWholesale(t *testing.T) {
	s := populated(t)

	outcome := s.ApplyJSON([]byte(`{
		"version": 1,
		"calculator": {"customAssets": []},
		"tracker": {"payments": [{"id":"pay_x","amount":"10"}]}
	}`))
	if outcome.Result != Applied {
		t.Fatalf("outcome = %+v, want applied", outcome)
	}
	if got := s.Calculator().CustomAssets; len(got) != 0 {
		t.Fatalf("custom assets = %v, want wholesale replacement with empty", got)
	}
	payments := s.Payments()
	if len(payments) != 1 || payments[0].ID != "pay_x" {
		t.Fatalf("payments = %v, want the single incoming row", payments)
	}
}

func TestApplyKeepsArraysOnBadIncomingValue(t *testing.T) {
	s := populated(t)
	beforeAssets := s.Calculator().CustomAssets
	beforePayments := s.Payments()

	outcome := s.ApplyJSON([]byte(`{
		"version": 1,
		"calculator": {"customAssets": {"not":"an array"}},
		"tracker": {"payments": "nope"}
	}`))
	if outcome.Result != PartiallyApplied {
		t.Fatalf("outcome = %+v, want partially-applied", outcome)
	}
	if !reflect.DeepEqual(s.Calculator().CustomAssets, beforeAssets) {
		t.Fatal("custom assets must be untouched when the incoming value is not an array")
	}
	if !reflect.DeepEqual(s.Payments(), beforePayments) {
		t.Fatal("payments must be untouched when the incoming value is not an array")
	}
}

func TestApplyFiresChangeListeners(t *testing.T) {
	s := NewStore()
	fired := 0
	s.OnChange(func() { fired++ })

	s.ApplyJSON([]byte(`{"version":1,"calculator":{"assets":{"cash":5}}}`))
	if fired != 1 {
		t.Fatalf("listener fired %d times, want 1", fired)
	}

	// Rejected documents must not announce a change.
	s.ApplyJSON([]byte(`{"version":2}`))
	if fired != 1 {
		t.Fatalf("listener fired %d times after rejection, want still 1", fired)
	}
}

func TestSnapshotEncodeShape(t *testing.T) {
	snap := populated(t).Snapshot()
	data, err := snap.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("snapshot is not a JSON object: %v", err)
	}
	for _, key := range []string{"version", "lastModified", "calculator", "tracker"} {
		if _, ok := m[key]; !ok {
			t.Fatalf("snapshot missing %q", key)
		}
	}
}

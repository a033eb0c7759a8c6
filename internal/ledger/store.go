// Package ledger holds the canonical in-memory ledger: the calculator state
// and the payment tracker. All mutation goes through the Store; the sync
// engine only ever reads snapshots and writes back through ApplyJSON.
package ledger

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"zakat/internal/core"
)

// Store is the single mutable shared resource of the application. Change
// listeners fire after every mutation and drive local persistence and the
// debounced upload.
type Store struct {
	mu        sync.RWMutex
	calc      CalculatorState
	tracker   TrackerState
	listeners []func()

	// now is swappable for tests.
	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		calc: CalculatorState{
			Prices:       core.DefaultPrices(),
			CustomAssets: []core.CustomAsset{},
		},
		tracker: TrackerState{Payments: []core.Payment{}},
		now:     time.Now,
	}
}

// OnChange registers fn to run after every mutation. Listeners run outside
// the store lock, in registration order.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Store) changed() {
	s.mu.RLock()
	fns := make([]func(), len(s.listeners))
	copy(fns, s.listeners)
	s.mu.RUnlock()
	for _, fn := range fns {
		fn()
	}
}

// Snapshot deep-copies the current state into a versioned snapshot stamped
// with the current time. Built lazily by callers so an upload always carries
// the latest edits.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Version:      core.SchemaVersion,
		LastModified: s.now().UTC(),
		Calculator:   s.calc.clone(),
		Tracker:      s.tracker.clone(),
	}
}

// Export builds the downloadable document: the snapshot plus export
// metadata.
func (s *Store) Export(language string) ExportDocument {
	snap := s.Snapshot()
	return ExportDocument{
		Version:      snap.Version,
		ExportedAt:   snap.LastModified,
		LastModified: snap.LastModified,
		Language:     language,
		Calculator:   snap.Calculator,
		Tracker:      snap.Tracker,
	}
}

// Calculator returns a copy of the calculator state.
func (s *Store) Calculator() CalculatorState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calc.clone()
}

// Payments returns a copy of the tracked payments.
func (s *Store) Payments() []core.Payment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tracker.clone().Payments
}

// Summary computes the derived calculator totals.
func (s *Store) Summary() core.Summary {
	s.mu.RLock()
	calc := s.calc.clone()
	s.mu.RUnlock()
	return core.Summarize(calc.Prices, calc.Assets, calc.Deductions, calc.CustomAssets)
}

// TrackerSummary computes payment totals against the current obligation.
func (s *Store) TrackerSummary() core.TrackerSummary {
	summary := s.Summary()
	return core.SummarizeTracker(summary.ZakatDue, s.Payments())
}

// Patch types for partial scalar updates. Nil fields are left untouched,
// mirroring the merge contract of ApplyJSON.
type (
	PricesPatch struct {
		Gold24PerGram *decimal.Decimal `json:"gold24PerGram"`
		SilverPerGram *decimal.Decimal `json:"silverPerGram"`
	}

	AssetsPatch struct {
		Gold24g     *decimal.Decimal `json:"gold24g"`
		Gold21g     *decimal.Decimal `json:"gold21g"`
		Gold18g     *decimal.Decimal `json:"gold18g"`
		SilverG     *decimal.Decimal `json:"silverG"`
		Cash        *decimal.Decimal `json:"cash"`
		Inventory   *decimal.Decimal `json:"inventory"`
		Receivables *decimal.Decimal `json:"receivables"`
		Investments *decimal.Decimal `json:"investments"`
		OtherAssets *decimal.Decimal `json:"otherAssets"`
	}

	DeductionsPatch struct {
		ImmediateDebts   *decimal.Decimal `json:"immediateDebts"`
		OtherLiabilities *decimal.Decimal `json:"otherLiabilities"`
	}

	PaymentPatch struct {
		Date      *string          `json:"date"`
		Recipient *string          `json:"recipient"`
		Category  *string          `json:"category"`
		Amount    *decimal.Decimal `json:"amount"`
		Notes     *string          `json:"notes"`
	}
)

func (s *Store) UpdatePrices(p PricesPatch) {
	s.mu.Lock()
	assign(&s.calc.Prices.Gold24PerGram, p.Gold24PerGram)
	assign(&s.calc.Prices.SilverPerGram, p.SilverPerGram)
	s.mu.Unlock()
	s.changed()
}

func (s *Store) UpdateAssets(p AssetsPatch) {
	s.mu.Lock()
	assign(&s.calc.Assets.Gold24g, p.Gold24g)
	assign(&s.calc.Assets.Gold21g, p.Gold21g)
	assign(&s.calc.Assets.Gold18g, p.Gold18g)
	assign(&s.calc.Assets.SilverG, p.SilverG)
	assign(&s.calc.Assets.Cash, p.Cash)
	assign(&s.calc.Assets.Inventory, p.Inventory)
	assign(&s.calc.Assets.Receivables, p.Receivables)
	assign(&s.calc.Assets.Investments, p.Investments)
	assign(&s.calc.Assets.OtherAssets, p.OtherAssets)
	s.mu.Unlock()
	s.changed()
}

func (s *Store) UpdateDeductions(p DeductionsPatch) {
	s.mu.Lock()
	assign(&s.calc.Deductions.ImmediateDebts, p.ImmediateDebts)
	assign(&s.calc.Deductions.OtherLiabilities, p.OtherLiabilities)
	s.mu.Unlock()
	s.changed()
}

// AddCustomAsset appends a user-defined asset line and returns it with its
// generated id.
func (s *Store) AddCustomAsset(label string, amount decimal.Decimal) core.CustomAsset {
	asset := core.CustomAsset{
		ID:     "custom_" + uuid.NewString(),
		Label:  label,
		Amount: amount,
	}
	s.mu.Lock()
	s.calc.CustomAssets = append(s.calc.CustomAssets, asset)
	s.mu.Unlock()
	s.changed()
	return asset
}

func (s *Store) UpdateCustomAsset(id string, label *string, amount *decimal.Decimal) bool {
	s.mu.Lock()
	found := false
	for i := range s.calc.CustomAssets {
		if s.calc.CustomAssets[i].ID == id {
			if label != nil {
				s.calc.CustomAssets[i].Label = *label
			}
			assign(&s.calc.CustomAssets[i].Amount, amount)
			found = true
			break
		}
	}
	s.mu.Unlock()
	if found {
		s.changed()
	}
	return found
}

func (s *Store) RemoveCustomAsset(id string) bool {
	s.mu.Lock()
	found := false
	kept := s.calc.CustomAssets[:0]
	for _, a := range s.calc.CustomAssets {
		if a.ID == id {
			found = true
			continue
		}
		kept = append(kept, a)
	}
	s.calc.CustomAssets = kept
	s.mu.Unlock()
	if found {
		s.changed()
	}
	return found
}

// ResetCalculator restores prices to defaults and zeroes all declared
// assets and deductions. Payments are untouched.
func (s *Store) ResetCalculator() {
	s.mu.Lock()
	s.calc = CalculatorState{
		Prices:       core.DefaultPrices(),
		CustomAssets: []core.CustomAsset{},
	}
	s.mu.Unlock()
	s.changed()
}

// AddPayments appends count blank payment rows and returns them. Rows start
// empty; the user fills them in afterwards.
func (s *Store) AddPayments(count int) []core.Payment {
	if count < 1 {
		count = 1
	}
	added := make([]core.Payment, count)
	for i := range added {
		added[i] = core.Payment{ID: "pay_" + uuid.NewString()}
	}
	s.mu.Lock()
	s.tracker.Payments = append(s.tracker.Payments, added...)
	s.mu.Unlock()
	s.changed()
	return added
}

func (s *Store) UpdatePayment(id string, patch PaymentPatch) bool {
	s.mu.Lock()
	found := false
	for i := range s.tracker.Payments {
		if s.tracker.Payments[i].ID != id {
			continue
		}
		p := &s.tracker.Payments[i]
		if patch.Date != nil {
			p.Date = *patch.Date
		}
		if patch.Recipient != nil {
			p.Recipient = *patch.Recipient
		}
		if patch.Category != nil {
			p.Category = *patch.Category
		}
		assign(&p.Amount, patch.Amount)
		if patch.Notes != nil {
			p.Notes = *patch.Notes
		}
		found = true
		break
	}
	s.mu.Unlock()
	if found {
		s.changed()
	}
	return found
}

func (s *Store) DeletePayment(id string) bool {
	s.mu.Lock()
	found := false
	kept := s.tracker.Payments[:0]
	for _, p := range s.tracker.Payments {
		if p.ID == id {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	s.tracker.Payments = kept
	s.mu.Unlock()
	if found {
		s.changed()
	}
	return found
}

func (s *Store) ClearPayments() {
	s.mu.Lock()
	s.tracker.Payments = []core.Payment{}
	s.mu.Unlock()
	s.changed()
}

// Reset wipes the whole ledger back to defaults.
func (s *Store) Reset() {
	s.mu.Lock()
	s.calc = CalculatorState{
		Prices:       core.DefaultPrices(),
		CustomAssets: []core.CustomAsset{},
	}
	s.tracker = TrackerState{Payments: []core.Payment{}}
	s.mu.Unlock()
	s.changed()
}

func assign(dst *decimal.Decimal, src *decimal.Decimal) {
	if src != nil {
		*dst = *src
	}
}

package ledger

import (
	"encoding/json"
	"time"

	"zakat/internal/core"
)

type (
	// CalculatorState groups everything the calculator operates on.
	CalculatorState struct {
		Prices       core.Prices        `json:"prices"`
		Assets       core.Assets        `json:"assets"`
		Deductions   core.Deductions    `json:"deductions"`
		CustomAssets []core.CustomAsset `json:"customAssets"`
	}

	// TrackerState groups the tracked payments.
	TrackerState struct {
		Payments []core.Payment `json:"payments"`
	}

	// Snapshot is a point-in-time, schema-versioned copy of the ledger.
	// It is the sync payload: immutable once produced, rebuilt on every
	// upload.
	Snapshot struct {
		Version      int             `json:"version"`
		LastModified time.Time       `json:"lastModified"`
		Calculator   CalculatorState `json:"calculator"`
		Tracker      TrackerState    `json:"tracker"`
	}

	// ExportDocument is the downloadable superset of a snapshot, adding
	// human-facing metadata. Language is carried as opaque metadata for the
	// UI layer.
	ExportDocument struct {
		Version      int             `json:"version"`
		ExportedAt   time.Time       `json:"exportedAt"`
		LastModified time.Time       `json:"lastModified"`
		Language     string          `json:"language"`
		Calculator   CalculatorState `json:"calculator"`
		Tracker      TrackerState    `json:"tracker"`
	}
)

// Encode serialises the snapshot as the compact sync payload.
func (s Snapshot) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// Encode serialises the export document pretty-printed for humans.
func (d ExportDocument) Encode() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

func (c CalculatorState) clone() CalculatorState {
	out := c
	if c.CustomAssets != nil {
		out.CustomAssets = make([]core.CustomAsset, len(c.CustomAssets))
		copy(out.CustomAssets, c.CustomAssets)
	}
	return out
}

func (t TrackerState) clone() TrackerState {
	out := t
	if t.Payments != nil {
		out.Payments = make([]core.Payment, len(t.Payments))
		copy(out.Payments, t.Payments)
	}
	return out
}

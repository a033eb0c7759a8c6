package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Monetary values travel as plain JSON numbers so the shared document stays
// readable by clients that do arithmetic on it directly.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// SchemaVersion is the ledger document version. Snapshots and export files
// carry it; imports with a different version are rejected.
const SchemaVersion = 1

type (
	// Prices holds the per-gram metal prices used to value gold and silver
	// holdings.
	Prices struct {
		Gold24PerGram decimal.Decimal `json:"gold24PerGram"`
		SilverPerGram decimal.Decimal `json:"silverPerGram"`
	}

	// Assets holds declared zakatable wealth. Gold fields are weights in
	// grams by karat; the remaining fields are monetary amounts.
	Assets struct {
		Gold24g     decimal.Decimal `json:"gold24g"`
		Gold21g     decimal.Decimal `json:"gold21g"`
		Gold18g     decimal.Decimal `json:"gold18g"`
		SilverG     decimal.Decimal `json:"silverG"`
		Cash        decimal.Decimal `json:"cash"`
		Inventory   decimal.Decimal `json:"inventory"`
		Receivables decimal.Decimal `json:"receivables"`
		Investments decimal.Decimal `json:"investments"`
		OtherAssets decimal.Decimal `json:"otherAssets"`
	}

	// Deductions holds liabilities subtracted from gross assets before the
	// nisab comparison.
	Deductions struct {
		ImmediateDebts   decimal.Decimal `json:"immediateDebts"`
		OtherLiabilities decimal.Decimal `json:"otherLiabilities"`
	}

	// CustomAsset is a user-defined asset line. IDs are client-generated
	// and opaque; uniqueness is only required within one ledger.
	CustomAsset struct {
		ID     string          `json:"id"`
		Label  string          `json:"label"`
		Amount decimal.Decimal `json:"amount"`
	}

	// Payment is one tracked zakat disbursement. Date and Category may be
	// empty while the user is still filling the row in.
	Payment struct {
		ID        string          `json:"id"`
		Date      string          `json:"date"`
		Recipient string          `json:"recipient"`
		Category  string          `json:"category"`
		Amount    decimal.Decimal `json:"amount"`
		Notes     string          `json:"notes"`
	}
)

// PaymentCategories are the recognised recipient category keys. They are
// translation keys, not display strings; rendering is out of scope here.
var PaymentCategories = []string{
	"cat.faqir", "cat.miskin", "cat.amil", "cat.muallaf",
	"cat.gharim", "cat.sabilillah", "cat.ibnsabil", "cat.org", "cat.other",
}

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidCategory = errors.New("invalid payment category")
	ErrEmptyLabel      = errors.New("empty asset label")
)

// DefaultPrices returns the seed metal prices used for a fresh ledger.
func DefaultPrices() Prices {
	return Prices{
		Gold24PerGram: decimal.NewFromInt(4625),
		SilverPerGram: decimal.NewFromFloat(48.50),
	}
}

// ValidCategory reports whether key is empty or one of PaymentCategories.
func ValidCategory(key string) bool {
	if key == "" {
		return true
	}
	for _, c := range PaymentCategories {
		if c == key {
			return true
		}
	}
	return false
}

// Validate checks the fields a user can type freely. Amounts are not
// range-checked: a zero or negative row is legal while it is being edited.
func (p Payment) Validate() error {
	if strings.TrimSpace(p.Date) != "" {
		if _, err := time.Parse("2006-01-02", p.Date); err != nil {
			return ErrInvalidDate
		}
	}
	if !ValidCategory(p.Category) {
		return ErrInvalidCategory
	}
	return nil
}

func (a CustomAsset) Validate() error {
	if strings.TrimSpace(a.Label) == "" {
		return ErrEmptyLabel
	}
	return nil
}

package checkbook

import (
	"encoding/json"
	"time"

	"github.com/etnz/checkbook/date"
	"github.com/shopspring/decimal"
)

// Source tells where a transaction comes from.
type Source string

const (
	Manual Source = "manual" // entered by the user
	Bank   Source = "bank"   // reported by the bank feed, or converted from a manual entry
)

// Kind distinguishes regular transactions from the opening balance marker.
type Kind string

const (
	Regular        Kind = "regular"
	OpeningBalance Kind = "opening"
)

// ConversionMarker is appended to the notes of a manual transaction converted into a bank one.
const ConversionMarker = "[Converted from manual entry]"

// Transaction is a single line of an account register.
type Transaction struct {
	ID          string
	AccountID   string
	Date        date.Date
	Payee       string
	Amount      Money
	Source      Source
	Kind        Kind
	Reconciled  bool
	CheckNumber string
	Notes       string
	ExternalID  string    // bank side identifier, if any
	PostedAt    time.Time // when the bank data was ingested, if any

	// RunningBalance is the account balance after this transaction. It is
	// derived by Recompute and never persisted.
	RunningBalance Money

	seq int64 // insertion order, used to break ties between same day transactions
}

// IsBank reports whether t is bank sourced, and therefore immutable in date, payee and amount.
func (t Transaction) IsBank() bool { return t.Source == Bank }

// IsOpeningBalance reports whether t is the account opening balance marker.
func (t Transaction) IsOpeningBalance() bool { return t.Kind == OpeningBalance }

func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", t.ID)
	w.Append("account", t.AccountID)
	w.Append("seq", t.seq)
	w.Append("date", t.Date)
	w.Append("payee", t.Payee)
	w.Append("amount", t.Amount.value)
	w.Append("source", t.Source)
	if t.Kind != Regular {
		w.Optional("kind", t.Kind)
	}
	w.Optional("reconciled", t.Reconciled)
	w.Optional("checkNumber", t.CheckNumber)
	w.Optional("notes", t.Notes)
	w.Optional("externalId", t.ExternalID)
	if !t.PostedAt.IsZero() {
		w.Append("postedAt", t.PostedAt.UTC())
	}
	return w.MarshalJSON()
}

func (t *Transaction) UnmarshalJSON(data []byte) error {
	var v struct {
		ID          string          `json:"id"`
		AccountID   string          `json:"account"`
		Seq         int64           `json:"seq"`
		Date        date.Date       `json:"date"`
		Payee       string          `json:"payee"`
		Amount      decimal.Decimal `json:"amount"`
		Source      Source          `json:"source"`
		Kind        Kind            `json:"kind"`
		Reconciled  bool            `json:"reconciled"`
		CheckNumber string          `json:"checkNumber"`
		Notes       string          `json:"notes"`
		ExternalID  string          `json:"externalId"`
		PostedAt    time.Time       `json:"postedAt"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.Kind == "" {
		v.Kind = Regular
	}
	*t = Transaction{
		ID:          v.ID,
		AccountID:   v.AccountID,
		Date:        v.Date,
		Payee:       v.Payee,
		Amount:      Money{value: v.Amount},
		Source:      v.Source,
		Kind:        v.Kind,
		Reconciled:  v.Reconciled,
		CheckNumber: v.CheckNumber,
		Notes:       v.Notes,
		ExternalID:  v.ExternalID,
		PostedAt:    v.PostedAt,
		seq:         v.Seq,
	}
	return nil
}

// ManualEntry is the user input for a manual transaction.
type ManualEntry struct {
	Date        date.Date
	Payee       string
	Amount      float64 // positive is a credit, negative a debit
	Notes       string
	CheckNumber string
}

// Patch is a partial update of a transaction. Nil fields are left unchanged.
type Patch struct {
	Date        *date.Date
	Payee       *string
	Amount      *float64
	Notes       *string
	CheckNumber *string
	Reconciled  *bool
}

// BankTxn is a transaction as reported by a bank feed.
type BankTxn struct {
	AccountID  string    `json:"account_id"`
	Date       date.Date `json:"date"`
	Payee      string    `json:"payee"`
	Amount     float64   `json:"amount"` // positive is a credit, negative a debit
	ExternalID string    `json:"external_transaction_id,omitempty"`
}

// IngestResult reports what a bank batch did to the register.
type IngestResult struct {
	Converted  []Transaction // manual entries converted into bank ones
	Inserted   []Transaction // new bank transactions
	Duplicates []BankTxn     // dropped by the dedup guard
}

// Changed reports whether the ingestion modified the register.
func (r IngestResult) Changed() bool { return len(r.Converted)+len(r.Inserted) > 0 }

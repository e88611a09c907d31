package renderer

import (
	"strings"

	"github.com/etnz/checkbook"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Status markers of a register row.
const (
	StatusOpening = "opening" // the starting balance of the account
	StatusPending = "pending" // entered by hand, not seen by the bank yet
	StatusReview  = "review"  // matched by the bank, waiting for the user review
	StatusCleared = "cleared" // reported by the bank and reviewed
)

// Register is the view of an account register, with every value formatted.
type Register struct {
	Account         string
	Type            string
	Currency        string
	Opened          string
	StartingBalance string
	CurrentBalance  string
	Rows            []RegisterRow
	Pending         int
	Review          int
}

// RegisterRow is a transaction of a Register.
type RegisterRow struct {
	ID      string
	Date    string
	Payee   string
	Amount  string
	Balance string
	Status  string
	Notes   string
}

// Status returns the status marker of tx.
func Status(tx checkbook.Transaction) string {
	switch {
	case tx.IsOpeningBalance():
		return StatusOpening
	case !tx.IsBank():
		return StatusPending
	case tx.Reconciled:
		return StatusCleared
	default:
		return StatusReview
	}
}

// NewRegister builds the view of an account and its transactions in register order.
func NewRegister(acc checkbook.Account, txs []checkbook.Transaction) *Register {
	r := &Register{
		Account:         cell(acc.Name),
		Type:            cases.Title(language.English).String(string(acc.Type)),
		Currency:        acc.Currency,
		Opened:          acc.StartingDate.String(),
		StartingBalance: acc.StartingBalance.String(),
		CurrentBalance:  acc.CurrentBalance.String(),
		Rows:            make([]RegisterRow, 0, len(txs)),
	}
	for _, tx := range txs {
		var notes []string
		if tx.CheckNumber != "" {
			notes = append(notes, "#"+tx.CheckNumber)
		}
		if tx.Notes != "" {
			notes = append(notes, tx.Notes)
		}
		row := RegisterRow{
			ID:      tx.ID,
			Date:    tx.Date.String(),
			Payee:   cell(tx.Payee),
			Amount:  tx.Amount.String(),
			Balance: tx.RunningBalance.String(),
			Status:  Status(tx),
			Notes:   cell(strings.Join(notes, " ")),
		}
		switch row.Status {
		case StatusPending:
			r.Pending++
		case StatusReview:
			r.Review++
		}
		r.Rows = append(r.Rows, row)
	}
	return r
}

package api

import (
	"github.com/etnz/checkbook"
	"github.com/etnz/checkbook/date"
	"github.com/etnz/checkbook/renderer"
)

// AccountResponse is the wire form of an account. Amounts are decimal strings.
type AccountResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Type            string `json:"type"`
	Currency        string `json:"currency"`
	StartingBalance string `json:"starting_balance"`
	StartingDate    string `json:"starting_date"`
	CurrentBalance  string `json:"current_balance"`
	Linked          bool   `json:"linked"`
	Active          bool   `json:"active"`
}

// TransactionResponse is the wire form of a register line.
type TransactionResponse struct {
	ID             string `json:"id"`
	AccountID      string `json:"account_id"`
	Date           string `json:"date"`
	Payee          string `json:"payee"`
	Amount         string `json:"amount"`
	RunningBalance string `json:"running_balance"`
	Source         string `json:"source"`
	Status         string `json:"status"`
	Reconciled     bool   `json:"reconciled"`
	CheckNumber    string `json:"check_number,omitempty"`
	Notes          string `json:"notes,omitempty"`
	ExternalID     string `json:"external_transaction_id,omitempty"`
}

// IngestResponse reports what a bank batch did.
type IngestResponse struct {
	Converted  []TransactionResponse `json:"converted"`
	Inserted   []TransactionResponse `json:"inserted"`
	Duplicates []checkbook.BankTxn   `json:"duplicates"`
}

// CreateTransactionRequest is the body of a manual entry.
type CreateTransactionRequest struct {
	Date        date.Date `json:"date"`
	Payee       string    `json:"payee"`
	Amount      float64   `json:"amount"`
	Notes       string    `json:"notes"`
	CheckNumber string    `json:"check_number"`
}

// UpdateTransactionRequest is a partial update. Missing fields are unchanged.
type UpdateTransactionRequest struct {
	Date        *date.Date `json:"date"`
	Payee       *string    `json:"payee"`
	Amount      *float64   `json:"amount"`
	Notes       *string    `json:"notes"`
	CheckNumber *string    `json:"check_number"`
	Reconciled  *bool      `json:"reconciled"`
}

// BankBatchRequest is the body of the bank webhook.
type BankBatchRequest struct {
	Transactions []checkbook.BankTxn `json:"transactions"`
}

func toAccount(a checkbook.Account, active bool) AccountResponse {
	return AccountResponse{
		ID:              a.ID,
		Name:            a.Name,
		Type:            string(a.Type),
		Currency:        a.Currency,
		StartingBalance: a.StartingBalance.Decimal().StringFixed(2),
		StartingDate:    a.StartingDate.String(),
		CurrentBalance:  a.CurrentBalance.Decimal().StringFixed(2),
		Linked:          a.LinkToken != "",
		Active:          active,
	}
}

func toTransaction(tx checkbook.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:             tx.ID,
		AccountID:      tx.AccountID,
		Date:           tx.Date.String(),
		Payee:          tx.Payee,
		Amount:         tx.Amount.Decimal().StringFixed(2),
		RunningBalance: tx.RunningBalance.Decimal().StringFixed(2),
		Source:         string(tx.Source),
		Status:         renderer.Status(tx),
		Reconciled:     tx.Reconciled,
		CheckNumber:    tx.CheckNumber,
		Notes:          tx.Notes,
		ExternalID:     tx.ExternalID,
	}
}

func toTransactions(txs []checkbook.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransaction(tx))
	}
	return out
}

func toIngest(res checkbook.IngestResult) IngestResponse {
	duplicates := res.Duplicates
	if duplicates == nil {
		duplicates = []checkbook.BankTxn{}
	}
	return IngestResponse{
		Converted:  toTransactions(res.Converted),
		Inserted:   toTransactions(res.Inserted),
		Duplicates: duplicates,
	}
}

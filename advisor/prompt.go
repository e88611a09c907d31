package advisor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/etnz/checkbook"
)

type manualEntry struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	Payee  string `json:"payee"`
	Amount string `json:"amount"`
	Notes  string `json:"notes,omitempty"`
}

type bankEntry struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	Payee  string `json:"payee"`
	Amount string `json:"amount"`
}

// matchPrompt asks to pair manual entries with bank transactions.
func matchPrompt(manual []checkbook.Transaction, bank []checkbook.BankTxn) (string, error) {
	me := make([]manualEntry, len(manual))
	for i, tx := range manual {
		me[i] = manualEntry{ID: tx.ID, Date: tx.Date.String(), Payee: tx.Payee, Amount: tx.Amount.Decimal().StringFixed(2), Notes: tx.Notes}
	}
	be := make([]bankEntry, len(bank))
	refs := checkbook.BankRefs(bank)
	for i, b := range bank {
		be[i] = bankEntry{ID: refs[i], Date: b.Date.String(), Payee: b.Payee, Amount: fmt.Sprintf("%.2f", b.Amount)}
	}
	manualJSON, err := json.MarshalIndent(me, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode manual entries: %w", err)
	}
	bankJSON, err := json.MarshalIndent(be, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode bank transactions: %w", err)
	}

	var b strings.Builder
	b.WriteString("Task:\n" +
		"- Find which manual checkbook entries are the same payment as which bank transactions.\n" +
		"- The user types payees the way they think of them (\"Gas Station\"), the bank uses the merchant label (\"SHELL OIL #4521\").\n" +
		"- Amounts of a pair must be equal, dates are usually a few days apart.\n" +
		"- Each manual entry and each bank transaction belongs to at most one pair.\n" +
		"- Leave out anything you are unsure about.\n\n" +
		"Output a JSON array of objects, each with these fields:\n" +
		"- \"manual_id\": the id of the manual entry\n" +
		"- \"bank_id\": the id of the bank transaction\n" +
		"- \"confidence\": integer from 0 to 100\n" +
		"- \"reasoning\": one short sentence\n\n")
	b.WriteString("Manual entries:\n")
	b.Write(manualJSON)
	b.WriteString("\n\nBank transactions:\n")
	b.Write(bankJSON)
	b.WriteString("\n")
	return b.String(), nil
}

// payeePrompt asks to complete a payee name.
func payeePrompt(entered string, recent []string) (string, error) {
	recentJSON, err := json.Marshal(recent)
	if err != nil {
		return "", fmt.Errorf("encode recent payees: %w", err)
	}
	return fmt.Sprintf("Task:\n"+
		"- The user is typing the payee of a checkbook entry and entered %q so far.\n"+
		"- Suggest up to %d payee names they most likely mean, best first.\n"+
		"- Prefer the exact labels of their recent bank payees, listed below.\n\n"+
		"Output a JSON array of strings.\n\n"+
		"Recent bank payees:\n%s\n", entered, checkbook.MaxPayeeSuggestions, recentJSON), nil
}

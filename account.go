package checkbook

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/etnz/checkbook/date"
)

// AccountType is the kind of bank account.
type AccountType string

const (
	Checking AccountType = "checking"
	Savings  AccountType = "savings"
	Credit   AccountType = "credit"
)

// ParseAccountType parses an account type, case insensitive.
func ParseAccountType(s string) (AccountType, error) {
	switch t := AccountType(strings.ToLower(strings.TrimSpace(s))); t {
	case Checking, Savings, Credit:
		return t, nil
	case "":
		return Checking, nil
	default:
		return "", fmt.Errorf("unknown account type %q (want checking, savings or credit)", s)
	}
}

// Account is a bank account register.
//
// CurrentBalance is derived from the account transactions and is never
// authoritative.
type Account struct {
	ID              string
	Name            string
	Type            AccountType
	Currency        string
	StartingBalance Money
	StartingDate    date.Date
	CurrentBalance  Money
	LinkToken       string // opaque bank linkage token, empty when not linked
}

// NewAccount holds the user input to create an account.
type NewAccount struct {
	Name            string
	Type            AccountType
	Currency        string
	StartingBalance float64
	StartingDate    date.Date
	LinkToken       string
}

func (a Account) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", a.ID)
	w.Append("name", a.Name)
	w.Append("type", a.Type)
	w.Optional("currency", a.Currency)
	w.Append("startingBalance", a.StartingBalance.value)
	w.Append("startingDate", a.StartingDate)
	w.Optional("linkToken", a.LinkToken)
	return w.MarshalJSON()
}

func (a *Account) UnmarshalJSON(data []byte) error {
	var v struct {
		ID              string      `json:"id"`
		Name            string      `json:"name"`
		Type            AccountType `json:"type"`
		Currency        string      `json:"currency"`
		StartingBalance json.Number `json:"startingBalance"`
		StartingDate    date.Date   `json:"startingDate"`
		LinkToken       string      `json:"linkToken"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	var balance Money
	if v.StartingBalance != "" {
		if err := balance.value.UnmarshalJSON([]byte(v.StartingBalance)); err != nil {
			return fmt.Errorf("invalid starting balance %q: %w", v.StartingBalance, err)
		}
	}
	*a = Account{
		ID:              v.ID,
		Name:            v.Name,
		Type:            v.Type,
		Currency:        v.Currency,
		StartingBalance: balance.In(v.Currency),
		StartingDate:    v.StartingDate,
		CurrentBalance:  balance.In(v.Currency),
		LinkToken:       v.LinkToken,
	}
	return nil
}

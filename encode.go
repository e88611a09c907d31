package checkbook

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Backend persists the state of a Store as a flat set of keys.
//
// Save replaces the whole content of the backend, atomically.
type Backend interface {
	Load() (map[string][]byte, error)
	Save(entries map[string][]byte) error
}

// Keys used in a Backend.
const (
	keySettings       = "settings"
	keyActive         = "active"
	prefixAccount     = "account/"
	prefixTransaction = "txn/"
)

// settingsRecord is the persisted form of Settings.
type settingsRecord struct {
	DepositAlerts       bool    `json:"depositAlerts"`
	DebitAlerts         bool    `json:"debitAlerts"`
	LowBalanceAlerts    bool    `json:"lowBalanceAlerts"`
	LowBalanceThreshold float64 `json:"lowBalanceThreshold"`
	OverdraftAlerts     bool    `json:"overdraftAlerts"`
	RecentWindow        string  `json:"recentWindow"`
}

func (s Settings) MarshalJSON() ([]byte, error) {
	return json.Marshal(settingsRecord{
		DepositAlerts:       s.DepositAlerts,
		DebitAlerts:         s.DebitAlerts,
		LowBalanceAlerts:    s.LowBalanceAlerts,
		LowBalanceThreshold: s.LowBalanceThreshold,
		OverdraftAlerts:     s.OverdraftAlerts,
		RecentWindow:        s.RecentWindow.String(),
	})
}

func (s *Settings) UnmarshalJSON(data []byte) error {
	var r settingsRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	window, err := time.ParseDuration(r.RecentWindow)
	if err != nil {
		return fmt.Errorf("invalid recent window %q: %w", r.RecentWindow, err)
	}
	*s = Settings{
		DepositAlerts:       r.DepositAlerts,
		DebitAlerts:         r.DebitAlerts,
		LowBalanceAlerts:    r.LowBalanceAlerts,
		LowBalanceThreshold: r.LowBalanceThreshold,
		OverdraftAlerts:     r.OverdraftAlerts,
		RecentWindow:        window,
	}
	return nil
}

// encodeState returns the entries representing l. Running and current
// balances are derived and not part of it.
func encodeState(l *ledger) (map[string][]byte, error) {
	entries := make(map[string][]byte, len(l.accounts)+len(l.txs)+2)
	put := func(key string, v any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", key, err)
		}
		entries[key] = data
		return nil
	}
	if err := put(keySettings, l.settings); err != nil {
		return nil, err
	}
	if l.active != "" {
		entries[keyActive] = []byte(l.active)
	}
	for _, a := range l.accounts {
		if err := put(prefixAccount+a.ID, a); err != nil {
			return nil, err
		}
	}
	for _, tx := range l.txs {
		if err := put(prefixTransaction+tx.ID, tx); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// decodeState restores a ledger from its entries. Missing settings default to defaults.
func decodeState(entries map[string][]byte, defaults Settings) (*ledger, error) {
	l := newLedger(defaults)
	for key, data := range entries {
		switch {
		case key == keySettings:
			if err := json.Unmarshal(data, &l.settings); err != nil {
				return nil, fmt.Errorf("decoding %s: %w", key, err)
			}
		case key == keyActive:
			l.active = string(data)
		case strings.HasPrefix(key, prefixAccount):
			var a Account
			if err := json.Unmarshal(data, &a); err != nil {
				return nil, fmt.Errorf("decoding %s: %w", key, err)
			}
			l.accounts = append(l.accounts, a)
		case strings.HasPrefix(key, prefixTransaction):
			var tx Transaction
			if err := json.Unmarshal(data, &tx); err != nil {
				return nil, fmt.Errorf("decoding %s: %w", key, err)
			}
			l.txs = append(l.txs, tx)
		default:
			return nil, fmt.Errorf("unknown key %q", key)
		}
	}

	// Maps have no order: restore the account order from their starting
	// marker, and the transactions from their sequence.
	sort.SliceStable(l.txs, func(i, j int) bool { return l.txs[i].seq < l.txs[j].seq })
	order := make(map[string]int64)
	for _, tx := range l.txs {
		if tx.IsOpeningBalance() {
			order[tx.AccountID] = tx.seq
		}
		l.nextSeq = max(l.nextSeq, tx.seq+1)
	}
	sort.SliceStable(l.accounts, func(i, j int) bool {
		if order[l.accounts[i].ID] != order[l.accounts[j].ID] {
			return order[l.accounts[i].ID] < order[l.accounts[j].ID]
		}
		return l.accounts[i].ID < l.accounts[j].ID
	})

	currencies := make(map[string]string)
	for _, a := range l.accounts {
		currencies[a.ID] = a.Currency
	}
	for i, tx := range l.txs {
		cur, ok := currencies[tx.AccountID]
		if !ok {
			return nil, fmt.Errorf("transaction %s belongs to unknown account %q", tx.ID, tx.AccountID)
		}
		l.txs[i].Amount = tx.Amount.In(cur)
	}
	if l.active != "" && l.account(l.active) < 0 {
		l.active = ""
	}
	for _, a := range l.accounts {
		l.recompute(a.ID)
	}
	return l, nil
}

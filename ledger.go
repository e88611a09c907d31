package checkbook

import (
	"iter"
	"slices"
)

// ledger is the complete state of a Store.
//
// Transactions are kept in insertion order, which is the order the matcher
// iterates over. The register order is computed by Recompute.
type ledger struct {
	settings Settings
	accounts []Account // creation order
	txs      []Transaction
	nextSeq  int64
	active   string // active account id
}

func newLedger(settings Settings) *ledger {
	return &ledger{
		settings: settings,
		accounts: make([]Account, 0),
		txs:      make([]Transaction, 0),
		nextSeq:  1,
	}
}

// clone returns a deep copy of l. Mutations work on a clone that replaces the
// current state only once fully applied and persisted.
func (l *ledger) clone() *ledger {
	return &ledger{
		settings: l.settings,
		accounts: slices.Clone(l.accounts),
		txs:      slices.Clone(l.txs),
		nextSeq:  l.nextSeq,
		active:   l.active,
	}
}

// account returns the index of the account id, or -1.
func (l *ledger) account(id string) int {
	return slices.IndexFunc(l.accounts, func(a Account) bool { return a.ID == id })
}

// index returns the index of the transaction id, or -1.
func (l *ledger) index(id string) int {
	return slices.IndexFunc(l.txs, func(t Transaction) bool { return t.ID == id })
}

// append adds tx at the end of the insertion order and returns it with its sequence set.
func (l *ledger) append(tx Transaction) Transaction {
	tx.seq = l.nextSeq
	l.nextSeq++
	l.txs = append(l.txs, tx)
	return tx
}

// Transactions returns an iterator over the transactions of an account, in insertion order.
func (l *ledger) transactions(accountID string) iter.Seq2[int, Transaction] {
	return func(yield func(int, Transaction) bool) {
		for i, tx := range l.txs {
			if tx.AccountID != accountID {
				continue
			}
			if !yield(i, tx) {
				return
			}
		}
	}
}

// opening returns the index of the account opening balance marker, or -1.
func (l *ledger) opening(accountID string) int {
	for i, tx := range l.transactions(accountID) {
		if tx.IsOpeningBalance() {
			return i
		}
	}
	return -1
}

// recompute updates the running balances of an account and its current balance.
func (l *ledger) recompute(accountID string) {
	ai := l.account(accountID)
	if ai < 0 {
		return
	}
	acc := &l.accounts[ai]

	var txs []Transaction
	pos := make(map[string]int)
	for i, tx := range l.transactions(accountID) {
		txs = append(txs, tx)
		pos[tx.ID] = i
	}
	register, balance := Recompute(acc.StartingBalance, txs)
	for _, tx := range register {
		l.txs[pos[tx.ID]].RunningBalance = tx.RunningBalance
	}
	acc.CurrentBalance = balance
}

// register returns copies of the account transactions in register order.
func (l *ledger) register(accountID string) []Transaction {
	var txs []Transaction
	for _, tx := range l.transactions(accountID) {
		txs = append(txs, tx)
	}
	sortRegister(txs)
	return txs
}

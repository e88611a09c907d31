package checkbook

import "sort"

// sortRegister sorts transactions in register order: the opening balance
// marker first, then by date. The sort is stable, and same day transactions
// keep their insertion order.
func sortRegister(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		a, b := txs[i], txs[j]
		if a.IsOpeningBalance() != b.IsOpeningBalance() {
			return a.IsOpeningBalance()
		}
		if a.Date != b.Date {
			return a.Date.Before(b.Date)
		}
		return a.seq < b.seq
	})
}

// Recompute returns a copy of txs in register order with running balances set,
// and the resulting balance.
//
// The running balance of the i-th transaction is start plus the sum of the
// amounts of the transactions up to i. The opening balance marker is not part
// of that sum: its running balance is start.
func Recompute(start Money, txs []Transaction) ([]Transaction, Money) {
	register := make([]Transaction, len(txs))
	copy(register, txs)
	sortRegister(register)

	balance := start
	for i := range register {
		if !register[i].IsOpeningBalance() {
			balance = balance.Add(register[i].Amount)
		}
		register[i].RunningBalance = balance
	}
	return register, balance
}

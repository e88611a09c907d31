package checkbook

import (
	"time"

	"github.com/shopspring/decimal"
)

// Notifier receives balance alerts. Calls are fire-and-forget: nothing a
// Notifier does can fail or roll back the mutation that triggered it.
type Notifier interface {
	NotifyDeposit(amount Money, payee string, newBalance Money)
	NotifyDebit(amount Money, payee string, newBalance Money)
	NotifyLowBalance(balance, threshold Money)
	NotifyOverdraft(balance Money)
}

// Settings controls alerting.
type Settings struct {
	DepositAlerts       bool
	DebitAlerts         bool
	LowBalanceAlerts    bool
	LowBalanceThreshold float64
	OverdraftAlerts     bool
	// RecentWindow is how old a bank transaction can be and still trigger alerts.
	RecentWindow time.Duration
}

// DefaultSettings returns the settings of a new Store.
func DefaultSettings() Settings {
	return Settings{
		DepositAlerts:       true,
		DebitAlerts:         true,
		LowBalanceAlerts:    true,
		LowBalanceThreshold: 100,
		OverdraftAlerts:     true,
		RecentWindow:        24 * time.Hour,
	}
}

// Validate returns a ValidationError if the settings cannot be used.
func (s Settings) Validate() error {
	if !finite(s.LowBalanceThreshold) {
		return invalid("low balance threshold", "must be a finite number, got %v", s.LowBalanceThreshold)
	}
	if s.RecentWindow < 0 {
		return invalid("recent window", "must not be negative, got %v", s.RecentWindow)
	}
	return nil
}

// alertLevel is the severity of an account balance. Alerts fire only when a
// transaction makes it worse.
type alertLevel int

const (
	levelOK alertLevel = iota
	levelLow
	levelOverdrawn
)

func (s Settings) level(balance Money) alertLevel {
	switch {
	case balance.IsNegative():
		return levelOverdrawn
	case balance.value.LessThanOrEqual(decimal.NewFromFloat(s.LowBalanceThreshold)):
		return levelLow
	default:
		return levelOK
	}
}

// alert is a notification waiting to be delivered.
type alert func(Notifier)

// isRecent reports whether tx is recent enough, at now, to trigger alerts.
//
// The transaction date starts at midnight in the location of now.
func (s Settings) isRecent(tx Transaction, now time.Time) bool {
	on := time.Date(tx.Date.Year(), tx.Date.Month(), tx.Date.Day(), 0, 0, 0, 0, now.Location())
	return now.Sub(on) < s.RecentWindow
}

// dueAlerts returns the notifications due for the bank transactions touched by a
// mutation.
//
// Touched transactions are evaluated in register order. Low balance and
// overdraft alerts compare the level of the balance before and after each
// transaction, so they fire only when that transaction crosses a threshold.
func (l *ledger) dueAlerts(accountID string, touched map[string]bool, now time.Time) []alert {
	if len(touched) == 0 {
		return nil
	}
	ai := l.account(accountID)
	if ai < 0 {
		return nil
	}
	cur := l.accounts[ai].Currency
	s := l.settings
	threshold := M(s.LowBalanceThreshold, cur)

	var out []alert
	for _, tx := range l.register(accountID) {
		if !touched[tx.ID] || !tx.IsBank() || !s.isRecent(tx, now) {
			continue
		}
		amount, payee, balance := tx.Amount, tx.Payee, tx.RunningBalance
		switch {
		case tx.Amount.IsPositive() && s.DepositAlerts:
			out = append(out, func(n Notifier) { n.NotifyDeposit(amount, payee, balance) })
		case tx.Amount.IsNegative() && s.DebitAlerts:
			out = append(out, func(n Notifier) { n.NotifyDebit(amount, payee, balance) })
		}

		prev, next := s.level(balance.Sub(amount)), s.level(balance)
		if next <= prev {
			continue
		}
		switch {
		case next == levelOverdrawn && s.OverdraftAlerts:
			out = append(out, func(n Notifier) { n.NotifyOverdraft(balance) })
		case prev < levelLow && s.LowBalanceAlerts:
			out = append(out, func(n Notifier) { n.NotifyLowBalance(balance, threshold) })
		}
	}
	return out
}

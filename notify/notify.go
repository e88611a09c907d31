// Package notify delivers checkbook balance alerts.
package notify

import (
	"github.com/etnz/checkbook"
	"github.com/rs/zerolog"
)

// Log is a checkbook.Notifier writing alerts to a logger.
type Log struct {
	Logger zerolog.Logger
}

func (n Log) NotifyDeposit(amount checkbook.Money, payee string, balance checkbook.Money) {
	n.Logger.Info().Str("alert", "deposit").Stringer("amount", amount).Str("payee", payee).Stringer("balance", balance).Msg("deposit received")
}

func (n Log) NotifyDebit(amount checkbook.Money, payee string, balance checkbook.Money) {
	n.Logger.Info().Str("alert", "debit").Stringer("amount", amount).Str("payee", payee).Stringer("balance", balance).Msg("debit posted")
}

func (n Log) NotifyLowBalance(balance, threshold checkbook.Money) {
	n.Logger.Warn().Str("alert", "low balance").Stringer("balance", balance).Stringer("threshold", threshold).Msg("balance is low")
}

func (n Log) NotifyOverdraft(balance checkbook.Money) {
	n.Logger.Warn().Str("alert", "overdraft").Stringer("balance", balance).Msg("account is overdrawn")
}

// Multi fans every alert out to all its notifiers, in order.
type Multi []checkbook.Notifier

func (m Multi) NotifyDeposit(amount checkbook.Money, payee string, balance checkbook.Money) {
	for _, n := range m {
		n.NotifyDeposit(amount, payee, balance)
	}
}

func (m Multi) NotifyDebit(amount checkbook.Money, payee string, balance checkbook.Money) {
	for _, n := range m {
		n.NotifyDebit(amount, payee, balance)
	}
}

func (m Multi) NotifyLowBalance(balance, threshold checkbook.Money) {
	for _, n := range m {
		n.NotifyLowBalance(balance, threshold)
	}
}

func (m Multi) NotifyOverdraft(balance checkbook.Money) {
	for _, n := range m {
		n.NotifyOverdraft(balance)
	}
}

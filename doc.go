// Package checkbook keeps bank account registers that merge the transactions
// entered by the user with the transactions reported by the bank.
//
// The core functionalities include:
//   - Store: the single authoritative state of the accounts and their
//     transactions. Every mutation is atomic and persisted through a Backend.
//   - Matcher: decides which manual entry an incoming bank transaction stands
//     for. A matched manual entry is converted in place, keeping its identity
//     and user notes, instead of being duplicated.
//   - Recompute: the deterministic running balance of a register.
//   - Alerts: deposit, debit, low balance and overdraft notifications for
//     recent bank activity, delivered to a Notifier.
//   - Advisor: an optional, fail closed, source of match and payee suggestions.
//
// Amounts are signed: credits are positive and debits negative, for every
// input including bank feeds.
//
// This package serves as the foundational logic for the `cbook` command-line
// tool.
package checkbook

package checkbook

import (
	"slices"
	"strings"
	"time"

	"github.com/etnz/checkbook/date"
	"github.com/shopspring/decimal"
)

// MatchRule names the rule that paired a manual entry with a bank transaction.
type MatchRule string

const (
	RulePayee   MatchRule = "payee"   // date, amount and payee agree
	RuleUnique  MatchRule = "unique"  // date and amount agree, and there is a single candidate
	RuleAdvisor MatchRule = "advisor" // proposed by an Advisor
)

// MatchOptions tunes the Matcher.
type MatchOptions struct {
	// MaxDays is the maximum number of days between a manual entry and its bank transaction.
	MaxDays int
	// UniqueCandidateFallback accepts a bank transaction whose payee does not
	// agree with any manual entry when exactly one manual entry agrees on date and amount.
	UniqueCandidateFallback bool
}

// DefaultMatchOptions returns the options used by a Store unless told otherwise.
func DefaultMatchOptions() MatchOptions {
	return MatchOptions{MaxDays: 3, UniqueCandidateFallback: true}
}

// Pair forces the match of a manual entry with the bank transaction at index
// Bank of a batch, as long as they still agree on account and amount.
type Pair struct {
	ManualID string
	Bank     int
}

// Conversion is a manual entry to convert using a bank transaction.
type Conversion struct {
	ManualID string
	Bank     int // index in the batch
	Rule     MatchRule
}

// MatchResult is the outcome of matching a bank batch against a register.
type MatchResult struct {
	Conversions []Conversion
	Unmatched   []int // batch indexes to insert as new bank transactions
	Duplicates  []int // batch indexes dropped by the dedup guard
}

// Matcher pairs incoming bank transactions with manual entries.
//
// Matching is greedy: bank transactions are processed in batch order, and each
// takes the first manual entry, in insertion order, that matches and is not
// already taken. This is not a globally optimal assignment.
//
// When no entry has an agreeing payee and UniqueCandidateFallback is set, a
// bank transaction takes the only untaken Candidate whatever its payee: users
// rarely type the merchant label the bank reports ("Gas Station" for
// "SHELL OIL #4521").
//
// Bank transactions already in the register are duplicates, see IsDuplicate.
// Two different external ids never designate the same transaction, even when
// their date, amount and payee are identical.
type Matcher struct {
	Options MatchOptions
}

// Candidate reports whether m can be converted using b: m is a pending manual
// entry of the same account, within MaxDays of b, with the same amount to the cent.
func (x Matcher) Candidate(m Transaction, b BankTxn) bool {
	if m.Source != Manual || m.IsOpeningBalance() || m.Reconciled || m.AccountID != b.AccountID {
		return false
	}
	if date.DaysBetween(m.Date, b.Date) > x.Options.MaxDays {
		return false
	}
	return sameAmount(m, b)
}

// Matches reports whether m is a Candidate for b and their payees agree.
func (x Matcher) Matches(m Transaction, b BankTxn) bool {
	return x.Candidate(m, b) && PayeesAgree(m.Payee, b.Payee)
}

func sameAmount(m Transaction, b BankTxn) bool {
	return m.Amount.WithinCent(Money{value: decimal.NewFromFloat(b.Amount)})
}

// IsDuplicate reports whether b was already ingested as existing.
//
// Bank identifiers are trusted when both sides have one. Otherwise the bank
// transaction is a duplicate when it has the same date, amount and payee.
func IsDuplicate(existing Transaction, b BankTxn) bool {
	if !existing.IsBank() || existing.AccountID != b.AccountID {
		return false
	}
	if existing.ExternalID != "" && b.ExternalID != "" {
		return existing.ExternalID == b.ExternalID
	}
	return existing.Date == b.Date &&
		existing.Amount.value.Equal(decimal.NewFromFloat(b.Amount)) &&
		strings.EqualFold(strings.TrimSpace(existing.Payee), strings.TrimSpace(b.Payee))
}

// Match matches a batch against the transactions of a register, given in insertion order.
//
// Bank transactions already in the register are dropped. Pinned pairs are
// honored first. Then each remaining bank transaction takes the first
// untaken manual entry that Matches, or, failing that and when enabled, the
// only untaken manual entry that is a Candidate.
func (x Matcher) Match(register []Transaction, batch []BankTxn, pinned []Pair) MatchResult {
	var res MatchResult
	taken := make(map[string]bool)
	done := make(map[int]bool)

	for i, b := range batch {
		for _, tx := range register {
			if IsDuplicate(tx, b) {
				res.Duplicates = append(res.Duplicates, i)
				done[i] = true
				break
			}
		}
	}

	for _, p := range pinned {
		if p.Bank < 0 || p.Bank >= len(batch) || done[p.Bank] || taken[p.ManualID] {
			continue
		}
		b := batch[p.Bank]
		for _, m := range register {
			if m.ID != p.ManualID {
				continue
			}
			if m.Source == Manual && !m.IsOpeningBalance() && !m.Reconciled && m.AccountID == b.AccountID && sameAmount(m, b) {
				res.Conversions = append(res.Conversions, Conversion{ManualID: m.ID, Bank: p.Bank, Rule: RuleAdvisor})
				taken[m.ID] = true
				done[p.Bank] = true
			}
			break
		}
	}

	for i, b := range batch {
		if done[i] {
			continue
		}
		c, ok := x.first(register, b, taken)
		if !ok {
			res.Unmatched = append(res.Unmatched, i)
			continue
		}
		res.Conversions = append(res.Conversions, Conversion{ManualID: c.ID, Bank: i, Rule: c.rule})
		taken[c.ID] = true
	}
	sortConversions(res.Conversions)
	return res
}

type choice struct {
	ID   string
	rule MatchRule
}

func (x Matcher) first(register []Transaction, b BankTxn, taken map[string]bool) (choice, bool) {
	var unique []string
	for _, m := range register {
		if taken[m.ID] || !x.Candidate(m, b) {
			continue
		}
		if PayeesAgree(m.Payee, b.Payee) {
			return choice{m.ID, RulePayee}, true
		}
		unique = append(unique, m.ID)
	}
	if x.Options.UniqueCandidateFallback && len(unique) == 1 {
		return choice{unique[0], RuleUnique}, true
	}
	return choice{}, false
}

// sortConversions orders conversions by batch index.
func sortConversions(cs []Conversion) {
	slices.SortStableFunc(cs, func(a, b Conversion) int { return a.Bank - b.Bank })
}

// Convert promotes the manual entry m into a bank transaction using b.
//
// The bank date, payee and amount replace m's, m keeps its identity and user
// notes, and the conversion is recorded in the notes. The result needs to be
// reconciled again.
func Convert(m Transaction, b BankTxn, postedAt time.Time) Transaction {
	m.Source = Bank
	m.Date = b.Date
	m.Payee = strings.TrimSpace(b.Payee)
	m.Amount = M(b.Amount, m.Amount.cur)
	m.Reconciled = false
	m.ExternalID = b.ExternalID
	m.PostedAt = postedAt
	if strings.TrimSpace(m.Notes) == "" {
		m.Notes = ConversionMarker
	} else {
		m.Notes = m.Notes + " " + ConversionMarker
	}
	return m
}

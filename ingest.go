package checkbook

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// BankSource delivers the bank transactions of an account.
type BankSource interface {
	Fetch(ctx context.Context, accountID string) ([]BankTxn, error)
}

// MatchProposal is a match suggested by an Advisor.
type MatchProposal struct {
	ManualID   string
	BankID     string // see BankRefs
	Confidence int    // 0 to 100
	Reasoning  string
}

// Advisor suggests matches and payees when the rules are not enough.
//
// Advisors never change the Store, and never fail: when they cannot answer
// they return nothing.
type Advisor interface {
	ProposeMatches(ctx context.Context, manual []Transaction, bank []BankTxn) []MatchProposal
	SuggestPayee(ctx context.Context, entered string, recentBankPayees []string) []string
}

// BankRefs returns the references of the transactions of a batch given to an
// Advisor: the bank identifier of the i-th transaction, or "#i" when it has
// none or shares it with another transaction of the batch.
func BankRefs(batch []BankTxn) []string {
	count := make(map[string]int, len(batch))
	for _, b := range batch {
		count[b.ExternalID]++
	}
	refs := make([]string, len(batch))
	for i, b := range batch {
		if b.ExternalID != "" && count[b.ExternalID] == 1 {
			refs[i] = b.ExternalID
		} else {
			refs[i] = "#" + strconv.Itoa(i)
		}
	}
	return refs
}

// validateBatch normalizes the account of every bank transaction and reports
// all invalid ones.
func validateBatch(accountID string, batch []BankTxn) ([]BankTxn, error) {
	out := make([]BankTxn, len(batch))
	var errs []error
	for i, b := range batch {
		if b.AccountID != "" && b.AccountID != accountID {
			errs = append(errs, invalid(fmt.Sprintf("batch[%d].account_id", i), "got %q, want %q", b.AccountID, accountID))
		}
		if err := validateEntry(strings.TrimSpace(b.Payee), b.Amount, b.Date); err != nil {
			errs = append(errs, fmt.Errorf("batch[%d]: %w", i, err))
		}
		b.AccountID = accountID
		out[i] = b
	}
	return out, errors.Join(errs...)
}

// IngestBankBatch merges a batch of bank transactions into an account.
//
// Transactions already ingested are dropped. Each remaining one either
// converts the manual entry it matches, or is inserted as a new reconciled
// bank transaction. Balances are recomputed once for the whole batch. An
// invalid transaction rejects the whole batch.
func (s *Store) IngestBankBatch(accountID string, batch []BankTxn) (IngestResult, error) {
	return s.ingest(accountID, batch, nil)
}

func (s *Store) ingest(accountID string, batch []BankTxn, pinned []Pair) (IngestResult, error) {
	batch, err := validateBatch(accountID, batch)
	if err != nil {
		return IngestResult{}, err
	}
	var res IngestResult
	err = s.mutate("ingest bank batch", func(l *ledger) (string, map[string]bool, error) {
		ai := l.account(accountID)
		if ai < 0 {
			return "", nil, invalid("account", "unknown account %q", accountID)
		}
		cur := l.accounts[ai].Currency
		var register []Transaction
		for _, tx := range l.transactions(accountID) {
			register = append(register, tx)
		}
		m := s.matcher.Match(register, batch, pinned)
		for _, i := range m.Duplicates {
			res.Duplicates = append(res.Duplicates, batch[i])
		}
		if len(m.Conversions)+len(m.Unmatched) == 0 {
			return accountID, nil, errNoChange
		}

		now := s.now()
		touched := make(map[string]bool)
		for _, c := range m.Conversions {
			i := l.index(c.ManualID)
			l.txs[i] = Convert(l.txs[i], batch[c.Bank], now)
			touched[c.ManualID] = true
			s.log.Debug().Str("id", c.ManualID).Str("rule", string(c.Rule)).Str("payee", batch[c.Bank].Payee).Msg("converted manual entry")
		}
		for _, i := range m.Unmatched {
			b := batch[i]
			tx := l.append(Transaction{
				ID:         s.newID(),
				AccountID:  accountID,
				Date:       b.Date,
				Payee:      strings.TrimSpace(b.Payee),
				Amount:     M(b.Amount, cur),
				Source:     Bank,
				Kind:       Regular,
				Reconciled: true,
				ExternalID: b.ExternalID,
				PostedAt:   now,
			})
			touched[tx.ID] = true
		}
		l.recompute(accountID)

		for _, c := range m.Conversions {
			res.Converted = append(res.Converted, l.txs[l.index(c.ManualID)])
		}
		for _, tx := range l.txs {
			if touched[tx.ID] && !slices.ContainsFunc(res.Converted, func(c Transaction) bool { return c.ID == tx.ID }) {
				res.Inserted = append(res.Inserted, tx)
			}
		}
		return accountID, touched, nil
	})
	if errors.Is(err, errNoChange) {
		err = nil
	}
	if err != nil {
		return IngestResult{}, err
	}
	s.log.Info().
		Str("account", accountID).
		Int("converted", len(res.Converted)).
		Int("inserted", len(res.Inserted)).
		Int("duplicates", len(res.Duplicates)).
		Msg("bank batch ingested")
	return res, nil
}

// errNoChange aborts a mutation that would not change anything.
var errNoChange = errors.New("no change")

// Sync fetches the bank transactions of an account and reconciles them.
//
// The source is called without holding the Store. If it fails, the error is a
// SyncTransportError. If ctx is done before the batch is applied, ctx error
// is returned. In both cases the Store is unchanged.
func (s *Store) Sync(ctx context.Context, accountID string, src BankSource) (IngestResult, error) {
	if _, err := s.Account(accountID); err != nil {
		return IngestResult{}, err
	}
	batch, err := src.Fetch(ctx, accountID)
	if err != nil {
		return IngestResult{}, &SyncTransportError{AccountID: accountID, Err: err}
	}
	s.log.Debug().Str("account", accountID).Int("fetched", len(batch)).Msg("bank batch fetched")
	return s.Reconcile(ctx, accountID, batch)
}

// Reconcile ingests a batch like IngestBankBatch, but first asks the Store
// advisor, if any, about the bank transactions that the rules leave unmatched.
// Proposals at or above the Store minimum confidence are applied through the
// same conversion as rule based matches.
func (s *Store) Reconcile(ctx context.Context, accountID string, batch []BankTxn) (IngestResult, error) {
	batch, err := validateBatch(accountID, batch)
	if err != nil {
		return IngestResult{}, err
	}
	var pinned []Pair
	if s.advisor != nil {
		pinned = s.propose(ctx, accountID, batch)
	}
	if err := ctx.Err(); err != nil {
		return IngestResult{}, err
	}
	return s.ingest(accountID, batch, pinned)
}

// propose runs the matcher on a snapshot, and asks the advisor to pair what is left.
func (s *Store) propose(ctx context.Context, accountID string, batch []BankTxn) []Pair {
	var register []Transaction
	s.view(func(l *ledger) {
		for _, tx := range l.transactions(accountID) {
			register = append(register, tx)
		}
	})
	m := s.matcher.Match(register, batch, nil)
	if len(m.Unmatched) == 0 {
		return nil
	}
	taken := make(map[string]bool)
	for _, c := range m.Conversions {
		taken[c.ManualID] = true
	}
	var manual []Transaction
	for _, tx := range register {
		if tx.Source == Manual && !tx.IsOpeningBalance() && !tx.Reconciled && !taken[tx.ID] {
			manual = append(manual, tx)
		}
	}
	if len(manual) == 0 {
		return nil
	}
	bank := make([]BankTxn, len(m.Unmatched))
	for j, i := range m.Unmatched {
		bank[j] = batch[i]
	}
	refs := make(map[string]int, len(bank))
	for j, ref := range BankRefs(bank) {
		refs[ref] = m.Unmatched[j]
	}

	proposals := s.advisor.ProposeMatches(ctx, manual, bank)
	slices.SortStableFunc(proposals, func(a, b MatchProposal) int { return b.Confidence - a.Confidence })
	var pinned []Pair
	used := make(map[string]bool)
	for _, p := range proposals {
		i, ok := refs[p.BankID]
		if !ok || p.Confidence < s.minConfidence || used[p.ManualID] || used[p.BankID] {
			continue
		}
		used[p.ManualID], used[p.BankID] = true, true
		pinned = append(pinned, Pair{ManualID: p.ManualID, Bank: i})
		s.log.Debug().Str("manual", p.ManualID).Str("bank", p.BankID).Int("confidence", p.Confidence).Str("reasoning", p.Reasoning).Msg("advisor proposal accepted")
	}
	return pinned
}

// SuggestPayees returns up to MaxPayeeSuggestions payees for what the user
// entered, from the recent bank payees of the account. The advisor is asked
// first, if any, then the rules.
func (s *Store) SuggestPayees(ctx context.Context, accountID, entered string) []string {
	recent := s.RecentPayees(accountID, 50)
	if s.advisor != nil {
		if got := s.advisor.SuggestPayee(ctx, entered, recent); len(got) > 0 {
			if len(got) > MaxPayeeSuggestions {
				got = got[:MaxPayeeSuggestions]
			}
			return got
		}
	}
	return SuggestPayees(entered, recent, MaxPayeeSuggestions)
}

package checkbook

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/etnz/checkbook/date"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OpeningBalancePayee is the payee of the opening balance marker of every account.
const OpeningBalancePayee = "Starting Balance"

// Store is the authoritative state of a set of account registers.
//
// Every mutation is atomic: it is applied to a copy of the state, persisted,
// and only then made visible. A failed mutation leaves the Store unchanged.
// Store is safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	state *ledger

	backend       Backend
	notifier      Notifier
	advisor       Advisor
	minConfidence int
	matcher       Matcher
	log           zerolog.Logger
	now           func() time.Time
	newID         func() string
	defaults      Settings
}

// Option configures a Store.
type Option func(*Store)

// WithNotifier sets the collaborator receiving balance alerts.
func WithNotifier(n Notifier) Option { return func(s *Store) { s.notifier = n } }

// WithAdvisor sets the advisor consulted by Reconcile, Sync and SuggestPayees.
// Proposed matches below minConfidence are ignored.
func WithAdvisor(a Advisor, minConfidence int) Option {
	return func(s *Store) {
		s.advisor = a
		s.minConfidence = minConfidence
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option { return func(s *Store) { s.log = l } }

// WithMatchOptions tunes the matcher.
func WithMatchOptions(o MatchOptions) Option { return func(s *Store) { s.matcher.Options = o } }

// WithClock sets the function returning the current time.
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// WithIDGenerator sets the function generating transaction and account ids.
func WithIDGenerator(f func() string) Option { return func(s *Store) { s.newID = f } }

// WithSettings sets the settings of a Store with no persisted settings.
func WithSettings(settings Settings) Option { return func(s *Store) { s.defaults = settings } }

// DefaultMinConfidence is the advisor confidence required to apply a proposed match.
const DefaultMinConfidence = 80

// New returns an empty in memory Store.
func New(opts ...Option) *Store {
	s := &Store{
		matcher:       Matcher{Options: DefaultMatchOptions()},
		log:           zerolog.Nop(),
		now:           time.Now,
		newID:         uuid.NewString,
		defaults:      DefaultSettings(),
		minConfidence: DefaultMinConfidence,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state = newLedger(s.defaults)
	return s
}

// Open returns a Store restored from backend, and saving every mutation to it.
//
// Restoring recomputes every balance and never notifies.
func Open(backend Backend, opts ...Option) (*Store, error) {
	s := New(opts...)
	entries, err := backend.Load()
	if err != nil {
		return nil, fmt.Errorf("loading store: %w", err)
	}
	state, err := decodeState(entries, s.defaults)
	if err != nil {
		return nil, fmt.Errorf("decoding store: %w", err)
	}
	s.state = state
	s.backend = backend
	s.log.Debug().Int("accounts", len(state.accounts)).Int("transactions", len(state.txs)).Msg("store restored")
	return s, nil
}

// mutate applies fn to a copy of the state, persists it, makes it current, and
// then delivers the alerts due for the bank transactions fn reports as touched.
func (s *Store) mutate(op string, fn func(l *ledger) (accountID string, touched map[string]bool, err error)) error {
	s.mu.Lock()
	next := s.state.clone()
	accountID, touched, err := fn(next)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	due := next.dueAlerts(accountID, touched, s.now())
	if err := s.commit(next); err != nil {
		s.mu.Unlock()
		s.log.Error().Err(err).Str("op", op).Msg("mutation not persisted")
		return fmt.Errorf("%s: %w", op, err)
	}
	s.mu.Unlock()
	s.log.Debug().Str("op", op).Str("account", accountID).Msg("committed")
	s.deliver(due)
	return nil
}

func (s *Store) commit(next *ledger) error {
	if s.backend != nil {
		entries, err := encodeState(next)
		if err != nil {
			return err
		}
		if err := s.backend.Save(entries); err != nil {
			return fmt.Errorf("saving store: %w", err)
		}
	}
	s.state = next
	return nil
}

// deliver calls the notifier. A panicking notifier is logged and ignored.
func (s *Store) deliver(due []alert) {
	if s.notifier == nil {
		return
	}
	for _, a := range due {
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.log.Error().Interface("panic", r).Msg("notifier failed")
				}
			}()
			a(s.notifier)
		}()
	}
}

// view runs fn on the current state under the lock.
func (s *Store) view(fn func(l *ledger)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.state)
}

// Accounts returns all accounts, in creation order.
func (s *Store) Accounts() []Account {
	var out []Account
	s.view(func(l *ledger) { out = slices.Clone(l.accounts) })
	return out
}

// Account returns the account id.
func (s *Store) Account(id string) (Account, error) {
	var acc Account
	var err error
	s.view(func(l *ledger) {
		i := l.account(id)
		if i < 0 {
			err = invalid("account", "unknown account %q", id)
			return
		}
		acc = l.accounts[i]
	})
	return acc, err
}

// ActiveAccount returns the active account, if any.
func (s *Store) ActiveAccount() (Account, bool) {
	var acc Account
	var ok bool
	s.view(func(l *ledger) {
		if i := l.account(l.active); i >= 0 {
			acc, ok = l.accounts[i], true
		}
	})
	return acc, ok
}

// SetActiveAccount makes id the active account.
func (s *Store) SetActiveAccount(id string) error {
	return s.mutate("set active account", func(l *ledger) (string, map[string]bool, error) {
		if l.account(id) < 0 {
			return "", nil, invalid("account", "unknown account %q", id)
		}
		l.active = id
		return id, nil, nil
	})
}

// CreateAccount creates an account and its opening balance marker. The first
// account created becomes the active one.
func (s *Store) CreateAccount(in NewAccount) (Account, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Account{}, invalid("name", "must not be empty")
	}
	typ, err := ParseAccountType(string(in.Type))
	if err != nil {
		return Account{}, &ValidationError{Field: "type", Reason: err.Error()}
	}
	cur := strings.ToUpper(strings.TrimSpace(in.Currency))
	if cur == "" {
		cur = DefaultCurrency
	}
	if money.GetCurrency(cur) == nil {
		return Account{}, invalid("currency", "unknown currency %q", in.Currency)
	}
	if !finite(in.StartingBalance) {
		return Account{}, invalid("starting balance", "must be a finite number, got %v", in.StartingBalance)
	}
	on := in.StartingDate
	if on.IsZero() {
		on = date.FromTime(s.now())
	}

	var acc Account
	err = s.mutate("create account", func(l *ledger) (string, map[string]bool, error) {
		balance := M(in.StartingBalance, cur)
		acc = Account{
			ID:              s.newID(),
			Name:            name,
			Type:            typ,
			Currency:        cur,
			StartingBalance: balance,
			StartingDate:    on,
			CurrentBalance:  balance,
			LinkToken:       in.LinkToken,
		}
		l.accounts = append(l.accounts, acc)
		l.append(Transaction{
			ID:         s.newID(),
			AccountID:  acc.ID,
			Date:       on,
			Payee:      OpeningBalancePayee,
			Amount:     balance,
			Source:     Manual,
			Kind:       OpeningBalance,
			Reconciled: true,
		})
		if l.active == "" {
			l.active = acc.ID
		}
		l.recompute(acc.ID)
		acc = l.accounts[l.account(acc.ID)]
		return acc.ID, nil, nil
	})
	return acc, err
}

// SetStartingBalance changes the opening balance of an account.
func (s *Store) SetStartingBalance(accountID string, amount float64, on date.Date) (Account, error) {
	if !finite(amount) {
		return Account{}, invalid("starting balance", "must be a finite number, got %v", amount)
	}
	var acc Account
	err := s.mutate("set starting balance", func(l *ledger) (string, map[string]bool, error) {
		ai := l.account(accountID)
		if ai < 0 {
			return "", nil, invalid("account", "unknown account %q", accountID)
		}
		l.setStartingBalance(ai, M(amount, l.accounts[ai].Currency), on)
		acc = l.accounts[ai]
		return accountID, nil, nil
	})
	return acc, err
}

// setStartingBalance updates the account at ai and its marker, and recomputes.
// A zero date keeps the current starting date.
func (l *ledger) setStartingBalance(ai int, balance Money, on date.Date) {
	acc := &l.accounts[ai]
	acc.StartingBalance = balance
	if !on.IsZero() {
		acc.StartingDate = on
	}
	if i := l.opening(acc.ID); i >= 0 {
		l.txs[i].Amount = acc.StartingBalance
		l.txs[i].Date = acc.StartingDate
	}
	l.recompute(acc.ID)
}

// AddManualTransaction records a transaction entered by the user.
func (s *Store) AddManualTransaction(accountID string, e ManualEntry) (Transaction, error) {
	payee := strings.TrimSpace(e.Payee)
	if err := validateEntry(payee, e.Amount, e.Date); err != nil {
		return Transaction{}, err
	}
	var tx Transaction
	err := s.mutate("add manual transaction", func(l *ledger) (string, map[string]bool, error) {
		ai := l.account(accountID)
		if ai < 0 {
			return "", nil, invalid("account", "unknown account %q", accountID)
		}
		l.append(Transaction{
			ID:          s.newID(),
			AccountID:   accountID,
			Date:        e.Date,
			Payee:       payee,
			Amount:      M(e.Amount, l.accounts[ai].Currency),
			Source:      Manual,
			Kind:        Regular,
			CheckNumber: strings.TrimSpace(e.CheckNumber),
			Notes:       e.Notes,
		})
		l.recompute(accountID)
		tx = l.txs[len(l.txs)-1]
		return accountID, nil, nil
	})
	return tx, err
}

// UpdateTransaction applies p to the transaction id.
//
// The date, payee, amount and check number of a bank transaction cannot be
// changed: a patch restating their current value is accepted, any other value
// is an ImmutableRecordError. The reconciled flag of manual entries is not
// changed. Changing the amount or date of an opening balance marker changes
// the account starting balance.
func (s *Store) UpdateTransaction(id string, p Patch) (Transaction, error) {
	var tx Transaction
	err := s.mutate("update transaction", func(l *ledger) (string, map[string]bool, error) {
		i := l.index(id)
		if i < 0 {
			return "", nil, invalid("id", "unknown transaction %q", id)
		}
		t := l.txs[i]
		if err := checkPatch(t, p); err != nil {
			return "", nil, err
		}
		if p.Date != nil {
			t.Date = *p.Date
		}
		if p.Payee != nil {
			t.Payee = strings.TrimSpace(*p.Payee)
		}
		if p.Amount != nil {
			t.Amount = M(*p.Amount, t.Amount.cur)
		}
		if p.Notes != nil {
			t.Notes = *p.Notes
		}
		if p.CheckNumber != nil {
			t.CheckNumber = strings.TrimSpace(*p.CheckNumber)
		}
		if p.Reconciled != nil && t.IsBank() {
			t.Reconciled = *p.Reconciled
		}
		l.txs[i] = t
		if t.IsOpeningBalance() {
			l.setStartingBalance(l.account(t.AccountID), t.Amount, t.Date)
		}
		l.recompute(t.AccountID)
		tx = l.txs[i]
		return t.AccountID, nil, nil
	})
	return tx, err
}

func checkPatch(t Transaction, p Patch) error {
	if t.IsBank() {
		switch {
		case p.Date != nil && *p.Date != t.Date:
			return &ImmutableRecordError{ID: t.ID, Field: "date"}
		case p.Payee != nil && strings.TrimSpace(*p.Payee) != t.Payee:
			return &ImmutableRecordError{ID: t.ID, Field: "payee"}
		case p.Amount != nil && !M(*p.Amount, t.Amount.cur).Equal(t.Amount):
			return &ImmutableRecordError{ID: t.ID, Field: "amount"}
		case p.CheckNumber != nil && strings.TrimSpace(*p.CheckNumber) != t.CheckNumber:
			return &ImmutableRecordError{ID: t.ID, Field: "check number"}
		}
	}
	payee, amount, on := t.Payee, 0.0, t.Date
	if p.Payee != nil {
		payee = strings.TrimSpace(*p.Payee)
	}
	if p.Amount != nil {
		amount = *p.Amount
	}
	if p.Date != nil {
		on = *p.Date
	}
	return validateEntry(payee, amount, on)
}

// DeleteTransaction removes a manual entry. Bank transactions and opening
// balance markers cannot be deleted.
func (s *Store) DeleteTransaction(id string) error {
	return s.mutate("delete transaction", func(l *ledger) (string, map[string]bool, error) {
		i := l.index(id)
		if i < 0 {
			return "", nil, invalid("id", "unknown transaction %q", id)
		}
		t := l.txs[i]
		switch {
		case t.IsBank():
			return "", nil, &ImmutableRecordError{ID: id}
		case t.IsOpeningBalance():
			return "", nil, invalid("id", "transaction %q is the opening balance of its account, change the starting balance instead", id)
		}
		l.txs = slices.Delete(l.txs, i, i+1)
		l.recompute(t.AccountID)
		return t.AccountID, nil, nil
	})
}

// ToggleReconciled flips the reconciled flag of a bank transaction. It does
// nothing to manual entries, which are reconciled by conversion only.
func (s *Store) ToggleReconciled(id string) (Transaction, error) {
	var tx Transaction
	err := s.mutate("toggle reconciled", func(l *ledger) (string, map[string]bool, error) {
		i := l.index(id)
		if i < 0 {
			return "", nil, invalid("id", "unknown transaction %q", id)
		}
		if l.txs[i].IsBank() {
			l.txs[i].Reconciled = !l.txs[i].Reconciled
		}
		tx = l.txs[i]
		return tx.AccountID, nil, nil
	})
	return tx, err
}

// Transactions returns the transactions of an account in register order, with
// their running balances.
func (s *Store) Transactions(accountID string) ([]Transaction, error) {
	var out []Transaction
	var err error
	s.view(func(l *ledger) {
		if l.account(accountID) < 0 {
			err = invalid("account", "unknown account %q", accountID)
			return
		}
		out = l.register(accountID)
	})
	return out, err
}

// Transaction returns the transaction id.
func (s *Store) Transaction(id string) (Transaction, error) {
	var tx Transaction
	var err error
	s.view(func(l *ledger) {
		i := l.index(id)
		if i < 0 {
			err = invalid("id", "unknown transaction %q", id)
			return
		}
		tx = l.txs[i]
	})
	return tx, err
}

// RecentPayees returns up to n distinct payees of the bank transactions of an
// account, most recent first.
func (s *Store) RecentPayees(accountID string, n int) []string {
	var out []string
	s.view(func(l *ledger) {
		register := l.register(accountID)
		seen := make(map[string]bool)
		for i := len(register) - 1; i >= 0 && len(out) < n; i-- {
			tx := register[i]
			key := strings.ToLower(tx.Payee)
			if !tx.IsBank() || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, tx.Payee)
		}
	})
	return out
}

// Settings returns the current settings.
func (s *Store) Settings() Settings {
	var settings Settings
	s.view(func(l *ledger) { settings = l.settings })
	return settings
}

// UpdateSettings replaces the settings.
func (s *Store) UpdateSettings(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	return s.mutate("update settings", func(l *ledger) (string, map[string]bool, error) {
		l.settings = settings
		return "", nil, nil
	})
}

func validateEntry(payee string, amount float64, on date.Date) error {
	var errs []error
	if payee == "" {
		errs = append(errs, invalid("payee", "must not be empty"))
	}
	if !finite(amount) {
		errs = append(errs, invalid("amount", "must be a finite number, got %v", amount))
	}
	if on.IsZero() {
		errs = append(errs, invalid("date", "is required"))
	}
	return errors.Join(errs...)
}

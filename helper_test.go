package checkbook

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/etnz/checkbook/date"
	"github.com/etnz/checkbook/kv"
)

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// d is a helper for test to parse dates.
func d(s string) date.Date { return date.MustParse(s) }

// sequentialIDs returns an id generator yielding "id-1", "id-2", ...
func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return "id-" + strconv.Itoa(n)
	}
}

// fixedClock returns a clock always at t.
func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

// recorder is a Notifier recording every call as a string.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) record(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recorder) NotifyDeposit(amount Money, payee string, balance Money) {
	r.record("deposit %s %s %s", amount, payee, balance)
}
func (r *recorder) NotifyDebit(amount Money, payee string, balance Money) {
	r.record("debit %s %s %s", amount, payee, balance)
}
func (r *recorder) NotifyLowBalance(balance, threshold Money) {
	r.record("low %s %s", balance, threshold)
}
func (r *recorder) NotifyOverdraft(balance Money) { r.record("overdraft %s", balance) }

func (r *recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// failingBackend is a kv.Memory that refuses to save when fail is set.
type failingBackend struct {
	*kv.Memory
	fail bool
}

var errDiskFull = errors.New("disk full")

func (b *failingBackend) Save(entries map[string][]byte) error {
	if b.fail {
		return errDiskFull
	}
	return b.Memory.Save(entries)
}

// sourceFunc adapts a function to a BankSource.
type sourceFunc func(ctx context.Context, accountID string) ([]BankTxn, error)

func (f sourceFunc) Fetch(ctx context.Context, accountID string) ([]BankTxn, error) {
	return f(ctx, accountID)
}

// now is the time of the test clock: the afternoon of 2024-01-06.
var now = time.Date(2024, time.January, 6, 15, 0, 0, 0, time.UTC)

// newTestStore returns a store with deterministic ids and clock, and an account
// "id-1" starting at $2500.00 on 2024-01-01.
func newTestStore(t *testing.T, opts ...Option) (*Store, Account) {
	t.Helper()
	opts = append([]Option{WithIDGenerator(sequentialIDs()), WithClock(fixedClock(now))}, opts...)
	s := New(opts...)
	acc, err := s.CreateAccount(NewAccount{Name: "Checking", StartingBalance: 2500, StartingDate: d("2024-01-01")})
	if err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	return s, acc
}

// checkBalances asserts the running balance invariant of an account.
func checkBalances(t *testing.T, s *Store, accountID string) {
	t.Helper()
	acc, err := s.Account(accountID)
	if err != nil {
		t.Fatalf("Account(%q) error = %v", accountID, err)
	}
	txs, err := s.Transactions(accountID)
	if err != nil {
		t.Fatalf("Transactions(%q) error = %v", accountID, err)
	}
	want := acc.StartingBalance
	for i, tx := range txs {
		if !tx.IsOpeningBalance() {
			want = want.Add(tx.Amount)
		}
		if !tx.RunningBalance.Equal(want) {
			t.Errorf("transaction #%d %q running balance = %v, want %v", i, tx.Payee, tx.RunningBalance, want)
		}
	}
	if !acc.CurrentBalance.Equal(want) {
		t.Errorf("CurrentBalance = %v, want %v", acc.CurrentBalance, want)
	}
}

package checkbook

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func manual(id, on, payee string, amount float64) Transaction {
	return Transaction{ID: id, AccountID: "acc", Date: d(on), Payee: payee, Amount: USD(amount), Source: Manual, Kind: Regular}
}

func bankTx(id, on, payee string, amount float64) Transaction {
	tx := manual(id, on, payee, amount)
	tx.Source, tx.Reconciled = Bank, true
	return tx
}

func TestMatcher_Candidate(t *testing.T) {
	m := Matcher{Options: DefaultMatchOptions()}
	b := BankTxn{AccountID: "acc", Date: d("2024-01-06"), Payee: "SHELL OIL #4521", Amount: -45.20}

	reconciled := manual("m", "2024-01-05", "Shell", -45.20)
	reconciled.Reconciled = true
	opening := manual("m", "2024-01-05", "Shell", -45.20)
	opening.Kind = OpeningBalance
	other := manual("m", "2024-01-05", "Shell", -45.20)
	other.AccountID = "other"

	testCases := []struct {
		name string
		tx   Transaction
		want bool
	}{
		{"one day before", manual("m", "2024-01-05", "Shell", -45.20), true},
		{"three days after", manual("m", "2024-01-09", "Shell", -45.20), true},
		{"four days before", manual("m", "2024-01-02", "Shell", -45.20), false},
		{"amount within a cent", manual("m", "2024-01-06", "Shell", -45.205), true},
		{"amount off by a cent", manual("m", "2024-01-06", "Shell", -45.21), false},
		{"opposite sign", manual("m", "2024-01-06", "Shell", 45.20), false},
		{"bank sourced", bankTx("m", "2024-01-06", "Shell", -45.20), false},
		{"reconciled", reconciled, false},
		{"opening balance", opening, false},
		{"other account", other, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := m.Candidate(tc.tx, b); got != tc.want {
				t.Errorf("Candidate() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMatcher_Match(t *testing.T) {
	register := []Transaction{
		manual("gas", "2024-01-05", "Gas Station", -45.20),
		manual("coffee1", "2024-01-05", "Starbucks", -5.75),
		manual("coffee2", "2024-01-06", "Starbucks", -5.75),
		bankTx("rent", "2024-01-01", "LANDLORD LLC", -1500),
		manual("tea", "2024-01-05", "Tea House", -12),
		manual("tea2", "2024-01-05", "Tea Room", -12),
	}
	batch := []BankTxn{
		{AccountID: "acc", Date: d("2024-01-06"), Payee: "SHELL OIL #4521", Amount: -45.20},   // unique candidate
		{AccountID: "acc", Date: d("2024-01-06"), Payee: "STARBUCKS #99", Amount: -5.75},      // first of two
		{AccountID: "acc", Date: d("2024-01-07"), Payee: "STARBUCKS #99", Amount: -5.75},      // second of two
		{AccountID: "acc", Date: d("2024-01-01"), Payee: "Landlord LLC", Amount: -1500},       // duplicate
		{AccountID: "acc", Date: d("2024-01-06"), Payee: "BOBA PLACE", Amount: -12},           // two candidates, no payee agreement
		{AccountID: "acc", Date: d("2024-01-06"), Payee: "AMAZON MKTPLACE", Amount: -23.99},   // nothing
	}

	got := Matcher{Options: DefaultMatchOptions()}.Match(register, batch, nil)

	want := MatchResult{
		Conversions: []Conversion{
			{ManualID: "gas", Bank: 0, Rule: RuleUnique},
			{ManualID: "coffee1", Bank: 1, Rule: RulePayee},
			{ManualID: "coffee2", Bank: 2, Rule: RulePayee},
		},
		Unmatched:  []int{4, 5},
		Duplicates: []int{3},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Match() = %+v, want %+v", got, want)
	}
}

func TestMatcher_NoFallback(t *testing.T) {
	register := []Transaction{manual("gas", "2024-01-05", "Gas Station", -45.20)}
	batch := []BankTxn{{AccountID: "acc", Date: d("2024-01-06"), Payee: "SHELL OIL #4521", Amount: -45.20}}

	got := Matcher{Options: MatchOptions{MaxDays: 3}}.Match(register, batch, nil)
	if len(got.Conversions) != 0 || !reflect.DeepEqual(got.Unmatched, []int{0}) {
		t.Errorf("Match() = %+v, want the bank transaction unmatched", got)
	}
}

func TestMatcher_Pinned(t *testing.T) {
	register := []Transaction{
		manual("tea", "2024-01-05", "Tea House", -12),
		manual("tea2", "2024-01-05", "Tea Room", -12),
		manual("far", "2023-12-01", "Plumber", -240),
	}
	batch := []BankTxn{
		{AccountID: "acc", Date: d("2024-01-06"), Payee: "BOBA PLACE", Amount: -12},
		{AccountID: "acc", Date: d("2024-01-06"), Payee: "JOHN SMITH", Amount: -240},
		{AccountID: "acc", Date: d("2024-01-06"), Payee: "MISMATCH", Amount: -99},
	}
	pinned := []Pair{
		{ManualID: "tea2", Bank: 0},
		{ManualID: "far", Bank: 1},   // outside the date window, but pinned
		{ManualID: "tea", Bank: 2},   // amounts disagree, ignored
		{ManualID: "ghost", Bank: 2}, // unknown, ignored
	}

	got := Matcher{Options: DefaultMatchOptions()}.Match(register, batch, pinned)

	want := MatchResult{
		Conversions: []Conversion{
			{ManualID: "tea2", Bank: 0, Rule: RuleAdvisor},
			{ManualID: "far", Bank: 1, Rule: RuleAdvisor},
		},
		Unmatched: []int{2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Match() = %+v, want %+v", got, want)
	}
}

func TestIsDuplicate(t *testing.T) {
	existing := bankTx("x", "2024-01-06", "SHELL OIL #4521", -45.20)
	withID := existing
	withID.ExternalID = "plaid-1"

	testCases := []struct {
		name     string
		existing Transaction
		b        BankTxn
		want     bool
	}{
		{"same fields", existing, BankTxn{AccountID: "acc", Date: d("2024-01-06"), Payee: "SHELL OIL #4521", Amount: -45.20}, true},
		{"other payee", existing, BankTxn{AccountID: "acc", Date: d("2024-01-06"), Payee: "SHELL", Amount: -45.20}, false},
		{"other date", existing, BankTxn{AccountID: "acc", Date: d("2024-01-07"), Payee: "SHELL OIL #4521", Amount: -45.20}, false},
		{"same external id", withID, BankTxn{AccountID: "acc", Date: d("2024-01-07"), Payee: "SHELL", Amount: -45, ExternalID: "plaid-1"}, true},
		{"other external id", withID, BankTxn{AccountID: "acc", Date: d("2024-01-06"), Payee: "SHELL OIL #4521", Amount: -45.20, ExternalID: "plaid-2"}, false},
		{"one external id", existing, BankTxn{AccountID: "acc", Date: d("2024-01-06"), Payee: "SHELL OIL #4521", Amount: -45.20, ExternalID: "plaid-2"}, true},
		{"manual", manual("x", "2024-01-06", "SHELL OIL #4521", -45.20), BankTxn{AccountID: "acc", Date: d("2024-01-06"), Payee: "SHELL OIL #4521", Amount: -45.20}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsDuplicate(tc.existing, tc.b); got != tc.want {
				t.Errorf("IsDuplicate() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestConvert(t *testing.T) {
	m := manual("gas", "2024-01-05", "Gas Station", -45.20)
	m.Notes = "lunch"
	m.CheckNumber = "1042"
	b := BankTxn{AccountID: "acc", Date: d("2024-01-06"), Payee: "SHELL OIL #4521", Amount: -45.21, ExternalID: "plaid-1"}
	posted := time.Date(2024, time.January, 6, 15, 0, 0, 0, time.UTC)

	got := Convert(m, b, posted)

	if got.ID != "gas" || got.CheckNumber != "1042" {
		t.Errorf("Convert() lost the manual identity: %+v", got)
	}
	if got.Source != Bank || got.Reconciled {
		t.Errorf("Convert() source = %v, reconciled = %v, want bank and false", got.Source, got.Reconciled)
	}
	if got.Date != b.Date || got.Payee != b.Payee || !got.Amount.Equal(USD(-45.21)) {
		t.Errorf("Convert() = %v %q %v, want the bank values", got.Date, got.Payee, got.Amount)
	}
	if !strings.HasPrefix(got.Notes, "lunch") || !strings.HasSuffix(got.Notes, ConversionMarker) {
		t.Errorf("Convert() notes = %q, want %q kept and the marker appended", got.Notes, "lunch")
	}
	if got.ExternalID != "plaid-1" || !got.PostedAt.Equal(posted) {
		t.Errorf("Convert() external id = %q, posted at = %v", got.ExternalID, got.PostedAt)
	}

	m.Notes = ""
	if got := Convert(m, b, posted); got.Notes != ConversionMarker {
		t.Errorf("Convert() notes = %q, want %q", got.Notes, ConversionMarker)
	}
}

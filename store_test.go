package checkbook

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestStore_GasStationScenario(t *testing.T) {
	s, acc := newTestStore(t)
	gas, err := s.AddManualTransaction(acc.ID, ManualEntry{Date: d("2024-01-05"), Payee: "Gas Station", Amount: -45.20})
	if err != nil {
		t.Fatalf("AddManualTransaction() error = %v", err)
	}

	res, err := s.IngestBankBatch(acc.ID, []BankTxn{{Date: d("2024-01-06"), Payee: "SHELL OIL #4521", Amount: -45.20}})
	if err != nil {
		t.Fatalf("IngestBankBatch() error = %v", err)
	}
	if len(res.Converted) != 1 || len(res.Inserted) != 0 {
		t.Fatalf("IngestBankBatch() = %d converted, %d inserted, want 1 and 0", len(res.Converted), len(res.Inserted))
	}

	got, err := s.Transaction(gas.ID)
	if err != nil {
		t.Fatalf("Transaction(%q) error = %v", gas.ID, err)
	}
	if got.Source != Bank || got.Reconciled {
		t.Errorf("converted source = %v, reconciled = %v, want bank and false", got.Source, got.Reconciled)
	}
	if got.Date != d("2024-01-06") || got.Payee != "SHELL OIL #4521" || !got.Amount.Equal(USD(-45.20)) {
		t.Errorf("converted = %v %q %v, want the bank values", got.Date, got.Payee, got.Amount)
	}
	if !strings.Contains(got.Notes, ConversionMarker) {
		t.Errorf("converted notes = %q, want the conversion marker", got.Notes)
	}

	acc, _ = s.Account(acc.ID)
	if want := USD(2454.80); !acc.CurrentBalance.Equal(want) {
		t.Errorf("CurrentBalance = %v, want %v", acc.CurrentBalance, want)
	}
	txs, _ := s.Transactions(acc.ID)
	if len(txs) != 2 { // opening balance and the converted entry
		t.Errorf("got %d transactions, want 2", len(txs))
	}
	checkBalances(t, s, acc.ID)
}

func TestStore_RetriedBatch(t *testing.T) {
	s, acc := newTestStore(t)
	if _, err := s.AddManualTransaction(acc.ID, ManualEntry{Date: d("2024-01-05"), Payee: "Gas Station", Amount: -45.20}); err != nil {
		t.Fatalf("AddManualTransaction() error = %v", err)
	}
	batch := []BankTxn{
		{Date: d("2024-01-06"), Payee: "SHELL OIL #4521", Amount: -45.20},
		{Date: d("2024-01-06"), Payee: "PAYROLL ACME", Amount: 1800},
		{Date: d("2024-01-04"), Payee: "NETFLIX.COM", Amount: -15.49, ExternalID: "tx-77"},
	}

	if _, err := s.IngestBankBatch(acc.ID, batch); err != nil {
		t.Fatalf("first IngestBankBatch() error = %v", err)
	}
	first, _ := s.Transactions(acc.ID)

	res, err := s.IngestBankBatch(acc.ID, batch)
	if err != nil {
		t.Fatalf("second IngestBankBatch() error = %v", err)
	}
	if res.Changed() || len(res.Duplicates) != len(batch) {
		t.Errorf("second IngestBankBatch() = %+v, want every transaction reported as duplicate", res)
	}
	second, _ := s.Transactions(acc.ID)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("transactions changed after a retried batch:\n%v\n%v", first, second)
	}
	if len(second) != 4 {
		t.Errorf("got %d transactions, want 4", len(second))
	}
}

func TestStore_DeleteBankTransaction(t *testing.T) {
	s, acc := newTestStore(t)
	res, err := s.IngestBankBatch(acc.ID, []BankTxn{{Date: d("2024-01-06"), Payee: "PAYROLL ACME", Amount: 1800}})
	if err != nil {
		t.Fatalf("IngestBankBatch() error = %v", err)
	}
	before, _ := s.Transactions(acc.ID)

	err = s.DeleteTransaction(res.Inserted[0].ID)
	var immutable *ImmutableRecordError
	if !errors.As(err, &immutable) {
		t.Fatalf("DeleteTransaction() error = %v, want an ImmutableRecordError", err)
	}
	after, _ := s.Transactions(acc.ID)
	if !reflect.DeepEqual(before, after) {
		t.Errorf("transactions changed after a rejected delete:\n%v\n%v", before, after)
	}
}

func TestStore_UpdateBankTransaction(t *testing.T) {
	s, acc := newTestStore(t)
	res, err := s.IngestBankBatch(acc.ID, []BankTxn{{Date: d("2024-01-06"), Payee: "PAYROLL ACME", Amount: 1800}})
	if err != nil {
		t.Fatalf("IngestBankBatch() error = %v", err)
	}
	id := res.Inserted[0].ID
	other, same := 1900.0, 1800.0
	payee, samePayee := "ACME", "PAYROLL ACME"
	on, sameDate := d("2024-01-07"), d("2024-01-06")
	notes, reconciled := "january", false

	testCases := []struct {
		name  string
		patch Patch
		field string // expected locked field, empty if accepted
	}{
		{"amount", Patch{Amount: &other}, "amount"},
		{"payee", Patch{Payee: &payee}, "payee"},
		{"date", Patch{Date: &on}, "date"},
		{"restated values", Patch{Amount: &same, Payee: &samePayee, Date: &sameDate}, ""},
		{"notes and flag", Patch{Notes: &notes, Reconciled: &reconciled}, ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			before, _ := s.Transaction(id)
			got, err := s.UpdateTransaction(id, tc.patch)
			if tc.field != "" {
				var immutable *ImmutableRecordError
				if !errors.As(err, &immutable) || immutable.Field != tc.field {
					t.Fatalf("UpdateTransaction() error = %v, want an ImmutableRecordError on %s", err, tc.field)
				}
				after, _ := s.Transaction(id)
				if !reflect.DeepEqual(before, after) {
					t.Errorf("transaction changed after a rejected update: %+v", after)
				}
				return
			}
			if err != nil {
				t.Fatalf("UpdateTransaction() error = %v", err)
			}
			if !got.Amount.Equal(USD(1800)) || got.Payee != "PAYROLL ACME" {
				t.Errorf("UpdateTransaction() = %+v", got)
			}
		})
	}

	got, _ := s.Transaction(id)
	if got.Notes != "january" || got.Reconciled {
		t.Errorf("notes = %q, reconciled = %v, want %q and false", got.Notes, got.Reconciled, "january")
	}
	checkBalances(t, s, acc.ID)
}

func TestStore_ManualLifecycle(t *testing.T) {
	s, acc := newTestStore(t)
	tx, err := s.AddManualTransaction(acc.ID, ManualEntry{Date: d("2024-01-03"), Payee: " Hardware Store ", Amount: -82.10, CheckNumber: "1001", Notes: "shelves"})
	if err != nil {
		t.Fatalf("AddManualTransaction() error = %v", err)
	}
	if tx.Payee != "Hardware Store" || tx.Source != Manual || tx.Reconciled || !tx.RunningBalance.Equal(USD(2417.90)) {
		t.Errorf("AddManualTransaction() = %+v", tx)
	}

	// the reconciled flag of a manual entry is only set by conversion
	if got, err := s.ToggleReconciled(tx.ID); err != nil || got.Reconciled {
		t.Errorf("ToggleReconciled() = %v, %v, want a no-op", got.Reconciled, err)
	}

	on, amount := d("2023-12-30"), -80.0
	tx, err = s.UpdateTransaction(tx.ID, Patch{Date: &on, Amount: &amount})
	if err != nil {
		t.Fatalf("UpdateTransaction() error = %v", err)
	}
	txs, _ := s.Transactions(acc.ID)
	if !txs[0].IsOpeningBalance() || txs[1].ID != tx.ID {
		t.Errorf("register order = %v, want the opening balance first even after an earlier entry", txs)
	}
	checkBalances(t, s, acc.ID)

	if err := s.DeleteTransaction(tx.ID); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}
	if _, err := s.Transaction(tx.ID); err == nil {
		t.Errorf("Transaction(%q) found a deleted transaction", tx.ID)
	}
	acc, _ = s.Account(acc.ID)
	if !acc.CurrentBalance.Equal(USD(2500)) {
		t.Errorf("CurrentBalance = %v, want %v", acc.CurrentBalance, USD(2500))
	}
}

func TestStore_ToggleReconciledBank(t *testing.T) {
	s, acc := newTestStore(t)
	res, err := s.IngestBankBatch(acc.ID, []BankTxn{{Date: d("2024-01-06"), Payee: "PAYROLL ACME", Amount: 1800}})
	if err != nil {
		t.Fatalf("IngestBankBatch() error = %v", err)
	}
	tx := res.Inserted[0]
	if !tx.Reconciled {
		t.Fatalf("inserted bank transaction is not reconciled")
	}
	for _, want := range []bool{false, true} {
		got, err := s.ToggleReconciled(tx.ID)
		if err != nil || got.Reconciled != want {
			t.Errorf("ToggleReconciled() = %v, %v, want %v", got.Reconciled, err, want)
		}
	}
}

func TestStore_OpeningBalance(t *testing.T) {
	s, acc := newTestStore(t)
	txs, _ := s.Transactions(acc.ID)
	opening := txs[0]
	if !opening.IsOpeningBalance() || !opening.Amount.Equal(USD(2500)) || !opening.Reconciled {
		t.Fatalf("opening balance = %+v", opening)
	}

	err := s.DeleteTransaction(opening.ID)
	var invalid *ValidationError
	if !errors.As(err, &invalid) {
		t.Errorf("DeleteTransaction(opening) error = %v, want a ValidationError", err)
	}

	amount := 3000.0
	if _, err := s.UpdateTransaction(opening.ID, Patch{Amount: &amount}); err != nil {
		t.Fatalf("UpdateTransaction(opening) error = %v", err)
	}
	acc, _ = s.Account(acc.ID)
	if !acc.StartingBalance.Equal(USD(3000)) || !acc.CurrentBalance.Equal(USD(3000)) {
		t.Errorf("account = %v / %v, want the new starting balance", acc.StartingBalance, acc.CurrentBalance)
	}

	// a manual entry paying the same amount as the opening balance is never matched to it.
	res, err := s.IngestBankBatch(acc.ID, []BankTxn{{Date: d("2024-01-01"), Payee: "Starting Balance", Amount: 3000}})
	if err != nil {
		t.Fatalf("IngestBankBatch() error = %v", err)
	}
	if len(res.Converted) != 0 || len(res.Inserted) != 1 {
		t.Errorf("IngestBankBatch() = %+v, want the bank transaction inserted", res)
	}
}

func TestStore_Validation(t *testing.T) {
	s, acc := newTestStore(t)
	nan := func() float64 { var zero float64; return zero / zero }()

	testCases := []struct {
		name string
		do   func() error
	}{
		{"unknown account", func() error {
			_, err := s.AddManualTransaction("nope", ManualEntry{Date: d("2024-01-05"), Payee: "x", Amount: 1})
			return err
		}},
		{"empty payee", func() error {
			_, err := s.AddManualTransaction(acc.ID, ManualEntry{Date: d("2024-01-05"), Payee: "  ", Amount: 1})
			return err
		}},
		{"non finite amount", func() error {
			_, err := s.AddManualTransaction(acc.ID, ManualEntry{Date: d("2024-01-05"), Payee: "x", Amount: nan})
			return err
		}},
		{"missing date", func() error {
			_, err := s.AddManualTransaction(acc.ID, ManualEntry{Payee: "x", Amount: 1})
			return err
		}},
		{"batch for another account", func() error {
			_, err := s.IngestBankBatch(acc.ID, []BankTxn{
				{Date: d("2024-01-05"), Payee: "ok", Amount: 1},
				{AccountID: "other", Date: d("2024-01-05"), Payee: "x", Amount: 1},
			})
			return err
		}},
		{"invalid bank transaction", func() error {
			_, err := s.IngestBankBatch(acc.ID, []BankTxn{{Date: d("2024-01-05"), Payee: "", Amount: 1}})
			return err
		}},
		{"unknown transaction", func() error { return s.DeleteTransaction("nope") }},
		{"unknown currency", func() error {
			_, err := s.CreateAccount(NewAccount{Name: "x", Currency: "XYZW"})
			return err
		}},
		{"unknown account type", func() error {
			_, err := s.CreateAccount(NewAccount{Name: "x", Type: "brokerage"})
			return err
		}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.do()
			var invalid *ValidationError
			if !errors.As(err, &invalid) {
				t.Errorf("error = %v, want a ValidationError", err)
			}
		})
	}

	txs, _ := s.Transactions(acc.ID)
	if len(txs) != 1 || len(s.Accounts()) != 1 {
		t.Errorf("store changed after rejected calls: %d transactions, %d accounts", len(txs), len(s.Accounts()))
	}
}

func TestStore_Accounts(t *testing.T) {
	s, checking := newTestStore(t)
	savings, err := s.CreateAccount(NewAccount{Name: "Rainy day", Type: Savings, StartingBalance: 10000, StartingDate: d("2024-01-01")})
	if err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}

	active, ok := s.ActiveAccount()
	if !ok || active.ID != checking.ID {
		t.Errorf("ActiveAccount() = %v, %v, want the first account", active.ID, ok)
	}
	if err := s.SetActiveAccount(savings.ID); err != nil {
		t.Fatalf("SetActiveAccount() error = %v", err)
	}
	if active, _ := s.ActiveAccount(); active.ID != savings.ID {
		t.Errorf("ActiveAccount() = %v, want %v", active.ID, savings.ID)
	}

	// transactions of one account never match or affect another one
	if _, err := s.AddManualTransaction(checking.ID, ManualEntry{Date: d("2024-01-05"), Payee: "Gas Station", Amount: -45.20}); err != nil {
		t.Fatalf("AddManualTransaction() error = %v", err)
	}
	res, err := s.IngestBankBatch(savings.ID, []BankTxn{{Date: d("2024-01-06"), Payee: "Gas Station", Amount: -45.20}})
	if err != nil {
		t.Fatalf("IngestBankBatch() error = %v", err)
	}
	if len(res.Converted) != 0 {
		t.Errorf("a bank transaction converted a manual entry of another account")
	}
	savings, _ = s.Account(savings.ID)
	if !savings.CurrentBalance.Equal(USD(9954.80)) {
		t.Errorf("savings balance = %v, want %v", savings.CurrentBalance, USD(9954.80))
	}
	checkBalances(t, s, checking.ID)
	checkBalances(t, s, savings.ID)
}

func TestStore_RecentPayees(t *testing.T) {
	s, acc := newTestStore(t)
	_, err := s.IngestBankBatch(acc.ID, []BankTxn{
		{Date: d("2024-01-02"), Payee: "STARBUCKS #99", Amount: -5},
		{Date: d("2024-01-03"), Payee: "SHELL OIL", Amount: -40},
		{Date: d("2024-01-04"), Payee: "Starbucks #99", Amount: -6},
	})
	if err != nil {
		t.Fatalf("IngestBankBatch() error = %v", err)
	}
	got := s.RecentPayees(acc.ID, 5)
	if want := []string{"Starbucks #99", "SHELL OIL"}; !reflect.DeepEqual(got, want) {
		t.Errorf("RecentPayees() = %q, want %q", got, want)
	}
}

package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/checkbook"
	"github.com/etnz/checkbook/date"
	"github.com/etnz/checkbook/renderer"
	"github.com/google/subcommands"
)

type addCmd struct {
	account string
	date    string
	payee   string
	amount  float64
	notes   string
	check   string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "enter a manual transaction" }
func (*addCmd) Usage() string {
	return `cbook add [-a <account>] [-d <date>] -p <payee> -m <amount> [-n <notes>] [-c <check>]

  Enters a transaction by hand. Negative amounts are debits. The entry stays
  pending until the bank reports it, it is then converted in place.

Usage Examples:
$ cbook add -p "Gas Station" -m -45.20
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "a", "", "Account id. Defaults to the active account.")
	f.StringVar(&c.date, "d", date.Today().String(), "Transaction date")
	f.StringVar(&c.payee, "p", "", "Payee")
	f.Float64Var(&c.amount, "m", 0, "Amount, negative for a debit")
	f.StringVar(&c.notes, "n", "", "Notes")
	f.StringVar(&c.check, "c", "", "Check number")
}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	a, err := openApp(ctx, false)
	if err != nil {
		return fail("Error: %v", err)
	}
	defer a.Close()

	id, err := a.accountID(c.account)
	if err != nil {
		return fail("Error: %v", err)
	}
	tx, err := a.store.AddManualTransaction(id, checkbook.ManualEntry{
		Date:        on,
		Payee:       c.payee,
		Amount:      c.amount,
		Notes:       c.notes,
		CheckNumber: c.check,
	})
	if err != nil {
		return fail("Error adding transaction: %v", err)
	}
	fmt.Printf("Added %s %s %s (%s)\n", tx.Date, tx.Payee, tx.Amount.SignedString(), tx.ID)
	return subcommands.ExitSuccess
}

type editCmd struct {
	date       string
	payee      string
	amount     float64
	notes      string
	check      string
	reconciled bool
}

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "change fields of a transaction" }
func (*editCmd) Usage() string {
	return `cbook edit [-d <date>] [-p <payee>] [-m <amount>] [-n <notes>] [-c <check>] [-r] <transaction id>

  Only the flags given are changed. Bank transactions only accept notes and
  the reconciled flag.
`
}

func (c *editCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Transaction date")
	f.StringVar(&c.payee, "p", "", "Payee")
	f.Float64Var(&c.amount, "m", 0, "Amount, negative for a debit")
	f.StringVar(&c.notes, "n", "", "Notes")
	f.StringVar(&c.check, "c", "", "Check number")
	f.BoolVar(&c.reconciled, "r", false, "Reconciled flag")
}

func (c *editCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: edit takes exactly one transaction id.")
		return subcommands.ExitUsageError
	}
	var p checkbook.Patch
	set := visited(f)
	if set["d"] {
		on, err := date.Parse(c.date)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitUsageError
		}
		p.Date = &on
	}
	if set["p"] {
		p.Payee = &c.payee
	}
	if set["m"] {
		p.Amount = &c.amount
	}
	if set["n"] {
		p.Notes = &c.notes
	}
	if set["c"] {
		p.CheckNumber = &c.check
	}
	if set["r"] {
		p.Reconciled = &c.reconciled
	}

	a, err := openApp(ctx, false)
	if err != nil {
		return fail("Error: %v", err)
	}
	defer a.Close()

	tx, err := a.store.UpdateTransaction(f.Arg(0), p)
	if err != nil {
		return fail("Error: %v", err)
	}
	fmt.Printf("Updated %s %s %s\n", tx.Date, tx.Payee, tx.Amount.SignedString())
	return subcommands.ExitSuccess
}

type rmCmd struct{}

func (*rmCmd) Name() string     { return "rm" }
func (*rmCmd) Synopsis() string { return "delete manual transactions" }
func (*rmCmd) Usage() string {
	return `cbook rm <transaction id>...

  Deletes manual transactions. Bank transactions cannot be deleted.
`
}

func (*rmCmd) SetFlags(f *flag.FlagSet) {}

func (c *rmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: rm takes at least one transaction id.")
		return subcommands.ExitUsageError
	}
	a, err := openApp(ctx, false)
	if err != nil {
		return fail("Error: %v", err)
	}
	defer a.Close()

	status := subcommands.ExitSuccess
	for _, id := range f.Args() {
		if err := a.store.DeleteTransaction(id); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			status = subcommands.ExitFailure
		}
	}
	return status
}

type toggleCmd struct{}

func (*toggleCmd) Name() string     { return "toggle" }
func (*toggleCmd) Synopsis() string { return "flip the reconciled flag of bank transactions" }
func (*toggleCmd) Usage() string {
	return `cbook toggle <transaction id>...

  Marks bank transactions as reviewed, or back to review. Manual transactions
  are left unchanged.
`
}

func (*toggleCmd) SetFlags(f *flag.FlagSet) {}

func (c *toggleCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: toggle takes at least one transaction id.")
		return subcommands.ExitUsageError
	}
	a, err := openApp(ctx, false)
	if err != nil {
		return fail("Error: %v", err)
	}
	defer a.Close()

	status := subcommands.ExitSuccess
	for _, id := range f.Args() {
		tx, err := a.store.ToggleReconciled(id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			status = subcommands.ExitFailure
			continue
		}
		fmt.Printf("%s %s is %s\n", tx.Date, tx.Payee, renderer.Status(tx))
	}
	return status
}

type registerCmd struct {
	account string
	tail    int
}

func (*registerCmd) Name() string     { return "register" }
func (*registerCmd) Synopsis() string { return "display an account register with running balances" }
func (*registerCmd) Usage() string {
	return `cbook register [-a <account>] [-tail <n>]

  Displays the register of an account in chronological order.
`
}

func (c *registerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "a", "", "Account id. Defaults to the active account.")
	f.IntVar(&c.tail, "tail", 0, "Show only the last N transactions.")
}

func (c *registerCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx, false)
	if err != nil {
		return fail("Error: %v", err)
	}
	defer a.Close()

	id, err := a.accountID(c.account)
	if err != nil {
		return fail("Error: %v", err)
	}
	acc, _ := a.store.Account(id)
	txs, err := a.store.Transactions(id)
	if err != nil {
		return fail("Error: %v", err)
	}
	if c.tail > 0 && len(txs) > c.tail {
		txs = txs[len(txs)-c.tail:]
	}
	printMarkdown(renderer.RenderRegister(renderer.NewRegister(acc, txs)))
	return subcommands.ExitSuccess
}

type suggestCmd struct {
	account string
	ai      bool
}

func (*suggestCmd) Name() string     { return "suggest" }
func (*suggestCmd) Synopsis() string { return "suggest payees from the recent bank transactions" }
func (*suggestCmd) Usage() string {
	return `cbook suggest [-a <account>] [-ai] <text>

  Suggests up to three payees matching what was typed, from the recent bank
  payees of the account. With -ai, Gemini is asked first.
`
}

func (c *suggestCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "a", "", "Account id. Defaults to the active account.")
	f.BoolVar(&c.ai, "ai", false, "Ask the AI advisor first")
}

func (c *suggestCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	entered := strings.Join(f.Args(), " ")
	if entered == "" {
		fmt.Fprintln(os.Stderr, "Error: suggest needs some text.")
		return subcommands.ExitUsageError
	}
	a, err := openApp(ctx, c.ai)
	if err != nil {
		return fail("Error: %v", err)
	}
	defer a.Close()

	id, err := a.accountID(c.account)
	if err != nil {
		return fail("Error: %v", err)
	}
	for _, s := range a.store.SuggestPayees(ctx, id, entered) {
		fmt.Println(s)
	}
	return subcommands.ExitSuccess
}

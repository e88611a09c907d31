package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/checkbook"
	"github.com/etnz/checkbook/date"
	"github.com/google/subcommands"
)

type initCmd struct {
	name     string
	typ      string
	currency string
	balance  float64
	date     string
	link     string
}

func (*initCmd) Name() string     { return "init" }
func (*initCmd) Synopsis() string { return "create an account with its starting balance" }
func (*initCmd) Usage() string {
	return `cbook init -n <name> [-t checking|savings|credit] [-c <currency>] [-b <balance>] [-d <date>] [-link <token>]

  Creates an account and its opening balance. The first account created becomes
  the active one.
`
}

func (c *initCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "n", "", "Account name")
	f.StringVar(&c.typ, "t", string(checkbook.Checking), "Account type: checking, savings or credit")
	f.StringVar(&c.currency, "c", "USD", "Account currency")
	f.Float64Var(&c.balance, "b", 0, "Starting balance")
	f.StringVar(&c.date, "d", date.Today().String(), "Starting date")
	f.StringVar(&c.link, "link", "", "Opaque bank link token")
}

func (c *initCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	typ, err := checkbook.ParseAccountType(c.typ)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
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

	acc, err := a.store.CreateAccount(checkbook.NewAccount{
		Name:            c.name,
		Type:            typ,
		Currency:        c.currency,
		StartingBalance: c.balance,
		StartingDate:    on,
		LinkToken:       c.link,
	})
	if err != nil {
		return fail("Error creating account: %v", err)
	}
	fmt.Printf("Created account %s (%s) with %s\n", acc.Name, acc.ID, acc.StartingBalance)
	return subcommands.ExitSuccess
}

type accountsCmd struct{}

func (*accountsCmd) Name() string     { return "accounts" }
func (*accountsCmd) Synopsis() string { return "list accounts and their balances" }
func (*accountsCmd) Usage() string {
	return `cbook accounts

  Lists the accounts. The active account is marked with a star.
`
}

func (*accountsCmd) SetFlags(f *flag.FlagSet) {}

func (c *accountsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx, false)
	if err != nil {
		return fail("Error: %v", err)
	}
	defer a.Close()

	accounts := a.store.Accounts()
	if len(accounts) == 0 {
		fmt.Fprintln(os.Stderr, "No accounts yet, create one with 'cbook init'.")
		return subcommands.ExitSuccess
	}
	active, _ := a.store.ActiveAccount()

	var b strings.Builder
	b.WriteString("| | ID | Name | Type | Balance |\n|:-|:---|:-----|:-----|--------:|\n")
	for _, acc := range accounts {
		mark := ""
		if acc.ID == active.ID {
			mark = "*"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", mark, acc.ID, acc.Name, acc.Type, acc.CurrentBalance)
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}

type useCmd struct{}

func (*useCmd) Name() string     { return "use" }
func (*useCmd) Synopsis() string { return "make an account the active one" }
func (*useCmd) Usage() string {
	return `cbook use <account id>

  Commands without an explicit account work on the active one.
`
}

func (*useCmd) SetFlags(f *flag.FlagSet) {}

func (c *useCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: use takes exactly one account id.")
		return subcommands.ExitUsageError
	}
	a, err := openApp(ctx, false)
	if err != nil {
		return fail("Error: %v", err)
	}
	defer a.Close()

	if err := a.store.SetActiveAccount(f.Arg(0)); err != nil {
		return fail("Error: %v", err)
	}
	return subcommands.ExitSuccess
}

type openingCmd struct {
	account string
	balance float64
	date    string
}

func (*openingCmd) Name() string     { return "opening" }
func (*openingCmd) Synopsis() string { return "change the starting balance of an account" }
func (*openingCmd) Usage() string {
	return `cbook opening [-a <account>] -b <balance> [-d <date>]

  Sets the starting balance, and optionally its date. Running balances are
  recomputed.
`
}

func (c *openingCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "a", "", "Account id. Defaults to the active account.")
	f.Float64Var(&c.balance, "b", 0, "Starting balance")
	f.StringVar(&c.date, "d", "", "Starting date. Defaults to the current one.")
}

func (c *openingCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	on := acc.StartingDate
	if c.date != "" {
		if on, err = date.Parse(c.date); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	if acc, err = a.store.SetStartingBalance(id, c.balance, on); err != nil {
		return fail("Error: %v", err)
	}
	fmt.Printf("%s starts with %s on %s, balance is %s\n", acc.Name, acc.StartingBalance, acc.StartingDate, acc.CurrentBalance)
	return subcommands.ExitSuccess
}

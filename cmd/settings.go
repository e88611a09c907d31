package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/google/subcommands"
)

type settingsCmd struct {
	deposit   bool
	debit     bool
	low       bool
	threshold float64
	overdraft bool
	window    time.Duration
}

func (*settingsCmd) Name() string     { return "settings" }
func (*settingsCmd) Synopsis() string { return "display or change the alert settings" }
func (*settingsCmd) Usage() string {
	return `cbook settings [-deposit=<bool>] [-debit=<bool>] [-low=<bool>] [-threshold <amount>] [-overdraft=<bool>] [-window <duration>]

  Without flags, displays the settings. Otherwise changes the ones given.
`
}

func (c *settingsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.deposit, "deposit", true, "Alert on deposits")
	f.BoolVar(&c.debit, "debit", true, "Alert on debits")
	f.BoolVar(&c.low, "low", true, "Alert when the balance goes below the threshold")
	f.Float64Var(&c.threshold, "threshold", 100, "Low balance threshold")
	f.BoolVar(&c.overdraft, "overdraft", true, "Alert when the balance goes negative")
	f.DurationVar(&c.window, "window", 24*time.Hour, "Only bank transactions this recent raise deposit and debit alerts")
}

func (c *settingsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx, false)
	if err != nil {
		return fail("Error: %v", err)
	}
	defer a.Close()

	s := a.store.Settings()
	set := visited(f)
	if len(set) > 0 {
		if set["deposit"] {
			s.DepositAlerts = c.deposit
		}
		if set["debit"] {
			s.DebitAlerts = c.debit
		}
		if set["low"] {
			s.LowBalanceAlerts = c.low
		}
		if set["threshold"] {
			s.LowBalanceThreshold = c.threshold
		}
		if set["overdraft"] {
			s.OverdraftAlerts = c.overdraft
		}
		if set["window"] {
			s.RecentWindow = c.window
		}
		if err := a.store.UpdateSettings(s); err != nil {
			return fail("Error: %v", err)
		}
	}

	var b strings.Builder
	b.WriteString("| Setting | Value |\n|:--------|:------|\n")
	fmt.Fprintf(&b, "| Deposit alerts | %v |\n", s.DepositAlerts)
	fmt.Fprintf(&b, "| Debit alerts | %v |\n", s.DebitAlerts)
	fmt.Fprintf(&b, "| Low balance alerts | %v |\n", s.LowBalanceAlerts)
	fmt.Fprintf(&b, "| Low balance threshold | %.2f |\n", s.LowBalanceThreshold)
	fmt.Fprintf(&b, "| Overdraft alerts | %v |\n", s.OverdraftAlerts)
	fmt.Fprintf(&b, "| Recent window | %v |\n", s.RecentWindow)
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}

package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/checkbook/bankfile"
	"github.com/etnz/checkbook/renderer"
	"github.com/google/subcommands"
)

type syncCmd struct {
	account string
	file    string
	advise  bool
}

func (*syncCmd) Name() string     { return "sync" }
func (*syncCmd) Synopsis() string { return "reconcile an account with a bank export" }
func (*syncCmd) Usage() string {
	return `cbook sync [-a <account>] -f <file.jsonl|file.csv> [-advise]

  Reads the bank transactions of a bank export and merges them into the
  register: manual entries the bank confirms are converted, the others are
  inserted, the ones already known are skipped. With -advise, Gemini is asked
  about the bank transactions the rules cannot match.

Usage Examples:
$ cbook sync -f export.csv
`
}

func (c *syncCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "a", "", "Account id. Defaults to the active account.")
	f.StringVar(&c.file, "f", "", "Bank export, JSONL or CSV")
	f.BoolVar(&c.advise, "advise", false, "Ask the AI advisor about unmatched bank transactions")
}

func (c *syncCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.file == "" {
		fmt.Fprintln(os.Stderr, "Error: -f is required.")
		return subcommands.ExitUsageError
	}
	a, err := openApp(ctx, c.advise)
	if err != nil {
		return fail("Error: %v", err)
	}
	defer a.Close()

	id, err := a.accountID(c.account)
	if err != nil {
		return fail("Error: %v", err)
	}
	res, err := a.store.Sync(ctx, id, bankfile.File{Path: c.file})
	if err != nil {
		return fail("Error: %v", err)
	}
	printMarkdown(renderer.RenderIngest(res))
	return subcommands.ExitSuccess
}

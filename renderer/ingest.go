package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/checkbook"
)

// RenderIngest renders what a bank batch did to a register. Empty sections are omitted.
func RenderIngest(res checkbook.IngestResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Bank sync\n\n%d converted, %d inserted, %d duplicates.\n",
		len(res.Converted), len(res.Inserted), len(res.Duplicates))

	sections := []struct {
		title string
		txs   []checkbook.Transaction
	}{
		{"Converted manual entries", res.Converted},
		{"New bank transactions", res.Inserted},
	}
	for _, s := range sections {
		ConditionalBlock(&b, func(w io.Writer) bool {
			fmt.Fprintf(w, "\n## %s\n\n", s.title)
			fmt.Fprint(w, "| Date | Payee | Amount | Balance |\n")
			fmt.Fprint(w, "|:-----|:------|-------:|--------:|\n")
			for _, tx := range s.txs {
				fmt.Fprintf(w, "| %s | %s | %s | %s |\n", tx.Date, cell(tx.Payee), tx.Amount, tx.RunningBalance)
			}
			return len(s.txs) > 0
		})
	}
	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "\n## Already known\n\n")
		for _, d := range res.Duplicates {
			fmt.Fprintf(w, "- %s %s %.2f\n", d.Date, cell(d.Payee), d.Amount)
		}
		return len(res.Duplicates) > 0
	})
	return b.String()
}

// Package bankfile reads bank transactions exported to files, and serves them
// as a checkbook.BankSource.
//
// Two formats are supported, chosen by file extension:
//
//   - JSONL (.jsonl, .json): one JSON object per line, with the fields
//     "account_id", "date", "payee", "amount" and "external_transaction_id".
//   - CSV (.csv): a header line naming the columns, in any order. "date",
//     "payee" (or "description") and "amount" are required, "account_id" and
//     "external_transaction_id" (or "id") are optional. Instead of "amount", a
//     file may have "debit" and "credit" columns holding positive values.
package bankfile

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/checkbook"
)

// File is a checkbook.BankSource reading a bank export file on every Fetch.
type File struct {
	Path string
}

var _ checkbook.BankSource = File{}

// Fetch returns the transactions of the file that belong to accountID. Lines
// with no account belong to every account.
func (f File) Fetch(ctx context.Context, accountID string) ([]checkbook.BankTxn, error) {
	r, err := os.Open(f.Path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var all []checkbook.BankTxn
	switch ext := strings.ToLower(filepath.Ext(f.Path)); ext {
	case ".jsonl", ".json":
		all, err = DecodeJSONL(r)
	case ".csv":
		all, err = DecodeCSV(r)
	default:
		return nil, fmt.Errorf("unsupported bank file extension %q (want .jsonl or .csv)", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]checkbook.BankTxn, 0, len(all))
	for _, b := range all {
		if b.AccountID == "" || b.AccountID == accountID {
			out = append(out, b)
		}
	}
	return out, nil
}

// DecodeJSONL decodes bank transactions, one JSON object per line. Blank lines are skipped.
func DecodeJSONL(r io.Reader) ([]checkbook.BankTxn, error) {
	var out []checkbook.BankTxn
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		data := scanner.Bytes()
		if len(strings.TrimSpace(string(data))) == 0 {
			continue
		}
		var b checkbook.BankTxn
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("line %d: cannot parse bank transaction %q: %w", line, string(data), err)
		}
		out = append(out, b)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// EncodeJSONL writes bank transactions one JSON object per line.
func EncodeJSONL(w io.Writer, batch []checkbook.BankTxn) error {
	enc := json.NewEncoder(w)
	for _, b := range batch {
		if err := enc.Encode(b); err != nil {
			return err
		}
	}
	return nil
}

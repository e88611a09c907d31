package bankfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/etnz/checkbook"
	"github.com/etnz/checkbook/date"
)

// column aliases, the first one is the canonical name.
var aliases = map[string][]string{
	"account_id":              {"account_id", "account"},
	"date":                    {"date", "posted", "posting date"},
	"payee":                   {"payee", "description", "merchant"},
	"amount":                  {"amount"},
	"debit":                   {"debit", "withdrawal"},
	"credit":                  {"credit", "deposit"},
	"external_transaction_id": {"external_transaction_id", "id", "reference"},
}

// columns maps canonical column names to their index in a record.
type columns map[string]int

func newColumns(header []string) (columns, error) {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		byName[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	cols := make(columns)
	for canonical, names := range aliases {
		for _, name := range names {
			if i, ok := byName[name]; ok {
				cols[canonical] = i
				break
			}
		}
	}

	var missing []string
	for _, required := range []string{"date", "payee"} {
		if _, ok := cols[required]; !ok {
			missing = append(missing, required)
		}
	}
	_, amount := cols["amount"]
	_, debit := cols["debit"]
	_, credit := cols["credit"]
	if !amount && !(debit && credit) {
		missing = append(missing, "amount")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("required columns not found in CSV header: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func (c columns) get(record []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// DecodeCSV decodes bank transactions from a CSV file with a header line.
// Every invalid row is reported.
func DecodeCSV(r io.Reader) ([]checkbook.BankTxn, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV header: %w", err)
	}
	cols, err := newColumns(header)
	if err != nil {
		return nil, err
	}

	var out []checkbook.BankTxn
	var errs []error
	for row := 2; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("row %d: %w", row, err))
			continue
		}
		b, err := cols.parse(record)
		if err != nil {
			errs = append(errs, fmt.Errorf("row %d: %w", row, err))
			continue
		}
		out = append(out, b)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c columns) parse(record []string) (checkbook.BankTxn, error) {
	on, err := date.Parse(c.get(record, "date"))
	if err != nil {
		return checkbook.BankTxn{}, fmt.Errorf("invalid date: %w", err)
	}
	var amount float64
	if _, ok := c["amount"]; ok {
		amount, err = parseAmount(c.get(record, "amount"))
		if err != nil {
			return checkbook.BankTxn{}, err
		}
	} else {
		debit, err := parseAmount(c.get(record, "debit"))
		if err != nil {
			return checkbook.BankTxn{}, fmt.Errorf("debit: %w", err)
		}
		credit, err := parseAmount(c.get(record, "credit"))
		if err != nil {
			return checkbook.BankTxn{}, fmt.Errorf("credit: %w", err)
		}
		amount = credit - debit
	}
	return checkbook.BankTxn{
		AccountID:  c.get(record, "account_id"),
		Date:       on,
		Payee:      c.get(record, "payee"),
		Amount:     amount,
		ExternalID: c.get(record, "external_transaction_id"),
	}, nil
}

// parseAmount parses amounts as banks print them: "1,234.56", "$12.00",
// "(12.00)" for negatives. Empty is zero.
func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	s = strings.NewReplacer(",", "", "$", "", " ", "").Replace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if neg {
		v = -v
	}
	return v, nil
}

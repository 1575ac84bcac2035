package detect

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"expensetracker/internal/money"
	"expensetracker/internal/models"
)

// Field is one named cell of a statement row.
type Field struct {
	Name  string
	Value string
}

// Row keeps the statement's column order, which decides which column wins
// when several look like dates or amounts.
type Row []Field

// Kind says whether a row brings money in or takes it out.
type Kind string

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

var (
	dateColumns        = []string{"date", "transaction date", "posted date", "trans date"}
	amountColumns      = []string{"amount", "debit", "credit", "transaction amount"}
	merchantColumns    = []string{"merchant", "description", "payee", "name", "memo"}
	typeColumns        = []string{"type", "transaction type", "trans type", "txn type", "mode", "cr/dr"}
	descriptionColumns = []string{"description", "memo", "narration", "details", "remarks"}

	dateLayouts = []string{"2006-01-02", "01/02/2006", "02/01/2006", "2006/01/02"}

	incomeKeywords = []string{
		"credit", "deposit", "salary", "income", "received", "receive", "refund",
		"cashback", "reward", "bonus", "payment received", "transfer in", "credited",
		"earn", "earned", "revenue", "sale", "sold", "interest", "dividend",
	}
	expenseKeywords = []string{
		"debit", "withdrawal", "payment", "purchase", "spent", "spend", "paid",
		"bill", "charge", "fee", "transfer out", "debited", "bought", "buy",
		"expense", "cost", "shopping", "subscription",
	}
)

// NewRow zips a CSV header with one record. Short records get empty cells.
func NewRow(header, record []string) Row {
	row := make(Row, 0, len(header))
	for i, name := range header {
		var v string
		if i < len(record) {
			v = record[i]
		}
		row = append(row, Field{Name: strings.TrimSpace(name), Value: v})
	}
	return row
}

// Get returns the value of the column named exactly name, ignoring case.
func (r Row) Get(name string) string {
	for _, f := range r {
		if strings.EqualFold(f.Name, name) {
			return f.Value
		}
	}
	return ""
}

// columns returns the fields whose names contain one of names, in
// priority order of names and then column order.
func (r Row) columns(names []string) []Field {
	var out []Field
	for _, n := range names {
		for _, f := range r {
			if strings.Contains(Fold(f.Name), n) {
				out = append(out, f)
			}
		}
	}
	return out
}

// Date returns the first parseable date as YYYY-MM-DD.
func (r Row) Date() (string, bool) {
	for _, f := range r.columns(dateColumns) {
		v := strings.TrimSpace(f.Value)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t.Format(models.DateLayout), true
			}
		}
	}
	return "", false
}

// Amount returns the first parseable amount and the column it came from.
func (r Row) Amount() (float64, string, bool) {
	for _, f := range r.columns(amountColumns) {
		if v, err := money.Parse(f.Value); err == nil {
			return v, f.Name, true
		}
	}
	return 0, "", false
}

// Merchant returns the first non-blank merchant-like value.
func (r Row) Merchant() (string, bool) {
	for _, f := range r.columns(merchantColumns) {
		if v := strings.TrimSpace(f.Value); v != "" {
			return v, true
		}
	}
	return "", false
}

// Description returns the free-text description or memo, if any.
func (r Row) Description() string {
	for _, f := range r.columns([]string{"description", "memo"}) {
		if v := strings.TrimSpace(f.Value); v != "" {
			return v
		}
	}
	return ""
}

// Kind looks at type columns first and then at descriptions. ok is false
// when neither said anything.
func (r Row) Kind() (kind Kind, ok bool) {
	if k, ok := kindFrom(r.columns(typeColumns)); ok {
		return k, true
	}
	return kindFrom(r.columns(descriptionColumns))
}

func kindFrom(fields []Field) (Kind, bool) {
	for _, f := range fields {
		v := Fold(f.Value)
		if v == "" {
			continue
		}
		if containsAny(v, incomeKeywords) {
			return Income, true
		}
		if containsAny(v, expenseKeywords) {
			return Expense, true
		}
	}
	return Expense, false
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// ReadCSV reads a headed CSV statement into rows. Ragged records are
// tolerated.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var rows []Row
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rows, fmt.Errorf("read csv record: %w", err)
		}
		rows = append(rows, NewRow(header, record))
	}
	return rows, nil
}

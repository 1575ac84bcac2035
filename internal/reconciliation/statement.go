package reconciliation

import (
	"context"
	"fmt"
	"io"
	"time"

	"expensetracker/internal/detect"
	"expensetracker/internal/logger"
	"expensetracker/internal/models"
)

// StatementLine is one transaction read from an uploaded bank statement.
// Merchant is normalized the same way imported transactions are, Raw keeps
// the statement text.
type StatementLine struct {
	Date     string  `json:"date"`
	Amount   float64 `json:"amount"`
	Merchant string  `json:"merchant"`
	Raw      string  `json:"raw_merchant"`
}

func (l StatementLine) Day() (time.Time, error) {
	return time.Parse(models.DateLayout, l.Date)
}

// ParseStatement reads a CSV statement. Unlike import, rows without a
// usable date, a non-zero amount and a merchant are dropped rather than
// defaulted.
func ParseStatement(ctx context.Context, r io.Reader) ([]StatementLine, error) {
	rows, err := detect.ReadCSV(r)
	if err != nil {
		return nil, fmt.Errorf("parse statement: %w", err)
	}

	var lines []StatementLine
	for _, row := range rows {
		date, ok := row.Date()
		if !ok {
			continue
		}
		amount, _, ok := row.Amount()
		if !ok || amount == 0 {
			continue
		}
		merchant, ok := row.Merchant()
		if !ok {
			continue
		}
		lines = append(lines, StatementLine{
			Date:     date,
			Amount:   amount,
			Merchant: detect.NormalizeMerchant(merchant),
			Raw:      merchant,
		})
	}
	logger.FromContext(ctx).Info("statement_parsed", "rows", len(rows), "lines", len(lines))
	return lines, nil
}

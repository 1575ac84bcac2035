package detect

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"

	"expensetracker/internal/confidence"
	"expensetracker/internal/logger"
	"expensetracker/internal/models"
)

// Detected is one statement row after normalization and classification.
type Detected struct {
	Date         string           `json:"date"`
	Amount       float64          `json:"amount"`
	Merchant     string           `json:"merchant"`
	Category     string           `json:"category"`
	Confidence   confidence.Level `json:"confidence"`
	IsOnlineSale bool             `json:"is_online_sale"`
	Kind         Kind             `json:"transaction_type"`
}

// Staged converts the row into a detected transaction for userID.
func (d Detected) Staged(userID int64) models.DetectedTransaction {
	return models.DetectedTransaction{
		UserID:     userID,
		Amount:     d.Amount,
		Merchant:   d.Merchant,
		Category:   d.Category,
		Date:       d.Date,
		Confidence: string(d.Confidence),
		IsOnline:   d.IsOnlineSale,
	}
}

// Importer reads bank statements. Now supplies the date used for rows
// without one.
type Importer struct {
	Now func() time.Time
}

func NewImporter() *Importer {
	return &Importer{Now: time.Now}
}

// Import dispatches on the file extension. Unsupported formats yield no rows.
func (im *Importer) Import(ctx context.Context, filename string, r io.Reader) ([]Detected, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return im.ImportCSV(ctx, r)
	case ".ofx", ".qfx":
		return im.ImportOFX(ctx, r), nil
	default:
		logger.FromContext(ctx).Warn("import_unsupported_format", "filename", filename)
		return nil, nil
	}
}

// ImportCSV detects transactions in a CSV statement.
func (im *Importer) ImportCSV(ctx context.Context, r io.Reader) ([]Detected, error) {
	rows, err := ReadCSV(r)
	if err != nil {
		return nil, fmt.Errorf("import csv: %w", err)
	}

	var detected []Detected
	skipped := 0
	for _, row := range rows {
		d, ok := im.FromRow(row)
		if !ok {
			skipped++
			continue
		}
		detected = append(detected, d)
	}
	logger.FromContext(ctx).Info("import_csv_complete", "rows", len(rows), "detected", len(detected), "skipped", skipped)
	return detected, nil
}

// FromRow builds a candidate from a CSV row. Missing fields fall back to
// today, zero and "Unknown"; rows that end up with no amount are dropped.
func (im *Importer) FromRow(row Row) (Detected, bool) {
	date, ok := row.Date()
	if !ok {
		date = im.Now().Format(models.DateLayout)
	}
	amount, column, ok := row.Amount()
	if !ok || amount == 0 {
		return Detected{}, false
	}
	merchant, ok := row.Merchant()
	if !ok {
		merchant = models.UnknownMerchant
	}

	kind, found := row.Kind()
	if !found {
		col := Fold(column)
		if strings.Contains(col, "credit") && !strings.Contains(col, "debit") {
			kind = Income
		}
	}
	amount = signed(amount, kind)

	return classify(date, amount, merchant, row.Description(), kind), true
}

// ImportOFX detects transactions in an OFX or QFX statement. A statement
// that cannot be parsed yields no rows.
func (im *Importer) ImportOFX(ctx context.Context, r io.Reader) []Detected {
	l := logger.FromContext(ctx)

	resp, err := ofxgo.ParseResponse(r)
	if err != nil {
		l.Warn("import_ofx_parse_error", "error", err.Error())
		return nil
	}

	var txns []ofxgo.Transaction
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			txns = append(txns, stmt.BankTranList.Transactions...)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			txns = append(txns, stmt.BankTranList.Transactions...)
		}
	}

	detected := make([]Detected, 0, len(txns))
	for _, t := range txns {
		amount, _ := t.TrnAmt.Float64()
		kind := Expense
		if amount > 0 {
			kind = Income
		}
		detected = append(detected, classify(t.DtPosted.Format(models.DateLayout), amount, ofxMerchant(t), string(t.Memo), kind))
	}
	l.Info("import_ofx_complete", "detected", len(detected))
	return detected
}

func ofxMerchant(t ofxgo.Transaction) string {
	if t.Payee != nil && strings.TrimSpace(string(t.Payee.Name)) != "" {
		return string(t.Payee.Name)
	}
	if s := strings.TrimSpace(string(t.Name)); s != "" {
		return s
	}
	if s := strings.TrimSpace(string(t.Memo)); s != "" {
		return s
	}
	return models.UnknownMerchant
}

func classify(date string, amount float64, merchant, description string, kind Kind) Detected {
	normalized := NormalizeMerchant(merchant)
	category := Classify(normalized, description)
	return Detected{
		Date:         date,
		Amount:       amount,
		Merchant:     normalized,
		Category:     category,
		Confidence:   Confidence(normalized, category),
		IsOnlineSale: IsOnlineSale(normalized),
		Kind:         kind,
	}
}

func signed(amount float64, kind Kind) float64 {
	switch {
	case kind == Expense && amount > 0:
		return -amount
	case kind == Income && amount < 0:
		return -amount
	}
	return amount
}

package filestore

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"expensetracker/internal/models"
)

var exportHeader = []string{"id", "date", "amount", "merchant", "category", "envelope_id", "notes", "is_online_sale"}

// WriteCSV writes transactions as CSV with a header row
func WriteCSV(w io.Writer, txns []models.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, t := range txns {
		envelope := ""
		if t.EnvelopeID != nil {
			envelope = strconv.FormatInt(*t.EnvelopeID, 10)
		}
		record := []string{
			strconv.FormatInt(t.ID, 10),
			t.Date,
			strconv.FormatFloat(t.Amount, 'f', 2, 64),
			t.Merchant,
			t.Category,
			envelope,
			t.Notes,
			strconv.FormatBool(t.IsOnlineSale),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSV writes a dated CSV export for the user and returns its path
// relative to the store.
func (s *Store) ExportCSV(userID int64, txns []models.Transaction, now time.Time) (string, error) {
	name := filepath.Join("exports", fmt.Sprintf("export_%d_%s.csv", userID, now.Format("20060102")))

	f, err := os.Create(s.FullPath(name))
	if err != nil {
		return "", fmt.Errorf("create export: %w", err)
	}
	if err := WriteCSV(f, txns); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close export: %w", err)
	}
	return name, nil
}
